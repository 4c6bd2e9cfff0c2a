package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	SRS       SRSConfig       `yaml:"srs"`
	StudyMode StudyModeConfig `yaml:"study_mode"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// AuthConfig holds bearer token verification settings. Tokens are issued
// by the identity service; this service only verifies them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"reviewengine"`
}

// SRSConfig holds review scheduling settings.
type SRSConfig struct {
	RetirementThreshold int    `yaml:"retirement_threshold" env:"SRS_RETIREMENT_THRESHOLD" env-default:"3"`
	DefaultMode         string `yaml:"default_mode"         env:"SRS_DEFAULT_MODE"         env-default:"BALANCED"`
	RecentEventsWindow  int    `yaml:"recent_events_window" env:"SRS_RECENT_EVENTS_WINDOW" env-default:"10"`
}

// StudyModeConfig holds the per-user study mode cache settings.
type StudyModeConfig struct {
	CacheTTL  time.Duration `yaml:"cache_ttl"  env:"STUDY_MODE_CACHE_TTL"  env-default:"1m"`
	CacheSize int           `yaml:"cache_size" env:"STUDY_MODE_CACHE_SIZE" env-default:"10000"`
}

// SessionConfig holds windowed study session settings.
type SessionConfig struct {
	BatchSize        int           `yaml:"batch_size"         env:"SESSION_BATCH_SIZE"         env-default:"20"`
	MaxCachedBatches int           `yaml:"max_cached_batches" env:"SESSION_MAX_CACHED_BATCHES" env-default:"3"`
	PrefetchNext     bool          `yaml:"prefetch_next"      env:"SESSION_PREFETCH_NEXT"      env-default:"true"`
	PrefetchTimeout  time.Duration `yaml:"prefetch_timeout"   env:"SESSION_PREFETCH_TIMEOUT"   env-default:"10s"`
	TTL              time.Duration `yaml:"ttl"                env:"SESSION_TTL"                env-default:"30m"`
	MaxSessions      int           `yaml:"max_sessions"       env:"SESSION_MAX_SESSIONS"       env-default:"10000"`
	ProgressTTL      time.Duration `yaml:"progress_ttl"       env:"SESSION_PROGRESS_TTL"       env-default:"168h"`
}

// RedisConfig holds the session progress store connection. When disabled,
// progress is kept in process memory.
type RedisConfig struct {
	Enabled     bool          `yaml:"enabled"      env:"REDIS_ENABLED"      env-default:"false"`
	Addr        string        `yaml:"addr"         env:"REDIS_ADDR"`
	Password    string        `yaml:"password"     env:"REDIS_PASSWORD"`
	DB          int           `yaml:"db"           env:"REDIS_DB"           env-default:"0"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	KeyPrefix   string        `yaml:"key_prefix"   env:"REDIS_KEY_PREFIX"   env-default:"reviewengine:"`
}

// RateLimitConfig holds per-client request rate limits. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"   env-default:"20"`
	Burst             int     `yaml:"burst"               env:"RATE_LIMIT_BURST" env-default:"40"`
}

// CleanupConfig holds retention settings for the cleanup command.
type CleanupConfig struct {
	ReviewEventRetentionDays int `yaml:"review_event_retention_days" env:"CLEANUP_REVIEW_EVENT_RETENTION_DAYS" env-default:"365"`
}
