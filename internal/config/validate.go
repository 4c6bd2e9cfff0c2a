package config

import (
	"fmt"
	"slices"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
	studyModes = []string{"CRAMMING", "INTENSIVE", "BALANCED", "RELAXED"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v (got %q)", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v (got %q)", logFormats, c.Log.Format)
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must be >= 0")
	}

	if c.Cleanup.ReviewEventRetentionDays < 1 {
		return fmt.Errorf("cleanup.review_event_retention_days must be >= 1 (got %d)", c.Cleanup.ReviewEventRetentionDays)
	}

	return nil
}

func (s *SRSConfig) validate() error {
	if s.RetirementThreshold < 1 {
		return fmt.Errorf("retirement_threshold must be >= 1 (got %d)", s.RetirementThreshold)
	}
	if !slices.Contains(studyModes, s.DefaultMode) {
		return fmt.Errorf("default_mode must be one of %v (got %q)", studyModes, s.DefaultMode)
	}
	if s.RecentEventsWindow < 3 {
		return fmt.Errorf("recent_events_window must be >= 3 (got %d)", s.RecentEventsWindow)
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.BatchSize < 1 {
		return fmt.Errorf("batch_size must be >= 1 (got %d)", s.BatchSize)
	}
	if s.MaxCachedBatches < 1 {
		return fmt.Errorf("max_cached_batches must be >= 1 (got %d)", s.MaxCachedBatches)
	}
	if s.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be >= 1 (got %d)", s.MaxSessions)
	}
	return nil
}
