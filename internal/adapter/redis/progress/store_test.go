package progress_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/reviewengine/internal/adapter/redis/progress"
	"github.com/heartmarshall/reviewengine/internal/domain"
)

var (
	once      sync.Once
	sharedURL string
	initErr   error
)

// setupRedis returns a client on a redis container shared by the test binary.
func setupRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test: needs docker")
	}

	once.Do(func() {
		sharedURL, initErr = startRedis()
	})
	require.NoError(t, initErr)

	rdb := goredis.NewClient(&goredis.Options{Addr: sharedURL})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func startRedis() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}
	return host + ":" + port.Port(), nil
}

func TestStore_SaveLoadDelete(t *testing.T) {
	t.Parallel()
	store := progress.New(setupRedis(t), "test:", time.Hour)
	ctx := context.Background()

	p := &domain.SessionProgress{
		SessionID:    uuid.New(),
		UserID:       uuid.New(),
		SequenceID:   uuid.New(),
		CurrentIndex: 42,
		Answered:     []uuid.UUID{uuid.New(), uuid.New()},
		UpdatedAt:    time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, p))

	got, err := store.Load(ctx, p.SessionID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	require.NoError(t, store.Delete(ctx, p.SessionID))
	_, err = store.Load(ctx, p.SessionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, p.SessionID), domain.ErrNotFound)
}

func TestStore_SaveRefreshesTTL(t *testing.T) {
	t.Parallel()
	rdb := setupRedis(t)
	store := progress.New(rdb, "ttl:", 30*time.Minute)
	ctx := context.Background()

	p := &domain.SessionProgress{SessionID: uuid.New(), UserID: uuid.New(), SequenceID: uuid.New()}
	require.NoError(t, store.Save(ctx, p))

	ttl, err := rdb.TTL(ctx, "ttl:session:"+p.SessionID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 29*time.Minute)
}

func TestStore_Unavailable(t *testing.T) {
	t.Parallel()

	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	store := progress.New(rdb, "", time.Hour)

	_, err := store.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrStateStoreUnavailable)
}
