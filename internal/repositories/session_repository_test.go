package repositories

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedis connects to TEST_REDIS_ADDR or skips the test
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestSessionRepository(t *testing.T) {
	rdb := setupRedis(t)
	repo := NewSessionRepository(rdb)
	ctx := context.Background()

	session := &models.Session{
		ID:        uuid.NewString(),
		Username:  "root",
		Role:      models.RoleSuperAdmin,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, repo.Create(ctx, session))

	ttl, err := rdb.TTL(ctx, sessionKeyPrefix+session.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	got, err := repo.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", got.Username)

	require.NoError(t, repo.Delete(ctx, session.ID))
	_, err = repo.Get(ctx, session.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestSessionRepository_Expired(t *testing.T) {
	repo := NewSessionRepository(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))

	err := repo.Create(context.Background(), &models.Session{ID: "x", ExpiresAt: time.Now().Add(-time.Second)})

	assert.EqualError(t, err, "session already expired")
}
