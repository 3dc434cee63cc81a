package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-chatbot/internal/common/config"
	"order-chatbot/internal/common/database"
	apperrors "order-chatbot/internal/common/errors"
	"order-chatbot/internal/dialogue"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rc, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return mr, rc
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, rc := setupRedis(t)
	require.NoError(t, rc.Ping(ctx))

	s := NewRedisStore(rc.Client, 30*time.Minute, "chat:session:")

	slots := dialogue.Slots{
		dialogue.CategoryProduct:  "camisa",
		dialogue.CategoryQuantity: "dos",
	}
	require.NoError(t, s.Save(ctx, "abc", slots))

	assert.True(t, mr.Exists("chat:session:abc"))
	assert.Equal(t, 30*time.Minute, mr.TTL("chat:session:abc"))

	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, slots, got)

	require.NoError(t, s.Save(ctx, "abc", dialogue.Slots{}))
	assert.False(t, mr.Exists("chat:session:abc"))

	empty, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, rc := setupRedis(t)
	s := NewRedisStore(rc.Client, time.Minute, "p:")

	require.NoError(t, s.Save(ctx, "x", dialogue.Slots{dialogue.CategoryProduct: "gorra"}))
	mr.FastForward(2 * time.Minute)

	got, err := s.Load(ctx, "x")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestRedisStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	mr, rc := setupRedis(t)
	require.NoError(t, mr.Set("p:x", "{not json"))

	_, err := NewRedisStore(rc.Client, time.Minute, "p:").Load(ctx, "x")
	assert.Equal(t, apperrors.ErrCodeSessionStoreFailed, apperrors.CodeOf(err))
}

func TestRedisStore_Failures(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	s := NewRedisStore(client, time.Minute, "p:")

	mock.ExpectGet("p:x").SetErr(errors.New("connection reset"))
	_, err := s.Load(ctx, "x")
	assert.Equal(t, apperrors.ErrCodeSessionStoreFailed, apperrors.CodeOf(err))

	mock.ExpectSet("p:x", `{"Producto":"camisa"}`, time.Minute).SetErr(errors.New("OOM"))
	err = s.Save(ctx, "x", dialogue.Slots{dialogue.CategoryProduct: "camisa"})
	assert.Equal(t, apperrors.ErrCodeSessionStoreFailed, apperrors.CodeOf(err))

	mock.ExpectDel("p:x").SetErr(errors.New("READONLY"))
	err = s.Clear(ctx, "x")
	assert.Equal(t, apperrors.ErrCodeSessionStoreFailed, apperrors.CodeOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
