package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingCloser struct{ closed int }

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

func TestPingOrClose(t *testing.T) {
	t.Run("healthy client stays open", func(t *testing.T) {
		c := &countingCloser{}
		err := pingOrClose(context.Background(), func(context.Context) error { return nil }, c)
		require.NoError(t, err)
		assert.Zero(t, c.closed)
	})

	t.Run("failed ping closes the client", func(t *testing.T) {
		c := &countingCloser{}
		down := errors.New("connection refused")
		err := pingOrClose(context.Background(), func(context.Context) error { return down }, c)
		assert.ErrorIs(t, err, down)
		assert.Equal(t, 1, c.closed)
	})
}

func TestRetryWithBackoff_ClosesEveryFailedAttempt(t *testing.T) {
	var opened []*countingCloser
	attempts := 0

	err := retryWithBackoff(func() error {
		attempts++
		c := &countingCloser{}
		opened = append(opened, c)
		return pingOrClose(context.Background(), func(context.Context) error {
			if attempts < 3 {
				return errors.New("not ready")
			}
			return nil
		}, c)
	}, 5, time.Millisecond, zap.NewNop(), "test connection")

	require.NoError(t, err)
	require.Len(t, opened, 3)
	assert.Equal(t, 1, opened[0].closed)
	assert.Equal(t, 1, opened[1].closed)
	assert.Zero(t, opened[2].closed)
}
