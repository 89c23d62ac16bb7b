package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestRedisService_PingAndPublish(t *testing.T) {
	mr := miniredis.RunT(t)

	svc, err := NewRedisService(mr.Addr(), testLogger())
	require.NoError(t, err)
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("Failed to close Redis service: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, svc.Ping(ctx))
	require.NoError(t, svc.WaitForConnection(ctx))

	sub := svc.Client().Subscribe(ctx, "npc:all:events")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Client().Publish(ctx, "npc:all:events", "payload").Err())
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "payload", msg.Payload)
}

func TestRedisService_URLForms(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, url := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		svc, err := NewRedisService(url, testLogger())
		require.NoError(t, err, url)
		assert.NoError(t, svc.Ping(context.Background()), url)
		_ = svc.Close()
	}

	_, err := NewRedisService("", testLogger())
	assert.Error(t, err)

	_, err = NewRedisService("redis://localhost:6379/notadb", testLogger())
	assert.Error(t, err)
}

func TestRedisService_WaitForConnectionGivesUp(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	svc, err := NewRedisService(addr, testLogger())
	require.NoError(t, err)
	defer svc.Close()
	svc.maxRetries = 2
	svc.retryDelay = 10 * time.Millisecond

	err = svc.WaitForConnection(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.maxRetries = 5
	err = svc.WaitForConnection(ctx)
	assert.Error(t, err)
}
