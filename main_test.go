package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oybek/wellness/config"
)

func memoryConfig(t *testing.T, port string) config.Config {
	t.Helper()
	env := map[string]string{"STORE_DRIVER": config.StoreMemory, "PORT": port}
	cfg, err := config.FromEnv(func(key string) string { return env[key] })
	require.NoError(t, err)
	return cfg
}

func TestRunReturnsListenError(t *testing.T) {
	cfg := memoryConfig(t, "notaport")
	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "http server")
	case <-time.After(5 * time.Second):
		t.Fatal("run kept going after the listener failed")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := memoryConfig(t, "0")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
