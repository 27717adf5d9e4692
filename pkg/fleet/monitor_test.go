package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caddy-fleet/pkg/registry"
)

func TestSweepRecordsReachability(t *testing.T) {
	manager, store := newTestManager(t)
	srv := newInstanceServer(t)
	up := addTestInstance(t, manager, "up", srv.URL)
	down := addTestInstance(t, manager, "down", "http://127.0.0.1:1")

	monitor := NewMonitor(manager, time.Minute, 2*time.Second, testLogger())
	monitor.Sweep(context.Background())

	got, err := store.GetInstance(up.ID)
	require.NoError(t, err)
	assert.Equal(t, registry.StatusHealthy, got.Status)

	got, err = store.GetInstance(down.ID)
	require.NoError(t, err)
	assert.Equal(t, registry.StatusUnreachable, got.Status)
}

func TestRunDisabledWithoutInterval(t *testing.T) {
	manager, _ := newTestManager(t)
	monitor := NewMonitor(manager, 0, 0, testLogger())

	done := make(chan error, 1)
	go func() { done <- monitor.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when disabled")
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	manager, _ := newTestManager(t)
	monitor := NewMonitor(manager, 10*time.Millisecond, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}
