package fleet

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caddy-fleet/pkg/events"
)

func newTestCoordinator(t *testing.T, maxConcurrency int) *BulkCoordinator {
	t.Helper()

	manager, _ := newTestManager(t)
	bus := events.NewEventBus(10)
	bus.Start()
	return NewBulkCoordinator(manager, maxConcurrency, bus, testLogger())
}

func TestBulkApplyIsolatesFailures(t *testing.T) {
	coordinator := newTestCoordinator(t, 4)

	ids := []string{"a", "b", "c", "d"}
	result := coordinator.BulkApply(context.Background(), ids, func(_ context.Context, instanceID string) OperationResult {
		if instanceID == "c" {
			return FailureResult(errors.New("boom"))
		}
		return SuccessResult(map[string]interface{}{"ok": true}, "")
	})

	assert.False(t, result.AllSucceeded)
	require.Len(t, result.Results, 4)
	assert.Equal(t, 1, result.FailureCount())

	// The one failure must not taint the other outcomes.
	for _, id := range []string{"a", "b", "d"} {
		assert.True(t, result.Results[id].Success, "instance %s", id)
	}
	require.NotNil(t, result.Results["c"].Error)
	assert.Equal(t, CodeInternal, result.Results["c"].Error.Code)
}

func TestBulkApplyEmptySetIsVacuouslySuccessful(t *testing.T) {
	coordinator := newTestCoordinator(t, 4)

	result := coordinator.BulkApply(context.Background(), nil, func(_ context.Context, _ string) OperationResult {
		t.Fatal("mutation must not run for an empty target set")
		return OperationResult{}
	})

	assert.True(t, result.AllSucceeded)
	assert.Empty(t, result.Results)
}

func TestBulkApplyProcessesDuplicatesPerOccurrence(t *testing.T) {
	coordinator := newTestCoordinator(t, 4)

	var invocations atomic.Int32
	result := coordinator.BulkApply(context.Background(), []string{"a", "a", "a"}, func(_ context.Context, _ string) OperationResult {
		invocations.Add(1)
		return SuccessResult(nil, "")
	})

	assert.Equal(t, int32(3), invocations.Load())
	assert.Len(t, result.Results, 1)
	assert.True(t, result.AllSucceeded)
}

func TestBulkApplyFailedOccurrenceWinsForDuplicateID(t *testing.T) {
	coordinator := newTestCoordinator(t, 1)

	var calls atomic.Int32
	result := coordinator.BulkApply(context.Background(), []string{"a", "a"}, func(_ context.Context, _ string) OperationResult {
		if calls.Add(1) == 1 {
			return FailureResult(errors.New("first occurrence failed"))
		}
		return SuccessResult(nil, "")
	})

	assert.False(t, result.AllSucceeded)
	require.NotNil(t, result.Results["a"].Error)
}

func TestBulkApplyRespectsConcurrencyBound(t *testing.T) {
	coordinator := newTestCoordinator(t, 2)

	var mu sync.Mutex
	inFlight, peak := 0, 0

	ids := []string{"a", "b", "c", "d", "e", "f"}
	result := coordinator.BulkApply(context.Background(), ids, func(_ context.Context, _ string) OperationResult {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return SuccessResult(nil, "")
	})

	assert.True(t, result.AllSucceeded)
	assert.LessOrEqual(t, peak, 2)
	assert.Greater(t, peak, 0)
}

func TestBulkApplyCancellationKeepsCompletedResults(t *testing.T) {
	coordinator := newTestCoordinator(t, 1)

	ctx, cancel := context.WithCancel(context.Background())

	result := coordinator.BulkApply(ctx, []string{"a", "b", "c"}, func(ctx context.Context, instanceID string) OperationResult {
		if instanceID == "a" {
			// Completed before cancellation; its outcome must survive.
			cancel()
			return SuccessResult(nil, "")
		}
		if err := ctx.Err(); err != nil {
			return FailureResult(err)
		}
		return SuccessResult(nil, "")
	})

	require.Len(t, result.Results, 3)
	assert.True(t, result.Results["a"].Success)
	assert.False(t, result.AllSucceeded)
	for _, id := range []string{"b", "c"} {
		require.NotNil(t, result.Results[id].Error, "instance %s", id)
		assert.Equal(t, CodeCanceled, result.Results[id].Error.Code)
	}
}

func TestBulkSetConfigPartialFailure(t *testing.T) {
	manager, _ := newTestManager(t)
	bus := events.NewEventBus(10)
	bus.Start()
	coordinator := NewBulkCoordinator(manager, 4, bus, testLogger())

	srv := newInstanceServer(t)
	up := addTestInstance(t, manager, "up", srv.URL)
	down := addTestInstance(t, manager, "down", "http://127.0.0.1:1")

	result := coordinator.BulkSetConfig(context.Background(), []string{up.ID, down.ID}, "", map[string]interface{}{"apps": "x"})

	assert.False(t, result.AllSucceeded)
	assert.True(t, result.Results[up.ID].Success)
	require.NotNil(t, result.Results[down.ID].Error)
	assert.Equal(t, CodeTransport, result.Results[down.ID].Error.Code)
}

func TestBulkSetConfigUnknownTargetIsNotFound(t *testing.T) {
	manager, _ := newTestManager(t)
	bus := events.NewEventBus(10)
	bus.Start()
	coordinator := NewBulkCoordinator(manager, 4, bus, testLogger())

	result := coordinator.BulkSetConfig(context.Background(), []string{"missing"}, "", map[string]interface{}{})

	assert.False(t, result.AllSucceeded)
	require.NotNil(t, result.Results["missing"].Error)
	assert.Equal(t, CodeNotFound, result.Results["missing"].Error.Code)
}
