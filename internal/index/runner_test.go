package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/store"
	"github.com/Aman-CERP/dorindex/pkg/indexer"
)

// fakeBuilder returns {"id": id} unless told to fail.
type fakeBuilder struct {
	mu       sync.Mutex
	calls    map[string]int
	fail     map[string]error
	failOnce map[string]error
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{
		calls:    map[string]int{},
		fail:     map[string]error{},
		failOnce: map[string]error{},
	}
}

func (b *fakeBuilder) BuildID(_ context.Context, id string) (indexer.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[id]++
	if err := b.fail[id]; err != nil {
		return nil, err
	}
	if err := b.failOnce[id]; err != nil {
		delete(b.failOnce, id)
		return nil, err
	}
	return indexer.Document{"id": id, "title_tesim": []string{"Title of " + id}}, nil
}

type listing []string

func (l listing) IDs(context.Context) ([]string, error) { return l, nil }

type storeCounter struct {
	mu      sync.Mutex
	batches []int
}

func (s *storeCounter) DocumentsStored(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, n)
}

func openSink(t *testing.T) *store.DocumentIndex {
	t.Helper()
	x, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = x.Close() })
	return x
}

func fastRetry() errors.RetryConfig {
	return errors.RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func TestNewRunner_RequiresDependencies(t *testing.T) {
	sink := openSink(t)
	b := newFakeBuilder()

	for name, deps := range map[string]RunnerDependencies{
		"builder": {Records: listing{}, Sink: sink},
		"records": {Builder: b, Sink: sink},
		"sink":    {Builder: b, Records: listing{}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewRunner(RunnerConfig{}, deps)
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
		})
	}
}

// =============================================================================
// Run
// =============================================================================

func TestRunner_Run_IndexesEveryRecord(t *testing.T) {
	// Given: three records and a progress callback
	sink := openSink(t)
	ctx := context.Background()
	var (
		mu       sync.Mutex
		progress []int
	)
	r, err := NewRunner(RunnerConfig{Workers: 2}, RunnerDependencies{
		Builder: newFakeBuilder(),
		Records: listing{"druid:a", "druid:b", "druid:c"},
		Sink:    sink,
		Progress: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 3, total)
			progress = append(progress, done)
		},
	})
	require.NoError(t, err)

	// When
	res, err := r.Run(ctx)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 3, res.Indexed)
	assert.Empty(t, res.Failed)
	assert.ElementsMatch(t, []int{1, 2, 3}, progress)

	ids, err := sink.AllIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"druid:a", "druid:b", "druid:c"}, ids)
}

func TestRunner_Run_RemovesStaleDocuments(t *testing.T) {
	// Given: the sink holds a document whose record is gone
	sink := openSink(t)
	ctx := context.Background()
	require.NoError(t, sink.Put(ctx, indexer.Document{"id": "druid:gone"}))

	r, err := NewRunner(RunnerConfig{}, RunnerDependencies{
		Builder: newFakeBuilder(),
		Records: listing{"druid:a"},
		Sink:    sink,
	})
	require.NoError(t, err)

	// When
	res, err := r.Run(ctx)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	ids, err := sink.AllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"druid:a"}, ids)
}

func TestRunner_Run_FailedRecordDoesNotStopRun(t *testing.T) {
	// Given: one record that always fails validation
	b := newFakeBuilder()
	b.fail["druid:b"] = errors.ValidationError("no identifier", nil)
	r, err := NewRunner(RunnerConfig{Workers: 3, Retry: fastRetry()}, RunnerDependencies{
		Builder: b,
		Records: listing{"druid:a", "druid:b", "druid:c"},
		Sink:    openSink(t),
	})
	require.NoError(t, err)

	// When
	res, err := r.Run(context.Background())

	// Then: the others are indexed and the failure is not retried
	require.NoError(t, err)
	assert.Equal(t, 2, res.Indexed)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "druid:b", res.Failed[0].ID)
	assert.Equal(t, errors.ErrCodeInvalidRecord, errors.GetCode(res.Failed[0].Err))
	assert.Equal(t, 1, b.calls["druid:b"])
}

func TestRunner_Run_RetriesRetrievalFailures(t *testing.T) {
	// Given: a transient repository failure
	b := newFakeBuilder()
	b.failOnce["druid:a"] = errors.RetrievalFailed("druid:a", nil)
	r, err := NewRunner(RunnerConfig{Retry: fastRetry()}, RunnerDependencies{
		Builder: b,
		Records: listing{"druid:a"},
		Sink:    openSink(t),
	})
	require.NoError(t, err)

	// When
	res, err := r.Run(context.Background())

	// Then: the second attempt succeeds
	require.NoError(t, err)
	assert.Equal(t, 1, res.Indexed)
	assert.Equal(t, 2, b.calls["druid:a"])
}

func TestRunner_Rebuild_WritesInBatches(t *testing.T) {
	// Given: batch size two and an observer
	obs := &storeCounter{}
	r, err := NewRunner(RunnerConfig{BatchSize: 2}, RunnerDependencies{
		Builder:  newFakeBuilder(),
		Records:  listing{},
		Sink:     openSink(t),
		Observer: obs,
	})
	require.NoError(t, err)

	// When
	res, err := r.Rebuild(context.Background(), []string{"druid:a", "druid:b", "druid:c"})

	// Then
	require.NoError(t, err)
	assert.Equal(t, 3, res.Indexed)
	assert.Equal(t, []int{2, 1}, obs.batches)
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	r, err := NewRunner(RunnerConfig{}, RunnerDependencies{
		Builder: newFakeBuilder(),
		Records: listing{"druid:a"},
		Sink:    openSink(t),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// Consistency
// =============================================================================

func TestConsistencyChecker_CheckAndRepair(t *testing.T) {
	// Given: one orphan and one missing document
	ctx := context.Background()
	sink := openSink(t)
	require.NoError(t, sink.Put(ctx,
		indexer.Document{"id": "druid:a"},
		indexer.Document{"id": "druid:orphan"}))
	r, err := NewRunner(RunnerConfig{}, RunnerDependencies{
		Builder: newFakeBuilder(),
		Records: listing{"druid:a", "druid:b"},
		Sink:    sink,
	})
	require.NoError(t, err)
	checker := NewConsistencyChecker(r)

	// When: checking
	res, err := checker.Check(ctx)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checked)
	assert.Equal(t, []string{"druid:orphan"}, res.Orphans)
	assert.Equal(t, []string{"druid:b"}, res.Missing)
	assert.False(t, res.Consistent())

	// When: repairing
	out, err := checker.Repair(ctx, res)

	// Then: the index matches the repository
	require.NoError(t, err)
	assert.Equal(t, 1, out.Removed)
	assert.Equal(t, 1, out.Indexed)
	again, err := checker.Check(ctx)
	require.NoError(t, err)
	assert.True(t, again.Consistent())
}
