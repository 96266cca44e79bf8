package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dorindex/internal/model"
)

type recordingObserver struct {
	mu      sync.Mutex
	lookups []string
}

func (o *recordingObserver) CacheLookup(store string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups = append(o.lookups, fmt.Sprintf("%s:%t", store, hit))
}

func TestStore_GetOrLoad_CachesResult(t *testing.T) {
	// Given: an empty store and a counting loader
	s := NewStore[string]("test", 0, nil)
	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		return "Collection title", nil
	}

	// When: loading the same key twice
	v1, err1 := s.GetOrLoad(context.Background(), "druid:xh235dd9059", load)
	v2, err2 := s.GetOrLoad(context.Background(), "druid:xh235dd9059", load)

	// Then: the loader runs once
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, "Collection title", v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Entries: 1}, s.Stats())
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	s := NewStore[string]("test", 0, nil)
	boom := errors.New("not found")

	_, err := s.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
		return "", boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())

	v, err := s.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestStore_Add_FirstWriterWins(t *testing.T) {
	for _, size := range []int{0, 4} {
		t.Run(fmt.Sprintf("max_entries=%d", size), func(t *testing.T) {
			s := NewStore[string]("test", size, nil)

			assert.Equal(t, "first", s.Add("k", "first"))
			assert.Equal(t, "first", s.Add("k", "second"))

			v, ok := s.Get("k")
			require.True(t, ok)
			assert.Equal(t, "first", v)
		})
	}
}

func TestStore_GetOrLoad_ConcurrentCallersShareOneLoad(t *testing.T) {
	// Given: a slow loader
	s := NewStore[int]("test", 0, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	// When: many goroutines ask for the same key at once
	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.GetOrLoad(context.Background(), "k", load)
			if err == nil {
				results[i] = v
			}
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Then: all see the same value and the loader ran once
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_GetOrLoad_CancelledCallerDoesNotFailOthers(t *testing.T) {
	// Given: a slow load started by a caller that is then cancelled
	s := NewStore[int]("test", 0, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var loadErr error
	load := func(ctx context.Context) (int, error) {
		close(started)
		<-release
		loadErr = ctx.Err()
		return 42, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.GetOrLoad(ctx, "k", load)
		firstErr <- err
	}()
	<-started

	second := make(chan int, 1)
	go func() {
		v, err := s.GetOrLoad(context.Background(), "k", load)
		if err == nil {
			second <- v
		}
		close(second)
	}()

	// When: the first caller gives up before the load finishes
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)

	// Then: the waiting caller still gets the value and it is cached
	assert.Equal(t, 42, <-second)
	assert.NoError(t, loadErr)
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestStore_BoundedEvicts(t *testing.T) {
	s := NewStore[int]("test", 2, nil)
	s.Add("a", 1)
	s.Add("b", 2)
	s.Add("c", 3)

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestCache_ResetClearsAllStores(t *testing.T) {
	// Given: a cache with entries in both stores
	c := New()
	c.Collections.Add("druid:coll", &model.Record{ExternalIdentifier: "druid:coll"})
	c.AdminPolicies.Add("druid:apo", RelatedObject{Title: "APO", Hydrus: true})

	// When: resetting
	c.Reset()

	// Then: both are empty
	assert.Equal(t, 0, c.Collections.Len())
	assert.Equal(t, 0, c.AdminPolicies.Len())
}

func TestCache_ObserverSeesLookups(t *testing.T) {
	obs := &recordingObserver{}
	c := New(WithObserver(obs), WithMaxEntries(10))

	load := func(context.Context) (RelatedObject, error) { return RelatedObject{Title: "t"}, nil }
	_, _ = c.AdminPolicies.GetOrLoad(context.Background(), "druid:apo", load)
	_, _ = c.AdminPolicies.GetOrLoad(context.Background(), "druid:apo", load)

	assert.Equal(t, []string{"admin_policies:false", "admin_policies:true"}, obs.lookups)
	assert.Equal(t, int64(1), c.Stats()[StoreAdminPolicies].Hits)
}
