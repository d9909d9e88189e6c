package series

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRouteCreatesBuffers(t *testing.T) {
	r := NewRegistry(10)

	r.Route("tempA", Sample{Time: 1, Value: 21.5})
	r.Route("tempB", Sample{Time: 2, Value: 19.0})

	all := r.SnapshotAll()
	require.Len(t, all, 2)
	assert.Equal(t, []Sample{{1, 21.5}}, all["tempA"])
	assert.Equal(t, []Sample{{2, 19.0}}, all["tempB"])
	assert.Equal(t, []Key{"tempA", "tempB"}, r.Keys())
}

func TestRegistryIsolation(t *testing.T) {
	r := NewRegistry(5)
	r.Route("b", Sample{Time: 100, Value: 7})
	before := r.Snapshot("b")

	for i := int64(0); i < 50; i++ {
		r.Route("a", Sample{Time: i, Value: float64(i)})
	}
	// Out-of-order for "a" must not leak into "b" either
	r.Route("a", Sample{Time: 0, Value: -1})

	assert.Equal(t, before, r.Snapshot("b"))
	assert.Len(t, r.Snapshot("a"), 5)
}

func TestRegistryRouteReportsRejection(t *testing.T) {
	r := NewRegistry(3)

	assert.True(t, r.Route("a", Sample{Time: 5, Value: 1}))
	assert.False(t, r.Route("a", Sample{Time: 4, Value: 1}))
	// A different key has its own ordering
	assert.True(t, r.Route("b", Sample{Time: 4, Value: 1}))
}

func TestRegistrySnapshotUnknownKey(t *testing.T) {
	r := NewRegistry(3)
	assert.Nil(t, r.Snapshot("missing"))
	assert.Empty(t, r.SnapshotAll())
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry(3)
	r.Route("a", Sample{Time: 1, Value: 1})
	r.Route("b", Sample{Time: 1, Value: 1})
	require.Equal(t, 2, r.Len())

	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.SnapshotAll())

	// Registry is still usable after Clear and ordering starts fresh
	assert.True(t, r.Route("a", Sample{Time: 0, Value: 2}))
}

func TestRegistryDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewRegistry(0).Capacity())
}

func TestRegistryConcurrentRouteAndSnapshot(t *testing.T) {
	r := NewRegistry(50)
	const writers = 4
	const perWriter = 500

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			key := Key(fmt.Sprintf("ch%d", w))
			for i := 0; i < perWriter; i++ {
				r.Route(key, Sample{Time: int64(i), Value: float64(i)})
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			for _, samples := range r.SnapshotAll() {
				// Every observed window must be ordered and bounded
				assert.LessOrEqual(t, len(samples), 50)
				for j := 1; j < len(samples); j++ {
					assert.LessOrEqual(t, samples[j-1].Time, samples[j].Time)
				}
			}
		}
	}()

	wg.Wait()
	<-done

	all := r.SnapshotAll()
	require.Len(t, all, writers)
	for _, samples := range all {
		require.Len(t, samples, 50)
		assert.Equal(t, int64(perWriter-1), samples[len(samples)-1].Time)
	}
}
