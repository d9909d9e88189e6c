package series

import (
	"sort"
	"sync"
)

// Registry owns one Buffer per channel key. Buffers are created lazily the
// first time a key is routed, all with the same capacity.
//
// Route takes the write lock and SnapshotAll the read lock, so a reader either
// sees a routed sample or it doesn't; it never sees a half-updated buffer.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	buffers  map[Key]*Buffer
}

// NewRegistry creates an empty registry. A capacity <= 0 uses DefaultCapacity.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		capacity: capacity,
		buffers:  make(map[Key]*Buffer),
	}
}

// Route appends s to the buffer for key, creating the buffer if needed.
// Returns false if the buffer rejected the sample as out of order.
func (r *Registry) Route(key Key, s Sample) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.buffers[key]
	if !ok {
		buf = NewBuffer(r.capacity)
		r.buffers[key] = buf
	}
	return buf.Append(s)
}

// SnapshotAll returns a copy of every channel's window.
func (r *Registry) SnapshotAll() map[Key][]Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Key][]Sample, len(r.buffers))
	for key, buf := range r.buffers {
		out[key] = buf.Snapshot()
	}
	return out
}

// Snapshot returns a copy of one channel's window, or nil if the key has never
// been routed.
func (r *Registry) Snapshot(key Key) []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buf, ok := r.buffers[key]
	if !ok {
		return nil
	}
	return buf.Snapshot()
}

// Keys returns the known channel keys in sorted order.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]Key, 0, len(r.buffers))
	for key := range r.buffers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buffers)
}

// Capacity returns the per-channel window size.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Clear discards all buffers.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffers = make(map[Key]*Buffer)
}
