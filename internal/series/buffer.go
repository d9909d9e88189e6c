package series

// DefaultCapacity is the number of samples retained per channel when no
// capacity is configured.
const DefaultCapacity = 100

// Key identifies one logical series, e.g. a sensor topic.
type Key string

// Sample is a single timestamped reading.
type Sample struct {
	Time  int64   `json:"time"` // epoch milliseconds
	Value float64 `json:"value"`
}

// Buffer is a fixed-capacity rolling window of samples for one channel.
// Samples are kept in non-decreasing time order; the oldest sample is evicted
// once the window is full.
//
// Buffer is not safe for concurrent use. Registry serializes access to the
// buffers it owns.
type Buffer struct {
	data  []Sample
	head  int // next write position
	count int
	size  int
}

// NewBuffer creates an empty buffer. A capacity <= 0 uses DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		data: make([]Sample, capacity),
		size: capacity,
	}
}

// Append adds s to the window. Samples older than the last accepted sample are
// dropped and Append reports false; equal timestamps are accepted.
func (b *Buffer) Append(s Sample) bool {
	if last, ok := b.Last(); ok && s.Time < last.Time {
		return false
	}

	b.data[b.head] = s
	b.head = (b.head + 1) % b.size
	if b.count < b.size {
		b.count++
	}
	return true
}

// Last returns the most recently accepted sample.
func (b *Buffer) Last() (Sample, bool) {
	if b.count == 0 {
		return Sample{}, false
	}
	return b.data[(b.head-1+b.size)%b.size], true
}

// Snapshot returns a copy of the window, oldest first. The returned slice is
// never aliased with the buffer's storage.
func (b *Buffer) Snapshot() []Sample {
	out := make([]Sample, b.count)
	start := (b.head - b.count + b.size) % b.size
	for i := 0; i < b.count; i++ {
		out[i] = b.data[(start+i)%b.size]
	}
	return out
}

// Len returns the number of samples currently held.
func (b *Buffer) Len() int {
	return b.count
}

// Cap returns the fixed capacity of the window.
func (b *Buffer) Cap() int {
	return b.size
}
