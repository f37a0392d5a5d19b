// Package ringbuf provides a fixed-capacity buffer that keeps the most recent
// values and evicts the oldest one on overflow. Values are read back newest
// first. A Ring is not safe for concurrent use; owners hold their own lock.
package ringbuf

// Ring is a bounded, newest-first buffer.
type Ring[T any] struct {
	buf  []T
	head int // slot of the newest value
	size int
}

// New returns an empty ring holding at most capacity values. A capacity below
// one is raised to one.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		buf:  make([]T, capacity),
		head: capacity - 1,
	}
}

// Push stores v as the newest value. When the ring was full the oldest value is
// overwritten and returned with evicted=true.
func (r *Ring[T]) Push(v T) (old T, evicted bool) {
	r.head = (r.head + 1) % len(r.buf)
	if r.size == len(r.buf) {
		old, evicted = r.buf[r.head], true
	} else {
		r.size++
	}
	r.buf[r.head] = v
	return old, evicted
}

// Len returns the number of values held.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the maximum number of values held.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// At returns the i-th newest value (0 is the newest). It panics when i is out of
// range, like a slice index.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("ringbuf: index out of range")
	}
	return r.buf[(r.head-i+len(r.buf))%len(r.buf)]
}

// Newest copies up to n values, newest first. n <= 0 means all of them.
func (r *Ring[T]) Newest(n int) []T {
	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]T, n)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}
