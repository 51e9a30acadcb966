package relay

// Queue is an ordered FIFO with an optional capacity limit.
// Pushing into a full queue evicts the oldest element.
// Queue is not safe for concurrent use; Relay guards it with its own mutex.
type Queue[T any] struct {
	buf      []T
	head     int
	size     int
	capacity int
}

// NewQueue creates a queue holding at most capacity elements.
// A capacity of zero or less disables the limit.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{capacity: capacity}
}

// Push appends v to the tail. If the queue was already at capacity the
// head element is removed and returned with ok set to true.
func (q *Queue[T]) Push(v T) (evicted T, ok bool) {
	if q.capacity > 0 && q.size == q.capacity {
		evicted = q.buf[q.head]
		var zero T
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
		q.size--
		ok = true
	}

	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++

	return evicted, ok
}

// Head returns a copy of the first n elements, or fewer if the queue is shorter.
func (q *Queue[T]) Head(n int) []T {
	n = q.clamp(n)
	out := make([]T, n)
	for i := range n {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

// Remove deletes the first n elements, or all of them if fewer remain.
func (q *Queue[T]) Remove(n int) {
	n = q.clamp(n)
	var zero T
	for i := range n {
		q.buf[(q.head+i)%len(q.buf)] = zero
	}
	if q.size == n {
		q.head = 0
	} else {
		q.head = (q.head + n) % len(q.buf)
	}
	q.size -= n
}

// Drain removes and returns every element in order.
func (q *Queue[T]) Drain() []T {
	out := q.Head(q.size)
	q.Remove(q.size)
	return out
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	return q.size
}

// Cap returns the configured capacity, zero meaning unbounded.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

func (q *Queue[T]) clamp(n int) int {
	if n < 0 {
		return 0
	}
	return min(n, q.size)
}

// grow reallocates the ring, unwrapping it so head starts at index zero.
// When bounded, the buffer never grows past capacity.
func (q *Queue[T]) grow() {
	next := max(2*len(q.buf), 8)
	if q.capacity > 0 {
		next = min(next, q.capacity)
	}
	buf := make([]T, next)
	for i := range q.size {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
