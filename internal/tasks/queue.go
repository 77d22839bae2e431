package tasks

// queue is a FIFO drained one item at a time.
type queue[T any] struct {
	items []T
}

func newQueue[T any](items []T) *queue[T] {
	q := &queue[T]{items: make([]T, len(items))}
	copy(q.items, items)
	return q
}

func (q *queue[T]) Len() int { return len(q.items) }

// Pop removes and returns the head. ok is false when the queue is empty.
func (q *queue[T]) Pop() (item T, ok bool) {
	if len(q.items) == 0 {
		return item, false
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, true
}
