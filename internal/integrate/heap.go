package integrate

import (
	"container/heap"

	"gonum.org/v1/gonum/floats"
)

// errHeap is a max-heap of subdomains ordered by their error estimate,
// so the next region to split is always at index 0.
type errHeap[T any] struct {
	items []T
	err   func(T) float64
}

func (h *errHeap[T]) Len() int           { return len(h.items) }
func (h *errHeap[T]) Less(i, j int) bool { return h.err(h.items[i]) > h.err(h.items[j]) }
func (h *errHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *errHeap[T]) Push(x any)         { h.items = append(h.items, x.(T)) }

func (h *errHeap[T]) Pop() any {
	n := len(h.items)
	it := h.items[n-1]
	var zero T
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	return it
}

func newErrHeap[T any](errOf func(T) float64, first T) *errHeap[T] {
	h := &errHeap[T]{items: []T{first}, err: errOf}
	heap.Init(h)
	return h
}

func (h *errHeap[T]) push(x T) { heap.Push(h, x) }
func (h *errHeap[T]) pop() T   { return heap.Pop(h).(T) }

// totals returns the summed value and error over every region in the heap.
func (h *errHeap[T]) totals(val func(T) float64) (float64, float64) {
	vals := make([]float64, len(h.items))
	errs := make([]float64, len(h.items))
	for i, it := range h.items {
		vals[i] = val(it)
		errs[i] = h.err(it)
	}
	return floats.Sum(vals), floats.Sum(errs)
}
