package spx

import (
	"github.com/spxlog/spx-go/internal/util/generic"
	"github.com/spxlog/spx-go/spxat"

	"github.com/muir/list"
)

// attributeSet is the span's keyed attribute collection.  Keys are
// unique; writing an existing key updates it in place and keeps its
// original insertion slot.  Inserting a new key at capacity first
// evicts the oldest-inserted surviving key, so the set never exceeds
// its bound and the victim is always deterministic.
type attributeSet struct {
	capacity int
	values   map[string]spxat.Value
	order    []string
	dropped  int32
}

func newAttributeSet(capacity int) *attributeSet {
	if capacity < 1 {
		capacity = 1
	}
	return &attributeSet{
		capacity: capacity,
		values:   make(map[string]spxat.Value),
	}
}

func (a *attributeSet) upsert(attr spxat.Attribute) {
	if _, ok := a.values[attr.Key]; ok {
		a.values[attr.Key] = attr.Value
		return
	}
	if len(a.order) >= a.capacity {
		victim := a.order[0]
		copy(a.order, a.order[1:])
		a.order = a.order[:len(a.order)-1]
		delete(a.values, victim)
		a.dropped++
	}
	a.values[attr.Key] = attr.Value
	a.order = append(a.order, attr.Key)
}

func (a *attributeSet) len() int { return len(a.order) }

func (a *attributeSet) snapshot() map[string]spxat.Value {
	if len(a.values) == 0 {
		return nil
	}
	return generic.CopyMap(a.values)
}

// evictingQueue is the ordered bounded buffer behind annotations,
// message events, and links.  Iteration order is insertion order;
// appending at capacity drops the oldest entry first (strict FIFO).
type evictingQueue[T any] struct {
	capacity int
	items    []T
	dropped  int32
}

func newEvictingQueue[T any](capacity int) *evictingQueue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &evictingQueue[T]{capacity: capacity}
}

func (q *evictingQueue[T]) append(item T) {
	if len(q.items) >= q.capacity {
		copy(q.items, q.items[1:])
		q.items[len(q.items)-1] = item
		q.dropped++
		return
	}
	q.items = append(q.items, item)
}

func (q *evictingQueue[T]) len() int { return len(q.items) }

func (q *evictingQueue[T]) snapshot() []T {
	if len(q.items) == 0 {
		return nil
	}
	return list.Copy(q.items)
}

// truncateAttributes caps the attributes attached to one annotation
// or link, dropping the tail and reporting how many were lost.  The
// returned slice is always a fresh copy.
func truncateAttributes(attrs []spxat.Attribute, max int) ([]spxat.Attribute, int32) {
	if len(attrs) == 0 {
		return nil, 0
	}
	if max < 1 {
		max = 1
	}
	if len(attrs) <= max {
		return list.Copy(attrs), 0
	}
	return list.Copy(attrs[:max]), int32(len(attrs) - max)
}
