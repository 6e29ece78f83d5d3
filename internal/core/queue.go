// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import "sync"

type queueSlot[T any] struct {
	occupied bool
	value    T
}

// SortedQueue is a single-consumer, multi-producer queue that releases
// items strictly in the order of their sequence number, regardless of the
// order producers push them in. It is a dense sliding window indexed by
// n-base, not a heap: sequence numbers are contiguous, slot access is
// O(1), and the consumer never inspects anything past slot zero.
//
// Unlike the source library's queue, which treats a slot as empty when
// its value equals T's zero value, every slot here carries an explicit
// occupied flag: a zero-valued but legitimately pushed item is never
// mistaken for an empty one.
type SortedQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	base   uint64
	slots  []queueSlot[T]
	closed bool
}

// NewSortedQueue creates an empty queue starting at sequence number 0.
func NewSortedQueue[T any]() *SortedQueue[T] {
	q := &SortedQueue[T]{}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// Push inserts v at sequence slot n. n must be >= the current base and
// must not have been pushed before. Thread-safe; wakes any consumer
// blocked in WaitAndPop if n is the slot it's waiting on.
func (q *SortedQueue[T]) Push(n uint64, v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n < q.base {
		return ErrQueueSequenceUsed
	}

	idx := n - q.base
	for uint64(len(q.slots)) <= idx {
		q.slots = append(q.slots, queueSlot[T]{})
	}

	if q.slots[idx].occupied {
		return ErrQueueSequenceUsed
	}

	q.slots[idx] = queueSlot[T]{occupied: true, value: v}

	if idx == 0 {
		q.cond.Broadcast()
	}

	return nil
}

// WaitAndPop blocks until slot base is ready, returns it, and advances
// base by one. It returns ErrQueueClosed if Close is called while no
// slot-zero value is, or ever becomes, available.
func (q *SortedQueue[T]) WaitAndPop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if len(q.slots) > 0 && q.slots[0].occupied {
			v := q.slots[0].value
			q.slots = q.slots[1:]
			q.base++

			return v, nil
		}

		if q.closed {
			var zero T

			return zero, ErrQueueClosed
		}

		q.cond.Wait()
	}
}

// TryPop is the non-blocking variant of WaitAndPop: it returns
// ErrNotReady immediately instead of waiting when slot base is empty.
func (q *SortedQueue[T]) TryPop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.slots) == 0 || !q.slots[0].occupied {
		var zero T

		if q.closed {
			return zero, ErrQueueClosed
		}

		return zero, ErrNotReady
	}

	v := q.slots[0].value
	q.slots = q.slots[1:]
	q.base++

	return v, nil
}

// Empty reports whether slot base is unoccupied. Slots beyond base may
// already hold values pushed out of order.
func (q *SortedQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.slots) == 0 || !q.slots[0].occupied
}

// Size returns the current width of the sliding window: the distance
// from base to the highest sequence number seen, plus one. Callers use
// it to bound memory growth via backpressure (see the reader pipeline).
func (q *SortedQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.slots)
}

// Base returns the next sequence number the consumer is waiting on.
func (q *SortedQueue[T]) Base() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.base
}

// Close marks the queue as closed: once every already-pushed slot has
// been drained, WaitAndPop and TryPop report ErrQueueClosed instead of
// blocking forever.
func (q *SortedQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}
