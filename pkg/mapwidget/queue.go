// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mapwidget

import (
	"log"
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

const DefaultQueueSize = 1024

// BoundedQueue is a FIFO with a hard capacity and a drop-oldest overflow
// policy.  The pending call and pending event channels both sit on one of
// these so an unobserved side cannot grow without bound.
type BoundedQueue[T any] struct {
	lock    *sync.Mutex
	queue   *linkedlistqueue.Queue
	maxSize int
	name    string
	dropped int
}

func MakeBoundedQueue[T any](name string, maxSize int) *BoundedQueue[T] {
	if maxSize <= 0 {
		maxSize = DefaultQueueSize
	}
	return &BoundedQueue[T]{
		lock:    &sync.Mutex{},
		queue:   linkedlistqueue.New(),
		maxSize: maxSize,
		name:    name,
	}
}

func (q *BoundedQueue[T]) Enqueue(val T) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.queue.Size() >= q.maxSize {
		q.queue.Dequeue()
		q.dropped++
		if q.dropped == 1 {
			log.Printf("[warning] queue %q full (max %d), dropping oldest records\n", q.name, q.maxSize)
		}
	}
	q.queue.Enqueue(val)
}

// Drain returns all queued records in arrival order and clears the queue.
func (q *BoundedQueue[T]) Drain() []T {
	q.lock.Lock()
	defer q.lock.Unlock()
	size := q.queue.Size()
	if size == 0 {
		return nil
	}
	rtn := make([]T, 0, size)
	for {
		val, ok := q.queue.Dequeue()
		if !ok {
			break
		}
		rtn = append(rtn, val.(T))
	}
	return rtn
}

// Peek returns the queued records without clearing them.
func (q *BoundedQueue[T]) Peek() []T {
	q.lock.Lock()
	defer q.lock.Unlock()
	vals := q.queue.Values()
	rtn := make([]T, 0, len(vals))
	for _, val := range vals {
		rtn = append(rtn, val.(T))
	}
	return rtn
}

func (q *BoundedQueue[T]) Size() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.queue.Size()
}

func (q *BoundedQueue[T]) DroppedCount() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.dropped
}
