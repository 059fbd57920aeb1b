package nanopipe

import (
	"sync/atomic"
)

type chunk struct {
	msgs [chunkSize]*Message
	next atomic.Pointer[chunk]
}

// queue is an unbounded single-producer/single-consumer FIFO made of
// linked fixed size chunks.  push must only be called by the writer and
// pop only by the reader; len may be called from either side.  A slot is
// published to the reader by the atomic increment of pushed, and a chunk's
// next pointer is always stored before its last slot is published.
type queue struct {
	// writer side
	tail    *chunk
	tailPos int

	// reader side
	head    *chunk
	headPos int

	pushed atomic.Uint64
	popped atomic.Uint64
}

func newQueue() *queue {
	c := &chunk{}
	return &queue{head: c, tail: c}
}

func (q *queue) push(m *Message) {
	q.tail.msgs[q.tailPos] = m
	q.tailPos++
	if q.tailPos == chunkSize {
		c := &chunk{}
		q.tail.next.Store(c)
		q.tail = c
		q.tailPos = 0
	}
	q.pushed.Add(1)
}

func (q *queue) pop() (*Message, bool) {
	n := q.popped.Load()
	if n == q.pushed.Load() {
		return nil, false
	}

	m := q.head.msgs[q.headPos]
	q.head.msgs[q.headPos] = nil
	q.headPos++
	if q.headPos == chunkSize {
		q.head = q.head.next.Load()
		q.headPos = 0
	}
	q.popped.Store(n + 1)
	return m, true
}

func (q *queue) len() int {
	popped := q.popped.Load()
	return int(q.pushed.Load() - popped)
}
