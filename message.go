package nanopipe

import (
	"sync/atomic"
)

// Message encapsulates the messages that we exchange back and forth.  The
// Body is opaque to the engine.  More is set on every part of a multipart
// message except the last one; the parts of one message always travel
// through the same pipe, back to back.
type Message struct {
	Body []byte
	More bool

	bodyBuf []byte

	slabSize int
	refCount int32
}

type messageSlab struct {
	maxBody int
	cache   chan *Message
}

var messagePool = []messageSlab{
	{maxBody: 64, cache: make(chan *Message, 2048)},   // 128K
	{maxBody: 128, cache: make(chan *Message, 1024)},  // 128K
	{maxBody: 1024, cache: make(chan *Message, 1024)}, // 1 MB
	{maxBody: 8192, cache: make(chan *Message, 256)},  // 2 MB
	{maxBody: 65536, cache: make(chan *Message, 64)},  // 4 MB
}

// Free decrements the reference count on a message, and releases its
// resources if no further references remain.  While this is not
// strictly necessary thanks to GC, doing so allows for the resources to
// be recycled without engaging GC.  It returns true when the message was
// released.
func (m *Message) Free() bool {
	if refCount := atomic.AddInt32(&m.refCount, -1); refCount > 0 {
		return false
	} else if refCount < 0 {
		// already released
		return true
	}

	var ch chan *Message
	for _, slab := range messagePool {
		if m.slabSize == slab.maxBody {
			ch = slab.cache
			break
		}
	}
	if ch == nil {
		// not from the pool
		return true
	}

	m.More = false
	select {
	case ch <- m:
	default:
		// message pool is full, just discard it
	}
	return true
}

// Dup creates a "duplicate" message.  What it really does is simply
// increment the reference count on the message.  Note that since the
// underlying message is actually shared, consumers must take care not
// to modify the message.
func (m *Message) Dup() *Message {
	atomic.AddInt32(&m.refCount, 1)
	return m
}

// NewMessage is the supported way to obtain a new Message.  This makes
// use of a "slab allocator" which greatly reduces the load on the
// garbage collector.  The returned Body is empty with at least sz bytes of
// capacity.
func NewMessage(sz int) *Message {
	var msg *Message
	var ch chan *Message
	for _, slab := range messagePool {
		if sz <= slab.maxBody {
			ch = slab.cache
			sz = slab.maxBody
			break
		}
	}

	select {
	case msg = <-ch:
	default:
		// message pool empty, or too large for any slab
		msg = &Message{}
		msg.slabSize = sz
		msg.bodyBuf = make([]byte, 0, msg.slabSize)
	}

	msg.refCount = 1
	msg.Body = msg.bodyBuf
	return msg
}

// newMessageFrom wraps b without copying.  The result never enters the pool.
func newMessageFrom(b []byte, more bool) *Message {
	return &Message{Body: b, More: more, refCount: 1}
}
