package nanopipe

import (
	"sync/atomic"
)

// PipeState is the lifecycle state of a Pipe.
type PipeState int32

const (
	// PipeActive pipes accept writes and serve reads.
	PipeActive PipeState = iota

	// PipePeerTerminating pipes were closed by their writer.  They accept
	// no new writes; the reader drains what is left.
	PipePeerTerminating

	// PipeTerminated pipes are torn down.  Nothing queued is ever
	// delivered.  This state is final.
	PipeTerminated
)

func (s PipeState) String() string {
	switch s {
	case PipeActive:
		return "active"
	case PipePeerTerminating:
		return "peer-terminating"
	case PipeTerminated:
		return "terminated"
	}
	return "unknown"
}

// Waker is notified by a pipe when something its owner may be waiting for
// has changed: new data for the reader, new credit for the writer, or
// termination for both.  Wake must not block.
type Waker interface {
	Wake()
}

type nopWaker struct{}

func (nopWaker) Wake() {}

var pipeIDs atomic.Uint64

// Pipe is a bounded, credit controlled message queue between exactly one
// writer and one reader.
//
// Credit is counted in whole messages: a multipart message takes one unit
// of credit however many parts it has, so at most hwm complete messages
// plus the one being written are ever queued.
//
// Only the writer may call Write, CanWrite, Credit and PeerTerminate, and
// only the reader may call Read and Discard.  Terminate, State, Len and the
// accessors are safe from anywhere.  The data path takes no locks: the
// queue is a lock-free SPSC list and the credit is an atomic counter.
type Pipe struct {
	id    uint64
	hwm   int
	q     *queue
	state atomic.Int32

	// complete messages queued: incremented by the writer on the last
	// part, decremented by the reader on the last part
	msgs atomic.Int64

	// true while the writer is in the middle of a multipart message
	inMsg bool

	writer Waker
	reader Waker

	peer *peer
}

// NewPipe allocates an active pipe holding at most hwm messages; zero
// means unbounded.  writer is woken when the reader frees credit, reader
// when the writer adds data.  Both are woken on termination.
func NewPipe(hwm int, writer, reader Waker) *Pipe {
	if hwm < 0 {
		hwm = 0
	}
	if writer == nil {
		writer = nopWaker{}
	}
	if reader == nil {
		reader = nopWaker{}
	}
	return &Pipe{
		id:     pipeIDs.Add(1),
		hwm:    hwm,
		q:      newQueue(),
		writer: writer,
		reader: reader,
	}
}

// ID returns the identity of the pipe.  IDs are never reused.
func (p *Pipe) ID() uint64 {
	return p.id
}

// HWM returns the capacity of the pipe, zero if unbounded.
func (p *Pipe) HWM() int {
	return p.hwm
}

func (p *Pipe) State() PipeState {
	return PipeState(p.state.Load())
}

// Len returns the number of queued parts.
func (p *Pipe) Len() int {
	return p.q.len()
}

// Credit returns how many more messages the writer may queue before the
// pipe is full, or -1 for an unbounded pipe.
func (p *Pipe) Credit() int {
	if p.hwm == 0 {
		return -1
	}
	if c := p.hwm - int(p.msgs.Load()); c > 0 {
		return c
	}
	return 0
}

// credit is only checked on the first part of a message, so the parts of
// a multipart message are never split by a full pipe.
func (p *Pipe) hasCredit() bool {
	return p.inMsg || p.hwm == 0 || int(p.msgs.Load()) < p.hwm
}

// CanWrite reports whether Write would accept a message now.
func (p *Pipe) CanWrite() bool {
	return p.State() == PipeActive && p.hasCredit()
}

// Write queues m.  It returns ErrPipeFull when the credit is exhausted and
// ErrTerminated when the pipe no longer accepts writes.  On success the
// pipe owns m.
func (p *Pipe) Write(m *Message) error {
	if p.State() != PipeActive {
		return ErrTerminated
	}
	if !p.hasCredit() {
		return ErrPipeFull
	}

	if !m.More {
		p.msgs.Add(1)
	}
	p.q.push(m)
	p.inMsg = m.More
	p.reader.Wake()
	return nil
}

// Read dequeues the oldest message.  It returns ErrPipeEmpty when nothing
// is queued, ErrPipeDrained when the writer has gone and everything was
// read, and ErrTerminated once the pipe is terminated.  A read that finds
// the pipe terminated frees whatever is still queued.
func (p *Pipe) Read() (*Message, error) {
	st := p.State()
	if st == PipeTerminated {
		p.freeQueued()
		return nil, ErrTerminated
	}

	m, ok := p.q.pop()
	if !ok {
		if st == PipePeerTerminating {
			return nil, ErrPipeDrained
		}
		return nil, ErrPipeEmpty
	}
	if !m.More {
		p.msgs.Add(-1)
	}

	if p.State() == PipeTerminated {
		// terminated while we were reading: discard wins over delivery
		m.Free()
		p.freeQueued()
		return nil, ErrTerminated
	}

	p.writer.Wake()
	return m, nil
}

// Terminate tears the pipe down.  Queued messages are never delivered;
// the reader frees them on its next Read, or at once through Discard.
// Both sides are woken.  Calling it again has no effect.
func (p *Pipe) Terminate() {
	if PipeState(p.state.Swap(int32(PipeTerminated))) == PipeTerminated {
		return
	}

	p.writer.Wake()
	p.reader.Wake()
}

// Discard terminates the pipe and returns the queued parts to the message
// pool.  It reports how many parts were dropped.  Reader side only.
func (p *Pipe) Discard() int {
	p.Terminate()
	return p.freeQueued()
}

// must be called by the reader
func (p *Pipe) freeQueued() int {
	n := 0
	for {
		m, ok := p.q.pop()
		if !ok {
			return n
		}
		if !m.More {
			p.msgs.Add(-1)
		}
		m.Free()
		n++
	}
}

// PeerTerminate is called on behalf of the writer when it goes away for
// good.  Already queued messages stay readable.
func (p *Pipe) PeerTerminate() {
	if p.state.CompareAndSwap(int32(PipeActive), int32(PipePeerTerminating)) {
		p.reader.Wake()
	}
}
