package nanopipe

// Aggregator merges inbound pipes into a single stream, serving them in
// fair queue order: the scan for a message resumes at the pipe after the
// one that delivered last, so no pipe with data waits behind another for
// more than one round.  Pipes whose writer went away are dropped once
// they are drained.
//
// An Aggregator is not safe for concurrent use; the owning socket
// serializes access to it.
type Aggregator struct {
	pipes   []*Pipe
	current int

	// true while the last part read had More set
	more bool

	onDrained func(*Pipe)
}

// NewAggregator returns an empty aggregator.  onDrained, if not nil, is
// called for each pipe the aggregator terminates and removes after it
// reported ErrPipeDrained.
func NewAggregator(onDrained func(*Pipe)) *Aggregator {
	return &Aggregator{onDrained: onDrained}
}

// OnDrained replaces the drained pipe callback.
func (a *Aggregator) OnDrained(fn func(*Pipe)) {
	a.onDrained = fn
}

// Attach adds p at the end of the rotation.
func (a *Aggregator) Attach(p *Pipe) {
	a.pipes = append(a.pipes, p)
}

// Remove removes p from the rotation.  It reports whether p was present.
func (a *Aggregator) Remove(p *Pipe) bool {
	for i, pp := range a.pipes {
		if pp == p {
			a.removeAt(i)
			return true
		}
	}
	return false
}

func (a *Aggregator) Len() int {
	return len(a.pipes)
}

// Pipes returns a snapshot of the rotation, in order.
func (a *Aggregator) Pipes() []*Pipe {
	return append([]*Pipe(nil), a.pipes...)
}

func (a *Aggregator) removeAt(i int) {
	if i == a.current {
		a.more = false
	}

	copy(a.pipes[i:], a.pipes[i+1:])
	a.pipes[len(a.pipes)-1] = nil
	a.pipes = a.pipes[:len(a.pipes)-1]

	if i < a.current {
		a.current--
	}
	if a.current >= len(a.pipes) {
		a.current = 0
	}
}

// Recv returns the next message in fair queue order, visiting every pipe
// at most once.  It returns ErrWouldBlock when no pipe has data.  While a
// multipart message is being read, only its pipe is consulted.
func (a *Aggregator) Recv() (*Message, error) {
	for n := len(a.pipes); n > 0; n-- {
		p := a.pipes[a.current]
		m, err := p.Read()
		switch err {
		case nil:
			a.more = m.More
			if !m.More {
				a.current = (a.current + 1) % len(a.pipes)
			}
			return m, nil

		case ErrPipeEmpty:
			if a.more {
				// the rest of the message is on its way
				return nil, ErrWouldBlock
			}
			a.current = (a.current + 1) % len(a.pipes)

		case ErrPipeDrained:
			p.Terminate()
			a.removeAt(a.current)
			if a.onDrained != nil {
				a.onDrained(p)
			}

		default:
			a.removeAt(a.current)
		}
	}
	return nil, ErrWouldBlock
}
