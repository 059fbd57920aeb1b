package nanopipe

// Distributor spreads outbound messages across a set of pipes in strict
// round robin order.  Each message goes to exactly one pipe.  Pipes that
// are full are skipped; pipes found terminated are dropped from the set.
//
// A Distributor is not safe for concurrent use; the owning socket
// serializes access to it.
type Distributor struct {
	pipes   []*Pipe
	current int

	// true while the last part written had More set
	more bool

	// true while the rest of a multipart message is being thrown away
	// because its pipe went away mid-message
	dropping bool
}

// NewDistributor returns an empty distributor.
func NewDistributor() *Distributor {
	return &Distributor{}
}

// Attach adds p at the end of the rotation.
func (d *Distributor) Attach(p *Pipe) {
	d.pipes = append(d.pipes, p)
}

// Remove removes p from the rotation.  It reports whether p was present.
func (d *Distributor) Remove(p *Pipe) bool {
	for i, pp := range d.pipes {
		if pp == p {
			d.removeAt(i)
			return true
		}
	}
	return false
}

// Len returns the number of pipes in the rotation.
func (d *Distributor) Len() int {
	return len(d.pipes)
}

// Pipes returns a snapshot of the rotation, in order.
func (d *Distributor) Pipes() []*Pipe {
	return append([]*Pipe(nil), d.pipes...)
}

func (d *Distributor) removeAt(i int) {
	if d.more && i == d.current {
		// the message in flight lost its pipe
		d.dropping = true
		d.more = false
	}

	copy(d.pipes[i:], d.pipes[i+1:])
	d.pipes[len(d.pipes)-1] = nil
	d.pipes = d.pipes[:len(d.pipes)-1]

	if i < d.current {
		d.current--
	}
	if d.current >= len(d.pipes) {
		d.current = 0
	}
}

// Send hands m to the next pipe in the rotation that accepts it, trying
// every pipe at most once.  It returns ErrWouldBlock when no pipe
// accepted; the caller keeps ownership of m in that case.  Once a
// message's first part is placed, its remaining parts follow it to the
// same pipe.  If that pipe dies mid-message the remaining parts are
// silently freed.
func (d *Distributor) Send(m *Message) error {
	if d.dropping {
		d.dropping = m.More
		m.Free()
		return nil
	}

	if d.more {
		p := d.pipes[d.current]
		if err := p.Write(m); err != nil {
			// a pipe never refuses the tail of a message for credit, so
			// this is termination
			d.removeAt(d.current)
			d.dropping = m.More
			m.Free()
			return nil
		}
		d.advance(m.More)
		return nil
	}

	for n := len(d.pipes); n > 0; n-- {
		p := d.pipes[d.current]
		switch err := p.Write(m); err {
		case nil:
			d.advance(m.More)
			return nil
		case ErrPipeFull:
			d.current = (d.current + 1) % len(d.pipes)
		default:
			// the next pipe shifts into the cursor slot
			d.removeAt(d.current)
		}
	}
	return ErrWouldBlock
}

func (d *Distributor) advance(more bool) {
	d.more = more
	if !more {
		d.current = (d.current + 1) % len(d.pipes)
	}
}
