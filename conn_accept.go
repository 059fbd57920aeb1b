package nanopipe

import (
	"errors"
	"fmt"
	"net"
	"sync"
)

// ConnAccepter accepts stream connections and runs the handshake of each
// one in its own goroutine, so a peer that connects and then stays silent
// holds up nobody else.  Stream transports build their PipeListener on it.
type ConnAccepter struct {
	ln    net.Listener
	sock  PeerSocket
	addr  string
	setup func(net.Conn) error

	links  chan acceptResult
	closeq chan struct{}
	once   sync.Once

	mu      sync.Mutex
	pending map[net.Conn]struct{} // handshaking, closed by Close
	closed  bool
}

type acceptResult struct {
	link Link
	err  error
}

// NewConnAccepter starts accepting on ln.  Links are attached to sock and
// report addr as their address.  setup, if not nil, is applied to every
// connection before its handshake.
func NewConnAccepter(ln net.Listener, sock PeerSocket, addr string, setup func(net.Conn) error) *ConnAccepter {
	this := &ConnAccepter{
		ln:      ln,
		sock:    sock,
		addr:    addr,
		setup:   setup,
		links:   make(chan acceptResult),
		closeq:  make(chan struct{}),
		pending: make(map[net.Conn]struct{}),
	}
	go this.run()
	return this
}

func (this *ConnAccepter) run() {
	for {
		conn, err := this.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if !this.deliver(nil, err) {
				return
			}
			continue
		}

		if !this.track(conn) {
			conn.Close()
			return
		}
		go this.handshake(conn)
	}
}

func (this *ConnAccepter) handshake(conn net.Conn) {
	var (
		link Link
		err  error
	)
	if this.setup != nil {
		err = this.setup(conn)
	}
	if err == nil {
		link, err = NewConnLink(conn, this.sock, this.addr, true)
	} else {
		conn.Close()
	}
	this.untrack(conn)

	if err != nil {
		err = fmt.Errorf("accept from %s: %w", conn.RemoteAddr(), err)
	}
	if !this.deliver(link, err) && link != nil {
		// closed while we were attaching
		link.Close()
	}
}

func (this *ConnAccepter) deliver(link Link, err error) bool {
	select {
	case this.links <- acceptResult{link: link, err: err}:
		return true
	case <-this.closeq:
		return false
	}
}

func (this *ConnAccepter) track(conn net.Conn) bool {
	this.mu.Lock()
	defer this.mu.Unlock()
	if this.closed {
		return false
	}
	this.pending[conn] = struct{}{}
	return true
}

func (this *ConnAccepter) untrack(conn net.Conn) {
	this.mu.Lock()
	delete(this.pending, conn)
	this.mu.Unlock()
}

// Accept returns the next attached link, or the error of a connection
// that failed to attach.  It returns ErrClosed once closed.
func (this *ConnAccepter) Accept() (Link, error) {
	select {
	case r := <-this.links:
		return r.link, r.err
	case <-this.closeq:
		return nil, ErrClosed
	}
}

// Addr returns the address the listener is bound to.
func (this *ConnAccepter) Addr() net.Addr {
	return this.ln.Addr()
}

// Close stops accepting and drops the connections still handshaking.
func (this *ConnAccepter) Close() error {
	var err error
	this.once.Do(func() {
		close(this.closeq)
		err = this.ln.Close()

		this.mu.Lock()
		this.closed = true
		for conn := range this.pending {
			conn.Close()
		}
		this.pending = nil
		this.mu.Unlock()
	})
	return err
}
