// Package inproc implements an simple inproc transport for nanopipe.
//
// An inproc connection joins the outbound pipe of a PUSH socket to the
// inbound pipe of a PULL socket.  There is no goroutine per connection:
// messages are moved from one pipe to the other inside the wake-ups that
// the pipes issue, so a Send that returns has already crossed over when
// the receiving pipe had room.
package inproc

import (
	"strings"
	"sync"

	"github.com/funkygao/nanopipe"
)

type addr string

func (a addr) String() string {
	s := string(a)
	if strings.HasPrefix(s, "inproc://") {
		s = s[len("inproc://"):]
	}
	return s
}

func (addr) Network() string {
	return "inproc"
}

// conn is one connection.  It is the reader of the PUSH side pipe and
// the writer of the PULL side pipe, and moves messages between them.
type conn struct {
	sync.Mutex

	addr   string
	push   *end
	pull   *end
	out    *nanopipe.Pipe // PUSH socket's pipe, we read it
	in     *nanopipe.Pipe // PULL socket's pipe, we write it
	closed bool
	done   chan struct{}
}

// end is what one of the two sockets sees of the connection.
type end struct {
	c      *conn
	sock   nanopipe.PeerSocket
	id     nanopipe.PeerID
	server bool
}

// Wake forwards whatever the PULL side has room for.  It is called by
// both pipes, with the lock of the socket that touched the pipe held.
func (c *conn) Wake() {
	c.Lock()
	defer c.Unlock()

	if c.closed || c.out == nil || c.in == nil {
		return
	}

	for c.in.CanWrite() {
		m, err := c.out.Read()
		switch err {
		case nil:
			if c.in.Write(m) != nil {
				m.Free()
				return
			}

		case nanopipe.ErrPipeDrained:
			c.in.PeerTerminate()
			return

		default:
			return
		}
	}
}

func (c *conn) close(from *end) error {
	c.Lock()
	if c.closed {
		c.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	in := c.in
	c.Unlock()

	if from == c.pull {
		// nobody left to deliver to
		c.push.sock.DetachPeer(c.push.id)
		c.pull.sock.DetachPeer(c.pull.id)
	} else {
		// the PULL side keeps what already crossed over
		c.push.sock.DetachPeer(c.push.id)
		if in != nil {
			in.PeerTerminate()
		}
	}

	c.discardOut()
	return nil
}

// discardOut frees what never crossed over.  We are the reader of out.
// Discard wakes us, so it runs outside the lock.
func (c *conn) discardOut() {
	c.Lock()
	out := c.out
	c.Unlock()
	if out != nil {
		out.Discard()
	}
}

func (e *end) Close() error {
	return e.c.close(e)
}

func (e *end) Done() <-chan struct{} {
	return e.c.done
}

func (e *end) Address() string {
	return e.c.addr
}

func (e *end) IsServer() bool {
	return e.server
}

func (e *end) GetProp(name string) (interface{}, error) {
	switch name {
	case nanopipe.PropRemoteAddr:
		return addr(e.c.addr), nil
	case nanopipe.PropLocalAddr:
		return addr(e.c.addr), nil
	}
	// We have no special properties
	return nil, nanopipe.ErrBadProperty
}

type listener struct {
	addr    string
	sock    nanopipe.PeerSocket
	acceptq chan nanopipe.Link
	closeq  chan struct{}
	once    sync.Once
}

type inprocTran struct{}

var listeners struct {
	// Who is listening, on which "address"?
	byAddr map[string]*listener
	mx     sync.Mutex
}

func init() {
	listeners.byAddr = make(map[string]*listener)
}

type dialer struct {
	addr string
	sock nanopipe.PeerSocket
}

func (d *dialer) Dial() (nanopipe.Link, error) {
	listeners.mx.Lock()
	l, ok := listeners.byAddr[d.addr]
	listeners.mx.Unlock()
	if !ok || l == nil {
		return nil, nanopipe.ErrConnRefused
	}

	if !nanopipe.ValidPeers(d.sock.Info(), l.sock.Info()) {
		return nil, nanopipe.ErrBadProto
	}

	c := &conn{
		addr: d.addr,
		done: make(chan struct{}),
	}
	client := &end{c: c, sock: d.sock, id: nanopipe.NewPeerID()}
	server := &end{c: c, sock: l.sock, id: nanopipe.NewPeerID(), server: true}
	if d.sock.Info().Flags&nanopipe.FlagSend != 0 {
		c.push, c.pull = client, server
	} else {
		c.push, c.pull = server, client
	}

	if err := c.attach(); err != nil {
		return nil, err
	}

	select {
	case l.acceptq <- server:
	default:
		// nobody is accepting, the connection is up anyway
		nanopipe.Debugf("inproc %s: accept queue full, link %d not reported", d.addr, server.id)
	}
	return client, nil
}

// attach registers both ends with their sockets, then moves whatever the
// PUSH side managed to queue in the meantime.
func (c *conn) attach() error {
	sendHWM, _ := c.push.sock.HWM()
	_, recvHWM := c.pull.sock.HWM()

	out, err := c.push.sock.AttachPeer(c.push.id, c.push, recvHWM, c)
	if err != nil {
		return err
	}
	c.Lock()
	c.out = out
	c.Unlock()

	in, err := c.pull.sock.AttachPeer(c.pull.id, c.pull, sendHWM, c)
	if err != nil {
		c.Lock()
		c.closed = true
		close(c.done)
		c.Unlock()
		c.push.sock.DetachPeer(c.push.id)
		c.discardOut()
		return err
	}
	c.Lock()
	c.in = in
	c.Unlock()

	c.Wake()
	return nil
}

func (*dialer) SetOption(string, interface{}) error {
	return nanopipe.ErrBadOption
}

func (*dialer) GetOption(string) (interface{}, error) {
	return nil, nanopipe.ErrBadOption
}

func (l *listener) Listen() error {
	listeners.mx.Lock()
	defer listeners.mx.Unlock()
	if _, ok := listeners.byAddr[l.addr]; ok {
		return nanopipe.ErrAddrInUse
	}
	listeners.byAddr[l.addr] = l
	return nil
}

// Accept returns the next connection made to the listener.  The link is
// attached by the dialing side already.
func (l *listener) Accept() (nanopipe.Link, error) {
	select {
	case link := <-l.acceptq:
		return link, nil
	case <-l.closeq:
		return nil, nanopipe.ErrClosed
	}
}

func (*listener) SetOption(string, interface{}) error {
	return nanopipe.ErrBadOption
}

func (l *listener) GetOption(name string) (interface{}, error) {
	if name == nanopipe.OptionLocalAddress {
		return l.addr, nil
	}
	return nil, nanopipe.ErrBadOption
}

func (l *listener) Close() error {
	listeners.mx.Lock()
	if listeners.byAddr[l.addr] == l {
		delete(listeners.byAddr, l.addr)
	}
	listeners.mx.Unlock()

	l.once.Do(func() {
		close(l.closeq)
	})
	return nil
}

func (t *inprocTran) Scheme() string {
	return "inproc"
}

func (t *inprocTran) NewDialer(addr string, sock nanopipe.PeerSocket) (nanopipe.PipeDialer, error) {
	if _, err := nanopipe.StripScheme(t, addr); err != nil {
		return nil, err
	}
	return &dialer{addr: addr, sock: sock}, nil
}

func (t *inprocTran) NewListener(addr string, sock nanopipe.PeerSocket) (nanopipe.PipeListener, error) {
	if _, err := nanopipe.StripScheme(t, addr); err != nil {
		return nil, err
	}
	l := &listener{
		addr:    addr,
		sock:    sock,
		acceptq: make(chan nanopipe.Link, 64),
		closeq:  make(chan struct{}),
	}
	return l, nil
}

// NewTransport allocates a new inproc:// transport.
func NewTransport() nanopipe.Transport {
	return &inprocTran{}
}
