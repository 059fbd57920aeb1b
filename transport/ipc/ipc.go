// Package ipc implements the IPC transport on top of UNIX domain sockets.
// It speaks the same framing as tcp.
package ipc

import (
	"fmt"
	"net"

	"github.com/funkygao/nanopipe"
)

// options is used for shared GetOption/SetOption logic.
type options map[string]interface{}

// GetOption retrieves an option value.
func (o options) get(name string) (interface{}, error) {
	if o == nil {
		return nil, nanopipe.ErrBadOption
	}
	if v, ok := o[name]; !ok {
		return nil, nanopipe.ErrBadOption
	} else {
		return v, nil
	}
}

// SetOption sets an option.  We have none, so just ErrBadOption.
func (o options) set(string, interface{}) error {
	return nanopipe.ErrBadOption
}

type dialer struct {
	url  string
	addr *net.UnixAddr
	sock nanopipe.PeerSocket
	opts options
}

// Dial implements the PipeDialer Dial method
func (d *dialer) Dial() (nanopipe.Link, error) {
	conn, err := net.DialUnix("unix", nil, d.addr)
	if err != nil {
		return nil, err
	}

	link, err := nanopipe.NewConnLink(conn, d.sock, d.url, false)
	if err != nil {
		return nil, fmt.Errorf("ipc %s: %w", d.addr, err)
	}
	return link, nil
}

// SetOption implements a stub PipeDialer SetOption method.
func (d *dialer) SetOption(n string, v interface{}) error {
	return d.opts.set(n, v)
}

// GetOption implements a stub PipeDialer GetOption method.
func (d *dialer) GetOption(n string) (interface{}, error) {
	return d.opts.get(n)
}

type listener struct {
	url      string
	addr     *net.UnixAddr
	sock     nanopipe.PeerSocket
	accepter *nanopipe.ConnAccepter
	opts     options
}

// Listen implements the PipeListener Listen method.
func (l *listener) Listen() error {
	ln, err := net.ListenUnix("unix", l.addr)
	if err != nil {
		return err
	}
	l.accepter = nanopipe.NewConnAccepter(ln, l.sock, l.url, nil)
	return nil
}

// Accept implements the the PipeListener Accept method.
func (l *listener) Accept() (nanopipe.Link, error) {
	if l.accepter == nil {
		return nil, nanopipe.ErrClosed
	}
	return l.accepter.Accept()
}

// Close implements the PipeListener Close method.  The socket file is
// removed along with the listener.
func (l *listener) Close() error {
	if l.accepter == nil {
		return nil
	}
	return l.accepter.Close()
}

// SetOption implements a stub PipeListener SetOption method.
func (l *listener) SetOption(n string, v interface{}) error {
	return l.opts.set(n, v)
}

// GetOption implements the PipeListener GetOption method.
func (l *listener) GetOption(n string) (interface{}, error) {
	if n == nanopipe.OptionLocalAddress {
		return l.url, nil
	}
	return l.opts.get(n)
}

type ipcTran struct{}

// Scheme implements the Transport Scheme method.
func (t *ipcTran) Scheme() string {
	return "ipc"
}

// NewDialer implements the Transport NewDialer method.
func (t *ipcTran) NewDialer(addr string, sock nanopipe.PeerSocket) (nanopipe.PipeDialer, error) {
	var err error
	d := &dialer{url: addr, sock: sock}

	if addr, err = nanopipe.StripScheme(t, addr); err != nil {
		return nil, err
	}

	if d.addr, err = net.ResolveUnixAddr("unix", addr); err != nil {
		return nil, err
	}
	return d, nil
}

// NewListener implements the Transport NewListener method.
func (t *ipcTran) NewListener(addr string, sock nanopipe.PeerSocket) (nanopipe.PipeListener, error) {
	var err error
	l := &listener{url: addr, sock: sock}

	if addr, err = nanopipe.StripScheme(t, addr); err != nil {
		return nil, err
	}

	if l.addr, err = net.ResolveUnixAddr("unix", addr); err != nil {
		return nil, err
	}

	return l, nil
}

// NewTransport allocates a new IPC transport.
func NewTransport() nanopipe.Transport {
	return &ipcTran{}
}
