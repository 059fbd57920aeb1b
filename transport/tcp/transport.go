// Package tcp implements the TCP transport for nanopipe.
package tcp

import (
	"net"

	"github.com/funkygao/nanopipe"
)

type transport struct{}

func (t *transport) Scheme() string {
	return "tcp"
}

func (t *transport) NewDialer(addr string, sock nanopipe.PeerSocket) (nanopipe.PipeDialer, error) {
	var err error
	d := &dialer{url: addr, sock: sock, opts: newOptions()}

	if addr, err = nanopipe.StripScheme(t, addr); err != nil {
		return nil, err
	}

	if d.addr, err = net.ResolveTCPAddr("tcp", addr); err != nil {
		return nil, err
	}
	return d, nil
}

func (t *transport) NewListener(addr string, sock nanopipe.PeerSocket) (nanopipe.PipeListener, error) {
	var err error
	l := &listener{url: addr, sock: sock, opts: newOptions()}

	if addr, err = nanopipe.StripScheme(t, addr); err != nil {
		return nil, err
	}

	if l.addr, err = net.ResolveTCPAddr("tcp", addr); err != nil {
		return nil, err
	}

	return l, nil
}

// NewTransport allocates a new TCP transport.
func NewTransport() nanopipe.Transport {
	return &transport{}
}
