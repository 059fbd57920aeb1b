package tcp

import (
	"net"

	"github.com/funkygao/nanopipe"
)

type listener struct {
	url      string
	addr     *net.TCPAddr
	sock     nanopipe.PeerSocket
	accepter *nanopipe.ConnAccepter
	opts     options
}

// Accept returns the next attached connection.  A connection that fails
// the handshake is reported as an error; the listener keeps going.
func (l *listener) Accept() (nanopipe.Link, error) {
	if l.accepter == nil {
		return nil, nanopipe.ErrClosed
	}
	return l.accepter.Accept()
}

func (l *listener) Listen() error {
	ln, err := net.ListenTCP("tcp", l.addr)
	if err != nil {
		return err
	}
	l.accepter = nanopipe.NewConnAccepter(ln, l.sock, l.url, l.setup)
	return nil
}

func (l *listener) setup(conn net.Conn) error {
	return l.opts.configTCP(conn.(*net.TCPConn))
}

func (l *listener) Close() error {
	if l.accepter == nil {
		return nil
	}
	return l.accepter.Close()
}

func (l *listener) SetOption(n string, v interface{}) error {
	return l.opts.set(n, v)
}

func (l *listener) GetOption(n string) (interface{}, error) {
	if n == nanopipe.OptionLocalAddress {
		if l.accepter == nil {
			return nil, nanopipe.ErrClosed
		}
		// useful when listening on port 0
		return "tcp://" + l.accepter.Addr().String(), nil
	}
	return l.opts.get(n)
}
