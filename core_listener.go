package nanopipe

import (
	"errors"

	"go.uber.org/zap"
)

// listener implements the Listener interface.
type listener struct {
	l PipeListener // created by Transport

	sock *socket
	addr string // local bind addr

	closed bool // guarded by the socket lock
}

func (this *listener) Listen() error {
	this.sock.Lock()
	if this.sock.closing || this.closed {
		this.sock.Unlock()
		return ErrClosed
	}
	this.sock.Unlock()

	if err := this.l.Listen(); err != nil {
		return err
	}

	this.sock.Lock()
	if this.sock.closing {
		this.sock.Unlock()
		this.l.Close()
		return ErrClosed
	}
	this.sock.listeners = append(this.sock.listeners, this)
	this.sock.waiter.Add()
	this.sock.Unlock()

	this.sock.logger().Debug("listening", zap.String("addr", this.addr))

	// keep serving connections
	go this.serve()

	return nil
}

// serve spins in a loop, calling the accepter's Accept routine.  Accepted
// links are already attached to the socket.
func (this *listener) serve() {
	defer this.sock.waiter.Done()

	for {
		link, err := this.l.Accept() // will handshake
		if err == nil {
			this.sock.logger().Debug("accepted", zap.String("addr", link.Address()))
			continue
		}

		// If the underlying PipeListener is closed, or not
		// listening, we expect to return back with an error.
		if errors.Is(err, ErrClosed) {
			return
		}
		this.sock.logger().Debug("accept failed", zap.String("addr", this.addr), zap.Error(err))

		select {
		case <-this.sock.closeChan:
			return
		default:
		}
	}
}

func (this *listener) close() error {
	this.sock.Lock()
	if this.closed {
		this.sock.Unlock()
		return ErrClosed
	}
	this.closed = true
	this.sock.Unlock()

	return this.l.Close()
}

func (this *listener) Close() error {
	this.sock.forgetListener(this)
	return this.close()
}

func (this *listener) GetOption(name string) (interface{}, error) {
	return this.l.GetOption(name)
}

func (this *listener) SetOption(name string, val interface{}) error {
	return this.l.SetOption(name, val)
}

func (this *listener) Address() string {
	return this.addr
}
