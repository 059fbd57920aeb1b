// Package api offers a BSD socket flavoured wrapper around nanopipe
// sockets: Bind/Connect and flag based Send/Recv.
package api

import (
	"github.com/funkygao/nanopipe"
	"github.com/funkygao/nanopipe/protocol/pull"
	"github.com/funkygao/nanopipe/protocol/push"
	"github.com/funkygao/nanopipe/transport/all"
)

// Domain is the socket domain or address family.
type Domain int

const (
	AF_SP Domain = iota
)

// Protocol is the numeric abstraction to the patterns that nanopipe
// supports.
type Protocol int

const (
	PUSH = Protocol(nanopipe.ProtoPush)
	PULL = Protocol(nanopipe.ProtoPull)
)

// Flags for Send and Recv.
const (
	// DontWait makes the call fail with nanopipe.ErrWouldBlock instead
	// of waiting.
	DontWait = 1 << iota

	// SndMore marks the part as followed by more parts of the same
	// message.
	SndMore
)

type Socket struct {
	sock nanopipe.Socket

	protocol Protocol
	domain   Domain

	// More is set by Recv when the part received is followed by more
	// parts of the same message.
	More bool
}

func NewSocket(d Domain, p Protocol) (*Socket, error) {
	if d != AF_SP {
		return nil, ErrBadDomain
	}

	var err error
	sock := &Socket{protocol: p, domain: d}
	switch p {
	case PUSH:
		sock.sock, err = push.NewSocket()
	case PULL:
		sock.sock, err = pull.NewSocket()
	default:
		err = ErrBadProtocol
	}
	if err != nil {
		return nil, err
	}

	all.AddTransports(sock.sock)

	return sock, nil
}

// Raw returns the underlying socket.
func (this *Socket) Raw() nanopipe.Socket {
	return this.sock
}

func (this *Socket) Close() error {
	return this.sock.Close()
}

func (this *Socket) Bind(addr string) error {
	return this.sock.Listen(addr)
}

func (this *Socket) Unbind(addr string) error {
	return this.sock.Unbind(addr)
}

func (this *Socket) Connect(addr string) error {
	return this.sock.Dial(addr)
}

func (this *Socket) Disconnect(addr string) error {
	return this.sock.Disconnect(addr)
}

func (this *Socket) SetOption(name string, value interface{}) error {
	return this.sock.SetOption(name, value)
}

func (this *Socket) Recv(flags int) ([]byte, error) {
	var msg *nanopipe.Message
	var err error
	if flags&DontWait != 0 {
		msg, err = this.sock.RecvMsgMode(nanopipe.NonBlocking)
	} else {
		msg, err = this.sock.RecvMsg()
	}
	if err != nil {
		return nil, err
	}

	b := make([]byte, len(msg.Body))
	copy(b, msg.Body)
	this.More = msg.More
	msg.Free()
	return b, nil
}

func (this *Socket) Send(b []byte, flags int) (int, error) {
	msg := nanopipe.NewMessage(len(b))
	msg.Body = append(msg.Body, b...)
	msg.More = flags&SndMore != 0

	var err error
	if flags&DontWait != 0 {
		err = this.sock.SendMsgMode(msg, nanopipe.NonBlocking)
	} else {
		err = this.sock.SendMsg(msg)
	}
	if err != nil {
		msg.Free()
		return 0, err
	}
	return len(b), nil
}
