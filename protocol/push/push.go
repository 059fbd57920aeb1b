// Package push implements the PUSH protocol, which is the write side of
// the pipeline pattern.  (PULL is the reader.)  Messages are spread over
// the connected peers in round robin order, skipping peers whose pipe is
// full.
package push

import (
	"github.com/funkygao/nanopipe"
)

type push struct {
	sock nanopipe.ProtocolSocket
	dist *nanopipe.Distributor
}

func (x *push) Init(sock nanopipe.ProtocolSocket) {
	x.sock = sock
	x.dist = nanopipe.NewDistributor()
}

func (*push) Info() nanopipe.ProtocolInfo {
	return nanopipe.ProtocolInfo{
		Self:     nanopipe.ProtoPush,
		Peer:     nanopipe.ProtoPull,
		SelfName: "push",
		PeerName: "pull",
		Flags:    nanopipe.FlagSend,
	}
}

func (x *push) AddPipe(p *nanopipe.Pipe) {
	x.dist.Attach(p)
}

func (x *push) RemovePipe(p *nanopipe.Pipe) {
	x.dist.Remove(p)
}

func (x *push) SendMsg(m *nanopipe.Message) error {
	return x.dist.Send(m)
}

func (*push) RecvMsg() (*nanopipe.Message, error) {
	return nil, nanopipe.ErrProtoOp
}

func (x *push) SetOption(name string, v interface{}) error {
	return nanopipe.ErrBadOption
}

func (x *push) GetOption(name string) (interface{}, error) {
	return nil, nanopipe.ErrBadOption
}

// NewProtocol returns a new PUSH protocol object.
func NewProtocol() nanopipe.Protocol {
	return &push{}
}

// NewSocket allocates a new Socket using the PUSH protocol.
func NewSocket() (nanopipe.Socket, error) {
	return nanopipe.MakeSocket(&push{}), nil
}
