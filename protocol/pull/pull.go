// Package pull implements the PULL protocol, which is the read side of
// the pipeline pattern.  (PUSH is the writer.)  Messages are taken from
// the connected peers in fair queue order.
package pull

import (
	"github.com/funkygao/nanopipe"
)

type pull struct {
	sock nanopipe.ProtocolSocket
	agg  *nanopipe.Aggregator
}

func (x *pull) Init(sock nanopipe.ProtocolSocket) {
	x.sock = sock
	// a pusher that went away is dropped once we read all it sent
	x.agg = nanopipe.NewAggregator(sock.ReleasePipe)
}

func (*pull) Info() nanopipe.ProtocolInfo {
	return nanopipe.ProtocolInfo{
		Self:     nanopipe.ProtoPull,
		Peer:     nanopipe.ProtoPush,
		SelfName: "pull",
		PeerName: "push",
		Flags:    nanopipe.FlagRecv,
	}
}

func (x *pull) AddPipe(p *nanopipe.Pipe) {
	x.agg.Attach(p)
}

func (x *pull) RemovePipe(p *nanopipe.Pipe) {
	x.agg.Remove(p)
}

func (*pull) SendMsg(*nanopipe.Message) error {
	return nanopipe.ErrProtoOp
}

func (x *pull) RecvMsg() (*nanopipe.Message, error) {
	return x.agg.Recv()
}

func (x *pull) SetOption(name string, v interface{}) error {
	return nanopipe.ErrBadOption
}

func (x *pull) GetOption(name string) (interface{}, error) {
	return nil, nanopipe.ErrBadOption
}

// NewProtocol allocates a new PULL protocol object.
func NewProtocol() nanopipe.Protocol {
	return &pull{}
}

// NewSocket allocates a new Socket using the PULL protocol.
func NewSocket() (nanopipe.Socket, error) {
	return nanopipe.MakeSocket(&pull{}), nil
}
