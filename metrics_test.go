package nanopipe

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fanout is a minimal sending protocol over a Distributor.
type fanout struct {
	dist *Distributor
}

func (x *fanout) Init(ProtocolSocket) { x.dist = NewDistributor() }

func (*fanout) Info() ProtocolInfo {
	return ProtocolInfo{Self: ProtoPush, Peer: ProtoPull, SelfName: "fanout-test", PeerName: "pull", Flags: FlagSend}
}

func (x *fanout) AddPipe(p *Pipe) { x.dist.Attach(p) }
func (x *fanout) RemovePipe(p *Pipe) { x.dist.Remove(p) }
func (x *fanout) SendMsg(m *Message) error { return x.dist.Send(m) }
func (*fanout) RecvMsg() (*Message, error) { return nil, ErrProtoOp }
func (*fanout) GetOption(string) (interface{}, error) { return nil, ErrBadOption }
func (*fanout) SetOption(string, interface{}) error { return ErrBadOption }

type nullLink struct {
	done chan struct{}
}

func (l *nullLink) Close() error { return nil }
func (l *nullLink) Done() <-chan struct{} { return l.done }
func (*nullLink) Address() string { return "null://" }
func (*nullLink) IsServer() bool { return false }
func (*nullLink) GetProp(string) (interface{}, error) { return nil, ErrBadProperty }

func TestSocketMetrics(t *testing.T) {
	const proto = "fanout-test"
	sock := MakeSocket(&fanout{}).(*socket)
	require.NoError(t, sock.SetOption(OptionLinger, time.Duration(0)))
	defer sock.Close()

	id := NewPeerID()
	pipe, err := sock.AttachPeer(id, &nullLink{done: make(chan struct{})}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pipe.HWM())
	assert.Equal(t, 1.0, testutil.ToFloat64(pipesActive.WithLabelValues(proto)))

	require.NoError(t, sock.SendMsgMode(NewMessage(0), NonBlocking))
	require.NoError(t, sock.SendMsgMode(NewMessage(0), NonBlocking))
	m := NewMessage(0)
	assert.Equal(t, ErrWouldBlock, sock.SendMsgMode(m, NonBlocking))
	m.Free()

	assert.Equal(t, 2.0, testutil.ToFloat64(messagesSent.WithLabelValues(proto)))
	assert.Equal(t, 1.0, testutil.ToFloat64(wouldBlock.WithLabelValues(proto, "send")))

	require.NoError(t, sock.DetachPeer(id))
	assert.Equal(t, ErrNoPeer, sock.DetachPeer(id))
	assert.Equal(t, PipeTerminated, pipe.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(messagesDiscarded.WithLabelValues(proto)))
	assert.Equal(t, 0.0, testutil.ToFloat64(pipesActive.WithLabelValues(proto)))
}

func TestAttachPeerTwice(t *testing.T) {
	sock := MakeSocket(&fanout{}).(*socket)
	defer sock.Close()

	id := NewPeerID()
	link := &nullLink{done: make(chan struct{})}
	_, err := sock.AttachPeer(id, link, 0, nil)
	require.NoError(t, err)
	_, err = sock.AttachPeer(id, link, 0, nil)
	assert.Equal(t, ErrPeerExists, err)

	require.NoError(t, sock.Close())
	_, err = sock.AttachPeer(NewPeerID(), link, 0, nil)
	assert.Equal(t, ErrClosed, err)
}
