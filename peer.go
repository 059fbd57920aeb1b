package nanopipe

import (
	"math/rand"
	"net"
	"sync/atomic"
)

// PeerID identifies a connected peer within a socket.  IDs are 31-bit
// and never zero.
type PeerID uint32

var nextPeerID atomic.Uint32

func init() {
	nextPeerID.Store(rand.Uint32())
}

// NewPeerID returns the next peer id.  Transports call it once per link.
func NewPeerID() PeerID {
	for {
		id := PeerID(nextPeerID.Add(1) & 0x7fffffff)
		if id != 0 {
			return id
		}
	}
}

// peer is the core's record of one attached peer: the link that serves it
// and the socket-side pipe.  It implements the Port interface.
type peer struct {
	id   PeerID
	sock *socket
	link Link
	pipe *Pipe

	remoteProto uint16
}

func (this *peer) ID() PeerID {
	return this.id
}

func (this *peer) LocalAddr() net.Addr {
	if addr, err := this.link.GetProp(PropLocalAddr); err == nil {
		return addr.(net.Addr)
	}
	return nil
}

func (this *peer) RemoteAddr() net.Addr {
	if addr, err := this.link.GetProp(PropRemoteAddr); err == nil {
		return addr.(net.Addr)
	}
	return nil
}

// Close closes the link.  The peer is detached and, if it was dialed,
// the dialer will redial.
func (this *peer) Close() error {
	return this.link.Close()
}

func (this *peer) Address() string {
	return this.link.Address()
}

func (this *peer) GetProp(name string) (interface{}, error) {
	return this.link.GetProp(name)
}

func (this *peer) IsOpen() bool {
	select {
	case <-this.link.Done():
		return false
	default:
	}
	return this.pipe == nil || this.pipe.State() != PipeTerminated
}

func (this *peer) IsClient() bool {
	return !this.link.IsServer()
}

func (this *peer) IsServer() bool {
	return this.link.IsServer()
}

func (this *peer) LocalProtocol() uint16 {
	return this.sock.info.Self
}

func (this *peer) RemoteProtocol() uint16 {
	return this.remoteProto
}
