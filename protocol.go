package nanopipe

// ProtocolInfo describes a protocol and the protocol of the peers it talks
// to.  Numbers are carried in the stream handshake.
type ProtocolInfo struct {
	Self     uint16
	Peer     uint16
	SelfName string
	PeerName string

	// Flags is a combination of FlagSend and FlagRecv.
	Flags int
}

// Protocol implementations handle the "meat" of protocol processing.  Each
// protocol type will implement one of these.  For protocol pairs
// (PUSH/PULL), there will be one for each half of the protocol.
//
// Every method except Info is called by the core with the socket lock
// held, and none of them may block.
type Protocol interface {

	// Init is called by the core to allow the protocol to perform
	// any initialization steps it needs.  It should save the handle
	// for future use, as well.
	Init(ProtocolSocket)

	Info() ProtocolInfo

	// AddPipe is called when a new peer is attached to the socket.  The
	// pipe is the one the socket itself reads or writes.
	AddPipe(*Pipe)

	// RemovePipe is called when a peer is detached.  The pipe is already
	// terminated.
	RemovePipe(*Pipe)

	// SendMsg hands the message to a pipe.  It returns ErrWouldBlock
	// when no pipe can take it, in which case the caller keeps it.
	SendMsg(*Message) error

	// RecvMsg takes the next message from a pipe, or returns
	// ErrWouldBlock.
	RecvMsg() (*Message, error)

	// GetOption is used to retrieve the current value of an option.
	// If the protocol doesn't recognize the option, ErrBadOption should
	// be returned.
	GetOption(string) (interface{}, error)

	// SetOption is used to set an option.  ErrBadOption is returned if
	// the option name is not recognized, ErrBadValue if the value is
	// invalid.
	SetOption(string, interface{}) error
}

// ProtocolSocket is the "handle" given to protocols to interface with the
// socket.  The Protocol implementation should not access any sockets or
// pipes except by using functions made available on the ProtocolSocket.
// Note that all functions listed here are non-blocking.
type ProtocolSocket interface {

	// ReleasePipe asks the socket to drop the peer behind a pipe the
	// protocol has finished with, e.g. a drained peer-terminated pipe.
	// It may only be called from within a Protocol method.
	ReleasePipe(*Pipe)

	// GetOption may be used by the protocol to retrieve an option from
	// the socket.  It takes the socket lock, so it must not be called
	// from within a Protocol method.
	GetOption(string) (interface{}, error)
}

// ValidPeers returns true if the two sockets are capable of
// peering to one another.
func ValidPeers(p1, p2 ProtocolInfo) bool {
	return p1.Self == p2.Peer && p1.Peer == p2.Self
}
