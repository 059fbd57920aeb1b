package nanopipe

// Transport is the interface for transport suppliers to implement.
type Transport interface {
	// Scheme returns a string used as the prefix for SP "addresses".
	// This is similar to a URI scheme.  For example, schemes can be
	// "tcp" (for "tcp://xxx..."), "inproc", etc.
	Scheme() string

	// NewDialer creates a new Dialer for this Transport.
	NewDialer(addr string, sock PeerSocket) (PipeDialer, error)

	// NewListener creates a new PipeListener for this Transport.
	// This generally also arranges for an OS-level file descriptor to be
	// opened, and bound to the the given address, as well as establishing
	// any "listen" backlog.
	NewListener(addr string, sock PeerSocket) (PipeListener, error)
}

// PipeDialer represents the client side of a connection.  Clients initiate
// the connection.
type PipeDialer interface {
	// Dial is used to initiate a connection to a remote peer.  On
	// success the returned Link is already attached to the socket.
	Dial() (Link, error)

	// SetOption sets a local option on the dialer.
	// ErrBadOption can be returned for unrecognized options.
	// ErrBadValue can be returned for incorrect value types.
	SetOption(name string, value interface{}) error

	// GetOption gets a local option from the dialer.
	// ErrBadOption can be returned for unrecognized options.
	GetOption(name string) (value interface{}, err error)
}

// PipeListener represents the server side of a connection.  Servers respond
// to a connection request from clients.
type PipeListener interface {
	// Listen actually begins listening on the interface.  It is
	// expected that this will be called only once.
	Listen() error

	// Accept completes the server side of a connection.  Once the
	// connection is established and the peer attached, a Link is
	// returned.  ErrClosed is returned once the listener is closed.
	Accept() (Link, error)

	// Close stops the listener.  Links that were accepted stay up.
	Close() error

	SetOption(name string, value interface{}) error

	GetOption(name string) (value interface{}, err error)
}

// Link is one transport connection between a local socket and one remote
// peer.  It moves messages between the socket's pipe and the wire (or the
// remote socket's pipe for inproc).
type Link interface {
	// Close tears the connection down and detaches the local peer.  It
	// is idempotent.
	Close() error

	// Done is closed once the link is down, whoever closed it.
	Done() <-chan struct{}

	// Address returns the address (URL form) the link was dialed to or
	// accepted on.
	Address() string

	// IsServer returns true if the link was accepted by a listener.
	IsServer() bool

	// GetProp returns an arbitrary property.  The details will vary
	// for different transport types.
	GetProp(name string) (interface{}, error)
}

// PeerSocket is what a transport sees of a socket.
type PeerSocket interface {
	// Info returns the socket's protocol information, which the transport
	// checks against the remote one.
	Info() ProtocolInfo

	// HWM returns the socket's send and receive high water marks.
	HWM() (send, recv int)

	// AttachPeer registers a connected peer and returns the pipe the link
	// has to service: for a sending socket the link reads it, for a
	// receiving one the link writes it.  remoteHWM is the peer's opposite
	// high water mark; the pipe is sized by combining it with the local
	// one.  w is woken whenever the socket side of the pipe moves.
	AttachPeer(id PeerID, link Link, remoteHWM int, w Waker) (*Pipe, error)

	// DetachPeer removes a peer and terminates its pipe.  Queued messages
	// are discarded.
	DetachPeer(id PeerID) error
}
