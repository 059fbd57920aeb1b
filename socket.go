package nanopipe

import (
	"time"
)

// Mode selects how long a send or receive may wait.
type Mode time.Duration

const (
	// NonBlocking operations return ErrWouldBlock at once.
	NonBlocking Mode = -1

	// Blocking operations wait until they complete or the socket closes.
	Blocking Mode = 0
)

// Timeout returns a Mode that waits up to d.  A non-positive d is the
// same as NonBlocking.
func Timeout(d time.Duration) Mode {
	if d <= 0 {
		return NonBlocking
	}
	return Mode(d)
}

// modeOf maps a deadline option value to a Mode: zero blocks, negative
// does not wait at all.
func modeOf(d time.Duration) Mode {
	if d < 0 {
		return NonBlocking
	}
	return Mode(d)
}

func (m Mode) String() string {
	switch {
	case m < 0:
		return "non-blocking"
	case m == 0:
		return "blocking"
	}
	return "timeout(" + time.Duration(m).String() + ")"
}

// Socket is the main access handle applications use to access the SP
// system.  It is an abstraction of an application's "connection" to a
// messaging topology.  Applications can have more than one Socket open
// at a time.
// A single Socket might have connections to multiple peers, which is
// the basic difference from POSIX socket.
type Socket interface {

	// ID returns the unique identity of the socket.
	ID() string

	// Close closes the open Socket.  Further operations on the socket
	// will return ErrClosed.  A sending socket first waits up to the
	// linger time for its pipes to drain.
	Close() error

	// Send sends b using the send deadline.  On a PUSH socket the
	// message goes to exactly one peer, picked in round robin order.
	Send(b []byte) error

	// Recv receives a message using the receive deadline.  On a PULL
	// socket messages are taken from the peers in fair queue order.
	Recv() ([]byte, error)

	// SendMsg is like Send, but allows the caller to mark multipart
	// messages.  On success the Socket ASSUMES OWNERSHIP OF THE MESSAGE.
	SendMsg(*Message) error

	// RecvMsg receives one message part.
	RecvMsg() (*Message, error)

	// SendMsgMode sends with an explicit mode.  ErrWouldBlock means no
	// peer could take the message within the mode; having no peers at
	// all is reported the same way.
	SendMsgMode(*Message, Mode) error

	// RecvMsgMode receives with an explicit mode.
	RecvMsgMode(Mode) (*Message, error)

	// Dial connects a remote endpoint to the Socket.  The first attempt
	// is made before Dial returns; after that a goroutine maintains the
	// connection, reconnecting as needed.  If the address is invalid,
	// then an error is returned.
	Dial(addr string) error

	DialOptions(addr string, options map[string]interface{}) error

	// NewDialer returns a Dialer object which can be used to get
	// access to the underlying configuration for dialing.
	NewDialer(addr string, options map[string]interface{}) (Dialer, error)

	// Listen connects a local endpoint to the Socket.  Remote peers
	// may connect (e.g. with Dial) and will each be "connected" to
	// the Socket.  The accepter logic is run in a separate goroutine.
	Listen(addr string) error

	ListenOptions(addr string, options map[string]interface{}) error

	NewListener(addr string, options map[string]interface{}) (Listener, error)

	// Disconnect closes the dialers for addr and every link they made.
	// Messages queued for those peers are discarded.
	Disconnect(addr string) error

	// Unbind closes the listeners for addr and every link they accepted.
	Unbind(addr string) error

	// GetOption is used to retrieve an option for a socket.
	GetOption(name string) (interface{}, error)

	// SetOption is used to set an option for a socket.
	SetOption(name string, value interface{}) error

	// Protocol is used to get the underlying Protocol.
	GetProtocol() Protocol

	// AddTransport adds a new Transport to the socket.  Transport specific
	// options may have been configured on the Transport prior to this.
	AddTransport(Transport)

	// SetPortHook sets a PortHook function to be called when a Port is
	// added or removed from this socket (connect/disconnect).  The previous
	// hook is returned (nil if none.)
	SetPortHook(PortHook) PortHook
}
