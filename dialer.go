package nanopipe

// Dialer is an interface to the underlying dialer for a transport
// and address.
type Dialer interface {

	// Close closes the dialer, and removes it from any active socket.
	// The link it made, if any, is closed too.  Further operations on
	// the Dialer will return ErrClosed.
	Close() error

	// Dial makes the first connection attempt and then keeps the
	// connection up from a goroutine, redialing with backoff after a
	// failure or a lost link.
	Dial() error

	// Address returns the full URL of remote address.
	Address() string

	// SetOption sets an option on the Dialer. Setting options
	// can only be done before Dial() has been called.
	SetOption(name string, value interface{}) error

	// GetOption gets an option value from the Dialer.
	GetOption(name string) (interface{}, error)
}
