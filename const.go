package nanopipe

import (
	"time"
)

const (
	// defaultHWM is the default high water mark of both directions, in
	// messages.
	defaultHWM = 1000

	// defaultBufferSize is the default bufio buffer size of stream links.
	defaultBufferSize = 16 * 1024

	// defaultMaxMsgSize is the largest frame a stream link will accept.
	defaultMaxMsgSize = 1 << 20

	defaultRedialTime = time.Millisecond * 100
	defaultRedialMax  = time.Minute
	defaultLinger     = time.Second

	// chunkSize is the number of messages per queue chunk.
	chunkSize = 256
)

// The following are Properties which are exposed on a Port.

const (
	// PropLocalAddr expresses a local address.  For dialers, this is
	// the (often random) address that was locally bound.  For listeners,
	// it is usually the service address.  The value is a net.Addr.
	PropLocalAddr = "LOCAL-ADDR"

	// PropRemoteAddr expresses a remote address.  For dialers, this is
	// the service address.  For listeners, its the address of the far
	// end dialer.  The value is a net.Addr.
	PropRemoteAddr = "REMOTE-ADDR"
)

// The following are Options used by SetOption, GetOption.

const (
	// OptionSendHWM is the high water mark of outbound pipes, in messages.
	// The value is an int.  Zero means unbounded.  The effective capacity
	// of a pipe is the minimum of the writer's OptionSendHWM and the
	// reader's OptionRecvHWM.  Changes only affect pipes created
	// afterwards.  Default is 1000.
	OptionSendHWM = "SNDHWM"

	// OptionRecvHWM is the high water mark of inbound pipes.  See
	// OptionSendHWM.
	OptionRecvHWM = "RCVHWM"

	// OptionRecvDeadline is the time until the next Recv times out.  The
	// value is a time.Duration.  Zero value may be passed to indicate that
	// no timeout should be applied.  A negative value indicates a
	// non-blocking operation.  By default there is no timeout.
	OptionRecvDeadline = "RECV-DEADLINE"

	// OptionSendDeadline is the time until the next Send times out.  The
	// value is a time.Duration.  Zero value may be passed to indicate that
	// no timeout should be applied.  A negative value indicates a
	// non-blocking operation.  By default there is no timeout.
	OptionSendDeadline = "SEND-DEADLINE"

	// OptionLinger is used to set the linger property.  This is the amount
	// of time to wait for send queues to drain when Close() is called.
	// Close() may block for up to this long if there is unsent data, but
	// will return as soon as all data is delivered to the transport.
	// Value is a time.Duration.  Default is one second.
	OptionLinger = "LINGER"

	// OptionRedialTime is the initial delay before a dialer reconnects
	// after a failed attempt or a lost connection.  The delay doubles on
	// each failure up to OptionRedialMax.  Value is a time.Duration.
	OptionRedialTime = "REDIAL-TIME"

	// OptionRedialMax caps the redial backoff.  Value is a time.Duration.
	OptionRedialMax = "REDIAL-MAX"

	// OptionClock replaces the clock used for deadlines and linger.  The
	// value is a clock.Clock from github.com/benbjohnson/clock.
	OptionClock = "CLOCK"

	// OptionLocalAddress is used to get the local address an accepter is
	// listening on in string form. Generally this is known when Listen is
	// called because it is provided, but this option is useful in the
	// event that the port is assigned by the OS (i.e. port "0").
	OptionLocalAddress = "LOCAL-ADDRESS"

	// OptionKeepAlive is used to set TCP KeepAlive.  Value is a boolean.
	// Default is true.
	OptionKeepAlive = "KEEPALIVE"

	// OptionNoDelay is used to configure Nagle -- when true messages are
	// sent as soon as possible, otherwise some buffering may occur.
	// Value is a boolean.  Default is true.
	OptionNoDelay = "NO-DELAY"
)

// Useful constants for protocol numbers.  Note that the major protocol number
// is stored in the upper 12 bits, and the minor (subprotocol) is located in
// the bottom 4 bits.
const (
	ProtoPush = (5 * 16)
	ProtoPull = (5 * 16) + 1
)

// Protocol flags.
const (
	// FlagSend marks a protocol that writes into its pipes.
	FlagSend = 1 << iota

	// FlagRecv marks a protocol that reads from its pipes.
	FlagRecv
)
