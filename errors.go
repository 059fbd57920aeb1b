package nanopipe

import (
	"errors"
)

// Errors returned by sockets.
var (
	// ErrWouldBlock reports that an operation could not complete under the
	// requested mode: no pipe accepted the message, or no pipe had data.
	// It is not a fault; the caller may retry.
	ErrWouldBlock = errors.New("operation would block")

	// ErrClosed is returned when the socket was closed before or while an
	// operation was pending.
	ErrClosed = errors.New("object closed")

	ErrProtoOp     = errors.New("invalid operation for protocol")
	ErrBadOption   = errors.New("invalid or unsupported option")
	ErrBadValue    = errors.New("invalid option value")
	ErrBadTran     = errors.New("invalid or unsupported transport")
	ErrBadProto    = errors.New("invalid or unsupported protocol")
	ErrBadAddr     = errors.New("address not in use by this socket")
	ErrBadHeader   = errors.New("invalid header received")
	ErrBadVersion  = errors.New("invalid protocol version")
	ErrBadProperty = errors.New("invalid property name")
	ErrTooLong     = errors.New("message too long")
	ErrAddrInUse   = errors.New("address in use")
	ErrConnRefused = errors.New("connection refused")
)

// Errors returned by pipes and by the peer set.
var (
	ErrPipeFull    = errors.New("pipe full")
	ErrPipeEmpty   = errors.New("pipe empty")
	ErrPipeDrained = errors.New("pipe drained")

	// ErrTerminated is returned for reads and writes on a terminated pipe.
	ErrTerminated = errors.New("pipe terminated")

	// ErrPeerExists is returned when a peer is attached twice.
	ErrPeerExists = errors.New("peer already attached")

	// ErrNoPeer is returned when detaching a peer that is not attached.
	ErrNoPeer = errors.New("no such peer")
)
