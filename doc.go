// Package nanopipe provides a pure Go implementation of the PUSH/PULL
// (pipeline) scalability protocol.
//
// A PUSH socket distributes the messages it sends among all connected
// PULL peers in round-robin order.  A PULL socket receives from all of its
// connected PUSH peers using fair queuing, so that no single fast peer can
// starve the others.
//
// Every connected peer owns a Pipe: a bounded single-writer/single-reader
// queue with credit based flow control.  A slow peer shows up as a full
// pipe rather than as unbounded buffering, and a PUSH socket whose pipes
// are all full (or that has no peers at all) reports ErrWouldBlock or
// waits, depending on the send mode.
//
// Pipes are created when a peer connects and destroyed when it
// disconnects.  A reconnect always starts with a fresh, empty pipe; the
// messages that were queued for the old connection are discarded.
//
// Transports live under transport/, the two protocol halves under
// protocol/push and protocol/pull.
package nanopipe
