// Package all is used to register all transports.  This allows a program
// to support all known transports as well as supporting as yet-unknown
// transports, with a single import.
package all

import (
	"github.com/funkygao/nanopipe"
	"github.com/funkygao/nanopipe/transport/inproc"
	"github.com/funkygao/nanopipe/transport/ipc"
	"github.com/funkygao/nanopipe/transport/tcp"
)

// AddTransports adds all known transports to the given socket.
func AddTransports(sock nanopipe.Socket) {
	sock.AddTransport(tcp.NewTransport())
	sock.AddTransport(ipc.NewTransport())
	sock.AddTransport(inproc.NewTransport())
}
