package ipc_test

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/funkygao/nanopipe"
	"github.com/funkygao/nanopipe/protocol/pull"
	"github.com/funkygao/nanopipe/protocol/push"
	"github.com/funkygao/nanopipe/transport/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipUnsupported(t *testing.T) {
	switch runtime.GOOS {
	case "windows":
		t.Skip("IPC not supported on Windows")
	case "plan9":
		t.Skip("IPC not supported on Plan9")
	}
}

func newSocket(t *testing.T, mk func() (nanopipe.Socket, error)) nanopipe.Socket {
	sock, err := mk()
	require.NoError(t, err)
	sock.AddTransport(ipc.NewTransport())
	require.NoError(t, sock.SetOption(nanopipe.OptionRecvDeadline, 5*time.Second))
	t.Cleanup(func() { sock.Close() })
	return sock
}

func TestIpcScheme(t *testing.T) {
	assert.Equal(t, "ipc", ipc.NewTransport().Scheme())
}

func TestIpcSendRecv(t *testing.T) {
	skipUnsupported(t)
	addr := "ipc://" + filepath.Join(t.TempDir(), "sendrecv.sock")

	puller := newSocket(t, pull.NewSocket)
	require.NoError(t, puller.Listen(addr))

	pusher := newSocket(t, push.NewSocket)
	require.NoError(t, pusher.Dial(addr))

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, pusher.Send([]byte(s)))
	}
	for _, s := range []string{"one", "two", "three"} {
		b, err := puller.Recv()
		require.NoError(t, err)
		assert.Equal(t, s, string(b))
	}
}

func TestIpcDuplicateListen(t *testing.T) {
	skipUnsupported(t)
	addr := "ipc://" + filepath.Join(t.TempDir(), "dup.sock")

	p1 := newSocket(t, pull.NewSocket)
	require.NoError(t, p1.Listen(addr))
	p2 := newSocket(t, pull.NewSocket)
	assert.Error(t, p2.Listen(addr))
}

func TestIpcConnRefused(t *testing.T) {
	skipUnsupported(t)
	addr := "ipc://" + filepath.Join(t.TempDir(), "nobody.sock")

	sock, err := push.NewSocket()
	require.NoError(t, err)
	defer sock.Close()

	d, err := ipc.NewTransport().NewDialer(addr, sock.(nanopipe.PeerSocket))
	require.NoError(t, err)
	_, err = d.Dial()
	assert.Error(t, err)
}
