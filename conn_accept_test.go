package nanopipe

import (
	"encoding/binary"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnAccepterDropsHandshakingOnClose(t *testing.T) {
	sock := MakeSocket(&fanout{}).(*socket)
	defer sock.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a := NewConnAccepter(ln, sock, "tcp://"+ln.Addr().String(), nil)

	silent, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer silent.Close()

	// our header arrives, theirs never does
	var header connHeader
	require.NoError(t, silent.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, binary.Read(silent, binary.BigEndian, &header))
	assert.Equal(t, byte('S'), header.S)
	assert.Equal(t, uint16(ProtoPush), header.Proto)

	require.NoError(t, a.Close())
	_, err = silent.Read(make([]byte, 1))
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrDeadlineExceeded), "%v", err)

	_, err = a.Accept()
	assert.Equal(t, ErrClosed, err)
	assert.NoError(t, a.Close(), "closing twice")
}

func TestConnAccepterReportsFailedHandshake(t *testing.T) {
	sock := MakeSocket(&fanout{}).(*socket)
	defer sock.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a := NewConnAccepter(ln, sock, "tcp://"+ln.Addr().String(), nil)
	defer a.Close()

	bad, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer bad.Close()
	_, err = bad.Write([]byte("not a header"))
	require.NoError(t, err)

	link, err := a.Accept()
	assert.Nil(t, link)
	assert.ErrorIs(t, err, ErrBadHeader)
}
