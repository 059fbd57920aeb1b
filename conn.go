package nanopipe

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	frameMore = 1 << 0

	// linkFlushTimeout bounds how long Close waits for the sender to
	// flush what it already took from the pipe.
	linkFlushTimeout = time.Second

	// handshakeTimeout bounds the header exchange of a new connection.
	handshakeTimeout = 5 * time.Second
)

type connHeader struct {
	Zero    byte   // must be zero
	S       byte   // 'S'
	P       byte   // 'P'
	Version byte   // only zero at present
	Proto   uint16 // protocol type
	Rsvd    uint16 // always zero at present
	HWM     uint32 // send HWM of a pusher, receive HWM of a puller
}

type frameHeader struct {
	Flags uint8
	Size  uint64
}

// connLink implements the Link interface on top of net.Conn.  A sending
// socket gets a sender goroutine that drains the pipe into the stream; a
// receiving socket gets a receiver goroutine that reads the stream only
// while the pipe has credit, so a slow puller pushes back through TCP.
type connLink struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	sock   PeerSocket
	id     PeerID
	pipe   *Pipe
	addr   string
	server bool
	props  map[string]interface{}

	ready Signaler // woken by the socket side of the pipe

	once       sync.Once
	done       chan struct{}
	senderDone chan struct{}
}

// NewConnLink allocates a new Link using the supplied net.Conn, performs
// the SP handshake and attaches the peer to sock.  It only returns once
// the peer is attached.  props are name/value pairs exposed by GetProp.
//
// Stream oriented transports can utilize this to implement a Transport.
func NewConnLink(conn net.Conn, sock PeerSocket, addr string, server bool, props ...interface{}) (Link, error) {
	this := &connLink{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, defaultBufferSize),
		writer: bufio.NewWriterSize(conn, defaultBufferSize),
		sock:   sock,
		id:     NewPeerID(),
		addr:   addr,
		server: server,
		props:  make(map[string]interface{}),
		done:   make(chan struct{}),

		senderDone: make(chan struct{}),
	}

	this.props[PropLocalAddr] = conn.LocalAddr()
	this.props[PropRemoteAddr] = conn.RemoteAddr()
	if len(props)%2 != 0 {
		conn.Close()
		return nil, ErrBadOption
	}
	for i := 0; i+1 < len(props); i += 2 {
		this.props[props[i].(string)] = props[i+1]
	}

	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	remoteHWM, err := this.handshake()
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})

	if this.pipe, err = sock.AttachPeer(this.id, this, remoteHWM, &this.ready); err != nil {
		conn.Close()
		return nil, err
	}

	if this.sends() {
		go this.sender()
		go this.nullRecv()
	} else {
		close(this.senderDone)
		go this.receiver()
	}

	return this, nil
}

func (this *connLink) sends() bool {
	return this.sock.Info().Flags&FlagSend != 0
}

// handshake establishes an SP connection between peers.  Both sides must
// send the header, then both sides must wait for the peer's header.  It
// returns the peer's high water mark.
func (this *connLink) handshake() (int, error) {
	info := this.sock.Info()
	sendHWM, recvHWM := this.sock.HWM()
	hwm := recvHWM
	if this.sends() {
		hwm = sendHWM
	}

	var err error
	var header = connHeader{S: 'S', P: 'P', Proto: info.Self, HWM: uint32(hwm)}
	if err = binary.Write(this.conn, binary.BigEndian, &header); err != nil {
		return 0, fmt.Errorf("send header: %w", err)
	}

	if err = binary.Read(this.conn, binary.BigEndian, &header); err != nil {
		return 0, fmt.Errorf("recv header: %w", err)
	}

	// validate the received header
	if header.Zero != 0 || header.S != 'S' || header.P != 'P' || header.Rsvd != 0 {
		return 0, ErrBadHeader
	}
	if header.Version != 0 {
		// The only version number we support at present is "0"
		return 0, ErrBadVersion
	}
	if header.Proto != info.Peer {
		return 0, ErrBadProto
	}

	return int(header.HWM), nil
}

// sender moves messages from the pipe to the stream, flushing whenever
// the pipe runs empty.
func (this *connLink) sender() {
	defer close(this.senderDone)
	// we are the reader: nothing left in the pipe is ever sent now
	defer this.pipe.Discard()

	for {
		ready := this.ready.Ready()

		m, err := this.pipe.Read()
		switch err {
		case nil:
			if err = this.writeFrame(m); err != nil {
				this.remoteGone(err)
				return
			}
			continue

		case ErrPipeEmpty:
			if this.writer.Buffered() > 0 {
				if err = this.writer.Flush(); err != nil {
					this.remoteGone(err)
					return
				}
			}

		default:
			// detached by the socket
			this.writer.Flush()
			this.teardown()
			return
		}

		select {
		case <-ready:
		case <-this.done:
			return
		}
	}
}

func (this *connLink) writeFrame(m *Message) error {
	h := frameHeader{Size: uint64(len(m.Body))}
	if m.More {
		h.Flags |= frameMore
	}
	defer m.Free()

	if err := binary.Write(this.writer, binary.BigEndian, &h); err != nil {
		return err
	}
	_, err := this.writer.Write(m.Body)
	return err
}

// nullRecv watches the inbound half of a sending link.  Pullers never
// write after the handshake, so anything but a clean read means the peer
// is gone.
func (this *connLink) nullRecv() {
	_, err := io.Copy(io.Discard, this.reader)
	if err == nil {
		err = io.EOF
	}
	this.remoteGone(err)
}

// receiver moves frames from the stream into the pipe, reading only while
// the pipe has credit.
func (this *connLink) receiver() {
	for {
		ready := this.ready.Ready()

		if !this.pipe.CanWrite() {
			if this.pipe.State() != PipeActive {
				this.teardown()
				return
			}
			select {
			case <-ready:
				continue
			case <-this.done:
				return
			}
		}

		m, err := this.readFrame()
		if err != nil {
			this.remoteGone(err)
			return
		}
		if this.pipe.Write(m) != nil {
			m.Free()
			this.teardown()
			return
		}
	}
}

// readFrame reads one frame: flags, a 64-bit size (network byte order),
// then the body.
func (this *connLink) readFrame() (*Message, error) {
	var h frameHeader
	if err := binary.Read(this.reader, binary.BigEndian, &h); err != nil {
		return nil, err
	}

	if h.Size > defaultMaxMsgSize {
		return nil, ErrTooLong
	}

	m := NewMessage(int(h.Size))
	m.Body = m.Body[:h.Size]
	m.More = h.Flags&frameMore != 0
	if _, err := io.ReadFull(this.reader, m.Body); err != nil {
		m.Free()
		return nil, err
	}
	return m, nil
}

// remoteGone handles a failed stream.  A pusher drops the peer at once; a
// puller keeps what it already received and lets the socket drain it.
func (this *connLink) remoteGone(err error) {
	if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		Logger().Debug("link failed",
			zap.Uint32("peer", uint32(this.id)), zap.String("addr", this.addr), zap.Error(err))
	}

	this.teardown()
	if this.sends() {
		this.sock.DetachPeer(this.id)
	} else {
		this.pipe.PeerTerminate()
	}
}

func (this *connLink) teardown() {
	this.once.Do(func() {
		close(this.done)
		this.conn.Close()
	})
}

// Close implements the Link Close method.  A sending link first lets its
// sender flush what it already took from the pipe.
func (this *connLink) Close() error {
	err := this.sock.DetachPeer(this.id)
	if this.sends() {
		this.conn.SetWriteDeadline(time.Now().Add(linkFlushTimeout))
		<-this.senderDone
	}
	this.teardown()

	if err != nil && err != ErrNoPeer {
		return err
	}
	return nil
}

func (this *connLink) Done() <-chan struct{} {
	return this.done
}

func (this *connLink) Address() string {
	return this.addr
}

func (this *connLink) IsServer() bool {
	return this.server
}

func (this *connLink) GetProp(name string) (interface{}, error) {
	if v, ok := this.props[name]; ok {
		return v, nil
	}
	return nil, ErrBadProperty
}
