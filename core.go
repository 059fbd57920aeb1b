package nanopipe

import (
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// socket implements Socket, ProtocolSocket and PeerSocket.
type socket struct {
	id         string
	proto      Protocol
	info       ProtocolInfo
	transports map[string]Transport

	// guards everything below, and every call into proto
	sync.Mutex

	peers map[PeerID]*peer

	// peers released by the protocol under the lock; their hooks run
	// once the lock is dropped
	released []*peer

	dialers   []*dialer
	listeners []*listener
	waiter    Waiter

	sendReady Signaler // credit freed or peer set changed
	recvReady Signaler // data arrived or peer set changed
	closeChan chan struct{}
	closing   bool

	sendHWM      int
	recvHWM      int
	sendDeadline time.Duration
	recvDeadline time.Duration
	redialTime   time.Duration
	redialMax    time.Duration
	linger       time.Duration
	clk          clock.Clock

	portHook PortHook
	metrics  sockMetrics
}

// MakeSocket is intended for use by Protocol implementations.  The intention
// is that they can wrap this to provide a "proto.NewSocket()" implementation.
func MakeSocket(proto Protocol) Socket {
	info := proto.Info()
	sock := &socket{
		id:         uuid.NewString(),
		proto:      proto,
		info:       info,
		transports: make(map[string]Transport, 2),
		peers:      make(map[PeerID]*peer),
		closeChan:  make(chan struct{}),

		sendHWM:    defaultHWM,
		recvHWM:    defaultHWM,
		redialTime: defaultRedialTime, // 100ms, backoff with double redial time
		redialMax:  defaultRedialMax,  // 1m
		linger:     defaultLinger,     // 1s
		clk:        clock.New(),

		metrics: newSockMetrics(info.SelfName),
	}
	sock.waiter.Init(sock.clk)

	// let protocol plugin initialize
	proto.Init(sock)

	sock.logger().Debug("socket created")
	return sock
}

func (sock *socket) logger() *zap.Logger {
	return Logger().With(zap.String("socket", sock.id), zap.String("proto", sock.info.SelfName))
}

func (sock *socket) ID() string {
	return sock.id
}

func (sock *socket) Info() ProtocolInfo {
	return sock.info
}

func (sock *socket) HWM() (send, recv int) {
	sock.Lock()
	defer sock.Unlock()
	return sock.sendHWM, sock.recvHWM
}

func (sock *socket) sends() bool {
	return sock.info.Flags&FlagSend != 0
}

func (sock *socket) DialOptions(addr string, options map[string]interface{}) error {
	d, err := sock.NewDialer(addr, options)
	if err != nil {
		return err
	}
	return d.Dial()
}

func (sock *socket) Dial(addr string) error {
	return sock.DialOptions(addr, nil)
}

func (sock *socket) NewDialer(addr string, options map[string]interface{}) (Dialer, error) {
	t, err := sock.getTransport(addr)
	if err != nil {
		return nil, err
	}

	d := &dialer{
		sock:      sock,
		addr:      addr,
		closeChan: make(chan struct{}),
	}
	if d.d, err = t.NewDialer(addr, sock); err != nil {
		return nil, err
	}

	for n, v := range options {
		if err = d.d.SetOption(n, v); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (sock *socket) ListenOptions(addr string, options map[string]interface{}) error {
	l, err := sock.NewListener(addr, options)
	if err != nil {
		return err
	}
	return l.Listen()
}

func (sock *socket) Listen(addr string) error {
	return sock.ListenOptions(addr, nil)
}

// NewListener wraps PipeListener created in Transport.
func (sock *socket) NewListener(addr string, options map[string]interface{}) (Listener, error) {
	t, err := sock.getTransport(addr)
	if err != nil {
		return nil, err
	}

	l := &listener{
		sock: sock,
		addr: addr,
	}
	if l.l, err = t.NewListener(addr, sock); err != nil {
		return nil, err
	}

	for n, v := range options {
		if err = l.l.SetOption(n, v); err != nil {
			l.l.Close()
			return nil, err
		}
	}

	return l, nil
}

func (sock *socket) getTransport(addr string) (Transport, error) {
	var i int
	if i = strings.Index(addr, "://"); i < 0 {
		return nil, ErrBadTran
	}

	scheme := addr[:i]
	sock.Lock()
	t, present := sock.transports[scheme]
	sock.Unlock()
	if present {
		return t, nil
	}

	return nil, ErrBadTran
}

func (sock *socket) AddTransport(t Transport) {
	sock.Lock()
	sock.transports[t.Scheme()] = t
	sock.Unlock()
}

// AttachPeer implements PeerSocket.
func (sock *socket) AttachPeer(id PeerID, link Link, remoteHWM int, w Waker) (*Pipe, error) {
	p := &peer{
		id:          id,
		sock:        sock,
		link:        link,
		remoteProto: sock.info.Peer,
	}

	sock.Lock()
	if err := sock.canAttach(id); err != nil {
		sock.Unlock()
		return nil, err
	}
	hook := sock.portHook
	sock.Unlock()

	if hook != nil && !hook(PortActionAdd, p) {
		sock.logger().Debug("peer rejected by hook", zap.Uint32("peer", uint32(id)))
		return nil, ErrConnRefused
	}

	sock.Lock()
	if err := sock.canAttach(id); err != nil {
		sock.Unlock()
		return nil, err
	}
	if sock.sends() {
		// we write, the link reads
		p.pipe = NewPipe(combineHWM(sock.sendHWM, remoteHWM), &sock.sendReady, w)
	} else {
		// the link writes, we read
		p.pipe = NewPipe(combineHWM(sock.recvHWM, remoteHWM), w, &sock.recvReady)
	}
	p.pipe.peer = p
	sock.peers[id] = p
	sock.proto.AddPipe(p.pipe)
	sock.Unlock()

	sock.metrics.pipes.Inc()
	sock.sendReady.Wake()
	sock.recvReady.Wake()

	sock.logger().Debug("peer attached",
		zap.Uint32("peer", uint32(id)),
		zap.Uint64("pipe", p.pipe.ID()),
		zap.Int("hwm", p.pipe.HWM()),
		zap.String("addr", link.Address()))
	return p.pipe, nil
}

// must hold the lock
func (sock *socket) canAttach(id PeerID) error {
	if sock.closing {
		return ErrClosed
	}
	if _, present := sock.peers[id]; present {
		return ErrPeerExists
	}
	return nil
}

// DetachPeer implements PeerSocket.
func (sock *socket) DetachPeer(id PeerID) error {
	sock.Lock()
	p, present := sock.peers[id]
	if !present {
		sock.Unlock()
		return ErrNoPeer
	}
	sock.removePeer(p)
	sock.proto.RemovePipe(p.pipe)
	sock.Unlock()

	sock.detached(p)
	return nil
}

// removePeer drops p from the peer set and terminates its pipe.  Must hold
// the lock, so no scan can select the pipe afterwards.
func (sock *socket) removePeer(p *peer) {
	delete(sock.peers, p.id)

	var n int
	if sock.sends() {
		// the link reads this pipe and frees what is left
		n = p.pipe.Len()
		p.pipe.Terminate()
	} else {
		// we are the reader, and reads are serialized by the lock
		n = p.pipe.Discard()
	}
	if n > 0 {
		sock.metrics.discarded.Add(float64(n))
	}
}

// detached runs the bookkeeping of a removed peer outside the lock.
func (sock *socket) detached(p *peer) {
	sock.metrics.pipes.Dec()
	sock.sendReady.Wake()
	sock.recvReady.Wake()

	sock.Lock()
	hook := sock.portHook
	sock.Unlock()
	if hook != nil {
		hook(PortActionRemove, p)
	}

	sock.logger().Debug("peer detached",
		zap.Uint32("peer", uint32(p.id)),
		zap.Uint64("pipe", p.pipe.ID()))
}

// ReleasePipe implements ProtocolSocket.  The protocol has already
// dropped the pipe; the link is closed once the lock is released.
func (sock *socket) ReleasePipe(pipe *Pipe) {
	p := pipe.peer
	if p == nil || sock.peers[p.id] != p {
		return
	}
	sock.removePeer(p)
	sock.released = append(sock.released, p)
}

// must hold the lock
func (sock *socket) takeReleased() []*peer {
	released := sock.released
	sock.released = nil
	return released
}

func (sock *socket) finishReleased(released []*peer) {
	for _, p := range released {
		sock.detached(p)
		p.link.Close()
	}
}

func (sock *socket) SendMsg(m *Message) error {
	sock.Lock()
	mode := modeOf(sock.sendDeadline)
	sock.Unlock()
	return sock.SendMsgMode(m, mode)
}

func (sock *socket) SendMsgMode(m *Message, mode Mode) error {
	var expire <-chan time.Time
	if mode > 0 {
		sock.Lock()
		clk := sock.clk
		sock.Unlock()

		timer := clk.Timer(time.Duration(mode))
		defer timer.Stop()
		expire = timer.C
	}

	for {
		ready := sock.sendReady.Ready()

		sock.Lock()
		if sock.closing {
			sock.Unlock()
			return ErrClosed
		}
		err := sock.proto.SendMsg(m)
		released := sock.takeReleased()
		sock.Unlock()
		sock.finishReleased(released)

		switch err {
		case nil:
			sock.metrics.sent.Inc()
			return nil
		case ErrWouldBlock:
		default:
			return err
		}

		if mode == NonBlocking {
			sock.metrics.sendBlocks.Inc()
			return ErrWouldBlock
		}

		select {
		case <-ready:
		case <-expire:
			sock.metrics.sendBlocks.Inc()
			return ErrWouldBlock
		case <-sock.closeChan:
			return ErrClosed
		}
	}
}

func (sock *socket) RecvMsg() (*Message, error) {
	sock.Lock()
	mode := modeOf(sock.recvDeadline)
	sock.Unlock()
	return sock.RecvMsgMode(mode)
}

func (sock *socket) RecvMsgMode(mode Mode) (*Message, error) {
	var expire <-chan time.Time
	if mode > 0 {
		sock.Lock()
		clk := sock.clk
		sock.Unlock()

		timer := clk.Timer(time.Duration(mode))
		defer timer.Stop()
		expire = timer.C
	}

	for {
		ready := sock.recvReady.Ready()

		sock.Lock()
		if sock.closing {
			sock.Unlock()
			return nil, ErrClosed
		}
		m, err := sock.proto.RecvMsg()
		released := sock.takeReleased()
		sock.Unlock()
		sock.finishReleased(released)

		switch err {
		case nil:
			sock.metrics.received.Inc()
			return m, nil
		case ErrWouldBlock:
		default:
			return nil, err
		}

		if mode == NonBlocking {
			sock.metrics.recvBlocks.Inc()
			return nil, ErrWouldBlock
		}

		select {
		case <-ready:
		case <-expire:
			sock.metrics.recvBlocks.Inc()
			return nil, ErrWouldBlock
		case <-sock.closeChan:
			return nil, ErrClosed
		}
	}
}

func (sock *socket) Send(b []byte) error {
	return sock.SendMsg(newMessageFrom(b, false))
}

func (sock *socket) Recv() ([]byte, error) {
	m, err := sock.RecvMsg()
	if err != nil {
		return nil, err
	}

	b := append([]byte(nil), m.Body...)
	m.Free()
	return b, nil
}

// pending returns the number of messages still queued in our pipes.
func (sock *socket) pending() int {
	sock.Lock()
	defer sock.Unlock()
	n := 0
	for _, p := range sock.peers {
		n += p.pipe.Len()
	}
	return n
}

// drain waits up to d for the outbound pipes to empty.
func (sock *socket) drain(d time.Duration) bool {
	sock.Lock()
	clk := sock.clk
	sock.Unlock()

	timer := clk.Timer(d)
	defer timer.Stop()

	for {
		ready := sock.sendReady.Ready()
		if sock.pending() == 0 {
			return true
		}

		select {
		case <-ready:
		case <-timer.C:
			return false
		}
	}
}

func (sock *socket) Close() error {
	sock.Lock()
	if sock.closing {
		sock.Unlock()
		return ErrClosed
	}
	sock.closing = true
	close(sock.closeChan) // broadcast
	linger := sock.linger
	listeners := sock.listeners
	dialers := sock.dialers
	sock.listeners, sock.dialers = nil, nil
	sock.Unlock()

	log := sock.logger()
	if sock.sends() && linger > 0 {
		if !sock.drain(linger) {
			log.Debug("linger expired with messages queued", zap.Int("pending", sock.pending()))
		}
	}

	var err error
	for _, l := range listeners {
		err = multierr.Append(err, l.close())
	}
	for _, d := range dialers {
		err = multierr.Append(err, d.close())
	}
	// dialer and listener goroutines exit once their links are closed;
	// one stuck in a transport must not hold Close forever
	wait := linkFlushTimeout
	if linger > 0 {
		wait += linger
	}
	if !sock.waiter.WaitRelTimeout(wait) {
		log.Debug("dialer or listener goroutines still running", zap.Duration("waited", wait))
	}

	sock.Lock()
	peers := make([]*peer, 0, len(sock.peers))
	for _, p := range sock.peers {
		peers = append(peers, p)
	}
	sock.Unlock()

	for _, p := range peers {
		err = multierr.Append(err, p.link.Close())
		// the link normally detaches; make sure nothing is left behind
		if e := sock.DetachPeer(p.id); e != nil && e != ErrNoPeer {
			err = multierr.Append(err, e)
		}
	}

	sock.sendReady.Wake()
	sock.recvReady.Wake()

	log.Debug("socket closed", zap.Int("peers", len(peers)), zap.Error(err))
	return err
}

// Disconnect closes every dialer for addr along with its links.
func (sock *socket) Disconnect(addr string) error {
	sock.Lock()
	var found []*dialer
	kept := sock.dialers[:0]
	for _, d := range sock.dialers {
		if d.addr == addr {
			found = append(found, d)
		} else {
			kept = append(kept, d)
		}
	}
	sock.dialers = kept
	sock.Unlock()

	if len(found) == 0 {
		return ErrBadAddr
	}

	var err error
	for _, d := range found {
		err = multierr.Append(err, d.close())
	}
	return err
}

// Unbind closes every listener for addr along with the links it accepted.
func (sock *socket) Unbind(addr string) error {
	sock.Lock()
	var found []*listener
	kept := sock.listeners[:0]
	for _, l := range sock.listeners {
		if l.addr == addr {
			found = append(found, l)
		} else {
			kept = append(kept, l)
		}
	}
	sock.listeners = kept

	var links []Link
	if len(found) > 0 {
		for _, p := range sock.peers {
			if p.link.IsServer() && p.link.Address() == addr {
				links = append(links, p.link)
			}
		}
	}
	sock.Unlock()

	if len(found) == 0 {
		return ErrBadAddr
	}

	var err error
	for _, l := range found {
		err = multierr.Append(err, l.close())
	}
	for _, link := range links {
		err = multierr.Append(err, link.Close())
	}
	return err
}

// forgetDialer drops a dialer that was closed directly.
func (sock *socket) forgetDialer(d *dialer) {
	sock.Lock()
	for i, dd := range sock.dialers {
		if dd == d {
			sock.dialers = append(sock.dialers[:i], sock.dialers[i+1:]...)
			break
		}
	}
	sock.Unlock()
}

func (sock *socket) forgetListener(l *listener) {
	sock.Lock()
	for i, ll := range sock.listeners {
		if ll == l {
			sock.listeners = append(sock.listeners[:i], sock.listeners[i+1:]...)
			break
		}
	}
	sock.Unlock()
}

func (sock *socket) SetOption(name string, value interface{}) error {
	matched := false
	sock.Lock()
	err := sock.proto.SetOption(name, value)
	sock.Unlock()
	if err == nil {
		matched = true
	} else if err != ErrBadOption {
		return err
	}

	sock.Lock()
	defer sock.Unlock()
	switch name {
	case OptionSendHWM, OptionRecvHWM:
		hwm, ok := value.(int)
		if !ok {
			return ErrBadValue
		}
		if hwm < 0 {
			return ErrBadValue
		}
		if name == OptionSendHWM {
			sock.sendHWM = hwm
		} else {
			sock.recvHWM = hwm
		}
		return nil

	case OptionRecvDeadline, OptionSendDeadline, OptionLinger:
		d, ok := value.(time.Duration)
		if !ok {
			return ErrBadValue
		}
		switch name {
		case OptionRecvDeadline:
			sock.recvDeadline = d
		case OptionSendDeadline:
			sock.sendDeadline = d
		default:
			sock.linger = d
		}
		return nil

	case OptionRedialTime, OptionRedialMax:
		d, ok := value.(time.Duration)
		if !ok || d <= 0 {
			return ErrBadValue
		}
		if name == OptionRedialTime {
			sock.redialTime = d
		} else {
			sock.redialMax = d
		}
		return nil

	case OptionClock:
		clk, ok := value.(clock.Clock)
		if !ok || clk == nil {
			return ErrBadValue
		}
		sock.clk = clk
		sock.waiter.setClock(clk)
		return nil
	}

	if matched {
		return nil
	}
	return ErrBadOption
}

func (sock *socket) GetOption(name string) (interface{}, error) {
	sock.Lock()
	defer sock.Unlock()
	return sock.getOption(name)
}

// must hold the lock
func (sock *socket) getOption(name string) (interface{}, error) {
	val, err := sock.proto.GetOption(name)
	if err == nil {
		return val, nil
	}
	if err != ErrBadOption {
		return nil, err
	}

	switch name {
	case OptionSendHWM:
		return sock.sendHWM, nil

	case OptionRecvHWM:
		return sock.recvHWM, nil

	case OptionRecvDeadline:
		return sock.recvDeadline, nil

	case OptionSendDeadline:
		return sock.sendDeadline, nil

	case OptionLinger:
		return sock.linger, nil

	case OptionRedialTime:
		return sock.redialTime, nil

	case OptionRedialMax:
		return sock.redialMax, nil

	case OptionClock:
		return sock.clk, nil
	}
	return nil, ErrBadOption
}

func (sock *socket) GetProtocol() Protocol {
	return sock.proto
}

func (sock *socket) SetPortHook(newhook PortHook) PortHook {
	sock.Lock()
	oldhook := sock.portHook
	sock.portHook = newhook
	sock.Unlock()
	return oldhook
}
