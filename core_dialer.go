package nanopipe

import (
	"go.uber.org/zap"
)

// dialer implements the Dialer interface.
type dialer struct {
	d PipeDialer // created by Transport

	sock      *socket
	addr      string // remote server addr
	closeChan chan struct{}

	// guarded by the socket lock
	closed bool
	active bool
	link   Link // current link, nil while disconnected
}

func (this *dialer) Dial() error {
	this.sock.Lock()
	switch {
	case this.sock.closing, this.closed:
		this.sock.Unlock()
		return ErrClosed
	case this.active:
		this.sock.Unlock()
		return ErrAddrInUse
	}
	this.active = true
	this.sock.dialers = append(this.sock.dialers, this)
	this.sock.waiter.Add()
	this.sock.Unlock()

	// first attempt is synchronous, so a peer that is already there is
	// connected once Dial returns
	link, err := this.d.Dial()
	if err != nil {
		this.sock.logger().Debug("dial failed, will redial",
			zap.String("addr", this.addr), zap.Error(err))
		link = nil
	} else if !this.setLink(link) {
		link.Close()
		link = nil
	}

	// keep dialing
	go this.dialing(link)

	return nil
}

// setLink records the current link.  It returns false when the dialer was
// closed in the meantime.
func (this *dialer) setLink(link Link) bool {
	this.sock.Lock()
	defer this.sock.Unlock()
	if this.closed {
		return false
	}
	this.link = link
	return true
}

func (this *dialer) clearLink(link Link) {
	this.sock.Lock()
	if this.link == link {
		this.link = nil
	}
	this.sock.Unlock()
}

// dialing is used to redial from a goroutine.
func (this *dialer) dialing(link Link) {
	defer this.sock.waiter.Done()

	this.sock.Lock()
	redialTime, redialMax := this.sock.redialTime, this.sock.redialMax
	clk := this.sock.clk
	this.sock.Unlock()

	retry := redialTime
	for {
		if link != nil {
			// reset retry time
			retry = redialTime

			// sleep till link broken, and then redial
			select {
			case <-link.Done():
				this.clearLink(link)
			case <-this.closeChan:
				return
			case <-this.sock.closeChan:
				return
			}
		}

		// we're redialing here
		timer := clk.Timer(retry)
		select {
		case <-this.closeChan: // dialer closed
			timer.Stop()
			return

		case <-this.sock.closeChan: // exit if parent socket closed
			timer.Stop()
			return

		case <-timer.C:
		}

		retry *= 2
		if retry > redialMax {
			retry = redialMax
		}

		var err error
		if link, err = this.d.Dial(); err != nil {
			this.sock.logger().Debug("redial failed",
				zap.String("addr", this.addr), zap.Duration("retry", retry), zap.Error(err))
			link = nil
			continue
		}
		if !this.setLink(link) {
			link.Close()
			return
		}
	}
}

// close stops redialing and closes the current link.
func (this *dialer) close() error {
	this.sock.Lock()
	if this.closed {
		this.sock.Unlock()
		return ErrClosed
	}
	this.closed = true
	link := this.link
	this.link = nil
	this.sock.Unlock()

	close(this.closeChan)
	this.sock.logger().Debug("dialer closed", zap.String("addr", this.addr))

	if link != nil {
		return link.Close()
	}
	return nil
}

func (this *dialer) Close() error {
	this.sock.forgetDialer(this)
	return this.close()
}

func (this *dialer) GetOption(name string) (interface{}, error) {
	return this.d.GetOption(name)
}

func (this *dialer) SetOption(name string, val interface{}) error {
	return this.d.SetOption(name, val)
}

func (this *dialer) Address() string {
	return this.addr
}
