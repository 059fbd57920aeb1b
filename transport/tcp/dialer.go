package tcp

import (
	"fmt"
	"net"

	"github.com/funkygao/nanopipe"
)

type dialer struct {
	url  string
	addr *net.TCPAddr
	sock nanopipe.PeerSocket
	opts options
}

func (this *dialer) Dial() (nanopipe.Link, error) {
	d := net.Dialer{Timeout: this.opts.dialTimeout()}
	c, err := d.Dial("tcp", this.addr.String())
	if err != nil {
		return nil, err
	}
	conn := c.(*net.TCPConn)

	if err = this.opts.configTCP(conn); err != nil {
		conn.Close()
		return nil, err
	}

	link, err := nanopipe.NewConnLink(conn, this.sock, this.url, false)
	if err != nil {
		return nil, fmt.Errorf("tcp %s: %w", this.addr, err)
	}
	return link, nil
}

func (this *dialer) SetOption(name string, val interface{}) error {
	return this.opts.set(name, val)
}

func (this *dialer) GetOption(name string) (interface{}, error) {
	return this.opts.get(name)
}
