package tcp

import (
	"net"
	"time"

	"github.com/funkygao/nanopipe"
)

// OptionDialTimeout bounds a single connection attempt.  Value is a
// time.Duration.  Default is 5 seconds.
const OptionDialTimeout = "TCP-DIAL-TIMEOUT"

// options is used for shared GetOption/SetOption logic.
type options map[string]interface{}

// GetOption retrieves an option value.
func (o options) get(name string) (interface{}, error) {
	if v, ok := o[name]; !ok {
		return nil, nanopipe.ErrBadOption
	} else {
		return v, nil
	}
}

// SetOption sets an option.
func (o options) set(name string, val interface{}) error {
	switch name {
	case nanopipe.OptionNoDelay:
		fallthrough
	case nanopipe.OptionKeepAlive:
		switch v := val.(type) {
		case bool:
			o[name] = v
			return nil
		default:
			return nanopipe.ErrBadValue
		}

	case OptionDialTimeout:
		switch v := val.(type) {
		case time.Duration:
			if v < 0 {
				return nanopipe.ErrBadValue
			}
			o[name] = v
			return nil
		default:
			return nanopipe.ErrBadValue
		}
	}
	return nanopipe.ErrBadOption
}

func newOptions() options {
	o := make(map[string]interface{})
	o[nanopipe.OptionNoDelay] = true
	o[nanopipe.OptionKeepAlive] = true
	o[OptionDialTimeout] = 5 * time.Second
	return options(o)
}

func (o options) dialTimeout() time.Duration {
	return o[OptionDialTimeout].(time.Duration)
}

func (o options) configTCP(conn *net.TCPConn) error {
	if v, ok := o[nanopipe.OptionNoDelay]; ok {
		if err := conn.SetNoDelay(v.(bool)); err != nil {
			return err
		}
	}
	if v, ok := o[nanopipe.OptionKeepAlive]; ok {
		if err := conn.SetKeepAlive(v.(bool)); err != nil {
			return err
		}
	}
	return nil
}
