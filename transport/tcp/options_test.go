package tcp

import (
	"testing"
	"time"

	"github.com/funkygao/nanopipe"
	"github.com/stretchr/testify/assert"
)

func TestOptionsInvalidName(t *testing.T) {
	opt := newOptions()
	_, err := opt.get(nanopipe.OptionSendDeadline)
	assert.Equal(t, nanopipe.ErrBadOption, err)
	_, err = opt.get(nanopipe.OptionSendHWM)
	assert.Equal(t, nanopipe.ErrBadOption, err)

	err = opt.set(nanopipe.OptionRecvHWM, 1)
	assert.Equal(t, nanopipe.ErrBadOption, err)
}

func TestOptionsValidName(t *testing.T) {
	opt := newOptions()
	defaultNoDelay, err := opt.get(nanopipe.OptionNoDelay)
	assert.Nil(t, err)
	assert.Equal(t, true, defaultNoDelay)

	err = opt.set(nanopipe.OptionNoDelay, false)
	assert.Nil(t, err)
	noDelay, err := opt.get(nanopipe.OptionNoDelay)
	assert.Nil(t, err)
	assert.Equal(t, false, noDelay)
}

func TestOptionsBadValue(t *testing.T) {
	opt := newOptions()
	assert.Equal(t, nanopipe.ErrBadValue, opt.set(nanopipe.OptionKeepAlive, "yes"))
	assert.Equal(t, nanopipe.ErrBadValue, opt.set(OptionDialTimeout, -time.Second))
	assert.Equal(t, nanopipe.ErrBadValue, opt.set(OptionDialTimeout, 3))

	assert.Nil(t, opt.set(OptionDialTimeout, time.Second))
	assert.Equal(t, time.Second, opt.dialTimeout())
}
