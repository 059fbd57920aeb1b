package nanopipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageDup(t *testing.T) {
	msg := NewMessage(0)
	msg1 := msg.Dup()
	assert.Equal(t, true, msg == msg1)
}

func TestMessagePoolNormal(t *testing.T) {
	msg := NewMessage(5)
	assert.Equal(t, 64, cap(msg.Body))
	assert.Equal(t, 0, len(msg.Body))
	msg.Free()
	msg = NewMessage(1086)
	assert.Equal(t, 8192, cap(msg.Body))
	msg.Free()
}

func TestMessagePoolEdgeCase(t *testing.T) {
	msg := NewMessage(64)
	assert.Equal(t, 64, cap(msg.Body))
	msg.Free()
	msg = NewMessage(1024)
	assert.Equal(t, 1024, cap(msg.Body))
	msg.Free()
	msg = NewMessage(8192)
	assert.Equal(t, 8192, cap(msg.Body))
}

func TestMessageRecyle(t *testing.T) {
	msg := NewMessage(5)
	msg = msg.Dup()
	msg = msg.Dup()
	assert.Equal(t, false, msg.Free())
	assert.Equal(t, false, msg.Free())
	assert.Equal(t, true, msg.Free())

	// free on an already free'ed msg
	assert.Equal(t, true, msg.Free())
}

func TestMessageFreeResetsMore(t *testing.T) {
	msg := NewMessage(10)
	msg.More = true
	assert.True(t, msg.Free())
	assert.False(t, msg.More)
}

func TestMessageNotPooled(t *testing.T) {
	msg := newMessageFrom([]byte("hello"), true)
	assert.Equal(t, "hello", string(msg.Body))
	assert.True(t, msg.More)
	assert.True(t, msg.Free())
}
