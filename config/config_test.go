package config

import (
	"testing"
	"time"

	"github.com/funkygao/nanopipe"
	"github.com/funkygao/nanopipe/protocol/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.SendHWM)
	assert.Equal(t, 1000, cfg.RecvHWM)
	assert.Equal(t, Timeout(0), cfg.SendTimeout)
	assert.Equal(t, time.Second, cfg.Linger)
	assert.Equal(t, "info", cfg.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NANOPIPE_SNDHWM", "1")
	t.Setenv("NANOPIPE_RCVHWM", "0")
	t.Setenv("NANOPIPE_SNDTIMEO", "immediate")
	t.Setenv("NANOPIPE_RCVTIMEO", "250ms")
	t.Setenv("NANOPIPE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.SendHWM)
	assert.Equal(t, 0, cfg.RecvHWM)
	assert.Equal(t, nanopipe.NonBlocking, cfg.SendTimeout.Mode())
	assert.Equal(t, nanopipe.Timeout(250*time.Millisecond), cfg.RecvTimeout.Mode())
	assert.Equal(t, "debug", cfg.Logging().Level)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("NANOPIPE_SNDHWM", "-1")
	t.Setenv("NANOPIPE_REDIAL_MAX", "1ms")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNDHWM")
	assert.Contains(t, err.Error(), "REDIAL_MAX")
}

func TestTimeoutDecode(t *testing.T) {
	var to Timeout
	require.NoError(t, to.Decode("infinite"))
	assert.Equal(t, nanopipe.Blocking, to.Mode())

	require.NoError(t, to.Decode("-3s"))
	assert.Equal(t, nanopipe.NonBlocking, to.Mode())
	assert.Equal(t, "immediate", to.String())

	assert.Error(t, to.Decode("soon"))
}

func TestApply(t *testing.T) {
	sock, err := push.NewSocket()
	require.NoError(t, err)
	defer sock.Close()

	cfg := Default()
	cfg.SendHWM = 7
	cfg.SendTimeout = -1
	require.NoError(t, cfg.Apply(sock))

	v, err := sock.GetOption(nanopipe.OptionSendHWM)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = sock.GetOption(nanopipe.OptionSendDeadline)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), v)
}
