package nanopipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipes(n, hwm int) []*Pipe {
	pipes := make([]*Pipe, n)
	for i := range pipes {
		pipes[i] = NewPipe(hwm, nil, nil)
	}
	return pipes
}

func readAll(t *testing.T, p *Pipe) []string {
	var got []string
	for {
		m, err := p.Read()
		if err != nil {
			return got
		}
		got = append(got, string(m.Body))
	}
}

func TestDistributorRoundRobin(t *testing.T) {
	d := NewDistributor()
	pipes := newPipes(5, 0)
	for _, p := range pipes {
		d.Attach(p)
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Send(msg("ABC")))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Send(msg("DEF")))
	}

	for _, p := range pipes {
		assert.Equal(t, []string{"ABC", "DEF"}, readAll(t, p))
	}
}

func TestDistributorSkipsFull(t *testing.T) {
	d := NewDistributor()
	pipes := newPipes(3, 1)
	for _, p := range pipes {
		d.Attach(p)
	}

	// fill the middle pipe out of band
	require.NoError(t, pipes[1].Write(msg("x")))

	require.NoError(t, d.Send(msg("a")))
	require.NoError(t, d.Send(msg("b")))
	assert.Equal(t, ErrWouldBlock, d.Send(msg("c")))

	assert.Equal(t, []string{"a"}, readAll(t, pipes[0]))
	assert.Equal(t, []string{"x"}, readAll(t, pipes[1]))
	assert.Equal(t, []string{"b"}, readAll(t, pipes[2]))
	assert.Equal(t, 3, d.Len(), "full pipes stay registered")
}

func TestDistributorNoPipes(t *testing.T) {
	d := NewDistributor()
	assert.Equal(t, ErrWouldBlock, d.Send(msg("a")))
}

func TestDistributorDropsTerminated(t *testing.T) {
	d := NewDistributor()
	pipes := newPipes(3, 0)
	for _, p := range pipes {
		d.Attach(p)
	}

	pipes[0].Terminate()
	require.NoError(t, d.Send(msg("a")))
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"a"}, readAll(t, pipes[1]))

	pipes[1].Terminate()
	pipes[2].Terminate()
	assert.Equal(t, ErrWouldBlock, d.Send(msg("b")))
	assert.Equal(t, 0, d.Len())
}

func TestDistributorRemoveKeepsRotation(t *testing.T) {
	d := NewDistributor()
	pipes := newPipes(4, 0)
	for _, p := range pipes {
		d.Attach(p)
	}

	require.NoError(t, d.Send(msg("0")))
	require.NoError(t, d.Send(msg("1")))

	// removing a pipe before the cursor must not skip pipes[2]
	assert.True(t, d.Remove(pipes[0]))
	assert.False(t, d.Remove(pipes[0]))
	require.NoError(t, d.Send(msg("2")))
	assert.Equal(t, []string{"2"}, readAll(t, pipes[2]))

	// removing the last pipe wraps the cursor
	assert.True(t, d.Remove(pipes[3]))
	require.NoError(t, d.Send(msg("3")))
	assert.Equal(t, []string{"1", "3"}, readAll(t, pipes[1]))
}

func TestDistributorMultipart(t *testing.T) {
	d := NewDistributor()
	pipes := newPipes(2, 1)
	for _, p := range pipes {
		d.Attach(p)
	}

	require.NoError(t, d.Send(part("a1")))
	require.NoError(t, d.Send(part("a2")))
	require.NoError(t, d.Send(msg("a3")))
	require.NoError(t, d.Send(msg("b")))

	assert.Equal(t, []string{"a1", "a2", "a3"}, readAll(t, pipes[0]))
	assert.Equal(t, []string{"b"}, readAll(t, pipes[1]))
}

func TestDistributorMultipartPipeDies(t *testing.T) {
	d := NewDistributor()
	pipes := newPipes(2, 0)
	for _, p := range pipes {
		d.Attach(p)
	}

	require.NoError(t, d.Send(part("a1")))
	pipes[0].Terminate()

	// the rest of the message is swallowed
	require.NoError(t, d.Send(part("a2")))
	require.NoError(t, d.Send(msg("a3")))

	require.NoError(t, d.Send(msg("b")))
	assert.Equal(t, []string{"b"}, readAll(t, pipes[1]))
	assert.Equal(t, 1, d.Len())
}
