package nanopipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvAll(t *testing.T, a *Aggregator) []string {
	var got []string
	for {
		m, err := a.Recv()
		if err == ErrWouldBlock {
			return got
		}
		require.NoError(t, err)
		got = append(got, string(m.Body))
	}
}

func TestAggregatorFairQueue(t *testing.T) {
	a := NewAggregator(nil)
	pipes := newPipes(5, 0)
	for i, p := range pipes {
		a.Attach(p)
		require.NoError(t, p.Write(msg(string(rune('A'+i)))))
		require.NoError(t, p.Write(msg(string(rune('A'+i+5)))))
	}

	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}, recvAll(t, a))
}

func TestAggregatorEmpty(t *testing.T) {
	a := NewAggregator(nil)
	_, err := a.Recv()
	assert.Equal(t, ErrWouldBlock, err)

	a.Attach(NewPipe(0, nil, nil))
	_, err = a.Recv()
	assert.Equal(t, ErrWouldBlock, err)
}

// A message arriving on a pipe the rotation already passed waits for the
// rotation to come back around.
func TestAggregatorResumesAfterLastServed(t *testing.T) {
	a := NewAggregator(nil)
	pipes := newPipes(3, 0)
	for _, p := range pipes {
		a.Attach(p)
	}

	require.NoError(t, pipes[1].Write(msg("b1")))
	m, err := a.Recv()
	require.NoError(t, err)
	assert.Equal(t, "b1", string(m.Body))

	require.NoError(t, pipes[0].Write(msg("a1")))
	require.NoError(t, pipes[1].Write(msg("b2")))
	require.NoError(t, pipes[2].Write(msg("c1")))

	assert.Equal(t, []string{"c1", "a1", "b2"}, recvAll(t, a))
}

func TestAggregatorDrained(t *testing.T) {
	var drained []*Pipe
	a := NewAggregator(nil)
	a.OnDrained(func(p *Pipe) {
		drained = append(drained, p)
	})
	pipes := newPipes(2, 0)
	for _, p := range pipes {
		a.Attach(p)
	}

	require.NoError(t, pipes[0].Write(msg("last")))
	pipes[0].PeerTerminate()
	require.NoError(t, pipes[1].Write(msg("x")))

	assert.Equal(t, []string{"last", "x"}, recvAll(t, a))
	assert.Equal(t, []*Pipe{pipes[0]}, drained)
	assert.Equal(t, PipeTerminated, pipes[0].State())
	assert.Equal(t, 1, a.Len())
}

func TestAggregatorDropsTerminated(t *testing.T) {
	a := NewAggregator(nil)
	pipes := newPipes(2, 0)
	for _, p := range pipes {
		a.Attach(p)
	}

	require.NoError(t, pipes[0].Write(msg("lost")))
	pipes[0].Terminate()
	require.NoError(t, pipes[1].Write(msg("kept")))

	assert.Equal(t, []string{"kept"}, recvAll(t, a))
	assert.Equal(t, 1, a.Len())
}

func TestAggregatorMultipartNotInterleaved(t *testing.T) {
	a := NewAggregator(nil)
	pipes := newPipes(2, 0)
	for _, p := range pipes {
		a.Attach(p)
	}

	require.NoError(t, pipes[0].Write(part("a1")))
	require.NoError(t, pipes[1].Write(msg("b")))

	m, err := a.Recv()
	require.NoError(t, err)
	assert.Equal(t, "a1", string(m.Body))

	// the rest of a's message has not arrived yet; b must wait
	_, err = a.Recv()
	assert.Equal(t, ErrWouldBlock, err)

	require.NoError(t, pipes[0].Write(msg("a2")))
	assert.Equal(t, []string{"a2", "b"}, recvAll(t, a))
}

func TestAggregatorRemove(t *testing.T) {
	a := NewAggregator(nil)
	pipes := newPipes(3, 0)
	for _, p := range pipes {
		a.Attach(p)
		require.NoError(t, p.Write(msg("m")))
	}

	assert.True(t, a.Remove(pipes[1]))
	assert.False(t, a.Remove(pipes[1]))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, []*Pipe{pipes[0], pipes[2]}, a.Pipes())
	assert.Len(t, recvAll(t, a), 2)
}
