package nanopipe

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestQueueFIFOAcrossChunks(t *testing.T) {
	q := newQueue()
	const n = chunkSize*3 + 7
	for i := 0; i < n; i++ {
		q.push(newMessageFrom([]byte(strconv.Itoa(i)), false))
	}
	assert.Equal(t, n, q.len())

	for i := 0; i < n; i++ {
		m, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, strconv.Itoa(i), string(m.Body))
	}

	_, ok := q.pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.len())
}

func TestQueueConcurrent(t *testing.T) {
	q := newQueue()
	const n = 100000

	var g errgroup.Group
	g.Go(func() error {
		for i := 0; i < n; i++ {
			q.push(&Message{Body: []byte{byte(i)}, refCount: int32(i)})
		}
		return nil
	})
	g.Go(func() error {
		for i := 0; i < n; {
			m, ok := q.pop()
			if !ok {
				continue
			}
			if m.refCount != int32(i) {
				t.Errorf("got %d, want %d", m.refCount, i)
				return nil
			}
			i++
		}
		return nil
	})
	require.NoError(t, g.Wait())
	assert.Equal(t, 0, q.len())
}

func BenchmarkQueuePushPop(b *testing.B) {
	q := newQueue()
	m := &Message{}
	for i := 0; i < b.N; i++ {
		q.push(m)
		q.pop()
	}
}
