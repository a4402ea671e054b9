package exchange

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int](time.Millisecond)

	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	for i := 0; i < 10; i++ {
		item, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, item)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := NewQueue[string](time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push("hello")
	}()

	item, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "hello", item)
}

func TestQueue_CloseDrainsBacklog(t *testing.T) {
	q := NewQueue[int](time.Millisecond)

	q.Push(1)
	q.Push(2)
	q.Push(3)
	q.Close()
	q.Close() // idempotent

	for i := 1; i <= 3; i++ {
		item, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, item)
	}

	_, ok := q.Pop()
	assert.False(t, ok)
}

type tagged struct {
	producer int
	seq      int
}

func TestQueue_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	q := NewQueue[tagged](time.Millisecond)

	const producers = 10
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(tagged{producer: p, seq: i})
			}
		}(p)
	}
	wg.Wait()

	lastSeq := make([]int, producers)
	for i := range lastSeq {
		lastSeq[i] = -1
	}

	total := 0
	for !q.IsEmpty() {
		item, ok := q.Pop()
		require.True(t, ok)
		total++
		require.Greater(t, item.seq, lastSeq[item.producer],
			"producer %d out of order", item.producer)
		lastSeq[item.producer] = item.seq
	}

	assert.Equal(t, producers*perProducer, total, "no item may be dropped")
}
