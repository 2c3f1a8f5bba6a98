package resiligo_test

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/resiligo"
)

func entry(payload string) resiligo.DeadLetterEntry {
	return resiligo.DeadLetterEntry{
		Payload:   payload,
		Err:       errors.New("boom"),
		Attempts:  3,
		Timestamp: time.Now(),
	}
}

func TestDeadLetterQueue_AppendAndSize(t *testing.T) {
	q := resiligo.NewDeadLetterQueue(0)

	assert.Equal(t, 0, q.Size())
	q.Append(entry("a"))
	q.Append(entry("b"))
	assert.Equal(t, 2, q.Size())
}

func TestDeadLetterQueue_DrainReturnsInsertionOrder(t *testing.T) {
	q := resiligo.NewDeadLetterQueue(0)

	q.Append(entry("a"))
	q.Append(entry("b"))
	q.Append(entry("c"))

	entries := q.Drain()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Payload)
	assert.Equal(t, "b", entries[1].Payload)
	assert.Equal(t, "c", entries[2].Payload)

	assert.Equal(t, 0, q.Size(), "drain should empty the queue")
	assert.Empty(t, q.Drain(), "second drain should return nothing")
}

func TestDeadLetterQueue_AppendAfterDrain(t *testing.T) {
	q := resiligo.NewDeadLetterQueue(5)

	q.Append(entry("before"))
	q.Drain()

	q.Append(entry("after"))
	entries := q.Drain()
	require.Len(t, entries, 1)
	assert.Equal(t, "after", entries[0].Payload)
}

func TestDeadLetterQueue_BoundedDropsOldest(t *testing.T) {
	q := resiligo.NewDeadLetterQueue(3)

	for i := 1; i <= 5; i++ {
		q.Append(entry(strconv.Itoa(i)))
	}

	assert.Equal(t, 3, q.Size())
	entries := q.Drain()
	require.Len(t, entries, 3)
	assert.Equal(t, "3", entries[0].Payload)
	assert.Equal(t, "4", entries[1].Payload)
	assert.Equal(t, "5", entries[2].Payload)
}

func TestDeadLetterQueue_WrapAroundOrdering(t *testing.T) {
	q := resiligo.NewDeadLetterQueue(4)

	for i := 1; i <= 6; i++ {
		q.Append(entry(strconv.Itoa(i)))
	}
	// Partial drain then refill across the ring boundary
	first := q.Drain()
	require.Len(t, first, 4)
	assert.Equal(t, "3", first[0].Payload)

	q.Append(entry("7"))
	q.Append(entry("8"))
	second := q.Drain()
	require.Len(t, second, 2)
	assert.Equal(t, "7", second[0].Payload)
	assert.Equal(t, "8", second[1].Payload)
}

func TestDeadLetterQueue_ConcurrentAppend(t *testing.T) {
	q := resiligo.NewDeadLetterQueue(0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Append(entry(fmt.Sprintf("payload-%d", i)))
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, q.Size())
	assert.Len(t, q.Drain(), 100)
}

func TestDeadLetterQueue_ConcurrentAppendAndDrain(t *testing.T) {
	q := resiligo.NewDeadLetterQueue(0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var drained []resiligo.DeadLetterEntry

	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Append(entry(strconv.Itoa(i)))
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := q.Drain()
			mu.Lock()
			drained = append(drained, batch...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	total := len(drained) + q.Size()
	assert.Equal(t, 50, total, "every entry should be drained exactly once or still queued")
}

func TestDeadLetterQueue_NegativeCapacityMeansUnbounded(t *testing.T) {
	q := resiligo.NewDeadLetterQueue(-1)

	assert.Equal(t, 0, q.Capacity())
	for i := 0; i < 10; i++ {
		q.Append(entry("x"))
	}
	assert.Equal(t, 10, q.Size())
}
