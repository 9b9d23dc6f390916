package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	entries []Entry
	block   chan struct{}
	err     error
}

func (s *memorySink) Log(_ context.Context, e Entry) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return s.err
}

func TestDispatcherWritesAllEntriesBeforeClose(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink)

	for i := 0; i < 10; i++ {
		require.True(t, d.Dispatch(Entry{Action: "CREATE", Table: "payments"}))
	}
	d.Close()

	assert.Len(t, sink.entries, 10)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	d := NewDispatcherSize(sink, 1)

	// first entry is picked up by the worker and blocks there,
	// the second fills the buffer.
	require.True(t, d.Dispatch(Entry{Action: "a"}))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, timeout, tick)
	require.True(t, d.Dispatch(Entry{Action: "b"}))

	assert.False(t, d.Dispatch(Entry{Action: "c"}))

	close(sink.block)
	d.Close()
	assert.Len(t, sink.entries, 2)
}

func TestDispatcherSurvivesSinkErrors(t *testing.T) {
	sink := &memorySink{err: errors.New("db down")}
	d := NewDispatcher(sink)

	d.Dispatch(Entry{Action: "UPDATE"})
	d.Dispatch(Entry{Action: "UPDATE"})
	d.Close()

	assert.Len(t, sink.entries, 2)
}
