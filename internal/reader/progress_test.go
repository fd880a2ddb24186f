package reader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestProgressDebounce(t *testing.T) {
	loop := NewLoop(epoch)
	collab := newFakeCollaborator()
	tr := NewProgressTracker(loop, collab, "book", 0, zaptest.NewLogger(t))

	for i, at := range []time.Duration{0, 200, 400, 600} {
		loop.Tick(epoch.Add(at * time.Millisecond))
		tr.Observe(i + 1)
	}

	loop.Tick(epoch.Add(1599 * time.Millisecond))
	tr.Wait()
	assert.Empty(t, collab.progressCalls())

	loop.Tick(epoch.Add(1600 * time.Millisecond))
	tr.Wait()
	assert.Equal(t, []progressCall{{book: "book", page: 4}}, collab.progressCalls())

	loop.Tick(epoch.Add(10 * time.Second))
	tr.Wait()
	assert.Len(t, collab.progressCalls(), 1)
}

func TestProgressSingleWrite(t *testing.T) {
	loop := NewLoop(epoch)
	collab := newFakeCollaborator()
	tr := NewProgressTracker(loop, collab, "book", DefaultProgressDelay, zaptest.NewLogger(t))

	tr.Observe(4)
	idx, ok := tr.PendingIndex()
	require.True(t, ok)
	assert.Equal(t, 4, idx)

	loop.Tick(epoch.Add(time.Second))
	tr.Wait()
	assert.Equal(t, []progressCall{{book: "book", page: 4}}, collab.progressCalls())
	_, ok = tr.PendingIndex()
	assert.False(t, ok)
}

func TestProgressTeardownCancels(t *testing.T) {
	loop := NewLoop(epoch)
	collab := newFakeCollaborator()
	tr := NewProgressTracker(loop, collab, "book", 0, zaptest.NewLogger(t))

	tr.Observe(3)
	loop.Tick(epoch.Add(500 * time.Millisecond))
	tr.Close()
	tr.Observe(5)

	loop.Tick(epoch.Add(5 * time.Second))
	tr.Wait()
	assert.Empty(t, collab.progressCalls())
	assert.Zero(t, loop.Pending())
}

type failingWriter struct{ calls atomic.Int32 }

func (w *failingWriter) UpdateBookProgress(context.Context, string, int) error {
	w.calls.Add(1)
	return errors.New("backend unavailable")
}

func TestProgressFailureIsSwallowed(t *testing.T) {
	loop := NewLoop(epoch)
	w := &failingWriter{}
	tr := NewProgressTracker(loop, w, "book", 0, zaptest.NewLogger(t))

	tr.Observe(1)
	loop.Tick(epoch.Add(time.Second))
	tr.Wait()
	assert.EqualValues(t, 1, w.calls.Load())

	tr.Observe(2)
	loop.Tick(epoch.Add(2 * time.Second))
	tr.Wait()
	assert.EqualValues(t, 2, w.calls.Load())
}

func TestProgressWithoutBookIsIgnored(t *testing.T) {
	loop := NewLoop(epoch)
	collab := newFakeCollaborator()
	tr := NewProgressTracker(loop, collab, "", 0, nil)
	tr.Observe(1)
	assert.Zero(t, loop.Pending())
}
