package reader

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultProgressDelay is the quiet period before a position is saved.
	DefaultProgressDelay = 1000 * time.Millisecond

	progressWriteTimeout = 5 * time.Second
)

// ProgressWriter persists reading position.
type ProgressWriter interface {
	UpdateBookProgress(ctx context.Context, book string, page int) error
}

// ProgressTracker saves the reading position with a trailing-edge debounce.
// Only the index current when the quiet period ends is written.
type ProgressTracker struct {
	loop   *Loop
	writer ProgressWriter
	book   string
	delay  time.Duration
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	timer  *Timer
	index  int
	closed bool
	wg     sync.WaitGroup
}

// NewProgressTracker creates a tracker for book. A non-positive delay uses
// DefaultProgressDelay.
func NewProgressTracker(loop *Loop, writer ProgressWriter, book string, delay time.Duration, log *zap.Logger) *ProgressTracker {
	if delay <= 0 {
		delay = DefaultProgressDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ProgressTracker{
		loop:   loop,
		writer: writer,
		book:   book,
		delay:  delay,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Observe records a new index and restarts the quiet period.
func (p *ProgressTracker) Observe(index int) {
	if p.closed || p.book == "" {
		return
	}
	p.index = index
	p.timer.Stop()
	p.timer = p.loop.AfterFunc(p.delay, p.fire)
}

// PendingIndex reports the index waiting to be written, if any.
func (p *ProgressTracker) PendingIndex() (int, bool) {
	if p.timer == nil || p.closed {
		return 0, false
	}
	return p.index, true
}

func (p *ProgressTracker) fire() {
	if p.closed {
		return
	}
	p.timer = nil
	book, page := p.book, p.index
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(p.ctx, progressWriteTimeout)
		defer cancel()
		if err := p.writer.UpdateBookProgress(ctx, book, page); err != nil {
			p.log.Warn("saving progress failed", zap.String("book", book), zap.Int("page", page), zap.Error(err))
			return
		}
		p.log.Debug("progress saved", zap.String("book", book), zap.Int("page", page))
	}()
}

// Close cancels the pending write. No write starts after Close returns.
func (p *ProgressTracker) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.timer.Stop()
	p.timer = nil
}

// Wait blocks until writes already in flight have returned.
func (p *ProgressTracker) Wait() {
	p.wg.Wait()
	p.cancel()
}
