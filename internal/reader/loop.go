package reader

import (
	"sort"
	"sync"
	"time"
)

// Loop is a single-threaded executor for reader state. Work posted from any
// goroutine and timers scheduled with AfterFunc only run inside Tick, on the
// goroutine that drives the UI.
type Loop struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers []*Timer
	seq    uint64
	closed bool
}

// Timer is a cancellable delayed task owned by a Loop.
type Timer struct {
	loop    *Loop
	when    time.Time
	seq     uint64
	fn      func()
	stopped bool
}

// NewLoop creates a loop whose clock starts at now.
func NewLoop(now time.Time) *Loop {
	return &Loop{now: now}
}

// Now returns the time of the last Tick.
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// Post enqueues fn to run on the next Tick. It reports false when the loop
// has been closed and fn was dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue = append(l.queue, fn)
	return true
}

// AfterFunc schedules fn to run on the first Tick at or after Now()+d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	t := &Timer{loop: l, when: l.now.Add(d), seq: l.seq, fn: fn}
	if l.closed {
		t.stopped = true
		return t
	}
	l.timers = append(l.timers, t)
	return t
}

// Stop cancels the timer. It reports whether the call prevented fn from
// running.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	l := t.loop
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range l.timers {
		if other == t {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			break
		}
	}
	return true
}

// Tick advances the clock to now, runs posted work, then fires due timers in
// deadline order. Work posted or timers that become due while ticking run on
// the following Tick.
func (l *Loop) Tick(now time.Time) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if now.After(l.now) {
		l.now = now
	}
	queue := l.queue
	l.queue = nil

	var due, pending []*Timer
	for _, t := range l.timers {
		if !t.when.After(l.now) {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	l.timers = pending
	l.mu.Unlock()

	for _, fn := range queue {
		if l.isClosed() {
			return
		}
		fn()
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].when.Equal(due[j].when) {
			return due[i].seq < due[j].seq
		}
		return due[i].when.Before(due[j].when)
	})
	for _, t := range due {
		l.mu.Lock()
		skip := t.stopped || l.closed
		t.stopped = true
		l.mu.Unlock()
		if skip {
			continue
		}
		t.fn()
	}
}

// Pending returns the number of scheduled timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

// Close cancels every timer and drops queued work. Later posts are ignored.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for _, t := range l.timers {
		t.stopped = true
	}
	l.timers = nil
	l.queue = nil
}

func (l *Loop) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
