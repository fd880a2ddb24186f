package reader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoopPostRunsOnTick(t *testing.T) {
	l := NewLoop(epoch)
	var got []int
	assert.True(t, l.Post(func() { got = append(got, 1) }))
	assert.Empty(t, got)
	l.Tick(epoch)
	assert.Equal(t, []int{1}, got)
}

func TestLoopTimerOrder(t *testing.T) {
	l := NewLoop(epoch)
	var got []string
	l.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	l.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	l.AfterFunc(100*time.Millisecond, func() { got = append(got, "b") })
	stopped := l.AfterFunc(200*time.Millisecond, func() { got = append(got, "x") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	l.Tick(epoch.Add(99 * time.Millisecond))
	assert.Empty(t, got)
	l.Tick(epoch.Add(time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Zero(t, l.Pending())
}

func TestLoopWorkPostedDuringTickRunsNext(t *testing.T) {
	l := NewLoop(epoch)
	var got []int
	l.Post(func() {
		got = append(got, 1)
		l.Post(func() { got = append(got, 2) })
	})
	l.Tick(epoch)
	assert.Equal(t, []int{1}, got)
	l.Tick(epoch)
	assert.Equal(t, []int{1, 2}, got)
}

func TestLoopClose(t *testing.T) {
	l := NewLoop(epoch)
	ran := false
	l.AfterFunc(time.Millisecond, func() { ran = true })
	l.Post(func() { ran = true })
	l.Close()
	assert.False(t, l.Post(func() { ran = true }))
	l.Tick(epoch.Add(time.Second))
	assert.False(t, ran)
	assert.Zero(t, l.Pending())
}

func TestLoopClockIsMonotonic(t *testing.T) {
	l := NewLoop(epoch)
	l.Tick(epoch.Add(time.Second))
	l.Tick(epoch)
	assert.Equal(t, epoch.Add(time.Second), l.Now())
}
