package reader

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type progressCall struct {
	book string
	page int
}

type fakeCollaborator struct {
	mu        sync.Mutex
	chapters  map[string][]string
	listErr   error
	coverErr  error
	progress  []progressCall
	covers    []string
	listCalls []string
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{chapters: make(map[string][]string)}
}

func (f *fakeCollaborator) GetImagesInChapter(_ context.Context, book, chapter string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, chapter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	images, ok := f.chapters[chapter]
	if !ok {
		return nil, fmt.Errorf("chapter %q of %q not found", chapter, book)
	}
	return images, nil
}

func (f *fakeCollaborator) UpdateBookProgress(_ context.Context, book string, page int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = append(f.progress, progressCall{book: book, page: page})
	return nil
}

func (f *fakeCollaborator) SetBookCover(_ context.Context, book, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coverErr != nil {
		return f.coverErr
	}
	f.covers = append(f.covers, book+":"+image)
	return nil
}

func (f *fakeCollaborator) progressCalls() []progressCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]progressCall(nil), f.progress...)
}

func (f *fakeCollaborator) coverCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.covers...)
}

type fakeDialogs struct {
	answer   bool
	alerts   []string
	confirms []string
}

func (d *fakeDialogs) Alert(msg string) { d.alerts = append(d.alerts, msg) }

func (d *fakeDialogs) Confirm(msg string, answer func(bool)) {
	d.confirms = append(d.confirms, msg)
	answer(d.answer)
}

type fakePrefs struct {
	prefs Preferences
	saved []Preferences
}

func (p *fakePrefs) LoadPreferences() (Preferences, error) { return p.prefs, nil }

func (p *fakePrefs) SavePreferences(prefs Preferences) error {
	p.prefs = prefs
	p.saved = append(p.saved, prefs)
	return nil
}

type fakeRequester struct {
	indices   []int
	resources []Resource
}

func (r *fakeRequester) Request(i int, res Resource) {
	r.indices = append(r.indices, i)
	r.resources = append(r.resources, res)
}

func images(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("p%d.jpg", i+1)
	}
	return out
}

// drain ticks the loop until cond holds, so results posted by background
// goroutines are applied.
func drain(t *testing.T, loop *Loop, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		loop.Tick(loop.Now())
		return cond()
	}, 2*time.Second, time.Millisecond)
}
