package reader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type applied struct {
	chapter string
	images  []string
}

func newNavigator(t *testing.T, collab *fakeCollaborator, dialogs *fakeDialogs, current string) (*ChapterNavigator, *Loop, *[]applied) {
	t.Helper()
	loop := NewLoop(epoch)
	var got []applied
	nav := NewChapterNavigator(loop, collab, dialogs, zaptest.NewLogger(t), "book",
		[]string{"c1", "c2", "c3"}, current, func(ch string, imgs []string) {
			got = append(got, applied{chapter: ch, images: imgs})
		})
	return nav, loop, &got
}

func TestChapterNextAtLastIsNoop(t *testing.T) {
	collab := newFakeCollaborator()
	dialogs := &fakeDialogs{}
	nav, loop, got := newNavigator(t, collab, dialogs, "c3")

	err := nav.NextChapter()
	require.ErrorIs(t, err, ErrNoNextChapter)
	loop.Tick(epoch)
	assert.Empty(t, *got)
	assert.Equal(t, "c3", nav.Current())
	assert.Equal(t, []string{"This is the last chapter."}, dialogs.alerts)
	assert.False(t, nav.Pending())
}

func TestChapterPrevAtFirstIsNoop(t *testing.T) {
	collab := newFakeCollaborator()
	dialogs := &fakeDialogs{}
	nav, loop, got := newNavigator(t, collab, dialogs, "c1")

	require.ErrorIs(t, nav.PrevChapter(), ErrNoPrevChapter)
	loop.Tick(epoch)
	assert.Empty(t, *got)
	assert.Equal(t, "c1", nav.Current())
	assert.Empty(t, dialogs.alerts)
}

func TestChapterNextLoadsImages(t *testing.T) {
	collab := newFakeCollaborator()
	collab.chapters["c2"] = []string{"a.png", "b.png"}
	nav, loop, got := newNavigator(t, collab, &fakeDialogs{}, "c1")

	require.NoError(t, nav.NextChapter())
	assert.True(t, nav.Pending())
	assert.ErrorIs(t, nav.NextChapter(), ErrBusy)

	drain(t, loop, func() bool { return len(*got) == 1 })
	assert.Equal(t, applied{chapter: "c2", images: []string{"a.png", "b.png"}}, (*got)[0])
	assert.Equal(t, "c2", nav.Current())
	assert.False(t, nav.Pending())
	assert.True(t, nav.HasPrev())
	assert.True(t, nav.HasNext())
}

func TestChapterFetchFailureKeepsState(t *testing.T) {
	collab := newFakeCollaborator()
	collab.listErr = errors.New("connection refused")
	dialogs := &fakeDialogs{}
	nav, loop, got := newNavigator(t, collab, dialogs, "c2")

	require.NoError(t, nav.PrevChapter())
	drain(t, loop, func() bool { return !nav.Pending() })

	assert.Empty(t, *got)
	assert.Equal(t, "c2", nav.Current())
	require.Len(t, dialogs.alerts, 1)
	assert.Contains(t, dialogs.alerts[0], `Could not open chapter "c1"`)
	assert.Contains(t, dialogs.alerts[0], "connection refused")
}

func TestChapterWithoutIndex(t *testing.T) {
	loop := NewLoop(epoch)
	dialogs := &fakeDialogs{}
	nav := NewChapterNavigator(loop, newFakeCollaborator(), dialogs, nil, "book", nil, "", nil)

	assert.ErrorIs(t, nav.NextChapter(), ErrNoChapters)
	assert.ErrorIs(t, nav.PrevChapter(), ErrNoChapters)
	nav.OfferNext()
	assert.Empty(t, dialogs.alerts)
	assert.Empty(t, dialogs.confirms)
}

func TestChapterUnknownCurrentStartsAtFirst(t *testing.T) {
	collab := newFakeCollaborator()
	collab.chapters["c1"] = []string{"x.jpg"}
	nav, loop, got := newNavigator(t, collab, &fakeDialogs{}, "")

	assert.Equal(t, -1, nav.Position())
	assert.False(t, nav.HasPrev())
	require.NoError(t, nav.NextChapter())
	drain(t, loop, func() bool { return len(*got) == 1 })
	assert.Equal(t, "c1", nav.Current())
}

func TestChapterOfferNextAsksFirst(t *testing.T) {
	collab := newFakeCollaborator()
	collab.chapters["c2"] = []string{"a.png"}

	declined := &fakeDialogs{answer: false}
	nav, _, got := newNavigator(t, collab, declined, "c1")
	nav.OfferNext()
	assert.Equal(t, []string{"Go to the next chapter?"}, declined.confirms)
	assert.False(t, nav.Pending())
	assert.Empty(t, *got)

	accepted := &fakeDialogs{answer: true}
	nav, loop, got := newNavigator(t, collab, accepted, "c1")
	nav.OfferNext()
	drain(t, loop, func() bool { return len(*got) == 1 })
	assert.Equal(t, "c2", nav.Current())

	last := &fakeDialogs{answer: true}
	nav, _, _ = newNavigator(t, collab, last, "c3")
	nav.OfferNext()
	assert.Empty(t, last.confirms)
	assert.Equal(t, []string{"This is the last chapter."}, last.alerts)
}

func TestChapterCloseDiscardsResult(t *testing.T) {
	collab := newFakeCollaborator()
	collab.chapters["c2"] = []string{"a.png"}
	nav, loop, got := newNavigator(t, collab, &fakeDialogs{}, "c1")

	require.NoError(t, nav.NextChapter())
	nav.Close()
	drain(t, loop, func() bool { return !nav.Pending() })
	assert.Empty(t, *got)
	assert.Equal(t, "c1", nav.Current())
	assert.ErrorIs(t, nav.NextChapter(), ErrSessionClosed)
}
