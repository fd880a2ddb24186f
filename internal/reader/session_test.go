package reader

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type sessionFixture struct {
	loop      *Loop
	collab    *fakeCollaborator
	dialogs   *fakeDialogs
	prefs     *fakePrefs
	requester *fakeRequester
	session   *Session
	exited    bool
}

func newSession(t *testing.T, mutate func(*Options)) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		loop:      NewLoop(epoch),
		collab:    newFakeCollaborator(),
		dialogs:   &fakeDialogs{},
		prefs:     &fakePrefs{},
		requester: &fakeRequester{},
	}
	opts := Options{
		Book:         "book",
		Images:       images(10),
		Token:        "t1",
		Collaborator: f.collab,
		Dialogs:      f.dialogs,
		Preferences:  f.prefs,
		Requester:    f.requester,
		Logger:       zaptest.NewLogger(t),
		Loop:         f.loop,
		OnExit:       func() { f.exited = true },
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := NewSession(opts)
	require.NoError(t, err)
	f.session = s
	t.Cleanup(func() {
		s.Close()
		s.Progress().Wait()
	})
	return f
}

func (f *sessionFixture) advance(d time.Duration) {
	f.loop.Tick(f.loop.Now().Add(d))
}

func TestNewSessionRequiresCollaborator(t *testing.T) {
	_, err := NewSession(Options{Loop: NewLoop(epoch)})
	assert.Error(t, err)
	_, err = NewSession(Options{Collaborator: newFakeCollaborator()})
	assert.Error(t, err)
}

func TestSessionGridClickAndBoundary(t *testing.T) {
	f := newSession(t, func(o *Options) { o.Images = []string{"p1", "p2", "p3"} })
	s := f.session
	s.SetViewport(800, 600)
	require.Equal(t, ModeGrid, s.Controller().Mode())

	x, y := s.GridLayout().Cell(1)
	require.True(t, s.Input().Click(x+10, y+10))
	assert.Equal(t, ModeSingle, s.Controller().Mode())
	assert.Equal(t, 1, s.Controller().Index())

	right := KeyPress{Name: "ArrowRight"}
	assert.True(t, s.Input().HandleKey(right))
	assert.Equal(t, 2, s.Controller().Index())

	assert.True(t, s.Input().HandleKey(right))
	assert.Equal(t, 2, s.Controller().Index())
	assert.Equal(t, ModeSingle, s.Controller().Mode())
	assert.Empty(t, f.dialogs.confirms)
	assert.Empty(t, f.dialogs.alerts)
}

func TestSessionPersistsProgressOnce(t *testing.T) {
	f := newSession(t, nil)
	s := f.session

	s.JumpTo(4)
	f.advance(999 * time.Millisecond)
	s.Progress().Wait()
	assert.Empty(t, f.collab.progressCalls())

	f.advance(time.Millisecond)
	s.Progress().Wait()
	assert.Equal(t, []progressCall{{book: "book", page: 4}}, f.collab.progressCalls())
}

func TestSessionCloseCancelsProgress(t *testing.T) {
	f := newSession(t, nil)
	s := f.session

	s.JumpTo(2)
	f.advance(300 * time.Millisecond)
	s.Close()
	f.advance(5 * time.Second)
	s.Progress().Wait()

	assert.Empty(t, f.collab.progressCalls())
	assert.Zero(t, f.loop.Pending())
	assert.False(t, s.Input().HandleKey(KeyPress{Name: "Escape"}))
	assert.False(t, f.exited)
}

func TestSessionArrowsIgnoredOutsidePaged(t *testing.T) {
	f := newSession(t, nil)
	s := f.session
	in := s.Input()

	assert.False(t, in.HandleKey(KeyPress{Name: "ArrowRight"}))
	in.Dispatch(ActionToggleScroll)
	require.Equal(t, ModeScroll, s.Controller().Mode())
	assert.False(t, in.HandleKey(KeyPress{Name: "ArrowRight"}))
	assert.Equal(t, 0, s.Controller().Index())
}

func TestSessionEscapeChain(t *testing.T) {
	f := newSession(t, func(o *Options) { o.InitialPage = 3 })
	s := f.session
	require.Equal(t, ModeSingle, s.Controller().Mode())

	esc := KeyPress{Name: "Escape"}
	s.Input().HandleKey(esc)
	assert.Equal(t, ModeGrid, s.Controller().Mode())
	assert.Equal(t, 3, s.Controller().Index())
	assert.False(t, f.exited)

	s.Input().HandleKey(esc)
	assert.True(t, f.exited)
}

func TestSessionPagedClickBisects(t *testing.T) {
	f := newSession(t, func(o *Options) { o.InitialPage = 3 })
	s := f.session
	s.SetViewport(1000, 800)

	s.Input().Click(900, 400)
	assert.Equal(t, 4, s.Controller().Index())
	s.Input().Click(100, 400)
	s.Input().Click(499, 10)
	assert.Equal(t, 2, s.Controller().Index())
}

func TestSessionRemembersReadingMode(t *testing.T) {
	f := newSession(t, func(o *Options) { o.InitialPage = 2 })
	s := f.session

	s.Input().Dispatch(ActionToggleSpread)
	require.Equal(t, ModeSpread, s.Controller().Mode())
	require.NotEmpty(t, f.prefs.saved)
	assert.Equal(t, ModeSpread, f.prefs.prefs.Mode)

	s.Input().Dispatch(ActionEscape)
	assert.Equal(t, ModeSpread, f.prefs.prefs.Mode, "grid is never remembered")

	prefs := f.prefs
	g := newSession(t, func(o *Options) {
		o.InitialPage = 5
		o.Preferences = prefs
	})
	assert.Equal(t, ModeSpread, g.session.Controller().Mode())
	assert.Equal(t, 5, g.session.Controller().Index())
}

func TestSessionToggleDirection(t *testing.T) {
	f := newSession(t, nil)
	s := f.session
	s.Input().HandleKey(KeyPress{Name: "KeyB", Shift: true})
	assert.True(t, s.RightToLeft())
	assert.True(t, f.prefs.prefs.RightToLeft)
	assert.Equal(t, "Reading direction: right to left", s.Message())

	f.advance(messageDuration)
	assert.Empty(t, s.Message())
}

func TestSessionScrollArmsAndReports(t *testing.T) {
	f := newSession(t, func(o *Options) { o.InitialPage = 3 })
	s := f.session
	s.Input().Dispatch(ActionToggleScroll)
	require.Equal(t, ModeScroll, s.Controller().Mode())

	s.SetViewport(800, 600)
	assert.Equal(t, 3, s.Controller().Index(), "programmatic scroll keeps the index")
	assert.Equal(t, []int{2, 3, 4}, f.requester.indices)
	assert.Equal(t, "/img/book/p3.jpg?t=t1", f.requester.resources[0].Path())

	s.ScrollBy(2000)
	assert.Equal(t, []int{2, 3, 4, 5, 6}, f.requester.indices)
	assert.Equal(t, 5, s.Controller().Index())

	s.ImageLoaded(5, false)
	assert.Equal(t, LoadFailed, s.Loader().State(5))
	assert.Equal(t, ModeScroll, s.Controller().Mode())
}

func TestSessionScrollImageSizes(t *testing.T) {
	f := newSession(t, func(o *Options) { o.Images = images(3) })
	s := f.session
	s.SetViewport(800, 600)
	s.SetImageSize(0, 400, 300)
	top, h := s.Loader().Bounds(1)
	assert.InDelta(t, 600, top, 1e-9)
	assert.InDelta(t, DefaultPlaceholderHeight, h, 1e-9)

	s.SetViewport(1600, 600)
	_, h = s.Loader().Bounds(0)
	assert.InDelta(t, 1200, h, 1e-9)
}

func TestSessionScrollArmsImagesPulledInByRelayout(t *testing.T) {
	f := newSession(t, nil)
	s := f.session
	s.SetViewport(800, 600)
	s.Input().Dispatch(ActionToggleScroll)
	require.Equal(t, ModeScroll, s.Controller().Mode())
	require.Equal(t, []int{0, 1}, f.requester.indices)

	s.SetImageSize(0, 800, 200)
	s.SetImageSize(1, 800, 200)

	top, _ := s.Loader().Bounds(2)
	assert.InDelta(t, 400, top, 1e-9)
	assert.Equal(t, LoadArmed, s.Loader().State(2))
	assert.Equal(t, []int{0, 1, 2}, f.requester.indices)
	assert.Equal(t, 0, s.Controller().Index(), "relayout does not move the position")
}

func TestSessionScrollKeepsCurrentImageAnchored(t *testing.T) {
	f := newSession(t, nil)
	s := f.session
	s.SetViewport(800, 600)
	s.Input().Dispatch(ActionToggleScroll)
	s.JumpTo(5)
	top, _ := s.Loader().Bounds(5)
	require.InDelta(t, top, s.Strip().Offset, 1e-9)

	s.SetImageSize(0, 800, 400)
	s.SetImageSize(2, 800, 300)

	top, _ = s.Loader().Bounds(5)
	assert.InDelta(t, 5*DefaultPlaceholderHeight-600-700, top, 1e-9)
	assert.InDelta(t, top, s.Strip().Offset, 1e-9)
	assert.Equal(t, 5, s.Controller().Index())

	s.SetImageSize(7, 800, 200)
	assert.InDelta(t, top, s.Strip().Offset, 1e-9, "images below do not shift the strip")
}

func TestSessionChapterChange(t *testing.T) {
	f := newSession(t, func(o *Options) {
		o.Chapters = []string{"c1", "c2"}
		o.Chapter = "c1"
		o.InitialPage = 6
	})
	f.collab.chapters["c2"] = []string{"x.jpg", "y.jpg"}
	s := f.session
	require.True(t, s.NextChapterAffordance())
	assert.Equal(t, "book / c1", s.Title())

	require.True(t, s.Input().HandleKey(KeyPress{Name: "ArrowRight", Shift: true}))
	drain(t, f.loop, func() bool { return s.Navigator().Current() == "c2" })

	assert.Equal(t, []string{"x.jpg", "y.jpg"}, s.Controller().Images())
	assert.Equal(t, 0, s.Controller().Index())
	assert.Equal(t, ModeSingle, s.Controller().Mode())
	assert.Zero(t, s.Strip().Offset)
	assert.False(t, s.NextChapterAffordance())
	assert.Equal(t, "c2/x.jpg", s.Resource(0).RelativePath())
}

func TestSessionScrollEndTileSwitchesChapter(t *testing.T) {
	f := newSession(t, func(o *Options) {
		o.Images = images(1)
		o.Chapters = []string{"c1", "c2"}
		o.Chapter = "c1"
	})
	f.collab.chapters["c2"] = []string{"x.jpg"}
	s := f.session
	s.Input().Dispatch(ActionToggleScroll)
	s.SetViewport(800, 600)
	s.ScrollBy(10000)

	top, _ := s.Loader().EndMarker()
	require.True(t, s.Input().Click(400, top-s.Strip().Offset+10))
	drain(t, f.loop, func() bool { return s.Navigator().Current() == "c2" })
	assert.Empty(t, f.dialogs.confirms, "the end tile does not ask")
}

func TestSessionPagedBoundaryOffersNextChapter(t *testing.T) {
	f := newSession(t, func(o *Options) {
		o.Images = images(2)
		o.Chapters = []string{"c1", "c2"}
		o.Chapter = "c1"
		o.InitialPage = 1
	})
	f.collab.chapters["c2"] = []string{"x.jpg"}
	f.dialogs.answer = true
	s := f.session

	s.Input().Dispatch(ActionNext)
	assert.Equal(t, []string{"Go to the next chapter?"}, f.dialogs.confirms)
	drain(t, f.loop, func() bool { return s.Navigator().Current() == "c2" })
	assert.Equal(t, 1, s.Controller().Len())
}

func TestSessionSetCover(t *testing.T) {
	f := newSession(t, func(o *Options) {
		o.Chapter = "c1"
		o.Chapters = []string{"c1"}
		o.InitialPage = 1
	})
	f.dialogs.answer = true
	s := f.session

	s.Input().HandleKey(KeyPress{Name: "KeyC"})
	drain(t, f.loop, func() bool { return s.Message() != "" })
	assert.Equal(t, "Cover updated", s.Message())
	assert.Equal(t, []string{"book:c1/p2.jpg"}, f.collab.coverCalls())
}

func TestSessionSetCoverFailureAlerts(t *testing.T) {
	f := newSession(t, func(o *Options) { o.InitialPage = 1 })
	f.dialogs.answer = true
	f.collab.coverErr = errors.New("read-only library")
	s := f.session

	s.SetCover()
	drain(t, f.loop, func() bool { return len(f.dialogs.alerts) > 0 })
	assert.Contains(t, f.dialogs.alerts[0], "read-only library")
	assert.Empty(t, s.Message())
}

func TestSessionSetCoverDeclined(t *testing.T) {
	f := newSession(t, func(o *Options) { o.InitialPage = 1 })
	s := f.session
	s.SetCover()
	f.advance(time.Second)
	assert.Empty(t, f.collab.coverCalls())
	assert.Equal(t, []string{"Use this page as the book cover?"}, f.dialogs.confirms)
}

func TestSessionControlsAutoHide(t *testing.T) {
	f := newSession(t, nil)
	s := f.session
	assert.True(t, s.ControlsVisible())
	f.advance(2 * time.Second)
	s.Touch()
	f.advance(2 * time.Second)
	assert.True(t, s.ControlsVisible())
	f.advance(time.Second)
	assert.False(t, s.ControlsVisible())
}

func TestSessionPageInfo(t *testing.T) {
	f := newSession(t, func(o *Options) {
		o.Images = images(7)
		o.InitialPage = 3
		o.Book = "my_book"
	})
	s := f.session
	assert.Equal(t, "4/7", s.PageInfo())
	s.Controller().SetMode(ModeSpread)
	assert.Equal(t, "4-5/7", s.PageInfo())
	assert.Equal(t, "my book", s.Title())
}

func TestSessionZoomResetsOnPageTurn(t *testing.T) {
	f := newSession(t, func(o *Options) { o.InitialPage = 1 })
	s := f.session
	s.Input().Dispatch(ActionZoomIn)
	assert.False(t, s.Transform().IsIdentity())
	s.Input().Dispatch(ActionNext)
	assert.True(t, s.Transform().IsIdentity())
}
