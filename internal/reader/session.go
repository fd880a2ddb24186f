package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultControlsHide is the idle time after which header and progress
	// bar are hidden.
	DefaultControlsHide = 3000 * time.Millisecond

	messageDuration = 2 * time.Second
	coverTimeout    = 10 * time.Second

	scrollStep = 120.0
	gridGap    = 12.0
)

// Options configure a reading session.
type Options struct {
	Book        string
	Chapter     string
	Chapters    []string
	Images      []string
	InitialPage int
	Token       string

	Collaborator Collaborator
	Dialogs      Dialogs
	Preferences  PreferenceStore
	Requester    ImageRequester
	Keymap       *Keymap
	Logger       *zap.Logger
	Loop         *Loop
	OnExit       func()

	PrefetchMargin float64
	ProgressDelay  time.Duration
	ControlsHide   time.Duration
	ThumbWidth     float64
	ThumbHeight    float64
}

// Session is one reading session over a book. All methods must be called on
// the loop goroutine.
type Session struct {
	loop      *Loop
	log       *zap.Logger
	collab    Collaborator
	dialogs   Dialogs
	prefs     PreferenceStore
	requester ImageRequester

	book  string
	token string

	controller *ModeController
	navigator  *ChapterNavigator
	progress   *ProgressTracker
	loader     *ViewportLoader
	input      *InputController
	transform  TransformView

	strip ScrollView
	grid  ScrollView
	viewW float64
	viewH float64
	sizes map[int][2]float64

	margin       float64
	cellW, cellH float64

	reading     Mode
	rightToLeft bool
	muteReports bool

	controlsHide    time.Duration
	controlsVisible bool
	controlsTimer   *Timer
	message         string
	messageTimer    *Timer

	unsubscribe []func()
	closed      bool
}

// NewSession opens a session. A positive initial page opens the remembered
// reading mode at that page; otherwise the session starts in Grid.
func NewSession(opts Options) (*Session, error) {
	if opts.Collaborator == nil {
		return nil, errors.New("reader: collaborator is required")
	}
	if opts.Loop == nil {
		return nil, errors.New("reader: loop is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Dialogs == nil {
		opts.Dialogs = nopDialogs{}
	}
	if opts.PrefetchMargin <= 0 {
		opts.PrefetchMargin = DefaultPrefetchMargin
	}
	if opts.ControlsHide <= 0 {
		opts.ControlsHide = DefaultControlsHide
	}
	if opts.ThumbWidth <= 0 {
		opts.ThumbWidth = 160
	}
	if opts.ThumbHeight <= 0 {
		opts.ThumbHeight = opts.ThumbWidth * 1.5
	}
	if opts.Keymap == nil {
		km, err := NewKeymap(DefaultKeybindings(), nil)
		if err != nil {
			return nil, err
		}
		opts.Keymap = km
	}

	s := &Session{
		loop:         opts.Loop,
		log:          opts.Logger,
		collab:       opts.Collaborator,
		dialogs:      opts.Dialogs,
		prefs:        opts.Preferences,
		requester:    opts.Requester,
		book:         opts.Book,
		token:        opts.Token,
		sizes:        make(map[int][2]float64),
		margin:       opts.PrefetchMargin,
		cellW:        opts.ThumbWidth,
		cellH:        opts.ThumbHeight,
		reading:      ModeSingle,
		controlsHide: opts.ControlsHide,
	}
	s.loadPreferences()

	s.controller = NewModeController(opts.Images, opts.InitialPage, s.reading)
	s.controller.OnExit(func() {
		if opts.OnExit != nil {
			opts.OnExit()
		}
	})

	s.navigator = NewChapterNavigator(s.loop, s.collab, s.dialogs, s.log.Named("chapters"),
		s.book, opts.Chapters, opts.Chapter, s.applyChapter)
	s.controller.OnBoundary(s.navigator.OfferNext)

	s.progress = NewProgressTracker(s.loop, s.collab, s.book, opts.ProgressDelay, s.log.Named("progress"))
	s.input = &InputController{s: s, keymap: opts.Keymap}

	s.unsubscribe = append(s.unsubscribe,
		s.controller.SubscribeIndex(s.indexChanged),
		s.controller.SubscribeMode(s.modeChanged),
	)
	s.resetLoader()
	s.syncTransform()
	s.Touch()

	s.log.Info("reader session opened",
		zap.String("book", s.book),
		zap.String("chapter", opts.Chapter),
		zap.Int("images", len(opts.Images)),
		zap.Stringer("mode", s.controller.Mode()),
		zap.Int("index", s.controller.Index()))
	return s, nil
}

func (s *Session) loadPreferences() {
	if s.prefs == nil {
		return
	}
	p, err := s.prefs.LoadPreferences()
	if err != nil {
		s.log.Warn("loading reader preferences failed", zap.Error(err))
		return
	}
	if p.Mode != ModeGrid {
		s.reading = p.Mode
	}
	s.rightToLeft = p.RightToLeft
}

func (s *Session) savePreferences() {
	if s.prefs == nil {
		return
	}
	p := Preferences{Mode: s.reading, RightToLeft: s.rightToLeft}
	if err := s.prefs.SavePreferences(p); err != nil {
		s.log.Warn("saving reader preferences failed", zap.Error(err))
	}
}

func (s *Session) indexChanged(index int) {
	s.progress.Observe(index)
	s.syncTransform()
}

func (s *Session) modeChanged(state ViewState) {
	s.syncTransform()
	switch state.Mode {
	case ModeScroll:
		s.scrollToIndex(state.Index)
	case ModeGrid:
		s.revealInGrid(state.Index)
	}
	if state.Mode != ModeGrid && state.Mode != s.reading {
		s.reading = state.Mode
		s.savePreferences()
	}
}

func (s *Session) syncTransform() {
	st := s.controller.State()
	s.transform.Sync(st.Index, st.Spread)
}

// applyChapter replaces the sequence after a successful chapter fetch.
func (s *Session) applyChapter(chapter string, images []string) {
	s.log.Info("chapter changed", zap.String("book", s.book), zap.String("chapter", chapter), zap.Int("images", len(images)))
	s.sizes = make(map[int][2]float64)
	s.controller.Replace(images)
	s.resetLoader()
	s.strip.ScrollTo(0)
	s.grid.ScrollTo(0)
	s.transform.Reset()
	s.observe(true)
}

func (s *Session) resetLoader() {
	if s.loader != nil {
		s.loader.Close()
	}
	s.loader = NewViewportLoader(s.controller.Len(), s.margin, s.requestImage, s.reportVisible)
	if s.navigator.HasNext() {
		s.loader.SetEndMarker(EndMarkerHeight)
	}
	s.relayoutStrip()
}

func (s *Session) requestImage(i int) {
	if s.requester != nil {
		s.requester.Request(i, s.Resource(i))
	}
}

func (s *Session) reportVisible(i int) {
	if s.muteReports || s.controller.Mode() != ModeScroll {
		return
	}
	s.controller.SetIndex(i)
}

// observe runs the viewport loader in Scroll mode. Reports are muted for
// programmatic scrolls so the target index is kept.
func (s *Session) observe(report bool) {
	if s.closed || s.controller.Mode() != ModeScroll || s.viewH <= 0 {
		return
	}
	s.muteReports = !report
	s.loader.Observe(s.strip.Offset, s.viewH)
	s.muteReports = false
}

func (s *Session) relayoutStrip() {
	if s.viewW > 0 {
		for i, size := range s.sizes {
			s.loader.SetHeight(i, size[1]*s.viewW/size[0])
		}
	}
	s.strip.SetDimensions(s.loader.ContentHeight(), s.viewH)
	s.grid.SetDimensions(s.GridLayout().ContentHeight(), s.viewH)
}

func (s *Session) scrollToIndex(i int) {
	top, _ := s.loader.Bounds(i)
	s.strip.ScrollTo(top)
	s.observe(false)
}

func (s *Session) revealInGrid(i int) {
	g := s.GridLayout()
	if s.controller.Len() == 0 {
		return
	}
	top := g.RowTop(i)
	if top < s.grid.Offset || top+g.CellH+g.Gap > s.grid.Offset+s.viewH {
		s.grid.ScrollTo(top)
	}
}

// SetViewport records the drawable area in logical pixels.
func (s *Session) SetViewport(w, h float64) {
	if w == s.viewW && h == s.viewH {
		return
	}
	first := s.viewH <= 0
	s.viewW, s.viewH = w, h
	if first && s.controller.Mode() == ModeScroll {
		s.relayoutStrip()
		s.scrollToIndex(s.controller.Index())
		return
	}
	s.anchored(s.relayoutStrip)
	s.observe(false)
}

// SetImageSize records the natural size of image i so the strip can lay it
// out at viewport width.
func (s *Session) SetImageSize(i, w, h int) {
	if w <= 0 || h <= 0 || i < 0 || i >= s.controller.Len() {
		return
	}
	s.sizes[i] = [2]float64{float64(w), float64(h)}
	if s.viewW <= 0 {
		return
	}
	s.anchored(func() {
		s.loader.SetHeight(i, float64(h)*s.viewW/float64(w))
		s.strip.SetDimensions(s.loader.ContentHeight(), s.viewH)
	})
	// Placeholders pulled into the margin by the new layout are armed now,
	// not on the next scroll.
	s.observe(false)
}

// anchored runs relayout and, in Scroll mode, shifts the strip so the
// current image keeps its position on screen when images above it resize.
func (s *Session) anchored(relayout func()) {
	if s.controller.Mode() != ModeScroll {
		relayout()
		return
	}
	i := s.controller.Index()
	before, _ := s.loader.Bounds(i)
	offset := s.strip.Offset
	relayout()
	after, _ := s.loader.Bounds(i)
	s.strip.ScrollTo(offset + after - before)
}

// ImageLoaded marks image i as loaded or broken in the strip.
func (s *Session) ImageLoaded(i int, ok bool) {
	if ok {
		s.loader.MarkLoaded(i)
		return
	}
	s.loader.MarkFailed(i)
}

// ScrollBy scrolls the strip in Scroll mode or the thumbnails in Grid mode.
func (s *Session) ScrollBy(dy float64) {
	switch s.controller.Mode() {
	case ModeScroll:
		s.strip.ScrollBy(dy)
		s.observe(true)
	case ModeGrid:
		s.grid.ScrollBy(dy)
	}
}

// JumpTo moves to page i (clamped). In Scroll mode the strip follows.
func (s *Session) JumpTo(i int) {
	s.controller.SetIndex(i)
	if s.controller.Mode() == ModeScroll {
		s.scrollToIndex(s.controller.Index())
	}
	if s.controller.Mode() == ModeGrid {
		s.revealInGrid(s.controller.Index())
	}
}

// ToggleDirection flips the spread layout direction and remembers it.
func (s *Session) ToggleDirection() {
	s.rightToLeft = !s.rightToLeft
	s.savePreferences()
	if s.rightToLeft {
		s.ShowMessage("Reading direction: right to left")
	} else {
		s.ShowMessage("Reading direction: left to right")
	}
}

// SetCover asks for confirmation and makes the current page the book cover.
// The change is not applied locally; failures are alerted.
func (s *Session) SetCover() {
	res := s.Resource(s.controller.Index())
	if res.File == "" || s.closed {
		return
	}
	s.dialogs.Confirm("Use this page as the book cover?", func(ok bool) {
		if !ok || s.closed {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), coverTimeout)
			defer cancel()
			err := s.collab.SetBookCover(ctx, res.Book, res.RelativePath())
			s.loop.Post(func() { s.coverSet(res, err) })
		}()
	})
}

func (s *Session) coverSet(res Resource, err error) {
	if s.closed {
		return
	}
	if err != nil {
		s.log.Warn("setting cover failed", zap.String("book", res.Book), zap.String("image", res.RelativePath()), zap.Error(err))
		s.dialogs.Alert(fmt.Sprintf("Could not set cover: %v", err))
		return
	}
	s.ShowMessage("Cover updated")
}

// Touch shows the controls and restarts the idle timer.
func (s *Session) Touch() {
	if s.closed {
		return
	}
	s.controlsVisible = true
	s.controlsTimer.Stop()
	s.controlsTimer = s.loop.AfterFunc(s.controlsHide, func() { s.controlsVisible = false })
}

// ShowMessage displays a transient notice.
func (s *Session) ShowMessage(msg string) {
	if s.closed {
		return
	}
	s.message = msg
	s.messageTimer.Stop()
	s.messageTimer = s.loop.AfterFunc(messageDuration, func() { s.message = "" })
}

// SetToken replaces the cache-invalidation token used in resource paths.
func (s *Session) SetToken(token string) { s.token = token }

// Resource returns the address of image i in the current chapter.
func (s *Session) Resource(i int) Resource {
	return Resource{
		Book:    s.book,
		Chapter: s.navigator.Current(),
		File:    s.controller.Image(i),
		Token:   s.token,
	}
}

// Title is the header text: book name and chapter with underscores shown as
// spaces.
func (s *Session) Title() string {
	t := strings.ReplaceAll(s.book, "_", " ")
	if ch := s.navigator.Current(); ch != "" {
		t += " / " + strings.ReplaceAll(ch, "_", " ")
	}
	return t
}

// PageInfo renders the position, e.g. "3/20" or "4-5/20" for a spread pair.
func (s *Session) PageInfo() string {
	n := s.controller.Len()
	if n == 0 {
		return "0/0"
	}
	first, last := s.controller.DisplayRange()
	if first != last {
		return fmt.Sprintf("%d-%d/%d", first+1, last+1, n)
	}
	return fmt.Sprintf("%d/%d", first+1, n)
}

// GridLayout returns the thumbnail layout for the current viewport.
func (s *Session) GridLayout() GridLayout {
	return NewGridLayout(s.viewW, s.cellW, s.cellH, gridGap, s.controller.Len())
}

func (s *Session) Book() string                 { return s.book }
func (s *Session) Token() string                { return s.token }
func (s *Session) Controller() *ModeController  { return s.controller }
func (s *Session) Navigator() *ChapterNavigator { return s.navigator }
func (s *Session) Progress() *ProgressTracker   { return s.progress }
func (s *Session) Loader() *ViewportLoader      { return s.loader }
func (s *Session) Input() *InputController      { return s.input }
func (s *Session) Transform() *TransformView    { return &s.transform }
func (s *Session) Strip() ScrollView            { return s.strip }
func (s *Session) Grid() ScrollView             { return s.grid }
func (s *Session) RightToLeft() bool            { return s.rightToLeft }
func (s *Session) ReadingMode() Mode            { return s.reading }
func (s *Session) ControlsVisible() bool        { return s.controlsVisible }
func (s *Session) Message() string              { return s.message }
func (s *Session) Closed() bool                 { return s.closed }

// NextChapterAffordance reports whether the strip ends with a next-chapter tile.
func (s *Session) NextChapterAffordance() bool {
	_, h := s.loader.EndMarker()
	return h > 0
}

// Close tears the session down: the pending progress write is cancelled,
// the viewport loader and input are disconnected, and timers stop.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.progress.Close()
	s.navigator.Close()
	s.loader.Close()
	s.input.Close()
	s.controlsTimer.Stop()
	s.messageTimer.Stop()
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
	s.log.Info("reader session closed", zap.String("book", s.book))
}
