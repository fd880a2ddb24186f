package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"gallery-reader/internal/library"
	"gallery-reader/internal/reader"
)

// Game is the ebiten application around one reading session.
type Game struct {
	config       Config
	configResult ConfigLoadResult
	log          *zap.Logger

	lib     *library.Library
	watcher *library.Watcher
	loop    *reader.Loop
	session *reader.Session
	images  *ImageManager
	dialogs *DialogQueue

	renderer            *Renderer
	inputHandler        *InputHandler
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager

	showHelp        bool
	showInfo        bool
	pageInputMode   bool
	pageInputBuffer string
	fullscreen      bool
	quit            bool
	closed          bool

	// navigation tracking for preloading
	lastIndex   int
	lastChapter string
	unsubscribe func()

	screenW, screenH int
}

// GameOptions describe the session to open.
type GameOptions struct {
	Book        string
	Chapter     string
	Chapters    []string
	Images      []string
	InitialPage int
}

// NewGame wires the library, image pipeline and reader session together.
func NewGame(lib *library.Library, watcher *library.Watcher, configResult ConfigLoadResult, prefs *PrefsStore, opts GameOptions, log *zap.Logger) (*Game, error) {
	cfg := configResult.Config
	g := &Game{
		config:       cfg,
		configResult: configResult,
		log:          log,
		lib:          lib,
		watcher:      watcher,
		loop:         reader.NewLoop(time.Now()),
		dialogs:      &DialogQueue{},
		fullscreen:   cfg.Fullscreen,
	}

	km, err := NewKeybindingManager(cfg.Keybindings)
	if err != nil {
		return nil, err
	}
	g.keybindingManager = km
	g.mousebindingManager = NewMousebindingManager(cfg.Mousebindings, cfg.Mouse)

	thumbW := cfg.ThumbnailWidth
	thumbH := thumbW * 3 / 2
	g.images = NewImageManager(lib, ImageManagerOptions{
		CacheSize:   cfg.CacheSize,
		Workers:     cfg.DecodeWorkers,
		ThumbWidth:  thumbW,
		ThumbHeight: thumbH,
		Logger:      log.Named("images"),
		OnLoaded: func(r LoadResult) {
			g.loop.Post(func() { g.imageLoaded(r) })
		},
	})

	session, err := reader.NewSession(reader.Options{
		Book:           opts.Book,
		Chapter:        opts.Chapter,
		Chapters:       opts.Chapters,
		Images:         opts.Images,
		InitialPage:    opts.InitialPage,
		Token:          lib.Token(),
		Collaborator:   lib,
		Dialogs:        g.dialogs,
		Preferences:    prefs,
		Requester:      g.images,
		Keymap:         km.Keymap(),
		Logger:         log.Named("reader"),
		Loop:           g.loop,
		OnExit:         g.Exit,
		PrefetchMargin: cfg.PrefetchMargin,
		ProgressDelay:  time.Duration(cfg.ProgressDebounceMs) * time.Millisecond,
		ControlsHide:   time.Duration(cfg.ControlsHideMs) * time.Millisecond,
		ThumbWidth:     float64(thumbW),
		ThumbHeight:    float64(thumbH),
	})
	if err != nil {
		g.images.Stop()
		return nil, fmt.Errorf("opening reader: %w", err)
	}
	g.session = session
	g.lastIndex = session.Controller().Index()
	g.lastChapter = session.Navigator().Current()

	g.unsubscribe = lib.Subscribe(func(token string) {
		g.loop.Post(func() {
			if !g.session.Closed() {
				g.log.Debug("library changed", zap.String("token", token))
				g.session.SetToken(token)
			}
		})
	})

	g.renderer = NewRenderer(g)
	g.inputHandler = NewInputHandler(g, g, km, g.mousebindingManager, log.Named("input"))
	return g, nil
}

// imageLoaded feeds a finished decode back into the session. Results for a
// different chapter are dropped.
func (g *Game) imageLoaded(r LoadResult) {
	s := g.session
	if s.Closed() || !sameImage(r.Resource, s.Resource(r.Index)) {
		return
	}
	if r.Err == nil {
		s.SetImageSize(r.Index, r.Width, r.Height)
	}
	if r.Strip {
		s.ImageLoaded(r.Index, r.Err == nil)
	}
}

func sameImage(a, b reader.Resource) bool {
	return a.Book == b.Book && a.Chapter == b.Chapter && a.File == b.File
}

// navigationDirection classifies a move from prev to next.
func navigationDirection(prev, next int) NavigationDirection {
	switch d := next - prev; {
	case d > 0 && d <= 2:
		return NavigationForward
	case d < 0 && d >= -2:
		return NavigationBackward
	}
	return NavigationJump
}

// trackNavigation releases strip images on chapter change and preloads the
// neighbours of the current page in paged modes.
func (g *Game) trackNavigation() {
	s := g.session
	c := s.Controller()

	if ch := s.Navigator().Current(); ch != g.lastChapter {
		g.lastChapter = ch
		g.lastIndex = -1
		g.images.ReleaseStrip()
	}

	idx := c.Index()
	if idx == g.lastIndex {
		return
	}
	direction := navigationDirection(g.lastIndex, idx)
	g.lastIndex = idx
	if !c.Mode().IsPaged() {
		return
	}
	_, last := c.DisplayRange()
	from := idx
	if direction == NavigationForward {
		from = last
	}
	g.images.Preload(from, direction, g.config.PreloadCount, c.Len(), s.Resource)
}

func (g *Game) saveCurrentWindowSize() {
	// Never overwrite a config file the user has to fix first.
	if g.fullscreen || g.configResult.HasError {
		return
	}
	width, height := ebiten.WindowSize()
	if width < minWidth || height < minHeight {
		return
	}
	if width == g.config.WindowWidth && height == g.config.WindowHeight {
		return
	}
	cfg := g.configResult.Config
	cfg.WindowWidth, cfg.WindowHeight = width, height
	if err := saveConfigToPath(cfg, g.configResult.Path); err != nil {
		g.log.Warn("failed to save window size", zap.Error(err))
	}
}

// Update runs posted work and due timers, then handles input.
func (g *Game) Update() error {
	g.loop.Tick(time.Now())
	if g.screenW > 0 {
		g.session.SetViewport(float64(g.screenW), float64(g.screenH))
	}
	if g.quit || g.session.Closed() {
		g.Close()
		return ebiten.Termination
	}

	if g.inputHandler.HandleInput() {
		g.session.Touch()
	}
	g.trackNavigation()
	return nil
}

// Draw renders the current frame.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

// Layout records the window size; the session sees it on the next Update.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Close tears everything down: open dialogs are declined, the session
// cancels its pending progress write, in-flight writes are awaited and the
// decode workers stop.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.saveCurrentWindowSize()
	g.dialogs.Clear()
	g.session.Close()
	g.session.Progress().Wait()
	g.unsubscribe()
	g.loop.Close()
	g.images.Stop()
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.log.Warn("closing watcher failed", zap.Error(err))
		}
	}
	g.log.Info("reader closed", zap.String("book", g.session.Book()))
}

// ShellActions

func (g *Game) Exit() { g.quit = true }

func (g *Game) ToggleHelp() { g.showHelp = !g.showHelp }

func (g *Game) ToggleInfo() { g.showInfo = !g.showInfo }

func (g *Game) ToggleFullscreen() {
	g.fullscreen = !g.fullscreen
	ebiten.SetFullscreen(g.fullscreen)
}

func (g *Game) EnterPageInputMode() {
	g.pageInputMode = true
	g.pageInputBuffer = ""
}

func (g *Game) Reader() *reader.InputController {
	if g.session.Closed() {
		return nil
	}
	return g.session.Input()
}

// InputActions

func (g *Game) ExitPageInputMode() {
	g.pageInputMode = false
	g.pageInputBuffer = ""
}

// ProcessPageInput jumps to the 1-based page typed by the user.
func (g *Game) ProcessPageInput() {
	page, err := strconv.Atoi(g.pageInputBuffer)
	if err != nil {
		return
	}
	n := g.session.Controller().Len()
	if page < 1 || page > n {
		g.session.ShowMessage(fmt.Sprintf("Invalid page: %d (1-%d)", page, n))
		return
	}
	g.JumpTo(page - 1)
}

func (g *Game) UpdatePageInputBuffer(buffer string) { g.pageInputBuffer = buffer }

func (g *Game) AnswerDialog(ok bool) { g.dialogs.Answer(ok) }

// ProgressBarHit maps a click on the visible progress bar to a page.
func (g *Game) ProgressBarHit(x, y float64) (int, bool) {
	if !g.session.ControlsVisible() || g.screenW <= 0 {
		return 0, false
	}
	bx, by, bw, bh := progressBarRect(float64(g.screenW), float64(g.screenH))
	if x < bx || x >= bx+bw || y < by || y >= by+bh {
		return 0, false
	}
	return progressBarIndex(x-bx, bw, g.session.Controller().Len()), true
}

func (g *Game) JumpTo(index int) {
	g.session.Touch()
	g.session.JumpTo(index)
}

// RenderState and InputState

func (g *Game) Session() *reader.Session { return g.session }
func (g *Game) IsFullscreen() bool       { return g.fullscreen }

func (g *Game) PageImage(index int) *ebiten.Image {
	return g.images.Page(index, g.session.Resource(index))
}

func (g *Game) ThumbnailImage(index int) *ebiten.Image {
	return g.images.Thumbnail(index, g.session.Resource(index))
}

func (g *Game) StripImage(index int) *ebiten.Image {
	return g.images.StripImage(g.session.Resource(index))
}

func (g *Game) IsShowingHelp() bool                   { return g.showHelp }
func (g *Game) IsShowingInfo() bool                   { return g.showInfo }
func (g *Game) IsInPageInputMode() bool               { return g.pageInputMode }
func (g *Game) GetPageInputBuffer() string            { return g.pageInputBuffer }
func (g *Game) CurrentDialog() *Dialog                { return g.dialogs.Current() }
func (g *Game) LoadStats() LoadStats                  { return g.images.Stats() }
func (g *Game) GetFontSize() float64                  { return g.config.FontSize }
func (g *Game) GetAspectRatioThreshold() float64      { return g.config.AspectRatioThreshold }
func (g *Game) GetConfigStatus() ConfigLoadResult     { return g.configResult }
func (g *Game) GetKeybindings() map[string][]string   { return g.config.Keybindings }
func (g *Game) GetMousebindings() map[string][]string { return g.config.Mousebindings }
