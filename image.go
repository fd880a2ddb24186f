package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"gallery-reader/internal/reader"
)

// NavigationDirection represents the direction of navigation
type NavigationDirection int

const (
	NavigationForward NavigationDirection = iota
	NavigationBackward
	NavigationJump
)

// imageKind selects the cache an image is decoded into.
type imageKind int

const (
	kindPage  imageKind = iota // paged modes, LRU cached
	kindThumb                  // grid thumbnails, LRU cached
	kindStrip                  // scroll strip, kept until the chapter changes
)

// request priorities, highest first
const (
	priorityVisible = iota
	priorityStrip
	priorityPreload
	priorityCount
)

// ImageSource opens image bytes by book, chapter and file name.
type ImageSource interface {
	OpenImage(book, chapter, file string) (io.ReadCloser, error)
}

// LoadResult reports a finished decode. Width and Height are the natural
// size of the image.
type LoadResult struct {
	Index    int
	Resource reader.Resource
	Strip    bool
	Width    int
	Height   int
	Err      error
}

// LoadStats provides statistics about decoding
type LoadStats struct {
	QueueSize   int
	LoadedCount int
	FailedCount int
	Cached      int
	Strip       int
}

type loadRequest struct {
	index int
	res   reader.Resource
	kind  imageKind
}

func (r loadRequest) key() string {
	switch r.kind {
	case kindThumb:
		return r.res.Path() + "#thumb"
	case kindStrip:
		return stripKey(r.res)
	}
	return r.res.Path()
}

// stripKey ignores the cache token: a placeholder is loaded once per
// chapter whatever the library does meanwhile.
func stripKey(res reader.Resource) string {
	res.Token = ""
	return res.Path()
}

// ImageManager decodes images on a pool of workers. Paged images and
// thumbnails live in LRU caches; images requested by the scroll strip are
// pinned so each is fetched at most once per chapter.
type ImageManager struct {
	src    ImageSource
	log    *zap.Logger
	thumbW int
	thumbH int
	done   func(LoadResult)

	pages  *lru.Cache[string, *ebiten.Image]
	thumbs *lru.Cache[string, *ebiten.Image]

	mu       sync.Mutex
	queues   [priorityCount][]loadRequest
	inflight map[string]bool
	pinned   map[string]*ebiten.Image
	failed   map[string]*ebiten.Image
	stats    LoadStats

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ImageManagerOptions configure NewImageManager.
type ImageManagerOptions struct {
	CacheSize   int
	Workers     int
	ThumbWidth  int
	ThumbHeight int
	Logger      *zap.Logger
	// OnLoaded runs on a worker goroutine after every decode.
	OnLoaded func(LoadResult)
}

func newImageCache(size int, log *zap.Logger) *lru.Cache[string, *ebiten.Image] {
	evict := func(_ string, img *ebiten.Image) {
		if img != nil {
			img.Deallocate()
		}
	}
	cache, err := lru.NewWithEvict[string, *ebiten.Image](size, evict)
	if err != nil {
		log.Error("failed to create LRU cache, using 16 entries", zap.Int("size", size), zap.Error(err))
		cache, _ = lru.NewWithEvict[string, *ebiten.Image](16, evict)
	}
	return cache
}

// NewImageManager starts the decode workers.
func NewImageManager(src ImageSource, opts ImageManagerOptions) *ImageManager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &ImageManager{
		src:      src,
		log:      opts.Logger,
		thumbW:   opts.ThumbWidth,
		thumbH:   opts.ThumbHeight,
		done:     opts.OnLoaded,
		pages:    newImageCache(opts.CacheSize, opts.Logger),
		thumbs:   newImageCache(opts.CacheSize*8, opts.Logger),
		inflight: make(map[string]bool),
		pinned:   make(map[string]*ebiten.Image),
		failed:   make(map[string]*ebiten.Image),
		wake:     make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < opts.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// Request queues a strip image. The reader calls it once per placeholder.
func (m *ImageManager) Request(index int, res reader.Resource) {
	m.enqueue(loadRequest{index: index, res: res, kind: kindStrip}, priorityStrip)
}

// StripImage returns a decoded strip image without requesting it.
func (m *ImageManager) StripImage(res reader.Resource) *ebiten.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pinned[stripKey(res)]
}

// Page returns the decoded image for a paged view, queueing it at the
// highest priority when missing. It returns nil while loading.
func (m *ImageManager) Page(index int, res reader.Resource) *ebiten.Image {
	if res.File == "" {
		return nil
	}
	key := res.Path()
	if img, ok := m.pages.Get(key); ok {
		m.log.Debug("cache hit", zap.String("resource", key))
		return img
	}
	m.mu.Lock()
	if img, ok := m.pinned[stripKey(res)]; ok {
		m.mu.Unlock()
		return img
	}
	if img, ok := m.failed[key]; ok {
		m.mu.Unlock()
		return img
	}
	m.mu.Unlock()
	m.enqueue(loadRequest{index: index, res: res, kind: kindPage}, priorityVisible)
	return nil
}

// Thumbnail returns the grid thumbnail of an image, queueing it when
// missing.
func (m *ImageManager) Thumbnail(index int, res reader.Resource) *ebiten.Image {
	if res.File == "" {
		return nil
	}
	req := loadRequest{index: index, res: res, kind: kindThumb}
	if img, ok := m.thumbs.Get(req.key()); ok {
		return img
	}
	m.mu.Lock()
	img, failed := m.failed[res.Path()]
	m.mu.Unlock()
	if failed {
		return img
	}
	m.enqueue(req, priorityStrip)
	return nil
}

// Preload replaces the queued preloads with the neighbours of current in
// the direction of travel.
func (m *ImageManager) Preload(current int, direction NavigationDirection, count, total int, resource func(int) reader.Resource) {
	indices := calculatePreloadIndices(current, direction, count, total)

	m.mu.Lock()
	for _, r := range m.queues[priorityPreload] {
		delete(m.inflight, r.key())
	}
	m.queues[priorityPreload] = nil
	m.mu.Unlock()

	for _, i := range indices {
		res := resource(i)
		if m.pages.Contains(res.Path()) {
			continue
		}
		m.enqueue(loadRequest{index: i, res: res, kind: kindPage}, priorityPreload)
	}
}

// calculatePreloadIndices calculates which image indices to preload
func calculatePreloadIndices(currentIdx int, direction NavigationDirection, maxPreload, pathsCount int) []int {
	var indices []int

	switch direction {
	case NavigationForward:
		for i := 1; i <= maxPreload; i++ {
			if idx := currentIdx + i; idx < pathsCount {
				indices = append(indices, idx)
			}
		}
	case NavigationBackward:
		for i := 1; i <= maxPreload; i++ {
			if idx := currentIdx - i; idx >= 0 {
				indices = append(indices, idx)
			}
		}
	case NavigationJump:
		half := maxPreload / 2
		for i := 1; i <= half; i++ {
			if idx := currentIdx + i; idx < pathsCount {
				indices = append(indices, idx)
			}
		}
		for i := 1; i <= half; i++ {
			if idx := currentIdx - i; idx >= 0 {
				indices = append(indices, idx)
			}
		}
	}

	return indices
}

func (m *ImageManager) enqueue(req loadRequest, priority int) {
	key := req.key()
	m.mu.Lock()
	if m.inflight[key] || m.ctx.Err() != nil {
		m.mu.Unlock()
		return
	}
	m.inflight[key] = true
	m.queues[priority] = append(m.queues[priority], req)
	m.mu.Unlock()
	m.signal()
}

func (m *ImageManager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *ImageManager) next() (loadRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := range m.queues {
		if q := m.queues[p]; len(q) > 0 {
			req := q[0]
			m.queues[p] = q[1:]
			return req, true
		}
	}
	return loadRequest{}, false
}

func (m *ImageManager) worker() {
	defer m.wg.Done()
	for {
		req, ok := m.next()
		if !ok {
			select {
			case <-m.ctx.Done():
				return
			case <-m.wake:
			}
			continue
		}
		// Let another worker pick up whatever is left.
		m.signal()
		if m.ctx.Err() != nil {
			return
		}
		m.load(req)
	}
}

func (m *ImageManager) load(req loadRequest) {
	res := req.res
	img, w, h, err := m.decode(req)

	m.mu.Lock()
	delete(m.inflight, req.key())
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		if img != nil {
			img.Deallocate()
		}
		return
	}
	if err != nil {
		m.stats.FailedCount++
		if _, ok := m.failed[res.Path()]; !ok && req.kind != kindStrip {
			m.failed[res.Path()] = CreateErrorImage(400, 300, res.File, err.Error())
		}
	} else {
		m.stats.LoadedCount++
		if req.kind == kindStrip {
			m.pinned[req.key()] = img
		}
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Warn("loading image failed", zap.String("resource", res.Path()), zap.Error(err))
	} else {
		switch req.kind {
		case kindPage:
			m.pages.Add(res.Path(), img)
		case kindThumb:
			m.thumbs.Add(req.key(), img)
		}
		m.log.Debug("image decoded", zap.String("resource", res.Path()), zap.Int("width", w), zap.Int("height", h))
	}

	if m.done != nil && req.kind != kindThumb {
		m.done(LoadResult{Index: req.index, Resource: res, Strip: req.kind == kindStrip, Width: w, Height: h, Err: err})
	}
}

func (m *ImageManager) decode(req loadRequest) (*ebiten.Image, int, int, error) {
	res := req.res
	rc, err := m.src.OpenImage(res.Book, res.Chapter, res.File)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rc.Close()

	src, _, err := image.Decode(rc)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding %s: %w", res.RelativePath(), err)
	}
	b := src.Bounds()
	if req.kind == kindThumb && (b.Dx() > m.thumbW || b.Dy() > m.thumbH) {
		src = imaging.Fit(src, m.thumbW, m.thumbH, imaging.Lanczos)
	}
	return ebiten.NewImageFromImage(src), b.Dx(), b.Dy(), nil
}

// ReleaseStrip drops the pinned strip images and any queued strip work,
// used when the chapter changes.
func (m *ImageManager) ReleaseStrip() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.queues[priorityStrip] {
		delete(m.inflight, r.key())
	}
	m.queues[priorityStrip] = nil
	for key, img := range m.pinned {
		img.Deallocate()
		delete(m.pinned, key)
	}
}

// Stats returns current decode statistics
func (m *ImageManager) Stats() LoadStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	for _, q := range m.queues {
		s.QueueSize += len(q)
	}
	s.Strip = len(m.pinned)
	s.Cached = m.pages.Len()
	return s
}

// Stop stops the workers and frees every decoded image.
func (m *ImageManager) Stop() {
	m.cancel()
	m.wg.Wait()
	m.ReleaseStrip()
	m.pages.Purge()
	m.thumbs.Purge()
	m.mu.Lock()
	for key, img := range m.failed {
		img.Deallocate()
		delete(m.failed, key)
	}
	m.mu.Unlock()
}
