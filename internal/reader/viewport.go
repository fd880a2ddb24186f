package reader

import "sort"

const (
	// DefaultPrefetchMargin is how far outside the viewport, in logical
	// pixels, an image starts loading.
	DefaultPrefetchMargin = 800.0

	// DefaultPlaceholderHeight is the layout height of an image whose size
	// is not known yet.
	DefaultPlaceholderHeight = 1000.0

	// EndMarkerHeight is the height of the tile appended after the last image.
	EndMarkerHeight = 160.0
)

// LoadState tracks one placeholder.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadArmed
	LoadDone
	LoadFailed
)

// ScrollView is a clamped vertical scroll offset.
type ScrollView struct {
	Offset    float64
	ContentH  float64
	ViewportH float64
}

// SetDimensions updates content and viewport heights and clamps the offset.
func (v *ScrollView) SetDimensions(contentH, viewportH float64) {
	v.ContentH = contentH
	v.ViewportH = viewportH
	v.clamp()
}

// MaxOffset returns the largest valid offset.
func (v *ScrollView) MaxOffset() float64 {
	if v.ContentH <= v.ViewportH {
		return 0
	}
	return v.ContentH - v.ViewportH
}

func (v *ScrollView) ScrollBy(delta float64) {
	v.Offset += delta
	v.clamp()
}

func (v *ScrollView) ScrollTo(pos float64) {
	v.Offset = pos
	v.clamp()
}

// AtEnd reports whether the bottom of the content is visible.
func (v *ScrollView) AtEnd() bool {
	return v.Offset >= v.MaxOffset()
}

func (v *ScrollView) clamp() {
	if v.Offset > v.MaxOffset() {
		v.Offset = v.MaxOffset()
	}
	if v.Offset < 0 {
		v.Offset = 0
	}
}

type placeholder struct {
	top    float64
	height float64
	state  LoadState
}

// ViewportLoader arms placeholders for loading once they come within the
// prefetch margin of the viewport. Arming is one-shot: a placeholder is
// requested at most once for the lifetime of the loader.
type ViewportLoader struct {
	items    []placeholder
	margin   float64
	endH     float64
	onArm    func(index int)
	onReport func(index int)
	reported int
	closed   bool
}

// NewViewportLoader lays out n placeholders of the default height. onArm is
// called once per armed placeholder; onReport receives advisory position
// updates.
func NewViewportLoader(n int, margin float64, onArm, onReport func(int)) *ViewportLoader {
	if margin < 0 {
		margin = DefaultPrefetchMargin
	}
	v := &ViewportLoader{
		items:    make([]placeholder, n),
		margin:   margin,
		onArm:    onArm,
		onReport: onReport,
		reported: -1,
	}
	for i := range v.items {
		v.items[i].height = DefaultPlaceholderHeight
	}
	v.relayout()
	return v
}

// Len returns the number of placeholders.
func (v *ViewportLoader) Len() int { return len(v.items) }

// SetEndMarker reserves height for the tile after the last image; zero
// removes it.
func (v *ViewportLoader) SetEndMarker(height float64) {
	v.endH = height
}

// EndMarker returns the top and height of the end tile.
func (v *ViewportLoader) EndMarker() (top, height float64) {
	return v.imagesHeight(), v.endH
}

// SetHeight records the laid-out height of placeholder i.
func (v *ViewportLoader) SetHeight(i int, height float64) {
	if i < 0 || i >= len(v.items) || height <= 0 || v.items[i].height == height {
		return
	}
	v.items[i].height = height
	v.relayout()
}

func (v *ViewportLoader) relayout() {
	y := 0.0
	for i := range v.items {
		v.items[i].top = y
		y += v.items[i].height
	}
}

func (v *ViewportLoader) imagesHeight() float64 {
	if len(v.items) == 0 {
		return 0
	}
	last := v.items[len(v.items)-1]
	return last.top + last.height
}

// ContentHeight is the full strip height including the end tile.
func (v *ViewportLoader) ContentHeight() float64 {
	return v.imagesHeight() + v.endH
}

// Bounds returns the top offset and height of placeholder i.
func (v *ViewportLoader) Bounds(i int) (top, height float64) {
	if i < 0 || i >= len(v.items) {
		return 0, 0
	}
	return v.items[i].top, v.items[i].height
}

// State returns the load state of placeholder i.
func (v *ViewportLoader) State(i int) LoadState {
	if i < 0 || i >= len(v.items) {
		return LoadIdle
	}
	return v.items[i].state
}

// MarkLoaded records a finished load. Late results after Close are ignored.
func (v *ViewportLoader) MarkLoaded(i int) { v.finish(i, LoadDone) }

// MarkFailed records a failed load; the placeholder renders as broken.
func (v *ViewportLoader) MarkFailed(i int) { v.finish(i, LoadFailed) }

func (v *ViewportLoader) finish(i int, s LoadState) {
	if v.closed || i < 0 || i >= len(v.items) || v.items[i].state != LoadArmed {
		return
	}
	v.items[i].state = s
}

// IndexAt returns the placeholder covering content offset y, or -1.
func (v *ViewportLoader) IndexAt(y float64) int {
	if y < 0 || y >= v.imagesHeight() {
		return -1
	}
	i := sort.Search(len(v.items), func(i int) bool {
		return v.items[i].top+v.items[i].height > y
	})
	if i == len(v.items) {
		return -1
	}
	return i
}

// Observe evaluates the viewport [top, top+height). Placeholders within the
// margin are armed. The first placeholder armed by this call is reported;
// when nothing new was armed the placeholder at the viewport centre is
// reported if it changed.
func (v *ViewportLoader) Observe(top, height float64) {
	if v.closed || len(v.items) == 0 {
		return
	}
	lo, hi := top-v.margin, top+height+v.margin
	first := -1
	for i := range v.items {
		it := &v.items[i]
		if it.state != LoadIdle {
			continue
		}
		if it.top+it.height <= lo || it.top >= hi {
			continue
		}
		it.state = LoadArmed
		if first < 0 {
			first = i
		}
		if v.onArm != nil {
			v.onArm(i)
		}
	}
	if first < 0 {
		first = v.IndexAt(top + height/2)
	}
	if first >= 0 && first != v.reported {
		v.reported = first
		if v.onReport != nil {
			v.onReport(first)
		}
	}
}

// Close disconnects the loader. Observe and load results become no-ops.
func (v *ViewportLoader) Close() {
	v.closed = true
	v.onArm = nil
	v.onReport = nil
}

// Closed reports whether Close was called.
func (v *ViewportLoader) Closed() bool { return v.closed }
