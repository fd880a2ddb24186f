package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"gallery-reader/internal/reader"
)

const (
	imageGap = 10 // Gap between images in a spread

	// Aspect ratio limits for spread display
	minAspectRatio = 0.4 // Extremely tall images
	maxAspectRatio = 2.5 // Extremely wide images

	headerPadding     = 10.0
	progressBarHeight = 6.0
	progressHitHeight = 24.0
)

// Common colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorGray      = color.RGBA{180, 180, 180, 255}
	colorLightGray = color.RGBA{192, 192, 192, 255}
	colorYellow    = color.RGBA{255, 255, 100, 255}
	colorCyan      = color.RGBA{100, 255, 255, 255}
	colorLightBlue = color.RGBA{200, 200, 255, 255}
	colorGreen     = color.RGBA{100, 255, 100, 255}
	colorOrange    = color.RGBA{255, 200, 100, 255}
	colorLightRed  = color.RGBA{255, 150, 150, 255}
	colorTile      = color.RGBA{40, 40, 40, 255}
	colorBroken    = color.RGBA{90, 30, 30, 255}

	// Background colors for semi-transparent overlays
	bgColorLight  = color.RGBA{0, 0, 0, 128} // Light semi-transparent
	bgColorMedium = color.RGBA{0, 0, 0, 160} // Medium semi-transparent
	bgColorDark   = color.RGBA{0, 0, 0, 200} // Dark semi-transparent
)

// Renderer handles all drawing operations
type Renderer struct {
	renderState RenderState
}

// NewRenderer creates a new Renderer. InitGraphics must have succeeded.
func NewRenderer(renderState RenderState) *Renderer {
	return &Renderer{renderState: renderState}
}

// spreadCompatible reports whether two pages of the given sizes look right
// side by side. Extremely tall or wide pages, and pairs whose aspect ratios
// differ by more than threshold, get separate slots.
func spreadCompatible(lw, lh, rw, rh int, threshold float64) bool {
	if lw <= 0 || lh <= 0 || rw <= 0 || rh <= 0 {
		return false
	}
	leftAspect := float64(lw) / float64(lh)
	rightAspect := float64(rw) / float64(rh)

	if leftAspect < minAspectRatio || leftAspect > maxAspectRatio ||
		rightAspect < minAspectRatio || rightAspect > maxAspectRatio {
		return false
	}

	ratio := leftAspect / rightAspect
	if ratio < 1.0 {
		ratio = 1.0 / ratio // Always use the larger ratio
	}
	return ratio <= threshold
}

// progressBarRect is the hit area of the progress bar along the bottom edge.
func progressBarRect(w, h float64) (x, y, bw, bh float64) {
	return 0, h - progressHitHeight, w, progressHitHeight
}

// progressBarIndex maps a horizontal position on the bar to an image index.
func progressBarIndex(x, w float64, n int) int {
	if n <= 0 || w <= 0 {
		return 0
	}
	i := int(x / w * float64(n))
	return max(0, min(n-1, i))
}

// Draw renders the entire screen
func (r *Renderer) Draw(screen *ebiten.Image) {
	// Clear the screen since SetScreenClearedEveryFrame(false) is enabled
	screen.Clear()

	s := r.renderState.Session()
	if s == nil {
		return
	}

	switch s.Controller().Mode() {
	case reader.ModeGrid:
		r.drawGrid(screen, s)
	case reader.ModeScroll:
		r.drawStrip(screen, s)
	case reader.ModeSpread:
		r.drawSpread(screen, s)
	default:
		r.drawPage(screen, s, s.Controller().Index())
	}

	if s.ControlsVisible() {
		r.drawHeader(screen, s)
		r.drawProgressBar(screen, s)
	}

	if r.renderState.IsShowingInfo() {
		r.drawInfoDisplay(screen, s)
	}

	if r.renderState.IsShowingHelp() {
		r.drawHelpOverlay(screen)
	}

	if r.renderState.IsInPageInputMode() {
		r.drawPageInputOverlay(screen, s)
	}

	if msg := s.Message(); msg != "" {
		r.drawOverlayMessage(screen, msg)
	}

	if d := r.renderState.CurrentDialog(); d != nil {
		r.drawDialog(screen, d)
	}
}

func (r *Renderer) drawGrid(screen *ebiten.Image, s *reader.Session) {
	g := s.GridLayout()
	if g.Count == 0 {
		r.drawCenteredNotice(screen, "No images in this chapter")
		return
	}
	off := s.Grid().Offset
	h := float64(screen.Bounds().Dy())
	rowH := g.CellH + g.Gap
	firstRow := max(0, int((off-g.Gap)/rowH))
	lastRow := int((off+h)/rowH) + 1
	labelFont := newFace(r.renderState.GetFontSize() * 0.7)
	current := s.Controller().Index()

	for i := firstRow * g.Columns; i < min(g.Count, (lastRow+1)*g.Columns); i++ {
		x, y := g.Cell(i)
		y -= off
		DrawFilledRect(screen, x, y, g.CellW, g.CellH, colorTile)
		if thumb := r.renderState.ThumbnailImage(i); thumb != nil {
			DrawImageFit(screen, thumb, x, y, g.CellW, g.CellH, 1)
		} else {
			DrawCenteredText(screen, "…", labelFont, x, y, g.CellW, g.CellH, colorGray)
		}
		label := fmt.Sprintf("%d", i+1)
		lw, lh := text.Measure(label, labelFont, 0)
		DrawFilledRect(screen, x, y+g.CellH-lh-6, lw+8, lh+6, bgColorMedium)
		DrawText(screen, label, labelFont, x+4, y+g.CellH-lh-3, colorWhite)
		if i == current {
			DrawFrame(screen, x-2, y-2, g.CellW+4, g.CellH+4, 2, colorCyan)
		}
	}
}

func (r *Renderer) drawStrip(screen *ebiten.Image, s *reader.Session) {
	loader := s.Loader()
	off := s.Strip().Offset
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	font := newFace(r.renderState.GetFontSize())

	start := loader.IndexAt(off)
	if start < 0 {
		start = 0
	}
	for i := start; i < loader.Len(); i++ {
		top, ih := loader.Bounds(i)
		y := top - off
		if y >= h {
			break
		}
		if y+ih <= 0 {
			continue
		}
		switch loader.State(i) {
		case reader.LoadDone:
			if img := r.renderState.StripImage(i); img != nil {
				DrawImageAt(screen, img, w/float64(img.Bounds().Dx()), 0, y)
				continue
			}
			DrawFilledRect(screen, 0, y, w, ih, colorTile)
		case reader.LoadFailed:
			DrawFilledRect(screen, 0, y, w, ih, colorBroken)
			DrawCenteredText(screen, fmt.Sprintf("Page %d could not be loaded", i+1), font, 0, y, w, ih, colorLightRed)
		default:
			DrawFilledRect(screen, 0, y, w, ih, colorTile)
			DrawCenteredText(screen, fmt.Sprintf("Loading page %d…", i+1), font, 0, y, w, math.Min(ih, h), colorGray)
		}
	}

	if top, mh := loader.EndMarker(); mh > 0 && top-off < h {
		y := top - off
		DrawFilledRect(screen, 0, y, w, mh, bgColorDark)
		label := "Next chapter ▸"
		if s.Navigator().Pending() {
			label = "Loading next chapter…"
		}
		DrawCenteredText(screen, label, font, 0, y, w, mh, colorYellow)
	}
}

func (r *Renderer) drawPage(screen *ebiten.Image, s *reader.Session, index int) {
	if s.Controller().Len() == 0 {
		r.drawCenteredNotice(screen, "No images in this chapter")
		return
	}
	img := r.renderState.PageImage(index)
	if img == nil {
		r.drawCenteredNotice(screen, fmt.Sprintf("Loading page %d…", index+1))
		return
	}
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	scale, x, y := s.Transform().Placement(iw, ih, w, h)
	DrawImageAt(screen, img, scale, x, y)
}

// drawSpread lays the pair out as one content box. Right-to-left puts the
// higher index on the left.
func (r *Renderer) drawSpread(screen *ebiten.Image, s *reader.Session) {
	first, last := s.Controller().DisplayRange()
	if first == last {
		r.drawPage(screen, s, first)
		return
	}
	leftIdx, rightIdx := first, last
	if s.RightToLeft() {
		leftIdx, rightIdx = last, first
	}
	left := r.renderState.PageImage(leftIdx)
	right := r.renderState.PageImage(rightIdx)
	if left == nil || right == nil {
		r.drawCenteredNotice(screen, fmt.Sprintf("Loading pages %d-%d…", first+1, last+1))
		return
	}

	cw, ch, lb, rb := spreadLayout(
		left.Bounds().Dx(), left.Bounds().Dy(),
		right.Bounds().Dx(), right.Bounds().Dy(),
		r.renderState.GetAspectRatioThreshold())
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	scale, x, y := s.Transform().Placement(cw, ch, w, h)
	DrawImageAt(screen, left, scale*lb.scale, x+lb.x*scale, y+lb.y*scale)
	DrawImageAt(screen, right, scale*rb.scale, x+rb.x*scale, y+rb.y*scale)
}

// pageBox is where one page of a spread lands inside the spread's content
// box, and the scale applied to it there.
type pageBox struct {
	x, y, scale float64
}

// spreadLayout places both pages of a spread. Pages with compatible aspect
// ratios sit side by side at natural size, centred vertically. Otherwise
// each page is fitted into one of two equal slots; both pages stay visible.
func spreadLayout(lw, lh, rw, rh int, threshold float64) (cw, ch float64, left, right pageBox) {
	if spreadCompatible(lw, lh, rw, rh, threshold) {
		ch = float64(max(lh, rh))
		cw = float64(lw + rw + imageGap)
		left = pageBox{x: 0, y: (ch - float64(lh)) / 2, scale: 1}
		right = pageBox{x: float64(lw + imageGap), y: (ch - float64(rh)) / 2, scale: 1}
		return cw, ch, left, right
	}
	slotW, slotH := float64(max(lw, rw, 1)), float64(max(lh, rh, 1))
	cw, ch = slotW*2+imageGap, slotH
	left = fitSlot(lw, lh, 0, slotW, slotH)
	right = fitSlot(rw, rh, slotW+imageGap, slotW, slotH)
	return cw, ch, left, right
}

func fitSlot(w, h int, x, slotW, slotH float64) pageBox {
	if w <= 0 || h <= 0 {
		return pageBox{x: x}
	}
	scale := min(slotW/float64(w), slotH/float64(h))
	return pageBox{
		x:     x + (slotW-float64(w)*scale)/2,
		y:     (slotH - float64(h)*scale) / 2,
		scale: scale,
	}
}

func (r *Renderer) drawCenteredNotice(screen *ebiten.Image, msg string) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	DrawCenteredText(screen, msg, newFace(r.renderState.GetFontSize()), 0, 0, w, h, colorGray)
}

func (r *Renderer) drawHeader(screen *ebiten.Image, s *reader.Session) {
	w := float64(screen.Bounds().Dx())
	font := newFace(r.renderState.GetFontSize())
	_, th := text.Measure("Ag", font, 0)
	barH := th + headerPadding*2
	DrawFilledRect(screen, 0, 0, w, barH, bgColorMedium)

	nav := s.Navigator()
	prev, next := "◂", "▸"
	prevColor, nextColor := colorGray, colorGray
	if nav.HasPrev() {
		prevColor = colorWhite
	}
	if nav.HasNext() {
		nextColor = colorWhite
	}
	DrawText(screen, prev, font, headerPadding, headerPadding, prevColor)
	pw, _ := text.Measure(prev+" ", font, 0)

	info := s.PageInfo() + "  " + s.Controller().Mode().String()
	iw, _ := text.Measure(info, font, 0)
	nw, _ := text.Measure(next, font, 0)

	title := s.Title()
	if chapters := len(nav.Chapters()); chapters > 0 {
		title = fmt.Sprintf("%s (%d/%d)", title, nav.Position()+1, chapters)
	}
	maxChars := int((w - pw - iw - nw - headerPadding*5) / (r.renderState.GetFontSize() * 0.55))
	DrawText(screen, truncateText(title, maxChars), font, headerPadding+pw, headerPadding, colorWhite)
	DrawText(screen, info, font, w-iw-nw-headerPadding*2, headerPadding, colorLightBlue)
	DrawText(screen, next, font, w-nw-headerPadding, headerPadding, nextColor)
}

func (r *Renderer) drawProgressBar(screen *ebiten.Image, s *reader.Session) {
	n := s.Controller().Len()
	if n == 0 {
		return
	}
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	y := h - progressBarHeight
	DrawFilledRect(screen, 0, y, w, progressBarHeight, bgColorMedium)
	_, last := s.Controller().DisplayRange()
	DrawFilledRect(screen, 0, y, w*float64(last+1)/float64(n), progressBarHeight, colorCyan)
}

// helpRow is one line of the help overlay.
type helpRow struct {
	action      string
	keys        string
	mouse       string
	description string
}

// helpRows returns the bound actions in name order.
func (r *Renderer) helpRows() []helpRow {
	keybindings := r.renderState.GetKeybindings()
	mousebindings := r.renderState.GetMousebindings()
	descriptions := GetActionDescriptions()

	actionSet := make(map[string]bool)
	for action := range keybindings {
		actionSet[action] = true
	}
	for action := range mousebindings {
		actionSet[action] = true
	}
	actions := make([]string, 0, len(actionSet))
	for action := range actionSet {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	var rows []helpRow
	for _, action := range actions {
		keys, mouse := keybindings[action], mousebindings[action]
		if len(keys) == 0 && len(mouse) == 0 {
			continue
		}
		desc := descriptions[action]
		if desc == "" {
			desc = "No description available"
		}
		rows = append(rows, helpRow{
			action:      action,
			keys:        strings.Join(keys, ", "),
			mouse:       strings.Join(mouse, ", "),
			description: desc,
		})
	}
	return rows
}

func (row helpRow) input() string {
	switch {
	case row.keys != "" && row.mouse != "":
		return row.keys + " | " + row.mouse
	case row.keys != "":
		return row.keys
	}
	return row.mouse
}

func shortWarnings(warnings []string) []string {
	var out []string
	for i, w := range warnings {
		if i >= 2 { // Limit to first 2 warnings to avoid clutter
			break
		}
		out = append(out, "• "+truncateText(w, 50))
	}
	return out
}

// helpColumns measures the action and input columns at the given face.
func helpColumns(rows []helpRow, font *text.GoTextFace) (actionW, inputW, descW float64) {
	for _, row := range rows {
		aw, _ := text.Measure(row.action, font, 0)
		iw, _ := text.Measure(row.input(), font, 0)
		dw, _ := text.Measure(row.description, font, 0)
		actionW = math.Max(actionW, aw)
		inputW = math.Max(inputW, iw)
		descW = math.Max(descW, dw)
	}
	return actionW, inputW, descW
}

func (r *Renderer) drawHelpOverlay(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	padding := 40.0
	rows := r.helpRows()
	optimalFontSize, canFit := r.calculateOptimalFontSize(rows, w-padding*2, h-padding*2)

	// If cannot fit even with minimum font size, show Fermat's joke
	if !canFit {
		r.drawMarginTooSmallMessage(screen)
		return
	}

	configStatus := r.renderState.GetConfigStatus()

	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)
	DrawFilledRect(screen, padding, padding, w-padding*2, h-padding*2, bgColorMedium)

	helpFont := newFace(optimalFontSize)
	titleY := padding + 30
	DrawText(screen, "HELP:", helpFont, padding+20, titleY, colorWhite)

	currentY := titleY + optimalFontSize*2
	lineHeight := optimalFontSize * 1.5

	DrawText(screen, "Controls (Keyboard | Mouse):", helpFont, padding+20, currentY, colorWhite)
	currentY += lineHeight * 1.5

	maxActionWidth, maxInputWidth, _ := helpColumns(rows, helpFont)
	actionColumnX := padding + 40
	arrowColumnX := actionColumnX + maxActionWidth + 20
	inputColumnX := arrowColumnX + 30
	descColumnX := inputColumnX + maxInputWidth + 20

	for _, row := range rows {
		DrawText(screen, row.action, helpFont, actionColumnX, currentY, colorLightBlue)
		DrawText(screen, "→", helpFont, arrowColumnX, currentY, colorWhite)

		x := inputColumnX
		if row.keys != "" {
			DrawText(screen, row.keys, helpFont, x, currentY, colorYellow)
			kw, _ := text.Measure(row.keys, helpFont, 0)
			x += kw
		}
		if row.keys != "" && row.mouse != "" {
			DrawText(screen, " | ", helpFont, x, currentY, colorWhite)
			sw, _ := text.Measure(" | ", helpFont, 0)
			x += sw
		}
		if row.mouse != "" {
			DrawText(screen, row.mouse, helpFont, x, currentY, colorCyan)
		}

		DrawText(screen, row.description, helpFont, descColumnX, currentY, colorGray)
		currentY += lineHeight
	}

	currentY += lineHeight
	DrawText(screen, "System:", helpFont, padding+20, currentY, colorWhite)
	currentY += lineHeight

	statusColor := colorGreen
	if configStatus.Status == "Warning" || configStatus.Status == "Error" {
		statusColor = colorOrange
	}
	DrawText(screen, fmt.Sprintf("Config Status: %s", configStatus.Status), helpFont, padding+40, currentY, statusColor)
	currentY += lineHeight

	for _, warning := range shortWarnings(configStatus.Warnings) {
		DrawText(screen, warning, helpFont, padding+40, currentY, colorLightRed)
		currentY += lineHeight
	}
}

// calculateRequiredDimensions calculates the required width and height for help content at a given font size
func (r *Renderer) calculateRequiredDimensions(rows []helpRow, fontSize float64) (float64, float64) {
	configStatus := r.renderState.GetConfigStatus()
	font := newFace(fontSize)
	warnings := shortWarnings(configStatus.Warnings)

	padding := 40.0
	lineHeight := fontSize * 1.5

	height := padding * 2
	height += fontSize * 2     // Title
	height += lineHeight * 1.5 // Controls title spacing
	height += float64(len(rows)) * lineHeight
	height += lineHeight * 3 // spacing, "System:", status
	height += float64(len(warnings)) * lineHeight

	widest := func(indent float64, lines ...string) float64 {
		m := 0.0
		for _, l := range lines {
			lw, _ := text.Measure(l, font, 0)
			m = math.Max(m, lw+padding*2+indent)
		}
		return m
	}

	maxWidth := widest(40, "HELP:", "Controls (Keyboard | Mouse):", "System:")
	maxWidth = math.Max(maxWidth, widest(80, append(warnings, fmt.Sprintf("Config Status: %s", configStatus.Status))...))

	actionW, inputW, descW := helpColumns(rows, font)
	maxWidth = math.Max(maxWidth, 40+actionW+20+30+20+inputW+20+descW+padding)

	return maxWidth, height
}

// calculateOptimalFontSize finds the largest font size that fits within the given dimensions
func (r *Renderer) calculateOptimalFontSize(rows []helpRow, availableWidth, availableHeight float64) (float64, bool) {
	maxFontSize := r.renderState.GetFontSize()
	minFontSize := 12.0

	fits := func(size float64) bool {
		w, h := r.calculateRequiredDimensions(rows, size)
		return w <= availableWidth && h <= availableHeight
	}

	if !fits(minFontSize) {
		return minFontSize, false
	}
	if fits(maxFontSize) {
		return maxFontSize, true
	}

	// Binary search for optimal font size
	low, high := minFontSize, maxFontSize
	bestSize := minFontSize
	for high-low > 0.5 {
		mid := (low + high) / 2.0
		if fits(mid) {
			bestSize = mid
			low = mid
		} else {
			high = mid
		}
	}
	return bestSize, true
}

// drawMarginTooSmallMessage displays Fermat's margin joke when help cannot fit
func (r *Renderer) drawMarginTooSmallMessage(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)

	jokeFont := newFace(16)
	message := "Hanc marginis exiguitas non caperet."
	subtitle := "(This margin is too small to contain it.)"

	messageWidth, messageHeight := text.Measure(message, jokeFont, 0)
	subtitleWidth, _ := text.Measure(subtitle, jokeFont, 0)

	messageY := h/2 - messageHeight/2
	DrawText(screen, message, jokeFont, w/2-messageWidth/2, messageY, colorWhite)
	DrawText(screen, subtitle, jokeFont, w/2-subtitleWidth/2, messageY+messageHeight+10, colorGray)
}

func (r *Renderer) drawPageInputOverlay(screen *ebiten.Image, s *reader.Session) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	inputFont := newFace(r.renderState.GetFontSize())
	rangeFont := newFace(r.renderState.GetFontSize() * 0.8)

	inputText := fmt.Sprintf("Go to page: %s_", r.renderState.GetPageInputBuffer())
	rangeText := fmt.Sprintf("(1-%d)", s.Controller().Len())

	inputWidth, inputHeight := text.Measure(inputText, inputFont, 0)
	rangeWidth, rangeHeight := text.Measure(rangeText, rangeFont, 0)

	padding := 20.0
	boxWidth := math.Max(inputWidth, rangeWidth) + padding*2
	boxHeight := inputHeight + rangeHeight + 10 + padding*2
	boxX := (w - boxWidth) / 2
	boxY := (h - boxHeight) / 2

	DrawFilledRect(screen, boxX, boxY, boxWidth, boxHeight, bgColorDark)
	DrawText(screen, inputText, inputFont, boxX+(boxWidth-inputWidth)/2, boxY+padding, colorWhite)
	DrawText(screen, rangeText, rangeFont, boxX+(boxWidth-rangeWidth)/2, boxY+padding+inputHeight+10, colorLightGray)
}

func (r *Renderer) drawInfoDisplay(screen *ebiten.Image, s *reader.Session) {
	infoFont := newFace(r.renderState.GetFontSize())
	stats := r.renderState.LoadStats()

	dir := "LTR"
	if s.RightToLeft() {
		dir = "RTL"
	}
	infoText := fmt.Sprintf("%s  %s %s  decoded %d  failed %d  queued %d",
		s.PageInfo(), s.Controller().Mode(), dir, stats.LoadedCount, stats.FailedCount, stats.QueueSize)
	if idx, ok := s.Progress().PendingIndex(); ok {
		infoText += fmt.Sprintf("  saving %d", idx+1)
	}

	textWidth, textHeight := text.Measure(infoText, infoFont, 0)

	// Bottom right corner, above the progress bar
	padding := 10.0
	textX := float64(screen.Bounds().Dx()) - textWidth - padding
	textY := float64(screen.Bounds().Dy()) - textHeight - padding - progressHitHeight

	bgPadding := 5.0
	DrawFilledRect(screen, textX-bgPadding, textY-bgPadding, textWidth+bgPadding*2, textHeight+bgPadding*2, bgColorLight)
	DrawText(screen, infoText, infoFont, textX, textY, colorWhite)
}

func (r *Renderer) drawOverlayMessage(screen *ebiten.Image, msg string) {
	messageFont := newFace(r.renderState.GetFontSize())
	textWidth, textHeight := text.Measure(msg, messageFont, 0)

	padding := 20.0
	boxWidth := textWidth + padding*2
	boxHeight := textHeight + padding*2
	boxX := (float64(screen.Bounds().Dx()) - boxWidth) / 2
	boxY := (float64(screen.Bounds().Dy()) - boxHeight) / 2

	DrawFilledRect(screen, boxX, boxY, boxWidth, boxHeight, bgColorDark)
	DrawText(screen, msg, messageFont, boxX+padding, boxY+padding, colorWhite)
}

func (r *Renderer) drawDialog(screen *ebiten.Image, d *Dialog) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	font := newFace(r.renderState.GetFontSize())
	hintFont := newFace(r.renderState.GetFontSize() * 0.8)

	hint := "Enter: OK"
	if d.Confirm {
		hint = "Y / Enter: Yes    N / Escape: No"
	}
	mw, mh := text.Measure(d.Message, font, 0)
	hw, hh := text.Measure(hint, hintFont, 0)

	padding := 24.0
	boxW := math.Max(mw, hw) + padding*2
	boxH := mh + hh + 16 + padding*2
	boxX, boxY := (w-boxW)/2, (h-boxH)/2

	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)
	DrawFilledRect(screen, boxX, boxY, boxW, boxH, bgColorDark)
	DrawFrame(screen, boxX, boxY, boxW, boxH, 1, colorGray)
	DrawText(screen, d.Message, font, boxX+(boxW-mw)/2, boxY+padding, colorWhite)
	DrawText(screen, hint, hintFont, boxX+(boxW-hw)/2, boxY+padding+mh+16, colorLightGray)
}
