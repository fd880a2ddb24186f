package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"gallery-reader/internal/reader"
)

// RenderState provides read-only access to game state for the renderer
type RenderState interface {
	// Reader state
	Session() *reader.Session
	IsFullscreen() bool

	// Image access, nil while loading
	PageImage(index int) *ebiten.Image
	ThumbnailImage(index int) *ebiten.Image
	StripImage(index int) *ebiten.Image

	// UI state
	IsShowingHelp() bool
	IsShowingInfo() bool
	IsInPageInputMode() bool
	GetPageInputBuffer() string
	CurrentDialog() *Dialog
	LoadStats() LoadStats

	// Display data
	GetFontSize() float64
	GetAspectRatioThreshold() float64
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
}

// InputActions provides action methods for the input handler
type InputActions interface {
	ShellActions

	// Page input
	ExitPageInputMode()
	ProcessPageInput()
	UpdatePageInputBuffer(buffer string)

	// Dialogs
	AnswerDialog(ok bool)

	// Progress bar hit testing, in screen coordinates
	ProgressBarHit(x, y float64) (index int, ok bool)
	JumpTo(index int)
}

// InputState provides read-only access to input-related state
type InputState interface {
	IsInPageInputMode() bool
	GetPageInputBuffer() string
	CurrentDialog() *Dialog
}
