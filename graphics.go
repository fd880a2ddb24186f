package main

import (
	"bytes"
	"image/color"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// Global font source shared by the renderer and placeholder images
var globalFontSource *text.GoTextFaceSource

// InitGraphics initializes the global font source for text rendering
func InitGraphics() error {
	if globalFontSource != nil {
		return nil
	}
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	globalFontSource = s
	return nil
}

func newFace(size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: globalFontSource, Size: size}
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawCenteredText draws text centred in the box (x, y, w, h).
func DrawCenteredText(screen *ebiten.Image, s string, font *text.GoTextFace, x, y, w, h float64, c color.RGBA) {
	tw, th := text.Measure(s, font, 0)
	DrawText(screen, s, font, x+(w-tw)/2, y+(h-th)/2, c)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// DrawFrame draws a rectangle outline of the given stroke width.
func DrawFrame(screen *ebiten.Image, x, y, w, h, stroke float64, c color.RGBA) {
	DrawFilledRect(screen, x, y, w, stroke, c)
	DrawFilledRect(screen, x, y+h-stroke, w, stroke, c)
	DrawFilledRect(screen, x, y, stroke, h, c)
	DrawFilledRect(screen, x+w-stroke, y, stroke, h, c)
}

// DrawImageAt draws img scaled by scale with its top-left corner at (x, y).
func DrawImageAt(screen, img *ebiten.Image, scale, x, y float64) {
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	screen.DrawImage(img, op)
}

// DrawImageFit draws img as large as fits the box, centred, never upscaling
// beyond maxScale.
func DrawImageFit(screen, img *ebiten.Image, x, y, w, h, maxScale float64) {
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	if iw <= 0 || ih <= 0 {
		return
	}
	scale := min(w/iw, h/ih, maxScale)
	DrawImageAt(screen, img, scale, x+(w-iw*scale)/2, y+(h-ih*scale)/2)
}

// CreateErrorImage creates an error placeholder image with filename and error message
func CreateErrorImage(width, height int, filename, errorMsg string) *ebiten.Image {
	if width <= 0 || height <= 0 {
		width, height = 400, 300
	}

	errorImg := ebiten.NewImage(width, height)
	errorImg.Fill(color.RGBA{120, 30, 30, 255}) // Dark red background
	DrawFrame(errorImg, 0, 0, float64(width), float64(height), 3, colorWhite)

	// Without a font the frame alone marks the failure.
	if globalFontSource == nil {
		return errorImg
	}

	fileText := "File: " + filepath.Base(filename)
	reasonText := "Reason: " + errorMsg

	// Rough estimate: 10px per character
	maxChars := (width - 20) / 10
	fileText = truncateText(fileText, maxChars)
	reasonText = truncateText(reasonText, maxChars)

	errorFont := newFace(20)
	DrawText(errorImg, "ERROR", errorFont, 10, 30, colorWhite)
	DrawText(errorImg, fileText, errorFont, 10, 60, colorWhite)
	DrawText(errorImg, reasonText, errorFont, 10, 90, colorWhite)

	return errorImg
}

// truncateText shortens s to at most n runes, ending in "..." when cut.
func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-3]) + "..."
}
