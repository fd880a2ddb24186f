package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gallery-reader/internal/reader"
)

// MouseSettings contains mouse-specific configuration
type MouseSettings struct {
	WheelSensitivity float64 `yaml:"wheel_sensitivity"`
	DoubleClickTime  int     `yaml:"double_click_time"` // milliseconds
	DragThreshold    int     `yaml:"drag_threshold"`    // pixels
	EnableMouse      bool    `yaml:"enable_mouse"`
	WheelInverted    bool    `yaml:"wheel_inverted"`
	EnableDragPan    bool    `yaml:"enable_drag_pan"`
	DragSensitivity  float64 `yaml:"drag_sensitivity"`
}

// GetDefaultMouseSettings returns the default mouse settings
func GetDefaultMouseSettings() MouseSettings {
	return MouseSettings{
		WheelSensitivity: 1.0,
		DoubleClickTime:  300,
		DragThreshold:    5,
		EnableMouse:      true,
		WheelInverted:    false,
		EnableDragPan:    true,
		DragSensitivity:  1.0,
	}
}

// DoubleClickTracker tracks double-click state
type DoubleClickTracker struct {
	lastClickTime   time.Time
	lastClickButton ebiten.MouseButton
	clickCount      int
}

// MouseCombination represents a mouse action with optional modifiers
type MouseCombination struct {
	Button        ebiten.MouseButton
	IsWheel       bool
	WheelDeltaX   float64
	WheelDeltaY   float64
	IsDoubleClick bool
	Shift         bool
	Ctrl          bool
	Alt           bool
}

// PointerEvents are the unbound pointer gestures of one frame: a plain
// left click, the wheel and a left-button drag. They go to the reader's
// pointer handlers rather than through bindings.
type PointerEvents struct {
	Clicked bool
	X, Y    float64
	WheelY  float64
	DragX   float64
	DragY   float64
}

type dragState struct {
	active   bool
	dragging bool
	startX   int
	startY   int
	lastX    int
	lastY    int
}

// MousebindingManager handles dynamic mouse binding processing
type MousebindingManager struct {
	mousebindings      map[string][]string
	combinations       map[string][]*MouseCombination
	actions            []string
	settings           MouseSettings
	doubleClickTracker DoubleClickTracker
	drag               dragState
}

// NewMousebindingManager creates a new MousebindingManager
func NewMousebindingManager(mousebindings map[string][]string, settings MouseSettings) *MousebindingManager {
	mm := &MousebindingManager{
		mousebindings: mousebindings,
		combinations:  make(map[string][]*MouseCombination),
		settings:      settings,
	}
	for action, strs := range mousebindings {
		for _, s := range strs {
			if c, err := parseMouseString(s); err == nil {
				mm.combinations[action] = append(mm.combinations[action], c)
			}
		}
		mm.actions = append(mm.actions, action)
	}
	sort.Strings(mm.actions)
	return mm
}

// getMouseMapping returns a mapping from string mouse actions to Ebiten mouse buttons
func getMouseMapping() map[string]ebiten.MouseButton {
	return map[string]ebiten.MouseButton{
		"LeftClick":   ebiten.MouseButtonLeft,
		"RightClick":  ebiten.MouseButtonRight,
		"MiddleClick": ebiten.MouseButtonMiddle,
		"Back":        ebiten.MouseButton3,
		"Forward":     ebiten.MouseButton4,
	}
}

// parseMouseString parses a mouse string like "Shift+LeftClick" or "WheelUp" into a MouseCombination
func parseMouseString(mouseStr string) (*MouseCombination, error) {
	parts := strings.Split(mouseStr, "+")
	actionName := strings.TrimSpace(parts[len(parts)-1])
	if actionName == "" {
		return nil, fmt.Errorf("empty mouse string")
	}

	combination := &MouseCombination{}
	mapping := getMouseMapping()

	switch {
	case strings.HasPrefix(actionName, "Wheel"):
		combination.IsWheel = true
		switch actionName {
		case "WheelUp":
			combination.WheelDeltaY = 1.0
		case "WheelDown":
			combination.WheelDeltaY = -1.0
		case "WheelLeft":
			combination.WheelDeltaX = -1.0
		case "WheelRight":
			combination.WheelDeltaX = 1.0
		default:
			return nil, fmt.Errorf("unknown wheel action: %s", actionName)
		}
	case strings.HasPrefix(actionName, "Double"):
		button, exists := mapping[strings.TrimPrefix(actionName, "Double")]
		if !exists {
			return nil, fmt.Errorf("unknown mouse action: %s", actionName)
		}
		combination.IsDoubleClick = true
		combination.Button = button
	default:
		button, exists := mapping[actionName]
		if !exists {
			return nil, fmt.Errorf("unknown mouse action: %s", actionName)
		}
		combination.Button = button
	}

	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(mod)) {
		case "shift":
			combination.Shift = true
		case "ctrl":
			combination.Ctrl = true
		case "alt":
			combination.Alt = true
		default:
			return nil, fmt.Errorf("unknown modifier: %s", mod)
		}
	}

	// Plain left clicks and plain wheel turns belong to the pointer.
	if !combination.Shift && !combination.Ctrl && !combination.Alt {
		if combination.IsWheel || (combination.Button == ebiten.MouseButtonLeft && !combination.IsDoubleClick) {
			return nil, fmt.Errorf("%s without a modifier is reserved for pointer navigation", actionName)
		}
	}
	return combination, nil
}

// validateMousebindings checks every binding and rejects combinations
// bound to more than one action.
func validateMousebindings(mousebindings map[string][]string) error {
	owner := make(map[MouseCombination]string)

	actions := make([]string, 0, len(mousebindings))
	for action := range mousebindings {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	for _, action := range actions {
		for _, s := range mousebindings[action] {
			c, err := parseMouseString(s)
			if err != nil {
				return fmt.Errorf("invalid mouse binding '%s' for action '%s': %w", s, action, err)
			}
			if existing, ok := owner[*c]; ok {
				return fmt.Errorf("mouse conflict: '%s' is bound to both '%s' and '%s'", s, existing, action)
			}
			owner[*c] = action
		}
	}
	return nil
}

func modifiersMatch(c *MouseCombination, shift, ctrl, alt bool) bool {
	return c.Shift == shift && c.Ctrl == ctrl && c.Alt == alt
}

// isMouseActionTriggered checks if a mouse combination is currently being triggered
func (mm *MousebindingManager) isMouseActionTriggered(c *MouseCombination, wheelX, wheelY float64) bool {
	shift, ctrl, alt := currentModifiers()
	if !modifiersMatch(c, shift, ctrl, alt) {
		return false
	}

	if c.IsWheel {
		if c.WheelDeltaX != 0 {
			return (c.WheelDeltaX > 0 && wheelX > 0) || (c.WheelDeltaX < 0 && wheelX < 0)
		}
		return (c.WheelDeltaY > 0 && wheelY > 0) || (c.WheelDeltaY < 0 && wheelY < 0)
	}

	if c.IsDoubleClick {
		return mm.checkDoubleClick(c.Button)
	}
	return inpututil.IsMouseButtonJustPressed(c.Button)
}

// checkDoubleClick checks if a double-click occurred for the given button
func (mm *MousebindingManager) checkDoubleClick(button ebiten.MouseButton) bool {
	if !inpututil.IsMouseButtonJustPressed(button) {
		return false
	}

	now := time.Now()
	timeSinceLastClick := now.Sub(mm.doubleClickTracker.lastClickTime)

	if mm.doubleClickTracker.lastClickButton == button &&
		timeSinceLastClick <= time.Duration(mm.settings.DoubleClickTime)*time.Millisecond {
		mm.doubleClickTracker.clickCount++
		if mm.doubleClickTracker.clickCount == 2 {
			mm.doubleClickTracker.clickCount = 0
			mm.doubleClickTracker.lastClickTime = now
			return true
		}
	} else {
		mm.doubleClickTracker.clickCount = 1
		mm.doubleClickTracker.lastClickButton = button
	}

	mm.doubleClickTracker.lastClickTime = now
	return false
}

func (mm *MousebindingManager) wheel() (float64, float64) {
	wheelX, wheelY := ebiten.Wheel()
	if mm.settings.WheelInverted {
		wheelY = -wheelY
	}
	return wheelX * mm.settings.WheelSensitivity, wheelY * mm.settings.WheelSensitivity
}

// TriggeredActions returns the bound actions triggered this frame.
func (mm *MousebindingManager) TriggeredActions() []reader.Action {
	if !mm.settings.EnableMouse {
		return nil
	}
	wheelX, wheelY := mm.wheel()
	var out []reader.Action
	for _, action := range mm.actions {
		for _, c := range mm.combinations[action] {
			if mm.isMouseActionTriggered(c, wheelX, wheelY) {
				out = append(out, reader.Action(action))
				break
			}
		}
	}
	return out
}

// Poll reads the unbound pointer gestures. A left press becomes a click
// on release unless the pointer moved past the drag threshold.
func (mm *MousebindingManager) Poll() PointerEvents {
	var ev PointerEvents
	if !mm.settings.EnableMouse {
		return ev
	}
	shift, ctrl, alt := currentModifiers()
	plain := !shift && !ctrl && !alt

	if plain {
		_, ev.WheelY = mm.wheel()
	}

	x, y := ebiten.CursorPosition()
	d := &mm.drag
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		*d = dragState{active: plain, startX: x, startY: y, lastX: x, lastY: y}
	case d.active && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if !d.dragging && math.Hypot(float64(x-d.startX), float64(y-d.startY)) >= float64(mm.settings.DragThreshold) {
			d.dragging = mm.settings.EnableDragPan
		}
		if d.dragging {
			ev.DragX = float64(x-d.lastX) * mm.settings.DragSensitivity
			ev.DragY = float64(y-d.lastY) * mm.settings.DragSensitivity
		}
		d.lastX, d.lastY = x, y
	case d.active && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		if !d.dragging {
			ev.Clicked = true
			ev.X, ev.Y = float64(d.startX), float64(d.startY)
		}
		*d = dragState{}
	}
	return ev
}

// GetMousebindings returns the current mouse bindings map (for display purposes)
func (mm *MousebindingManager) GetMousebindings() map[string][]string {
	return mm.mousebindings
}

// GetSettings returns the current mouse settings
func (mm *MousebindingManager) GetSettings() MouseSettings {
	return mm.settings
}
