package main

import (
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gallery-reader/internal/reader"
)

// KeybindingManager turns ebiten key presses into reader key presses and
// resolves them through the keymap.
type KeybindingManager struct {
	keybindings map[string][]string
	keymap      *reader.Keymap
	keyMapping  map[string]ebiten.Key
	names       []string
}

// NewKeybindingManager creates a new KeybindingManager. The bindings must
// already be validated.
func NewKeybindingManager(keybindings map[string][]string) (*KeybindingManager, error) {
	keymap, err := reader.NewKeymap(toActionBindings(keybindings), getValidKeyNames())
	if err != nil {
		return nil, fmt.Errorf("building keymap: %w", err)
	}
	mapping := getKeyMapping()
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return &KeybindingManager{
		keybindings: keybindings,
		keymap:      keymap,
		keyMapping:  mapping,
		names:       names,
	}, nil
}

// getKeyMapping returns a mapping from string keys to Ebiten keys
func getKeyMapping() map[string]ebiten.Key {
	return map[string]ebiten.Key{
		// Letters
		"KeyA": ebiten.KeyA, "KeyB": ebiten.KeyB, "KeyC": ebiten.KeyC, "KeyD": ebiten.KeyD,
		"KeyE": ebiten.KeyE, "KeyF": ebiten.KeyF, "KeyG": ebiten.KeyG, "KeyH": ebiten.KeyH,
		"KeyI": ebiten.KeyI, "KeyJ": ebiten.KeyJ, "KeyK": ebiten.KeyK, "KeyL": ebiten.KeyL,
		"KeyM": ebiten.KeyM, "KeyN": ebiten.KeyN, "KeyO": ebiten.KeyO, "KeyP": ebiten.KeyP,
		"KeyQ": ebiten.KeyQ, "KeyR": ebiten.KeyR, "KeyS": ebiten.KeyS, "KeyT": ebiten.KeyT,
		"KeyU": ebiten.KeyU, "KeyV": ebiten.KeyV, "KeyW": ebiten.KeyW, "KeyX": ebiten.KeyX,
		"KeyY": ebiten.KeyY, "KeyZ": ebiten.KeyZ,

		// Numbers
		"Key0": ebiten.Key0, "Key1": ebiten.Key1, "Key2": ebiten.Key2, "Key3": ebiten.Key3,
		"Key4": ebiten.Key4, "Key5": ebiten.Key5, "Key6": ebiten.Key6, "Key7": ebiten.Key7,
		"Key8": ebiten.Key8, "Key9": ebiten.Key9,

		// Special keys
		"Space":      ebiten.KeySpace,
		"Backspace":  ebiten.KeyBackspace,
		"Enter":      ebiten.KeyEnter,
		"Escape":     ebiten.KeyEscape,
		"Tab":        ebiten.KeyTab,
		"Home":       ebiten.KeyHome,
		"End":        ebiten.KeyEnd,
		"PageUp":     ebiten.KeyPageUp,
		"PageDown":   ebiten.KeyPageDown,
		"ArrowUp":    ebiten.KeyArrowUp,
		"ArrowDown":  ebiten.KeyArrowDown,
		"ArrowLeft":  ebiten.KeyArrowLeft,
		"ArrowRight": ebiten.KeyArrowRight,

		// Punctuation
		"Comma":     ebiten.KeyComma,
		"Period":    ebiten.KeyPeriod,
		"Slash":     ebiten.KeySlash,
		"Semicolon": ebiten.KeySemicolon,
		"Quote":     ebiten.KeyQuote,
		"Minus":     ebiten.KeyMinus,
		"Equal":     ebiten.KeyEqual,

		// Numpad
		"Numpad0":     ebiten.KeyNumpad0,
		"Numpad1":     ebiten.KeyNumpad1,
		"Numpad2":     ebiten.KeyNumpad2,
		"Numpad3":     ebiten.KeyNumpad3,
		"Numpad4":     ebiten.KeyNumpad4,
		"Numpad5":     ebiten.KeyNumpad5,
		"Numpad6":     ebiten.KeyNumpad6,
		"Numpad7":     ebiten.KeyNumpad7,
		"Numpad8":     ebiten.KeyNumpad8,
		"Numpad9":     ebiten.KeyNumpad9,
		"NumpadEnter": ebiten.KeyNumpadEnter,
	}
}

// currentModifiers reads the modifier keys held this frame.
func currentModifiers() (shift, ctrl, alt bool) {
	return ebiten.IsKeyPressed(ebiten.KeyShift),
		ebiten.IsKeyPressed(ebiten.KeyControl),
		ebiten.IsKeyPressed(ebiten.KeyAlt)
}

// JustPressed returns the keys that went down this frame, with the
// modifiers held at that moment.
func (km *KeybindingManager) JustPressed() []reader.KeyPress {
	shift, ctrl, alt := currentModifiers()
	var presses []reader.KeyPress
	for _, name := range km.names {
		if inpututil.IsKeyJustPressed(km.keyMapping[name]) {
			presses = append(presses, reader.KeyPress{Name: name, Shift: shift, Ctrl: ctrl, Alt: alt})
		}
	}
	return presses
}

// Lookup resolves a key press to its bound action.
func (km *KeybindingManager) Lookup(k reader.KeyPress) (reader.Action, bool) {
	return km.keymap.Lookup(k)
}

// Keymap returns the resolved bindings, shared with the reader session.
func (km *KeybindingManager) Keymap() *reader.Keymap {
	return km.keymap
}

// GetKeybindings returns the current keybindings map (for display purposes)
func (km *KeybindingManager) GetKeybindings() map[string][]string {
	return km.keybindings
}
