package reader

import (
	"fmt"
	"sort"
	"strings"
)

// Action names an input command.
type Action string

const (
	ActionEscape          Action = "escape"
	ActionNext            Action = "next"
	ActionPrevious        Action = "previous"
	ActionNextChapter     Action = "next_chapter"
	ActionPrevChapter     Action = "prev_chapter"
	ActionToggleSpread    Action = "toggle_spread"
	ActionToggleScroll    Action = "toggle_scroll"
	ActionSingle          Action = "single"
	ActionToggleDirection Action = "toggle_reading_direction"
	ActionJumpFirst       Action = "jump_first"
	ActionJumpLast        Action = "jump_last"
	ActionScrollUp        Action = "up"
	ActionScrollDown      Action = "down"
	ActionPageUp          Action = "page_up"
	ActionPageDown        Action = "page_down"
	ActionPanLeft         Action = "pan_left"
	ActionPanRight        Action = "pan_right"
	ActionZoomIn          Action = "zoom_in"
	ActionZoomOut         Action = "zoom_out"
	ActionZoomReset       Action = "zoom_reset"
	ActionZoomFit         Action = "zoom_fit"
	ActionSetCover        Action = "set_cover"
)

// KeyPress is a key name with the modifiers held when it went down.
type KeyPress struct {
	Name  string
	Shift bool
	Ctrl  bool
	Alt   bool
}

// String renders the press in binding syntax, e.g. "Shift+ArrowRight".
func (k KeyPress) String() string {
	var parts []string
	if k.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if k.Alt {
		parts = append(parts, "Alt")
	}
	if k.Shift {
		parts = append(parts, "Shift")
	}
	return strings.Join(append(parts, k.Name), "+")
}

// ParseKey parses a binding such as "Shift+KeyB". The key name is checked
// against valid when valid is non-nil.
func ParseKey(s string, valid map[string]bool) (KeyPress, error) {
	parts := strings.Split(s, "+")
	name := strings.TrimSpace(parts[len(parts)-1])
	if name == "" {
		return KeyPress{}, fmt.Errorf("empty key string")
	}
	if valid != nil && !valid[name] {
		return KeyPress{}, fmt.Errorf("unknown key: %s", name)
	}
	k := KeyPress{Name: name}
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(mod)) {
		case "shift":
			k.Shift = true
		case "ctrl":
			k.Ctrl = true
		case "alt":
			k.Alt = true
		default:
			return KeyPress{}, fmt.Errorf("unknown modifier: %s", mod)
		}
	}
	return k, nil
}

// DefaultKeybindings returns the reader's default bindings per action.
func DefaultKeybindings() map[Action][]string {
	return map[Action][]string{
		ActionEscape:          {"Escape"},
		ActionNext:            {"ArrowRight", "KeyN"},
		ActionPrevious:        {"ArrowLeft", "KeyP"},
		ActionNextChapter:     {"Shift+ArrowRight"},
		ActionPrevChapter:     {"Shift+ArrowLeft"},
		ActionToggleSpread:    {"KeyB"},
		ActionToggleScroll:    {"KeyW"},
		ActionSingle:          {"KeyS"},
		ActionToggleDirection: {"Shift+KeyB"},
		ActionJumpFirst:       {"Home"},
		ActionJumpLast:        {"End"},
		ActionScrollUp:        {"ArrowUp"},
		ActionScrollDown:      {"ArrowDown"},
		ActionPageUp:          {"PageUp"},
		ActionPageDown:        {"PageDown", "Space"},
		ActionPanLeft:         {"Alt+ArrowLeft"},
		ActionPanRight:        {"Alt+ArrowRight"},
		ActionZoomIn:          {"Equal", "Shift+Equal"},
		ActionZoomOut:         {"Minus"},
		ActionZoomReset:       {"Key0"},
		ActionZoomFit:         {"KeyF"},
		ActionSetCover:        {"KeyC"},
	}
}

// Keymap resolves key presses to actions.
type Keymap struct {
	bindings map[KeyPress]Action
}

// NewKeymap builds a keymap, rejecting unparsable keys and keys bound to
// more than one action.
func NewKeymap(bindings map[Action][]string, valid map[string]bool) (*Keymap, error) {
	km := &Keymap{bindings: make(map[KeyPress]Action)}

	actions := make([]string, 0, len(bindings))
	for a := range bindings {
		actions = append(actions, string(a))
	}
	sort.Strings(actions)

	for _, name := range actions {
		action := Action(name)
		for _, s := range bindings[action] {
			k, err := ParseKey(s, valid)
			if err != nil {
				return nil, fmt.Errorf("invalid key '%s' for action '%s': %w", s, action, err)
			}
			if existing, ok := km.bindings[k]; ok {
				return nil, fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", s, existing, action)
			}
			km.bindings[k] = action
		}
	}
	return km, nil
}

// Lookup returns the action bound to k. Modifiers must match exactly.
func (km *Keymap) Lookup(k KeyPress) (Action, bool) {
	a, ok := km.bindings[k]
	return a, ok
}

// Keys returns the bindings of a, sorted.
func (km *Keymap) Keys(a Action) []string {
	var keys []string
	for k, action := range km.bindings {
		if action == a {
			keys = append(keys, k.String())
		}
	}
	sort.Strings(keys)
	return keys
}
