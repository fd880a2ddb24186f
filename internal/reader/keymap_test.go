package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeymap(t *testing.T) {
	km, err := NewKeymap(DefaultKeybindings(), nil)
	require.NoError(t, err)

	tests := []struct {
		key  KeyPress
		want Action
	}{
		{KeyPress{Name: "Escape"}, ActionEscape},
		{KeyPress{Name: "ArrowRight"}, ActionNext},
		{KeyPress{Name: "ArrowLeft"}, ActionPrevious},
		{KeyPress{Name: "ArrowRight", Shift: true}, ActionNextChapter},
		{KeyPress{Name: "ArrowLeft", Shift: true}, ActionPrevChapter},
		{KeyPress{Name: "KeyB"}, ActionToggleSpread},
		{KeyPress{Name: "KeyB", Shift: true}, ActionToggleDirection},
		{KeyPress{Name: "Space"}, ActionPageDown},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got, ok := km.Lookup(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := km.Lookup(KeyPress{Name: "ArrowRight", Ctrl: true})
	assert.False(t, ok, "modifiers must match exactly")
	assert.Equal(t, []string{"ArrowRight", "KeyN"}, km.Keys(ActionNext))
}

func TestKeymapConflict(t *testing.T) {
	_, err := NewKeymap(map[Action][]string{
		ActionNext:     {"KeyA"},
		ActionPrevious: {"KeyA"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key conflict: 'KeyA' is bound to both 'next' and 'previous'")
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("Ctrl+Alt+KeyX", nil)
	require.NoError(t, err)
	assert.Equal(t, KeyPress{Name: "KeyX", Ctrl: true, Alt: true}, k)
	assert.Equal(t, "Ctrl+Alt+KeyX", k.String())

	_, err = ParseKey("Hyper+KeyX", nil)
	assert.Error(t, err)

	_, err = ParseKey("", nil)
	assert.Error(t, err)

	_, err = ParseKey("KeyQ", map[string]bool{"KeyA": true})
	assert.ErrorContains(t, err, "unknown key")
}
