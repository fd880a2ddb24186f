package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// InputHandler routes one frame of input. A dialog captures everything
// until answered; page input mode captures the keyboard; otherwise keys and
// mouse go through the bindings and plain pointer gestures go to the reader.
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
	executor            *ActionExecutor
	log                 *zap.Logger
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, inputState InputState, km *KeybindingManager, mm *MousebindingManager, log *zap.Logger) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   km,
		mousebindingManager: mm,
		executor:            NewActionExecutor(),
		log:                 log,
	}
}

// HandleInput processes all input for the current frame
// Returns true if any input was processed, false otherwise
func (h *InputHandler) HandleInput() bool {
	if h.inputState.CurrentDialog() != nil {
		return h.handleDialog()
	}
	if h.inputState.IsInPageInputMode() {
		return h.handlePageInputMode()
	}

	inputProcessed := false
	inputProcessed = h.handleKeys() || inputProcessed
	inputProcessed = h.handleMouseBindings() || inputProcessed
	inputProcessed = h.handlePointer() || inputProcessed
	return inputProcessed
}

func (h *InputHandler) handleDialog() bool {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter),
		inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter),
		inpututil.IsKeyJustPressed(ebiten.KeyY):
		h.inputActions.AnswerDialog(true)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		inpututil.IsKeyJustPressed(ebiten.KeyN):
		h.inputActions.AnswerDialog(false)
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		// A click acknowledges an alert but never confirms a question.
		if d := h.inputState.CurrentDialog(); d != nil && !d.Confirm {
			h.inputActions.AnswerDialog(true)
		}
	default:
		return false
	}
	return true
}

func (h *InputHandler) handlePageInputMode() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.inputActions.ExitPageInputMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		h.inputActions.ProcessPageInput()
		h.inputActions.ExitPageInputMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if buf := h.inputState.GetPageInputBuffer(); len(buf) > 0 {
			h.inputActions.UpdatePageInputBuffer(buf[:len(buf)-1])
		}
		return true
	}

	// Handle digit input (both regular and numpad)
	var digit string
	if digit = h.checkDigitKeys(ebiten.Key0, ebiten.Key9, '0'); digit == "" {
		digit = h.checkDigitKeys(ebiten.KeyNumpad0, ebiten.KeyNumpad9, '0')
	}
	if digit != "" {
		h.inputActions.UpdatePageInputBuffer(h.inputState.GetPageInputBuffer() + digit)
		return true
	}

	return false
}

func (h *InputHandler) checkDigitKeys(startKey, endKey ebiten.Key, baseChar rune) string {
	for key := startKey; key <= endKey; key++ {
		if inpututil.IsKeyJustPressed(key) {
			return string(baseChar + rune(key-startKey))
		}
	}
	return ""
}

func (h *InputHandler) handleKeys() bool {
	processed := false
	for _, press := range h.keybindingManager.JustPressed() {
		action, ok := h.keybindingManager.Lookup(press)
		if !ok {
			continue
		}
		if h.executor.ExecuteAction(action, h.inputActions) {
			h.log.Debug("key action", zap.String("key", press.String()), zap.String("action", string(action)))
			processed = true
		}
	}
	return processed
}

func (h *InputHandler) handleMouseBindings() bool {
	processed := false
	for _, action := range h.mousebindingManager.TriggeredActions() {
		if h.executor.ExecuteAction(action, h.inputActions) {
			h.log.Debug("mouse action", zap.String("action", string(action)))
			processed = true
		}
	}
	return processed
}

func (h *InputHandler) handlePointer() bool {
	in := h.inputActions.Reader()
	if in == nil {
		return false
	}
	ev := h.mousebindingManager.Poll()
	processed := false

	if ev.Clicked {
		if idx, ok := h.inputActions.ProgressBarHit(ev.X, ev.Y); ok {
			h.inputActions.JumpTo(idx)
			processed = true
		} else {
			processed = in.Click(ev.X, ev.Y) || processed
		}
	}
	if ev.WheelY != 0 {
		processed = in.Wheel(ev.WheelY) || processed
	}
	if ev.DragX != 0 || ev.DragY != 0 {
		processed = in.Drag(ev.DragX, ev.DragY) || processed
	}
	return processed
}
