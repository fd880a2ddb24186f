package main

import (
	"gallery-reader/internal/reader"
)

// Shell actions handled outside the reader session.
const (
	ActionQuit       reader.Action = "quit"
	ActionHelp       reader.Action = "help"
	ActionInfo       reader.Action = "info"
	ActionFullscreen reader.Action = "fullscreen"
	ActionPageInput  reader.Action = "page_input"
)

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         reader.Action
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all action definitions. Reader actions take
// their default keys from the reader keymap.
var actionDefinitions = []ActionDefinition{
	{ActionQuit, []string{"KeyQ"}, []string{}, "Quit application"},
	{ActionHelp, []string{"Shift+Slash"}, []string{"Alt+RightClick"}, "Show/hide help"},
	{ActionInfo, []string{"KeyI"}, []string{}, "Show/hide page info"},
	{ActionFullscreen, []string{"Enter"}, []string{}, "Toggle fullscreen"},
	{ActionPageInput, []string{"KeyG"}, []string{"Ctrl+LeftClick"}, "Go to page (enter page number)"},

	{reader.ActionEscape, nil, []string{"RightClick"}, "Back to grid / leave reader"},
	{reader.ActionNext, nil, []string{}, "Next page (or spread)"},
	{reader.ActionPrevious, nil, []string{}, "Previous page (or spread)"},
	{reader.ActionNextChapter, nil, []string{"Forward"}, "Next chapter"},
	{reader.ActionPrevChapter, nil, []string{"Back"}, "Previous chapter"},
	{reader.ActionToggleSpread, nil, []string{"MiddleClick"}, "Toggle two-page spread"},
	{reader.ActionToggleScroll, nil, []string{}, "Toggle scroll strip / grid"},
	{reader.ActionSingle, nil, []string{}, "Single page mode"},
	{reader.ActionToggleDirection, nil, []string{"Ctrl+MiddleClick"}, "Toggle reading direction (LTR ↔ RTL)"},
	{reader.ActionJumpFirst, nil, []string{}, "Jump to first page"},
	{reader.ActionJumpLast, nil, []string{}, "Jump to last page"},
	{reader.ActionScrollUp, nil, []string{}, "Scroll up / pan up"},
	{reader.ActionScrollDown, nil, []string{}, "Scroll down / pan down"},
	{reader.ActionPageUp, nil, []string{}, "Scroll one screen up"},
	{reader.ActionPageDown, nil, []string{}, "Scroll one screen down"},
	{reader.ActionPanLeft, nil, []string{}, "Pan left"},
	{reader.ActionPanRight, nil, []string{}, "Pan right"},
	{reader.ActionZoomIn, nil, []string{"Ctrl+WheelUp"}, "Zoom in"},
	{reader.ActionZoomOut, nil, []string{"Ctrl+WheelDown"}, "Zoom out"},
	{reader.ActionZoomReset, nil, []string{"Shift+MiddleClick"}, "Reset to 100% zoom"},
	{reader.ActionZoomFit, nil, []string{"Alt+LeftClick"}, "Fit to window"},
	{reader.ActionSetCover, nil, []string{}, "Use current page as book cover"},
}

// ShellActions is what the executor needs from the application.
type ShellActions interface {
	Exit()
	ToggleHelp()
	ToggleInfo()
	ToggleFullscreen()
	EnterPageInputMode()
	// Reader returns the input controller of the open session, or nil.
	Reader() *reader.InputController
}

// ActionExecutor provides centralized action execution logic shared by
// the keyboard and mouse binding managers.
type ActionExecutor struct{}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction runs shell actions directly and hands everything else to
// the reader session. It reports whether the action was handled.
func (ae *ActionExecutor) ExecuteAction(action reader.Action, shell ShellActions) bool {
	switch action {
	case ActionQuit:
		shell.Exit()
	case ActionHelp:
		shell.ToggleHelp()
	case ActionInfo:
		shell.ToggleInfo()
	case ActionFullscreen:
		shell.ToggleFullscreen()
	case ActionPageInput:
		shell.EnterPageInputMode()
	default:
		in := shell.Reader()
		if in == nil {
			return false
		}
		return in.Dispatch(action)
	}
	return true
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[string(action.Name)] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	readerKeys := reader.DefaultKeybindings()
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keys := action.Keys
		if keys == nil {
			keys = readerKeys[action.Name]
		}
		keybindings[string(action.Name)] = append([]string(nil), keys...)
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		if len(action.MouseActions) > 0 {
			mousebindings[string(action.Name)] = append([]string(nil), action.MouseActions...)
		}
	}
	return mousebindings
}
