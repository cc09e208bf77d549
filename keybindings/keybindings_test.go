package keybindings

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestTranslateKey(t *testing.T) {
	ctrlShift := glfw.ModControl | glfw.ModShift
	tests := []struct {
		name string
		key  glfw.Key
		mods glfw.ModifierKey
		want KeyResult
	}{
		{"exit chord", glfw.KeyQ, ctrlShift, KeyResult{Action: ActionExit}},
		{"copy chord", glfw.KeyC, ctrlShift, KeyResult{Action: ActionCopy}},
		{"paste chord", glfw.KeyV, ctrlShift, KeyResult{Action: ActionPaste}},
		{"scroll up", glfw.KeyPageUp, glfw.ModShift, KeyResult{Action: ActionScrollUp}},
		{"scroll down", glfw.KeyPageDown, glfw.ModShift, KeyResult{Action: ActionScrollDown}},
		{"plain page up forwards", glfw.KeyPageUp, 0, KeyResult{Action: ActionKey, Key: "PageUp"}},
		{"enter", glfw.KeyEnter, 0, KeyResult{Action: ActionKey, Key: "Enter"}},
		{"keypad enter", glfw.KeyKPEnter, 0, KeyResult{Action: ActionKey, Key: "Enter"}},
		{"arrow", glfw.KeyUp, 0, KeyResult{Action: ActionKey, Key: "Up"}},
		{"function key", glfw.KeyF5, 0, KeyResult{Action: ActionKey, Key: "F5"}},
		{"plain letter ignored", glfw.KeyA, 0, KeyResult{Action: ActionNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateKey(tt.key, tt.mods)
			if got.Action != tt.want.Action || got.Key != tt.want.Key {
				t.Errorf("TranslateKey(%v, %v) = %+v, want %+v", tt.key, tt.mods, got, tt.want)
			}
		})
	}
}

func TestTranslateCtrlLetter(t *testing.T) {
	got := TranslateKey(glfw.KeyC, glfw.ModControl)
	if got.Action != ActionKey || got.Key != "c" || !got.Mods.Ctrl {
		t.Errorf("Ctrl+C = %+v, want key %q with ctrl set", got, "c")
	}
}
