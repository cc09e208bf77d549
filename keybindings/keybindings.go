package keybindings

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/javanhut/TalonTerm/terminal"
)

// KeyAction is what the host should do with a key event.
type KeyAction int

const (
	ActionNone KeyAction = iota
	// ActionKey forwards the named key to terminal.TypeKey.
	ActionKey
	ActionExit
	ActionScrollUp
	ActionScrollDown
	ActionCopy
	ActionPaste
)

// KeyResult is the translation of one GLFW key event.
type KeyResult struct {
	Action KeyAction
	Key    string
	Mods   terminal.Modifiers
}

// namedKeys maps GLFW keys to the terminal's named-key vocabulary.
var namedKeys = map[glfw.Key]string{
	glfw.KeyEnter:     "Enter",
	glfw.KeyKPEnter:   "Enter",
	glfw.KeyBackspace: "Backspace",
	glfw.KeyTab:       "Tab",
	glfw.KeyEscape:    "Escape",
	glfw.KeyUp:        "Up",
	glfw.KeyDown:      "Down",
	glfw.KeyRight:     "Right",
	glfw.KeyLeft:      "Left",
	glfw.KeyHome:      "Home",
	glfw.KeyEnd:       "End",
	glfw.KeyPageUp:    "PageUp",
	glfw.KeyPageDown:  "PageDown",
	glfw.KeyInsert:    "Insert",
	glfw.KeyDelete:    "Delete",
	glfw.KeyF1:        "F1",
	glfw.KeyF2:        "F2",
	glfw.KeyF3:        "F3",
	glfw.KeyF4:        "F4",
	glfw.KeyF5:        "F5",
	glfw.KeyF6:        "F6",
	glfw.KeyF7:        "F7",
	glfw.KeyF8:        "F8",
	glfw.KeyF9:        "F9",
	glfw.KeyF10:       "F10",
	glfw.KeyF11:       "F11",
	glfw.KeyF12:       "F12",
}

// TranslateKey turns a GLFW key event into a host action or a named key
// for the terminal core.
func TranslateKey(key glfw.Key, mods glfw.ModifierKey) KeyResult {
	ctrl := mods&glfw.ModControl != 0
	shift := mods&glfw.ModShift != 0
	alt := mods&glfw.ModAlt != 0
	m := terminal.Modifiers{Ctrl: ctrl, Alt: alt, Shift: shift}

	// Host-reserved chords first.
	switch {
	case ctrl && shift && key == glfw.KeyQ:
		return KeyResult{Action: ActionExit}
	case ctrl && shift && key == glfw.KeyC:
		return KeyResult{Action: ActionCopy}
	case ctrl && shift && key == glfw.KeyV:
		return KeyResult{Action: ActionPaste}
	case shift && key == glfw.KeyPageUp:
		return KeyResult{Action: ActionScrollUp}
	case shift && key == glfw.KeyPageDown:
		return KeyResult{Action: ActionScrollDown}
	}

	if name, ok := namedKeys[key]; ok {
		return KeyResult{Action: ActionKey, Key: name, Mods: m}
	}

	// Ctrl+letter bypasses the char callback, so translate it here.
	if ctrl && key >= glfw.KeyA && key <= glfw.KeyZ {
		name := string(rune('a' + (key - glfw.KeyA)))
		return KeyResult{Action: ActionKey, Key: name, Mods: m}
	}

	return KeyResult{Action: ActionNone}
}
