package terminal

import (
	"fmt"
	"unicode/utf8"
)

// Modifiers describes the modifier keys held during TypeKey/TypeChar.
type Modifiers struct {
	Ctrl  bool
	Alt   bool
	Shift bool
}

// SendInput forwards raw bytes to the output sink (the PTY write side).
func (t *Terminal) SendInput(data []byte) {
	t.mu.Lock()
	sink := t.output
	t.mu.Unlock()
	if sink != nil {
		sink(data)
	}
}

// TypeChar encodes a typed printable character. Ctrl+letter maps into
// the C0 control range; Alt prefixes ESC.
func (t *Terminal) TypeChar(ch rune, mods Modifiers) {
	if mods.Ctrl {
		if code, ok := controlCode(ch); ok {
			t.SendInput([]byte{code})
			return
		}
	}
	var buf [utf8.UTFMax + 1]byte
	n := 0
	if mods.Alt {
		buf[0] = 0x1B
		n = 1
	}
	n += utf8.EncodeRune(buf[n:], ch)
	t.SendInput(buf[:n])
}

func controlCode(ch rune) (byte, bool) {
	switch {
	case ch >= 'a' && ch <= 'z':
		return byte(ch-'a') + 1, true
	case ch >= 'A' && ch <= 'Z':
		return byte(ch-'A') + 1, true
	case ch == '[':
		return 0x1B, true
	case ch == ' ', ch == '@':
		return 0x00, true
	}
	return 0, false
}

// cursorKeyFinals are the final bytes for keys whose prefix switches
// between CSI and SS3 under application cursor keys mode (DECCKM).
var cursorKeyFinals = map[string]string{
	"Up":    "A",
	"Down":  "B",
	"Right": "C",
	"Left":  "D",
	"Home":  "H",
	"End":   "F",
	"F1":    "P",
	"F2":    "Q",
	"F3":    "R",
	"F4":    "S",
}

// tildeKeys encode as CSI n ~ regardless of cursor key mode.
var tildeKeys = map[string]string{
	"Insert":   "2",
	"Delete":   "3",
	"PageUp":   "5",
	"PageDown": "6",
	"F5":       "15",
	"F6":       "17",
	"F7":       "18",
	"F8":       "19",
	"F9":       "20",
	"F10":      "21",
	"F11":      "23",
	"F12":      "24",
}

// TypeKey encodes a named key into its escape sequence and forwards it
// to the output sink. Unknown names are ignored.
func (t *Terminal) TypeKey(name string, mods Modifiers) {
	t.mu.Lock()
	app := t.appCursorKeys
	t.mu.Unlock()

	switch name {
	case "Enter":
		t.SendInput([]byte("\r"))
		return
	case "Backspace":
		if mods.Ctrl {
			t.SendInput([]byte{0x08})
		} else {
			t.SendInput([]byte{0x7F})
		}
		return
	case "Tab":
		if mods.Shift {
			t.SendInput([]byte("\x1b[Z"))
		} else {
			t.SendInput([]byte("\t"))
		}
		return
	case "Escape":
		t.SendInput([]byte{0x1B})
		return
	}

	if final, ok := cursorKeyFinals[name]; ok {
		prefix := "\x1b["
		if app {
			prefix = "\x1bO"
		}
		t.SendInput([]byte(prefix + final))
		return
	}
	if num, ok := tildeKeys[name]; ok {
		t.SendInput([]byte("\x1b[" + num + "~"))
		return
	}

	// Single-character names route through TypeChar.
	if r, size := utf8.DecodeRuneInString(name); size == len(name) && r != utf8.RuneError {
		t.TypeChar(r, mods)
	}
}

// Paste forwards pasted text, wrapped in the bracketed-paste sentinels
// when mode 2004 is active.
func (t *Terminal) Paste(text string) {
	t.mu.Lock()
	bracketed := t.bracketedPaste
	t.mu.Unlock()
	if bracketed {
		t.SendInput([]byte("\x1b[200~" + text + "\x1b[201~"))
		return
	}
	t.SendInput([]byte(text))
}

// EncodeMouseEvent returns the wire encoding for a mouse event at 1-based
// (x, y), or nil when mouse tracking is off or the protocol doesn't
// report the transition. button follows X10 numbering.
func (t *Terminal) EncodeMouseEvent(button, x, y int, pressed bool) []byte {
	t.mu.Lock()
	mode := t.mouseMode
	sgr := t.mouseSGR
	t.mu.Unlock()

	if mode == 0 {
		return nil
	}
	if sgr {
		suffix := 'M'
		if !pressed {
			suffix = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", button, x, y, suffix))
	}
	if !pressed {
		// X10 encoding reports every release as button 3.
		button = 3
	}
	return []byte{0x1B, '[', 'M', byte(button + 32), byte(x + 32), byte(y + 32)}
}
