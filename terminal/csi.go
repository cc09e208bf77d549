package terminal

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/javanhut/TalonTerm/grid"
	"github.com/javanhut/TalonTerm/palette"
)

// param returns parameter i treating both absent and zero values as the
// default (the usual "count, minimum 1" rule).
func param(params []int, i, def int) int {
	if i < len(params) && params[i] > 0 {
		return params[i]
	}
	return def
}

// rawParam returns parameter i, defaulting only when absent. Used where
// zero is a meaningful value (erase modes, mode numbers).
func rawParam(params []int, i, def int) int {
	if i < len(params) {
		return params[i]
	}
	return def
}

// CsiDispatch implements parser.Handler for complete CSI sequences.
func (t *Terminal) CsiDispatch(params []int, intermediates string, final byte, private byte) {
	switch final {
	case 'A': // CUU
		t.moveCursorRow(-param(params, 0, 1))
	case 'B': // CUD
		t.moveCursorRow(param(params, 0, 1))
	case 'C': // CUF
		t.moveCursorCol(param(params, 0, 1))
	case 'D': // CUB
		t.moveCursorCol(-param(params, 0, 1))
	case 'E': // CNL
		t.cursorCol = 0
		t.moveCursorRow(param(params, 0, 1))
	case 'F': // CPL
		t.cursorCol = 0
		t.moveCursorRow(-param(params, 0, 1))
	case 'G', '`': // CHA / HPA
		t.cursorCol = clamp(param(params, 0, 1)-1, 0, t.cols-1)
	case 'H', 'f': // CUP / HVP
		t.setCursor(param(params, 0, 1)-1, param(params, 1, 1)-1)
	case 'd': // VPA
		t.setCursor(param(params, 0, 1)-1, t.cursorCol)
	case 'J': // ED
		t.buf.EraseDisplay(rawParam(params, 0, 0), t.cursorRow, t.clampedCol())
	case 'K': // EL
		t.buf.EraseLine(t.cursorRow, rawParam(params, 0, 0), t.clampedCol())
	case 'L': // IL
		if t.cursorRow >= t.scrollTop && t.cursorRow <= t.scrollBottom {
			t.buf.InsertLines(t.cursorRow, param(params, 0, 1), t.scrollBottom)
		}
	case 'M': // DL
		if t.cursorRow >= t.scrollTop && t.cursorRow <= t.scrollBottom {
			t.buf.DeleteLines(t.cursorRow, param(params, 0, 1), t.scrollBottom)
		}
	case '@': // ICH
		t.buf.InsertChars(t.cursorRow, t.clampedCol(), param(params, 0, 1))
	case 'P': // DCH
		t.buf.DeleteChars(t.cursorRow, t.clampedCol(), param(params, 0, 1))
	case 'S': // SU
		t.buf.ScrollUp(t.scrollTop, t.scrollBottom, param(params, 0, 1))
	case 'T': // SD
		t.buf.ScrollDown(t.scrollTop, t.scrollBottom, param(params, 0, 1))
	case 'X': // ECH
		n := param(params, 0, 1)
		start := t.clampedCol()
		for col := start; col < start+n && col < t.cols; col++ {
			t.buf.SetCell(t.cursorRow, col, grid.BlankCell())
		}
	case 'b': // REP
		n := param(params, 0, 1)
		w := grid.RuneWidth(t.lastPrinted)
		if w == 0 {
			break
		}
		attrs := t.attrs
		t.attrs = t.lastAttrs
		for i := 0; i < n; i++ {
			t.printRune(t.lastPrinted, w)
		}
		t.attrs = attrs
	case 'm': // SGR
		t.dispatchSGR(params)
	case 'h':
		t.setModes(params, private, true)
	case 'l':
		t.setModes(params, private, false)
	case 'r': // DECSTBM
		t.setScrollRegion(param(params, 0, 1)-1, param(params, 1, t.rows)-1)
	case 's': // SCOSC
		t.savedSCO = position{row: t.cursorRow, col: t.clampedCol()}
	case 'u': // SCORC
		t.cursorRow = clamp(t.savedSCO.row, 0, t.rows-1)
		t.cursorCol = clamp(t.savedSCO.col, 0, t.cols-1)
	case 'n': // DSR
		t.deviceStatusReport(rawParam(params, 0, 0))
	case 'c': // DA
		t.deviceAttributes(private)
	case 'q': // DECSCUSR
		t.setCursorStyle(rawParam(params, 0, 0))
	case 't': // window manipulation: not supported
	}
}

func (t *Terminal) clampedCol() int {
	return clamp(t.cursorCol, 0, t.cols-1)
}

// moveCursorRow moves the cursor vertically, clamped to the scroll
// region.
func (t *Terminal) moveCursorRow(delta int) {
	t.cursorRow = clamp(t.cursorRow+delta, t.scrollTop, t.scrollBottom)
}

// moveCursorCol moves the cursor horizontally, clamped to the line.
func (t *Terminal) moveCursorCol(delta int) {
	t.cursorCol = clamp(t.clampedCol()+delta, 0, t.cols-1)
}

// setCursor places the cursor at an absolute 0-based position. In origin
// mode the row is relative to the scroll region top and confined to it.
func (t *Terminal) setCursor(row, col int) {
	if t.originMode {
		row = clamp(t.scrollTop+row, t.scrollTop, t.scrollBottom)
	} else {
		row = clamp(row, 0, t.rows-1)
	}
	t.cursorRow = row
	t.cursorCol = clamp(col, 0, t.cols-1)
}

func (t *Terminal) setScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom > t.rows-1 {
		bottom = t.rows - 1
	}
	if top < bottom {
		t.scrollTop = top
		t.scrollBottom = bottom
	}
	// DECSTBM homes the cursor (origin-aware).
	t.setCursor(0, 0)
}

func (t *Terminal) setCursorStyle(p int) {
	switch p {
	case 0, 1, 2:
		t.cursorStyle = CursorStyleBlock
	case 3, 4:
		t.cursorStyle = CursorStyleUnderline
	case 5, 6:
		t.cursorStyle = CursorStyleBar
	}
}

// dispatchSGR applies Select Graphic Rendition parameters left to right.
func (t *Terminal) dispatchSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			t.attrs = grid.DefaultAttributes()
		case p == 1:
			t.attrs.Bold = true
		case p == 2:
			t.attrs.Dim = true
		case p == 3:
			t.attrs.Italic = true
		case p == 4:
			t.attrs.Underline = true
		case p == 5, p == 6:
			t.attrs.Blink = true
		case p == 7:
			t.attrs.Inverse = true
		case p == 8:
			t.attrs.Hidden = true
		case p == 9:
			t.attrs.Strikethrough = true
		case p == 21: // double underline, rendered as underline
			t.attrs.Underline = true
		case p == 22:
			t.attrs.Bold = false
			t.attrs.Dim = false
		case p == 23:
			t.attrs.Italic = false
		case p == 24:
			t.attrs.Underline = false
		case p == 25:
			t.attrs.Blink = false
		case p == 27:
			t.attrs.Inverse = false
		case p == 28:
			t.attrs.Hidden = false
		case p == 29:
			t.attrs.Strikethrough = false
		case p >= 30 && p <= 37:
			t.attrs.Fg = p - 30
		case p == 38:
			if color, skip := extendedColor(params[i+1:]); skip > 0 {
				t.attrs.Fg = color
				i += skip
			}
		case p == 39:
			t.attrs.Fg = -1
		case p >= 40 && p <= 47:
			t.attrs.Bg = p - 40
		case p == 48:
			if color, skip := extendedColor(params[i+1:]); skip > 0 {
				t.attrs.Bg = color
				i += skip
			}
		case p == 49:
			t.attrs.Bg = -1
		case p >= 90 && p <= 97:
			t.attrs.Fg = p - 90 + 8
		case p >= 100 && p <= 107:
			t.attrs.Bg = p - 100 + 8
		}
	}
}

// extendedColor decodes the tail of a 38/48 sequence: ;5;n selects a
// palette index directly, ;2;r;g;b downsamples truecolor to the nearest
// palette entry. Returns the index and how many parameters it consumed.
func extendedColor(tail []int) (color, skip int) {
	if len(tail) >= 2 && tail[0] == 5 {
		return clamp(tail[1], 0, 255), 2
	}
	if len(tail) >= 4 && tail[0] == 2 {
		return palette.RGBTo256(uint8(clamp(tail[1], 0, 255)), uint8(clamp(tail[2], 0, 255)), uint8(clamp(tail[3], 0, 255))), 4
	}
	return 0, 0
}

// setModes applies SM/RM. Only DEC private modes (? marker) are handled.
func (t *Terminal) setModes(params []int, private byte, set bool) {
	if private != '?' {
		return
	}
	for _, p := range params {
		switch p {
		case 1: // DECCKM
			t.appCursorKeys = set
		case 6: // DECOM
			t.originMode = set
			t.setCursor(0, 0)
		case 7: // DECAWM
			t.autoWrap = set
		case 25: // DECTCEM
			t.cursorVisible = set
		case 47, 1047:
			if set {
				t.enterAltScreen()
			} else {
				t.exitAltScreen()
			}
		case 1048:
			if set {
				t.saveCursorDEC()
			} else {
				t.restoreCursorDEC()
			}
		case 1049:
			if set {
				t.savedMain = position{row: t.cursorRow, col: t.clampedCol()}
				t.enterAltScreen()
			} else {
				t.exitAltScreen()
				t.cursorRow = clamp(t.savedMain.row, 0, t.rows-1)
				t.cursorCol = clamp(t.savedMain.col, 0, t.cols-1)
			}
		case 1000, 1002, 1003:
			if set {
				t.mouseMode = p
			} else if t.mouseMode == p {
				t.mouseMode = 0
			}
		case 1006:
			t.mouseSGR = set
		case 2004:
			t.bracketedPaste = set
		}
	}
}

func (t *Terminal) enterAltScreen() {
	if t.alt != nil {
		return
	}
	t.alt = grid.NewBuffer(t.cols, t.rows)
	t.alt.SetMaxScrollback(t.scrollbackLimit)
	t.buf = t.alt
	t.cursorRow, t.cursorCol = 0, 0
}

func (t *Terminal) exitAltScreen() {
	if t.alt == nil {
		return
	}
	t.alt = nil
	t.buf = t.main
}

func (t *Terminal) saveCursorDEC() {
	t.savedDEC = cursorState{row: t.cursorRow, col: t.clampedCol(), attrs: t.attrs}
}

func (t *Terminal) restoreCursorDEC() {
	t.cursorRow = clamp(t.savedDEC.row, 0, t.rows-1)
	t.cursorCol = clamp(t.savedDEC.col, 0, t.cols-1)
	t.attrs = t.savedDEC.attrs
}

// EscDispatch implements parser.Handler for single-character escapes and
// charset designations.
func (t *Terminal) EscDispatch(intermediates string, final byte) {
	switch intermediates {
	case "(":
		t.charsetG0 = designateCharset(final)
		return
	case ")":
		t.charsetG1 = designateCharset(final)
		return
	case "*", "+":
		// G2/G3 designations accepted, not tracked.
		return
	}
	switch final {
	case '7': // DECSC
		t.saveCursorDEC()
	case '8': // DECRC
		t.restoreCursorDEC()
	case 'D': // IND
		t.lineFeed()
	case 'E': // NEL
		t.cursorCol = 0
		t.lineFeed()
	case 'M': // RI
		t.reverseLineFeed()
	case 'c': // RIS
		t.reset()
	case '=', '>': // keypad modes: accepted, not tracked
	}
}

func designateCharset(final byte) charset {
	if final == '0' {
		return charsetLineDrawing
	}
	return charsetASCII
}

// OscDispatch implements parser.Handler for OSC strings.
func (t *Terminal) OscDispatch(parts []string) {
	if len(parts) == 0 {
		return
	}
	value := strings.Join(parts[1:], ";")
	switch parts[0] {
	case "0":
		t.iconName = value
		t.title = value
		t.pendingTitles = append(t.pendingTitles, value)
	case "1":
		t.iconName = value
	case "2":
		t.title = value
		t.pendingTitles = append(t.pendingTitles, value)
	case "7":
		if path := parseOSC7Path(value); path != "" {
			t.workDir = path
		}
	}
}

func parseOSC7Path(value string) string {
	if strings.HasPrefix(value, "file://") {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Path == "" {
			return ""
		}
		path, err := url.PathUnescape(parsed.Path)
		if err != nil {
			return ""
		}
		return path
	}
	if strings.HasPrefix(value, "/") {
		return value
	}
	return ""
}

// DcsDispatch implements parser.Handler; only XTGETTCAP probes get a
// response.
func (t *Terminal) DcsDispatch(data string) {
	if !strings.HasPrefix(data, "+q") {
		return
	}
	// "RGB" hex-encoded: report truecolor capability.
	if strings.TrimPrefix(data, "+q") == "524742" {
		t.respond([]byte("\x1bP1+r524742\x1b\\"))
		return
	}
	t.respond([]byte("\x1bP0+r\x1b\\"))
}

func (t *Terminal) deviceStatusReport(code int) {
	switch code {
	case 5: // operating status
		t.respond([]byte("\x1b[0n"))
	case 6: // cursor position, relative to the region in origin mode
		row := t.cursorRow
		if t.originMode {
			row -= t.scrollTop
			if row < 0 {
				row = 0
			}
		}
		t.respond([]byte(fmt.Sprintf("\x1b[%d;%dR", row+1, t.clampedCol()+1)))
	}
}

func (t *Terminal) deviceAttributes(private byte) {
	if private == '>' {
		// Secondary DA: VT100-class, version 136.
		t.respond([]byte("\x1b[>0;136;0c"))
		return
	}
	// Primary DA: VT220 with ANSI color.
	t.respond([]byte("\x1b[?62;22c"))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
