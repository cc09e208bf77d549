package terminal

import (
	"sync"

	"github.com/javanhut/TalonTerm/grid"
	"github.com/javanhut/TalonTerm/parser"
)

// CursorStyle is the rendered cursor shape requested via DECSCUSR.
type CursorStyle int

const (
	CursorStyleBlock CursorStyle = iota
	CursorStyleUnderline
	CursorStyleBar
)

type charset int

const (
	charsetASCII charset = iota
	charsetLineDrawing
)

// cursorState is the DECSC/DECRC save slot; it carries attributes along
// with the position. The SCOSC/SCORC slot (CSI s/u) saves position only.
type cursorState struct {
	row, col int
	attrs    grid.CellAttributes
}

type position struct {
	row, col int
}

type selection struct {
	active             bool
	startRow, startCol int
	endRow, endCol     int
}

// Terminal orchestrates the parser, the screen buffers, cursor state,
// rendition attributes, and mode flags for one session. It implements
// parser.Handler.
//
// The core is synchronous: Write fully applies its input before
// returning. One mutex guards the public API so a render goroutine can
// snapshot state between writes.
type Terminal struct {
	mu     sync.Mutex
	parser *parser.Parser

	main *grid.Buffer
	alt  *grid.Buffer // non-nil only while the alternate screen is active
	buf  *grid.Buffer // active buffer (main or alt)

	cols, rows int

	cursorRow, cursorCol int
	savedDEC             cursorState // ESC 7 / ESC 8
	savedSCO             position    // CSI s / CSI u
	savedMain            position    // cursor around mode-1049 swaps

	scrollTop    int // 0-based, inclusive
	scrollBottom int

	scrollbackLimit int

	attrs grid.CellAttributes

	originMode     bool
	autoWrap       bool
	cursorVisible  bool
	appCursorKeys  bool
	bracketedPaste bool
	mouseMode      int // 0, 1000, 1002 or 1003
	mouseSGR       bool

	charsetG0     charset
	charsetG1     charset
	activeCharset int // 0=G0, 1=G1

	cursorStyle CursorStyle

	title    string
	iconName string
	workDir  string

	// Last printed rune for REP (CSI b)
	lastPrinted rune
	lastAttrs   grid.CellAttributes

	sel selection

	// Title changes and bells observed mid-parse; delivered by Write
	// after the lock is dropped.
	pendingTitles []string
	pendingBells  int

	output        func([]byte)
	onUpdate      func()
	onTitleChange func(string)
	onBell        func()
	onExit        func(int)
	onResize      func(cols, rows int)
}

// New creates a terminal with the given initial dimensions.
func New(cols, rows int) *Terminal {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	t := &Terminal{
		main:            grid.NewBuffer(cols, rows),
		cols:            cols,
		rows:            rows,
		scrollBottom:    rows - 1,
		attrs:           grid.DefaultAttributes(),
		autoWrap:        true,
		cursorVisible:   true,
		lastPrinted:     ' ',
		lastAttrs:       grid.DefaultAttributes(),
		scrollbackLimit: grid.MaxScrollback,
	}
	t.buf = t.main
	t.parser = parser.New(t)
	return t
}

// Write feeds emulator output through the parser, mutating buffer and
// terminal state. Notifications collected during the parse fire after
// the lock is released, so callbacks may call back into the Terminal.
func (t *Terminal) Write(data []byte) {
	t.mu.Lock()
	t.parser.Parse(data)
	titles := t.pendingTitles
	t.pendingTitles = nil
	bells := t.pendingBells
	t.pendingBells = 0
	titleFn := t.onTitleChange
	bellFn := t.onBell
	update := t.onUpdate
	t.mu.Unlock()

	if titleFn != nil {
		for _, title := range titles {
			titleFn(title)
		}
	}
	if bellFn != nil {
		for i := 0; i < bells; i++ {
			bellFn()
		}
	}
	if update != nil {
		update()
	}
}

// SetMaxScrollback changes the scrollback cap for this terminal's
// buffers. Zero disables scrollback.
func (t *Terminal) SetMaxScrollback(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 0 {
		n = 0
	}
	t.scrollbackLimit = n
	t.main.SetMaxScrollback(n)
	if t.alt != nil {
		t.alt.SetMaxScrollback(n)
	}
}

// Resize changes the terminal dimensions in place, preserving overlapping
// content, and signals the new size to the external process.
func (t *Terminal) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	t.mu.Lock()
	wasFull := t.scrollTop == 0 && t.scrollBottom == t.rows-1
	t.main.Resize(cols, rows)
	if t.alt != nil {
		t.alt.Resize(cols, rows)
	}
	t.cols = cols
	t.rows = rows
	if wasFull {
		t.scrollTop = 0
		t.scrollBottom = rows - 1
	} else {
		if t.scrollBottom > rows-1 {
			t.scrollBottom = rows - 1
		}
		if t.scrollTop >= t.scrollBottom {
			t.scrollTop = 0
			t.scrollBottom = rows - 1
		}
	}
	t.clampCursor()
	hook := t.onResize
	t.mu.Unlock()
	if hook != nil {
		hook(cols, rows)
	}
}

// Reset performs a full RIS reset: clears the active buffer and restores
// cursor, attributes, scroll region and modes to power-on defaults.
// Scrollback and the alternate-buffer reference are left alone.
func (t *Terminal) Reset() {
	t.mu.Lock()
	t.reset()
	t.mu.Unlock()
}

func (t *Terminal) reset() {
	t.buf.EraseDisplay(2, 0, 0)
	t.cursorRow, t.cursorCol = 0, 0
	t.scrollTop = 0
	t.scrollBottom = t.rows - 1
	t.attrs = grid.DefaultAttributes()
	t.savedDEC = cursorState{attrs: grid.DefaultAttributes()}
	t.savedSCO = position{}
	t.originMode = false
	t.autoWrap = true
	t.cursorVisible = true
	t.appCursorKeys = false
	t.bracketedPaste = false
	t.mouseMode = 0
	t.mouseSGR = false
	t.charsetG0 = charsetASCII
	t.charsetG1 = charsetASCII
	t.activeCharset = 0
	t.cursorStyle = CursorStyleBlock
	t.sel = selection{}
}

func (t *Terminal) clampCursor() {
	if t.cursorCol < 0 {
		t.cursorCol = 0
	}
	if t.cursorCol > t.cols-1 {
		t.cursorCol = t.cols - 1
	}
	if t.cursorRow < 0 {
		t.cursorRow = 0
	}
	if t.cursorRow > t.rows-1 {
		t.cursorRow = t.rows - 1
	}
}

// Print implements parser.Handler: write one decoded rune at the cursor.
func (t *Terminal) Print(r rune) {
	r = t.mapCharset(r)
	w := grid.RuneWidth(r)
	if w == 0 {
		return
	}
	t.printRune(r, w)
	t.lastPrinted = r
	t.lastAttrs = t.attrs
}

func (t *Terminal) printRune(r rune, w int) {
	if t.cursorCol >= t.cols {
		if t.autoWrap {
			t.cursorCol = 0
			t.lineFeed()
		} else {
			t.cursorCol = t.cols - 1
		}
	}
	if w == 2 && t.cursorCol == t.cols-1 {
		if t.autoWrap {
			// Wide rune at the last column: pad and wrap.
			t.buf.SetCell(t.cursorRow, t.cursorCol, grid.Cell{Char: ' ', Attrs: t.attrs})
			t.cursorCol = 0
			t.lineFeed()
		} else {
			w = 1
		}
	}
	t.buf.SetCell(t.cursorRow, t.cursorCol, grid.Cell{Char: r, Attrs: t.attrs})
	if w == 2 {
		// Continuation placeholder for the second half.
		t.buf.SetCell(t.cursorRow, t.cursorCol+1, grid.Cell{Char: ' ', Attrs: t.attrs})
	}
	t.cursorCol += w
}

// lineFeed moves the cursor down one row, scrolling the region when the
// cursor sits on its bottom row.
func (t *Terminal) lineFeed() {
	if t.cursorRow == t.scrollBottom {
		t.buf.ScrollUp(t.scrollTop, t.scrollBottom, 1)
		return
	}
	if t.cursorRow < t.rows-1 {
		t.cursorRow++
	}
}

// reverseLineFeed moves the cursor up one row, reverse-scrolling when the
// cursor sits on the region's top row.
func (t *Terminal) reverseLineFeed() {
	if t.cursorRow == t.scrollTop {
		t.buf.ScrollDown(t.scrollTop, t.scrollBottom, 1)
		return
	}
	if t.cursorRow > 0 {
		t.cursorRow--
	}
}

// Execute implements parser.Handler for C0 control codes.
func (t *Terminal) Execute(code byte) {
	switch code {
	case 0x07: // BEL
		t.pendingBells++
	case 0x08: // BS
		if t.cursorCol > 0 {
			t.cursorCol--
		}
	case 0x09: // HT
		t.cursorCol = (t.cursorCol/8 + 1) * 8
		if t.cursorCol > t.cols-1 {
			t.cursorCol = t.cols - 1
		}
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		t.lineFeed()
	case 0x0D: // CR
		t.cursorCol = 0
	case 0x0E: // SO selects G1
		t.activeCharset = 1
	case 0x0F: // SI selects G0
		t.activeCharset = 0
	}
}

func (t *Terminal) mapCharset(r rune) rune {
	cs := t.charsetG0
	if t.activeCharset == 1 {
		cs = t.charsetG1
	}
	if cs == charsetLineDrawing {
		if mapped, ok := decLineDrawing[r]; ok {
			return mapped
		}
	}
	return r
}

// DEC Special Graphics mapping, selected via ESC ( 0 / ESC ) 0 plus SI/SO.
var decLineDrawing = map[rune]rune{
	'`': '◆',
	'a': '▒',
	'f': '°',
	'g': '±',
	'j': '┘',
	'k': '┐',
	'l': '┌',
	'm': '└',
	'n': '┼',
	'o': '⎺',
	'p': '⎻',
	'q': '─',
	'r': '⎼',
	's': '⎽',
	't': '├',
	'u': '┤',
	'v': '┴',
	'w': '┬',
	'x': '│',
	'y': '≤',
	'z': '≥',
	'{': 'π',
	'|': '≠',
	'}': '£',
	'~': '·',
}

func (t *Terminal) respond(data []byte) {
	if t.output != nil {
		t.output(data)
	}
}

// SetOutput installs the sink for bytes destined to the PTY (key input,
// pastes, and query responses).
func (t *Terminal) SetOutput(sink func([]byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.output = sink
}

// SetOnUpdate installs the refresh notification fired after each Write.
func (t *Terminal) SetOnUpdate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUpdate = fn
}

// SetOnTitleChange installs the OSC title notification.
func (t *Terminal) SetOnTitleChange(fn func(string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTitleChange = fn
}

// SetOnBell installs the BEL notification.
func (t *Terminal) SetOnBell(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onBell = fn
}

// SetOnExit installs the session-exit notification.
func (t *Terminal) SetOnExit(fn func(int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExit = fn
}

// SetResizeHook installs the side call made after Resize so the host can
// propagate the new size to the PTY.
func (t *Terminal) SetResizeHook(fn func(cols, rows int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResize = fn
}

// NotifyExit reports the external process exit to the session owner.
func (t *Terminal) NotifyExit(code int) {
	t.mu.Lock()
	fn := t.onExit
	t.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

// Buffer returns the active screen buffer (main or alternate).
func (t *Terminal) Buffer() *grid.Buffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf
}

// Text returns the active buffer as plain text.
func (t *Terminal) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Text()
}

// Cursor returns the cursor position (0-based row, col).
func (t *Terminal) Cursor() (row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row = t.cursorRow
	col = t.cursorCol
	if col > t.cols-1 {
		col = t.cols - 1
	}
	return row, col
}

// Size returns the terminal dimensions.
func (t *Terminal) Size() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

// Attributes returns the current rendition attributes.
func (t *Terminal) Attributes() grid.CellAttributes {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attrs
}

// CursorVisible reports DECTCEM state.
func (t *Terminal) CursorVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursorVisible
}

// Style returns the DECSCUSR cursor style.
func (t *Terminal) Style() CursorStyle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursorStyle
}

// Title returns the window title set via OSC 0/2.
func (t *Terminal) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// IconName returns the icon name set via OSC 0/1.
func (t *Terminal) IconName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.iconName
}

// WorkingDir returns the logical working directory from OSC 7.
func (t *Terminal) WorkingDir() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.workDir
}

// AppCursorKeys reports DECCKM state.
func (t *Terminal) AppCursorKeys() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appCursorKeys
}

// BracketedPaste reports mode-2004 state.
func (t *Terminal) BracketedPaste() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bracketedPaste
}

// MouseMode returns the mouse tracking mode (0, 1000, 1002 or 1003).
func (t *Terminal) MouseMode() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mouseMode
}

// AltScreenActive reports whether the alternate buffer is in use.
func (t *Terminal) AltScreenActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alt != nil
}
