package grid

import "strings"

// MaxScrollback is the default cap on rows retained after scrolling off
// the top of the buffer.
const MaxScrollback = 1000

// CellAttributes holds the rendition state applied to a cell. Fg and Bg
// are 256-color palette indices, or -1 for the default color.
type CellAttributes struct {
	Fg            int
	Bg            int
	Bold          bool
	Dim           bool
	Italic        bool
	Underline     bool
	Blink         bool
	Inverse       bool
	Hidden        bool
	Strikethrough bool
}

// DefaultAttributes returns the power-on rendition state.
func DefaultAttributes() CellAttributes {
	return CellAttributes{Fg: -1, Bg: -1}
}

// Cell is a single character cell. Cells are value types; attributes are
// copied in at write time and never aliased.
type Cell struct {
	Char  rune
	Attrs CellAttributes
}

// BlankCell returns an empty cell with default attributes.
func BlankCell() Cell {
	return Cell{Char: ' ', Attrs: DefaultAttributes()}
}

// Buffer is the terminal's cell grid plus its scrollback history.
// All coordinates are 0-based. The Buffer performs no locking; the
// owning Terminal serializes access.
type Buffer struct {
	cells         []Cell
	cols          int
	rows          int
	scrollback    [][]Cell
	maxScrollback int
}

// NewBuffer creates a cols x rows buffer of blank cells with the default
// scrollback cap.
func NewBuffer(cols, rows int) *Buffer {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	b := &Buffer{cols: cols, rows: rows, maxScrollback: MaxScrollback}
	b.cells = make([]Cell, cols*rows)
	for i := range b.cells {
		b.cells[i] = BlankCell()
	}
	return b
}

// SetMaxScrollback changes the scrollback cap, trimming the oldest rows
// when the history already exceeds it. Zero disables scrollback.
func (b *Buffer) SetMaxScrollback(n int) {
	if n < 0 {
		n = 0
	}
	b.maxScrollback = n
	b.trimScrollback()
}

// Cols returns the buffer width.
func (b *Buffer) Cols() int { return b.cols }

// Rows returns the buffer height.
func (b *Buffer) Rows() int { return b.rows }

func (b *Buffer) index(row, col int) int {
	return row*b.cols + col
}

func (b *Buffer) inBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

// Cell returns the cell at (row, col), or a blank cell when the position
// is out of bounds.
func (b *Buffer) Cell(row, col int) Cell {
	if !b.inBounds(row, col) {
		return BlankCell()
	}
	return b.cells[b.index(row, col)]
}

// SetCell writes a cell at (row, col). Out-of-bounds writes are no-ops.
func (b *Buffer) SetCell(row, col int, cell Cell) {
	if !b.inBounds(row, col) {
		return
	}
	b.cells[b.index(row, col)] = cell
}

func (b *Buffer) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= b.rows {
		return b.rows - 1
	}
	return row
}

func (b *Buffer) copyRow(dst, src int) {
	copy(b.cells[b.index(dst, 0):b.index(dst, 0)+b.cols],
		b.cells[b.index(src, 0):b.index(src, 0)+b.cols])
}

// ScrollUp shifts rows within [top, bottom] up by count. Rows scrolled
// off the top of the full buffer (top == 0) are retained in scrollback.
func (b *Buffer) ScrollUp(top, bottom, count int) {
	top = b.clampRow(top)
	bottom = b.clampRow(bottom)
	if top > bottom || count < 1 {
		return
	}
	for i := 0; i < count; i++ {
		if top == 0 {
			saved := make([]Cell, b.cols)
			copy(saved, b.cells[:b.cols])
			b.pushScrollback(saved)
		}
		for row := top; row < bottom; row++ {
			b.copyRow(row, row+1)
		}
		b.blankRow(bottom)
	}
}

// ScrollDown shifts rows within [top, bottom] down by count. Newly
// exposed rows at the top are blank; nothing enters scrollback.
func (b *Buffer) ScrollDown(top, bottom, count int) {
	top = b.clampRow(top)
	bottom = b.clampRow(bottom)
	if top > bottom || count < 1 {
		return
	}
	for i := 0; i < count; i++ {
		for row := bottom; row > top; row-- {
			b.copyRow(row, row-1)
		}
		b.blankRow(top)
	}
}

func (b *Buffer) pushScrollback(row []Cell) {
	b.scrollback = append(b.scrollback, row)
	b.trimScrollback()
}

func (b *Buffer) trimScrollback() {
	if len(b.scrollback) > b.maxScrollback {
		b.scrollback = b.scrollback[len(b.scrollback)-b.maxScrollback:]
	}
}

func (b *Buffer) blankRow(row int) {
	for col := 0; col < b.cols; col++ {
		b.cells[b.index(row, col)] = BlankCell()
	}
}

func (b *Buffer) blankSpan(row, colStart, colEnd int) {
	for col := colStart; col <= colEnd; col++ {
		if b.inBounds(row, col) {
			b.cells[b.index(row, col)] = BlankCell()
		}
	}
}

// EraseLine erases part of a row: mode 0 clears [col, cols), mode 1
// clears [0, col] inclusive, mode 2 clears the whole row.
func (b *Buffer) EraseLine(row, mode, col int) {
	if row < 0 || row >= b.rows {
		return
	}
	switch mode {
	case 0:
		b.blankSpan(row, col, b.cols-1)
	case 1:
		b.blankSpan(row, 0, col)
	case 2:
		b.blankRow(row)
	}
}

// EraseDisplay erases part of the screen relative to (row, col): mode 0
// clears to the end of the screen, mode 1 from the start of the screen
// through (row, col), mode 2 the whole screen, mode 3 the whole screen
// plus scrollback.
func (b *Buffer) EraseDisplay(mode, row, col int) {
	row = b.clampRow(row)
	switch mode {
	case 0:
		b.blankSpan(row, col, b.cols-1)
		for r := row + 1; r < b.rows; r++ {
			b.blankRow(r)
		}
	case 1:
		for r := 0; r < row; r++ {
			b.blankRow(r)
		}
		b.blankSpan(row, 0, col)
	case 2:
		for r := 0; r < b.rows; r++ {
			b.blankRow(r)
		}
	case 3:
		for r := 0; r < b.rows; r++ {
			b.blankRow(r)
		}
		b.scrollback = nil
	}
}

// InsertLines opens count blank rows at row, pushing rows between row and
// scrollBottom down. Rows pushed past scrollBottom are discarded.
func (b *Buffer) InsertLines(row, count, scrollBottom int) {
	row = b.clampRow(row)
	scrollBottom = b.clampRow(scrollBottom)
	if row > scrollBottom || count < 1 {
		return
	}
	if count > scrollBottom-row+1 {
		count = scrollBottom - row + 1
	}
	b.ScrollDown(row, scrollBottom, count)
}

// DeleteLines removes count rows at row, pulling rows up from below.
// Exposed rows at scrollBottom are blank; nothing enters scrollback.
func (b *Buffer) DeleteLines(row, count, scrollBottom int) {
	row = b.clampRow(row)
	scrollBottom = b.clampRow(scrollBottom)
	if row > scrollBottom || count < 1 {
		return
	}
	if count > scrollBottom-row+1 {
		count = scrollBottom - row + 1
	}
	for i := 0; i < count; i++ {
		for r := row; r < scrollBottom; r++ {
			b.copyRow(r, r+1)
		}
		b.blankRow(scrollBottom)
	}
}

// InsertChars opens count blank cells at (row, col), shifting the rest of
// the row right. Cells shifted past the row end are discarded.
func (b *Buffer) InsertChars(row, col, count int) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || count < 1 {
		return
	}
	if count > b.cols-col {
		count = b.cols - col
	}
	for c := b.cols - 1; c >= col+count; c-- {
		b.cells[b.index(row, c)] = b.cells[b.index(row, c-count)]
	}
	b.blankSpan(row, col, col+count-1)
}

// DeleteChars removes count cells at (row, col), shifting the rest of the
// row left. Exposed cells at the row end are blank.
func (b *Buffer) DeleteChars(row, col, count int) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols || count < 1 {
		return
	}
	if count > b.cols-col {
		count = b.cols - col
	}
	for c := col; c < b.cols-count; c++ {
		b.cells[b.index(row, c)] = b.cells[b.index(row, c+count)]
	}
	b.blankSpan(row, b.cols-count, b.cols-1)
}

// Resize changes the buffer dimensions, preserving content where the old
// and new grids overlap. Non-positive dimensions are clamped to 1.
func (b *Buffer) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == b.cols && rows == b.rows {
		return
	}
	newCells := make([]Cell, cols*rows)
	for i := range newCells {
		newCells[i] = BlankCell()
	}
	for row := 0; row < min(rows, b.rows); row++ {
		for col := 0; col < min(cols, b.cols); col++ {
			newCells[row*cols+col] = b.cells[row*b.cols+col]
		}
	}
	b.cells = newCells
	b.cols = cols
	b.rows = rows
}

// ScrollbackLen returns the number of retained scrollback rows.
func (b *Buffer) ScrollbackLen() int {
	return len(b.scrollback)
}

// ScrollbackRow returns a retained row, oldest first, or nil when the
// index is out of range.
func (b *Buffer) ScrollbackRow(i int) []Cell {
	if i < 0 || i >= len(b.scrollback) {
		return nil
	}
	return b.scrollback[i]
}

// RowText returns one row as plain text with trailing whitespace trimmed.
func (b *Buffer) RowText(row int) string {
	if row < 0 || row >= b.rows {
		return ""
	}
	var sb strings.Builder
	sb.Grow(b.cols)
	for col := 0; col < b.cols; col++ {
		ch := b.cells[b.index(row, col)].Char
		if ch == 0 {
			ch = ' '
		}
		sb.WriteRune(ch)
	}
	return strings.TrimRight(sb.String(), " ")
}

// Text returns the visible grid as plain text, one line per row, with
// trailing blank lines trimmed.
func (b *Buffer) Text() string {
	lines := make([]string, b.rows)
	for row := 0; row < b.rows; row++ {
		lines[row] = b.RowText(row)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
