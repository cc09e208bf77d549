package terminal

import "strings"

// StartSelection anchors a selection at (row, col).
func (t *Terminal) StartSelection(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sel = selection{
		active:   true,
		startRow: row,
		startCol: col,
		endRow:   row,
		endCol:   col,
	}
}

// UpdateSelection moves the selection's far end. The stored anchors may
// run in either direction; normalization happens only at extraction.
func (t *Terminal) UpdateSelection(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.sel.active {
		return
	}
	t.sel.endRow = row
	t.sel.endCol = col
}

// HasSelection reports whether a selection is in progress.
func (t *Terminal) HasSelection() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sel.active
}

// ClearSelection deactivates the selection without extracting.
func (t *Terminal) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sel = selection{}
}

// EndSelection normalizes the anchors, extracts the selected text, and
// deactivates the selection. Trailing whitespace is trimmed per line;
// lines join with newlines.
func (t *Terminal) EndSelection() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.sel.active {
		return ""
	}
	startRow, startCol := t.sel.startRow, t.sel.startCol
	endRow, endCol := t.sel.endRow, t.sel.endCol
	t.sel = selection{}

	if endRow < startRow || (endRow == startRow && endCol < startCol) {
		startRow, endRow = endRow, startRow
		startCol, endCol = endCol, startCol
	}
	startRow = clamp(startRow, 0, t.rows-1)
	endRow = clamp(endRow, 0, t.rows-1)

	var lines []string
	for row := startRow; row <= endRow; row++ {
		colStart, colEnd := 0, t.cols-1
		if row == startRow {
			colStart = clamp(startCol, 0, t.cols-1)
		}
		if row == endRow {
			colEnd = clamp(endCol, 0, t.cols-1)
		}
		if colEnd < colStart {
			lines = append(lines, "")
			continue
		}
		var sb strings.Builder
		sb.Grow(colEnd - colStart + 1)
		for col := colStart; col <= colEnd; col++ {
			ch := t.buf.Cell(row, col).Char
			if ch == 0 {
				ch = ' '
			}
			sb.WriteRune(ch)
		}
		lines = append(lines, strings.TrimRight(sb.String(), " \t"))
	}
	return strings.Join(lines, "\n")
}
