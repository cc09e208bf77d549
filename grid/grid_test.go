package grid

import "testing"

// fill writes s starting at (row, col) with default attributes.
func fill(b *Buffer, row, col int, s string) {
	for i, r := range s {
		b.SetCell(row, col+i, Cell{Char: r, Attrs: DefaultAttributes()})
	}
}

func TestCellBounds(t *testing.T) {
	b := NewBuffer(10, 5)
	blank := BlankCell()
	for _, pos := range [][2]int{{-1, 0}, {0, -1}, {5, 0}, {0, 10}, {100, 100}} {
		if got := b.Cell(pos[0], pos[1]); got != blank {
			t.Errorf("Cell(%d,%d) = %v, want blank", pos[0], pos[1], got)
		}
	}
	// Out-of-bounds writes must not panic or land anywhere.
	b.SetCell(-1, 0, Cell{Char: 'x'})
	b.SetCell(5, 10, Cell{Char: 'x'})
	if b.Text() != "" {
		t.Errorf("buffer not empty after OOB writes: %q", b.Text())
	}
}

func TestScrollUpIntoScrollback(t *testing.T) {
	b := NewBuffer(10, 3)
	fill(b, 0, 0, "first")
	fill(b, 1, 0, "second")
	fill(b, 2, 0, "third")

	b.ScrollUp(0, 2, 1)

	if got := b.RowText(0); got != "second" {
		t.Errorf("row 0 = %q, want %q", got, "second")
	}
	if got := b.RowText(2); got != "" {
		t.Errorf("row 2 = %q, want blank", got)
	}
	if b.ScrollbackLen() != 1 {
		t.Fatalf("scrollback len = %d, want 1", b.ScrollbackLen())
	}
	if got := b.ScrollbackRow(0)[0].Char; got != 'f' {
		t.Errorf("scrollback row starts with %q, want 'f'", got)
	}
}

func TestScrollUpInnerRegionSkipsScrollback(t *testing.T) {
	b := NewBuffer(10, 4)
	fill(b, 1, 0, "inner")
	b.ScrollUp(1, 2, 1)
	if b.ScrollbackLen() != 0 {
		t.Errorf("inner-region scroll entered scrollback: %d rows", b.ScrollbackLen())
	}
	if got := b.RowText(1); got != "" {
		t.Errorf("row 1 = %q, want blank", got)
	}
}

func TestScrollbackCap(t *testing.T) {
	b := NewBuffer(4, 2)
	for i := 0; i < MaxScrollback+500; i++ {
		b.ScrollUp(0, 1, 1)
	}
	if b.ScrollbackLen() != MaxScrollback {
		t.Errorf("scrollback len = %d, want %d", b.ScrollbackLen(), MaxScrollback)
	}
}

func TestSetMaxScrollback(t *testing.T) {
	b := NewBuffer(4, 2)
	b.SetMaxScrollback(50)
	for i := 0; i < 200; i++ {
		b.ScrollUp(0, 1, 1)
	}
	if b.ScrollbackLen() != 50 {
		t.Errorf("scrollback len = %d, want 50", b.ScrollbackLen())
	}

	// Lowering the cap trims existing history.
	b.SetMaxScrollback(10)
	if b.ScrollbackLen() != 10 {
		t.Errorf("after trim, scrollback len = %d, want 10", b.ScrollbackLen())
	}

	// Zero disables scrollback entirely.
	b.SetMaxScrollback(0)
	b.ScrollUp(0, 1, 1)
	if b.ScrollbackLen() != 0 {
		t.Errorf("with cap 0, scrollback len = %d, want 0", b.ScrollbackLen())
	}
}

func TestScrollDown(t *testing.T) {
	b := NewBuffer(10, 3)
	fill(b, 0, 0, "top")
	fill(b, 1, 0, "mid")
	b.ScrollDown(0, 2, 1)
	if got := b.RowText(0); got != "" {
		t.Errorf("row 0 = %q, want blank", got)
	}
	if got := b.RowText(1); got != "top" {
		t.Errorf("row 1 = %q, want %q", got, "top")
	}
	if got := b.RowText(2); got != "mid" {
		t.Errorf("row 2 = %q, want %q", got, "mid")
	}
}

func TestEraseLine(t *testing.T) {
	tests := []struct {
		name string
		mode int
		col  int
		want string
	}{
		{"to end", 0, 2, "ab"},
		{"to start inclusive", 1, 2, "   def"},
		{"entire", 2, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(10, 2)
			fill(b, 0, 0, "abcdef")
			b.EraseLine(0, tt.mode, tt.col)
			if got := b.RowText(0); got != tt.want {
				t.Errorf("RowText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEraseDisplay(t *testing.T) {
	newFilled := func() *Buffer {
		b := NewBuffer(5, 3)
		fill(b, 0, 0, "aaaaa")
		fill(b, 1, 0, "bbbbb")
		fill(b, 2, 0, "ccccc")
		return b
	}

	t.Run("to end", func(t *testing.T) {
		b := newFilled()
		b.EraseDisplay(0, 1, 2)
		if got := b.RowText(0); got != "aaaaa" {
			t.Errorf("row 0 = %q", got)
		}
		if got := b.RowText(1); got != "bb" {
			t.Errorf("row 1 = %q, want %q", got, "bb")
		}
		if got := b.RowText(2); got != "" {
			t.Errorf("row 2 = %q, want blank", got)
		}
	})

	t.Run("to start", func(t *testing.T) {
		b := newFilled()
		b.EraseDisplay(1, 1, 2)
		if got := b.RowText(0); got != "" {
			t.Errorf("row 0 = %q, want blank", got)
		}
		if got := b.RowText(1); got != "   bb" {
			t.Errorf("row 1 = %q, want %q", got, "   bb")
		}
		if got := b.RowText(2); got != "ccccc" {
			t.Errorf("row 2 = %q", got)
		}
	})

	t.Run("entire", func(t *testing.T) {
		b := newFilled()
		b.ScrollUp(0, 2, 1)
		b.EraseDisplay(2, 0, 0)
		if b.Text() != "" {
			t.Errorf("Text = %q, want empty", b.Text())
		}
		if b.ScrollbackLen() != 1 {
			t.Errorf("mode 2 touched scrollback")
		}
	})

	t.Run("with scrollback", func(t *testing.T) {
		b := newFilled()
		b.ScrollUp(0, 2, 1)
		b.EraseDisplay(3, 0, 0)
		if b.Text() != "" {
			t.Errorf("Text = %q, want empty", b.Text())
		}
		if b.ScrollbackLen() != 0 {
			t.Errorf("mode 3 kept scrollback: %d rows", b.ScrollbackLen())
		}
	})
}

func TestInsertDeleteLines(t *testing.T) {
	b := NewBuffer(5, 4)
	fill(b, 0, 0, "one")
	fill(b, 1, 0, "two")
	fill(b, 2, 0, "three")
	fill(b, 3, 0, "four")

	b.InsertLines(1, 1, 3)
	if got := b.RowText(1); got != "" {
		t.Errorf("after insert, row 1 = %q, want blank", got)
	}
	if got := b.RowText(2); got != "two" {
		t.Errorf("after insert, row 2 = %q, want %q", got, "two")
	}
	if got := b.RowText(3); got != "three" {
		t.Errorf("after insert, row 3 = %q, want %q (four discarded)", got, "three")
	}

	b.DeleteLines(1, 1, 3)
	if got := b.RowText(1); got != "two" {
		t.Errorf("after delete, row 1 = %q, want %q", got, "two")
	}
	if got := b.RowText(3); got != "" {
		t.Errorf("after delete, row 3 = %q, want blank", got)
	}
}

func TestInsertDeleteChars(t *testing.T) {
	b := NewBuffer(6, 1)
	fill(b, 0, 0, "abcdef")

	b.InsertChars(0, 2, 2)
	if got := b.RowText(0); got != "ab  cd" {
		t.Errorf("after insert, row = %q, want %q", got, "ab  cd")
	}

	b.DeleteChars(0, 2, 2)
	if got := b.RowText(0); got != "abcd" {
		t.Errorf("after delete, row = %q, want %q", got, "abcd")
	}
}

func TestResize(t *testing.T) {
	b := NewBuffer(10, 4)
	fill(b, 0, 0, "keep")
	fill(b, 3, 0, "gone")

	b.Resize(20, 2)
	if b.Cols() != 20 || b.Rows() != 2 {
		t.Fatalf("dims = %dx%d, want 20x2", b.Cols(), b.Rows())
	}
	if got := b.RowText(0); got != "keep" {
		t.Errorf("row 0 = %q, want %q", got, "keep")
	}

	b.Resize(40, 10)
	if got := b.RowText(0); got != "keep" {
		t.Errorf("after grow, row 0 = %q, want %q", got, "keep")
	}

	// Degenerate sizes clamp instead of failing.
	b.Resize(0, -3)
	if b.Cols() != 1 || b.Rows() != 1 {
		t.Errorf("dims = %dx%d, want 1x1", b.Cols(), b.Rows())
	}
}

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'a', 1},
		{' ', 1},
		{'é', 1},
		{'漢', 2},
		{'す', 2},
		{0, 0},
		{'́', 0}, // combining acute
	}
	for _, tt := range tests {
		if got := RuneWidth(tt.r); got != tt.want {
			t.Errorf("RuneWidth(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}
