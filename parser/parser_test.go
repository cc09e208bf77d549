package parser

import (
	"fmt"
	"reflect"
	"testing"
)

// recorder captures dispatched events as readable strings.
type recorder struct {
	events []string
}

func (r *recorder) Print(ch rune) {
	r.events = append(r.events, fmt.Sprintf("print %q", ch))
}

func (r *recorder) Execute(code byte) {
	r.events = append(r.events, fmt.Sprintf("exec 0x%02X", code))
}

func (r *recorder) CsiDispatch(params []int, intermediates string, final byte, private byte) {
	r.events = append(r.events, fmt.Sprintf("csi %v %q %c %q", params, intermediates, final, private))
}

func (r *recorder) EscDispatch(intermediates string, final byte) {
	r.events = append(r.events, fmt.Sprintf("esc %q %c", intermediates, final))
}

func (r *recorder) OscDispatch(parts []string) {
	r.events = append(r.events, fmt.Sprintf("osc %v", parts))
}

func (r *recorder) DcsDispatch(data string) {
	r.events = append(r.events, fmt.Sprintf("dcs %q", data))
}

func parse(t *testing.T, input string) []string {
	t.Helper()
	rec := &recorder{}
	New(rec).Parse([]byte(input))
	return rec.events
}

func TestPrintAndExecute(t *testing.T) {
	got := parse(t, "a\rb\n")
	want := []string{`print 'a'`, "exec 0x0D", `print 'b'`, "exec 0x0A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestCsiSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no params", "\x1b[H", `csi [] "" H '\x00'`},
		{"params", "\x1b[10;20H", `csi [10 20] "" H '\x00'`},
		{"empty param defaults to zero", "\x1b[;5H", `csi [0 5] "" H '\x00'`},
		{"private marker", "\x1b[?25l", `csi [25] "" l '?'`},
		{"secondary marker", "\x1b[>c", `csi [] "" c '>'`},
		{"intermediate", "\x1b[0 q", `csi [0] " " q '\x00'`},
		{"colon subparams flatten", "\x1b[38:5:123m", `csi [38 5 123] "" m '\x00'`},
		{"8-bit csi", "\x9b5A", `csi [5] "" A '\x00'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parse(t, tt.input)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("events = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestCsiSplitAcrossParseCalls(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	p.Parse([]byte("\x1b[1"))
	p.Parse([]byte("0;2"))
	p.Parse([]byte("0H"))
	want := []string{`csi [10 20] "" H '\x00'`}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestBackToBackSequences(t *testing.T) {
	got := parse(t, "\x1b[1A\x1b[2B")
	want := []string{`csi [1] "" A '\x00'`, `csi [2] "" B '\x00'`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestCsiAbort(t *testing.T) {
	// A control byte inside CSI aborts the sequence silently; the
	// following text prints normally.
	got := parse(t, "\x1b[1\x18x")
	want := []string{`print 'x'`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestUnknownEscapeAbsorbed(t *testing.T) {
	got := parse(t, "\x1bzx")
	want := []string{`print 'x'`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestEscDispatch(t *testing.T) {
	got := parse(t, "\x1b7\x1bM\x1bc")
	want := []string{`esc "" 7`, `esc "" M`, `esc "" c`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestCharsetDesignation(t *testing.T) {
	got := parse(t, "\x1b(0\x1b)Bx")
	want := []string{`esc "(" 0`, `esc ")" B`, `print 'x'`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestOscTermination(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"BEL", "\x1b]2;hello\x07", "osc [2 hello]"},
		{"ST", "\x1b]2;hello\x1b\\", "osc [2 hello]"},
		{"semicolons split", "\x1b]0;a;b\x07", "osc [0 a b]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parse(t, tt.input)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("events = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func TestOscAbortedByEscape(t *testing.T) {
	// ESC not followed by backslash cancels the OSC and starts a new
	// sequence.
	got := parse(t, "\x1b]2;title\x1b[1A")
	want := []string{`csi [1] "" A '\x00'`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestDcsDispatch(t *testing.T) {
	got := parse(t, "\x1bP+q524742\x1b\\")
	want := []string{`dcs "+q524742"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestUTF8Decoding(t *testing.T) {
	got := parse(t, "é漢\U0001F600")
	want := []string{`print 'é'`, `print '漢'`, `print '😀'`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestUTF8SplitAcrossParseCalls(t *testing.T) {
	rec := &recorder{}
	p := New(rec)
	raw := []byte("漢")
	p.Parse(raw[:1])
	p.Parse(raw[1:])
	want := []string{`print '漢'`}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}
