package parser

import "strings"

// Handler receives the events the parser extracts from the byte stream.
// The Terminal orchestrator implements it; one Parser is owned per
// terminal session.
type Handler interface {
	// Print delivers a decoded printable rune.
	Print(r rune)
	// Execute delivers a C0 control code (or DEL).
	Execute(code byte)
	// CsiDispatch delivers a complete CSI sequence. private is the
	// marker byte ('?', '>', '!') or 0.
	CsiDispatch(params []int, intermediates string, final byte, private byte)
	// EscDispatch delivers a single-character escape, or a charset
	// designation with its introducer in intermediates.
	EscDispatch(intermediates string, final byte)
	// OscDispatch delivers the semicolon-split parts of an OSC string.
	OscDispatch(parts []string)
	// DcsDispatch delivers a complete DCS payload (e.g. XTGETTCAP).
	DcsDispatch(data string)
}

type state int

const (
	stateNormal state = iota
	stateEscape
	stateCSI
	stateOSC
	stateOSCEscape
	stateDCS
	stateDCSEscape
	stateCharSet
)

// Parser is the ANSI/VT100 escape-sequence state machine. It owns the
// scratch state of the sequence in flight, so sequences split across
// Parse calls assemble correctly.
type Parser struct {
	handler Handler
	state   state

	params        []int
	currentParam  int
	hasParam      bool
	intermediates []byte
	private       byte

	osc []byte
	dcs []byte

	charsetIntro byte

	// UTF-8 assembly for the ground state
	utf8Buf       []byte
	utf8Remaining int
}

// New creates a parser dispatching into h.
func New(h Handler) *Parser {
	return &Parser{handler: h}
}

// Parse feeds a chunk of the inbound byte stream through the state
// machine. Malformed sequences are absorbed without dispatching.
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.parseByte(b)
	}
}

func (p *Parser) parseByte(b byte) {
	switch p.state {
	case stateNormal:
		p.parseNormal(b)
	case stateEscape:
		p.parseEscape(b)
	case stateCSI:
		p.parseCSI(b)
	case stateOSC:
		p.parseOSC(b)
	case stateOSCEscape:
		p.parseOSCEscape(b)
	case stateDCS:
		p.parseDCS(b)
	case stateDCSEscape:
		p.parseDCSEscape(b)
	case stateCharSet:
		// Designation consumes exactly one byte.
		p.handler.EscDispatch(string(p.charsetIntro), b)
		p.state = stateNormal
	}
}

func (p *Parser) parseNormal(b byte) {
	if p.utf8Remaining > 0 {
		if b&0xC0 == 0x80 {
			p.utf8Buf = append(p.utf8Buf, b)
			p.utf8Remaining--
			if p.utf8Remaining == 0 {
				p.handler.Print(decodeUTF8(p.utf8Buf))
				p.utf8Buf = p.utf8Buf[:0]
			}
			return
		}
		// Broken continuation: drop the partial rune, reprocess.
		p.utf8Buf = p.utf8Buf[:0]
		p.utf8Remaining = 0
	}

	switch {
	case b == 0x1B:
		p.state = stateEscape
	case b == 0x9B: // 8-bit CSI
		p.resetCSI()
		p.state = stateCSI
	case b == 0x9D: // 8-bit OSC
		p.osc = p.osc[:0]
		p.state = stateOSC
	case b == 0x90: // 8-bit DCS
		p.dcs = p.dcs[:0]
		p.state = stateDCS
	case b < 0x20 || b == 0x7F:
		p.handler.Execute(b)
	case b < 0x80:
		p.handler.Print(rune(b))
	case b >= 0xC0 && b < 0xE0:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Remaining = 1
	case b >= 0xE0 && b < 0xF0:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Remaining = 2
	case b >= 0xF0 && b < 0xF8:
		p.utf8Buf = append(p.utf8Buf[:0], b)
		p.utf8Remaining = 3
	}
	// Other bytes (stray continuations, unused C1) are dropped.
}

func (p *Parser) parseEscape(b byte) {
	switch b {
	case '[':
		p.resetCSI()
		p.state = stateCSI
	case ']':
		p.osc = p.osc[:0]
		p.state = stateOSC
	case 'P':
		p.dcs = p.dcs[:0]
		p.state = stateDCS
	case '(', ')', '*', '+':
		p.charsetIntro = b
		p.state = stateCharSet
	case '7', '8', 'D', 'E', 'M', 'c', '=', '>':
		p.handler.EscDispatch("", b)
		p.state = stateNormal
	default:
		// Unknown escape: swallow silently.
		p.state = stateNormal
	}
}

func (p *Parser) resetCSI() {
	p.params = p.params[:0]
	p.currentParam = 0
	p.hasParam = false
	p.intermediates = p.intermediates[:0]
	p.private = 0
}

func (p *Parser) flushParam() {
	p.params = append(p.params, p.currentParam)
	p.currentParam = 0
	p.hasParam = false
}

func (p *Parser) parseCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.currentParam = p.currentParam*10 + int(b-'0')
		p.hasParam = true
	case b == ';' || b == ':':
		// Colon sub-parameters (38:2:r:g:b style) flatten into the
		// plain parameter list.
		p.flushParam()
	case b == '?' || b == '>' || b == '!':
		p.private = b
	case b >= 0x20 && b <= 0x2F:
		p.intermediates = append(p.intermediates, b)
	case b >= 0x40 && b <= 0x7E:
		if p.hasParam || len(p.params) > 0 {
			p.flushParam()
		}
		p.handler.CsiDispatch(p.params, string(p.intermediates), b, p.private)
		p.state = stateNormal
	default:
		// Anything else aborts the sequence.
		p.state = stateNormal
	}
}

func (p *Parser) parseOSC(b byte) {
	switch b {
	case 0x07, 0x9C: // BEL or 8-bit ST
		p.dispatchOSC()
	case 0x1B:
		p.state = stateOSCEscape
	default:
		p.osc = append(p.osc, b)
	}
}

func (p *Parser) parseOSCEscape(b byte) {
	if b == '\\' { // ESC \ completes ST
		p.dispatchOSC()
		return
	}
	// Not a terminator: the ESC aborts the OSC and starts a new sequence.
	p.osc = p.osc[:0]
	p.state = stateEscape
	p.parseEscape(b)
}

func (p *Parser) dispatchOSC() {
	p.handler.OscDispatch(strings.Split(string(p.osc), ";"))
	p.osc = p.osc[:0]
	p.state = stateNormal
}

func (p *Parser) parseDCS(b byte) {
	switch b {
	case 0x1B:
		p.state = stateDCSEscape
	case 0x9C, 0x07: // BEL termination is non-standard but common
		p.dispatchDCS()
	default:
		p.dcs = append(p.dcs, b)
	}
}

func (p *Parser) parseDCSEscape(b byte) {
	if b == '\\' {
		p.dispatchDCS()
		return
	}
	p.dcs = append(p.dcs, 0x1B, b)
	p.state = stateDCS
}

func (p *Parser) dispatchDCS() {
	p.handler.DcsDispatch(string(p.dcs))
	p.dcs = p.dcs[:0]
	p.state = stateNormal
}

func decodeUTF8(buf []byte) rune {
	switch len(buf) {
	case 2:
		if buf[0]&0xE0 == 0xC0 {
			return rune(buf[0]&0x1F)<<6 | rune(buf[1]&0x3F)
		}
	case 3:
		if buf[0]&0xF0 == 0xE0 {
			return rune(buf[0]&0x0F)<<12 | rune(buf[1]&0x3F)<<6 | rune(buf[2]&0x3F)
		}
	case 4:
		if buf[0]&0xF8 == 0xF0 {
			return rune(buf[0]&0x07)<<18 | rune(buf[1]&0x3F)<<12 | rune(buf[2]&0x3F)<<6 | rune(buf[3]&0x3F)
		}
	}
	return 0xFFFD
}
