package palette

// RGB is a color in the terminal's 256-color palette.
type RGB struct {
	R, G, B uint8
}

// cubeLevels are the xterm channel values for the 6x6x6 color cube (16-231).
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// ansi16 is the fixed 16-color table (indices 0-15).
var ansi16 = [16]RGB{
	{0, 0, 0},       // 0: Black
	{205, 49, 49},   // 1: Red
	{13, 188, 121},  // 2: Green
	{229, 229, 16},  // 3: Yellow
	{36, 114, 200},  // 4: Blue
	{188, 63, 188},  // 5: Magenta
	{17, 168, 205},  // 6: Cyan
	{229, 229, 229}, // 7: White
	{102, 102, 102}, // 8: Bright Black
	{241, 76, 76},   // 9: Bright Red
	{35, 209, 139},  // 10: Bright Green
	{245, 245, 67},  // 11: Bright Yellow
	{59, 142, 234},  // 12: Bright Blue
	{214, 112, 214}, // 13: Bright Magenta
	{41, 184, 219},  // 14: Bright Cyan
	{255, 255, 255}, // 15: Bright White
}

// Colors is the full 256-color palette: 16 named colors (0-15),
// a 6x6x6 color cube (16-231), and a 24-step grayscale ramp (232-255).
var Colors [256]RGB

func init() {
	copy(Colors[:16], ansi16[:])

	// 6x6x6 cube (16-231)
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				Colors[i] = RGB{cubeLevels[r], cubeLevels[g], cubeLevels[b]}
				i++
			}
		}
	}

	// Grayscale ramp (232-255)
	for n := 0; n < 24; n++ {
		gray := uint8(8 + n*10)
		Colors[232+n] = RGB{gray, gray, gray}
	}
}

// Color returns the palette entry for an index.
func Color(index uint8) RGB {
	return Colors[index]
}

// RGBTo256 downsamples a truecolor value to the nearest 256-color index.
// Pure grays map onto the grayscale ramp, clamped to cube black (16) and
// cube white (231) at the extremes. Everything else is quantized per
// channel against the cube levels.
func RGBTo256(r, g, b uint8) int {
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 247 {
			return 231
		}
		return 232 + (int(r)-8)/10
	}
	return 16 + 36*quantizeChannel(r) + 6*quantizeChannel(g) + quantizeChannel(b)
}

// quantizeChannel maps one 0-255 channel to its cube level 0-5. The low
// thresholds (48, 115) intentionally differ from the midpoints a textbook
// table would use; changing them changes observable colors.
func quantizeChannel(v uint8) int {
	if v < 48 {
		return 0
	}
	if v < 115 {
		return 1
	}
	n := (int(v) - 35) / 40
	if n > 5 {
		n = 5
	}
	return n
}
