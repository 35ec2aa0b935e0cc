package ink

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGBA is a straight-alpha color with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	Black       = RGBA{0, 0, 0, 1}
	White       = RGBA{1, 1, 1, 1}
	Transparent = RGBA{}
)

// RGB creates an opaque color.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// Color converts c to the standard library color model.
func (c RGBA) Color() color.Color {
	return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

// FromColor converts a standard library color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Premul returns c as premultiplied 8-bit channels scaled by opacity.
func (c RGBA) Premul(opacity float64) [4]byte {
	a := clamp01(c.A) * clamp01(opacity)
	return [4]byte{unit8(clamp01(c.R) * a), unit8(clamp01(c.G) * a), unit8(clamp01(c.B) * a), unit8(a)}
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with or without a
// leading '#'.
func Hex(s string) (RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	var digits int
	switch len(h) {
	case 3, 4:
		digits = 1
	case 6, 8:
		digits = 2
	default:
		return RGBA{}, fmt.Errorf("ink: invalid hex color %q", s)
	}
	ch := [4]float64{1, 1, 1, 1}
	for i := 0; i*digits < len(h); i++ {
		v, err := strconv.ParseUint(h[i*digits:(i+1)*digits], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("ink: invalid hex color %q: %w", s, err)
		}
		if digits == 1 {
			v *= 17
		}
		ch[i] = float64(v) / 255
	}
	return RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// String returns the color as #RRGGBBAA.
func (c RGBA) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", unit8(c.R), unit8(c.G), unit8(c.B), unit8(c.A))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func unit8(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
