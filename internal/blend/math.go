// Package blend implements premultiplied RGBA8 compositing for layer
// buffers: Porter-Duff operators, separable blend modes and row helpers
// used by the software compositor.
//
// The div255 family avoids integer division with shifts. mulDiv255 runs
// for every channel of every blended pixel.
package blend

// div255 divides x by 255 using the fast shift approximation
// (x + 255) >> 8. The result is exact at 0 and 255*255.
func div255(x uint16) uint16 {
	return (x + 255) >> 8
}

// div255Exact divides x by 255 exactly (Alvy Ray Smith).
func div255Exact(x uint16) uint16 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255.
// mulDiv255(x, 0) == 0 and mulDiv255(x, 255) == x for every x.
func mulDiv255(a, b byte) byte {
	if b == 255 {
		return a
	}
	return byte(div255(uint16(a) * uint16(b)))
}

// MulDiv255 is the exported form of mulDiv255 for callers that scale
// coverage by opacity.
func MulDiv255(a, b byte) byte { return mulDiv255(a, b) }

// addClamp adds two bytes and clamps to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}

// unpremul converts a premultiplied channel to straight alpha.
func unpremul(c, a byte) byte {
	if a == 0 {
		return 0
	}
	v := (uint16(c)*255 + uint16(a)/2) / uint16(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}

// FromFloat converts a unit value to a byte, clamping to [0, 1].
func FromFloat(v float64) byte {
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}
