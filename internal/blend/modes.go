package blend

import "math"

// Mode selects how a premultiplied source pixel merges into a destination.
type Mode uint8

const (
	SourceOver     Mode = iota // S + D*(1-Sa)
	Multiply                   // B = S*D
	Screen                     // B = 1 - (1-S)*(1-D)
	Overlay                    // HardLight with swapped layers
	Darken                     // B = min(S, D)
	Lighten                    // B = max(S, D)
	ColorDodge                 // B = D / (1-S)
	ColorBurn                  // B = 1 - (1-D)/S
	HardLight                  // Multiply or Screen depending on source
	SoftLight                  // soft version of HardLight
	Difference                 // B = |S - D|
	Exclusion                  // B = S + D - 2*S*D
	Plus                       // S + D, clamped
	DestinationOut             // D*(1-Sa)
)

// Func blends one premultiplied source pixel onto one premultiplied
// destination pixel.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// For returns the blend function for mode. Unknown modes use SourceOver.
func For(mode Mode) Func {
	switch mode {
	case Multiply:
		return blendMultiply
	case Screen:
		return blendScreen
	case Overlay:
		return blendOverlay
	case Darken:
		return blendDarken
	case Lighten:
		return blendLighten
	case ColorDodge:
		return blendColorDodge
	case ColorBurn:
		return blendColorBurn
	case HardLight:
		return blendHardLight
	case SoftLight:
		return blendSoftLight
	case Difference:
		return blendDifference
	case Exclusion:
		return blendExclusion
	case Plus:
		return blendPlus
	case DestinationOut:
		return blendDestinationOut
	default:
		return blendSourceOver
	}
}

func blendSourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	invSa := 255 - sa
	return addClamp(sr, mulDiv255(dr, invSa)),
		addClamp(sg, mulDiv255(dg, invSa)),
		addClamp(sb, mulDiv255(db, invSa)),
		addClamp(sa, mulDiv255(da, invSa))
}

func blendDestinationOut(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return mulDiv255(dr, invSa), mulDiv255(dg, invSa), mulDiv255(db, invSa), mulDiv255(da, invSa)
}

func blendPlus(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return addClamp(sr, dr), addClamp(sg, dg), addClamp(sb, db), addClamp(sa, da)
}

// separableBlend applies a per-channel function B on straight colors:
// result = (1-Sa)*D + (1-Da)*S + Sa*Da*B(Sc, Dc).
func separableBlend(sr, sg, sb, sa, dr, dg, db, da byte, fn func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	br := fn(unpremul(sr, sa), unpremul(dr, da))
	bg := fn(unpremul(sg, sa), unpremul(dg, da))
	bb := fn(unpremul(sb, sa), unpremul(db, da))

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	r := addClamp(addClamp(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, br))
	g := addClamp(addClamp(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, bg))
	b := addClamp(addClamp(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, bb))
	a := addClamp(sa, mulDiv255(da, invSa))
	return r, g, b, a
}

func blendMultiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, mulDiv255)
}

func blendScreen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, screen)
}

func screen(s, d byte) byte {
	return 255 - mulDiv255(255-s, 255-d)
}

// hardLight is B(Cb, Cs) with the source deciding between multiply and screen.
func hardLight(s, d byte) byte {
	if s <= 127 {
		return byte(div255(2 * uint16(s) * uint16(d)))
	}
	return 255 - byte(div255(2*uint16(255-s)*uint16(255-d)))
}

func blendOverlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return hardLight(d, s)
	})
}

func blendHardLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, hardLight)
}

func blendDarken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, minByte)
}

func blendLighten(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, maxByte)
}

func blendColorDodge(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if d == 0 {
			return 0
		}
		if s == 255 {
			return 255
		}
		v := uint16(d) * 255 / uint16(255-s)
		if v > 255 {
			return 255
		}
		return byte(v)
	})
}

func blendColorBurn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if d == 255 {
			return 255
		}
		if s == 0 {
			return 0
		}
		v := uint16(255-d) * 255 / uint16(s)
		if v > 255 {
			return 0
		}
		return 255 - byte(v)
	})
}

func blendSoftLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		sf := float64(s) / 255
		df := float64(d) / 255
		var v float64
		if sf <= 0.5 {
			v = df - (1-2*sf)*df*(1-df)
		} else {
			var dx float64
			if df <= 0.25 {
				dx = ((16*df-12)*df + 4) * df
			} else {
				dx = math.Sqrt(df)
			}
			v = df + (2*sf-1)*(dx-df)
		}
		return FromFloat(v)
	})
}

func blendDifference(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s > d {
			return s - d
		}
		return d - s
	})
}

func blendExclusion(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		v := int(s) + int(d) - 2*int(mulDiv255(s, d))
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return byte(v)
	})
}
