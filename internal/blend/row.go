package blend

// Row blends len(src)/4 premultiplied source pixels onto dst. Each source
// pixel is scaled by opacity before blending. Source pixels that end up
// fully transparent leave the destination untouched.
func Row(dst, src []byte, mode Mode, opacity byte) {
	fn := For(mode)
	n := min(len(dst), len(src)) / 4
	for i := 0; i < n; i++ {
		o := i * 4
		sr, sg, sb, sa := src[o], src[o+1], src[o+2], src[o+3]
		if opacity != 255 {
			sr, sg, sb, sa = mulDiv255(sr, opacity), mulDiv255(sg, opacity), mulDiv255(sb, opacity), mulDiv255(sa, opacity)
		}
		if sa == 0 {
			continue
		}
		dst[o], dst[o+1], dst[o+2], dst[o+3] = fn(sr, sg, sb, sa, dst[o], dst[o+1], dst[o+2], dst[o+3])
	}
}

// Coverage blends a solid premultiplied color, modulated per pixel by
// cov, onto dst. Zero coverage leaves the destination bit-identical.
func Coverage(dst, cov []byte, color [4]byte, mode Mode) {
	fn := For(mode)
	n := min(len(dst)/4, len(cov))
	for i := 0; i < n; i++ {
		c := cov[i]
		if c == 0 {
			continue
		}
		o := i * 4
		sr, sg, sb, sa := color[0], color[1], color[2], color[3]
		if c != 255 {
			sr, sg, sb, sa = mulDiv255(sr, c), mulDiv255(sg, c), mulDiv255(sb, c), mulDiv255(sa, c)
		}
		if sa == 0 {
			continue
		}
		dst[o], dst[o+1], dst[o+2], dst[o+3] = fn(sr, sg, sb, sa, dst[o], dst[o+1], dst[o+2], dst[o+3])
	}
}

// Fill writes color into every pixel of dst.
func Fill(dst []byte, color [4]byte) {
	for o := 0; o+3 < len(dst); o += 4 {
		dst[o], dst[o+1], dst[o+2], dst[o+3] = color[0], color[1], color[2], color[3]
	}
}
