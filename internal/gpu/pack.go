//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/ink/internal/jfa"
)

// floodParamsSize is the byte size of the Params uniform in jfa.wgsl.
const floodParamsSize = 32

// mergeUniformSize is the byte size of the Merge uniform in merge.wgsl.
const mergeUniformSize = 32

// strokeUniformSize is the byte size of the Uniforms block in stroke.wgsl.
const strokeUniformSize = 32

// segmentStride is the byte size of one Segment in jfa.wgsl.
const segmentStride = 16

// paintParams describes how one stroke is shaded. rng, feather and
// opacity feed the coverage pass; color and erase the merge draw.
type paintParams struct {
	rng     float32
	feather float32
	opacity float32
	erase   bool
	color   [4]float32 // premultiplied
}

// packFloodParams serializes the Params uniform for one pass.
func packFloodParams(w, h uint32, step int32, segCount uint32, p paintParams) []byte {
	b := make([]byte, floodParamsSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], w)
	le.PutUint32(b[4:], h)
	le.PutUint32(b[8:], uint32(step)) //nolint:gosec // jump steps are small and positive
	le.PutUint32(b[12:], segCount)
	le.PutUint32(b[16:], math.Float32bits(p.rng))
	le.PutUint32(b[20:], math.Float32bits(math32.Max(p.feather, 1)))
	le.PutUint32(b[24:], math.Float32bits(clampUnit(p.opacity)))
	return b
}

// packMergeUniform serializes the merge.wgsl uniform block.
func packMergeUniform(w, h uint32, color [4]float32) []byte {
	b := make([]byte, mergeUniformSize)
	le := binary.LittleEndian
	for i, c := range color {
		le.PutUint32(b[4*i:], math.Float32bits(clampUnit(c)))
	}
	le.PutUint32(b[16:], w)
	le.PutUint32(b[20:], h)
	return b
}

// packQuad returns the two triangles covering a w*h window.
func packQuad(w, h int) ([]byte, uint32) {
	fw, fh := float64(w), float64(h)
	return packTriangles([]float64{0, 0, fw, 0, fw, fh, 0, fh}, []uint32{0, 1, 2, 0, 2, 3})
}

// packSegments serializes segments as pairs of vec2<f32>.
func packSegments(segs []jfa.Segment) []byte {
	b := make([]byte, segmentStride*max(len(segs), 1))
	le := binary.LittleEndian
	for i, s := range segs {
		o := i * segmentStride
		le.PutUint32(b[o:], math.Float32bits(float32(s.AX)))
		le.PutUint32(b[o+4:], math.Float32bits(float32(s.AY)))
		le.PutUint32(b[o+8:], math.Float32bits(float32(s.BX)))
		le.PutUint32(b[o+12:], math.Float32bits(float32(s.BY)))
	}
	return b
}

// packIDs serializes seed edge ids as i32.
func packIDs(ids []int32) []byte {
	b := make([]byte, 4*len(ids))
	for i, id := range ids {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(id)) //nolint:gosec // two's complement is what the shader reads
	}
	return b
}

// packInside widens a coverage mask to one u32 flag per texel.
func packInside(mask []byte) []byte {
	b := make([]byte, 4*len(mask))
	for i, v := range mask {
		if v >= 128 {
			b[4*i] = 1
		}
	}
	return b
}

// packStrokeUniform serializes the stroke.wgsl uniform block.
func packStrokeUniform(ox, oy, w, h float32, color [4]float32) []byte {
	b := make([]byte, strokeUniformSize)
	le := binary.LittleEndian
	for i, v := range [8]float32{ox, oy, w, h, color[0], color[1], color[2], color[3]} {
		le.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

// packTriangles expands an indexed mesh to a flat float32 x,y triangle
// list. Triangles with an out of range or non-finite vertex are dropped.
func packTriangles(vertices []float64, indices []uint32) ([]byte, uint32) {
	nv := uint32(len(vertices) / 2) //nolint:gosec // meshes stay far below 2^32 vertices
	out := make([]byte, 0, 8*len(indices))
	var count uint32
	var tri [6]float32
	for t := 0; t+2 < len(indices); t += 3 {
		ok := true
		for k := range 3 {
			idx := indices[t+k]
			if idx >= nv {
				ok = false
				break
			}
			x, y := float32(vertices[2*idx]), float32(vertices[2*idx+1])
			if !finite(x) || !finite(y) {
				ok = false
				break
			}
			tri[2*k], tri[2*k+1] = x, y
		}
		if !ok {
			continue
		}
		for _, v := range tri {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
		count += 3
	}
	return out, count
}

// packPixels copies premultiplied RGBA rows into a tight buffer. The
// byte order matches the shader's packed u32 with R in the low byte.
func packPixels(rows func(y int) []byte, w, h int) []byte {
	b := make([]byte, 4*w*h)
	for y := range h {
		copy(b[4*w*y:4*w*(y+1)], rows(y))
	}
	return b
}

// unpackPixels copies a buffer with the given row pitch back into rows.
func unpackPixels(src []byte, pitch int, rows func(y int) []byte, w, h int) {
	for y := range h {
		copy(rows(y), src[pitch*y:pitch*y+4*w])
	}
}

func clampUnit(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Min(math32.Max(v, 0), 1)
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
