package jfa

import "github.com/gogpu/ink/internal/parallel"

// Channel bits for multi-channel fields.
const (
	ChannelR = 1 << iota
	ChannelG
	ChannelB
)

// EdgeChannels assigns each edge a channel pair cyclically: RG, GB, BR.
// Every edge lives in exactly two channels, so at any texel at least two
// channels agree on the true nearest edge.
func EdgeChannels(n int) []uint8 {
	pairs := [3]uint8{ChannelR | ChannelG, ChannelG | ChannelB, ChannelB | ChannelR}
	out := make([]uint8, n)
	for i := range out {
		out[i] = pairs[i%3]
	}
	return out
}

// MultiField holds three normalized channels that reconstruct sharp
// corners through a per-texel median.
type MultiField struct {
	W, H    int
	Range   float64
	R, G, B []float32
}

// BuildMulti runs the pipeline once per channel, flooding only the edges
// assigned to that channel.
func BuildMulti(segs []Segment, inside []byte, w, h int, rng float64, pool *parallel.WorkerPool) *MultiField {
	segs = Boundary(segs, inside, w, h)
	colors := EdgeChannels(len(segs))
	channel := func(bit uint8) []float32 {
		ids := Seed(segs, func(i int) bool { return colors[i]&bit != 0 }, w, h)
		Flood(ids, segs, w, h, pool)
		return Encode(ids, segs, inside, w, h, rng).N
	}
	return &MultiField{
		W: w, H: h, Range: rng,
		R: channel(ChannelR),
		G: channel(ChannelG),
		B: channel(ChannelB),
	}
}

// Median returns the median of the three channels at texel i.
func (m *MultiField) Median(i int) float32 {
	return median(m.R[i], m.G[i], m.B[i])
}

// Field collapses the channels into a single-channel field by median.
func (m *MultiField) Field() *Field {
	f := &Field{W: m.W, H: m.H, Range: m.Range, N: make([]float32, len(m.R))}
	for i := range f.N {
		f.N[i] = m.Median(i)
	}
	return f
}

func median(a, b, c float32) float32 {
	return max(min(a, b), min(max(a, b), c))
}
