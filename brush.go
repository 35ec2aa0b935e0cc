package ink

// Brush describes how a stroke is drawn.
type Brush struct {
	// Size is the stroke diameter in pixels at full pressure.
	Size float64 `yaml:"size"`

	// Color is the straight-alpha paint color. Ignored when erasing.
	Color RGBA `yaml:"-"`

	// Opacity scales the coverage of the whole stroke. The stroke is
	// rasterized as one shape, so overlapping segments do not build up.
	Opacity float64 `yaml:"opacity"`

	// Hardness in [0, 1] controls edge softness; 1 is a one-pixel edge.
	Hardness float64 `yaml:"hardness"`

	// Eraser removes alpha from the layer instead of painting color.
	Eraser bool `yaml:"eraser"`

	// MinRatio is the radius floor as a fraction of Size, so zero
	// pressure still leaves a visible line.
	MinRatio float64 `yaml:"min_ratio"`

	// CornerRounding in [0, 1] scales the arc density of round joins.
	// 0 joins segments with a single bevel.
	CornerRounding float64 `yaml:"corner_rounding"`

	// TaperLength narrows both stroke ends over this many pixels.
	TaperLength float64 `yaml:"taper_length"`

	// Streamline in [0, 1) makes the centerline lag behind the input.
	Streamline float64 `yaml:"streamline"`

	// MultiChannel renders the distance field with three channels and a
	// median, keeping corners sharp.
	MultiChannel bool `yaml:"multi_channel"`
}

// DefaultBrush returns the taper-free "linear ink" brush.
func DefaultBrush() Brush {
	return Brush{
		Size:           8,
		Color:          Black,
		Opacity:        1,
		Hardness:       1,
		MinRatio:       0.15,
		CornerRounding: 1,
	}
}

// normalized returns b with every field clamped to its valid range.
func (b Brush) normalized() Brush {
	if b.Size <= 0 || b.Size != b.Size {
		b.Size = 1
	}
	b.Opacity = clamp01(b.Opacity)
	b.Hardness = clamp01(b.Hardness)
	b.MinRatio = clamp01(b.MinRatio)
	b.CornerRounding = clamp01(b.CornerRounding)
	if b.TaperLength < 0 {
		b.TaperLength = 0
	}
	b.Streamline = min(clamp01(b.Streamline), 0.95)
	return b
}

// Radius returns the outline half-width at the given pressure.
func (b Brush) Radius(pressure float64) float64 {
	return b.Size / 2 * max(b.MinRatio, clamp01(pressure))
}

// Feather returns the coverage ramp width in pixels for a distance field
// of the given range.
func (b Brush) Feather(rng float64) float64 {
	return 1 + (1-clamp01(b.Hardness))*(2*rng-1)
}
