package ink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Pixmap is a premultiplied RGBA8 pixel buffer, 4 bytes per pixel,
// rows packed without padding.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a transparent pixmap.
func NewPixmap(width, height int) *Pixmap {
	width, height = max(width, 0), max(height, 0)
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int { return p.width }

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int { return p.height }

// Stride returns the byte length of one row.
func (p *Pixmap) Stride() int { return p.width * 4 }

// Data returns the raw premultiplied pixel data.
func (p *Pixmap) Data() []uint8 { return p.data }

// Rect returns the full pixmap area.
func (p *Pixmap) Rect() Rect { return Rect{0, 0, p.width, p.height} }

// Row returns the bytes of pixels [x0, x1) on row y. The range must be
// inside the pixmap.
func (p *Pixmap) Row(y, x0, x1 int) []uint8 {
	o := y*p.width*4 + x0*4
	return p.data[o : o+(x1-x0)*4]
}

// Pixel returns the premultiplied pixel at (x, y); zero outside.
func (p *Pixmap) Pixel(x, y int) [4]uint8 {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return [4]uint8{}
	}
	i := (y*p.width + x) * 4
	return [4]uint8{p.data[i], p.data[i+1], p.data[i+2], p.data[i+3]}
}

// SetPixel stores a premultiplied pixel; writes outside are dropped.
func (p *Pixmap) SetPixel(x, y int, c [4]uint8) {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	copy(p.data[i:i+4], c[:])
}

// Fill writes c into every pixel of r clipped to the pixmap.
func (p *Pixmap) Fill(r Rect, c [4]uint8) {
	r = r.Intersect(p.Rect())
	for y := r.MinY; y < r.MaxY; y++ {
		row := p.Row(y, r.MinX, r.MaxX)
		for o := 0; o < len(row); o += 4 {
			copy(row[o:o+4], c[:])
		}
	}
}

// Clear makes every pixel transparent.
func (p *Pixmap) Clear() {
	clear(p.data)
}

// Clone returns a deep copy.
func (p *Pixmap) Clone() *Pixmap {
	return &Pixmap{width: p.width, height: p.height, data: bytes.Clone(p.data)}
}

// Region copies r (clipped to the pixmap) into a new pixmap of the
// clipped size. Pixels are copied verbatim.
func (p *Pixmap) Region(r Rect) *Pixmap {
	r = r.Intersect(p.Rect())
	out := NewPixmap(r.Dx(), r.Dy())
	for y := r.MinY; y < r.MaxY; y++ {
		copy(out.Row(y-r.MinY, 0, out.width), p.Row(y, r.MinX, r.MaxX))
	}
	return out
}

// Paste copies src into p with its top-left corner at (x, y), clipped to
// p. Pixels are copied verbatim.
func (p *Pixmap) Paste(src *Pixmap, x, y int) {
	r := XYWH(x, y, src.width, src.height).Intersect(p.Rect())
	for yy := r.MinY; yy < r.MaxY; yy++ {
		copy(p.Row(yy, r.MinX, r.MaxX), src.Row(yy-y, r.MinX-x, r.MaxX-x))
	}
}

// Equal reports whether p and q have the same size and bytes.
func (p *Pixmap) Equal(q *Pixmap) bool {
	return p.width == q.width && p.height == q.height && bytes.Equal(p.data, q.data)
}

// ToImage copies the pixmap into an image.RGBA, which shares the
// premultiplied layout.
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates a pixmap from any image.
func FromImage(img image.Image) *Pixmap {
	b := img.Bounds()
	pm := NewPixmap(b.Dx(), b.Dy())
	for y := 0; y < pm.height; y++ {
		for x := 0; x < pm.width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			pm.SetPixel(x, y, [4]uint8{c.R, c.G, c.B, c.A})
		}
	}
	return pm
}

// SavePNG writes the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, p.ToImage())
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	c := p.Pixel(x, y)
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}
