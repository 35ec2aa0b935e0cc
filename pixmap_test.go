package ink

import (
	"image/color"
	"path/filepath"
	"testing"
)

func TestPixmapPixel(t *testing.T) {
	pm := NewPixmap(10, 10)
	pm.SetPixel(5, 5, [4]uint8{128, 64, 32, 255})

	i := (5*10 + 5) * 4
	data := pm.Data()
	if data[i] != 128 || data[i+1] != 64 || data[i+2] != 32 || data[i+3] != 255 {
		t.Errorf("raw data mismatch: got %v", data[i:i+4])
	}

	r, g, b, a := pm.At(5, 5).RGBA()
	if r != 128*257 || g != 64*257 || b != 32*257 || a != 255*257 {
		t.Errorf("At() mismatch: got (%d, %d, %d, %d)", r, g, b, a)
	}
}

func TestPixmapOutOfBounds(t *testing.T) {
	pm := NewPixmap(4, 4)
	pm.Fill(pm.Rect(), [4]uint8{0, 0, 0, 255})
	orig := pm.Clone()

	for _, c := range []struct{ x, y int }{{-1, 0}, {4, 0}, {0, -1}, {0, 4}, {100, 100}} {
		pm.SetPixel(c.x, c.y, [4]uint8{255, 0, 0, 255})
		if got := pm.Pixel(c.x, c.y); got != ([4]uint8{}) {
			t.Errorf("Pixel(%d, %d) = %v, want zero", c.x, c.y, got)
		}
	}
	if !pm.Equal(orig) {
		t.Error("out-of-bounds writes modified the pixmap")
	}
}

func TestPixmapRegionPaste(t *testing.T) {
	pm := NewPixmap(8, 8)
	pm.Fill(XYWH(2, 2, 3, 3), [4]uint8{10, 20, 30, 40})

	reg := pm.Region(XYWH(1, 1, 5, 5))
	if reg.Width() != 5 || reg.Height() != 5 {
		t.Fatalf("Region size = %dx%d", reg.Width(), reg.Height())
	}
	if reg.Pixel(1, 1) != ([4]uint8{10, 20, 30, 40}) || reg.Pixel(0, 0) != ([4]uint8{}) {
		t.Error("Region copied wrong pixels")
	}

	clipped := pm.Region(XYWH(6, 6, 10, 10))
	if clipped.Width() != 2 || clipped.Height() != 2 {
		t.Errorf("clipped Region size = %dx%d, want 2x2", clipped.Width(), clipped.Height())
	}

	dst := NewPixmap(8, 8)
	dst.Paste(reg, 1, 1)
	if !dst.Equal(pm) {
		t.Error("Paste(Region(r)) did not reproduce the source")
	}

	// Pasting past the edge clips without panicking.
	dst.Paste(reg, 6, 6)
	dst.Paste(reg, -3, -3)
}

func TestPixmapImageRoundTrip(t *testing.T) {
	pm := NewPixmap(3, 2)
	pm.SetPixel(0, 0, [4]uint8{255, 0, 0, 255})
	pm.SetPixel(2, 1, [4]uint8{0, 64, 0, 128})

	back := FromImage(pm.ToImage())
	if !back.Equal(pm) {
		t.Error("FromImage(ToImage()) changed the pixels")
	}
	if pm.ColorModel() != color.RGBAModel {
		t.Error("ColorModel should be RGBAModel")
	}
}

func TestPixmapSavePNG(t *testing.T) {
	pm := NewPixmap(4, 4)
	pm.Fill(pm.Rect(), [4]uint8{255, 255, 255, 255})
	if err := pm.SavePNG(filepath.Join(t.TempDir(), "out.png")); err != nil {
		t.Fatalf("SavePNG() = %v", err)
	}
	if err := pm.SavePNG(filepath.Join(t.TempDir(), "missing", "out.png")); err == nil {
		t.Error("SavePNG into a missing directory should fail")
	}
}
