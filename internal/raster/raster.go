// Package raster produces coverage masks for stroke geometry on a pixel
// window using golang.org/x/image/vector area accumulation.
//
// Masks are row-major, one byte per pixel, w*h long. A window origin
// (ox, oy) maps canvas coordinates into the mask: canvas point (x, y)
// lands at mask point (x-ox, y-oy).
package raster

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// Window is a pixel rectangle of a canvas. X and Y are the canvas
// coordinates of the top-left mask pixel.
type Window struct {
	X, Y int
	W, H int
}

// Empty reports whether the window has no pixels.
func (w Window) Empty() bool { return w.W <= 0 || w.H <= 0 }

func newRasterizer(win Window) *vector.Rasterizer {
	z := vector.NewRasterizer(win.W, win.H)
	z.DrawOp = draw.Src
	return z
}

func drawMask(z *vector.Rasterizer, win Window) []byte {
	dst := image.NewAlpha(image.Rect(0, 0, win.W, win.H))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst.Pix
}

// Contours rasterizes the union of closed contours. Each contour is a
// flat x,y coordinate list. Overlapping contours use the nonzero rule, so
// self-intersecting outlines fill their full silhouette.
func Contours(contours [][]float64, win Window) []byte {
	if win.Empty() {
		return nil
	}
	z := newRasterizer(win)
	ox, oy := float64(win.X), float64(win.Y)
	for _, c := range contours {
		n := len(c) / 2
		if n < 3 {
			continue
		}
		z.MoveTo(float32(c[0]-ox), float32(c[1]-oy))
		for i := 1; i < n; i++ {
			z.LineTo(float32(c[2*i]-ox), float32(c[2*i+1]-oy))
		}
		z.ClosePath()
	}
	return drawMask(z, win)
}

// Triangles rasterizes an indexed triangle list as a union. Every
// triangle is emitted counter-clockwise so that overlapping triangles add
// instead of cancelling.
func Triangles(coords []float64, indices []uint32, win Window) []byte {
	if win.Empty() {
		return nil
	}
	z := newRasterizer(win)
	ox, oy := float64(win.X), float64(win.Y)
	nv := uint32(len(coords) / 2)
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		if a >= nv || b >= nv || c >= nv {
			continue
		}
		ax, ay := coords[2*a]-ox, coords[2*a+1]-oy
		bx, by := coords[2*b]-ox, coords[2*b+1]-oy
		cx, cy := coords[2*c]-ox, coords[2*c+1]-oy
		area := (bx-ax)*(cy-ay) - (cx-ax)*(by-ay)
		if area == 0 {
			continue
		}
		if area < 0 {
			bx, by, cx, cy = cx, cy, bx, by
		}
		z.MoveTo(float32(ax), float32(ay))
		z.LineTo(float32(bx), float32(by))
		z.LineTo(float32(cx), float32(cy))
		z.ClosePath()
	}
	return drawMask(z, win)
}

// Threshold turns area coverage into a hard interior mask: pixels at
// least half covered become 255, all others 0.
func Threshold(mask []byte) {
	for i, v := range mask {
		if v >= 128 {
			mask[i] = 255
		} else {
			mask[i] = 0
		}
	}
}

// Inside reports whether the mask marks canvas pixel (x, y) as interior.
// Pixels outside the window are exterior.
func Inside(mask []byte, win Window, x, y int) bool {
	mx, my := x-win.X, y-win.Y
	if mx < 0 || my < 0 || mx >= win.W || my >= win.H {
		return false
	}
	return mask[my*win.W+mx] >= 128
}
