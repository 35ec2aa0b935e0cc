package ink

import "testing"

func near(a, b byte) bool { return a-b <= 1 || b-a <= 1 }

func TestCompositorDirtyTracking(t *testing.T) {
	stack, _ := NewLayerStack(16, 16)
	stack.Background = White
	c := NewCompositor(NewSoftwareBackend(), 16, 16, nil)

	if got := c.Dirty(stack); got != stack.Bounds() {
		t.Fatalf("first Dirty = %v, want full frame", got)
	}
	frame, err := c.Composite(stack)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Pixel(5, 5) != [4]byte{255, 255, 255, 255} {
		t.Fatalf("background = %v", frame.Pixel(5, 5))
	}
	if !c.Dirty(stack).Empty() {
		t.Fatal("nothing should be dirty after Composite")
	}

	l := stack.Active()
	l.Buffer().SetPixel(3, 3, [4]byte{0, 0, 0, 255})
	frame, _ = c.Composite(stack)
	if frame.Pixel(3, 3) != [4]byte{255, 255, 255, 255} {
		t.Error("unmarked change must not be recomposited")
	}

	c.MarkDirty(l, XYWH(3, 3, 1, 1))
	c.MarkDirty(l, EmptyRect())
	if got := c.Dirty(stack); got != XYWH(3, 3, 1, 1) {
		t.Fatalf("Dirty = %v", got)
	}
	frame, _ = c.Composite(stack)
	if frame.Pixel(3, 3) != [4]byte{0, 0, 0, 255} {
		t.Errorf("marked pixel = %v, want black", frame.Pixel(3, 3))
	}
	if !l.Dirty().Empty() {
		t.Error("layer dirty rect should be cleared")
	}

	c.Invalidate()
	if got := c.Dirty(stack); got != stack.Bounds() {
		t.Errorf("Dirty after Invalidate = %v", got)
	}
}

func TestCompositorLayerProperties(t *testing.T) {
	tests := []struct {
		name    string
		visible bool
		opacity float64
		blend   BlendMode
		want    [4]byte
	}{
		{"opaque", true, 1, Normal, [4]byte{255, 0, 0, 255}},
		{"hidden", false, 1, Normal, [4]byte{255, 255, 255, 255}},
		{"zero opacity", true, 0, Normal, [4]byte{255, 255, 255, 255}},
		{"half opacity", true, 0.5, Normal, [4]byte{255, 127, 127, 255}},
		{"multiply", true, 1, Multiply, [4]byte{255, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack, _ := NewLayerStack(4, 4)
			stack.Background = White
			l := stack.Active()
			l.Buffer().Fill(l.Buffer().Rect(), [4]byte{255, 0, 0, 255})
			l.visible, l.Opacity, l.Blend = tt.visible, tt.opacity, tt.blend

			frame, err := NewCompositor(NewSoftwareBackend(), 4, 4, nil).Composite(stack)
			if err != nil {
				t.Fatal(err)
			}
			got := frame.Pixel(1, 1)
			for i := range got {
				if !near(got[i], tt.want[i]) {
					t.Fatalf("pixel = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCompositorRejectsMismatchedFrame(t *testing.T) {
	stack, _ := NewLayerStack(8, 8)
	c := NewCompositor(NewSoftwareBackend(), 4, 4, nil)
	if _, err := c.Composite(stack); err == nil {
		t.Error("expected an error for a frame smaller than the canvas")
	}
}
