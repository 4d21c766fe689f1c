package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/soypat/sdfray"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 10, A: 255})
		}
	}
	return img
}

func TestImageSampling(t *testing.T) {
	tex, err := New(checker(4, 2), 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		u, v float32
		want sdfray.Color
	}{
		{u: 0, v: 0, want: sdfray.RGB8(0, 0, 10)},
		{u: 0.3, v: 0.6, want: sdfray.RGB8(40, 40, 10)},
		{u: 0.99, v: 0.99, want: sdfray.RGB8(120, 40, 10)},
		// Out of range coordinates clamp to the edges.
		{u: 1.5, v: -1, want: sdfray.RGB8(120, 0, 10)},
	} {
		if got := tex.At(test.u, test.v); got != test.want {
			t.Errorf("At(%v,%v) = %v, want %v", test.u, test.v, got, test.want)
		}
	}
	if got := tex.Brightness(0.99, 0); got != float32(120)/255 {
		t.Errorf("got brightness %v", got)
	}
}

func TestNewDownscales(t *testing.T) {
	tex, err := New(checker(8, 4), 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := tex.Bounds().Size(); got != image.Pt(4, 2) {
		t.Errorf("got size %v, want 4x2", got)
	}
	if _, err := New(image.NewRGBA(image.Rectangle{}), 0); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	err := png.Encode(&buf, checker(3, 3))
	if err != nil {
		t.Fatal(err)
	}
	tex, err := Decode(&buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := tex.At(0.5, 0.5); got != sdfray.RGB8(40, 40, 10) {
		t.Errorf("decoded center %v", got)
	}
	_, err = Decode(strings.NewReader("not an image"), 0)
	if err == nil {
		t.Error("expected decode error")
	}
}
