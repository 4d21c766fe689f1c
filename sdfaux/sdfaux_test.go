package sdfaux

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	glms3 "github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/sdfeval"
	"github.com/soypat/sdfray/section"
)

func TestColorConversionInigoQuilez(t *testing.T) {
	conv := ColorConversionInigoQuilez(1)
	if got := conv(math32.NaN()); got != red {
		t.Errorf("NaN: got %v, want red", got)
	}
	if got := conv(0).(color.RGBA); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("surface: got %v, want white", got)
	}
	in := conv(-0.5).(color.RGBA)
	out := conv(0.5).(color.RGBA)
	if in.B <= in.R {
		t.Errorf("interior should be blue, got %v", in)
	}
	if out.R <= out.B {
		t.Errorf("exterior should be orange, got %v", out)
	}
}

func TestColorConversionBlackWhite(t *testing.T) {
	hard := ColorConversionBlackWhite(0)
	if hard(-1) != color.Black || hard(1) != color.White {
		t.Error("hard edge colors")
	}
	soft := ColorConversionBlackWhite(2)
	for _, test := range []struct {
		d    float32
		want uint8
	}{
		{d: -5, want: 0},
		{d: 0, want: 127},
		{d: 5, want: 255},
	} {
		if got := soft(test.d).(color.Gray).Y; got != test.want {
			t.Errorf("d=%v: got %d, want %d", test.d, got, test.want)
		}
	}
}

func TestCaption(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 60))
	err := Caption(img, "trace 200x60\n1.2s", CaptionConfig{Background: color.Transparent})
	if err != nil {
		t.Fatal(err)
	}
	lit := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Fatal("caption drew no pixels")
	}
	// Text stays within the top left region.
	if img.RGBAAt(199, 59).A != 0 {
		t.Error("caption drew in bottom right corner")
	}
	if err := Caption(img, "", CaptionConfig{}); err == nil {
		t.Error("expected error for empty caption")
	}
}

func TestRenderPNGFile(t *testing.T) {
	var bld sdfray.Builder
	sdf, err := sdfeval.NewScene([]sdfray.Object{bld.NewSphere(glms3.Vec{}, 1, sdfray.NewMaterial(sdfray.White))})
	if err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), "section.png")
	err = RenderPNGFile(filename, sdf, section.AxisZ, 0, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if sz := img.Bounds().Size(); sz != image.Pt(32, 32) {
		t.Errorf("got size %v", sz)
	}
	if err := RenderPNGFile(filename, sdf, section.AxisZ, 0, 0, nil); err == nil {
		t.Error("expected error for zero height")
	}
}

func TestRenderNormalsPNGFile(t *testing.T) {
	var bld sdfray.Builder
	sdf, err := sdfeval.NewScene([]sdfray.Object{bld.NewSphere(glms3.Vec{}, 1, sdfray.NewMaterial(sdfray.White))})
	if err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), "normals.png")
	err = RenderNormalsPNGFile(filename, sdf, section.AxisZ, 0, 16)
	if err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	img, err := png.Decode(fp)
	if err != nil {
		t.Fatal(err)
	}
	r, _, _, _ := img.At(15, 8).RGBA()
	l, _, _, _ := img.At(0, 8).RGBA()
	if r>>8 < 200 || l>>8 > 55 {
		t.Errorf("normal map red channel: right edge %d, left edge %d", r>>8, l>>8)
	}
}

func TestRGBAPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	if got := rgbaPixels(img); len(got) != 64 || &got[0] != &img.Pix[0] {
		t.Error("packed image should not be copied")
	}
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	got := rgbaPixels(sub)
	if len(got) != 16 {
		t.Fatalf("got %d bytes, want 16", len(got))
	}
	// First pixel of the sub image is pixel (1,1) of the parent.
	if got[0] != img.Pix[img.PixOffset(1, 1)] || got[8] != img.Pix[img.PixOffset(1, 2)] {
		t.Errorf("rows not packed: %v", got)
	}
}

func TestUIConfig(t *testing.T) {
	render := func(ctx context.Context, mode ViewMode) (*image.RGBA, error) { return nil, nil }
	if err := UI(ViewConfig{Width: 0, Height: 10, Render: render}); err == nil {
		t.Error("expected dimension error")
	}
	if err := UI(ViewConfig{Width: 10, Height: 10}); err == nil {
		t.Error("expected nil Render error")
	}
	if ViewTrace.String() != "trace" || ViewMarch.String() != "march" {
		t.Error("view mode names")
	}
}
