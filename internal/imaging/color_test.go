package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestDominantColors(t *testing.T) {
	img := createPatternImage(100, 100)

	colors := DominantColors(img, 10)
	if len(colors) != 4 {
		t.Fatalf("got %d colors, want 4", len(colors))
	}

	want := map[string]bool{"#f0f0f0": true, "#f00000": true, "#00f000": true, "#0000f0": true}
	for _, c := range colors {
		if !want[c.Hex] {
			t.Errorf("unexpected color %s", c.Hex)
		}
		if c.Percentage < 24 || c.Percentage > 26 {
			t.Errorf("%s: percentage %.2f, want about 25", c.Hex, c.Percentage)
		}
	}

	// Ties are ordered by hex so results are stable.
	for i := 1; i < len(colors); i++ {
		if colors[i-1].Percentage == colors[i].Percentage && colors[i-1].Hex > colors[i].Hex {
			t.Errorf("colors %s and %s out of order", colors[i-1].Hex, colors[i].Hex)
		}
	}
}

func TestDominantColors_Limit(t *testing.T) {
	img := createPatternImage(40, 40)
	if got := len(DominantColors(img, 2)); got != 2 {
		t.Errorf("got %d colors, want 2", got)
	}
	if got := DominantColors(img, 0); got != nil {
		t.Errorf("count 0: got %v, want nil", got)
	}
}

func TestDominantColors_Quantization(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{0xFA, 0xFA, 0xFA, 0xFF})
	img.Set(0, 0, color.RGBA{0xF1, 0xF2, 0xF3, 0xFF})

	colors := DominantColors(img, 5)
	if len(colors) != 1 {
		t.Fatalf("got %d colors, want 1", len(colors))
	}
	if colors[0].Hex != "#f0f0f0" {
		t.Errorf("Hex: got %s, want #f0f0f0", colors[0].Hex)
	}
	if colors[0].Percentage != 100 {
		t.Errorf("Percentage: got %v, want 100", colors[0].Percentage)
	}
}

func TestDominantColors_HSL(t *testing.T) {
	colors := DominantColors(createInMemoryImage(4, 4, color.RGBA{0, 0, 0xF0, 0xFF}), 1)
	if len(colors) != 1 {
		t.Fatalf("got %d colors, want 1", len(colors))
	}
	hsl := colors[0].HSL
	if hsl.H != 240 || hsl.S != 100 || hsl.L != 47 {
		t.Errorf("HSL: got %+v, want {240 100 47}", hsl)
	}
}

func TestDominantColors_SkipsTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if got := DominantColors(img, 3); got != nil {
		t.Errorf("fully transparent image: got %v, want nil", got)
	}
}

func TestDownsample(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{10, 10, 10, 10},
		{64, 64, 64, 64},
		{640, 320, 64, 32},
		{100, 1000, 6, 64},
		{1000, 1, 64, 1},
	}

	for _, tt := range tests {
		got := downsample(image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))).Bounds()
		if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
			t.Errorf("downsample(%dx%d) = %dx%d, want %dx%d", tt.w, tt.h, got.Dx(), got.Dy(), tt.wantW, tt.wantH)
		}
	}
}
