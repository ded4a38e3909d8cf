package imaging

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/transform"
	"github.com/lucasb-eyer/go-colorful"
)

// sampleSide is the longest side images are reduced to before colours are
// counted.
const sampleSide = 64

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of sampled pixels with this color (0-100)
	HSL        HSLColor `json:"hsl"`
}

// DominantColors returns up to count of the most common colors in img,
// sorted by frequency in descending order.
//
// # Color Quantization
//
// To group similar colors, each RGB component is divided by 16 and rounded
// down before counting:
//
//	quantized = (original / 16) * 16
//
// For example, colors #F0F0F0 and #FAFAFA are both counted as #F0F0F0.
// Fully transparent pixels are skipped.
//
// # Performance
//
// Images larger than 64 pixels on either side are downsampled first, so the
// cost does not depend on the image size. Percentages are relative to the
// downsampled pixels.
func DominantColors(img image.Image, count int) []ColorFrequency {
	if count <= 0 {
		return nil
	}
	img = downsample(img)
	bounds := img.Bounds()

	counts := make(map[color.RGBA]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			// Quantize to reduce color space (group similar colors)
			key := color.RGBA{
				R: uint8((r >> 8) / 16 * 16),
				G: uint8((g >> 8) / 16 * 16),
				B: uint8((b >> 8) / 16 * 16),
				A: 0xFF,
			}
			counts[key]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		cf, _ := colorful.MakeColor(c)
		h, s, l := cf.Hsl()
		colors = append(colors, ColorFrequency{
			Hex:        cf.Hex(),
			Percentage: float64(n) / float64(total) * 100,
			HSL: HSLColor{
				H: int(math.Round(h)) % 360,
				S: int(math.Round(s * 100)),
				L: int(math.Round(l * 100)),
			},
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}
	return colors
}

// downsample shrinks img so that neither side exceeds sampleSide, keeping
// the aspect ratio.
func downsample(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= sampleSide && h <= sampleSide {
		return img
	}

	if w >= h {
		h = max(1, h*sampleSide/w)
		w = sampleSide
	} else {
		w = max(1, w*sampleSide/h)
		h = sampleSide
	}
	return transform.Resize(img, w, h, transform.NearestNeighbor)
}
