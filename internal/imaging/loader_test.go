package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"golang.org/x/image/bmp"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// withPHYs inserts a pHYs chunk after the IHDR chunk of a PNG.
func withPHYs(t *testing.T, data []byte, ppmX, ppmY uint32, unit byte) []byte {
	t.Helper()
	body := make([]byte, 9)
	binary.BigEndian.PutUint32(body[0:], ppmX)
	binary.BigEndian.PutUint32(body[4:], ppmY)
	body[8] = unit

	chunk := make([]byte, 0, 21)
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(body)))
	chunk = append(chunk, "pHYs"...)
	chunk = append(chunk, body...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	out := append([]byte{}, data[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, data[ihdrEnd:]...)
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

// withJFIF inserts a JFIF APP0 segment after the SOI marker of a JPEG.
func withJFIF(data []byte, units byte, x, y uint16) []byte {
	seg := []byte{0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, units}
	seg = binary.BigEndian.AppendUint16(seg, x)
	seg = binary.BigEndian.AppendUint16(seg, y)
	seg = append(seg, 0x00, 0x00)

	out := append([]byte{}, data[:2]...)
	out = append(out, seg...)
	return append(out, data[2:]...)
}

func TestDecode_Formats(t *testing.T) {
	img := createPatternImage(20, 10)

	var gifBuf, bmpBuf bytes.Buffer
	if err := gif.Encode(&gifBuf, img, nil); err != nil {
		t.Fatalf("failed to encode GIF: %v", err)
	}
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatalf("failed to encode BMP: %v", err)
	}

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"png", encodePNG(t, img), "png"},
		{"jpeg", encodeJPEG(t, img), "jpeg"},
		{"gif", gifBuf.Bytes(), "gif"},
		{"bmp", bmpBuf.Bytes(), "bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			info := d.Info()
			if info.Format != tt.format {
				t.Errorf("Format: got %s, want %s", info.Format, tt.format)
			}
			if info.Width != 20 || info.Height != 10 {
				t.Errorf("size: got %dx%d, want 20x10", info.Width, info.Height)
			}
			if info.DPIX != DefaultDPI || info.DPIY != DefaultDPI {
				t.Errorf("DPI: got %dx%d, want default", info.DPIX, info.DPIY)
			}
			if info.SizeBytes != len(tt.data) {
				t.Errorf("SizeBytes: got %d, want %d", info.SizeBytes, len(tt.data))
			}
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not an image"), []byte("\x89PNG\r\n\x1a\n")} {
		if _, err := Decode(data); !errors.Is(err, ErrUnsupportedImage) {
			t.Errorf("Decode(%q) error = %v, want ErrUnsupportedImage", data, err)
		}
	}
}

func TestDecode_PNGResolution(t *testing.T) {
	base := encodePNG(t, createInMemoryImage(4, 4, color.Black))

	tests := []struct {
		name         string
		data         []byte
		wantX, wantY int
	}{
		{"no pHYs", base, 72, 72},
		{"300 dpi", withPHYs(t, base, 11811, 11811, 1), 300, 300},
		{"anisotropic", withPHYs(t, base, 5906, 3937, 1), 150, 100},
		{"unknown unit", withPHYs(t, base, 11811, 11811, 0), 72, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if d.DPIX != tt.wantX || d.DPIY != tt.wantY {
				t.Errorf("DPI: got %dx%d, want %dx%d", d.DPIX, d.DPIY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestDecode_JPEGResolution(t *testing.T) {
	base := encodeJPEG(t, createInMemoryImage(8, 8, color.White))

	tests := []struct {
		name         string
		data         []byte
		wantX, wantY int
	}{
		{"no JFIF", base, 72, 72},
		{"dots per inch", withJFIF(base, 1, 200, 100), 200, 100},
		{"dots per cm", withJFIF(base, 2, 118, 118), 300, 300},
		{"aspect only", withJFIF(base, 0, 1, 1), 72, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if d.DPIX != tt.wantX || d.DPIY != tt.wantY {
				t.Errorf("DPI: got %dx%d, want %dx%d", d.DPIX, d.DPIY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestInfo_ColorDepth(t *testing.T) {
	tests := []struct {
		name      string
		img       image.Image
		wantDepth string
		wantAlpha bool
	}{
		{"RGBA", image.NewRGBA(image.Rect(0, 0, 1, 1)), "8-bit", true},
		{"NRGBA64", image.NewNRGBA64(image.Rect(0, 0, 1, 1)), "16-bit", true},
		{"Gray16", image.NewGray16(image.Rect(0, 0, 1, 1)), "16-bit", false},
		{"Gray", image.NewGray(image.Rect(0, 0, 1, 1)), "8-bit", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := (&Decoded{Image: tt.img}).Info()
			if info.ColorDepth != tt.wantDepth {
				t.Errorf("ColorDepth: got %s, want %s", info.ColorDepth, tt.wantDepth)
			}
			if info.HasAlpha != tt.wantAlpha {
				t.Errorf("HasAlpha: got %v, want %v", info.HasAlpha, tt.wantAlpha)
			}
		})
	}
}

func TestCache(t *testing.T) {
	cache := NewCache()
	data := encodePNG(t, createInMemoryImage(5, 5, color.White))

	first, err := cache.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	second, err := cache.Decode(append([]byte{}, data...))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if first != second {
		t.Error("identical bytes should return the cached decoding")
	}

	if _, err := cache.Decode([]byte("junk")); err == nil {
		t.Error("Decode should fail for junk")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1 (failures are not cached)", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache()
	data := encodePNG(t, createPatternImage(16, 16))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Decode(data); err != nil {
				t.Errorf("Decode failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}
