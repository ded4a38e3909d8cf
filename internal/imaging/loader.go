package imaging

import (
	"bytes"
	"crypto/sha256"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"sync"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultDPI is the resolution assumed when an image does not record one.
const DefaultDPI = 72

// ErrUnsupportedImage is returned for bytes that no registered decoder accepts.
var ErrUnsupportedImage = errors.New("unsupported image data")

// Decoded is a decoded image together with what the file says about itself.
type Decoded struct {
	// Image is the decoded pixel data.
	Image image.Image

	// Format is the name the decoder registered: "png", "jpeg", "gif", "bmp",
	// "tiff" or "webp".
	Format string

	// DPIX and DPIY are the horizontal and vertical resolution. Images that do
	// not record a resolution report DefaultDPI.
	DPIX, DPIY int

	// Size is the length of the encoded data in bytes.
	Size int
}

// Decode decodes image bytes in any registered format.
//
// The resolution is read from the PNG pHYs chunk or the JPEG JFIF header;
// every other format, and files without that metadata, report DefaultDPI.
func Decode(data []byte) (*Decoded, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedImage, "decoding image: %v", err)
	}

	dpiX, dpiY := DefaultDPI, DefaultDPI
	switch format {
	case "png":
		dpiX, dpiY = pngDPI(data)
	case "jpeg":
		dpiX, dpiY = jpegDPI(data)
	}

	return &Decoded{
		Image:  img,
		Format: format,
		DPIX:   dpiX,
		DPIY:   dpiY,
		Size:   len(data),
	}, nil
}

// Cache provides thread-safe caching of decoded images keyed by the SHA-256
// digest of their encoded bytes.
//
// Documents often embed the same picture more than once, and describing a
// document decodes every embedded picture. The cache lets repeated content
// decode once.
//
// Cache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Entries stay in memory until Clear is called. Callers that work on one
// document at a time should clear the cache when the document changes.
type Cache struct {
	mu     sync.RWMutex
	images map[[sha256.Size]byte]*Decoded
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		images: make(map[[sha256.Size]byte]*Decoded),
	}
}

// Decode returns the cached decoding of data, decoding it on first use.
// Decode failures are not cached.
func (c *Cache) Decode(data []byte) (*Decoded, error) {
	key := sha256.Sum256(data)

	c.mu.RLock()
	if d, ok := c.images[key]; ok {
		c.mu.RUnlock()
		return d, nil
	}
	c.mu.RUnlock()

	d, err := Decode(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[key] = d
	c.mu.Unlock()

	return d, nil
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.images = make(map[[sha256.Size]byte]*Decoded)
	c.mu.Unlock()
}

// Info contains metadata about a decoded image.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format, taken from the file contents.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// DPIX and DPIY are the recorded resolution.
	DPIX int `json:"dpi_x"`
	DPIY int `json:"dpi_y"`

	// SizeBytes is the size of the encoded image in bytes.
	SizeBytes int `json:"size_bytes"`
}

// Info returns the metadata of the decoded image.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func (d *Decoded) Info() Info {
	hasAlpha := false
	colorDepth := "8-bit"
	switch d.Image.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := d.Image.Bounds()
	return Info{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     d.Format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		DPIX:       d.DPIX,
		DPIY:       d.DPIY,
		SizeBytes:  d.Size,
	}
}
