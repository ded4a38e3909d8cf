package imaging

import (
	"bytes"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// EMUsPerInch is the number of English Metric Units in one inch.
const EMUsPerInch = 914400

// ErrInvalidSize is returned for a requested display size that is not positive.
var ErrInvalidSize = errors.New("invalid image size")

// Embeddable is an image in a format word processors render directly.
type Embeddable struct {
	Data        []byte
	Ext         string
	ContentType string

	WidthPx, HeightPx int
	DPIX, DPIY        int
}

// embeddedFormats maps the formats that are stored unchanged to their
// extension and content type.
var embeddedFormats = map[string]struct{ ext, contentType string }{
	"png":  {"png", "image/png"},
	"jpeg": {"jpeg", "image/jpeg"},
	"gif":  {"gif", "image/gif"},
}

// PrepareEmbed decodes data and returns it ready for embedding.
//
// PNG, JPEG and GIF data is kept byte-for-byte. BMP, TIFF and WebP are
// re-encoded as PNG after applying any EXIF orientation; the result carries
// DefaultDPI.
func PrepareEmbed(cache *Cache, data []byte) (*Embeddable, error) {
	decoded, err := cache.Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := decoded.Image.Bounds()
	if f, ok := embeddedFormats[decoded.Format]; ok {
		return &Embeddable{
			Data:        data,
			Ext:         f.ext,
			ContentType: f.contentType,
			WidthPx:     bounds.Dx(),
			HeightPx:    bounds.Dy(),
			DPIX:        decoded.DPIX,
			DPIY:        decoded.DPIY,
		}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedImage, "decoding %s image: %v", decoded.Format, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "encoding image as PNG")
	}

	b := img.Bounds()
	return &Embeddable{
		Data:        buf.Bytes(),
		Ext:         "png",
		ContentType: "image/png",
		WidthPx:     b.Dx(),
		HeightPx:    b.Dy(),
		DPIX:        DefaultDPI,
		DPIY:        DefaultDPI,
	}, nil
}

// NativeSizeEMU returns the size the image has at its recorded resolution.
func (e *Embeddable) NativeSizeEMU() (int64, int64) {
	return pxToEMU(e.WidthPx, e.DPIX), pxToEMU(e.HeightPx, e.DPIY)
}

// SizeEMU returns the display size. A nil width keeps the native size; a
// width in inches scales the height to preserve the aspect ratio.
func (e *Embeddable) SizeEMU(widthInches *float64) (int64, int64, error) {
	w, h := e.NativeSizeEMU()
	if widthInches == nil {
		return w, h, nil
	}
	if *widthInches <= 0 || math.IsNaN(*widthInches) || math.IsInf(*widthInches, 0) {
		return 0, 0, errors.Wrapf(ErrInvalidSize, "width must be a positive number of inches, got %v", *widthInches)
	}

	width := int64(*widthInches * EMUsPerInch)
	if width == 0 || w == 0 {
		return 0, 0, errors.Wrapf(ErrInvalidSize, "width %v inches is too small", *widthInches)
	}
	height := int64(math.Round(float64(h) * float64(width) / float64(w)))
	if height < 1 {
		height = 1
	}
	return width, height, nil
}

func pxToEMU(px, dpi int) int64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return int64(float64(px) / float64(dpi) * EMUsPerInch)
}
