package imaging

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// minOCRWidth is the width small images are enlarged to before text
// recognition. Tesseract loses accuracy on glyphs only a few pixels high.
const minOCRWidth = 1200

// maxOCRScale bounds the enlargement of tiny images.
const maxOCRScale = 4.0

// PrepareForOCR returns img as a grayscale, contrast-stretched PNG, enlarged
// when it is narrower than minOCRWidth.
func PrepareForOCR(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.Wrap(ErrUnsupportedImage, "image has no pixels")
	}

	prepared := imaging.Grayscale(img)
	if w := bounds.Dx(); w < minOCRWidth {
		scale := float64(minOCRWidth) / float64(w)
		if scale > maxOCRScale {
			scale = maxOCRScale
		}
		newWidth := int(float64(w) * scale)
		newHeight := int(float64(bounds.Dy()) * scale)
		prepared = imaging.Resize(prepared, newWidth, newHeight, imaging.Lanczos)
	}
	prepared = imaging.AdjustContrast(prepared, 20)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, prepared, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "failed to encode image for OCR")
	}
	return buf.Bytes(), nil
}
