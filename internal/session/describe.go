package session

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/docx-tools-mcp/internal/imaging"
	"github.com/ironsheep/docx-tools-mcp/internal/ocr"
)

// dominantColorCount is how many colors each image description lists.
const dominantColorCount = 5

// ImageDescription summarizes one embedded image.
type ImageDescription struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	SizeBytes   int    `json:"size_bytes"`

	// Set when the image decodes.
	Width          int                      `json:"width,omitempty"`
	Height         int                      `json:"height,omitempty"`
	Format         string                   `json:"format,omitempty"`
	DPI            int                      `json:"dpi,omitempty"`
	DominantColors []imaging.ColorFrequency `json:"dominant_colors,omitempty"`

	OCRText string `json:"ocr_text,omitempty"`

	// Error explains why the image could not be analyzed, e.g. a vector
	// format such as EMF.
	Error string `json:"error,omitempty"`
}

// DescribeImages describes every embedded image in relationship order. With
// withOCR set, the text in each image is recognized in the given Tesseract
// language ("" means English).
//
// Images that cannot be decoded are still listed with Error set. OCR failures
// for a single image are reported the same way; a build without OCR support
// fails the whole call.
func (m *Manager) DescribeImages(withOCR bool, language string) ([]ImageDescription, error) {
	doc, err := m.document()
	if err != nil {
		return nil, err
	}
	if withOCR {
		if _, err := ocr.ParseLanguages(language); err != nil {
			return nil, errors.Wrapf(ErrValidation, "%v", err)
		}
	}

	images := doc.Images()
	out := make([]ImageDescription, 0, len(images))
	for _, img := range images {
		desc := ImageDescription{
			Name:        img.Name(),
			ContentType: img.ContentType,
			SizeBytes:   len(img.Data),
		}

		decoded, err := m.images.Decode(img.Data)
		if err != nil {
			desc.Error = err.Error()
			out = append(out, desc)
			continue
		}
		info := decoded.Info()
		desc.Width = info.Width
		desc.Height = info.Height
		desc.Format = info.Format
		desc.DPI = info.DPIX
		desc.DominantColors = imaging.DominantColors(decoded.Image, dominantColorCount)

		if withOCR {
			text, err := m.recognizeText(decoded, language)
			if errors.Is(err, ocr.ErrUnavailable) {
				return nil, err
			}
			if err != nil {
				m.log.Warn("OCR failed", zap.String("image", desc.Name), zap.Error(err))
				desc.Error = err.Error()
			}
			desc.OCRText = text
		}

		out = append(out, desc)
	}
	return out, nil
}

func (m *Manager) recognizeText(decoded *imaging.Decoded, language string) (string, error) {
	prepared, err := imaging.PrepareForOCR(decoded.Image)
	if err != nil {
		return "", err
	}
	result, err := m.recognize(prepared, language)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
