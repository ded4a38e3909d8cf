//go:build cgo

package ocr

import (
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pkg/errors"
)

// Available reports whether this build can recognize text.
func Available() bool { return true }

// Recognize performs OCR on encoded image bytes (PNG, JPEG, TIFF or BMP).
//
// If word-level bounding box extraction fails, which happens with some
// Tesseract configurations, the text is still returned with no words.
func Recognize(image []byte, language string) (*Result, error) {
	langs, err := ParseLanguages(language)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(langs...); err != nil {
		return nil, errors.Wrap(err, "failed to set language")
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, errors.Wrap(err, "failed to set image")
	}

	text, err := client.Text()
	if err != nil {
		return nil, errors.Wrap(err, "failed to recognize text")
	}
	result := &Result{Text: strings.TrimSpace(text), Words: []Word{}}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		result.Words = append(result.Words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return result, nil
}
