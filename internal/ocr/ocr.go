package ocr

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// DefaultLanguage is used when no language is given.
const DefaultLanguage = "eng"

var (
	// ErrUnavailable is returned when the binary was built without Tesseract.
	ErrUnavailable = errors.New("OCR is not available in this build")

	// ErrInvalidLanguage is returned for malformed language codes.
	ErrInvalidLanguage = errors.New("invalid OCR language")
)

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is a recognized word with its location and confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result contains the text recognized in one image.
type Result struct {
	// Text is all recognized text with the engine's spacing and newlines,
	// trimmed of surrounding whitespace.
	Text string `json:"text"`

	// Words may be empty when word boxes are unavailable; Text is still set.
	Words []Word `json:"words"`
}

var languagePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\+[A-Za-z][A-Za-z0-9_]*)*$`)

// ParseLanguages splits a language specification like "eng+deu" into the
// codes Tesseract expects. An empty specification means DefaultLanguage.
func ParseLanguages(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return []string{DefaultLanguage}, nil
	}
	if !languagePattern.MatchString(spec) {
		return nil, errors.Wrapf(ErrInvalidLanguage, "%q", spec)
	}
	return strings.Split(spec, "+"), nil
}
