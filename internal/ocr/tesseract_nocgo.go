//go:build !cgo

package ocr

// Available reports whether this build can recognize text.
func Available() bool { return false }

// Recognize always fails with ErrUnavailable in builds without cgo.
func Recognize(image []byte, language string) (*Result, error) {
	if _, err := ParseLanguages(language); err != nil {
		return nil, err
	}
	return nil, ErrUnavailable
}
