// Package ocr recognizes text in images using the Tesseract OCR engine
// through gosseract.
//
// Recognition needs cgo and the Tesseract libraries:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Builds without cgo compile a stub whose Recognize always returns
// ErrUnavailable, so the rest of the server works without Tesseract.
//
// # Languages
//
// Languages are Tesseract codes such as "eng", "deu" or "chi_sim". Several
// languages are joined with "+", e.g. "eng+deu". The training data for each
// language must be installed; TESSDATA_PREFIX selects a non-default location.
package ocr
