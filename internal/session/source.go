package session

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ImageSource is where the bytes of an image come from: a PathSource or an
// InlineSource.
type ImageSource interface {
	read() ([]byte, error)
	describe() string
}

// PathSource reads the image from a file.
type PathSource struct {
	Path string
}

func (s PathSource) read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "image %s", s.Path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading image")
	}
	return data, nil
}

func (s PathSource) describe() string { return "file " + s.Path }

// InlineSource carries the image bytes directly.
type InlineSource struct {
	Data []byte
}

func (s InlineSource) read() ([]byte, error) { return s.Data, nil }

func (s InlineSource) describe() string { return "inline data" }

// Source kinds accepted by ParseImageSource.
const (
	SourceAuto   = "auto"
	SourcePath   = "path"
	SourceBase64 = "base64"
)

// ParseImageSource builds an ImageSource from a tool argument.
//
// With SourcePath the value is a file path and with SourceBase64 it is
// Base64 image data, optionally as a data URL. SourceAuto (or "") treats the
// value as a path when such a file exists and as Base64 otherwise.
func ParseImageSource(kind, value string) (ImageSource, error) {
	switch strings.ToLower(kind) {
	case SourcePath:
		return PathSource{Path: value}, nil
	case SourceBase64:
		return decodeInline(value)
	case SourceAuto, "":
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return PathSource{Path: value}, nil
		}
		src, err := decodeInline(value)
		if err != nil {
			return nil, errors.Wrap(err, "image source is neither an existing file nor Base64 data")
		}
		return src, nil
	default:
		return nil, errors.Wrapf(ErrValidation, "unknown source type %q (want auto, path or base64)", kind)
	}
}

// decodeInline decodes padded or unpadded standard Base64, ignoring
// whitespace and a leading data URL header.
func decodeInline(value string) (InlineSource, error) {
	s := value
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			s = s[i+len(";base64,"):]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return InlineSource{}, errors.Wrap(ErrValidation, "empty image data")
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return InlineSource{}, errors.Wrapf(ErrValidation, "invalid Base64 image data: %v", err)
	}
	return InlineSource{Data: data}, nil
}
