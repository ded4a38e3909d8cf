package session

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/docx-tools-mcp/internal/docx"
	"github.com/ironsheep/docx-tools-mcp/internal/ocr"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func openManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(opts...)
	_, err := m.CreateNew()
	require.NoError(t, err)
	return m
}

func TestOperationsRequireOpenDocument(t *testing.T) {
	m := NewManager()
	assert.False(t, m.IsOpen())

	calls := map[string]func() error{
		"save":          func() error { _, err := m.Save(filepath.Join(t.TempDir(), "x.docx")); return err },
		"structure":     func() error { _, err := m.Structure(); return err },
		"add_paragraph": func() error { _, err := m.AddParagraph("x", ""); return err },
		"add_heading":   func() error { _, err := m.AddHeading("x", 1); return err },
		"add_table":     func() error { _, err := m.AddTable(1, 1, nil); return err },
		"add_image":     func() error { _, err := m.AddImage(InlineSource{Data: []byte{1}}, nil); return err },
		"read_full":     func() error { _, err := m.ReadFullContent(); return err },
		"extract":       func() error { _, err := m.ExtractImages(t.TempDir()); return err },
		"describe":      func() error { _, err := m.DescribeImages(false, ""); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoDocument))
			assert.True(t, errors.Is(err, ErrState))
			assert.Equal(t, "no document open", err.Error())
		})
	}
}

func TestCreateNewThenSave(t *testing.T) {
	m := openManager(t)
	assert.True(t, m.IsOpen())
	assert.Empty(t, m.SourcePath())

	_, err := m.Save("")
	assert.True(t, errors.Is(err, ErrNoSavePath))
	assert.True(t, errors.Is(err, ErrState))

	path := filepath.Join(t.TempDir(), "new.docx")
	msg, err := m.Save(path)
	require.NoError(t, err)
	assert.Equal(t, "Document saved to "+path, msg)
	assert.Equal(t, path, m.SourcePath())

	doc, err := docx.Open(path)
	require.NoError(t, err)
	paragraphs, err := doc.Paragraphs()
	require.NoError(t, err)
	assert.Empty(t, paragraphs)
	assert.Zero(t, doc.TableCount())

	// Saving again without a path reuses the remembered one.
	msg, err = m.Save("")
	require.NoError(t, err)
	assert.Equal(t, "Document saved to "+path, msg)
}

func TestCreateNewClearsSourcePath(t *testing.T) {
	m := openManager(t)
	path := filepath.Join(t.TempDir(), "a.docx")
	_, err := m.Save(path)
	require.NoError(t, err)

	msg, err := m.CreateNew()
	require.NoError(t, err)
	assert.Equal(t, "New document created.", msg)
	assert.Empty(t, m.SourcePath())
}

func TestParagraphRoundTrip(t *testing.T) {
	m := openManager(t)
	msg, err := m.AddParagraph("X", "Normal")
	require.NoError(t, err)
	assert.Equal(t, "Paragraph added. Text: 'X...'", msg)

	path := filepath.Join(t.TempDir(), "round.docx")
	_, err = m.Save(path)
	require.NoError(t, err)

	other := NewManager()
	msg, err = other.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Document loaded: "+path, msg)
	assert.Equal(t, path, other.SourcePath())

	structure, err := other.Structure()
	require.NoError(t, err)
	assert.Equal(t, []ParagraphRecord{{Type: "paragraph", Text: "X", Style: "Normal"}}, structure)
}

func TestAddParagraphPreview(t *testing.T) {
	m := openManager(t)

	msg, err := m.AddParagraph("The quick brown fox jumps over the lazy dog", "")
	require.NoError(t, err)
	assert.Equal(t, "Paragraph added. Text: 'The quick brown fox ...'", msg)

	msg, err = m.AddParagraph("ÄÖÜäöüßÄÖÜäöüßÄÖÜäöüß", "")
	require.NoError(t, err)
	assert.Equal(t, "Paragraph added. Text: 'ÄÖÜäöüßÄÖÜäöüßÄÖÜäöü...'", msg)
}

func TestAddParagraphUnknownStyle(t *testing.T) {
	m := openManager(t)
	_, err := m.AddParagraph("x", "Fancy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, docx.ErrStyleNotFound))
	assert.Contains(t, err.Error(), "no style with name 'Fancy'")
}

func TestAddHeading(t *testing.T) {
	m := openManager(t)

	msg, err := m.AddHeading("Chapter One", 1)
	require.NoError(t, err)
	assert.Equal(t, "Heading added. Text: 'Chapter One'", msg)
	_, err = m.AddHeading("Title", 0)
	require.NoError(t, err)

	for _, level := range []int{-1, 10, 42} {
		_, err := m.AddHeading("bad", level)
		assert.True(t, errors.Is(err, ErrValidation), "level %d", level)
	}

	structure, err := m.Structure()
	require.NoError(t, err)
	assert.Equal(t, []ParagraphRecord{
		{Type: "paragraph", Text: "Chapter One", Style: "Heading 1"},
		{Type: "paragraph", Text: "Title", Style: "Title"},
	}, structure)
}

func TestAddTableRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		data       [][]string
		want       [][]string
	}{
		{
			name: "no data",
			rows: 2, cols: 3,
			want: [][]string{{"", "", ""}, {"", "", ""}},
		},
		{
			name: "partial data",
			rows: 3, cols: 2,
			data: [][]string{{"a", "b"}, {"c"}},
			want: [][]string{{"a", "b"}, {"c", ""}, {"", ""}},
		},
		{
			name: "out of range data ignored",
			rows: 1, cols: 1,
			data: [][]string{{"a", "b"}, {"c"}},
			want: [][]string{{"a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := openManager(t)
			msg, err := m.AddTable(tt.rows, tt.cols, tt.data)
			require.NoError(t, err)
			assert.Equal(t, "Table added.", msg)

			path := filepath.Join(t.TempDir(), "table.docx")
			_, err = m.Save(path)
			require.NoError(t, err)

			loaded := NewManager()
			_, err = loaded.Load(path)
			require.NoError(t, err)
			content, err := loaded.ReadFullContent()
			require.NoError(t, err)
			assert.Equal(t, 1, content.TablesCount)
			require.Len(t, content.Tables, 1)
			assert.Equal(t, tt.want, content.Tables[0])
		})
	}
}

func TestAddTableInvalidSize(t *testing.T) {
	m := openManager(t)
	_, err := m.AddTable(0, 2, nil)
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = m.AddTable(2, -1, nil)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestLoadMissingFileKeepsSession(t *testing.T) {
	m := openManager(t)
	_, err := m.AddParagraph("keep me", "")
	require.NoError(t, err)

	_, err = m.Load(filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	structure, err := m.Structure()
	require.NoError(t, err)
	require.Len(t, structure, 1)
	assert.Equal(t, "keep me", structure[0].Text)
}

func TestLoadCorruptFileKeepsSession(t *testing.T) {
	m := openManager(t)
	path := filepath.Join(t.TempDir(), "corrupt.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := m.Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, docx.ErrInvalidPackage))
	assert.True(t, m.IsOpen())
	assert.Empty(t, m.SourcePath())
}

func TestAddImageSources(t *testing.T) {
	data := pngBytes(t, 144, 72, color.White)
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m := openManager(t)
	for _, src := range []ImageSource{PathSource{Path: path}, InlineSource{Data: data}} {
		msg, err := m.AddImage(src, nil)
		require.NoError(t, err)
		assert.Equal(t, "Image added.", msg)
	}
	width := 3.0
	_, err := m.AddImage(InlineSource{Data: data}, &width)
	require.NoError(t, err)

	summary, err := m.ReadFullContent()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ImagesCount)
	assert.Equal(t, []string{"", "", ""}, summary.Paragraphs)
}

func TestAddImageFailures(t *testing.T) {
	m := openManager(t)
	zero := 0.0

	tests := []struct {
		name  string
		src   ImageSource
		width *float64
		kind  error
	}{
		{"missing file", PathSource{Path: filepath.Join(t.TempDir(), "nope.png")}, nil, ErrNotFound},
		{"not an image", InlineSource{Data: []byte("hello")}, nil, ErrValidation},
		{"zero width", InlineSource{Data: pngBytes(t, 2, 2, color.Black)}, &zero, ErrValidation},
		{"nil source", nil, nil, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddImage(tt.src, tt.width)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}

	summary, err := m.ReadFullContent()
	require.NoError(t, err)
	assert.Zero(t, summary.ImagesCount)
}

func TestExtractImagesMatchesCount(t *testing.T) {
	m := openManager(t)
	_, err := m.AddParagraph("intro", "")
	require.NoError(t, err)
	_, err = m.AddTable(1, 1, [][]string{{"cell"}})
	require.NoError(t, err)
	for _, c := range []color.Color{color.White, color.Black} {
		_, err := m.AddImage(InlineSource{Data: pngBytes(t, 4, 4, c)}, nil)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "images.docx")
	_, err = m.Save(path)
	require.NoError(t, err)
	_, err = m.Load(path)
	require.NoError(t, err)

	summary, err := m.ReadFullContent()
	require.NoError(t, err)
	assert.Equal(t, &ContentSummary{
		Paragraphs:  []string{"intro", "", ""},
		TablesCount: 1,
		ImagesCount: 2,
		Tables:      [][][]string{{{"cell"}}},
	}, summary)

	dir := filepath.Join(t.TempDir(), "nested", "out")
	paths, err := m.ExtractImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "image1.png"), filepath.Join(dir, "image2.png")}, paths)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, summary.ImagesCount)

	written, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t, 4, 4, color.Black), written)
}

func TestDescribeImages(t *testing.T) {
	var gotLanguage string
	fake := func(image []byte, language string) (*ocr.Result, error) {
		gotLanguage = language
		return &ocr.Result{Text: "HELLO"}, nil
	}
	m := openManager(t, WithRecognizer(fake))
	_, err := m.AddImage(InlineSource{Data: pngBytes(t, 10, 5, color.RGBA{0, 0, 0xF0, 0xFF})}, nil)
	require.NoError(t, err)

	descs, err := m.DescribeImages(false, "")
	require.NoError(t, err)
	require.Len(t, descs, 1)
	d := descs[0]
	assert.Equal(t, "image1.png", d.Name)
	assert.Equal(t, "image/png", d.ContentType)
	assert.Equal(t, 10, d.Width)
	assert.Equal(t, 5, d.Height)
	assert.Equal(t, "png", d.Format)
	assert.Equal(t, 72, d.DPI)
	require.NotEmpty(t, d.DominantColors)
	assert.Equal(t, "#0000f0", d.DominantColors[0].Hex)
	assert.Empty(t, d.OCRText)

	descs, err = m.DescribeImages(true, "deu")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", descs[0].OCRText)
	assert.Equal(t, "deu", gotLanguage)

	_, err = m.DescribeImages(true, "bad language!")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestDescribeImagesOCRFailures(t *testing.T) {
	data := pngBytes(t, 3, 3, color.White)

	failing := func([]byte, string) (*ocr.Result, error) { return nil, errors.New("engine exploded") }
	m := openManager(t, WithRecognizer(failing))
	_, err := m.AddImage(InlineSource{Data: data}, nil)
	require.NoError(t, err)

	descs, err := m.DescribeImages(true, "")
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "engine exploded", descs[0].Error)
	assert.Equal(t, 3, descs[0].Width)

	unavailable := func([]byte, string) (*ocr.Result, error) { return nil, ocr.ErrUnavailable }
	m = openManager(t, WithRecognizer(unavailable))
	_, err = m.AddImage(InlineSource{Data: data}, nil)
	require.NoError(t, err)
	_, err = m.DescribeImages(true, "")
	assert.True(t, errors.Is(err, ocr.ErrUnavailable))
}

func TestParseImageSource(t *testing.T) {
	data := pngBytes(t, 2, 2, color.White)
	encoded := base64.StdEncoding.EncodeToString(data)
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	tests := []struct {
		name     string
		kind     string
		value    string
		wantPath bool
		wantErr  error
	}{
		{"auto existing path", "", path, true, nil},
		{"auto base64", "auto", encoded, false, nil},
		{"auto garbage", "auto", "definitely not base64!", false, ErrValidation},
		{"explicit path even if missing", "path", "/missing.png", true, nil},
		{"explicit base64", "BASE64", encoded, false, nil},
		{"unpadded base64", "base64", strings.TrimRight(encoded, "="), false, nil},
		{"data url", "base64", "data:image/png;base64," + encoded, false, nil},
		{"wrapped base64", "base64", encoded[:10] + "\n" + encoded[10:], false, nil},
		{"empty base64", "base64", "  ", false, ErrValidation},
		{"unknown kind", "url", "http://example.com/a.png", false, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ParseImageSource(tt.kind, tt.value)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)

			if tt.wantPath {
				assert.IsType(t, PathSource{}, src)
				return
			}
			require.IsType(t, InlineSource{}, src)
			assert.Equal(t, data, src.(InlineSource).Data)
		})
	}
}
