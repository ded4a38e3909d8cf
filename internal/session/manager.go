package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/docx-tools-mcp/internal/docx"
	"github.com/ironsheep/docx-tools-mcp/internal/imaging"
	"github.com/ironsheep/docx-tools-mcp/internal/ocr"
)

// DefaultTableStyle is applied to every table the manager adds.
const DefaultTableStyle = "Table Grid"

// previewLength is how many characters of a paragraph the confirmation echoes.
const previewLength = 20

// Recognizer performs OCR on encoded image bytes.
type Recognizer func(image []byte, language string) (*ocr.Result, error)

// Manager owns the single open document of a server.
//
// Manager is not safe for concurrent use; callers serialize access.
type Manager struct {
	doc        *docx.Document
	sourcePath string

	images    *imaging.Cache
	recognize Recognizer
	log       *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithRecognizer replaces the OCR engine used by DescribeImages.
func WithRecognizer(r Recognizer) Option {
	return func(m *Manager) { m.recognize = r }
}

// NewManager returns a manager with no open document.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		images:    imaging.NewCache(),
		recognize: ocr.Recognize,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsOpen reports whether a document is open.
func (m *Manager) IsOpen() bool { return m.doc != nil }

// SourcePath returns the path the document was loaded from or last saved to.
func (m *Manager) SourcePath() string { return m.sourcePath }

func (m *Manager) document() (*docx.Document, error) {
	if m.doc == nil {
		return nil, errors.WithStack(ErrNoDocument)
	}
	return m.doc, nil
}

// replace installs doc as the open document.
func (m *Manager) replace(doc *docx.Document, path string) {
	m.doc = doc
	m.sourcePath = path
	m.images.Clear()
}

// CreateNew replaces the open document with an empty one.
func (m *Manager) CreateNew() (string, error) {
	doc, err := docx.New()
	if err != nil {
		return "", err
	}
	m.replace(doc, "")
	m.log.Info("created new document")
	return "New document created.", nil
}

// Load opens the document at path. On any failure the previously open
// document stays open.
func (m *Manager) Load(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.Wrapf(ErrNotFound, "loading %s", path)
		}
		return "", errors.Wrapf(err, "loading %s", path)
	}

	doc, err := docx.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "loading %s", path)
	}
	m.replace(doc, path)
	m.log.Info("loaded document", zap.String("path", path))
	return fmt.Sprintf("Document loaded: %s", path), nil
}

// Save writes the document to path, or to the remembered source path when
// path is empty, and remembers the target.
func (m *Manager) Save(path string) (string, error) {
	doc, err := m.document()
	if err != nil {
		return "", err
	}

	target := path
	if target == "" {
		target = m.sourcePath
	}
	if target == "" {
		return "", errors.WithStack(ErrNoSavePath)
	}

	if err := doc.Save(target); err != nil {
		return "", errors.Wrapf(err, "saving %s", target)
	}
	m.sourcePath = target
	m.log.Info("saved document", zap.String("path", target))
	return fmt.Sprintf("Document saved to %s", target), nil
}

// ParagraphRecord is one entry of the document structure.
type ParagraphRecord struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Style string `json:"style"`
}

// Structure lists the top-level paragraphs in document order. Tables are
// counted by ReadFullContent but not listed here.
func (m *Manager) Structure() ([]ParagraphRecord, error) {
	doc, err := m.document()
	if err != nil {
		return nil, err
	}

	paragraphs, err := doc.Paragraphs()
	if err != nil {
		return nil, err
	}
	out := make([]ParagraphRecord, 0, len(paragraphs))
	for _, p := range paragraphs {
		out = append(out, ParagraphRecord{Type: "paragraph", Text: p.Text, Style: p.StyleName})
	}
	return out, nil
}

// AddParagraph appends a paragraph in the named style, or the default
// paragraph style when style is empty.
func (m *Manager) AddParagraph(text, style string) (string, error) {
	doc, err := m.document()
	if err != nil {
		return "", err
	}
	if err := doc.AddParagraph(text, style); err != nil {
		return "", err
	}
	return fmt.Sprintf("Paragraph added. Text: '%s...'", preview(text)), nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes)
}

// AddHeading appends a heading. Level 0 is the document title; 1 to 9 are
// heading levels.
func (m *Manager) AddHeading(text string, level int) (string, error) {
	doc, err := m.document()
	if err != nil {
		return "", err
	}
	if level < 0 || level > docx.MaxHeadingLevel {
		return "", errors.Wrapf(ErrValidation, "heading level must be between 0 and %d, got %d", docx.MaxHeadingLevel, level)
	}
	if err := doc.AddHeading(text, level); err != nil {
		return "", err
	}
	return fmt.Sprintf("Heading added. Text: '%s'", text), nil
}

// AddTable appends a rows x cols table. data fills cells row by row; values
// beyond the table bounds are ignored.
func (m *Manager) AddTable(rows, cols int, data [][]string) (string, error) {
	doc, err := m.document()
	if err != nil {
		return "", err
	}
	if rows < 1 || cols < 1 {
		return "", errors.Wrapf(ErrValidation, "rows and cols must be at least 1, got %d and %d", rows, cols)
	}
	if err := doc.AddTable(rows, cols, data, DefaultTableStyle); err != nil {
		return "", err
	}
	return "Table added.", nil
}

// AddImage appends a picture in its own paragraph. A nil width keeps the
// native size; otherwise the picture is scaled to the width in inches with
// its aspect ratio preserved.
func (m *Manager) AddImage(src ImageSource, widthInches *float64) (string, error) {
	doc, err := m.document()
	if err != nil {
		return "", err
	}
	if src == nil {
		return "", errors.Wrap(ErrValidation, "no image source")
	}

	data, err := src.read()
	if err != nil {
		return "", err
	}

	pic, err := imaging.PrepareEmbed(m.images, data)
	if err != nil {
		return "", errors.Wrapf(ErrValidation, "image from %s: %v", src.describe(), err)
	}
	cx, cy, err := pic.SizeEMU(widthInches)
	if err != nil {
		return "", errors.Wrapf(ErrValidation, "%v", err)
	}

	if err := doc.AddPicture(docx.Picture{
		Data:        pic.Data,
		Ext:         pic.Ext,
		ContentType: pic.ContentType,
		WidthEMU:    cx,
		HeightEMU:   cy,
	}); err != nil {
		return "", err
	}

	m.log.Debug("added image",
		zap.String("source", src.describe()),
		zap.String("content_type", pic.ContentType),
		zap.Int("bytes", len(pic.Data)),
		zap.Int64("width_emu", cx),
		zap.Int64("height_emu", cy))
	return "Image added.", nil
}

// ContentSummary is the result of ReadFullContent.
type ContentSummary struct {
	Paragraphs  []string `json:"paragraphs"`
	TablesCount int      `json:"tables_count"`
	ImagesCount int      `json:"images_count"`

	// Tables holds the cell text of each top-level table, row by row.
	Tables [][][]string `json:"tables"`
}

// ReadFullContent returns the paragraph texts, the table cells and the table
// and image counts.
func (m *Manager) ReadFullContent() (*ContentSummary, error) {
	doc, err := m.document()
	if err != nil {
		return nil, err
	}

	paragraphs, err := doc.Paragraphs()
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		texts = append(texts, p.Text)
	}

	tables, err := doc.Tables()
	if err != nil {
		return nil, err
	}
	cells := make([][][]string, 0, len(tables))
	for _, tbl := range tables {
		cells = append(cells, tbl.Rows)
	}

	return &ContentSummary{
		Paragraphs:  texts,
		TablesCount: len(tables),
		ImagesCount: len(doc.Images()),
		Tables:      cells,
	}, nil
}

// ExtractImages writes every embedded image into outputDir, creating it if
// needed, and returns the written paths in relationship order. Files are
// named after the image part; images sharing a name overwrite each other.
func (m *Manager) ExtractImages(outputDir string) ([]string, error) {
	doc, err := m.document()
	if err != nil {
		return nil, err
	}
	if outputDir == "" {
		return nil, errors.Wrap(ErrValidation, "output directory is empty")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}

	images := doc.Images()
	paths := make([]string, 0, len(images))
	for _, img := range images {
		path := filepath.Join(outputDir, img.Name())
		if err := os.WriteFile(path, img.Data, 0o644); err != nil {
			return nil, errors.Wrapf(err, "writing %s", path)
		}
		paths = append(paths, path)
	}

	m.log.Info("extracted images", zap.String("dir", outputDir), zap.Int("count", len(paths)))
	return paths, nil
}
