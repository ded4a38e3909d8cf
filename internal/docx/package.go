package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Part names used by the package.
const (
	contentTypesPart = "[Content_Types].xml"
	packageRelsPart  = "_rels/.rels"
	documentPart     = "word/document.xml"
	documentRelsPart = "word/_rels/document.xml.rels"
	stylesPart       = "word/styles.xml"
	mediaDir         = "word/media"
)

// defaultFileMode is the mode of a newly saved document.
const defaultFileMode os.FileMode = 0o644

var (
	// ErrInvalidPackage is returned when a file is not a usable .docx package.
	ErrInvalidPackage = errors.New("invalid docx package")

	// ErrPartNotFound is returned when a relationship points at a missing part.
	ErrPartNotFound = errors.New("part not found")
)

// Document is an in-memory .docx package.
type Document struct {
	parts map[string][]byte
	order []string

	types  *contentTypesXML
	rels   *relationshipsXML
	body   *body
	styles *styleSheet

	typesDirty bool
	relsDirty  bool
}

// New creates an empty document from the built-in template.
func New() (*Document, error) {
	parts, order := templateParts()
	return fromParts(parts, order)
}

// Open reads a .docx file from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading document")
	}
	return Parse(bytes.NewReader(data), int64(len(data)))
}

// Parse reads a .docx package from r.
func Parse(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPackage, "opening ZIP archive: %v", err)
	}

	parts := make(map[string][]byte, len(zr.File))
	order := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading part %s", f.Name)
		}
		if _, dup := parts[f.Name]; !dup {
			order = append(order, f.Name)
		}
		parts[f.Name] = data
	}

	return fromParts(parts, order)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// fromParts validates the required parts and parses the ones the editor uses.
func fromParts(parts map[string][]byte, order []string) (*Document, error) {
	for _, name := range []string{contentTypesPart, documentPart} {
		if _, ok := parts[name]; !ok {
			return nil, errors.Wrapf(ErrInvalidPackage, "missing required file: %s", name)
		}
	}

	d := &Document{parts: parts, order: order}

	d.types = &contentTypesXML{}
	if err := xml.Unmarshal(parts[contentTypesPart], d.types); err != nil {
		return nil, errors.Wrapf(ErrInvalidPackage, "parsing %s: %v", contentTypesPart, err)
	}

	d.rels = &relationshipsXML{}
	if data, ok := parts[documentRelsPart]; ok {
		if err := xml.Unmarshal(data, d.rels); err != nil {
			return nil, errors.Wrapf(ErrInvalidPackage, "parsing %s: %v", documentRelsPart, err)
		}
	}

	b, err := parseBody(parts[documentPart])
	if err != nil {
		return nil, err
	}
	d.body = b

	// Styles are optional; lookups against an empty sheet simply fail.
	d.styles = &styleSheet{}
	if data, ok := parts[stylesPart]; ok {
		sheet, err := parseStyles(data)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPackage, "parsing %s: %v", stylesPart, err)
		}
		d.styles = sheet
	}

	return d, nil
}

// Save writes the package to path. The file is written to a temporary name in
// the same directory first and renamed into place.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".docx-save-*")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	tmpName := tmp.Name()

	// CreateTemp makes the file 0600; give it the mode of the document it
	// replaces, or the usual mode for a new one.
	mode := defaultFileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "setting file mode")
	}

	if err := d.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing temporary file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replacing document")
	}
	return nil
}

// Write serializes the package as a zip archive.
func (d *Document) Write(w io.Writer) error {
	if err := d.flush(); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	names := make([]string, 0, len(d.order))
	names = append(names, contentTypesPart)
	for _, name := range d.partNames() {
		if name != contentTypesPart {
			names = append(names, name)
		}
	}

	for _, name := range names {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return errors.Wrapf(err, "writing part %s", name)
		}
		if _, err := fw.Write(d.parts[name]); err != nil {
			return errors.Wrapf(err, "writing part %s", name)
		}
	}

	return errors.Wrap(zw.Close(), "finishing archive")
}

// flush re-serializes the parsed parts that were modified.
func (d *Document) flush() error {
	d.parts[documentPart] = d.body.bytes()

	if d.relsDirty {
		data, err := marshalPart(d.rels)
		if err != nil {
			return errors.Wrapf(err, "serializing %s", documentRelsPart)
		}
		d.setPart(documentRelsPart, data)
		d.relsDirty = false
	}

	if d.typesDirty {
		data, err := marshalPart(d.types)
		if err != nil {
			return errors.Wrapf(err, "serializing %s", contentTypesPart)
		}
		d.setPart(contentTypesPart, data)
		d.typesDirty = false
	}

	return nil
}

func marshalPart(v interface{}) ([]byte, error) {
	data, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

// setPart stores a part, appending new names to the write order.
func (d *Document) setPart(name string, data []byte) {
	if _, ok := d.parts[name]; !ok {
		d.order = append(d.order, name)
	}
	d.parts[name] = data
}

// hasPart reports whether a part exists in the package.
func (d *Document) hasPart(name string) bool {
	_, ok := d.parts[name]
	return ok
}

// partNames returns the package part names in write order.
func (d *Document) partNames() []string {
	names := make([]string, len(d.order))
	copy(names, d.order)
	return names
}
