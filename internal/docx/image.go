package docx

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Picture is an image ready to be embedded. Data must already be in a format
// Word renders (PNG, JPEG or GIF).
type Picture struct {
	Data        []byte
	Ext         string // file extension without the dot, e.g. "png"
	ContentType string
	WidthEMU    int64
	HeightEMU   int64
}

// Image is an embedded picture referenced from the main document part.
type Image struct {
	RelID       string
	Target      string
	PartName    string
	ContentType string
	Data        []byte
}

// Name returns the file name of the image part.
func (img Image) Name() string {
	return path.Base(img.Target)
}

var docPrIDPattern = regexp.MustCompile(`<(?:\w+:)?docPr\b[^>]*?\bid="(\d+)"`)

// AddPicture stores the picture as a media part and appends an inline
// drawing paragraph that shows it.
func (d *Document) AddPicture(pic Picture) error {
	if len(pic.Data) == 0 {
		return errors.Wrap(ErrInvalidArgument, "picture has no data")
	}
	if pic.WidthEMU <= 0 || pic.HeightEMU <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "picture size %dx%d EMU is not positive", pic.WidthEMU, pic.HeightEMU)
	}
	ext := strings.ToLower(strings.TrimPrefix(pic.Ext, "."))
	if ext == "" || pic.ContentType == "" {
		return errors.Wrap(ErrInvalidArgument, "picture needs an extension and a content type")
	}

	partName := d.nextMediaName(ext)
	d.setPart(partName, pic.Data)
	if d.types.ensureDefault(ext, pic.ContentType) {
		d.typesDirty = true
	}

	relID := d.rels.nextID()
	d.rels.Relationships = append(d.rels.Relationships, relationshipXML{
		ID:     relID,
		Type:   RelTypeImage,
		Target: strings.TrimPrefix(partName, path.Dir(documentPart)+"/"),
	})
	d.relsDirty = true
	if !d.hasPart(documentRelsPart) {
		d.ensureDocumentRels()
	}

	docPrID := d.nextDocPrID()
	d.body.appendElement(kindParagraph, buildDrawing(relID, docPrID, path.Base(partName), pic.WidthEMU, pic.HeightEMU))
	return nil
}

// ensureDocumentRels registers the relationships part of a package that had
// none, so the serialized part gets a content type.
func (d *Document) ensureDocumentRels() {
	if d.types.ensureDefault("rels", "application/vnd.openxmlformats-package.relationships+xml") {
		d.typesDirty = true
	}
}

// nextMediaName returns an unused word/media/imageN.ext part name.
func (d *Document) nextMediaName(ext string) string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s/image%d.%s", mediaDir, n, ext)
		if !d.hasPart(name) {
			return name
		}
	}
}

// nextDocPrID returns a drawing object id not used anywhere in the body.
func (d *Document) nextDocPrID() int {
	maxID := 0
	for _, el := range d.body.elements {
		for _, m := range docPrIDPattern.FindAllSubmatch(el.raw, -1) {
			if n, err := strconv.Atoi(string(m[1])); err == nil && n > maxID {
				maxID = n
			}
		}
	}
	return maxID + 1
}

// Images returns the embedded pictures of the main document part in
// relationship order. Only relationships of the image type with an internal
// target that exists in the package count; external links are skipped.
func (d *Document) Images() []Image {
	var out []Image
	for _, rel := range d.relationships() {
		if rel.Type != RelTypeImage || rel.External {
			continue
		}
		partName := resolveTarget(rel.Target)
		data, err := d.part(partName)
		if err != nil {
			continue
		}
		out = append(out, Image{
			RelID:       rel.ID,
			Target:      rel.Target,
			PartName:    partName,
			ContentType: d.types.contentType(partName),
			Data:        data,
		})
	}
	return out
}

// part returns the bytes of a package part.
func (d *Document) part(name string) ([]byte, error) {
	data, ok := d.parts[name]
	if !ok {
		return nil, errors.Wrapf(ErrPartNotFound, "%s", name)
	}
	return data, nil
}

func buildDrawing(relID string, id int, name string, cx, cy int64) []byte {
	size := fmt.Sprintf(`cx="%d" cy="%d"`, cx, cy)
	idStr := strconv.Itoa(id)

	var buf bytes.Buffer
	buf.WriteString(`<w:p` + wordNS + ` xmlns:r="` + nsR + `" xmlns:wp="` + nsWP + `" xmlns:a="` + nsA + `" xmlns:pic="` + nsPic + `">`)
	buf.WriteString(`<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`)
	buf.WriteString(`<wp:extent ` + size + `/>`)
	buf.WriteString(`<wp:docPr id="` + idStr + `" name="Picture ` + idStr + `"/>`)
	buf.WriteString(`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`)
	buf.WriteString(`<a:graphic><a:graphicData uri="` + nsPic + `"><pic:pic>`)
	buf.WriteString(`<pic:nvPicPr><pic:cNvPr id="0" name="`)
	escape(&buf, name)
	buf.WriteString(`"/><pic:cNvPicPr/></pic:nvPicPr>`)
	buf.WriteString(`<pic:blipFill><a:blip r:embed="` + relID + `"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`)
	buf.WriteString(`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext ` + size + `/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`)
	buf.WriteString(`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`)
	return buf.Bytes()
}
