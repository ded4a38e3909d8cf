package docx

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// XML namespaces used in DOCX files
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// elementKind classifies a top-level body element.
type elementKind int

const (
	kindOther elementKind = iota
	kindParagraph
	kindTable
	kindSectPr
)

// bodyElement is one top-level child of <w:body>, kept as raw XML.
type bodyElement struct {
	kind elementKind
	raw  []byte
}

// body is word/document.xml split around the children of <w:body>.
type body struct {
	head     []byte // everything up to and including the <w:body> start tag
	elements []bodyElement
	tail     []byte // </w:body> and everything after it
}

// parseBody splits document.xml into its top-level body elements.
func parseBody(data []byte) (*body, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	b := &body{}
	depth := 0
	inBody := false
	selfClosing := false
	bodyEnd := ""

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPackage, "parsing document.xml: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inBody {
				depth++
				if depth == 2 && t.Name.Space == nsW && t.Name.Local == "body" {
					inBody = true
					end := dec.InputOffset()
					raw := data[off:end]
					bodyEnd = "</" + qualifiedName(raw) + ">"
					b.head = append([]byte(nil), data[:end]...)
					if bytes.HasSuffix(raw, []byte("/>")) {
						// <w:body/> has no room for children; open it up.
						selfClosing = true
						b.head = append(b.head[:len(b.head)-2], '>')
					}
				}
				continue
			}

			kind := kindOther
			if t.Name.Space == nsW {
				switch t.Name.Local {
				case "p":
					kind = kindParagraph
				case "tbl":
					kind = kindTable
				case "sectPr":
					kind = kindSectPr
				}
			}
			if err := dec.Skip(); err != nil {
				return nil, errors.Wrapf(ErrInvalidPackage, "parsing document.xml: %v", err)
			}
			b.elements = append(b.elements, bodyElement{kind: kind, raw: data[off:dec.InputOffset()]})

		case xml.Comment:
			if inBody {
				b.elements = append(b.elements, bodyElement{kind: kindOther, raw: data[off:dec.InputOffset()]})
			}

		case xml.EndElement:
			if inBody {
				if selfClosing {
					b.tail = append([]byte(bodyEnd), data[off:]...)
				} else {
					b.tail = data[off:]
				}
				return b, nil
			}
			depth--
		}
	}

	return nil, errors.Wrap(ErrInvalidPackage, "document.xml has no body")
}

// qualifiedName returns the tag name (with prefix) of a raw start tag.
func qualifiedName(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte("<"))
	end := bytes.IndexAny(raw, " \t\r\n/>")
	if end < 0 {
		return string(raw)
	}
	return string(raw[:end])
}

// bytes reassembles document.xml.
func (b *body) bytes() []byte {
	size := len(b.head) + len(b.tail)
	for _, el := range b.elements {
		size += len(el.raw)
	}
	out := make([]byte, 0, size)
	out = append(out, b.head...)
	for _, el := range b.elements {
		out = append(out, el.raw...)
	}
	return append(out, b.tail...)
}

// sectPrIndex returns the index of the trailing section properties, or -1.
func (b *body) sectPrIndex() int {
	for i := len(b.elements) - 1; i >= 0; i-- {
		if b.elements[i].kind == kindSectPr {
			return i
		}
		if b.elements[i].kind != kindOther {
			return -1
		}
	}
	return -1
}

// appendElement inserts a new element before the trailing section properties.
func (b *body) appendElement(kind elementKind, raw []byte) {
	el := bodyElement{kind: kind, raw: raw}
	idx := b.sectPrIndex()
	if idx < 0 {
		b.elements = append(b.elements, el)
		return
	}
	b.elements = append(b.elements, bodyElement{})
	copy(b.elements[idx+1:], b.elements[idx:])
	b.elements[idx] = el
}

// ofKind returns the raw XML of every top-level element of the given kind.
func (b *body) ofKind(kind elementKind) [][]byte {
	var out [][]byte
	for _, el := range b.elements {
		if el.kind == kind {
			out = append(out, el.raw)
		}
	}
	return out
}

// textWidth returns the width between the page margins of the final section,
// in twips.
func (b *body) textWidth() int {
	const defaultWidth = 8640 // 6 inches

	idx := b.sectPrIndex()
	if idx < 0 {
		return defaultWidth
	}

	var pageWidth, left, right int
	dec := xml.NewDecoder(bytes.NewReader(b.elements[idx].raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "pgSz":
			pageWidth = attrInt(se, "w")
		case "pgMar":
			left = attrInt(se, "left")
			right = attrInt(se, "right")
		}
	}

	if width := pageWidth - left - right; width > 0 {
		return width
	}
	return defaultWidth
}

// attr returns the value of the attribute with the given local name.
func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrInt(se xml.StartElement, local string) int {
	n, err := strconv.Atoi(attr(se, local))
	if err != nil {
		return 0
	}
	return n
}
