package docx

import (
	"encoding/xml"

	"github.com/pkg/errors"
)

// Style types as they appear in the w:type attribute.
const (
	StyleTypeParagraph = "paragraph"
	StyleTypeCharacter = "character"
	StyleTypeTable     = "table"
)

// ErrStyleNotFound is returned when a style name is not defined in the document.
var ErrStyleNotFound = errors.New("style not found")

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string       `xml:"type,attr"`
	StyleID string       `xml:"styleId,attr"`
	Default string       `xml:"default,attr"`
	Name    styleNameXML `xml:"name"`
}

// styleNameXML represents a style name.
type styleNameXML struct {
	Val string `xml:"val,attr"`
}

// Style is a style definition from word/styles.xml.
type Style struct {
	ID      string
	Name    string // UI name, e.g. "Heading 1"
	Type    string
	Default bool
}

type styleSheet struct {
	styles []Style
}

// styleAliases maps UI names to the lowercase names Word stores for a few
// built-in styles.
var styleAliases = map[string]string{
	"Caption":   "caption",
	"Footer":    "footer",
	"Header":    "header",
	"Heading 1": "heading 1",
	"Heading 2": "heading 2",
	"Heading 3": "heading 3",
	"Heading 4": "heading 4",
	"Heading 5": "heading 5",
	"Heading 6": "heading 6",
	"Heading 7": "heading 7",
	"Heading 8": "heading 8",
	"Heading 9": "heading 9",
}

func uiName(stored string) string {
	for ui, internal := range styleAliases {
		if internal == stored {
			return ui
		}
	}
	return stored
}

func storedName(ui string) string {
	if internal, ok := styleAliases[ui]; ok {
		return internal
	}
	return ui
}

func parseStyles(data []byte) (*styleSheet, error) {
	var raw stylesXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	sheet := &styleSheet{styles: make([]Style, 0, len(raw.Styles))}
	for _, s := range raw.Styles {
		typ := s.Type
		if typ == "" {
			typ = StyleTypeParagraph
		}
		sheet.styles = append(sheet.styles, Style{
			ID:      s.StyleID,
			Name:    uiName(s.Name.Val),
			Type:    typ,
			Default: s.Default == "1" || s.Default == "true",
		})
	}
	return sheet, nil
}

func (s *styleSheet) byID(id, typ string) (Style, bool) {
	for _, st := range s.styles {
		if st.ID == id && st.Type == typ {
			return st, true
		}
	}
	return Style{}, false
}

func (s *styleSheet) defaultStyle(typ string) (Style, bool) {
	for _, st := range s.styles {
		if st.Default && st.Type == typ {
			return st, true
		}
	}
	return Style{}, false
}

// nameOf returns the UI name of the style a paragraph or table refers to.
// Unknown or empty ids resolve to the default style of the type.
func (s *styleSheet) nameOf(id, typ string) string {
	if id != "" {
		if st, ok := s.byID(id, typ); ok {
			return st.Name
		}
	}
	if st, ok := s.defaultStyle(typ); ok {
		return st.Name
	}
	return ""
}

// idFor resolves a UI style name to the id to reference from content. The
// default style of the type needs no reference and resolves to "".
func (s *styleSheet) idFor(name, typ string) (string, error) {
	if name == "" {
		return "", nil
	}

	want := storedName(name)
	otherType := ""
	for _, st := range s.styles {
		if storedName(st.Name) != want {
			continue
		}
		if st.Type != typ {
			otherType = st.Type
			continue
		}
		if st.Default {
			return "", nil
		}
		return st.ID, nil
	}
	if otherType != "" {
		return "", errors.Errorf("style '%s' is a %s style, not a %s style", name, otherType, typ)
	}
	return "", errors.Wrapf(ErrStyleNotFound, "no style with name '%s'", name)
}

