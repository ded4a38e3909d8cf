package docx

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Namespaces and relationship types used when writing package parts.
const (
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"

	// RelTypeImage is the relationship type of embedded pictures.
	RelTypeImage = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	relTypeStyles      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeSettings    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	relTypeOfficeDoc   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCoreProps   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeExtProps    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	targetModeExternal = "External"
)

// contentTypesXML represents [Content_Types].xml.
type contentTypesXML struct {
	XMLName   xml.Name        `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefaultXML  `xml:"Default"`
	Overrides []ctOverrideXML `xml:"Override"`
}

// ctDefaultXML maps a file extension to a content type.
type ctDefaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ctOverrideXML maps a single part to a content type.
type ctOverrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// contentType resolves the content type of a part, overrides first.
func (c *contentTypesXML) contentType(partName string) string {
	abs := "/" + strings.TrimPrefix(partName, "/")
	for _, o := range c.Overrides {
		if strings.EqualFold(o.PartName, abs) {
			return o.ContentType
		}
	}
	ext := strings.TrimPrefix(path.Ext(partName), ".")
	for _, def := range c.Defaults {
		if strings.EqualFold(def.Extension, ext) {
			return def.ContentType
		}
	}
	return ""
}

// ensureDefault registers ext if no default exists yet. It reports whether
// the list changed.
func (c *contentTypesXML) ensureDefault(ext, contentType string) bool {
	for _, def := range c.Defaults {
		if strings.EqualFold(def.Extension, ext) {
			return false
		}
	}
	c.Defaults = append(c.Defaults, ctDefaultXML{Extension: ext, ContentType: contentType})
	return true
}

// relationshipsXML represents a .rels part.
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// nextID returns an unused relationship id of the form rIdN.
func (r *relationshipsXML) nextID() string {
	maxID := 0
	for _, rel := range r.Relationships {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

// Relationship describes an outgoing relationship of the main document part.
type Relationship struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Target   string `json:"target"`
	External bool   `json:"external"`
}

// relationships returns the relationships of word/document.xml in file order.
func (d *Document) relationships() []Relationship {
	out := make([]Relationship, 0, len(d.rels.Relationships))
	for _, rel := range d.rels.Relationships {
		out = append(out, Relationship{
			ID:       rel.ID,
			Type:     rel.Type,
			Target:   rel.Target,
			External: rel.TargetMode == targetModeExternal,
		})
	}
	return out
}

// resolveTarget converts a relationship target of the main document part into
// a package part name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(path.Dir(documentPart), target)
}
