package docx

import (
	"fmt"
	"strings"
	"time"
)

// The built-in template is a Letter-sized page with 1.25" side margins and
// the built-in styles Word offers in a blank document.

const templateContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="` + nsContentTypes + `">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Default Extension="jpeg" ContentType="image/jpeg"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/settings.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

const templatePackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="` + nsRelationships + `">` +
	`<Relationship Id="rId1" Type="` + relTypeOfficeDoc + `" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="` + relTypeCoreProps + `" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="` + relTypeExtProps + `" Target="docProps/app.xml"/>` +
	`</Relationships>`

const templateDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="` + nsRelationships + `">` +
	`<Relationship Id="rId1" Type="` + relTypeStyles + `" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="` + relTypeSettings + `" Target="settings.xml"/>` +
	`</Relationships>`

const templateDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `" xmlns:wp="` + nsWP + `" xmlns:a="` + nsA + `" xmlns:pic="` + nsPic + `">` +
	`<w:body>` +
	`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>` +
	`<w:pgMar w:top="1440" w:right="1800" w:bottom="1440" w:left="1800" w:header="720" w:footer="720" w:gutter="0"/>` +
	`<w:cols w:space="720"/></w:sectPr>` +
	`</w:body></w:document>`

const templateSettings = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:settings xmlns:w="` + nsW + `"><w:defaultTabStop w:val="720"/><w:compat/></w:settings>`

const templateApp = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"><Application>docx-tools-mcp</Application></Properties>`

const templateCore = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
	`<dc:creator>docx-tools-mcp</dc:creator>` +
	`<dcterms:created xsi:type="dcterms:W3CDTF">%[1]s</dcterms:created>` +
	`<dcterms:modified xsi:type="dcterms:W3CDTF">%[1]s</dcterms:modified>` +
	`</cp:coreProperties>`

// templateStyle describes one paragraph style of the template.
type templateStyle struct {
	id, name, basedOn string
	pPr, rPr          string
}

var templateParagraphStyles = []templateStyle{
	{id: "Title", name: "Title", basedOn: "Normal", pPr: `<w:spacing w:after="300"/>`, rPr: `<w:sz w:val="52"/>`},
	{id: "Subtitle", name: "Subtitle", basedOn: "Normal", rPr: `<w:i/><w:sz w:val="24"/>`},
	{id: "Heading1", name: "heading 1", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="480"/><w:outlineLvl w:val="0"/>`, rPr: `<w:b/><w:sz w:val="28"/>`},
	{id: "Heading2", name: "heading 2", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="1"/>`, rPr: `<w:b/><w:sz w:val="26"/>`},
	{id: "Heading3", name: "heading 3", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="2"/>`, rPr: `<w:b/>`},
	{id: "Heading4", name: "heading 4", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="3"/>`, rPr: `<w:b/><w:i/>`},
	{id: "Heading5", name: "heading 5", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="4"/>`},
	{id: "Heading6", name: "heading 6", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="5"/>`, rPr: `<w:i/>`},
	{id: "Heading7", name: "heading 7", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="6"/>`, rPr: `<w:i/>`},
	{id: "Heading8", name: "heading 8", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="7"/>`, rPr: `<w:sz w:val="20"/>`},
	{id: "Heading9", name: "heading 9", basedOn: "Normal", pPr: `<w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="8"/>`, rPr: `<w:i/><w:sz w:val="20"/>`},
	{id: "NoSpacing", name: "No Spacing", pPr: `<w:spacing w:after="0" w:line="240" w:lineRule="auto"/>`},
	{id: "ListParagraph", name: "List Paragraph", basedOn: "Normal", pPr: `<w:ind w:left="720"/><w:contextualSpacing/>`},
	{id: "ListBullet", name: "List Bullet", basedOn: "Normal", pPr: `<w:ind w:left="360" w:hanging="360"/><w:contextualSpacing/>`},
	{id: "ListNumber", name: "List Number", basedOn: "Normal", pPr: `<w:ind w:left="360" w:hanging="360"/><w:contextualSpacing/>`},
	{id: "Quote", name: "Quote", basedOn: "Normal", rPr: `<w:i/>`},
	{id: "IntenseQuote", name: "Intense Quote", basedOn: "Normal", pPr: `<w:ind w:left="936" w:right="936"/>`, rPr: `<w:b/><w:i/>`},
	{id: "Caption", name: "caption", basedOn: "Normal", rPr: `<w:b/><w:sz w:val="18"/>`},
}

func templateStyles() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:styles xmlns:w="` + nsW + `">`)
	b.WriteString(`<w:docDefaults><w:rPrDefault><w:rPr><w:sz w:val="24"/><w:szCs w:val="24"/></w:rPr></w:rPrDefault>`)
	b.WriteString(`<w:pPrDefault><w:pPr><w:spacing w:after="200" w:line="276" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`)

	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>`)
	b.WriteString(`<w:style w:type="character" w:default="1" w:styleId="DefaultParagraphFont"><w:name w:val="Default Paragraph Font"/><w:uiPriority w:val="1"/><w:semiHidden/></w:style>`)
	b.WriteString(`<w:style w:type="table" w:default="1" w:styleId="TableNormal"><w:name w:val="Normal Table"/><w:semiHidden/>` +
		`<w:tblPr><w:tblInd w:w="0" w:type="dxa"/><w:tblCellMar><w:top w:w="0" w:type="dxa"/><w:left w:w="108" w:type="dxa"/>` +
		`<w:bottom w:w="0" w:type="dxa"/><w:right w:w="108" w:type="dxa"/></w:tblCellMar></w:tblPr></w:style>`)
	b.WriteString(`<w:style w:type="numbering" w:default="1" w:styleId="NoList"><w:name w:val="No List"/><w:semiHidden/></w:style>`)
	b.WriteString(`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:basedOn w:val="TableNormal"/>` +
		`<w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`</w:tblBorders></w:tblPr></w:style>`)

	for _, s := range templateParagraphStyles {
		b.WriteString(`<w:style w:type="paragraph" w:styleId="` + s.id + `"><w:name w:val="` + s.name + `"/>`)
		if s.basedOn != "" {
			b.WriteString(`<w:basedOn w:val="` + s.basedOn + `"/>`)
		}
		b.WriteString(`<w:next w:val="Normal"/><w:qFormat/>`)
		if s.pPr != "" {
			b.WriteString(`<w:pPr>` + s.pPr + `</w:pPr>`)
		}
		if s.rPr != "" {
			b.WriteString(`<w:rPr>` + s.rPr + `</w:rPr>`)
		}
		b.WriteString(`</w:style>`)
	}

	b.WriteString(`</w:styles>`)
	return b.String()
}

// templateParts returns the parts of a blank document and their write order.
func templateParts() (map[string][]byte, []string) {
	now := time.Now().UTC().Format(time.RFC3339)
	parts := map[string][]byte{
		contentTypesPart:    []byte(templateContentTypes),
		packageRelsPart:     []byte(templatePackageRels),
		"docProps/core.xml": []byte(fmt.Sprintf(templateCore, now)),
		"docProps/app.xml":  []byte(templateApp),
		documentPart:        []byte(templateDocument),
		documentRelsPart:    []byte(templateDocumentRels),
		stylesPart:          []byte(templateStyles()),
		"word/settings.xml": []byte(templateSettings),
	}
	order := []string{
		contentTypesPart,
		packageRelsPart,
		"docProps/core.xml",
		"docProps/app.xml",
		documentPart,
		documentRelsPart,
		stylesPart,
		"word/settings.xml",
	}
	return parts, order
}
