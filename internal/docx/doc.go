// Package docx reads, edits and writes Office Open XML word-processing
// packages (.docx files).
//
// A Document keeps every part of the zip package in memory exactly as it was
// read. Only the parts touched by an edit are re-serialized on save:
//
//   - word/document.xml: the body is split into top-level elements (paragraphs,
//     tables, the final section properties). New content is spliced in before
//     the trailing sectPr; existing elements are written back byte-for-byte.
//   - word/_rels/document.xml.rels: rewritten when an image is embedded.
//   - [Content_Types].xml: rewritten when a new media extension appears.
//   - word/media/*: new image parts.
//
// Styles are read from word/styles.xml and referenced by their UI names
// ("Normal", "Heading 1", "Table Grid"), the same names Word shows.
//
// # Images
//
// Embedded images are found through the document relationships whose declared
// type is the OOXML image relationship type and whose target is internal to
// the package. Counting and extraction use the same predicate.
//
// # Limitations
//
// The package does not model runs, numbering, headers, footers or comments
// beyond preserving them. Paragraph text is read from runs that are direct
// children of the paragraph or of a hyperlink, which matches what Word shows
// for ordinary body text.
package docx
