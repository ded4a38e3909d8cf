// Package imaging decodes, inspects and prepares images for embedding in
// documents and for text recognition.
//
// # Formats
//
// PNG, JPEG and GIF decode with the standard library; BMP, TIFF and WebP
// decode through golang.org/x/image. Word processors render only the first
// three, so PrepareEmbed re-encodes the others as PNG.
//
// # Resolution and Size
//
// Display sizes are measured in English Metric Units (914400 per inch). The
// native size of an image is its pixel size at the resolution recorded in the
// file: the PNG pHYs chunk or the JPEG JFIF header. Images that record no
// resolution are treated as 72 DPI.
//
// # Thread Safety
//
// The Cache type is safe for concurrent use. The other functions are
// stateless and can be called concurrently on different images.
//
// # Color Representation
//
// Dominant colors are reported as lowercase "#rrggbb" hex strings with an
// HSL triple: Hue (0-360), Saturation (0-100), Lightness (0-100).
package imaging
