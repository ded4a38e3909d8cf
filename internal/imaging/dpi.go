package imaging

import (
	"bytes"
	"encoding/binary"
	"math"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngDPI reads the resolution from the pHYs chunk. Only the metre unit
// carries a physical size; anything else reports DefaultDPI.
func pngDPI(data []byte) (int, int) {
	if !bytes.HasPrefix(data, pngSignature) {
		return DefaultDPI, DefaultDPI
	}

	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos:]))
		chunk := string(data[pos+4 : pos+8])
		body := pos + 8
		if length < 0 || body+length > len(data) {
			break
		}

		switch chunk {
		case "pHYs":
			if length < 9 || data[body+8] != 1 {
				return DefaultDPI, DefaultDPI
			}
			x := binary.BigEndian.Uint32(data[body:])
			y := binary.BigEndian.Uint32(data[body+4:])
			return perMetreToDPI(x), perMetreToDPI(y)
		case "IDAT", "IEND":
			// pHYs must precede the image data.
			return DefaultDPI, DefaultDPI
		}

		pos = body + length + 4 // skip CRC
	}
	return DefaultDPI, DefaultDPI
}

func perMetreToDPI(ppm uint32) int {
	dpi := int(math.Round(float64(ppm) * 0.0254))
	if dpi <= 0 {
		return DefaultDPI
	}
	return dpi
}

// jpegDPI reads the resolution from the JFIF APP0 segment.
func jpegDPI(data []byte) (int, int) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return DefaultDPI, DefaultDPI
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			break
		}
		marker := data[pos+1]
		if marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}
		if marker == 0xDA || marker == 0xD9 {
			// Start of scan or end of image: no more headers.
			break
		}

		length := int(binary.BigEndian.Uint16(data[pos+2:]))
		seg := pos + 4
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			break
		}

		if marker == 0xE0 && end-seg >= 12 && bytes.Equal(data[seg:seg+5], []byte("JFIF\x00")) {
			units := data[seg+7]
			x := int(binary.BigEndian.Uint16(data[seg+8:]))
			y := int(binary.BigEndian.Uint16(data[seg+10:]))
			return jfifDPI(units, x), jfifDPI(units, y)
		}

		pos = end
	}
	return DefaultDPI, DefaultDPI
}

func jfifDPI(units byte, density int) int {
	var dpi int
	switch units {
	case 1: // dots per inch
		dpi = density
	case 2: // dots per centimetre
		dpi = int(math.Round(float64(density) * 2.54))
	}
	if dpi <= 0 {
		return DefaultDPI
	}
	return dpi
}
