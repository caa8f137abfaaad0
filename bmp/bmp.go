/*
Package bmp reads and writes the restricted bitmap format understood by the
floor-display controller.

Only one variant is supported: a BITMAPFILEHEADER with a 40-byte
BITMAPINFOHEADER, 1 bit per pixel, no compression. Files with any other
header size are still identified as bitmaps by their signature but their
dimensions are reported as unknown.
*/
package bmp

// Header byte offsets of the fields the controller cares about.
const (
	offPixelData   = 0x0a
	offDIBSize     = 0x0e
	offWidth       = 0x12
	offHeight      = 0x16
	offBitsPerPx   = 0x1c
	offCompression = 0x1e
)

const (
	// SupportedDIBSize is the only DIB header size the codec can parse.
	SupportedDIBSize = 40

	fileHeaderSize = 14
	paletteSize    = 8 // two BGRA entries
)

var signature = [2]byte{'B', 'M'}

// Header holds the fields read from a bitmap file. Width and Height are -1
// when the DIB header size is not the supported 40-byte variant. Height is
// kept in source order and may be negative for top-down bitmaps.
type Header struct {
	PixelDataOffset uint32
	DIBSize         uint16
	Width           int32
	Height          int32
	BitsPerPixel    uint8
	Compression     uint8
}

// Supported reports whether the header describes the one encodable format:
// 1 bit per pixel, uncompressed.
func (h Header) Supported() bool {
	return h.DIBSize == SupportedDIBSize && h.BitsPerPixel == 1 && h.Compression == 0
}

// Stride returns the on-disk length of one pixel row: the packed row bytes
// padded to the next multiple of four.
func (h Header) Stride() int64 {
	rowBytes := (int64(h.Width) + 7) / 8
	return (rowBytes + 3) &^ 3
}
