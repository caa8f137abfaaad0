package bmp

import (
	"encoding/binary"
	"io"
)

// File is the minimal positioned-read surface the header parser needs. It is
// satisfied by store.Store.
type File interface {
	Seek(offset int64) error
	Read(p []byte) (int, error)
}

func readAt(f File, offset int64, p []byte) error {
	if err := f.Seek(offset); err != nil {
		return err
	}
	n, err := f.Read(p)
	if err != nil {
		return err
	}
	if n < len(p) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// IsBitmap reports whether the open file starts with the two-byte bitmap
// signature. The file is left positioned after the signature.
func IsBitmap(f File) bool {
	var sig [2]byte
	if err := readAt(f, 0, sig[:]); err != nil {
		return false
	}
	return sig == signature
}

// ReadHeader parses the header fields from an open bitmap file. Files whose
// DIB header is not the supported 40-byte variant yield -1 for width and
// height rather than an error; only I/O failures are reported.
func ReadHeader(f File) (Header, error) {
	h := Header{Width: -1, Height: -1}

	var tmp [4]byte

	if err := readAt(f, offPixelData, tmp[:]); err != nil {
		return h, err
	}
	h.PixelDataOffset = binary.LittleEndian.Uint32(tmp[:])

	if err := readAt(f, offDIBSize, tmp[:2]); err != nil {
		return h, err
	}
	h.DIBSize = binary.LittleEndian.Uint16(tmp[:2])

	if h.DIBSize != SupportedDIBSize {
		return h, nil
	}

	if err := readAt(f, offWidth, tmp[:]); err != nil {
		return h, err
	}
	h.Width = int32(binary.LittleEndian.Uint32(tmp[:]))

	if err := readAt(f, offHeight, tmp[:]); err != nil {
		return h, err
	}
	h.Height = int32(binary.LittleEndian.Uint32(tmp[:]))

	if err := readAt(f, offBitsPerPx, tmp[:1]); err != nil {
		return h, err
	}
	h.BitsPerPixel = tmp[0]

	if err := readAt(f, offCompression, tmp[:1]); err != nil {
		return h, err
	}
	h.Compression = tmp[0]

	return h, nil
}
