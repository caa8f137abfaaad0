package bmp

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

type fileHeader struct {
	Signature [2]byte
	Size      uint32
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32
}

type infoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type encoder struct {
	w io.Writer
}

// Bit values are palette indices; the controller treats a set bit as a lit
// pixel, so the lighter of the two colors must land on index one.
func luma(c color.Color) uint32 {
	r, g, b, _ := c.RGBA()
	return (299*r + 587*g + 114*b) / 1000
}

func (e *encoder) encode(m *image.Paletted) error {
	b := m.Bounds()
	width, height := b.Dx(), b.Dy()

	rowBytes := (width + 7) / 8
	stride := (rowBytes + 3) &^ 3

	bits := make([]byte, len(m.Palette))
	table := [2]color.Color{color.Black, color.White}
	for i, c := range m.Palette {
		if luma(c) >= 1<<15 {
			bits[i] = 1
			table[1] = c
		} else {
			table[0] = c
		}
	}

	if err := binary.Write(e.w, binary.LittleEndian, fileHeader{
		Signature: signature,
		Size:      uint32(fileHeaderSize + SupportedDIBSize + paletteSize + stride*height),
		OffBits:   fileHeaderSize + SupportedDIBSize + paletteSize,
	}); err != nil {
		return err
	}

	// Negative height marks the rows as stored top to bottom.
	if err := binary.Write(e.w, binary.LittleEndian, infoHeader{
		Size:      SupportedDIBSize,
		Width:     int32(width),
		Height:    int32(-height),
		Planes:    1,
		BitCount:  1,
		SizeImage: uint32(stride * height),
		ClrUsed:   2,
	}); err != nil {
		return err
	}

	for _, c := range table {
		r, g, bl, _ := c.RGBA()
		if _, err := e.w.Write([]byte{byte(bl >> 8), byte(g >> 8), byte(r >> 8), 0}); err != nil {
			return err
		}
	}

	row := make([]byte, stride)
	for y := 0; y < height; y++ {
		for i := range row {
			row[i] = 0
		}
		for x := 0; x < width; x++ {
			if bits[m.ColorIndexAt(b.Min.X+x, b.Min.Y+y)] != 0 {
				row[x/8] |= 1 << (7 - x%8)
			}
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the image m to w as a monochrome bitmap in the one format
// the controller can transcode. Images with more than two colors are
// quantized down to two first.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return errors.New("bmp: empty image")
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil || len(pm.Palette) > 2 {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 2), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	e := encoder{w: w}

	return e.encode(pm)
}
