package floorsign

import (
	"encoding/binary"
	"io"
)

const monoColorFile = "/monocolor"

// DefaultMonoColor is the display color used before one has been saved:
// red in RGB565.
const DefaultMonoColor uint16 = 0xf800

// MonoColor reads the saved 16-bit display color, falling back to the
// default when the file is missing or short.
func (c *Controller) MonoColor() uint16 {
	if err := c.store.OpenRead(monoColorFile); err != nil {
		return DefaultMonoColor
	}

	var b [2]byte
	if n, err := c.store.Read(b[:]); err != nil || n < len(b) {
		return DefaultMonoColor
	}
	return binary.LittleEndian.Uint16(b[:])
}

// SetMonoColor persists the 16-bit display color.
func (c *Controller) SetMonoColor(color uint16) error {
	if err := c.store.OpenWrite(monoColorFile, true); err != nil {
		return err
	}

	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], color)
	if n, err := c.store.Write(b[:]); err != nil {
		return err
	} else if n < len(b) {
		return io.ErrShortWrite
	}

	return c.store.Close()
}

// RGB565 packs 8-bit color channels into the 16-bit format the display
// hardware uses, dropping the least significant bits of each channel.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r&0xf8)<<8 | uint16(g&0xfc)<<3 | uint16(b)>>3
}
