package floorsign

import (
	"path"
	"strings"

	"floorsign/bmp"
	"floorsign/cbm"
)

// EncodedDir is the store directory holding the transcoded sibling files.
const EncodedDir = "/enc"

// EncodedExt is the extension of a transcoded sibling file.
const EncodedExt = ".cbm"

// BitmapType classifies the descriptor returned by GetBitmap.
type BitmapType int

const (
	BitmapFileError BitmapType = iota - 1
	BitmapError
	BitmapMonochrome
	BitmapMonochromeCompressed
	BitmapRGB888
	BitmapRGB888Compressed
)

// Bitmap is the shared descriptor for the most recently requested image.
// Width and Height are -1 when unknown; Height is a magnitude only, the
// source orientation sign is discarded. The Controller owns exactly one
// Bitmap and overwrites it on every request, so callers must treat the
// value as borrowed until the next call.
type Bitmap struct {
	Width  int32
	Height int32
	Type   BitmapType
	Data   []byte
}

// EncodedPath derives the cache location of the transcoded sibling for a
// source file: /enc/<basename up to the first dot>.cbm.
func EncodedPath(filepath string) string {
	base := path.Base(filepath)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return EncodedDir + "/" + base + EncodedExt
}

// GetBitmap opens the named file, reads its header into the shared
// descriptor and, for the one supported format, makes sure the encoded
// sibling exists. The returned descriptor is borrowed and valid only until
// the next call into the Controller.
func (c *Controller) GetBitmap(filepath string, row, amount uint16) *Bitmap {
	if err := c.store.OpenRead(filepath); err != nil {
		c.logger.Printf("failed to open file: %s", filepath)
		c.bitmap.Width, c.bitmap.Height = -1, -1
		c.bitmap.Type = BitmapFileError
		return &c.bitmap
	}

	c.readBitmap(filepath, row, amount)
	return &c.bitmap
}

func (c *Controller) readBitmap(filepath string, row, amount uint16) {
	h, err := bmp.ReadHeader(c.store)
	if err != nil {
		c.logger.Printf("failed to read header: %s: %v", filepath, err)
		c.bitmap.Width, c.bitmap.Height = -1, -1
		c.bitmap.Type = BitmapError
		return
	}

	c.bitmap.Width = h.Width
	c.bitmap.Height = h.Height
	if c.bitmap.Height < 0 {
		c.bitmap.Height = -c.bitmap.Height
	}

	if !h.Supported() {
		c.logger.Printf("bitmap of unknown format, unable to encode: %s", filepath)
		c.bitmap.Type = BitmapError
		return
	}
	c.bitmap.Type = BitmapMonochrome

	encoded := EncodedPath(filepath)

	var sum string
	if c.index != nil {
		if sum, err = c.fingerprint(filepath); err != nil {
			c.logger.Printf("failed to fingerprint: %s: %v", filepath, err)
			return
		}
	}

	if c.store.Exists(encoded) {
		stale := false
		if c.index != nil {
			known, err := c.index.Lookup(filepath)
			stale = err != nil || known != sum
		}
		if !stale {
			c.bitmap.Type = BitmapMonochromeCompressed
			return
		}
		// Records are appended, so a stale sibling has to go first.
		if err := c.store.Remove(encoded); err != nil {
			c.logger.Printf("failed to remove stale file: %s: %v", encoded, err)
			return
		}
	}

	if !c.store.Exists(EncodedDir) {
		if err := c.store.Mkdir(EncodedDir); err != nil {
			c.logger.Printf("failed to create %s: %v", EncodedDir, err)
			return
		}
	}

	if err := c.encodeBitmap(filepath, encoded, h); err != nil {
		c.logger.Printf("failed to encode: %s: %v", filepath, err)
		return
	}

	if c.index != nil {
		if err := c.index.Store(filepath, sum); err != nil {
			c.logger.Printf("failed to record fingerprint: %s: %v", filepath, err)
		}
	}

	c.bitmap.Type = BitmapMonochromeCompressed
}

// encodeBitmap sweeps every row of the open source file and appends one
// record per run of lit pixels to the encoded file. The store has a single
// handle, so the destination is opened fresh for each record and the source
// reopened afterwards.
func (c *Controller) encodeBitmap(src, dst string, h bmp.Header) error {
	c.logger.Printf("encoding: %s", src)

	width := int(h.Width)
	height := int(c.bitmap.Height)

	for row := 0; row < height; row++ {
		start, end, offset := 0, 0, 0
		for start < width {
			var err error
			if start, end, err = c.findScanline(h, row, offset); err != nil {
				return err
			}
			if start < end && end <= width {
				rec := cbm.Record{Row: uint16(row), Start: uint16(start), End: uint16(end)}
				if err := c.writeRecord(dst, rec); err != nil {
					return err
				}
				if err := c.store.OpenRead(src); err != nil {
					return err
				}
			}
			offset = end + 1
		}
	}

	return nil
}

func (c *Controller) writeRecord(dst string, rec cbm.Record) error {
	if err := c.store.OpenWrite(dst, false); err != nil {
		return err
	}
	return cbm.NewWriter(c.store).WriteRecord(rec)
}

// findScanline loads one row and locates the next run of lit pixels at or
// after the search offset: start is the first lit column, end the first
// unlit column after it.
func (c *Controller) findScanline(h bmp.Header, row, offset int) (start, end int, err error) {
	if err = c.loadRows(h, row, 1); err != nil {
		return 0, 0, err
	}

	width := int(h.Width)
	start = c.findPixel(true, offset, width)
	end = c.findPixel(false, start+1, width)
	return start, end, nil
}

// loadRows reads count consecutive rows of packed pixel data into a freshly
// allocated descriptor buffer, seeking past the row padding between rows.
// A short file silently ends the copy.
func (c *Controller) loadRows(h bmp.Header, row, count int) error {
	rowBytes := (int(h.Width) + 7) / 8
	stride := h.Stride()

	c.bitmap.Data = make([]byte, rowBytes+1)

	counter := 0
	for i := 0; i < count; i++ {
		if counter+rowBytes > len(c.bitmap.Data) {
			break
		}
		if err := c.store.Seek(int64(h.PixelDataOffset) + int64(row+i)*stride); err != nil {
			return err
		}
		n, err := c.store.Read(c.bitmap.Data[counter : counter+rowBytes])
		if err != nil || n < rowBytes {
			break
		}
		counter += n
	}

	return nil
}

// translate maps a logical column index to its physical bit position within
// the packed row buffer.
func translate(x int) int {
	return ((x/8)*2+1)*8 - 1 - x
}

func bitAt(data []byte, index int) bool {
	return data[index/8]>>(index%8)&1 != 0
}

// findPixel advances from index until the pixel at the translated position
// matches state, never scanning past limit. It returns limit when no such
// pixel exists, which keeps rows with no lit pixels from hanging the sweep.
func (c *Controller) findPixel(state bool, index, limit int) int {
	for ; index < limit; index++ {
		if bitAt(c.bitmap.Data, translate(index)) == state {
			return index
		}
	}
	return limit
}

// Runs reads back every record of the encoded sibling for the named source
// file.
func (c *Controller) Runs(filepath string) ([]cbm.Record, error) {
	if err := c.store.OpenRead(EncodedPath(filepath)); err != nil {
		return nil, err
	}
	return cbm.ReadAll(c.store)
}
