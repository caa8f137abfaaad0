package floorsign

import (
	"errors"
	"io"
)

var (
	// ErrExists is returned by CopyFile when the destination already
	// exists and overwrite was not requested.
	ErrExists = errors.New("floorsign: file already exists")

	// ErrNoEntry is returned by the encoded-directory browsing helpers
	// when the named entry is not present.
	ErrNoEntry = errors.New("floorsign: no such entry")
)

const copyChunk = 64

// readAll reads the whole of a stored file through the single handle.
func (c *Controller) readAll(filepath string) ([]byte, error) {
	if err := c.store.OpenRead(filepath); err != nil {
		return nil, err
	}

	size, err := c.store.Size()
	if err != nil {
		return nil, err
	}

	b := make([]byte, size)
	n, err := c.store.Read(b)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return b[:n], nil
}

// CopyFile duplicates a stored file. The store has one handle, so the copy
// alternates between source and destination in small chunks, reopening and
// seeking the source for each chunk.
func (c *Controller) CopyFile(src, dst string, overwrite bool) error {
	if c.store.Exists(dst) {
		if !overwrite {
			return ErrExists
		}
		if err := c.store.Remove(dst); err != nil {
			return err
		}
	}

	if err := c.store.OpenRead(src); err != nil {
		return err
	}
	size, err := c.store.Size()
	if err != nil {
		return err
	}

	buf := make([]byte, copyChunk)
	for offset := int64(0); offset < size; offset += copyChunk {
		if err := c.store.OpenRead(src); err != nil {
			return err
		}
		if err := c.store.Seek(offset); err != nil {
			return err
		}
		n, err := c.store.Read(buf)
		if err != nil && err != io.EOF {
			return err
		}
		if err := c.store.OpenWrite(dst, false); err != nil {
			return err
		}
		if _, err := c.store.Write(buf[:n]); err != nil {
			return err
		}
	}

	return c.store.Close()
}

func (c *Controller) encodedNeighbor(current string, step int) (string, error) {
	names, err := c.store.List(EncodedDir)
	if err != nil {
		return "", err
	}
	for i, n := range names {
		if n == current {
			// Browsing wraps around at either end.
			return names[((i+step)%len(names)+len(names))%len(names)], nil
		}
	}
	return "", ErrNoEntry
}

// NextEncoded returns the entry after current in the encoded directory,
// wrapping to the first entry at the end.
func (c *Controller) NextEncoded(current string) (string, error) {
	return c.encodedNeighbor(current, 1)
}

// PrevEncoded returns the entry before current in the encoded directory,
// wrapping to the last entry at the start.
func (c *Controller) PrevEncoded(current string) (string, error) {
	return c.encodedNeighbor(current, -1)
}
