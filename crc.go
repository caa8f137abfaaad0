package floorsign

import (
	"fmt"
	"hash/crc32"
	"io"
)

const fingerprintChunk = 512

// fingerprint computes the CRC-32 of a stored file's contents, read through
// the single store handle.
func (c *Controller) fingerprint(filepath string) (string, error) {
	if err := c.store.OpenRead(filepath); err != nil {
		return "", err
	}

	h := crc32.NewIEEE()
	buf := make([]byte, fingerprintChunk)
	for {
		n, err := c.store.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF || n < len(buf) {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%08X", h.Sum32()), nil
}
