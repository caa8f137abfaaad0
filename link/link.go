/*
Package link implements the chunked file-transfer protocol spoken over the
point-to-point serial connection between two controllers.

A transfer moves a stored file in 200-byte chunks, each one gated by a READY
byte from the receiving side, preceded by the file size as a 32-bit
little-endian value. The protocol carries raw file bytes only; any
transcoding happens in the storage layer. Every wait on the peer is bounded
by the connection timeout.
*/
package link

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"floorsign/store"
)

// Protocol command bytes.
const (
	CmdDownload = 2
	CmdUpload   = 3
	Ready       = 7
)

const chunkSize = 200

// DefaultTimeout bounds each wait on the peer.
const DefaultTimeout = 10 * time.Second

var (
	// ErrTimeout is returned when the peer does not respond within the
	// connection timeout.
	ErrTimeout = errors.New("link: timed out waiting for peer")

	errNotReady = errors.New("link: peer did not respond with READY")
)

// Conn is one end of a point-to-point link, moving files in and out of the
// attached store.
type Conn struct {
	rw      io.ReadWriter
	store   store.Store
	timeout time.Duration
	logger  *log.Logger
}

// New returns a Conn over rw backed by st. A timeout of zero selects
// DefaultTimeout.
func New(rw io.ReadWriter, st store.Store, timeout time.Duration, logger *log.Logger) *Conn {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Conn{
		rw:      rw,
		store:   st,
		timeout: timeout,
		logger:  logger,
	}
}

// readFull fills p from the link, failing with ErrTimeout when the peer
// stays silent too long.
func (c *Conn) readFull(p []byte) error {
	done := make(chan error, 1)
	go func() {
		_, err := io.ReadFull(c.rw, p)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(c.timeout):
		return ErrTimeout
	}
}

func (c *Conn) writeByte(b byte) error {
	_, err := c.rw.Write([]byte{b})
	return err
}

func (c *Conn) writeName(filepath string) error {
	if len(filepath) > 0xff {
		return fmt.Errorf("link: filename too long: %s", filepath)
	}
	if _, err := c.rw.Write([]byte{byte(len(filepath))}); err != nil {
		return err
	}
	_, err := io.WriteString(c.rw, filepath)
	return err
}

func (c *Conn) awaitReady() error {
	var b [1]byte
	if err := c.readFull(b[:]); err != nil {
		return err
	}
	if b[0] != Ready {
		return errNotReady
	}
	return nil
}

// Download receives a file from the peer and stores it under filepath. With
// push set the peer initiated the transfer; otherwise a download request is
// sent first.
func (c *Conn) Download(filepath string, push bool) error {
	if !push {
		if err := c.writeByte(CmdDownload); err != nil {
			return err
		}
		if err := c.writeName(filepath); err != nil {
			return err
		}
	}

	if err := c.writeByte(Ready); err != nil {
		return err
	}

	var sz [4]byte
	if err := c.readFull(sz[:]); err != nil {
		return err
	}
	size := binary.LittleEndian.Uint32(sz[:])

	c.logger.Printf("downloading %s, %d bytes", filepath, size)

	if err := c.store.OpenWrite(filepath, true); err != nil {
		return fmt.Errorf("link: aborting download: %w", err)
	}

	buf := make([]byte, chunkSize)
	for i := uint32(0); i < size; i += chunkSize {
		if err := c.writeByte(Ready); err != nil {
			return err
		}

		n := uint32(chunkSize)
		if size-i < n {
			n = size - i
		}
		if err := c.readFull(buf[:n]); err != nil {
			return err
		}
		if _, err := c.store.Write(buf[:n]); err != nil {
			return err
		}
	}

	c.logger.Printf("download complete: %s", filepath)

	return c.store.Close()
}

// Upload sends a stored file to the peer. With push set an upload request
// naming the file is sent first; otherwise the peer asked for it already.
func (c *Conn) Upload(filepath string, push bool) error {
	if err := c.store.OpenRead(filepath); err != nil {
		return fmt.Errorf("link: aborting upload: %w", err)
	}
	size, err := c.store.Size()
	if err != nil {
		return err
	}

	if push {
		if err := c.writeByte(CmdUpload); err != nil {
			return err
		}
		if err := c.writeName(filepath); err != nil {
			return err
		}
	}

	if err := c.awaitReady(); err != nil {
		return err
	}

	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], uint32(size))
	if _, err := c.rw.Write(sz[:]); err != nil {
		return err
	}

	c.logger.Printf("uploading %s, %d bytes", filepath, size)

	buf := make([]byte, chunkSize)
	for i := int64(0); i < size; i += chunkSize {
		if err := c.awaitReady(); err != nil {
			return err
		}

		n := int64(chunkSize)
		if size-i < n {
			n = size - i
		}
		if err := c.store.OpenRead(filepath); err != nil {
			return err
		}
		if err := c.store.Seek(i); err != nil {
			return err
		}
		if _, err := c.store.Read(buf[:n]); err != nil {
			return err
		}
		if _, err := c.rw.Write(buf[:n]); err != nil {
			return err
		}
	}

	c.logger.Printf("upload complete: %s", filepath)

	return c.store.Close()
}
