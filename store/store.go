/*
Package store abstracts the block-oriented file store the display controller
keeps its image assets on.

The store models the constraint of the underlying hardware: exactly one file
handle is live at any time. Opening a different path closes whatever was open
before, on every path including error paths. Callers must therefore not
interleave unrelated file operations with a multi-step sequence such as an
encode run; a mutex guards the current-handle state so that misuse from
multiple goroutines cannot corrupt the handle itself.
*/
package store

import "errors"

// ErrNoFile is returned by handle operations when no file is currently open.
var ErrNoFile = errors.New("store: no open file")

// Store is the primitive file interface consumed by the codec and the
// mapping table. Read and Write report the transferred byte count; a short
// transfer is not an error.
type Store interface {
	// OpenRead opens path for reading, making it the current handle. If
	// path is already the current read handle it is rewound to offset 0
	// instead of being reopened.
	OpenRead(path string) error

	// OpenWrite opens path for appending, making it the current handle.
	// With overwrite set any existing file is removed first.
	OpenWrite(path string, overwrite bool) error

	// Seek positions the current handle at an absolute offset.
	Seek(offset int64) error

	Read(p []byte) (int, error)
	Write(p []byte) (int, error)

	// Size reports the size of the current handle's file.
	Size() (int64, error)

	// Current reports the path of the open handle, or "" if none.
	Current() string

	// Close releases the current handle. Closing with no open handle is
	// not an error.
	Close() error

	Exists(path string) bool
	Mkdir(path string) error
	Remove(path string) error

	// List returns the names of the entries directly under path, in
	// directory order. Path "/" is the store root.
	List(path string) ([]string, error)
}
