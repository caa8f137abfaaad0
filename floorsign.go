/*
Package floorsign manages the persistent image assets of a floor-display
controller backed by a block-oriented file store.

The controller accepts monochrome bitmaps, lazily transcodes each one into a
compact run-length sibling file cached under /enc, and keeps a small table
mapping floor numbers to the bitmaps shown for them.
*/
package floorsign

import (
	"log"

	"floorsign/store"
)

// Controller owns the single store handle, the shared bitmap descriptor and
// the in-memory mapping table.
type Controller struct {
	store  store.Store
	index  *FingerprintIndex
	logger *log.Logger

	bitmap   Bitmap
	mappings MappingTable
}

// New returns a Controller using the given store. The fingerprint index is
// optional; without one the transcoding cache decides freshness purely on
// the existence of the encoded sibling.
func New(st store.Store, index *FingerprintIndex, logger *log.Logger) *Controller {
	return &Controller{
		store:  st,
		index:  index,
		logger: logger,
		bitmap: Bitmap{
			Width:  -1,
			Height: -1,
			Type:   BitmapFileError,
			Data:   make([]byte, 1),
		},
	}
}
