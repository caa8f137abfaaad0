package floorsign

import "floorsign/bmp"

// Scan walks every entry at the store root and primes the transcoding cache
// for each file carrying the bitmap signature. It also seeds the display
// color file so later reads always find one. The store has a single handle,
// so the walk is strictly sequential.
func (c *Controller) Scan() error {
	entries, err := c.store.List("/")
	if err != nil {
		return err
	}

	for _, name := range entries {
		if err := c.store.OpenRead("/" + name); err != nil {
			continue
		}
		if !bmp.IsBitmap(c.store) {
			continue
		}
		c.GetBitmap("/"+name, 0, 0)
	}

	if !c.store.Exists(monoColorFile) {
		if err := c.SetMonoColor(DefaultMonoColor); err != nil {
			c.logger.Printf("failed to seed display color: %v", err)
		}
	}

	return c.store.Close()
}
