package floorsign

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"floorsign/bmp"
	"floorsign/cbm"
	"floorsign/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestController(t *testing.T) (*Controller, string) {
	t.Helper()
	dir := t.TempDir()
	return New(store.NewDirStore(dir), nil, discardLogger()), dir
}

// writeFixtureBitmap writes a 16 by 4 monochrome bitmap with the given lit
// pixels into the store root.
func writeFixtureBitmap(t *testing.T, dir, name string, lit [][2]int) {
	t.Helper()

	m := image.NewPaletted(image.Rect(0, 0, 16, 4), color.Palette{color.Black, color.White})
	for _, px := range lit {
		m.SetColorIndex(px[0], px[1], 1)
	}

	var b bytes.Buffer
	require.NoError(t, bmp.Encode(&b, m))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b.Bytes(), 0644))
}

func fixturePixels() [][2]int {
	var lit [][2]int
	for x := 0; x < 4; x++ {
		lit = append(lit, [2]int{x, 0})
	}
	for x := 8; x < 12; x++ {
		lit = append(lit, [2]int{x, 0})
	}
	// Row 1 stays blank to prove the sweep terminates on empty rows.
	lit = append(lit, [2]int{15, 2})
	for x := 0; x < 16; x++ {
		lit = append(lit, [2]int{x, 3})
	}
	return lit
}

func TestEncodeRoundTrip(t *testing.T) {
	c, dir := newTestController(t)
	writeFixtureBitmap(t, dir, "sign.bmp", fixturePixels())

	b := c.GetBitmap("/sign.bmp", 0, 0)
	assert.Equal(t, int32(16), b.Width)
	assert.Equal(t, int32(4), b.Height)
	assert.Equal(t, BitmapMonochromeCompressed, b.Type)

	records, err := c.Runs("/sign.bmp")
	require.NoError(t, err)

	assert.Equal(t, []cbm.Record{
		{Row: 0, Start: 0, End: 4},
		{Row: 0, Start: 8, End: 12},
		{Row: 2, Start: 15, End: 16},
		{Row: 3, Start: 0, End: 16},
	}, records)
}

func TestTranslateInjective(t *testing.T) {
	const rowBits = 64

	seen := make(map[int]struct{}, rowBits)
	for x := 0; x < rowBits; x++ {
		y := translate(x)
		assert.GreaterOrEqual(t, y, 0)
		assert.Less(t, y, rowBits)
		_, dup := seen[y]
		assert.False(t, dup, "translate(%d) collides", x)
		seen[y] = struct{}{}
	}
}

type countingStore struct {
	store.Store
	writeOpens int
}

func (s *countingStore) OpenWrite(path string, overwrite bool) error {
	s.writeOpens++
	return s.Store.OpenWrite(path, overwrite)
}

func TestCacheIdempotence(t *testing.T) {
	dir := t.TempDir()
	cs := &countingStore{Store: store.NewDirStore(dir)}
	c := New(cs, nil, discardLogger())

	writeFixtureBitmap(t, dir, "sign.bmp", fixturePixels())

	c.GetBitmap("/sign.bmp", 0, 0)
	assert.Greater(t, cs.writeOpens, 0)

	cs.writeOpens = 0
	b := c.GetBitmap("/sign.bmp", 0, 0)
	assert.Equal(t, BitmapMonochromeCompressed, b.Type)
	assert.Zero(t, cs.writeOpens, "second request must not encode again")
}

// unsupportedBitmap builds a file with a valid signature and DIB size but 24
// bits per pixel.
func unsupportedBitmap(t *testing.T, dir, name string) {
	t.Helper()

	b := make([]byte, 64)
	b[0], b[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(b[0x0a:], 54)
	binary.LittleEndian.PutUint16(b[0x0e:], 40)
	binary.LittleEndian.PutUint32(b[0x12:], 4)
	binary.LittleEndian.PutUint32(b[0x16:], 2)
	b[0x1c] = 24

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0644))
}

func TestUnsupportedFormatRejected(t *testing.T) {
	c, dir := newTestController(t)
	unsupportedBitmap(t, dir, "deep.bmp")

	b := c.GetBitmap("/deep.bmp", 0, 0)
	assert.Equal(t, int32(4), b.Width)
	assert.Equal(t, int32(2), b.Height)
	assert.NotEqual(t, BitmapMonochromeCompressed, b.Type)
	assert.NotEqual(t, BitmapRGB888Compressed, b.Type)

	_, err := os.Stat(filepath.Join(dir, "enc", "deep.cbm"))
	assert.True(t, os.IsNotExist(err), "no sibling may be produced")
}

func TestUnknownDIBSize(t *testing.T) {
	c, dir := newTestController(t)

	b := make([]byte, 64)
	b[0], b[1] = 'B', 'M'
	binary.LittleEndian.PutUint16(b[0x0e:], 124)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "v5.bmp"), b, 0644))

	d := c.GetBitmap("/v5.bmp", 0, 0)
	assert.Equal(t, int32(-1), d.Width)
	assert.Equal(t, int32(-1), d.Height)
}

func TestOpenFailure(t *testing.T) {
	c, _ := newTestController(t)

	b := c.GetBitmap("/missing.bmp", 0, 0)
	assert.Equal(t, int32(-1), b.Width)
	assert.Equal(t, int32(-1), b.Height)
	assert.Equal(t, BitmapFileError, b.Type)
}

func TestEncodedPath(t *testing.T) {
	assert.Equal(t, "/enc/sign.cbm", EncodedPath("/sign.bmp"))
	assert.Equal(t, "/enc/up.cbm", EncodedPath("up.then.some.bmp"))
	assert.Equal(t, "/enc/plain.cbm", EncodedPath("/deep/dir/plain"))
}

func TestScanPrimesCache(t *testing.T) {
	c, dir := newTestController(t)
	writeFixtureBitmap(t, dir, "sign.bmp", fixturePixels())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a bitmap"), 0644))

	require.NoError(t, c.Scan())

	_, err := os.Stat(filepath.Join(dir, "enc", "sign.cbm"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "enc", "notes.cbm"))
	assert.True(t, os.IsNotExist(err))

	// Scan also seeds the display color file.
	_, err = os.Stat(filepath.Join(dir, "monocolor"))
	assert.NoError(t, err)
}

func TestStaleSourceReencoded(t *testing.T) {
	dir := t.TempDir()

	index, err := NewFingerprintIndex(filepath.Join(t.TempDir(), "fingerprint.db"))
	require.NoError(t, err)
	defer index.Close()

	c := New(store.NewDirStore(dir), index, discardLogger())

	writeFixtureBitmap(t, dir, "sign.bmp", [][2]int{{0, 0}})
	c.GetBitmap("/sign.bmp", 0, 0)

	records, err := c.Runs("/sign.bmp")
	require.NoError(t, err)
	require.Equal(t, []cbm.Record{{Row: 0, Start: 0, End: 1}}, records)

	// Replace the source; the recorded fingerprint no longer matches and
	// the sibling must be rebuilt.
	writeFixtureBitmap(t, dir, "sign.bmp", [][2]int{{2, 1}, {3, 1}})
	c.GetBitmap("/sign.bmp", 0, 0)

	records, err = c.Runs("/sign.bmp")
	require.NoError(t, err)
	assert.Equal(t, []cbm.Record{{Row: 1, Start: 2, End: 4}}, records)
}
