package floorsign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonoColorDefault(t *testing.T) {
	c, _ := newTestController(t)
	assert.Equal(t, DefaultMonoColor, c.MonoColor())
}

func TestMonoColorRoundTrip(t *testing.T) {
	c, dir := newTestController(t)

	require.NoError(t, c.SetMonoColor(0x07e0))
	assert.Equal(t, uint16(0x07e0), c.MonoColor())

	// Two raw little-endian bytes on disk, nothing more.
	b, err := os.ReadFile(filepath.Join(dir, "monocolor"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xe0, 0x07}, b)

	// Overwrites, never appends.
	require.NoError(t, c.SetMonoColor(0x001f))
	b, err = os.ReadFile(filepath.Join(dir, "monocolor"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x00}, b)
}

func TestRGB565(t *testing.T) {
	assert.Equal(t, uint16(0xf800), RGB565(0xff, 0x00, 0x00))
	assert.Equal(t, uint16(0x07e0), RGB565(0x00, 0xff, 0x00))
	assert.Equal(t, uint16(0x001f), RGB565(0x00, 0x00, 0xff))
	assert.Equal(t, uint16(0xffff), RGB565(0xff, 0xff, 0xff))
}
