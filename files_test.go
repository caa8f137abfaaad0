package floorsign

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	c, dir := newTestController(t)

	// Longer than one copy chunk so the reopen dance is exercised.
	content := bytes.Repeat([]byte("0123456789abcdef"), 20)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src.bin"), content, 0644))

	require.NoError(t, c.CopyFile("/src.bin", "/dst.bin", false))

	got, err := os.ReadFile(filepath.Join(dir, "dst.bin"))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.ErrorIs(t, c.CopyFile("/src.bin", "/dst.bin", false), ErrExists)
	assert.NoError(t, c.CopyFile("/src.bin", "/dst.bin", true))
}

func TestEncodedBrowse(t *testing.T) {
	c, dir := newTestController(t)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "enc"), 0755))
	for _, name := range []string{"a.cbm", "b.cbm", "c.cbm"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "enc", name), nil, 0644))
	}

	next, err := c.NextEncoded("a.cbm")
	require.NoError(t, err)
	assert.Equal(t, "b.cbm", next)

	next, err = c.NextEncoded("c.cbm")
	require.NoError(t, err)
	assert.Equal(t, "a.cbm", next, "browsing wraps at the end")

	prev, err := c.PrevEncoded("a.cbm")
	require.NoError(t, err)
	assert.Equal(t, "c.cbm", prev, "browsing wraps at the start")

	_, err = c.NextEncoded("zz.cbm")
	assert.ErrorIs(t, err, ErrNoEntry)
}
