package floorsign

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"floorsign/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mappingFile = "/mapping.ini"

func TestMappingInit(t *testing.T) {
	c, dir := newTestController(t)

	require.NoError(t, c.InitMappings(mappingFile))

	b, err := os.ReadFile(filepath.Join(dir, "mapping.ini"))
	require.NoError(t, err)

	lines := strings.Split(string(b), "\n")
	require.GreaterOrEqual(t, len(lines), NumFloors+1)
	assert.Equal(t, "1,,", lines[0])
	assert.Equal(t, "32,,", lines[NumFloors-1])
	assert.Equal(t, "$", lines[NumFloors])

	assert.Zero(t, c.Mappings().Mapped())
}

func TestMappingCRUD(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.InitMappings(mappingFile))

	require.NoError(t, c.SetFloorMapping("5", "up.bmp", "dn.bmp"))
	a, b, err := c.GetFloorMapping("5")
	require.NoError(t, err)
	assert.Equal(t, "up.bmp", a)
	assert.Equal(t, "dn.bmp", b)
	assert.Equal(t, 1, c.Mappings().Mapped())

	require.NoError(t, c.RemoveFloorMapping("5"))
	a, b, err = c.GetFloorMapping("5")
	require.NoError(t, err, "slot must persist after removal")
	assert.Empty(t, a)
	assert.Empty(t, b)
	assert.Zero(t, c.Mappings().Mapped())

	assert.ErrorIs(t, c.SetFloorMapping("99", "x.bmp", ""), ErrFloorNotFound)
	assert.ErrorIs(t, c.RemoveFloorMapping("99"), ErrFloorNotFound)
	_, _, err = c.GetFloorMapping("99")
	assert.ErrorIs(t, err, ErrFloorNotFound)
}

func TestMappingCommitReload(t *testing.T) {
	c, _ := newTestController(t)
	require.NoError(t, c.InitMappings(mappingFile))

	require.NoError(t, c.SetFloorMapping("2", "lobby.bmp", ""))
	require.NoError(t, c.SetFloorMapping("31", "roof.bmp", "roof2.bmp"))
	require.NoError(t, c.CommitMappings(mappingFile))

	before := *c.Mappings()

	// Wipe the in-memory table, then load it back from the file.
	c.mappings = MappingTable{}
	got, err := c.LoadMappings(mappingFile)
	require.NoError(t, err)

	for i := 0; i < NumFloors; i++ {
		assert.Equal(t, before.Slot(i), got.Slot(i), "slot %d", i)
	}
	assert.Equal(t, 2, got.Mapped())
}

func TestMappingFieldValidation(t *testing.T) {
	c, dir := newTestController(t)
	require.NoError(t, c.InitMappings(mappingFile))

	assert.Error(t, c.SetFloorMapping("5", strings.Repeat("x", 20)+".bmp", ""))
	assert.Error(t, c.SetFloorMapping("123", "up.bmp", ""))

	// Overlong fields on disk are rejected instead of overflowing.
	bad := "1," + strings.Repeat("y", 40) + ",\n$\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.ini"), []byte(bad), 0644))
	_, err := c.LoadMappings("/bad.ini")
	assert.Error(t, err)
}

func TestMappingUninitializedLoad(t *testing.T) {
	c := New(store.NewDirStore(t.TempDir()), nil, discardLogger())

	_, err := c.LoadMappings(mappingFile)
	assert.Error(t, err)
}
