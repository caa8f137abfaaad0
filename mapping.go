package floorsign

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NumFloors is the fixed slot count of the mapping table, one slot per
// floor the display can serve.
const NumFloors = 32

const (
	maxFloorLen = 2
	maxNameLen  = 19

	// A line whose first byte is the sentinel ends the table on disk.
	mappingSentinel = "$"
)

var (
	// ErrFloorNotFound is returned when no slot carries the requested
	// floor number.
	ErrFloorNotFound = errors.New("floorsign: no such floor")

	errFieldTooLong = errors.New("floorsign: mapping field too long")
	errBadMapping   = errors.New("floorsign: malformed mapping line")
	errTableTooLong = errors.New("floorsign: too many mapping rows")
)

// Mapping associates a floor number with up to two bitmap names.
type Mapping struct {
	FloorNo     string
	BitmapName  string
	BitmapName2 string
}

func (m Mapping) empty() bool {
	return m.BitmapName == "" && m.BitmapName2 == ""
}

// MappingTable is the fixed table of all floor mappings. Slots are never
// added or removed; clearing a mapping empties its bitmap names but keeps
// the slot and its floor number.
type MappingTable struct {
	slots [NumFloors]Mapping
}

// Slot returns the mapping at index i.
func (t *MappingTable) Slot(i int) Mapping {
	return t.slots[i]
}

// Mapped counts the slots with at least one bitmap name assigned.
func (t *MappingTable) Mapped() int {
	n := 0
	for _, m := range t.slots {
		if !m.empty() {
			n++
		}
	}
	return n
}

func (t *MappingTable) find(floorNo string) int {
	for i, m := range t.slots {
		if m.FloorNo == floorNo {
			return i
		}
	}
	return -1
}

func checkMapping(m Mapping) error {
	if len(m.FloorNo) > maxFloorLen {
		return errFieldTooLong
	}
	if len(m.BitmapName) > maxNameLen || len(m.BitmapName2) > maxNameLen {
		return errFieldTooLong
	}
	return nil
}

func parseMapping(line string) (Mapping, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return Mapping{}, errBadMapping
	}
	m := Mapping{
		FloorNo:     fields[0],
		BitmapName:  fields[1],
		BitmapName2: fields[2],
	}
	return m, checkMapping(m)
}

// LoadMappings replaces the in-memory table with the contents of the named
// store file. The returned table is borrowed from the Controller.
func (c *Controller) LoadMappings(filepath string) (*MappingTable, error) {
	b, err := c.readAll(filepath)
	if err != nil {
		c.logger.Printf("could not fetch mapping table: %v", err)
		return nil, err
	}

	var t MappingTable
	i := 0
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, mappingSentinel) {
			break
		}
		if i >= NumFloors {
			return nil, errTableTooLong
		}
		m, err := parseMapping(line)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d", err, i+1)
		}
		t.slots[i] = m
		i++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	c.mappings = t
	return &c.mappings, nil
}

// CommitMappings serializes all slots in order, followed by the sentinel
// line, truncating the destination file. In-memory edits are lost unless
// committed.
func (c *Controller) CommitMappings(filepath string) error {
	if err := c.store.OpenWrite(filepath, true); err != nil {
		return err
	}

	for _, m := range c.mappings.slots {
		if _, err := fmt.Fprintf(c.store, "%s,%s,%s\n", m.FloorNo, m.BitmapName, m.BitmapName2); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(c.store, mappingSentinel); err != nil {
		return err
	}

	return c.store.Close()
}

// InitMappings writes a blank table with floor numbers 1 through NumFloors
// and no bitmap names, replacing both the file and the in-memory table.
func (c *Controller) InitMappings(filepath string) error {
	var t MappingTable
	for i := range t.slots {
		t.slots[i] = Mapping{FloorNo: strconv.Itoa(i + 1)}
	}
	c.mappings = t
	return c.CommitMappings(filepath)
}

// Mappings returns the in-memory table, borrowed from the Controller.
func (c *Controller) Mappings() *MappingTable {
	return &c.mappings
}

// SetFloorMapping assigns up to two bitmap names to a floor.
func (c *Controller) SetFloorMapping(floorNo, bitmapName, bitmapName2 string) error {
	m := Mapping{FloorNo: floorNo, BitmapName: bitmapName, BitmapName2: bitmapName2}
	if err := checkMapping(m); err != nil {
		return err
	}

	loc := c.mappings.find(floorNo)
	if loc == -1 {
		return ErrFloorNotFound
	}
	c.mappings.slots[loc].BitmapName = bitmapName
	c.mappings.slots[loc].BitmapName2 = bitmapName2
	return nil
}

// RemoveFloorMapping clears the bitmap names of a floor. The slot and its
// floor number remain.
func (c *Controller) RemoveFloorMapping(floorNo string) error {
	loc := c.mappings.find(floorNo)
	if loc == -1 {
		return ErrFloorNotFound
	}
	c.mappings.slots[loc].BitmapName = ""
	c.mappings.slots[loc].BitmapName2 = ""
	return nil
}

// GetFloorMapping returns the two bitmap names assigned to a floor.
func (c *Controller) GetFloorMapping(floorNo string) (string, string, error) {
	loc := c.mappings.find(floorNo)
	if loc == -1 {
		return "", "", ErrFloorNotFound
	}
	return c.mappings.slots[loc].BitmapName, c.mappings.slots[loc].BitmapName2, nil
}
