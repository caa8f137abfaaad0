/*
Package cbm implements the compressed bitmap format cached next to each
source image under the /enc directory.

An encoded file is a bare sequence of fixed-size records, one per run of lit
pixels in the source image, ordered by ascending row and, within a row, by
ascending start column. Each record is eight bytes: row, start and end as
16-bit little-endian values followed by two 0xff pad bytes that keep every
write 32-bit aligned. There is no file header, record count or checksum; the
number of records is the file size divided by eight.
*/
package cbm

import (
	"encoding/binary"
	"errors"
	"io"
)

// RecordSize is the encoded size of one Record in bytes.
const RecordSize = 8

const pad = 0xff

var errShortRecord = errors.New("cbm: record too short")

// Record describes one run of lit pixels: columns [Start, End) on row Row.
type Record struct {
	Row   uint16
	Start uint16
	End   uint16
}

// MarshalBinary encodes the record into its eight-byte form.
func (r Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordSize)
	binary.LittleEndian.PutUint16(b[0:], r.Row)
	binary.LittleEndian.PutUint16(b[2:], r.Start)
	binary.LittleEndian.PutUint16(b[4:], r.End)
	b[6], b[7] = pad, pad
	return b, nil
}

// UnmarshalBinary decodes the record from its eight-byte form. The pad bytes
// are not inspected.
func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) < RecordSize {
		return errShortRecord
	}
	r.Row = binary.LittleEndian.Uint16(b[0:])
	r.Start = binary.LittleEndian.Uint16(b[2:])
	r.End = binary.LittleEndian.Uint16(b[4:])
	return nil
}

// Writer appends records to an encoded file.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord appends one record.
func (w *Writer) WriteRecord(r Record) error {
	b, _ := r.MarshalBinary()
	_, err := w.w.Write(b)
	return err
}

// Reader reads records from an encoded file in order.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadRecord returns the next record, or io.EOF when the file is exhausted.
func (r *Reader) ReadRecord() (Record, error) {
	var b [RecordSize]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return Record{}, err
	}
	var rec Record
	if err := rec.UnmarshalBinary(b[:]); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ReadAll returns every remaining record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	cr := NewReader(r)
	var records []Record
	for {
		rec, err := cr.ReadRecord()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
