package binary

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dyuri/gadgetconv/internal/model"
)

// RecordSize is the size of one offset table record: u32 offset, u32 length.
const RecordSize = 8

// ParseOffsets decodes an offset table. The table has no header or padding;
// its length must be a multiple of RecordSize. Offsets are not checked
// against the data blob here.
func ParseOffsets(b []byte) ([]model.ChunkRef, error) {
	if len(b)%RecordSize != 0 {
		return nil, model.FormatError("offset table length %d is not a multiple of %d", len(b), RecordSize)
	}

	refs := make([]model.ChunkRef, 0, len(b)/RecordSize)
	for pos := 0; pos < len(b); pos += RecordSize {
		refs = append(refs, model.ChunkRef{
			Offset: binary.LittleEndian.Uint32(b[pos : pos+4]),
			Length: binary.LittleEndian.Uint32(b[pos+4 : pos+8]),
		})
	}
	return refs, nil
}

// ReadOffsets reads an entire offset table from r and parses it
func ReadOffsets(r io.Reader) ([]model.ChunkRef, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read offset table: %w", err)
	}
	return ParseOffsets(b)
}

// WriteOffsets serializes refs in the on-disk record format
func WriteOffsets(w io.Writer, refs []model.ChunkRef) error {
	buf := make([]byte, RecordSize*len(refs))
	for i, ref := range refs {
		pos := i * RecordSize
		binary.LittleEndian.PutUint32(buf[pos:], ref.Offset)
		binary.LittleEndian.PutUint32(buf[pos+4:], ref.Length)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write offset table: %w", err)
	}
	return nil
}
