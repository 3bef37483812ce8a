// Package binary implements the on-disk layout of the gadget container: the
// offset table, chunk classification, the horizontal pixel interleave and
// in-place patching of sprite and palette chunks.
package binary

import (
	"encoding/binary"

	"github.com/dyuri/gadgetconv/internal/model"
)

// Reader classifies the chunks of a container
type Reader struct {
	data   []byte
	refs   []model.ChunkRef
	endian binary.ByteOrder // Everything in the container is little-endian
}

// NewReader creates a new chunk reader over c. The container buffer is only
// read, never modified.
func NewReader(c *model.Container) *Reader {
	return &Reader{
		data:   c.Data,
		refs:   c.Chunks,
		endian: binary.LittleEndian,
	}
}

// Len returns the number of chunks in the offset table
func (r *Reader) Len() int {
	return len(r.refs)
}

// Parse classifies every chunk in index order. Chunks that lie outside the
// data blob are returned with KindInvalid and their Err set; they do not
// stop the scan.
func (r *Reader) Parse() []model.Chunk {
	chunks := make([]model.Chunk, len(r.refs))
	for i := range r.refs {
		chunk, err := r.Chunk(i)
		if err != nil {
			chunk = model.Chunk{
				Index: i,
				Ref:   r.refs[i],
				Kind:  model.KindInvalid,
				Err:   err,
			}
		}
		chunks[i] = chunk
	}
	return chunks
}

// Chunk classifies the chunk at index i
func (r *Reader) Chunk(i int) (model.Chunk, error) {
	if i < 0 || i >= len(r.refs) {
		return model.Chunk{}, model.OutOfRangeError("chunk index %d outside offset table of %d entries", i, len(r.refs))
	}
	chunk, err := r.classify(r.refs[i])
	chunk.Index = i
	return chunk, err
}

// Classify decides whether the chunk at ref is a sprite or an opaque bin.
//
// A chunk is a sprite when it is at least 4 bytes long and its u16
// width*height header accounts for every remaining byte. Anything else is a
// bin whose payload is the data after the 4-byte header. The only error is a
// record that points past the end of data.
func Classify(data []byte, ref model.ChunkRef) (model.Chunk, error) {
	r := &Reader{data: data, endian: binary.LittleEndian}
	return r.classify(ref)
}

func (r *Reader) classify(ref model.ChunkRef) (model.Chunk, error) {
	chunk := model.Chunk{Ref: ref, Kind: model.KindBin}

	if ref.End() > uint64(len(r.data)) {
		return chunk, model.OutOfRangeError("chunk at offset %d length %d exceeds data size %d", ref.Offset, ref.Length, len(r.data))
	}

	start := int(ref.Offset)
	length := int(ref.Length)

	if length >= model.HeaderSize {
		width := int(r.endian.Uint16(r.data[start : start+2]))
		height := int(r.endian.Uint16(r.data[start+2 : start+4]))

		if width*height == length-model.HeaderSize {
			chunk.Kind = model.KindSprite
			chunk.Width = width
			chunk.Height = height
			chunk.Pixels = r.data[start+model.HeaderSize : start+length]
			return chunk, nil
		}
	}

	if length > model.HeaderSize {
		chunk.Payload = r.data[start+model.HeaderSize : start+length]
	} else {
		chunk.Payload = []byte{}
	}
	return chunk, nil
}
