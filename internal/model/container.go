package model

// HeaderSize is the size of the fixed header at the start of every chunk.
// For sprites it holds the width and height; for other chunks it is opaque.
const HeaderSize = 4

// ChunkRef is one record of the offset table. It locates a chunk inside the
// data blob as data[Offset : Offset+Length].
type ChunkRef struct {
	Offset uint32 // Byte offset into the data blob
	Length uint32 // Chunk length in bytes, header included
}

// End returns the offset one past the last byte of the chunk.
func (c ChunkRef) End() uint64 {
	return uint64(c.Offset) + uint64(c.Length)
}

// Container is a data blob together with the offset table that indexes it.
// Chunks may overlap or be unordered; nothing assumes contiguity.
type Container struct {
	Data   []byte     // Raw contents of the .dat file
	Chunks []ChunkRef // Offset table, in file order
}

// NewContainer wraps an already loaded data blob and offset table.
func NewContainer(data []byte, chunks []ChunkRef) *Container {
	return &Container{
		Data:   data,
		Chunks: chunks,
	}
}

// Len returns the number of chunks in the offset table.
func (c *Container) Len() int {
	return len(c.Chunks)
}

// InRange reports whether i is a valid chunk index.
func (c *Container) InRange(i int) bool {
	return i >= 0 && i < len(c.Chunks)
}

// ChunkKind tells sprites apart from opaque binary chunks
type ChunkKind int

const (
	KindBin     ChunkKind = iota // Opaque binary data (palettes among others)
	KindSprite                   // Indexed-color sprite with a width/height header
	KindInvalid                  // Offset table record points outside the data blob
)

func (k ChunkKind) String() string {
	switch k {
	case KindSprite:
		return "sprite"
	case KindBin:
		return "bin"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Chunk is a classified chunk. Pixels is set for sprites, Payload for bins.
// Both alias the container buffer and must not be modified.
type Chunk struct {
	Index  int       // Position in the offset table
	Ref    ChunkRef  // Location in the data blob
	Kind   ChunkKind // Sprite or bin
	Width  int       // Sprite width in pixels
	Height int       // Sprite height in pixels

	Pixels  []byte // Interleaved pixel indices (sprites only)
	Payload []byte // Bytes following the 4-byte header (bins only)

	Err error // Why the chunk could not be read (KindInvalid only)
}

// IsSprite returns true if the chunk passed sprite header validation
func (c Chunk) IsSprite() bool {
	return c.Kind == KindSprite
}

// PixelCount returns width*height for sprites and 0 otherwise
func (c Chunk) PixelCount() int {
	if c.Kind != KindSprite {
		return 0
	}
	return c.Width * c.Height
}
