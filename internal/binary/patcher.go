package binary

import (
	"fmt"
	"io"

	"github.com/dyuri/gadgetconv/internal/model"
	"github.com/dyuri/gadgetconv/internal/palette"
)

// Patcher overwrites sprite and palette payloads in a private copy of a
// container buffer. The container has no way to relocate chunks, so every
// patch must keep the exact byte length of the region it replaces; anything
// else is rejected and leaves that region untouched.
//
// Validation reads always go to the original buffer.
type Patcher struct {
	orig   *Reader
	out    []byte
	factor int
}

// NewPatcher creates a patcher over a copy of c's data. factor is the
// interleave factor applied to replacement sprite pixels.
func NewPatcher(c *model.Container, factor int) *Patcher {
	out := make([]byte, len(c.Data))
	copy(out, c.Data)
	return &Patcher{
		orig:   NewReader(c),
		out:    out,
		factor: factor,
	}
}

// PatchSprite replaces the pixels of the sprite chunk at index. width and
// height must match the sprite header, and pixels must hold width*height
// indices in linear scanline order.
func (p *Patcher) PatchSprite(index, width, height int, pixels []byte) error {
	chunk, err := p.orig.Chunk(index)
	if err != nil {
		return err
	}
	if !chunk.IsSprite() {
		return model.ShapeMismatchError("chunk %d is not a sprite", index)
	}
	if width != chunk.Width || height != chunk.Height {
		return model.ShapeMismatchError("sprite %d: replacement is %dx%d, original is %dx%d",
			index, width, height, chunk.Width, chunk.Height)
	}
	if len(pixels) != chunk.PixelCount() {
		return model.ShapeMismatchError("sprite %d: got %d pixels, expected %d",
			index, len(pixels), chunk.PixelCount())
	}

	interleaved, err := Interleave(width, height, pixels, p.factor)
	if err != nil {
		return fmt.Errorf("interleave sprite %d: %w", index, err)
	}
	if len(interleaved) != len(chunk.Pixels) {
		return model.ShapeMismatchError("sprite %d: encoded %d bytes, chunk holds %d",
			index, len(interleaved), len(chunk.Pixels))
	}

	start := int(chunk.Ref.Offset) + model.HeaderSize
	copy(p.out[start:start+len(interleaved)], interleaved)
	return nil
}

// PatchPalette re-encodes pal8 (8-bit RGB triples, any count) as 6-bit and
// writes it over the palette chunk at index. The chunk's existing payload
// fixes the color count; pal8 is padded or truncated to fit it. The 4-byte
// header is preserved. It returns the color count written.
func (p *Patcher) PatchPalette(index int, pal8 []byte) (int, error) {
	if index < 0 || index >= len(p.orig.refs) {
		return 0, model.OutOfRangeError("palette index %d outside offset table of %d entries", index, len(p.orig.refs))
	}
	ref := p.orig.refs[index]
	if ref.End() > uint64(len(p.orig.data)) {
		return 0, model.OutOfRangeError("palette chunk %d exceeds data size %d", index, len(p.orig.data))
	}
	if ref.Length < model.HeaderSize {
		return 0, model.ShapeMismatchError("palette chunk %d too small (%d bytes)", index, ref.Length)
	}

	payloadLen := int(ref.Length) - model.HeaderSize
	if payloadLen%palette.Channels != 0 {
		return 0, model.ShapeMismatchError("palette chunk %d payload length %d is not a multiple of %d",
			index, payloadLen, palette.Channels)
	}

	colors := payloadLen / palette.Channels
	pal6 := palette.To6Bit(pal8, colors)
	if len(pal6) != payloadLen {
		return 0, model.ShapeMismatchError("palette chunk %d: encoded %d bytes, chunk holds %d",
			index, len(pal6), payloadLen)
	}

	start := int(ref.Offset) + model.HeaderSize
	copy(p.out[start:start+payloadLen], pal6)
	return colors, nil
}

// Bytes returns the patched buffer. It is always the same length as the
// original data.
func (p *Patcher) Bytes() []byte {
	return p.out
}

// WriteTo writes the patched buffer to w
func (p *Patcher) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.out)
	return int64(n), err
}
