package gadgetconv

import (
	"fmt"

	"github.com/dyuri/gadgetconv/internal/model"
	"github.com/dyuri/gadgetconv/internal/palette"
	"github.com/dyuri/gadgetconv/internal/palmap"
)

// Issue is a single validation finding
type Issue struct {
	Chunk   int // -1 when the issue is not tied to a chunk
	Message string
}

func (i Issue) String() string {
	if i.Chunk < 0 {
		return i.Message
	}
	return fmt.Sprintf("[%03d] %s", i.Chunk, i.Message)
}

// Validation holds the findings of Validate
type Validation struct {
	Errors   []Issue
	Warnings []Issue
}

func (v *Validation) error(chunk int, msg string, args ...interface{}) {
	v.Errors = append(v.Errors, Issue{Chunk: chunk, Message: fmt.Sprintf(msg, args...)})
}

func (v *Validation) warning(chunk int, msg string, args ...interface{}) {
	v.Warnings = append(v.Warnings, Issue{Chunk: chunk, Message: fmt.Sprintf(msg, args...)})
}

// HasErrors reports whether any errors were found
func (v *Validation) HasErrors() bool {
	return len(v.Errors) > 0
}

// HasWarnings reports whether any warnings were found
func (v *Validation) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// Failed reports whether validation failed; with strict, warnings count too
func (v *Validation) Failed(strict bool) bool {
	return v.HasErrors() || (strict && v.HasWarnings())
}

// Validate cross-checks a palette map against a classified container.
//
// Errors are entries an extract or repack run would skip: mapped keys that
// are not sprites, and palette targets that are out of range, not bins or
// not valid 6-bit palettes. Chunks outside the data file are errors too.
// Warnings cover "palette" markers on chunks that hold no palette, sprites
// still marked "unknown" and sprites missing from the map.
func Validate(inv *Inventory, m *palmap.Map) *Validation {
	v := &Validation{}

	for _, c := range inv.Chunks {
		if c.Kind == model.KindInvalid {
			v.error(c.Index, "chunk outside data file: %v", c.Err)
		}
	}

	for _, key := range m.Keys() {
		entry, _ := m.Entry(key)
		if key >= len(inv.Chunks) {
			v.error(key, "map entry for chunk %d, container has %d chunks", key, len(inv.Chunks))
			continue
		}
		chunk := inv.Chunks[key]

		switch entry.Kind {
		case palmap.Mapped:
			if !chunk.IsSprite() {
				v.error(key, "mapped to palette %d but chunk is a %s", entry.Palette, chunk.Kind)
			}
			v.validateTarget(inv, key, entry.Palette)
		case palmap.MarkedPalette:
			if chunk.Kind != model.KindBin || !palette.IsValid6Bit(chunk.Payload) {
				v.warning(key, "marked %q but chunk is not a 6-bit palette", palmap.Palette)
			}
		case palmap.MarkedUnknown:
			if chunk.IsSprite() {
				v.warning(key, "sprite has no palette assigned")
			}
		}
	}

	for _, c := range inv.Chunks {
		if !c.IsSprite() {
			continue
		}
		if _, ok := m.Entry(c.Index); !ok {
			v.warning(c.Index, "sprite missing from palette map")
		}
	}

	return v
}

func (v *Validation) validateTarget(inv *Inventory, key, pal int) {
	if pal < 0 || pal >= len(inv.Chunks) {
		v.error(key, "palette %d out of range", pal)
		return
	}
	target := inv.Chunks[pal]
	if target.Kind != model.KindBin {
		v.error(key, "palette %d is a %s, not a bin", pal, target.Kind)
		return
	}
	if !palette.IsValid6Bit(target.Payload) {
		v.error(key, "palette %d is not a valid 6-bit palette", pal)
	}
}
