package palmap

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dyuri/gadgetconv/internal/model"
	"github.com/dyuri/gadgetconv/internal/palette"
)

// Set stores an entry, replacing any previous one for the same key
func (m *Map) Set(sprite int, e Entry) {
	m.entries[sprite] = e
}

// Generate builds a skeleton map for a classified container: every sprite
// is marked unknown and every bin holding a valid 6-bit palette is marked
// as a palette. Other chunks are left out.
func Generate(chunks []model.Chunk) *Map {
	m := New()
	for _, c := range chunks {
		switch {
		case c.IsSprite():
			m.Set(c.Index, Entry{Kind: MarkedUnknown})
		case c.Kind == model.KindBin && palette.IsValid6Bit(c.Payload):
			m.Set(c.Index, Entry{Kind: MarkedPalette})
		}
	}
	return m
}

// Write outputs the map as a JSON object with keys in ascending numeric
// order, one entry per line
func (m *Map) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	keys := m.Keys()
	if len(keys) == 0 {
		fmt.Fprintln(bw, "{}")
		return bw.Flush()
	}

	fmt.Fprintln(bw, "{")
	for i, k := range keys {
		sep := ","
		if i == len(keys)-1 {
			sep = ""
		}
		e := m.entries[k]
		switch e.Kind {
		case Mapped:
			fmt.Fprintf(bw, "  \"%d\": %d%s\n", k, e.Palette, sep)
		default:
			fmt.Fprintf(bw, "  \"%d\": %q%s\n", k, e.Kind.String(), sep)
		}
	}
	fmt.Fprintln(bw, "}")

	return bw.Flush()
}
