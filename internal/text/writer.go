// Package text implements the human-readable formats of gadgetconv: the
// chunk listing printed by the info command and the index-set syntax used to
// select sprites.
package text

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/dyuri/gadgetconv/internal/model"
	"github.com/dyuri/gadgetconv/internal/palette"
)

// Summary counts chunks by kind
type Summary struct {
	Chunks   int
	Sprites  int
	Palettes int // Bins holding a valid 6-bit palette
	Bins     int // All bins, palettes included
	Invalid  int
}

// Summarize counts the chunks of a classified container
func Summarize(chunks []model.Chunk) Summary {
	s := Summary{Chunks: len(chunks)}
	for _, c := range chunks {
		switch c.Kind {
		case model.KindSprite:
			s.Sprites++
		case model.KindBin:
			s.Bins++
			if palette.IsValid6Bit(c.Payload) {
				s.Palettes++
			}
		default:
			s.Invalid++
		}
	}
	return s
}

// Writer writes chunk listings
type Writer struct {
	w io.Writer
}

// NewWriter creates a new listing writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteSummary writes the per-kind chunk counts
func (w *Writer) WriteSummary(path string, dataSize int, s Summary) error {
	_, err := fmt.Fprintf(w.w, "Container: %s\n  Data size: %s (%d bytes)\n  Chunks:    %d\n  Sprites:   %d\n  Bins:      %d (%d palettes)\n",
		path, humanize.Bytes(uint64(dataSize)), dataSize, s.Chunks, s.Sprites, s.Bins, s.Palettes)
	if err != nil {
		return err
	}
	if s.Invalid > 0 {
		_, err = fmt.Fprintf(w.w, "  Invalid:   %d\n", s.Invalid)
	}
	return err
}

// WriteChunks writes one aligned line per chunk
func (w *Writer) WriteChunks(chunks []model.Chunk) error {
	tw := tabwriter.NewWriter(w.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "INDEX\tOFFSET\tLENGTH\tKIND\tDETAIL")
	for _, c := range chunks {
		fmt.Fprintf(tw, "%d\t0x%08x\t%d\t%s\t%s\n", c.Index, c.Ref.Offset, c.Ref.Length, c.Kind, Detail(c))
	}

	return tw.Flush()
}

// Detail describes the contents of a chunk in a few words
func Detail(c model.Chunk) string {
	switch c.Kind {
	case model.KindSprite:
		return fmt.Sprintf("%dx%d", c.Width, c.Height)
	case model.KindBin:
		if palette.IsValid6Bit(c.Payload) {
			return fmt.Sprintf("6-bit palette, %d colors", palette.ColorCount(c.Payload))
		}
		return fmt.Sprintf("%d payload bytes", len(c.Payload))
	default:
		if c.Err != nil {
			return c.Err.Error()
		}
		return ""
	}
}
