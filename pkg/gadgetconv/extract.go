package gadgetconv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/dyuri/gadgetconv/internal/binary"
	"github.com/dyuri/gadgetconv/internal/img"
	"github.com/dyuri/gadgetconv/internal/model"
	"github.com/dyuri/gadgetconv/internal/palette"
	"github.com/dyuri/gadgetconv/internal/palmap"
	"github.com/dyuri/gadgetconv/internal/text"
)

// Extracted describes one sprite written by an extract run
type Extracted struct {
	Sprite  int
	Palette int
	Width   int
	Height  int
	Path    string
}

// ExtractReport is the outcome of an extract run
type ExtractReport struct {
	Chunks    int
	Extracted []Extracted
	Skipped   []Skip
}

// SpriteSink receives each decoded sprite and returns where it was stored
type SpriteSink func(sprite, pal int, s *img.Sprite) (string, error)

// Extractor decodes the sprites of a container with their mapped palettes
type Extractor struct {
	log     logrus.FieldLogger
	factor  int
	sprites *text.IndexSet
	cache   *palette.Cache
}

// NewExtractor creates an extractor. sprites restricts the run to a subset
// of chunk indices; nil selects all of them. A nil logger discards output.
func NewExtractor(factor int, sprites *text.IndexSet, log logrus.FieldLogger) *Extractor {
	if log == nil {
		log = discardLogger()
	}
	return &Extractor{
		log:     log,
		factor:  factor,
		sprites: sprites,
		cache:   palette.NewCache(),
	}
}

// Run processes every selected sprite chunk in index order. Per-sprite
// failures are logged and collected in the report; they never stop the run.
func (e *Extractor) Run(c *model.Container, m *palmap.Map, sink SpriteSink) *ExtractReport {
	chunks := binary.NewReader(c).Parse()
	e.log.WithField("chunks", len(chunks)).Info("Classification complete")

	report := &ExtractReport{Chunks: len(chunks)}
	for _, chunk := range chunks {
		if !e.sprites.Contains(chunk.Index) {
			continue
		}

		log := e.log.WithField("chunk", chunk.Index)

		switch chunk.Kind {
		case model.KindInvalid:
			log.WithError(chunk.Err).Warn("Chunk lies outside the data file; skipping")
			report.Skipped = append(report.Skipped, Skip{Index: chunk.Index, Err: chunk.Err})
			continue
		case model.KindBin:
			log.WithField("length", chunk.Ref.Length).Debug("Not a sprite")
			continue
		}

		x, err := e.extract(chunks, chunk, m, sink)
		if err != nil {
			entry := log.WithError(err)
			if isUnmapped(err) {
				entry.Warn("No palette mapping for sprite; skipping")
			} else {
				entry.Error("Sprite skipped")
			}
			report.Skipped = append(report.Skipped, Skip{Index: chunk.Index, Err: err})
			continue
		}

		log.WithFields(logrus.Fields{
			"palette": x.Palette,
			"width":   x.Width,
			"height":  x.Height,
			"file":    x.Path,
		}).Info("Sprite extracted")
		report.Extracted = append(report.Extracted, *x)
	}

	return report
}

var errUnmapped = model.MappingError("no palette mapping for sprite")

func isUnmapped(err error) bool {
	return err == errUnmapped
}

func (e *Extractor) extract(chunks []model.Chunk, chunk model.Chunk, m *palmap.Map, sink SpriteSink) (*Extracted, error) {
	pal8, palIndex, err := e.resolvePalette(chunks, chunk.Index, m)
	if err != nil {
		return nil, err
	}

	pixels, err := binary.Deinterleave(chunk.Width, chunk.Height, chunk.Pixels, e.factor)
	if err != nil {
		return nil, fmt.Errorf("deinterleave: %w", err)
	}

	s := &img.Sprite{
		Width:   chunk.Width,
		Height:  chunk.Height,
		Pixels:  pixels,
		Palette: pal8,
	}
	path, err := sink(chunk.Index, palIndex, s)
	if err != nil {
		return nil, fmt.Errorf("write image with palette %03d: %w", palIndex, err)
	}

	return &Extracted{
		Sprite:  chunk.Index,
		Palette: palIndex,
		Width:   chunk.Width,
		Height:  chunk.Height,
		Path:    path,
	}, nil
}

// resolvePalette finds the palette chunk mapped to a sprite and returns its
// canonical 8-bit form
func (e *Extractor) resolvePalette(chunks []model.Chunk, sprite int, m *palmap.Map) ([]byte, int, error) {
	pal, ok := m.Resolve(sprite)
	if !ok {
		return nil, 0, errUnmapped
	}
	if pal < 0 || pal >= len(chunks) {
		return nil, pal, model.MappingError("mapped palette chunk %d out of range", pal)
	}

	target := chunks[pal]
	if target.Kind != model.KindBin {
		return nil, pal, model.MappingError("mapped palette chunk %d is not a bin", pal)
	}
	if !palette.IsValid6Bit(target.Payload) {
		return nil, pal, model.MappingError("mapped palette chunk %d is not a valid 6-bit palette", pal)
	}

	return e.cache.Lookup(pal, target.Payload), pal, nil
}

// ExtractOptions configures Extract
type ExtractOptions struct {
	DatPath        string
	OffPath        string
	PaletteMapPath string
	OutputDir      string
	Interleave     int
	Sprites        *text.IndexSet
	Logger         logrus.FieldLogger
}

// Extract loads a container and palette map from disk and writes every
// mapped sprite to OutputDir as sprite_XXX__pal_YYY.png. Only structural
// problems are returned as errors.
func Extract(opts ExtractOptions) (*ExtractReport, error) {
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	if opts.Interleave < 1 {
		return nil, model.FormatError("interleave factor %d must be at least 1", opts.Interleave)
	}

	if opts.Sprites.Empty() {
		log.Warn("Sprite selection is empty; nothing to do")
	}

	c, err := LoadContainer(opts.DatPath, opts.OffPath)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"chunks": c.Len(), "bytes": len(c.Data)}).Info("Container loaded")

	m, err := palmap.LoadFile(opts.PaletteMapPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.PaletteMapPath, err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	x := NewExtractor(opts.Interleave, opts.Sprites, log)
	return x.Run(c, m, func(sprite, pal int, s *img.Sprite) (string, error) {
		path := filepath.Join(opts.OutputDir, img.SpriteFilename(sprite, pal))
		return path, img.Save(path, s)
	}), nil
}
