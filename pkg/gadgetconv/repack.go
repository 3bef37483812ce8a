package gadgetconv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dyuri/gadgetconv/internal/binary"
	"github.com/dyuri/gadgetconv/internal/img"
	"github.com/dyuri/gadgetconv/internal/model"
	"github.com/dyuri/gadgetconv/internal/palette"
	"github.com/dyuri/gadgetconv/internal/palmap"
	"github.com/dyuri/gadgetconv/internal/text"
)

// Updated describes one sprite written back by a repack run
type Updated struct {
	Sprite  int
	Palette int
	File    string
	// PaletteErr is set when the sprite was patched but its palette chunk
	// could not be
	PaletteErr error
}

// RepackReport is the outcome of a repack run
type RepackReport struct {
	Updated         []Updated
	PalettesTouched []int
	Skipped         []Skip
	Size            int // Size of the patched data, always the original size
}

// SpriteSource opens an image file, reducing it to at most maxColors
type SpriteSource func(path string, maxColors int) (*img.Sprite, error)

// Repacker applies edited sprite images to a container
type Repacker struct {
	log     logrus.FieldLogger
	factor  int
	sprites *text.IndexSet
	open    SpriteSource
}

// NewRepacker creates a repacker. sprites restricts the run to a subset of
// sprite indices; nil selects all of them. A nil logger discards output.
func NewRepacker(factor int, sprites *text.IndexSet, log logrus.FieldLogger) *Repacker {
	if log == nil {
		log = discardLogger()
	}
	return &Repacker{
		log:     log,
		factor:  factor,
		sprites: sprites,
		open:    img.Open,
	}
}

// Run patches c with files. The palette map is authoritative; the palette
// index in a file name is only a hint. Per-file problems are logged and
// collected in the report. The returned buffer always has the length of
// c.Data.
func (r *Repacker) Run(c *model.Container, m *palmap.Map, files []img.SpriteFile) ([]byte, *RepackReport) {
	p := binary.NewPatcher(c, r.factor)
	reader := binary.NewReader(c)
	report := &RepackReport{}
	touched := make(map[int]bool)

	for _, f := range files {
		log := r.log.WithFields(logrus.Fields{"file": f.Name, "chunk": f.Sprite})

		pal, ok := m.Resolve(f.Sprite)
		if !ok {
			log.Warn("Sprite has no palette mapping; skipping")
			report.Skipped = append(report.Skipped, Skip{Index: f.Sprite, File: f.Name, Err: errUnmapped})
			continue
		}
		if pal != f.PaletteHint {
			log.WithFields(logrus.Fields{"hint": f.PaletteHint, "palette": pal}).Info("File name palette overridden by palette map")
		}
		log = log.WithField("palette", pal)

		if !r.sprites.Contains(f.Sprite) {
			continue
		}

		s, err := r.apply(reader, p, f, pal)
		if err != nil {
			log.WithError(err).Warn("Skipping file")
			report.Skipped = append(report.Skipped, Skip{Index: f.Sprite, File: f.Name, Err: err})
			continue
		}

		u := Updated{Sprite: f.Sprite, Palette: pal, File: f.Name}
		if _, err := p.PatchPalette(pal, s.Palette); err != nil {
			log.WithError(err).Warn("Palette chunk not updated")
			u.PaletteErr = err
		} else {
			touched[pal] = true
		}

		log.Info("Sprite updated")
		report.Updated = append(report.Updated, u)
	}

	for pal := range touched {
		report.PalettesTouched = append(report.PalettesTouched, pal)
	}
	sort.Ints(report.PalettesTouched)

	out := p.Bytes()
	report.Size = len(out)
	return out, report
}

// apply validates f against the container and patches its sprite chunk
func (r *Repacker) apply(reader *binary.Reader, p *binary.Patcher, f img.SpriteFile, pal int) (*img.Sprite, error) {
	if f.Sprite < 0 || f.Sprite >= reader.Len() {
		return nil, model.OutOfRangeError("sprite index %d out of range", f.Sprite)
	}
	if pal < 0 || pal >= reader.Len() {
		return nil, model.OutOfRangeError("palette index %d out of range", pal)
	}

	chunk, err := reader.Chunk(f.Sprite)
	if err != nil {
		return nil, err
	}
	if !chunk.IsSprite() {
		return nil, model.ShapeMismatchError("chunk %d is not a valid sprite", f.Sprite)
	}

	s, err := r.open(f.Path, maxColors(reader, pal))
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	if err := p.PatchSprite(f.Sprite, s.Width, s.Height, s.Pixels); err != nil {
		return nil, err
	}
	return s, nil
}

// maxColors is the number of colors the palette chunk at pal can hold
func maxColors(reader *binary.Reader, pal int) int {
	chunk, err := reader.Chunk(pal)
	if err != nil || chunk.Kind != model.KindBin {
		return palette.MaxColors
	}
	n := palette.ColorCount(chunk.Payload)
	if n < 1 || n > palette.MaxColors || len(chunk.Payload)%palette.Channels != 0 {
		return palette.MaxColors
	}
	return n
}

// RepackOptions configures Repack
type RepackOptions struct {
	DatPath        string
	OffPath        string
	OutPath        string
	PaletteMapPath string
	SpritesDir     string
	Interleave     int
	Sprites        *text.IndexSet
	DryRun         bool
	Logger         logrus.FieldLogger
}

// Repack applies every sprite_XXX__pal_YYY image in SpritesDir to the
// container and writes the patched data to OutPath. With DryRun nothing is
// written. Only structural problems are returned as errors.
func Repack(opts RepackOptions) (*RepackReport, error) {
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

	m, err := palmap.LoadFile(opts.PaletteMapPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.PaletteMapPath, err)
	}

	c, err := LoadContainer(opts.DatPath, opts.OffPath)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"chunks": c.Len(), "bytes": len(c.Data)}).Info("Container loaded")

	files, err := img.ListSpriteFiles(opts.SpritesDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.WithField("dir", opts.SpritesDir).Warn("No sprite image files found; nothing to do")
		return &RepackReport{Size: len(c.Data)}, nil
	}

	out, report := NewRepacker(opts.Interleave, opts.Sprites, log).Run(c, m, files)
	if len(report.Updated) == 0 {
		log.Warn("No sprite files were applied")
	} else {
		log.WithFields(logrus.Fields{
			"sprites":  len(report.Updated),
			"palettes": report.PalettesTouched,
		}).Info("Repack complete")
	}

	if opts.DryRun {
		log.Info("Dry run; patched data not written")
		return report, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutPath), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(opts.OutPath, out, 0644); err != nil {
		return nil, fmt.Errorf("write patched data: %w", err)
	}
	log.WithField("file", opts.OutPath).Info("Patched data written")

	return report, nil
}
