// Package gadgetconv extracts the sprites of a gadget container to paletted
// images and packs edited images back into the container.
//
// A container is a pair of files: a data blob (gadgets.dat) and an offset
// table (gadgets.off) of u32 offset/length records. Sprites are indexed-color
// chunks; their palettes live in separate 6-bit palette chunks, linked by a
// hand-maintained palette map.
//
// Example usage:
//
//	c, err := gadgetconv.LoadContainer("pm3/gadgets.dat", "pm3/gadgets.off")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := palmap.LoadFile("palette-map.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	x := gadgetconv.NewExtractor(gadgetconv.DefaultInterleave, nil, logger)
//	report := x.Run(c, m, func(sprite, pal int, s *img.Sprite) (string, error) {
//	    path := img.SpriteFilename(sprite, pal)
//	    return path, img.Save(path, s)
//	})
package gadgetconv

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/dyuri/gadgetconv/internal/binary"
	"github.com/dyuri/gadgetconv/internal/model"
	"github.com/dyuri/gadgetconv/internal/text"
)

// Default file names, relative to the container directory
const (
	DefaultDatName    = "gadgets.dat"
	DefaultOffName    = "gadgets.off"
	DefaultOutName    = "gadgets_patched.dat"
	DefaultSpritesDir = "sprites_color_auto"
	DefaultPaletteMap = "palette-map.json"

	// DefaultInterleave is the horizontal interleave factor of the shipped
	// data
	DefaultInterleave = binary.DefaultInterleave
)

// Common errors
var (
	ErrFormat        = model.ErrFormat
	ErrMapping       = model.ErrMapping
	ErrShapeMismatch = model.ErrShapeMismatch
	ErrSizeMismatch  = model.ErrSizeMismatch
	ErrOutOfRange    = model.ErrOutOfRange
)

// Skip records a sprite or file that was not processed
type Skip struct {
	Index int    // Sprite chunk index, -1 if unknown
	File  string // Image file, repack only
	Err   error
}

func (s Skip) Error() string {
	if s.File != "" {
		return fmt.Sprintf("%s: %v", s.File, s.Err)
	}
	return fmt.Sprintf("[%03d] %v", s.Index, s.Err)
}

// ResolvePath returns name unchanged if it is absolute, otherwise joined to
// dir
func ResolvePath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// LoadContainer reads a data blob and its offset table. A misaligned offset
// table is a format error.
func LoadContainer(datPath, offPath string) (*model.Container, error) {
	off, err := os.ReadFile(offPath)
	if err != nil {
		return nil, fmt.Errorf("read offset table: %w", err)
	}
	refs, err := binary.ParseOffsets(off)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", offPath, err)
	}

	dat, err := os.ReadFile(datPath)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	return model.NewContainer(dat, refs), nil
}

// Inventory is a classified container
type Inventory struct {
	Container *model.Container
	Chunks    []model.Chunk
	Summary   text.Summary
}

// Inspect classifies every chunk of c
func Inspect(c *model.Container) *Inventory {
	chunks := binary.NewReader(c).Parse()
	return &Inventory{
		Container: c,
		Chunks:    chunks,
		Summary:   text.Summarize(chunks),
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
