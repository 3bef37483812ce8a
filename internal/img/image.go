// Package img moves sprites between the container's raw form and paletted
// image files.
//
// Extracted sprites are written as 8-bit paletted PNG files carrying a full
// 256 entry palette. Edited files are read back with any format bild's imgio
// can open; images that are no longer paletted are reduced with a median cut
// quantizer to at most the number of colors the target palette chunk holds.
package img

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/ericpauley/go-quantize/quantize"

	"github.com/dyuri/gadgetconv/internal/palette"
)

var errNoPalette = errors.New("img: image has no palette")

// Sprite is the boundary between the codec and image files: linear pixel
// indices plus an 8-bit RGB palette.
type Sprite struct {
	Width   int
	Height  int
	Pixels  []byte // width*height palette indices in scanline order
	Palette []byte // RGB triples, 8 bits per channel
}

// Paletted builds an image from the sprite. Missing palette entries up to
// the highest used index are filled with black.
func (s *Sprite) Paletted() (*image.Paletted, error) {
	if len(s.Pixels) != s.Width*s.Height {
		return nil, fmt.Errorf("img: got %d pixels for %dx%d sprite", len(s.Pixels), s.Width, s.Height)
	}

	colors := len(s.Palette) / palette.Channels
	if colors > palette.MaxColors {
		colors = palette.MaxColors
	}
	for _, p := range s.Pixels {
		if int(p) >= colors {
			colors = int(p) + 1
		}
	}

	pal := make(color.Palette, colors)
	rgb := palette.Resize(s.Palette, colors*palette.Channels)
	for i := range pal {
		pal[i] = color.RGBA{rgb[i*3], rgb[i*3+1], rgb[i*3+2], 0xff}
	}

	m := image.NewPaletted(image.Rect(0, 0, s.Width, s.Height), pal)
	copy(m.Pix, s.Pixels)
	return m, nil
}

// Encode writes the sprite to w as a paletted PNG
func Encode(w io.Writer, s *Sprite) error {
	m, err := s.Paletted()
	if err != nil {
		return err
	}
	return png.Encode(w, m)
}

// Save writes the sprite to a PNG file
func Save(path string, s *Sprite) error {
	m, err := s.Paletted()
	if err != nil {
		return err
	}
	return imgio.Save(path, m, imgio.PNGEncoder())
}

// Open reads an edited image file. maxColors bounds the palette built for
// images that are not paletted; 0 means 256.
func Open(path string, maxColors int) (*Sprite, error) {
	m, err := imgio.Open(path)
	if err != nil {
		return nil, err
	}
	return FromImage(m, maxColors)
}

// Decode reads an image from r, see Open
func Decode(r io.Reader, maxColors int) (*Sprite, error) {
	m, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(m, maxColors)
}

// FromImage extracts pixel indices and palette from m. Paletted images are
// taken as-is; anything else is quantized first.
func FromImage(m image.Image, maxColors int) (*Sprite, error) {
	b := m.Bounds()

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if maxColors <= 0 || maxColors > palette.MaxColors {
			maxColors = palette.MaxColors
		}
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, maxColors), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}
	if len(pm.Palette) == 0 {
		return nil, errNoPalette
	}

	s := &Sprite{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Pixels:  make([]byte, b.Dx()*b.Dy()),
		Palette: paletteBytes(pm.Palette),
	}
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			s.Pixels[y*s.Width+x] = pm.ColorIndexAt(b.Min.X+x, b.Min.Y+y)
		}
	}
	return s, nil
}

func paletteBytes(p color.Palette) []byte {
	out := make([]byte, 0, len(p)*palette.Channels)
	for _, c := range p {
		nc := color.NRGBAModel.Convert(c).(color.NRGBA)
		out = append(out, nc.R, nc.G, nc.B)
	}
	return out
}
