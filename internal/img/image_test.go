package img

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyuri/gadgetconv/internal/palette"
)

func testSprite() *Sprite {
	pal := make([]byte, palette.CanonicalSize)
	copy(pal, []byte{0, 0, 0, 255, 0, 0, 0, 255, 0, 0, 0, 255})
	return &Sprite{
		Width:   3,
		Height:  2,
		Pixels:  []byte{0, 1, 2, 3, 2, 1},
		Palette: pal,
	}
}

func TestEncodeDecode(t *testing.T) {
	s := testSprite()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, s))

	got, err := Decode(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, s.Width, got.Width)
	assert.Equal(t, s.Height, got.Height)
	assert.Equal(t, s.Pixels, got.Pixels)
	assert.Equal(t, s.Palette, got.Palette)
}

func TestSaveOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), SpriteFilename(1, 2))
	s := testSprite()
	require.NoError(t, Save(path, s))

	got, err := Open(path, 0)
	require.NoError(t, err)
	assert.Equal(t, s.Pixels, got.Pixels)
	assert.Len(t, got.Palette, palette.CanonicalSize)
}

func TestPalettedShortPalette(t *testing.T) {
	s := &Sprite{Width: 2, Height: 1, Pixels: []byte{0, 4}, Palette: []byte{10, 20, 30}}
	m, err := s.Paletted()
	require.NoError(t, err)
	assert.Len(t, m.Palette, 5)
	assert.Equal(t, color.RGBA{10, 20, 30, 0xff}, m.Palette[0])
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, m.Palette[4])
}

func TestPalettedBadSize(t *testing.T) {
	s := &Sprite{Width: 2, Height: 2, Pixels: []byte{0}}
	_, err := s.Paletted()
	assert.Error(t, err)
}

// TestFromImageQuantizes tests that truecolor edits are reduced to a palette
func TestFromImageQuantizes(t *testing.T) {
	m := image.NewRGBA(image.Rect(10, 10, 14, 12))
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	for y := 10; y < 12; y++ {
		for x := 10; x < 14; x++ {
			if x < 12 {
				m.Set(x, y, red)
			} else {
				m.Set(x, y, blue)
			}
		}
	}

	s, err := FromImage(m, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Width)
	assert.Equal(t, 2, s.Height)
	require.Len(t, s.Pixels, 8)
	assert.LessOrEqual(t, len(s.Palette)/palette.Channels, 4)

	// Both halves map to one index each, and the indices differ
	left, right := s.Pixels[0], s.Pixels[3]
	assert.NotEqual(t, left, right)
	for y := 0; y < 2; y++ {
		assert.Equal(t, left, s.Pixels[y*4+1])
		assert.Equal(t, right, s.Pixels[y*4+2])
	}
	assert.Equal(t, []byte{255, 0, 0}, s.Palette[int(left)*3:int(left)*3+3])
	assert.Equal(t, []byte{0, 0, 255}, s.Palette[int(right)*3:int(right)*3+3])
}

func TestFromImageOffsetPaletted(t *testing.T) {
	pal := color.Palette{color.RGBA{1, 2, 3, 255}, color.RGBA{4, 5, 6, 255}}
	m := image.NewPaletted(image.Rect(5, 5, 7, 6), pal)
	m.SetColorIndex(6, 5, 1)

	s, err := FromImage(m, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1}, s.Pixels)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, s.Palette)
}

func TestParseSpriteFilename(t *testing.T) {
	tests := []struct {
		name   string
		sprite int
		pal    int
		ok     bool
	}{
		{"sprite_012__pal_034.png", 12, 34, true},
		{"SPRITE_001__PAL_002.PNG", 1, 2, true},
		{"sprite_1234__pal_005.ppm", 1234, 5, true},
		{"sprite_12__pal_034.png", 0, 0, false},
		{"sprite_012_pal_034.png", 0, 0, false},
		{"sprite_012__pal_034.png.bak", 0, 0, false},
		{"notes.txt", 0, 0, false},
	}

	for _, tt := range tests {
		sprite, pal, ok := ParseSpriteFilename(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.sprite, sprite, tt.name)
		assert.Equal(t, tt.pal, pal, tt.name)
	}

	sprite, pal, ok := ParseSpriteFilename(SpriteFilename(7, 300))
	assert.True(t, ok)
	assert.Equal(t, 7, sprite)
	assert.Equal(t, 300, pal)
}

func TestListSpriteFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"sprite_010__pal_001.png", "SPRITE_002__PAL_001.png", "readme.txt", "sprite_003__pal_001.ppm"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sprite_004__pal_001.png"), 0755))

	files, err := ListSpriteFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"SPRITE_002__PAL_001.png", "sprite_003__pal_001.ppm", "sprite_010__pal_001.png"}, names)
	assert.Equal(t, 2, files[0].Sprite)
	assert.Equal(t, filepath.Join(dir, "sprite_010__pal_001.png"), files[2].Path)
}

func TestListSpriteFilesMissingDir(t *testing.T) {
	_, err := ListSpriteFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
