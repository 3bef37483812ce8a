package img

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// sprite_012__pal_034.png
var filenameRE = regexp.MustCompile(`(?i)^sprite_(\d{3,})__pal_(\d{3,})\.(png|ppm)$`)

// SpriteFilename returns the file name used for an extracted sprite. The
// palette index is a hint only; the palette map decides on repack.
func SpriteFilename(sprite, pal int) string {
	return fmt.Sprintf("sprite_%03d__pal_%03d.png", sprite, pal)
}

// ParseSpriteFilename extracts the sprite and palette indices from a file
// name produced by SpriteFilename
func ParseSpriteFilename(name string) (sprite, pal int, ok bool) {
	m := filenameRE.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	sprite, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	pal, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return sprite, pal, true
}

// SpriteFile is an image file found in a sprites directory
type SpriteFile struct {
	Path        string
	Name        string
	Sprite      int
	PaletteHint int
}

// ListSpriteFiles returns the sprite images in dir, sorted by lowercased
// file name. Files that do not follow the naming convention are ignored.
func ListSpriteFiles(dir string) ([]SpriteFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sprites directory: %w", err)
	}

	var files []SpriteFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		sprite, pal, ok := ParseSpriteFilename(e.Name())
		if !ok {
			continue
		}
		files = append(files, SpriteFile{
			Path:        filepath.Join(dir, e.Name()),
			Name:        e.Name(),
			Sprite:      sprite,
			PaletteHint: pal,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})
	return files, nil
}
