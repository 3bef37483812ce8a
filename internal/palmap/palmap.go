// Package palmap loads the declaration of which palette chunk colors which
// sprite chunk. The association cannot be recovered from the container, so it
// is maintained by hand as a JSON object:
//
//	{
//	  "211": 223,
//	  "212": "unknown",
//	  "223": "palette"
//	}
//
// Keys are sprite chunk indices. A value is either a palette chunk index or
// one of the sentinels "unknown" (association not known yet) and "palette"
// (the key is itself a palette chunk). Both sentinels mean the sprite is
// neither extracted nor repacked.
package palmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dyuri/gadgetconv/internal/model"
)

// Sentinel values. Matching is case-sensitive.
const (
	Unknown = "unknown"
	Palette = "palette"
)

// EntryKind tells a real mapping apart from the two sentinels
type EntryKind int

const (
	Mapped        EntryKind = iota // Value is a palette chunk index
	MarkedUnknown                  // Value was "unknown"
	MarkedPalette                  // Value was "palette"
)

func (k EntryKind) String() string {
	switch k {
	case Mapped:
		return "mapped"
	case MarkedUnknown:
		return Unknown
	case MarkedPalette:
		return Palette
	default:
		return "invalid"
	}
}

// Entry is one key of the map
type Entry struct {
	Kind    EntryKind
	Palette int // Palette chunk index, valid only for Mapped
}

// Map is a read-only sprite to palette mapping
type Map struct {
	entries map[int]Entry
}

// New creates an empty map
func New() *Map {
	return &Map{entries: make(map[int]Entry)}
}

// Load parses a palette map. Any value shape other than a non-negative
// integer or a sentinel string, a non-object document, or a negative index
// is a format error. Later duplicate keys replace earlier ones.
func Load(r io.Reader) (*Map, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, formatError("palette map is not valid JSON", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, model.FormatError("palette map must be a JSON object")
	}

	m := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, formatError("read palette map key", err)
		}
		key, _ := tok.(string)

		sprite, err := parseIndex(key)
		if err != nil {
			return nil, model.FormatError("invalid sprite id key in palette map: %q", key)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, formatError(fmt.Sprintf("read palette map value for %q", key), err)
		}

		entry, err := parseValue(value)
		if err != nil {
			return nil, model.FormatError("invalid palette map value for sprite %q: %v", key, err)
		}
		m.entries[sprite] = entry
	}

	if _, err := dec.Token(); err != nil {
		return nil, formatError("palette map is not valid JSON", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, model.FormatError("unexpected data after palette map object")
	}

	return m, nil
}

// LoadFile loads a palette map from a file path
func LoadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.Error{Code: model.CodeFormat, Message: "open palette map", Cause: err}
	}
	defer f.Close()

	return Load(f)
}

func formatError(msg string, cause error) error {
	return &model.Error{Code: model.CodeFormat, Message: msg, Cause: cause}
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative index")
	}
	return n, nil
}

func parseValue(v interface{}) (Entry, error) {
	switch v := v.(type) {
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return Entry{}, fmt.Errorf("%s is not an integer", v)
		}
		if n < 0 {
			return Entry{}, fmt.Errorf("negative palette index %d", n)
		}
		return Entry{Kind: Mapped, Palette: n}, nil
	case string:
		switch v {
		case Unknown:
			return Entry{Kind: MarkedUnknown}, nil
		case Palette:
			return Entry{Kind: MarkedPalette}, nil
		}
		return Entry{}, fmt.Errorf("unknown marker %q", v)
	default:
		return Entry{}, fmt.Errorf("unsupported value %v", v)
	}
}

// Resolve returns the palette chunk index for a sprite. ok is false when the
// sprite has no entry or is marked unknown or palette.
func (m *Map) Resolve(sprite int) (palette int, ok bool) {
	e, found := m.entries[sprite]
	if !found || e.Kind != Mapped {
		return 0, false
	}
	return e.Palette, true
}

// Entry returns the raw entry for a key
func (m *Map) Entry(sprite int) (Entry, bool) {
	e, ok := m.entries[sprite]
	return e, ok
}

// Len returns the number of keys
func (m *Map) Len() int {
	return len(m.entries)
}

// Keys returns all keys in ascending order
func (m *Map) Keys() []int {
	keys := make([]int, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
