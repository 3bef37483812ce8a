package text

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dyuri/gadgetconv/internal/model"
)

func TestParseIndexSet(t *testing.T) {
	s, err := ParseIndexSet("0-3, 10,7-5,,2")
	if err != nil {
		t.Fatalf("ParseIndexSet failed: %v", err)
	}

	for _, i := range []int{0, 1, 2, 3, 5, 6, 7, 10} {
		if !s.Contains(i) {
			t.Errorf("Contains(%d) = false, want true", i)
		}
	}
	for _, i := range []int{4, 8, 9, 11, -1} {
		if s.Contains(i) {
			t.Errorf("Contains(%d) = true, want false", i)
		}
	}

	if got := s.String(); got != "0-3,5-7,10" {
		t.Errorf("String() = %q, want %q", got, "0-3,5-7,10")
	}
}

func TestParseIndexSetAll(t *testing.T) {
	s, err := ParseIndexSet("  ")
	if err != nil {
		t.Fatalf("ParseIndexSet failed: %v", err)
	}
	if s != nil {
		t.Fatalf("ParseIndexSet(blank) = %v, want nil", s)
	}
	if !s.Contains(12345) {
		t.Error("nil set should contain every index")
	}
	if s.Empty() {
		t.Error("nil set should not be empty")
	}
}

func TestParseIndexSetOnlySeparators(t *testing.T) {
	s, err := ParseIndexSet(", ,")
	if err != nil {
		t.Fatalf("ParseIndexSet failed: %v", err)
	}
	if !s.Empty() {
		t.Errorf("ParseIndexSet(\", ,\") = %v, want empty set", s)
	}
	if s.Contains(0) {
		t.Error("empty set should contain nothing")
	}
}

func TestParseIndexSetLargeRange(t *testing.T) {
	s, err := ParseIndexSet("0-2000000000")
	if err != nil {
		t.Fatalf("ParseIndexSet failed: %v", err)
	}
	if !s.Contains(1999999999) {
		t.Error("Contains(1999999999) = false, want true")
	}
}

func TestParseIndexSetErrors(t *testing.T) {
	for _, list := range []string{"a", "1-b", "-5", "3-", "1.5"} {
		if _, err := ParseIndexSet(list); err == nil {
			t.Errorf("ParseIndexSet(%q) succeeded, want error", list)
		}
	}
}

func TestWriteChunks(t *testing.T) {
	chunks := []model.Chunk{
		{Index: 0, Ref: model.ChunkRef{Offset: 0, Length: 8}, Kind: model.KindSprite, Width: 2, Height: 2},
		{Index: 1, Ref: model.ChunkRef{Offset: 8, Length: 10}, Kind: model.KindBin, Payload: []byte{63, 0, 0, 0, 63, 0}},
		{Index: 2, Ref: model.ChunkRef{Offset: 18, Length: 5}, Kind: model.KindBin, Payload: []byte{99}},
		{Index: 3, Ref: model.ChunkRef{Offset: 99, Length: 5}, Kind: model.KindInvalid, Err: model.OutOfRangeError("past end")},
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteChunks(chunks); err != nil {
		t.Fatalf("WriteChunks failed: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("Got %d lines, want 5:\n%s", len(lines), out)
	}
	for i, want := range []string{"2x2", "6-bit palette, 2 colors", "1 payload bytes", "past end"} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("line %d = %q, want it to contain %q", i+1, lines[i+1], want)
		}
	}
}

func TestSummarize(t *testing.T) {
	chunks := []model.Chunk{
		{Kind: model.KindSprite},
		{Kind: model.KindSprite},
		{Kind: model.KindBin, Payload: []byte{1, 2, 3}},
		{Kind: model.KindBin, Payload: []byte{100}},
		{Kind: model.KindInvalid},
	}

	s := Summarize(chunks)
	want := Summary{Chunks: 5, Sprites: 2, Palettes: 1, Bins: 2, Invalid: 1}
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteSummary("gadgets.dat", 42, s); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Data size: 42 B (42 bytes)") {
		t.Errorf("summary missing data size:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Invalid:   1") {
		t.Errorf("summary missing invalid count:\n%s", buf.String())
	}
}
