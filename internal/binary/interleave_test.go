package binary

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/dyuri/gadgetconv/internal/model"
)

// TestDeinterleave4 tests the 4-lane layout on a width that is a multiple
// of the factor
func TestDeinterleave4(t *testing.T) {
	// 8x2: lanes are 4 bytes each, lane k holds columns k and k+4 of both rows
	data := []byte{
		0x00, 0x04, 0x10, 0x14, // lane 0
		0x01, 0x05, 0x11, 0x15, // lane 1
		0x02, 0x06, 0x12, 0x16, // lane 2
		0x03, 0x07, 0x13, 0x17, // lane 3
	}
	want := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
	}

	got, err := Deinterleave(8, 2, data, 4)
	if err != nil {
		t.Fatalf("Deinterleave failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Deinterleave = % x, want % x", got, want)
	}

	back, err := Interleave(8, 2, got, 4)
	if err != nil {
		t.Fatalf("Interleave failed: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Errorf("Interleave = % x, want % x", back, data)
	}
}

// TestDeinterleaveNarrow tests a single row narrower than the factor
func TestDeinterleaveNarrow(t *testing.T) {
	got, err := Deinterleave(3, 1, []byte{7, 8, 9}, 4)
	if err != nil {
		t.Fatalf("Deinterleave failed: %v", err)
	}
	if !bytes.Equal(got, []byte{7, 8, 9}) {
		t.Errorf("Deinterleave = %v, want [7 8 9]", got)
	}
}

// TestDeinterleaveOddWidth tests a width that is not a multiple of the factor
func TestDeinterleaveOddWidth(t *testing.T) {
	// 5x2: lane 0 holds columns 0 and 4, the other lanes one column each
	data := []byte{
		0x00, 0x04, 0x10, 0x14, // lane 0
		0x01, 0x11, // lane 1
		0x02, 0x12, // lane 2
		0x03, 0x13, // lane 3
	}
	want := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04,
		0x10, 0x11, 0x12, 0x13, 0x14,
	}

	got, err := Deinterleave(5, 2, data, 4)
	if err != nil {
		t.Fatalf("Deinterleave failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Deinterleave = % x, want % x", got, want)
	}
}

func TestInterleaveFactorOne(t *testing.T) {
	pixels := []byte{1, 2, 3, 4, 5, 6}
	got, err := Interleave(3, 2, pixels, 1)
	if err != nil {
		t.Fatalf("Interleave failed: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Errorf("Interleave = %v, want identity %v", got, pixels)
	}
}

func TestInterleaveEmpty(t *testing.T) {
	for _, size := range [][2]int{{0, 0}, {0, 5}, {5, 0}} {
		got, err := Deinterleave(size[0], size[1], nil, 4)
		if err != nil {
			t.Errorf("Deinterleave(%dx%d) failed: %v", size[0], size[1], err)
		}
		if len(got) != 0 {
			t.Errorf("Deinterleave(%dx%d) = %v, want empty", size[0], size[1], got)
		}

		got, err = Interleave(size[0], size[1], []byte{}, 4)
		if err != nil {
			t.Errorf("Interleave(%dx%d) failed: %v", size[0], size[1], err)
		}
		if len(got) != 0 {
			t.Errorf("Interleave(%dx%d) = %v, want empty", size[0], size[1], got)
		}
	}
}

func TestInterleaveSizeMismatch(t *testing.T) {
	if _, err := Deinterleave(2, 2, []byte{1, 2, 3}, 4); !errors.Is(err, model.ErrSizeMismatch) {
		t.Errorf("Deinterleave error = %v, want size mismatch", err)
	}
	if _, err := Interleave(2, 2, []byte{1, 2, 3, 4, 5}, 4); !errors.Is(err, model.ErrSizeMismatch) {
		t.Errorf("Interleave error = %v, want size mismatch", err)
	}
}

func TestInterleaveBadFactor(t *testing.T) {
	if _, err := Interleave(1, 1, []byte{1}, 0); !errors.Is(err, model.ErrFormat) {
		t.Errorf("Interleave error = %v, want format error", err)
	}
}

// TestInterleaveRoundTrip checks that both transforms invert each other for
// arbitrary shapes and factors
func TestInterleaveRoundTrip(t *testing.T) {
	f := func(w, h, k uint8, seed int64) bool {
		width, height, factor := int(w%40), int(h%40), int(k%9)+1

		rnd := rand.New(rand.NewSource(seed))
		b := make([]byte, width*height)
		rnd.Read(b)

		linear, err := Deinterleave(width, height, b, factor)
		if err != nil {
			return false
		}
		back, err := Interleave(width, height, linear, factor)
		if err != nil || !bytes.Equal(back, b) {
			return false
		}

		packed, err := Interleave(width, height, b, factor)
		if err != nil {
			return false
		}
		again, err := Deinterleave(width, height, packed, factor)
		return err == nil && bytes.Equal(again, b)
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

// TestInterleaveIsPermutation checks that every input byte appears in the
// output exactly once
func TestInterleaveIsPermutation(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 3}, {4, 4}, {7, 2}, {13, 5}, {16, 1}} {
		width, height := size[0], size[1]
		pixels := make([]byte, width*height)
		for i := range pixels {
			pixels[i] = byte(i)
		}
		out, err := Interleave(width, height, pixels, 4)
		if err != nil {
			t.Fatalf("Interleave(%dx%d) failed: %v", width, height, err)
		}
		seen := make(map[byte]bool)
		for _, b := range out {
			if seen[b] {
				t.Errorf("Interleave(%dx%d): byte %d written twice", width, height, b)
			}
			seen[b] = true
		}
		if len(seen) != len(pixels) {
			t.Errorf("Interleave(%dx%d): got %d distinct bytes, want %d", width, height, len(seen), len(pixels))
		}
	}
}
