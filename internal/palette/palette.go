// Package palette converts the container's 6-bit RGB color tables to and from
// the 8-bit tables used by image files.
//
// The two directions are asymmetric: 6-bit to 8-bit truncates
// (b*255/63) while 8-bit to 6-bit rounds to nearest (v*63/255). Every 6-bit
// value survives extract then repack unchanged, but an 8-bit color edited in
// an image snaps to the nearest 6-bit step and reads back as a different
// value. Existing edited assets depend on both formulas.
package palette

const (
	// Channels is the number of bytes per color (R, G, B)
	Channels = 3

	// MaxColors is the largest color count a palette chunk may hold
	MaxColors = 256

	// CanonicalSize is the size of the 8-bit table handed to the image layer
	CanonicalSize = MaxColors * Channels

	// Max6Bit is the largest channel value of a 6-bit palette
	Max6Bit = 63
)

// IsValid6Bit reports whether payload looks like a 6-bit RGB palette: a
// non-empty whole number of RGB triples, at most 256 colors, every channel
// no larger than 63.
func IsValid6Bit(payload []byte) bool {
	n := len(payload)
	if n == 0 || n%Channels != 0 {
		return false
	}
	if colors := n / Channels; colors < 1 || colors > MaxColors {
		return false
	}
	for _, b := range payload {
		if b > Max6Bit {
			return false
		}
	}
	return true
}

// ColorCount returns the number of RGB triples in payload
func ColorCount(payload []byte) int {
	return len(payload) / Channels
}

// To8Bit scales 6-bit channel values to 8 bits with integer truncation.
// Values above 63 saturate at 255.
func To8Bit(payload []byte) []byte {
	out := make([]byte, len(payload))
	for i, b := range payload {
		v := int(b) * 255 / Max6Bit
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

// To6Bit resizes an 8-bit palette to exactly colors entries, zero-padding or
// truncating as needed, then scales each channel to 6 bits rounding to
// nearest.
func To6Bit(payload []byte, colors int) []byte {
	if colors < 0 {
		colors = 0
	}
	resized := Resize(payload, colors*Channels)

	out := make([]byte, len(resized))
	for i, v := range resized {
		// v*63/255 never lands on .5, so adding half the divisor rounds
		out[i] = byte((int(v)*Max6Bit + 255/2) / 255)
	}
	return out
}

// Resize returns a copy of b that is exactly n bytes long
func Resize(b []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Canonical converts a 6-bit payload into the 256 entry 8-bit table the
// image layer expects.
func Canonical(payload []byte) []byte {
	return Resize(To8Bit(payload), CanonicalSize)
}
