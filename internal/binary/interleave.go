package binary

import (
	"github.com/dyuri/gadgetconv/internal/model"
)

// DefaultInterleave is the lane count of the shipped gadget data.
const DefaultInterleave = 4

// Sprite pixels are stored as factor lanes laid out back to back. Pixel
// (x, y) lives in lane x%factor, and each lane holds its pixels in scanline
// order.
//
// When width is a multiple of factor every lane is ceil(width*height/factor)
// bytes long. For other widths the lane length is the number of pixels that
// map to it, so the transform stays a permutation for any shape.
func laneLengths(width, height, factor int) []int {
	lengths := make([]int, factor)
	for k := 0; k < factor && k < width; k++ {
		columns := (width - k + factor - 1) / factor
		lengths[k] = columns * height
	}
	return lengths
}

// laneStarts returns the offset of each lane inside the interleaved data
func laneStarts(width, height, factor int) []int {
	lengths := laneLengths(width, height, factor)
	starts := make([]int, factor)
	pos := 0
	for k, n := range lengths {
		starts[k] = pos
		pos += n
	}
	return starts
}

func checkShape(width, height, n, factor int) error {
	if factor < 1 {
		return model.FormatError("interleave factor %d must be at least 1", factor)
	}
	if width < 0 || height < 0 {
		return model.SizeMismatchError("invalid sprite size %dx%d", width, height)
	}
	if n != width*height {
		return model.SizeMismatchError("got %d pixel bytes, expected %dx%d=%d", n, width, height, width*height)
	}
	return nil
}

// Deinterleave converts on-disk sprite bytes into linear scanline order
func Deinterleave(width, height int, data []byte, factor int) ([]byte, error) {
	if err := checkShape(width, height, len(data), factor); err != nil {
		return nil, err
	}

	out := make([]byte, width*height)
	cursor := laneStarts(width, height, factor)

	for y := 0; y < height; y++ {
		base := y * width
		for x := 0; x < width; x++ {
			lane := x % factor
			out[base+x] = data[cursor[lane]]
			cursor[lane]++
		}
	}

	return out, nil
}

// Interleave is the inverse of Deinterleave: it redistributes linear pixels
// into their lanes and concatenates the lanes in index order.
func Interleave(width, height int, pixels []byte, factor int) ([]byte, error) {
	if err := checkShape(width, height, len(pixels), factor); err != nil {
		return nil, err
	}

	out := make([]byte, width*height)
	cursor := laneStarts(width, height, factor)

	for y := 0; y < height; y++ {
		base := y * width
		for x := 0; x < width; x++ {
			lane := x % factor
			out[cursor[lane]] = pixels[base+x]
			cursor[lane]++
		}
	}

	return out, nil
}
