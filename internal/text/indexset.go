package text

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Range is an inclusive span of chunk indices
type Range struct {
	Lo, Hi int
}

// IndexSet is a set of chunk indices given as a list of ranges, e.g.
// "0-20,35,40-45". A nil *IndexSet selects every index.
type IndexSet struct {
	ranges []Range // Sorted, non-overlapping
}

// ParseIndexSet parses a comma-separated list of indices and ranges.
// Reversed ranges are swapped, blank items are skipped, and an empty string
// yields nil (everything selected). A list that contains only
// blank items yields an empty set.
func ParseIndexSet(list string) (*IndexSet, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	var ranges []Range
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || start < 0 || end < 0 {
				return nil, fmt.Errorf("invalid range %q", part)
			}
			if start > end {
				start, end = end, start
			}
			ranges = append(ranges, Range{start, end})
			continue
		}

		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		ranges = append(ranges, Range{i, i})
	}

	return &IndexSet{ranges: normalize(ranges)}, nil
}

func normalize(ranges []Range) []Range {
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Lo < ranges[j].Lo })

	out := ranges[:0]
	for _, r := range ranges {
		if n := len(out); n > 0 && r.Lo <= out[n-1].Hi+1 {
			if r.Hi > out[n-1].Hi {
				out[n-1].Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Contains reports whether i is selected. A nil set contains everything.
func (s *IndexSet) Contains(i int) bool {
	if s == nil {
		return true
	}
	n := sort.Search(len(s.ranges), func(k int) bool { return s.ranges[k].Hi >= i })
	return n < len(s.ranges) && s.ranges[n].Lo <= i
}

// Empty reports whether the set selects nothing
func (s *IndexSet) Empty() bool {
	return s != nil && len(s.ranges) == 0
}

// Ranges returns the normalized ranges
func (s *IndexSet) Ranges() []Range {
	if s == nil {
		return nil
	}
	return append([]Range(nil), s.ranges...)
}

// String formats the set in the same syntax ParseIndexSet accepts
func (s *IndexSet) String() string {
	if s == nil {
		return "all"
	}
	parts := make([]string, 0, len(s.ranges))
	for _, r := range s.ranges {
		if r.Lo == r.Hi {
			parts = append(parts, strconv.Itoa(r.Lo))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Lo, r.Hi))
		}
	}
	return strings.Join(parts, ",")
}
