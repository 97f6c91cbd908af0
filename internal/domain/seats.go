package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseSeatLabel expands a label such as "4" or "1-2,7" into seat numbers.
func ParseSeatLabel(label string) ([]int, error) {
	var seats []int
	for _, part := range strings.Split(label, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("%w: bad seat label %q", ErrValidation, label)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(hi); err != nil || last < first {
				return nil, fmt.Errorf("%w: bad seat label %q", ErrValidation, label)
			}
		}
		for n := first; n <= last; n++ {
			seats = append(seats, n)
		}
	}
	return seats, nil
}

// FormatSeatLabel renders seat numbers with consecutive runs collapsed, e.g. "1-2,7".
func FormatSeatLabel(seats []int) string {
	sorted := append([]int(nil), seats...)
	sort.Ints(sorted)

	var parts []string
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[j]+1 {
			j++
		}
		if i == j {
			parts = append(parts, strconv.Itoa(sorted[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", sorted[i], sorted[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}

// AllocateSeats picks the lowest numbered seats in 1..capacity that no label
// in taken holds. Unparseable labels are ignored.
func AllocateSeats(taken []string, count, capacity int) (string, error) {
	held := make(map[int]struct{})
	for _, label := range taken {
		seats, err := ParseSeatLabel(label)
		if err != nil {
			continue
		}
		for _, n := range seats {
			held[n] = struct{}{}
		}
	}

	free := make([]int, 0, count)
	for n := 1; n <= capacity && len(free) < count; n++ {
		if _, ok := held[n]; !ok {
			free = append(free, n)
		}
	}
	if count <= 0 || len(free) < count {
		return "", fmt.Errorf("%w: %d free seat numbers, %d requested", ErrInsufficientSeats, len(free), count)
	}
	return FormatSeatLabel(free), nil
}
