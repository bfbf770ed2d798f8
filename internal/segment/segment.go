// Package segment splits a stream of items into fixed-size groups.
package segment

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidSize is returned when the requested segment size is not positive.
var ErrInvalidSize = errors.New("segment: size must be > 0")

// Split returns a lazy sequence of groups of exactly size items pulled from
// src. The final group holds the remainder and is never empty.
//
// Items are staged into the current group as they are pulled and the group
// is yielded as soon as it fills. Each yielded slice is freshly allocated,
// so callers may retain it.
//
// Example:
//
//	groups, _ := segment.Split(slices.Values([]int{1, 2, 3, 4, 5}), 2)
//	for g := range groups {
//	    fmt.Println(g) // [1 2], [3 4], [5]
//	}
func Split[T any](src iter.Seq[T], size int) (iter.Seq[[]T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	return func(yield func([]T) bool) {
		group := make([]T, 0, size)
		for item := range src {
			group = append(group, item)
			if len(group) < size {
				continue
			}
			if !yield(group) {
				return
			}
			group = make([]T, 0, size)
		}
		if len(group) > 0 {
			yield(group)
		}
	}, nil
}

// Count returns the number of groups Split yields for n items: ceil(n/size).
func Count(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
