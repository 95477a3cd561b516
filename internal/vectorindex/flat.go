// Package vectorindex implements an exact nearest-neighbour index under
// Euclidean distance and its on-disk format.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// FlatL2 is a brute-force index: every search scans all stored vectors.
// Position i in the index is the i-th vector added.
type FlatL2 struct {
	dimension int
	vectors   [][]float32
}

func NewFlatL2(dimension int) (*FlatL2, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	return &FlatL2{dimension: dimension}, nil
}

func (x *FlatL2) Dimension() int { return x.dimension }

func (x *FlatL2) Len() int { return len(x.vectors) }

// Add appends vectors in order. Nothing is added if any vector has the wrong dimension.
func (x *FlatL2) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != x.dimension {
			return fmt.Errorf("vector %d dimension mismatch: expected %d, got %d", i, x.dimension, len(v))
		}
	}
	for _, v := range vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		x.vectors = append(x.vectors, cp)
	}
	return nil
}

// Search returns the k nearest positions by ascending squared L2 distance,
// ties broken by position. When k exceeds Len the result is padded with
// position -1 and distance +Inf, so callers must bounds-check ids.
func (x *FlatL2) Search(query []float32, k int) ([]int, []float32, error) {
	if len(query) != x.dimension {
		return nil, nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", x.dimension, len(query))
	}
	if k <= 0 {
		return nil, nil, nil
	}
	dists := make([]float32, len(x.vectors))
	for i := range x.vectors {
		dists[i] = l2sq(x.vectors[i], query)
	}
	idxs := make([]int, len(dists))
	for i := range idxs {
		idxs[i] = i
	}
	sort.Slice(idxs, func(a, b int) bool {
		da, db := dists[idxs[a]], dists[idxs[b]]
		if da != db {
			return da < db
		}
		return idxs[a] < idxs[b]
	})

	ids := make([]int, k)
	out := make([]float32, k)
	for i := 0; i < k; i++ {
		if i < len(idxs) {
			ids[i] = idxs[i]
			out[i] = dists[idxs[i]]
			continue
		}
		ids[i] = -1
		out[i] = float32(math.Inf(1))
	}
	return ids, out, nil
}

func l2sq(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
