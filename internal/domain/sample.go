package domain

import (
	"math/rand/v2"
	"sort"
)

// downsample picks exactly n of points with a PCG generator seeded from seed,
// then restores ingestion order. The generator is rebuilt on every call so
// the same inputs always select the same points.
func downsample(points []PointRecord, n int, seed uint64) []PointRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	// Partial Fisher-Yates: the first n slots become the sample.
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	chosen := idx[:n]
	sort.Ints(chosen)

	out := make([]PointRecord, n)
	for i, k := range chosen {
		out[i] = points[k]
	}
	return out
}
