package skymap

import (
	"cmp"
	"math"
	"slices"

	"github.com/skyplot/skyplot/pkg/core"
)

// levelTolerance absorbs rounding in the running sum when matching a
// requested confidence against the cumulative breakpoints.
const levelTolerance = 1e-12

// RankOrder returns pixel indices sorted by descending mass, ties broken by
// ascending index.
func RankOrder(m core.SkyMap) []int {
	order := make([]int, m.Len())
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(m.Values[b], m.Values[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return order
}

// Rank computes the greedy credible level of every pixel: the mass of the
// smallest region, grown from the most probable pixel down, that contains it.
func Rank(m core.SkyMap) core.CredibleLevelMap {
	levels := make([]float64, m.Len())
	var running float64
	for _, i := range RankOrder(m) {
		running += m.Values[i]
		levels[i] = running
	}
	return core.CredibleLevelMap{Values: levels, Scheme: m.Scheme}
}

// EnclosedCount returns how many pixels the greedy region for percent
// encloses: the rank of the first pixel whose cumulative mass reaches
// percent/100. When the target exceeds the total mass, every pixel counts.
func EnclosedCount(levels core.CredibleLevelMap, percent float64) int {
	sorted := slices.Clone(levels.Values)
	slices.Sort(sorted)
	return enclosedCount(sorted, percent)
}

func enclosedCount(sorted []float64, percent float64) int {
	target := percent/100 - levelTolerance
	i, _ := slices.BinarySearchFunc(sorted, target, func(v, t float64) int {
		if v < t {
			return -1
		}
		return 1
	})
	if i == len(sorted) {
		return len(sorted)
	}
	return i + 1
}

// Encloses reports whether a pixel at level lies inside the percent contour.
// The comparison is inclusive, so a pixel sitting exactly on a breakpoint
// belongs to the region it completes.
func Encloses(level, percent float64) bool {
	return level <= percent/100+levelTolerance
}

// Contours summarizes each requested percent contour. pixelAreaDeg2 is the
// area of one pixel in square degrees.
func Contours(levels core.CredibleLevelMap, percents []float64, pixelAreaDeg2 float64) []core.Contour {
	if len(percents) == 0 {
		return nil
	}
	sorted := slices.Clone(levels.Values)
	slices.Sort(sorted)

	out := make([]core.Contour, 0, len(percents))
	for _, p := range percents {
		n := enclosedCount(sorted, p)
		out = append(out, core.Contour{
			Percent:    p,
			Level:      p / 100,
			PixelCount: n,
			Area:       int(math.RoundToEven(float64(n) * pixelAreaDeg2)),
		})
	}
	return out
}
