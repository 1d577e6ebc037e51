// Package mapping renders network weathermaps: nodes joined by pairs of
// traffic arrows whose colors follow the measured link utilization, with
// rate labels and an optional legend table on top.
package mapping

import (
	"math"
	"strconv"
	"strings"
)

// bucket is one utilization tier: percentages in [low, high) map to index.
type bucket struct {
	index int
	low   int
	high  int
}

// utilizationBuckets is scanned in order. The last tier is open-ended.
var utilizationBuckets = []bucket{
	{0, 0, 1},
	{1, 1, 2},
	{2, 2, 10},
	{3, 10, 25},
	{4, 25, 40},
	{5, 40, 55},
	{6, 55, 70},
	{7, 70, 85},
	{8, 85, math.MaxInt},
}

// Utilization is the classification of one traffic direction.
type Utilization struct {
	Index   int    // palette index, 0..8
	Percent int    // rounded-up share of the link capacity
	Label   string // e.g. "123.35M"
}

// Classify converts a rate in bits per second into a palette index and a
// magnitude label. capacity is expressed in kilobits per second.
func Classify(rateBitsPerSecond, capacity int64) Utilization {
	kilo := float64(rateBitsPerSecond) / 1000
	percent := utilizationPercent(kilo, capacity)

	return Utilization{
		Index:   bucketIndex(percent),
		Percent: percent,
		Label:   FormatRate(kilo),
	}
}

func utilizationPercent(kilo float64, capacity int64) int {
	if capacity <= 0 {
		return math.MaxInt
	}
	p := math.Ceil(kilo * 100 / float64(capacity))
	if p >= math.MaxInt32 {
		return math.MaxInt
	}
	return int(p)
}

func bucketIndex(percent int) int {
	if percent < 0 {
		return 0
	}
	for _, b := range utilizationBuckets {
		if percent >= b.low && percent < b.high {
			return b.index
		}
	}
	return utilizationBuckets[len(utilizationBuckets)-1].index
}

// FormatRate renders a kilo-unit value with a K, M or G suffix.
func FormatRate(kilo float64) string {
	switch {
	case kilo <= 999:
		return formatValue(kilo) + "K"
	case kilo <= 999999:
		return formatValue(kilo/1000) + "M"
	default:
		return formatValue(kilo/1000000) + "G"
	}
}

// formatValue rounds half away from zero to two decimals and always keeps
// at least one decimal digit.
func formatValue(v float64) string {
	rounded := math.Round(v*100) / 100
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
