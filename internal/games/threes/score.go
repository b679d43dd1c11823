package threes

import "math"

// RankScore returns the points a single tile is worth.
// Tiles of rank 3 * 2^k score 3^(k+1); empty cells, 1s and 2s score nothing.
func RankScore(r Rank) int {
	if r < 3 {
		return 0
	}
	exp := math.Log2(float64(r)/3) + 1
	return int(math.Round(math.Pow(3, exp)))
}

// Score sums RankScore over every tile.
func (b Board) Score() int {
	total := 0
	for _, v := range b.cells {
		total += RankScore(v)
	}
	return total
}
