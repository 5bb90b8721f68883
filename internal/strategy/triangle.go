package strategy

import "math"

// Pairs is the number of unordered pairs among n particles.
func Pairs(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// Rank maps a pair i < j to its work-unit id. Ids are ordered by j, so the
// mapping does not depend on the particle count and [0, Pairs(n)) covers
// exactly the pairs of the first n particles.
func Rank(i, j int) int {
	return j*(j-1)/2 + i
}

// Unrank is the inverse of Rank.
func Unrank(id int) (i, j int) {
	j = int((1 + math.Sqrt(8*float64(id)+1)) / 2)
	// correct float rounding for large ids
	for j*(j-1)/2 > id {
		j--
	}
	for (j+1)*j/2 <= id {
		j++
	}
	return id - j*(j-1)/2, j
}
