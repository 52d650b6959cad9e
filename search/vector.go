package search

// squaredL2 returns the squared Euclidean distance between a and b.
// Both vectors must have the same length.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
