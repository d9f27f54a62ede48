package matcher

import "math"

// EuclideanDistance computes the euclidean distance between two embedding
// vectors. Mismatched or empty vectors yield +Inf so they can never satisfy
// a tolerance check.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum)
}
