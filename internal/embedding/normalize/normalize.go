// Package normalize L2-normalizes embedding vectors so that cosine
// similarity in internal/chunker reduces to a plain dot product.
package normalize

import "math"

// L2 scales v in place to unit length and returns it. A zero vector is
// returned unchanged.
func L2(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
	return v
}
