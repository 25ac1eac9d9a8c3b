// Package similarity scores texts against each other in embedding space.
package similarity

import (
	"fmt"
	"math"
)

// Dimension is the embedding width produced by the sentence encoder.
const Dimension = 384

// DimensionError reports a vector whose length does not match what the caller expected.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("similarity: vector dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of v. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	n := Norm(v)
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// Dot returns the inner product of a and b.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{Want: len(a), Got: len(b)}
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a zero vector.
func Cosine(a, b []float32) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}

// Percent converts a score to a percentage rounded to two decimals.
func Percent(score float64) float64 {
	return math.Round(score*100*100) / 100
}
