package index

import (
	"errors"
	"math"
)

// ErrZeroVector reports an embedding with no magnitude. A zero vector cannot
// be normalized and would silently poison every similarity score, so it is
// surfaced instead of defaulted.
var ErrZeroVector = errors.New("index: zero-magnitude embedding")

// Dot returns the inner product of two vectors. For L2-normalized vectors
// this equals cosine similarity.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalize returns v scaled to unit L2 norm. Normalization is mandatory
// before insertion or search: the store ranks by inner product, which equals
// cosine similarity only on unit vectors.
func Normalize(v []float32) ([]float32, error) {
	var sq float32
	for _, x := range v {
		sq += x * x
	}
	if sq == 0 {
		return nil, ErrZeroVector
	}
	norm := float32(math.Sqrt(float64(sq)))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out, nil
}
