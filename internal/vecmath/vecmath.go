package vecmath

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical direction).
// When the vectors differ in length, only the overlapping prefix is
// compared. Returns 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < n; i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	return similarity
}

// Mean computes the dimension-wise arithmetic mean of a set of vectors.
// Vectors shorter than the first one are padded implicitly with zeros.
// Returns nil for an empty input.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	dim := 0
	for _, v := range vectors {
		if len(v) > dim {
			dim = len(v)
		}
	}

	sum := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	mean := make([]float32, dim)
	for i := range sum {
		mean[i] = float32(sum[i] / float64(len(vectors)))
	}
	return mean
}

// Accumulate folds a vector into a running sum, growing the sum if needed.
// Returns the (possibly reallocated) sum so callers can stream vectors
// through without holding more than one raw vector at a time.
func Accumulate(sum []float64, v []float32) []float64 {
	if len(v) > len(sum) {
		grown := make([]float64, len(v))
		copy(grown, sum)
		sum = grown
	}
	for i, x := range v {
		sum[i] += float64(x)
	}
	return sum
}

// Scale divides a running sum by count, producing a float32 vector.
// Returns nil when count is zero.
func Scale(sum []float64, count int) []float32 {
	if count == 0 {
		return nil
	}
	out := make([]float32, len(sum))
	for i, x := range sum {
		out[i] = float32(x / float64(count))
	}
	return out
}
