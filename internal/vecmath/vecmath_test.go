package vecmath

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{"identical direction", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"scaled copy", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"empty", nil, []float32{1, 2}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CosineSimilarity(tc.a, tc.b)
			if math.Abs(result-tc.expected) > 1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %f; want %f",
					tc.a, tc.b, result, tc.expected)
			}
		})
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 2, 3}, {4, 5, 6}},
		{{-1, 0.5, 2}, {3, -2, 1}},
		{{0.1, 0.2}, {0.3, 0.4}},
	}
	for _, p := range pairs {
		ab := CosineSimilarity(p[0], p[1])
		ba := CosineSimilarity(p[1], p[0])
		if math.Abs(ab-ba) > 1e-12 {
			t.Errorf("similarity not symmetric: sim(a,b)=%f sim(b,a)=%f", ab, ba)
		}
	}
}

func TestCosineSimilaritySelf(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{-0.5, 0.25},
		{100, 200, 300, 400},
	}
	for _, v := range vectors {
		if sim := CosineSimilarity(v, v); math.Abs(sim-1) > 1e-9 {
			t.Errorf("sim(a,a) = %f for %v; want 1", sim, v)
		}
	}
}

func TestCosineSimilarityOverlap(t *testing.T) {
	// Mismatched dimensions compare only the overlapping prefix.
	a := []float32{1, 0}
	b := []float32{1, 0, 5, 5}
	if sim := CosineSimilarity(a, b); math.Abs(sim-1) > 1e-9 {
		t.Errorf("overlap similarity = %f; want 1", sim)
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		vectors  [][]float32
		expected []float32
	}{
		{"empty", nil, nil},
		{"single vector unchanged", [][]float32{{1, 2, 3}}, []float32{1, 2, 3}},
		{"two vectors", [][]float32{{1, 2}, {3, 4}}, []float32{2, 3}},
		{"three vectors", [][]float32{{0, 0}, {3, 3}, {6, 6}}, []float32{3, 3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Mean(tc.vectors)
			if len(result) != len(tc.expected) {
				t.Fatalf("Mean returned %d dims; want %d", len(result), len(tc.expected))
			}
			for i := range result {
				if math.Abs(float64(result[i]-tc.expected[i])) > 1e-6 {
					t.Errorf("dim %d = %f; want %f", i, result[i], tc.expected[i])
				}
			}
		})
	}
}

func TestAccumulateScale(t *testing.T) {
	var sum []float64
	sum = Accumulate(sum, []float32{1, 2, 3})
	sum = Accumulate(sum, []float32{3, 4, 5})

	mean := Scale(sum, 2)
	expected := []float32{2, 3, 4}
	for i := range expected {
		if math.Abs(float64(mean[i]-expected[i])) > 1e-6 {
			t.Errorf("dim %d = %f; want %f", i, mean[i], expected[i])
		}
	}

	if got := Scale(sum, 0); got != nil {
		t.Errorf("Scale with zero count = %v; want nil", got)
	}
}

func TestAccumulateOrderIndependent(t *testing.T) {
	vs := [][]float32{{1, 2}, {3, 4}, {5, 6}, {7, 8}}

	var forward []float64
	for _, v := range vs {
		forward = Accumulate(forward, v)
	}
	var backward []float64
	for i := len(vs) - 1; i >= 0; i-- {
		backward = Accumulate(backward, vs[i])
	}

	for i := range forward {
		if forward[i] != backward[i] {
			t.Errorf("dim %d: forward %f != backward %f", i, forward[i], backward[i])
		}
	}
}
