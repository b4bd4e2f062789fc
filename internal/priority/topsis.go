package priority

import "math"

const distanceFloor = 1e-9

type topsisResult struct {
	Weighted  []Vector
	Ideal     Vector
	AntiIdeal Vector
	DistIdeal []float64
	DistAnti  []float64
	Closeness []float64
}

// topsis scores each row by relative closeness to the ideal solution.
// Every normalized criterion is benefit-oriented, so the ideal is the column
// maximum and the anti-ideal the column minimum.
func topsis(norm []Vector, w Vector) topsisResult {
	n := len(norm)
	res := topsisResult{
		Weighted:  make([]Vector, n),
		DistIdeal: make([]float64, n),
		DistAnti:  make([]float64, n),
		Closeness: make([]float64, n),
	}
	if n == 0 {
		return res
	}
	for i := range norm {
		for c := Criterion(0); c < NumCriteria; c++ {
			res.Weighted[i][c] = norm[i][c] * w[c]
		}
	}
	res.Ideal = res.Weighted[0]
	res.AntiIdeal = res.Weighted[0]
	for i := 1; i < n; i++ {
		for c := Criterion(0); c < NumCriteria; c++ {
			res.Ideal[c] = math.Max(res.Ideal[c], res.Weighted[i][c])
			res.AntiIdeal[c] = math.Min(res.AntiIdeal[c], res.Weighted[i][c])
		}
	}
	for i := range norm {
		var sp, sm float64
		for c := Criterion(0); c < NumCriteria; c++ {
			dp := res.Weighted[i][c] - res.Ideal[c]
			dm := res.Weighted[i][c] - res.AntiIdeal[c]
			sp += dp * dp
			sm += dm * dm
		}
		sp, sm = math.Sqrt(sp), math.Sqrt(sm)
		res.DistIdeal[i] = sp
		res.DistAnti[i] = sm
		if total := sp + sm; total < distanceFloor {
			res.Closeness[i] = neutralNormalized
		} else {
			res.Closeness[i] = sm / total
		}
	}
	return res
}
