package priority

import "math"

const neutralNormalized = 0.5

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// normalize min-max scales every column into [0,1]. Cost columns are inverted.
// A column whose values are all equal maps to 0.5 and is reported as not varying.
func normalize(raw []Vector) (norm []Vector, varying [NumCriteria]bool, anomalies int) {
	norm = make([]Vector, len(raw))
	for c := Criterion(0); c < NumCriteria; c++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range raw {
			v := raw[i][c]
			if !finite(v) {
				v = 0
				anomalies++
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if len(raw) == 0 || hi == lo {
			for i := range raw {
				norm[i][c] = neutralNormalized
			}
			continue
		}
		varying[c] = true
		span := hi - lo
		for i := range raw {
			v := raw[i][c]
			if !finite(v) {
				v = 0
			}
			var n float64
			if c.Benefit() {
				n = (v - lo) / span
			} else {
				n = (hi - v) / span
			}
			if !finite(n) {
				n = neutralNormalized
				anomalies++
			}
			norm[i][c] = n
		}
	}
	return norm, varying, anomalies
}
