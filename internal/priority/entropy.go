package priority

import "math"

const (
	entropyEpsilon  = 1e-12
	divergenceFloor = 1e-9
)

type weighting struct {
	Weights       Vector
	Entropy       Vector
	EqualFallback bool
}

// entropyWeights derives objective weights from the normalized matrix.
// Non-varying criteria keep weight zero.
func entropyWeights(norm []Vector, varying [NumCriteria]bool) weighting {
	var out weighting
	n := len(norm)
	k := 0
	for c := Criterion(0); c < NumCriteria; c++ {
		if varying[c] {
			k++
		}
	}
	if n == 0 || k == 0 {
		return out
	}
	lnN := math.Log(float64(n))
	if lnN <= 0 {
		lnN = 1
	}

	var divergence Vector
	sum := 0.0
	for c := Criterion(0); c < NumCriteria; c++ {
		if !varying[c] {
			continue
		}
		colSum := 0.0
		for i := range norm {
			colSum += norm[i][c] + entropyEpsilon
		}
		h := 0.0
		for i := range norm {
			p := (norm[i][c] + entropyEpsilon) / colSum
			if p > 0 {
				h -= p * math.Log(p)
			}
		}
		e := clamp01(h / lnN)
		out.Entropy[c] = e
		divergence[c] = 1 - e
		sum += divergence[c]
	}

	if math.IsNaN(sum) || sum < divergenceFloor {
		out.EqualFallback = true
		for c := Criterion(0); c < NumCriteria; c++ {
			if varying[c] {
				out.Weights[c] = 1 / float64(k)
			}
		}
		return out
	}
	for c := Criterion(0); c < NumCriteria; c++ {
		if varying[c] {
			out.Weights[c] = divergence[c] / sum
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
