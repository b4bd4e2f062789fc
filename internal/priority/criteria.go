package priority

import (
	"encoding/json"
	"math"
)

// Criterion indexes one column of the decision matrix.
type Criterion int

const (
	HospitalTierWeight Criterion = iota
	StockGap
	RatioShortage
	AvgDaysRemaining

	NumCriteria
)

var criterionNames = [NumCriteria]string{
	HospitalTierWeight: "hospital_tier_weight",
	StockGap:           "stock_gap",
	RatioShortage:      "ratio_shortage",
	AvgDaysRemaining:   "avg_days_remaining",
}

func (c Criterion) String() string {
	if c < 0 || c >= NumCriteria {
		return "unknown"
	}
	return criterionNames[c]
}

// Benefit reports whether a larger raw value pushes a candidate up the ranking.
// Days remaining is the only cost criterion.
func (c Criterion) Benefit() bool {
	return c != AvgDaysRemaining
}

// Criteria lists every criterion in matrix column order.
func Criteria() []Criterion {
	out := make([]Criterion, 0, NumCriteria)
	for c := Criterion(0); c < NumCriteria; c++ {
		out = append(out, c)
	}
	return out
}

// Vector holds one value per criterion.
type Vector [NumCriteria]float64

func (v Vector) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumCriteria)
	for c := Criterion(0); c < NumCriteria; c++ {
		val := v[c]
		if math.IsNaN(val) || math.IsInf(val, 0) {
			val = 0
		}
		m[c.String()] = val
	}
	return json.Marshal(m)
}

var tierWeights = map[int]float64{
	9: 1.0,
	8: 0.9,
	7: 0.8,
	6: 0.7,
	5: 0.6,
	4: 0.5,
	3: 0.4,
	2: 0.3,
	1: 0.2,
}

const defaultTierWeight = 0.1

// TierWeight maps a hospital level (1..9) to its tier weight. Unknown levels get 0.1.
func TierWeight(level int) float64 {
	if w, ok := tierWeights[level]; ok {
		return w
	}
	return defaultTierWeight
}
