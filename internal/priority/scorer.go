package priority

import (
	"math"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeNoCandidates    Outcome = "no_candidates"
	OutcomeSingleCandidate Outcome = "single_candidate"
	OutcomeDegenerate      Outcome = "degenerate_criteria"
	OutcomeScored          Outcome = "scored"
	OutcomeFailed          Outcome = "failed"
)

const (
	// SingleCandidateScore is written when only one item competes for a supply.
	SingleCandidateScore = 0.5
	// DegenerateScore is written when no criterion varies across candidates.
	DegenerateScore = 0.0
)

type ScoredRow struct {
	Row
	Normalized    Vector  `json:"normalized"`
	Weighted      Vector  `json:"weighted"`
	DistIdeal     float64 `json:"distance_to_ideal"`
	DistAntiIdeal float64 `json:"distance_to_anti_ideal"`
	Score         float64 `json:"score"`
}

// Ranking is the full result of scoring one supply, kept for explainability.
type Ranking struct {
	SupplyCode          string      `json:"supply_code"`
	Outcome             Outcome     `json:"outcome"`
	Rows                []ScoredRow `json:"rows"`
	Varying             []Criterion `json:"-"`
	VaryingNames        []string    `json:"varying_criteria"`
	Weights             Vector      `json:"weights"`
	Entropy             Vector      `json:"entropy"`
	EqualWeightFallback bool        `json:"equal_weight_fallback"`
	Ideal               Vector      `json:"ideal"`
	AntiIdeal           Vector      `json:"anti_ideal"`
	NumericAnomalies    int         `json:"numeric_anomalies"`
}

type ItemScore struct {
	ItemID    uuid.UUID
	RequestID uuid.UUID
	Score     float64
}

type RequestScore struct {
	RequestID uuid.UUID
	Score     float64
}

// Rank runs normalization, entropy weighting and TOPSIS over the extracted rows.
func Rank(rows []Row) Ranking {
	r := Ranking{Rows: make([]ScoredRow, len(rows))}
	for i := range rows {
		r.Rows[i].Row = rows[i]
	}
	switch len(rows) {
	case 0:
		r.Outcome = OutcomeNoCandidates
		return r
	case 1:
		r.Outcome = OutcomeSingleCandidate
		r.Rows[0].Score = SingleCandidateScore
		return r
	}

	raw := make([]Vector, len(rows))
	for i := range rows {
		raw[i] = rows[i].Raw
	}
	norm, varying, anomalies := normalize(raw)
	r.NumericAnomalies = anomalies
	for i := range norm {
		r.Rows[i].Normalized = norm[i]
	}
	for c := Criterion(0); c < NumCriteria; c++ {
		if varying[c] {
			r.Varying = append(r.Varying, c)
			r.VaryingNames = append(r.VaryingNames, c.String())
		}
	}
	if len(r.Varying) == 0 {
		r.Outcome = OutcomeDegenerate
		for i := range r.Rows {
			r.Rows[i].Score = DegenerateScore
		}
		return r
	}

	wt := entropyWeights(norm, varying)
	r.Weights = wt.Weights
	r.Entropy = wt.Entropy
	r.EqualWeightFallback = wt.EqualFallback

	res := topsis(norm, wt.Weights)
	r.Ideal = res.Ideal
	r.AntiIdeal = res.AntiIdeal
	for i := range r.Rows {
		r.Rows[i].Weighted = res.Weighted[i]
		r.Rows[i].DistIdeal = res.DistIdeal[i]
		r.Rows[i].DistAntiIdeal = res.DistAnti[i]
		score := res.Closeness[i]
		if math.IsNaN(score) {
			score = 0
			r.NumericAnomalies++
		}
		r.Rows[i].Score = clamp01(score)
	}
	r.Outcome = OutcomeScored
	return r
}

// ItemScores returns one score per ranked item in row order.
func (r Ranking) ItemScores() []ItemScore {
	out := make([]ItemScore, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, ItemScore{ItemID: row.ItemID, RequestID: row.RequestID, Score: row.Score})
	}
	return out
}

// RequestScores folds item scores into their parent requests by maximum,
// ordered by first appearance.
func (r Ranking) RequestScores() []RequestScore {
	return aggregateRequests(r.ItemScores())
}

func aggregateRequests(items []ItemScore) []RequestScore {
	idx := make(map[uuid.UUID]int, len(items))
	out := make([]RequestScore, 0, len(items))
	for _, it := range items {
		if i, ok := idx[it.RequestID]; ok {
			if it.Score > out[i].Score {
				out[i].Score = it.Score
			}
			continue
		}
		idx[it.RequestID] = len(out)
		out = append(out, RequestScore{RequestID: it.RequestID, Score: it.Score})
	}
	return out
}
