package priority

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Candidate is one outstanding request item for the supply being ranked.
type Candidate struct {
	ItemID        uuid.UUID `json:"item_id"`
	RequestID     uuid.UUID `json:"request_id"`
	HospitalID    uuid.UUID `json:"hospital_id"`
	HospitalName  string    `json:"hospital_name"`
	HospitalLevel int       `json:"hospital_level"`
	Requested     int       `json:"quantity_requested"`
	Allocated     int       `json:"quantity_allocated"`
	MinStockLevel int       `json:"min_stock_level"`
}

func (c Candidate) Needed() int {
	return c.Requested - c.Allocated
}

// BatchStock is a stock batch of the ranked supply held by a hospital.
type BatchStock struct {
	HospitalID     uuid.UUID
	Quantity       int
	ExpirationDate time.Time
}

// Row is a candidate with its extracted raw criterion values.
type Row struct {
	Candidate
	CurrentStock int    `json:"current_stock"`
	Raw          Vector `json:"raw"`
}

type stockAgg struct {
	qty          int
	weightedDays float64
}

// Extract builds the raw decision matrix. Batches that are empty or expired
// relative to today are ignored; today is compared by calendar date only.
func Extract(cands []Candidate, batches []BatchStock, today time.Time) []Row {
	stock := make(map[uuid.UUID]*stockAgg)
	for _, b := range batches {
		if b.Quantity <= 0 {
			continue
		}
		days := DaysBetween(today, b.ExpirationDate)
		if days < 0 {
			continue
		}
		a := stock[b.HospitalID]
		if a == nil {
			a = &stockAgg{}
			stock[b.HospitalID] = a
		}
		a.qty += b.Quantity
		a.weightedDays += float64(days) * float64(b.Quantity)
	}

	rows := make([]Row, 0, len(cands))
	for _, c := range cands {
		needed := c.Needed()
		current := 0
		avgDays := 0.0
		if a := stock[c.HospitalID]; a != nil && a.qty > 0 {
			current = a.qty
			avgDays = a.weightedDays / float64(a.qty)
		}
		ratio := 0.0
		if needed > 0 {
			ratio = float64(current+needed-c.MinStockLevel) / float64(needed)
		}
		var raw Vector
		raw[HospitalTierWeight] = TierWeight(c.HospitalLevel)
		raw[StockGap] = float64(needed - current)
		raw[RatioShortage] = ratio
		raw[AvgDaysRemaining] = avgDays
		rows = append(rows, Row{Candidate: c, CurrentStock: current, Raw: raw})
	}
	return rows
}

// DaysBetween returns the number of calendar days from one date to another.
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(b.Sub(a).Hours() / 24))
}
