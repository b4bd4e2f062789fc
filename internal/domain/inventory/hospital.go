package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Hospital levels; higher is a higher care tier.
const (
	LevelThirdA    = 9
	LevelThirdB    = 8
	LevelSecondA   = 7
	LevelSecondB   = 6
	LevelFirstA    = 5
	LevelFirstB    = 4
	LevelDistrict  = 3
	LevelCommunity = 2
	LevelOther     = 1
)

var levelLabels = map[int]string{
	LevelThirdA:    "tertiary A",
	LevelThirdB:    "tertiary B",
	LevelSecondA:   "secondary A",
	LevelSecondB:   "secondary B",
	LevelFirstA:    "primary A",
	LevelFirstB:    "primary B",
	LevelDistrict:  "district",
	LevelCommunity: "community",
	LevelOther:     "other",
}

func LevelLabel(level int) string {
	if l, ok := levelLabels[level]; ok {
		return l
	}
	return "unknown"
}

func ValidHospitalLevel(level int) bool {
	return level >= LevelOther && level <= LevelThirdA
}

type Hospital struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;column:hospital_id" json:"id"`
	OrgCode          string          `gorm:"column:org_code;size:20;not null;uniqueIndex" json:"org_code"`
	Name             string          `gorm:"column:name;size:100;not null" json:"name"`
	Level            int             `gorm:"column:level;not null" json:"level"`
	Address          string          `gorm:"column:address;type:text" json:"address"`
	Latitude         *float64        `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude        *float64        `gorm:"column:longitude" json:"longitude,omitempty"`
	ContactInfo      datatypes.JSON  `gorm:"column:contact_info;type:jsonb" json:"contact_info,omitempty"`
	StorageVolume    decimal.Decimal `gorm:"column:storage_volume;type:numeric(10,2);not null" json:"storage_volume"`
	CurrentCapacity  decimal.Decimal `gorm:"column:current_capacity;type:numeric(10,2);not null" json:"current_capacity"`
	Region           string          `gorm:"column:region;size:50;index" json:"region,omitempty"`
	IsActive         bool            `gorm:"column:is_active;not null" json:"is_active"`
	WarningThreshold decimal.Decimal `gorm:"column:warning_threshold;type:numeric(5,2);not null" json:"warning_threshold"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (Hospital) TableName() string { return "hospital" }

func (h *Hospital) BeforeCreate(tx *gorm.DB) error {
	ensureID(&h.ID)
	return nil
}

// CapacityUsedPercent is current/volume*100, or zero when the volume is not positive.
func (h Hospital) CapacityUsedPercent() decimal.Decimal {
	if !h.StorageVolume.IsPositive() {
		return decimal.Zero
	}
	return h.CurrentCapacity.Div(h.StorageVolume).Mul(decimal.NewFromInt(100))
}

type Supplier struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;column:supplier_id" json:"id"`
	Name          string         `gorm:"column:name;size:100;not null;index" json:"name"`
	ContactPerson string         `gorm:"column:contact_person;size:50" json:"contact_person"`
	ContactInfo   datatypes.JSON `gorm:"column:contact_info;type:jsonb" json:"contact_info,omitempty"`
	Address       string         `gorm:"column:address;type:text" json:"address,omitempty"`
	CreditRating  int            `gorm:"column:credit_rating;not null" json:"credit_rating"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Supplier) TableName() string { return "supplier" }

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	if s.CreditRating == 0 {
		s.CreditRating = 3
	}
	return nil
}
