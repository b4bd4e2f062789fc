package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CategoryDrug       = "DG"
	CategoryDevice     = "DV"
	CategoryPPE        = "PP"
	CategoryReagent    = "RT"
	CategoryConsumable = "CS"
	CategoryOther      = "OT"
)

var categoryLabels = map[string]string{
	CategoryDrug:       "drug",
	CategoryDevice:     "medical device",
	CategoryPPE:        "protective equipment",
	CategoryReagent:    "test reagent",
	CategoryConsumable: "disposable consumable",
	CategoryOther:      "other",
}

var categoryOrder = []string{
	CategoryDrug,
	CategoryDevice,
	CategoryPPE,
	CategoryReagent,
	CategoryConsumable,
	CategoryOther,
}

// Categories lists category codes in display order.
func Categories() []string {
	return append([]string(nil), categoryOrder...)
}

func ValidCategory(c string) bool {
	_, ok := categoryLabels[c]
	return ok
}

func CategoryLabel(c string) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return c
}

// Supply is keyed by its UNSPSC code.
type Supply struct {
	Code          string              `gorm:"column:unspsc_code;size:20;primaryKey" json:"unspsc_code"`
	Name          string              `gorm:"column:name;size:200;not null;uniqueIndex:idx_supply_name_category" json:"name"`
	Category      string              `gorm:"column:category;size:2;not null;uniqueIndex:idx_supply_name_category" json:"category"`
	Unit          string              `gorm:"column:unit;size:10;not null" json:"unit"`
	Standard      string              `gorm:"column:standard;size:100" json:"standard,omitempty"`
	ShelfLife     int                 `gorm:"column:shelf_life;not null" json:"shelf_life_months"`
	StorageTemp   string              `gorm:"column:storage_temp;size:20" json:"storage_temp,omitempty"`
	IsControlled  bool                `gorm:"column:is_controlled;not null" json:"is_controlled"`
	Description   string              `gorm:"column:description;type:text" json:"description,omitempty"`
	AvgPrice      decimal.NullDecimal `gorm:"column:avg_price;type:numeric(10,2)" json:"avg_price"`
	MinStockLevel int                 `gorm:"column:min_stock_level;not null" json:"min_stock_level"`
	SupplierID    *uuid.UUID          `gorm:"type:uuid;column:supplier_id;index" json:"supplier_id,omitempty"`
	CreatedAt     time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

func (Supply) TableName() string { return "medical_supply" }

type Batch struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey;column:batch_id" json:"id"`
	BatchNumber        string              `gorm:"column:batch_number;size:50;not null;uniqueIndex" json:"batch_number"`
	HospitalID         uuid.UUID           `gorm:"type:uuid;column:hospital_id;not null;index:idx_batch_hospital_supply" json:"hospital_id"`
	SupplyCode         string              `gorm:"column:supply_code;size:20;not null;index:idx_batch_hospital_supply" json:"supply_code"`
	Quantity           int                 `gorm:"column:quantity;not null" json:"quantity"`
	ProductionDate     time.Time           `gorm:"column:production_date;type:date;not null" json:"production_date"`
	ExpirationDate     time.Time           `gorm:"column:expiration_date;type:date;not null;index" json:"expiration_date"`
	StorageCondition   datatypes.JSON      `gorm:"column:storage_condition;type:jsonb" json:"storage_condition,omitempty"`
	ReceivedDate       time.Time           `gorm:"column:received_date;type:date;not null;index" json:"received_date"`
	ReceivedBy         *uuid.UUID          `gorm:"type:uuid;column:received_by" json:"received_by,omitempty"`
	UnitPrice          decimal.NullDecimal `gorm:"column:unit_price;type:numeric(10,2)" json:"unit_price"`
	SupplierID         *uuid.UUID          `gorm:"type:uuid;column:supplier_id" json:"supplier_id,omitempty"`
	QualityCheckPassed bool                `gorm:"column:quality_check_passed;not null" json:"quality_check_passed"`
	Notes              string              `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt          time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`

	Hospital *Hospital `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
	Supply   *Supply   `gorm:"foreignKey:SupplyCode;references:Code" json:"supply,omitempty"`
}

func (Batch) TableName() string { return "inventory_batch" }

func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	if b.ReceivedDate.IsZero() {
		b.ReceivedDate = time.Now().UTC()
	}
	return nil
}
