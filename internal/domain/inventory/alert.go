package inventory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AlertLowStock = "low_stock"
	AlertExpiring = "expiring"
	AlertExpired  = "expired"
	AlertCapacity = "capacity"
)

func ValidAlertType(t string) bool {
	switch t {
	case AlertLowStock, AlertExpiring, AlertExpired, AlertCapacity:
		return true
	default:
		return false
	}
}

type Alert struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;column:alert_id" json:"id"`
	HospitalID   uuid.UUID      `gorm:"type:uuid;column:hospital_id;not null;index" json:"hospital_id"`
	SupplyCode   *string        `gorm:"column:supply_code;size:20;index" json:"supply_code,omitempty"`
	BatchID      *uuid.UUID     `gorm:"type:uuid;column:batch_id;index" json:"batch_id,omitempty"`
	AlertType    string         `gorm:"column:alert_type;size:16;not null;index" json:"alert_type"`
	Message      string         `gorm:"column:message;type:text;not null" json:"message"`
	IsResolved   bool           `gorm:"column:is_resolved;not null;index" json:"is_resolved"`
	ResolvedBy   *uuid.UUID     `gorm:"type:uuid;column:resolved_by" json:"resolved_by,omitempty"`
	ResolvedTime *time.Time     `gorm:"column:resolved_time" json:"resolved_time,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Alert) TableName() string { return "inventory_alert" }

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
