package inventory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusFulfilled = "fulfilled"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

var requestStatuses = []string{
	StatusDraft,
	StatusSubmitted,
	StatusApproved,
	StatusFulfilled,
	StatusRejected,
	StatusCancelled,
}

func RequestStatuses() []string {
	return append([]string(nil), requestStatuses...)
}

func ValidRequestStatus(s string) bool {
	for _, v := range requestStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Allocatable reports whether items of a request in this status may receive allocations.
func Allocatable(status string) bool {
	return status == StatusSubmitted || status == StatusApproved
}

type SupplyRequest struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;column:request_id" json:"id"`
	HospitalID   uuid.UUID      `gorm:"type:uuid;column:hospital_id;not null;index" json:"hospital_id"`
	RequestTime  time.Time      `gorm:"column:request_time;not null" json:"request_time"`
	RequiredBy   time.Time      `gorm:"column:required_by;not null;index" json:"required_by"`
	Status       string         `gorm:"column:status;size:16;not null;index" json:"status"`
	Priority     float64        `gorm:"column:priority;not null;index" json:"priority"`
	RequesterID  uuid.UUID      `gorm:"type:uuid;column:requester_id;not null;index" json:"requester_id"`
	ApproverID   *uuid.UUID     `gorm:"type:uuid;column:approver_id" json:"approver_id,omitempty"`
	ApprovalTime *time.Time     `gorm:"column:approval_time" json:"approval_time,omitempty"`
	Comments     string         `gorm:"column:comments;type:text" json:"comments,omitempty"`
	Emergency    bool           `gorm:"column:emergency;not null;index" json:"emergency"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Hospital *Hospital     `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
	Items    []RequestItem `gorm:"foreignKey:RequestID;references:ID" json:"items,omitempty"`
}

func (SupplyRequest) TableName() string { return "supply_request" }

// BeforeCreate gives new requests an id, a draft status and the neutral priority.
func (r *SupplyRequest) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	if r.Status == "" {
		r.Status = StatusDraft
	}
	if r.RequestTime.IsZero() {
		r.RequestTime = time.Now().UTC()
	}
	if r.Priority == 0 {
		r.Priority = DefaultPriority
	}
	return nil
}

type RequestItem struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;column:item_id" json:"id"`
	RequestID  uuid.UUID      `gorm:"type:uuid;column:request_id;not null;index" json:"request_id"`
	SupplyCode string         `gorm:"column:supply_code;size:20;not null;index" json:"supply_code"`
	Quantity   int            `gorm:"column:quantity;not null" json:"quantity"`
	Allocated  int            `gorm:"column:allocated;not null" json:"allocated"`
	Notes      string         `gorm:"column:notes;size:255" json:"notes,omitempty"`
	Priority   float64        `gorm:"column:priority;not null;index" json:"priority"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Supply *Supply `gorm:"foreignKey:SupplyCode;references:Code" json:"supply,omitempty"`
}

func (RequestItem) TableName() string { return "request_item" }

func (it *RequestItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&it.ID)
	if it.Priority == 0 {
		it.Priority = DefaultPriority
	}
	return nil
}

// Open reports whether the item still needs stock.
func (it RequestItem) Open() bool {
	return it.Quantity > it.Allocated
}

type ItemFulfillment struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;column:fulfillment_id" json:"id"`
	RequestItemID uuid.UUID      `gorm:"type:uuid;column:request_item_id;not null;index" json:"request_item_id"`
	BatchID       uuid.UUID      `gorm:"type:uuid;column:inventory_batch_id;not null;index" json:"inventory_batch_id"`
	Quantity      int            `gorm:"column:quantity;not null" json:"quantity"`
	FulfilledBy   *uuid.UUID     `gorm:"type:uuid;column:fulfilled_by" json:"fulfilled_by,omitempty"`
	FulfilledTime time.Time      `gorm:"column:fulfilled_time;not null" json:"fulfilled_time"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ItemFulfillment) TableName() string { return "item_fulfillment" }

func (f *ItemFulfillment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	if f.FulfilledTime.IsZero() {
		f.FulfilledTime = time.Now().UTC()
	}
	return nil
}
