package models

import "time"

// ReasonCode explains why stock was taken out of inventory.
type ReasonCode string

const (
	ReasonRepair     ReasonCode = "repair"
	ReasonSale       ReasonCode = "sale"
	ReasonAdjustment ReasonCode = "adjustment"
	ReasonDamage     ReasonCode = "damage"
	ReasonOther      ReasonCode = "other"
)

// IsValid reports whether the reason code is one of the known values.
func (r ReasonCode) IsValid() bool {
	switch r {
	case ReasonRepair, ReasonSale, ReasonAdjustment, ReasonDamage, ReasonOther:
		return true
	}
	return false
}

// ReductionRecord is the audit entry written for every successful stock
// reduction. Records are append-only: never updated, never deleted, and they
// outlive the item they reference.
type ReductionRecord struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ItemID            string     `json:"item_id" gorm:"type:varchar(36);index"`
	QuantityReduced   int        `json:"quantity_reduced"`
	ReasonCode        ReasonCode `json:"reason_code" gorm:"type:varchar(20)"`
	JobReference      string     `json:"job_reference,omitempty" gorm:"type:varchar(100)"`
	Notes             string     `json:"notes,omitempty" gorm:"type:varchar(500)"`
	Actor             string     `json:"actor" gorm:"type:varchar(100)"`
	ResultingQuantity int        `json:"resulting_quantity"`
	CreatedAt         time.Time  `json:"created_at"`
}
