package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPendingAssign JobStatus = "pending_assign"
	JobStatusOfferSent     JobStatus = "offer_sent"
	JobStatusAccepted      JobStatus = "accepted"
	JobStatusEnRoute       JobStatus = "en_route"
	JobStatusCompleted     JobStatus = "completed"
	JobStatusCancelled     JobStatus = "cancelled"
)

// Terminal reports whether no further status transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// JobMetadata is the mutable jsonb blob on a job. The dispatch core only
// touches estimated_payout_cents; the rest is written by the booking flow.
type JobMetadata struct {
	EstimatedPayoutCents int64  `json:"estimated_payout_cents,omitempty"`
	TimeSlot             string `json:"time_slot,omitempty"`
	PromoCode            string `json:"promo_code,omitempty"`
}

type LineItem struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement"`
	JobID              uuid.UUID `gorm:"not null;index"`
	ServiceID          string    `gorm:"type:VARCHAR(100);not null"`
	ServiceCategory    string    `gorm:"type:VARCHAR(100)"`
	Quantity           int       `gorm:"not null;default:1"`
	CustomerPriceCents int64     `gorm:"not null;default:0"`
	// ProPayoutCents is the per-line pro payout computed at pricing time.
	// Zero means "not priced for the pro", not "free".
	ProPayoutCents int64 `gorm:"not null;default:0"`
}

type Job struct {
	ID             uuid.UUID `gorm:"primaryKey;"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      *time.Time
	Status         JobStatus `gorm:"type:VARCHAR(32);not null;default:'pending_assign';index"`
	CustomerName   string    `gorm:"type:VARCHAR(255)"`
	CustomerEmail  string    `gorm:"type:VARCHAR(255)"`
	CustomerPhone  string    `gorm:"type:VARCHAR(64)"`
	Address        string
	GeoLat         *float64
	GeoLng         *float64
	ScheduledStart *time.Time `gorm:"index"`
	ScheduledEnd   *time.Time
	SubtotalCents  int64                   `gorm:"not null;default:0"`
	LineItems      []LineItem              `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE;"`
	Metadata       *JSONField[JobMetadata] `gorm:"type:jsonb"`
}

type JobList []Job

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

// Location returns the job coordinates, or nil when either is missing.
func (j Job) Location() (*float64, *float64) {
	if j.GeoLat == nil || j.GeoLng == nil {
		return nil, nil
	}
	return j.GeoLat, j.GeoLng
}

// TimeSlot returns the booked slot from metadata, empty when unset.
func (j Job) TimeSlot() string {
	if j.Metadata == nil {
		return ""
	}
	return j.Metadata.Data.TimeSlot
}
