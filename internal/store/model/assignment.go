package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AssignmentState string

const (
	AssignmentStateOffered   AssignmentState = "offered"
	AssignmentStateAccepted  AssignmentState = "accepted"
	AssignmentStateDeclined  AssignmentState = "declined"
	AssignmentStateCompleted AssignmentState = "completed"
)

// Terminal reports whether the assignment can transition no further.
func (s AssignmentState) Terminal() bool {
	return s == AssignmentStateDeclined || s == AssignmentStateCompleted
}

// Assignment pairs one job with one pro. The store carries no unique
// constraint on (job_id, pro_id); the service layer enforces the
// single-active-offer rule logically.
type Assignment struct {
	ID        uuid.UUID `gorm:"primaryKey;"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt *time.Time
	JobID     uuid.UUID       `gorm:"not null;index:assignments_job_pro_idx"`
	ProID     uuid.UUID       `gorm:"not null;index:assignments_job_pro_idx"`
	State     AssignmentState `gorm:"type:VARCHAR(32);not null;default:'offered';index"`
	// DistanceMiles is the matcher distance captured at offer time; nil
	// when the offer was sent without geo data.
	DistanceMiles *float64
	OfferedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	AcceptedAt    *time.Time
	DeclinedAt    *time.Time
	CompletedAt   *time.Time
}

type AssignmentList []Assignment

func (a Assignment) String() string {
	val, _ := json.Marshal(a)
	return string(val)
}
