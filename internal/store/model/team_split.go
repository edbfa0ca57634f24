package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SplitMode string

const (
	SplitModePercent SplitMode = "percent"
	SplitModeFlat    SplitMode = "flat"
)

// TeamSplit governs how a job's payout divides between two pros.
type TeamSplit struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	JobID          uuid.UUID `gorm:"not null;uniqueIndex"`
	PrimaryProID   uuid.UUID `gorm:"not null"`
	SecondaryProID *uuid.UUID
	Mode           SplitMode `gorm:"type:VARCHAR(16);not null;default:'percent'"`
	// PrimaryPercent applies in percent mode; the secondary share is the
	// remainder so the parts always sum to the total.
	PrimaryPercent     int   `gorm:"not null;default:100"`
	PrimaryFlatCents   int64 `gorm:"not null;default:0"`
	SecondaryFlatCents int64 `gorm:"not null;default:0"`
}

func (t TeamSplit) String() string {
	val, _ := json.Marshal(t)
	return string(val)
}
