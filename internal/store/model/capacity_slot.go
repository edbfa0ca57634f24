package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Service time slots used by bookings and capacity rows.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
)

func ServiceSlots() []string {
	return []string{SlotMorning, SlotAfternoon, SlotEvening}
}

// CapacitySlot is a pro's declared capacity for one date and time slot.
// Booked counts are incremented by the booking collaborators, not here.
type CapacitySlot struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	ProID     uuid.UUID `gorm:"not null;uniqueIndex:capacity_slots_pro_date_slot"`
	// Date is the calendar day in YYYY-MM-DD form.
	Date       string `gorm:"type:VARCHAR(10);not null;uniqueIndex:capacity_slots_pro_date_slot;index"`
	TimeSlot   string `gorm:"type:VARCHAR(16);not null;uniqueIndex:capacity_slots_pro_date_slot"`
	MaxJobs    int    `gorm:"not null;default:0"`
	BookedJobs int    `gorm:"not null;default:0"`
	Blocked    bool   `gorm:"not null;default:false"`
}

type CapacitySlotList []CapacitySlot

func (c CapacitySlot) String() string {
	val, _ := json.Marshal(c)
	return string(val)
}

// Remaining returns the open spots on this row, never negative.
func (c CapacitySlot) Remaining() int {
	if c.Blocked {
		return 0
	}
	if r := c.MaxJobs - c.BookedJobs; r > 0 {
		return r
	}
	return 0
}
