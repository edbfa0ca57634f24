package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PayoutState string

const (
	PayoutStatePending  PayoutState = "pending"
	PayoutStateApproved PayoutState = "approved"
	PayoutStatePaid     PayoutState = "paid"
)

// Pro roles recorded on a ledger entry.
const (
	PayoutRoleSolo      = "solo"
	PayoutRolePrimary   = "primary"
	PayoutRoleSecondary = "secondary"
)

// PayoutLedgerEntry records money owed to a pro for one completed job.
// Insert-only from the dispatch core; approval and payment transitions are
// owned by the admin workflow.
type PayoutLedgerEntry struct {
	ID          uuid.UUID   `gorm:"primaryKey;"`
	CreatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
	ProID       uuid.UUID   `gorm:"not null;uniqueIndex:payout_ledger_job_pro;index"`
	JobID       uuid.UUID   `gorm:"not null;uniqueIndex:payout_ledger_job_pro"`
	AmountCents int64       `gorm:"not null"`
	State       PayoutState `gorm:"type:VARCHAR(16);not null;default:'pending';index"`
	// Note records the pro's role on the job: solo, primary or secondary.
	Note string `gorm:"type:VARCHAR(32)"`
}

type PayoutLedgerEntryList []PayoutLedgerEntry

func (p PayoutLedgerEntry) String() string {
	val, _ := json.Marshal(p)
	return string(val)
}
