package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Pro is read-only to the dispatch core; profile updates happen elsewhere.
type Pro struct {
	ID        uuid.UUID `gorm:"primaryKey;"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt *time.Time
	Name      string `gorm:"type:VARCHAR(255)"`
	HomeLat   *float64
	HomeLng   *float64
	// ServiceRadiusMiles zero means "not configured"; the matcher applies
	// the system default.
	ServiceRadiusMiles float64 `gorm:"not null;default:0"`
	MaxJobsPerDay      int     `gorm:"not null;default:0"`
	Active             bool    `gorm:"not null;default:true;index"`
}

type ProList []Pro

func (p Pro) String() string {
	val, _ := json.Marshal(p)
	return string(val)
}

// HasLocation reports whether the pro has a usable, non-zero home location.
func (p Pro) HasLocation() bool {
	return p.HomeLat != nil && p.HomeLng != nil && (*p.HomeLat != 0 || *p.HomeLng != 0)
}
