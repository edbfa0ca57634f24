// Package v1 holds the wire types of the dispatch HTTP API.
package v1

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// OfferForm addresses one (job, pro) pair. It is the body of every offer
// lifecycle endpoint.
type OfferForm struct {
	JobID string `json:"job_id" validate:"required,resource_id"`
	ProID string `json:"pro_id" validate:"required,resource_id"`
	// DistanceMiles is an optional caller-provided distance, used only when
	// the job or pro has no coordinates to compute one from.
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

func (f *OfferForm) Bind(r *http.Request) error {
	return nil
}

type MatchReply struct {
	ProID         string   `json:"pro_id"`
	Name          string   `json:"name"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	RadiusMiles   float64  `json:"radius_miles"`
}

type MatchListReply struct {
	JobID        string       `json:"job_id"`
	Matches      []MatchReply `json:"matches"`
	TotalMatches int          `json:"total_matches"`
}

func (m MatchListReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type AssignmentReply struct {
	ID            string     `json:"id"`
	JobID         string     `json:"job_id"`
	ProID         string     `json:"pro_id"`
	State         string     `json:"state"`
	DistanceMiles *float64   `json:"distance_miles,omitempty"`
	OfferedAt     time.Time  `json:"offered_at"`
	AcceptedAt    *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt    *time.Time `json:"declined_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func (a AssignmentReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type SlotReply struct {
	Date           string `json:"date"`
	TimeSlot       string `json:"time_slot"`
	Available      bool   `json:"available"`
	SpotsRemaining int    `json:"spots_remaining"`
	ProsConsidered int    `json:"pros_considered"`
	Mode           string `json:"mode"`
}

type AvailabilityReply struct {
	Slots []SlotReply `json:"available_slots"`
}

func (a AvailabilityReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type BackfillReply struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

func (b BackfillReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type HealthReply struct {
	Status string `json:"status"`
}

func (h HealthReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ErrorReply carries the failure message and the request id so a caller can
// reference the exact request when reporting a problem.
type ErrorReply struct {
	Message   string  `json:"message"`
	RequestID *string `json:"request_id,omitempty"`

	status int
}

func NewErrorReply(status int, message string, requestID *string) ErrorReply {
	return ErrorReply{Message: message, RequestID: requestID, status: status}
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.status)
	return nil
}
