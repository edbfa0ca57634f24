package events

// OfferEvent is emitted when an offer is created or transitions state.
type OfferEvent struct {
	JobID         string   `json:"job_id"`
	ProID         string   `json:"pro_id"`
	State         string   `json:"state"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// PayoutEvent is emitted when a ledger entry is written.
type PayoutEvent struct {
	JobID       string `json:"job_id"`
	ProID       string `json:"pro_id"`
	AmountCents int64  `json:"amount_cents"`
	Role        string `json:"role"`
	Source      string `json:"source"`
}
