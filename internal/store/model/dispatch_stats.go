package model

// DispatchStats feeds the prometheus dispatch collector.
type DispatchStats struct {
	JobsByStatus       map[string]int64
	OpenOffers         int64
	ActivePros         int64
	PendingPayoutCents int64
}
