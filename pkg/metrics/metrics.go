package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	dispatchSubsystem = "dispatch_engine"

	offersSentTotal       = "offers_sent_total"
	offerConflictsTotal   = "offer_conflicts_total"
	acceptsTotal          = "accepts_total"
	declinesTotal         = "declines_total"
	completionsTotal      = "completions_total"
	ledgerEntriesTotal    = "ledger_entries_total"
	notifyFailuresTotal   = "notify_failures_total"
	availabilityModeTotal = "availability_mode_total"

	// Labels
	ledgerRoleLabel = "role"
	modeLabel       = "mode"
)

var offersSentTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: dispatchSubsystem,
		Name:      offersSentTotal,
		Help:      "number of offers sent to pros",
	},
)

var offerConflictsTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: dispatchSubsystem,
		Name:      offerConflictsTotal,
		Help:      "number of duplicate offer attempts rejected",
	},
)

var acceptsTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: dispatchSubsystem,
		Name:      acceptsTotal,
		Help:      "number of accepted offers",
	},
)

var declinesTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: dispatchSubsystem,
		Name:      declinesTotal,
		Help:      "number of declined offers",
	},
)

var completionsTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: dispatchSubsystem,
		Name:      completionsTotal,
		Help:      "number of completed assignments",
	},
)

var ledgerEntriesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: dispatchSubsystem,
		Name:      ledgerEntriesTotal,
		Help:      "number of payout ledger entries written, partitioned by pro role",
	},
	[]string{ledgerRoleLabel},
)

var notifyFailuresTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: dispatchSubsystem,
		Name:      notifyFailuresTotal,
		Help:      "number of failed notification collaborator calls",
	},
)

var availabilityModeTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: dispatchSubsystem,
		Name:      availabilityModeTotal,
		Help:      "availability computations partitioned by capacity mode",
	},
	[]string{modeLabel},
)

func IncreaseOffersSentMetric()     { offersSentTotalMetric.Inc() }
func IncreaseOfferConflictsMetric() { offerConflictsTotalMetric.Inc() }
func IncreaseAcceptsMetric()        { acceptsTotalMetric.Inc() }
func IncreaseDeclinesMetric()       { declinesTotalMetric.Inc() }
func IncreaseCompletionsMetric()    { completionsTotalMetric.Inc() }

func IncreaseLedgerEntriesMetric(role string) {
	ledgerEntriesTotalMetric.With(prometheus.Labels{ledgerRoleLabel: role}).Inc()
}

func IncreaseNotifyFailuresMetric() { notifyFailuresTotalMetric.Inc() }

func IncreaseAvailabilityModeMetric(mode string) {
	availabilityModeTotalMetric.With(prometheus.Labels{modeLabel: mode}).Inc()
}

func init() {
	prometheus.MustRegister(
		offersSentTotalMetric,
		offerConflictsTotalMetric,
		acceptsTotalMetric,
		declinesTotalMetric,
		completionsTotalMetric,
		ledgerEntriesTotalMetric,
		notifyFailuresTotalMetric,
		availabilityModeTotalMetric,
	)
}
