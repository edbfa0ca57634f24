package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/fieldhq/dispatch-engine/internal/store"
)

type dispatchStatsCollector struct {
	store              store.Store
	jobsByStatus       *prometheus.Desc
	openOffers         *prometheus.Desc
	activePros         *prometheus.Desc
	pendingPayoutCents *prometheus.Desc
}

func newDispatchStatsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_%s", dispatchSubsystem, name)
	}

	return &dispatchStatsCollector{
		store: s,
		jobsByStatus: prometheus.NewDesc(
			fqName("jobs_total"),
			"Total number of jobs partitioned by status.",
			[]string{"status"},
			prometheus.Labels{},
		),
		openOffers: prometheus.NewDesc(
			fqName("open_offers"),
			"Number of assignments currently in the offered state.",
			nil,
			prometheus.Labels{},
		),
		activePros: prometheus.NewDesc(
			fqName("active_pros"),
			"Number of active pros.",
			nil,
			prometheus.Labels{},
		),
		pendingPayoutCents: prometheus.NewDesc(
			fqName("pending_payout_cents"),
			"Sum of pending payout ledger amounts in cents.",
			nil,
			prometheus.Labels{},
		),
	}
}

func (c *dispatchStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.jobsByStatus
	ch <- c.openOffers
	ch <- c.activePros
	ch <- c.pendingPayoutCents
}

// Collect implements Collector.
func (c *dispatchStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.store.Statistics(context.Background())
	if err != nil {
		zap.S().Named("dispatch_collector").Errorf("failed to collect dispatch statistics: %s", err)
		return
	}

	for status, total := range stats.JobsByStatus {
		ch <- prometheus.MustNewConstMetric(c.jobsByStatus, prometheus.GaugeValue, float64(total), status)
	}
	ch <- prometheus.MustNewConstMetric(c.openOffers, prometheus.GaugeValue, float64(stats.OpenOffers))
	ch <- prometheus.MustNewConstMetric(c.activePros, prometheus.GaugeValue, float64(stats.ActivePros))
	ch <- prometheus.MustNewConstMetric(c.pendingPayoutCents, prometheus.GaugeValue, float64(stats.PendingPayoutCents))
}

func RegisterDispatchStatsCollector(s store.Store) {
	prometheus.MustRegister(newDispatchStatsCollector(s))
}
