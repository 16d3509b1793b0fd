package policy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tokenfee/feemap/pkg/feemap"
	"github.com/tokenfee/feemap/pkg/token"
)

// Metrics for monitoring service.
var (
	feeMapEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of tokens in the current fee map",
			Name:      "entries",
			Namespace: "feemap",
		},
	)
	feeMapUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of applied fee map updates",
			Name:      "updates_total",
			Namespace: "feemap",
		},
	)
	feeMapRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of rejected fee map updates",
			Name:      "rejected_updates_total",
			Namespace: "feemap",
		},
	)
	minimumFee = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Minimum fee by token",
			Name:      "minimum_fee",
			Namespace: "feemap",
		},
		[]string{"token"},
	)
)

func init() {
	prometheus.MustRegister(
		feeMapEntries,
		feeMapUpdates,
		feeMapRejected,
		minimumFee,
	)
}

func updateFeeMapMetrics(m *feemap.FeeMap) {
	feeMapEntries.Set(float64(m.Len()))
	minimumFee.Reset()
	m.Iterate(func(id token.ID, fee uint64) bool {
		minimumFee.WithLabelValues(token.Name(id)).Set(float64(fee))
		return true
	})
}
