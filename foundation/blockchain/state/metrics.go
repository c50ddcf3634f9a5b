package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are shared by every ledger in the process.
var metrics = struct {
	accepted  prometheus.Counter
	rejected  *prometheus.CounterVec
	maxHeight prometheus.Gauge
	retained  prometheus.Gauge
	pending   prometheus.Gauge
}{
	accepted: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "state",
		Name:      "blocks_accepted_total",
		Help:      "Number of blocks accepted by the ledger",
	}),
	rejected: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "state",
		Name:      "blocks_rejected_total",
		Help:      "Number of blocks rejected by the ledger",
	}, []string{"reason"}),
	maxHeight: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "utxochain",
		Subsystem: "state",
		Name:      "max_height",
		Help:      "Height of the best chain",
	}),
	retained: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "utxochain",
		Subsystem: "state",
		Name:      "blocks_retained",
		Help:      "Number of blocks still tracked",
	}),
	pending: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "utxochain",
		Subsystem: "state",
		Name:      "transactions_pending",
		Help:      "Number of transactions in the mempool",
	}),
}
