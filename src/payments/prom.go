package payments

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var cycleCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pool_payment_cycles",
	Help: "settlement cycles run, labeled by outcome",
}, []string{"outcome"})

var transfersSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pool_payment_transfers_sent",
	Help: "transfer commands accepted by the wallet and settled in the ledger",
})

var transfersFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pool_payment_transfers_failed",
	Help: "transfer commands rejected or failed at the wallet",
})

var amountPaid = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pool_payment_amount_paid",
	Help: "total amount paid out, in minor units",
})

var ledgerFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pool_payment_ledger_failures",
	Help: "ledger writes that failed after the transfer succeeded; each one needs manual reconciliation",
})

func recordCycle(result CycleResult) {
	switch {
	case result.Err != nil:
		cycleCounter.WithLabelValues("error").Inc()
	case result.Skipped:
		cycleCounter.WithLabelValues("skipped").Inc()
	default:
		cycleCounter.WithLabelValues("completed").Inc()
	}
}

func recordTransferSent(amount int64) {
	transfersSent.Inc()
	amountPaid.Add(float64(amount))
}

func recordTransferFailed() {
	transfersFailed.Inc()
}

func recordLedgerFailure() {
	ledgerFailures.Inc()
}

func StartPromServer(logger *zap.Logger, port string) {
	go func() {
		logger.Info("hosting prom stats on " + port + "/metrics")
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(port, nil); err != nil {
			logger.Error("error serving prom metrics", zap.Error(err))
		}
	}()
}
