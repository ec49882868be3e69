package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	billsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpay_bills_created_total",
		Help: "Number of bills created.",
	})
	paymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpay_payments_recorded_total",
		Help: "Number of payments recorded against participant shares.",
	})
	withdrawals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitpay_withdrawals_total",
		Help: "Number of successful bill withdrawals.",
	})
)
