package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokenOperationsTotal counts token operations by kind and outcome
	TokenOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_token_operations_total",
			Help: "Total number of token operations",
		},
		[]string{"operation", "status"},
	)

	// ChainCallDuration tracks chain collaborator call time
	ChainCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_chain_call_duration_seconds",
			Help:    "Chain RPC call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// TransactionsLogged counts ledger rows written by status
	TransactionsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_logged_total",
			Help: "Total number of transaction log rows written",
		},
		[]string{"status"},
	)

	// StatusTransitions counts ledger status transitions
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_status_transitions_total",
			Help: "Total number of transaction status transitions",
		},
		[]string{"to_status"},
	)

	// PaymentStepsTotal counts payment saga steps by kind and outcome
	PaymentStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_payment_steps_total",
			Help: "Total number of payment saga steps executed",
		},
		[]string{"kind", "status"},
	)

	// PaymentIntentsTotal counts finished payment intents by terminal status
	PaymentIntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_payment_intents_total",
			Help: "Total number of payment intents by terminal status",
		},
		[]string{"status"},
	)

	// CommissionFailures counts commission transfers that failed after the
	// artist transfer succeeded. These need operator attention.
	CommissionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_commission_failures_total",
			Help: "Total number of failed commission transfers needing attention",
		},
	)

	// MetadataCacheHits counts token metadata cache hits and misses
	MetadataCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_metadata_cache_total",
			Help: "Token metadata cache lookups",
		},
		[]string{"result"},
	)

	// PendingTransactions tracks the number of pending ledger rows seen by
	// the confirmation poller on its last sweep
	PendingTransactions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_pending_transactions",
			Help: "Number of pending transactions awaiting confirmation",
		},
	)

	// WalletVerifications counts wallet signature verifications by network and outcome
	WalletVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_wallet_verifications_total",
			Help: "Total number of wallet signature verifications",
		},
		[]string{"network", "status"},
	)

	// ErrorsTotal counts errors by component and type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
