package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the deletion governance core.
type Metrics struct {
	SoftDeletes        *prometheus.CounterVec
	HardDeletes        *prometheus.CounterVec
	DeniedAttempts     prometheus.Counter
	ApprovalsRequested prometheus.Counter
	ApprovalsDecided   *prometheus.CounterVec
	SnapshotsCaptured  prometheus.Counter
	AuditWriteFailures prometheus.Counter
}

// New creates and registers all deletion metrics.
func New() *Metrics {
	return &Metrics{
		SoftDeletes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rhelloflow_soft_deletes_total",
			Help: "Total soft deletes performed, by resource type",
		}, []string{"resource_type"}),
		HardDeletes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rhelloflow_hard_deletes_total",
			Help: "Total hard deletes performed, by resource type",
		}, []string{"resource_type"}),
		DeniedAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rhelloflow_delete_attempts_denied_total",
			Help: "Total deletion attempts denied for missing admin capability",
		}),
		ApprovalsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rhelloflow_deletion_approvals_requested_total",
			Help: "Total deletion approvals requested",
		}),
		ApprovalsDecided: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rhelloflow_deletion_approvals_decided_total",
			Help: "Total deletion approvals decided, by outcome",
		}, []string{"decision"}),
		SnapshotsCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rhelloflow_resource_snapshots_captured_total",
			Help: "Total pre-mutation snapshots captured",
		}),
		AuditWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rhelloflow_audit_write_failures_total",
			Help: "Total audit events that could not be persisted",
		}),
	}
}
