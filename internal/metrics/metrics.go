// Package metrics exposes Prometheus counters for workflow transitions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "verifyapi"

// Workflow counts committed transitions. A nil *Workflow records nothing.
type Workflow struct {
	documentsSubmitted *prometheus.CounterVec
	documentsReviewed  *prometheus.CounterVec
	grantsRequested    *prometheus.CounterVec
	grantsDecided      *prometheus.CounterVec
	gateDenials        prometheus.Counter
}

// NewWorkflow registers the workflow counters on reg.
func NewWorkflow(reg prometheus.Registerer) (*Workflow, error) {
	w := &Workflow{
		documentsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_submitted_total",
			Help:      "Documents submitted for review, by document type.",
		}, []string{"document_type"}),
		documentsReviewed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_reviewed_total",
			Help:      "Document reviews committed, by resulting status.",
		}, []string{"status"}),
		grantsRequested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_grants_requested_total",
			Help:      "Role grants requested, by role.",
		}, []string{"role"}),
		grantsDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_grants_decided_total",
			Help:      "Role grant decisions committed, by role and status.",
		}, []string{"role", "status"}),
		gateDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_gate_denials_total",
			Help:      "FINCA approvals refused because the farm was incomplete.",
		}),
	}

	for _, c := range []prometheus.Collector{
		w.documentsSubmitted, w.documentsReviewed, w.grantsRequested, w.grantsDecided, w.gateDenials,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *Workflow) DocumentSubmitted(typeName string) {
	if w == nil {
		return
	}
	w.documentsSubmitted.WithLabelValues(typeName).Inc()
}

func (w *Workflow) DocumentReviewed(status string) {
	if w == nil {
		return
	}
	w.documentsReviewed.WithLabelValues(status).Inc()
}

func (w *Workflow) GrantRequested(role string) {
	if w == nil {
		return
	}
	w.grantsRequested.WithLabelValues(role).Inc()
}

func (w *Workflow) GrantDecided(role, status string) {
	if w == nil {
		return
	}
	w.grantsDecided.WithLabelValues(role, status).Inc()
}

func (w *Workflow) GateDenied() {
	if w == nil {
		return
	}
	w.gateDenials.Inc()
}
