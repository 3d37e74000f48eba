package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow(t *testing.T) {
	reg := prometheus.NewRegistry()
	w, err := NewWorkflow(reg)
	require.NoError(t, err)

	w.DocumentSubmitted("RUT")
	w.DocumentSubmitted("RUT")
	w.DocumentReviewed("REJECTED")
	w.GrantRequested("FINCA")
	w.GrantDecided("FINCA", "APPROVED")
	w.GateDenied()

	assert.Equal(t, 2.0, testutil.ToFloat64(w.documentsSubmitted.WithLabelValues("RUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.documentsReviewed.WithLabelValues("REJECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.grantsRequested.WithLabelValues("FINCA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.grantsDecided.WithLabelValues("FINCA", "APPROVED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(w.gateDenials))

	_, err = NewWorkflow(reg)
	assert.Error(t, err, "second registration on the same registry must fail")
}

func TestWorkflow_NilIsSafe(t *testing.T) {
	var w *Workflow
	assert.NotPanics(t, func() {
		w.DocumentSubmitted("x")
		w.DocumentReviewed("APPROVED")
		w.GrantRequested("ADMIN")
		w.GrantDecided("ADMIN", "REJECTED")
		w.GateDenied()
	})
}
