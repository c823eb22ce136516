package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveAnalysis(true, 120*time.Millisecond)
	r.ObserveAnalysis(true, 80*time.Millisecond)
	r.ObserveAnalysis(false, time.Millisecond)
	r.ObserveInference(50 * time.Millisecond)
	r.ObserveDetections([]string{"acne", "acne", "normal"})
	r.PreprocessingFallback()
	r.GrayscaleRepaired()
	r.GrayscaleRepaired()
	r.AnnotationFailed()

	require.Equal(t, 2.0, testutil.ToFloat64(r.analyses.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.analyses.WithLabelValues("error")))
	require.Equal(t, 2.0, testutil.ToFloat64(r.detections.WithLabelValues("acne")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.detections.WithLabelValues("normal")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks))
	require.Equal(t, 2.0, testutil.ToFloat64(r.repairs))
	require.Equal(t, 1.0, testutil.ToFloat64(r.annotations))

	count, err := testutil.GatherAndCount(reg, "derma_vision_analysis_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRecorder_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	require.Panics(t, func() { NewRecorder(reg) })
}
