package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"derma-vision/internal/domain/port"
)

const namespace = "derma_vision"

// Recorder метрики конвейера анализа в prometheus
type Recorder struct {
	analyses    *prometheus.CounterVec
	duration    prometheus.Histogram
	inference   prometheus.Histogram
	detections  *prometheus.CounterVec
	fallbacks   prometheus.Counter
	repairs     prometheus.Counter
	annotations prometheus.Counter
}

// NewRecorder создаёт метрики и регистрирует их в reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Number of analyses by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis time.",
			Buckets:   prometheus.DefBuckets,
		}),
		inference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Model inference time.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Detected conditions by label.",
		}, []string{"label"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preprocessing_fallbacks_total",
			Help:      "Preprocessing failures that fell back to the original image.",
		}),
		repairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grayscale_repairs_total",
			Help:      "Images whose channels had to be equalized after preprocessing.",
		}),
		annotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotation_failures_total",
			Help:      "Annotation failures.",
		}),
	}
	reg.MustRegister(r.analyses, r.duration, r.inference, r.detections, r.fallbacks, r.repairs, r.annotations)
	return r
}

func (r *Recorder) ObserveAnalysis(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	r.analyses.WithLabelValues(status).Inc()
	r.duration.Observe(duration.Seconds())
}

func (r *Recorder) ObserveInference(duration time.Duration) {
	r.inference.Observe(duration.Seconds())
}

func (r *Recorder) ObserveDetections(labels []string) {
	for _, l := range labels {
		r.detections.WithLabelValues(l).Inc()
	}
}

func (r *Recorder) PreprocessingFallback() { r.fallbacks.Inc() }

func (r *Recorder) GrayscaleRepaired() { r.repairs.Inc() }

func (r *Recorder) AnnotationFailed() { r.annotations.Inc() }

// Nop метрики, которые никуда не пишутся
type Nop struct{}

func (Nop) ObserveAnalysis(bool, time.Duration) {}
func (Nop) ObserveInference(time.Duration)      {}
func (Nop) ObserveDetections([]string)          {}
func (Nop) PreprocessingFallback()              {}
func (Nop) GrayscaleRepaired()                  {}
func (Nop) AnnotationFailed()                   {}

// Проверка реализации интерфейса
var (
	_ port.Metrics = (*Recorder)(nil)
	_ port.Metrics = Nop{}
)
