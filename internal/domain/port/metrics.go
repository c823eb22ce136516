package port

import "time"

// Metrics интерфейс сбора метрик конвейера
type Metrics interface {
	ObserveAnalysis(success bool, duration time.Duration)
	ObserveInference(duration time.Duration)
	ObserveDetections(labels []string)
	PreprocessingFallback()
	GrayscaleRepaired()
	AnnotationFailed()
}
