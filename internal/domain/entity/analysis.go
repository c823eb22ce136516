package entity

import "time"

// OverallStatus общий вывод по снимку
type OverallStatus string

const (
	StatusClear          OverallStatus = "clear"           // Ничего не найдено
	StatusMildConcerns   OverallStatus = "mild_concerns"   // Есть находки, но не серьёзные
	StatusNeedsAttention OverallStatus = "needs_attention" // Есть серьёзные находки
)

// PreprocessingOptions шаги подготовки изображения перед моделью
type PreprocessingOptions struct {
	ConvertToGrayscale  bool `json:"convert_to_grayscale"`
	EnhanceContrast     bool `json:"enhance_contrast"`
	NoiseReduction      bool `json:"noise_reduction"`
	NormalizeBrightness bool `json:"normalize_brightness"`
}

// DefaultPreprocessingOptions включает все шаги.
func DefaultPreprocessingOptions() PreprocessingOptions {
	return PreprocessingOptions{
		ConvertToGrayscale:  true,
		EnhanceContrast:     true,
		NoiseReduction:      true,
		NormalizeBrightness: true,
	}
}

// Any сообщает, включён ли хотя бы один шаг
func (o PreprocessingOptions) Any() bool {
	return o.ConvertToGrayscale || o.EnhanceContrast || o.NoiseReduction || o.NormalizeBrightness
}

// AnalysisSummary сводка по списку находок
type AnalysisSummary struct {
	OverallStatus      OverallStatus  `json:"overall_status"`
	DetectedConditions []string       `json:"detected_conditions"`
	ConditionCounts    map[string]int `json:"condition_counts"`
	TotalDetections    int            `json:"total_detections"`
	ConfidenceAvg      float64        `json:"confidence_avg"`
	Recommendations    []string       `json:"recommendations"`
}

// ModelInfo сведения о модели и параметрах прогона
type ModelInfo struct {
	ModelPath            string  `json:"model_path"`
	Backend              string  `json:"backend,omitempty"`
	ConfidenceThreshold  float64 `json:"confidence_threshold"`
	Device               string  `json:"device"`
	PreprocessingApplied bool    `json:"preprocessing_applied"`
	GrayscaleForced      bool    `json:"grayscale_forced"`
}

// AnalysisRequest входные данные анализа
type AnalysisRequest struct {
	Image              []byte
	Threshold          float64
	ReturnAnnotated    bool
	ReturnPreprocessed bool
	IncludeSummary     bool
	Options            PreprocessingOptions
}

// AnalysisResult итог анализа. При ошибке Success=false, Predictions пуст, Error заполнен.
type AnalysisResult struct {
	ID                string           `json:"id"`
	Success           bool             `json:"success"`
	Predictions       PredictionList   `json:"predictions"`
	Summary           *AnalysisSummary `json:"summary,omitempty"`
	AnnotatedImage    string           `json:"annotated_image,omitempty"`
	PreprocessedImage string           `json:"preprocessed_image,omitempty"`
	ModelInfo         *ModelInfo       `json:"model_info,omitempty"`
	Description       string           `json:"description,omitempty"`
	Error             string           `json:"error,omitempty"`
	ProcessingTime    float64          `json:"processing_time"`
	CreatedAt         time.Time        `json:"created_at"`
}

// Description текстовое описание результата для пользователя
type Description struct {
	Text string
}
