package app

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"derma-vision/internal/domain/entity"
	"derma-vision/internal/domain/policy"
	"derma-vision/internal/domain/port"
)

// DefaultConfidenceThreshold порог, если пользователь не задал свой
const DefaultConfidenceThreshold = 0.25

// AnalysisDeps зависимости сервиса анализа. Describer, History и Metrics необязательны.
type AnalysisDeps struct {
	Preprocessor port.ImagePreprocessor
	Detector     port.SkinDetector
	Annotator    port.Annotator
	Policy       policy.Policy
	Describer    port.ConditionDescriber
	History      port.AnalysisRepository
	Metrics      port.Metrics
	Logger       *logrus.Logger
}

// AnalysisService конвейер: подготовка -> проверка серого -> модель -> сводка -> разметка
type AnalysisService struct {
	preprocessor port.ImagePreprocessor
	detector     port.SkinDetector
	annotator    port.Annotator
	policy       policy.Policy
	describer    port.ConditionDescriber
	history      port.AnalysisRepository
	metrics      port.Metrics
	log          *logrus.Entry
	now          func() time.Time
}

// NewAnalysisService создаёт сервис анализа снимков.
func NewAnalysisService(deps AnalysisDeps) *AnalysisService {
	m := deps.Metrics
	if m == nil {
		m = noMetrics{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AnalysisService{
		preprocessor: deps.Preprocessor,
		detector:     deps.Detector,
		annotator:    deps.Annotator,
		policy:       deps.Policy,
		describer:    deps.Describer,
		history:      deps.History,
		metrics:      m,
		log:          logger.WithField("component", "analysis"),
		now:          time.Now,
	}
}

// Analyze прогоняет снимок через конвейер. Ошибка никогда не возвращается
// наружу: при сбое результат содержит Success=false и текст ошибки.
func (s *AnalysisService) Analyze(ctx context.Context, req entity.AnalysisRequest) (result *entity.AnalysisResult) {
	started := s.now()
	result = &entity.AnalysisResult{
		ID:          uuid.NewString(),
		Predictions: entity.PredictionList{},
		CreatedAt:   started.UTC(),
		ModelInfo: &entity.ModelInfo{
			ConfidenceThreshold: req.Threshold,
		},
	}
	log := s.log.WithField("analysis_id", result.ID)

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Analysis panicked")
			s.fail(result, fmt.Errorf("internal error: %v", r))
		}
		elapsed := s.now().Sub(started)
		result.ProcessingTime = math.Round(elapsed.Seconds()*1000) / 1000
		s.metrics.ObserveAnalysis(result.Success, elapsed)
	}()

	if err := validate(req); err != nil {
		log.WithError(err).Warn("Rejected analysis request")
		s.fail(result, err)
		return result
	}

	imageData, applied, grayscale := s.prepare(log, req)
	result.ModelInfo.PreprocessingApplied = applied
	result.ModelInfo.GrayscaleForced = grayscale

	inferenceStarted := s.now()
	predictions, err := s.detector.Predict(ctx, imageData, req.Threshold)
	s.metrics.ObserveInference(s.now().Sub(inferenceStarted))
	s.fillModelInfo(result.ModelInfo)
	if err != nil {
		log.WithError(err).Error("Inference failed")
		s.fail(result, err)
		return result
	}

	result.Success = true
	result.Predictions = predictions
	labels := make([]string, len(predictions))
	for i, p := range predictions {
		labels[i] = p.Label
	}
	s.metrics.ObserveDetections(labels)

	if req.IncludeSummary {
		summary := s.policy.Summarize(predictions)
		result.Summary = &summary
	}

	if req.ReturnAnnotated && len(predictions) > 0 {
		uri, err := s.annotator.Annotate(req.Image, predictions)
		if err != nil {
			log.WithError(err).Warn("Annotation failed, image omitted")
			s.metrics.AnnotationFailed()
		} else {
			result.AnnotatedImage = uri
		}
	}

	if req.ReturnPreprocessed {
		result.PreprocessedImage = entity.EncodeDataURI(imageData, imageMIME(imageData))
	}

	s.describe(ctx, log, result)

	log.WithFields(logrus.Fields{
		"detections":    len(predictions),
		"preprocessed":  applied,
		"grayscale":     grayscale,
		"threshold":     req.Threshold,
		"model_backend": result.ModelInfo.Backend,
	}).Info("Analysis finished")
	return result
}

// AnalyzeForUser выполняет анализ и сохраняет результат в историю пользователя.
func (s *AnalysisService) AnalyzeForUser(ctx context.Context, userID int64, req entity.AnalysisRequest) *entity.AnalysisResult {
	result := s.Analyze(ctx, req)
	if s.history != nil {
		if err := s.history.Save(ctx, userID, result); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("Failed to save analysis history")
		}
	}
	return result
}

// History последние анализы пользователя, новые первыми.
func (s *AnalysisService) History(ctx context.Context, userID int64, limit int) ([]*entity.AnalysisResult, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, userID, limit)
}

// prepare возвращает байты для модели и флаги применённой подготовки
func (s *AnalysisService) prepare(log *logrus.Entry, req entity.AnalysisRequest) ([]byte, bool, bool) {
	data := req.Image
	applied := false
	if req.Options.Any() {
		data, applied = s.preprocessor.Preprocess(req.Image, req.Options)
		if !applied {
			log.Warn("Preprocessing failed, using original image")
			s.metrics.PreprocessingFallback()
		}
	}

	if !req.Options.ConvertToGrayscale {
		return data, applied, false
	}

	gray, repaired, err := s.preprocessor.EnsureGrayscale(data)
	if err != nil {
		log.WithError(err).Warn("Grayscale verification failed, using image as is")
		return data, applied, false
	}
	if repaired {
		log.Warn("Image was not grayscale before inference, forced conversion")
		s.metrics.GrayscaleRepaired()
	}
	return gray, applied, true
}

func (s *AnalysisService) fillModelInfo(info *entity.ModelInfo) {
	m := s.detector.ModelInfo()
	info.ModelPath = m.ModelPath
	info.Backend = m.Backend
	info.Device = m.Device
}

func (s *AnalysisService) describe(ctx context.Context, log *logrus.Entry, result *entity.AnalysisResult) {
	if s.describer == nil || result.Summary == nil {
		return
	}
	desc, err := s.describer.Describe(ctx, result)
	if err != nil {
		log.WithError(err).Warn("Failed to describe analysis")
		return
	}
	result.Description = desc.Text
}

func (s *AnalysisService) fail(result *entity.AnalysisResult, err error) {
	result.Success = false
	result.Predictions = entity.PredictionList{}
	result.Summary = nil
	result.AnnotatedImage = ""
	result.PreprocessedImage = ""
	result.Description = ""
	result.Error = err.Error()
}

func validate(req entity.AnalysisRequest) error {
	if len(req.Image) == 0 {
		return entity.ErrEmptyImage
	}
	if math.IsNaN(req.Threshold) || req.Threshold < 0 || req.Threshold > 1 {
		return fmt.Errorf("%w: %v", entity.ErrInvalidThreshold, req.Threshold)
	}
	return nil
}

// imageMIME тип изображения по сигнатуре байтов
func imageMIME(data []byte) string {
	mimeType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return mimeType
}

type noMetrics struct{}

func (noMetrics) ObserveAnalysis(bool, time.Duration) {}
func (noMetrics) ObserveInference(time.Duration)      {}
func (noMetrics) ObserveDetections([]string)          {}
func (noMetrics) PreprocessingFallback()              {}
func (noMetrics) GrayscaleRepaired()                  {}
func (noMetrics) AnnotationFailed()                   {}
