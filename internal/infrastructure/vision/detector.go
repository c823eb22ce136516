package vision

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"derma-vision/internal/domain/entity"
	"derma-vision/internal/domain/port"
)

// Detector адаптер инференса: байты изображения -> отсортированный список находок.
type Detector struct {
	loader *ModelLoader
	log    *logrus.Entry
}

// NewDetector создаёт детектор поверх загрузчика модели.
func NewDetector(loader *ModelLoader, logger *logrus.Logger) *Detector {
	return &Detector{
		loader: loader,
		log:    logger.WithField("component", "detector"),
	}
}

// Predict запускает модель. Порог включительный: находка с уверенностью,
// равной порогу, остаётся. Пустой результат не считается ошибкой.
func (d *Detector) Predict(ctx context.Context, imageData []byte, threshold float64) (entity.PredictionList, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, entity.ErrInvalidThreshold
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model, err := d.loader.Get()
	if err != nil {
		return nil, err
	}

	img, err := decodeImage(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInference, err)
	}

	raw, err := model.Engine.Detect(img, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInference, err)
	}

	detections := make([]entity.Detection, 0, len(raw))
	for _, r := range raw {
		if r.Score < threshold {
			continue
		}
		detections = append(detections, entity.NewDetection(r.ClassID, model.Catalog.Label(r.ClassID), r.Score, r.Box))
	}
	list := entity.NewPredictionList(detections)

	for _, det := range list {
		d.log.WithFields(logrus.Fields{
			"label":      det.Label,
			"confidence": fmt.Sprintf("%.2f", det.Confidence),
		}).Debug("Detected")
	}
	d.log.WithField("count", len(list)).Info("Detection finished")
	return list, nil
}

// ModelInfo сведения о загруженной модели; пустые, пока модель не загружена
func (d *Detector) ModelInfo() entity.ModelInfo {
	m := d.loader.Loaded()
	if m == nil {
		return entity.ModelInfo{}
	}
	return entity.ModelInfo{
		ModelPath: m.Path,
		Backend:   m.Engine.Backend(),
		Device:    m.Engine.Device(),
	}
}

// Проверка реализации интерфейса
var _ port.SkinDetector = (*Detector)(nil)
