package port

import (
	"context"

	"derma-vision/internal/domain/entity"
)

// SkinDetector интерфейс детектора состояний кожи
type SkinDetector interface {
	// Predict запускает модель и возвращает находки не ниже порога, по убыванию уверенности
	Predict(ctx context.Context, imageData []byte, threshold float64) (entity.PredictionList, error)

	// ModelInfo возвращает путь к модели, бэкенд и устройство
	ModelInfo() entity.ModelInfo
}
