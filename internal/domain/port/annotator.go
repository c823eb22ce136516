package port

import "derma-vision/internal/domain/entity"

// Annotator интерфейс отрисовки находок
type Annotator interface {
	// Annotate рисует рамки и возвращает изображение в виде data URI
	Annotate(imageData []byte, predictions entity.PredictionList) (string, error)
}
