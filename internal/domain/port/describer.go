package port

import (
	"context"

	"derma-vision/internal/domain/entity"
)

// ConditionDescriber интерфейс описателя результата анализа
type ConditionDescriber interface {
	// Describe генерирует текстовое описание найденных состояний
	Describe(ctx context.Context, result *entity.AnalysisResult) (*entity.Description, error)
}
