package port

import (
	"context"

	"derma-vision/internal/domain/entity"
)

// AnalysisRepository интерфейс хранилища результатов анализа
type AnalysisRepository interface {
	// Save сохраняет результат для пользователя
	Save(ctx context.Context, userID int64, result *entity.AnalysisResult) error

	// List возвращает последние результаты пользователя, новые первыми
	List(ctx context.Context, userID int64, limit int) ([]*entity.AnalysisResult, error)
}
