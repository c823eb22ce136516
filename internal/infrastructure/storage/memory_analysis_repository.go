package storage

import (
	"context"
	"sync"

	"derma-vision/internal/domain/entity"
	"derma-vision/internal/domain/port"
)

// DefaultHistoryLimit сколько результатов хранится на пользователя
const DefaultHistoryLimit = 20

// MemoryAnalysisRepository in-memory история анализов, ограниченная по каждому пользователю
type MemoryAnalysisRepository struct {
	mu      sync.RWMutex
	limit   int
	results map[int64][]*entity.AnalysisResult // старые первыми
}

// NewMemoryAnalysisRepository создаёт хранилище, limit<=0 означает DefaultHistoryLimit
func NewMemoryAnalysisRepository(limit int) *MemoryAnalysisRepository {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryAnalysisRepository{
		limit:   limit,
		results: make(map[int64][]*entity.AnalysisResult),
	}
}

// Save добавляет результат; самые старые вытесняются при переполнении.
// Изображения в истории не хранятся.
func (r *MemoryAnalysisRepository) Save(ctx context.Context, userID int64, result *entity.AnalysisResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := *result
	stored.AnnotatedImage = ""
	stored.PreprocessedImage = ""

	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.results[userID], &stored)
	if len(list) > r.limit {
		list = append([]*entity.AnalysisResult(nil), list[len(list)-r.limit:]...)
	}
	r.results[userID] = list
	return nil
}

// List возвращает до limit последних результатов, новые первыми. При limit<=0 возвращаются все.
func (r *MemoryAnalysisRepository) List(ctx context.Context, userID int64, limit int) ([]*entity.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.results[userID]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]*entity.AnalysisResult, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

// Проверка реализации интерфейса
var _ port.AnalysisRepository = (*MemoryAnalysisRepository)(nil)
