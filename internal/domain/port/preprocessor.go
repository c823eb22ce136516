package port

import "derma-vision/internal/domain/entity"

// ImagePreprocessor интерфейс подготовки изображения перед моделью
type ImagePreprocessor interface {
	// Preprocess применяет включённые шаги. При любой ошибке возвращает исходные байты и applied=false
	Preprocess(imageData []byte, opts entity.PreprocessingOptions) (out []byte, applied bool)

	// EnsureGrayscale проверяет равенство каналов и при необходимости чинит изображение
	EnsureGrayscale(imageData []byte) (out []byte, repaired bool, err error)
}
