package entity

import "errors"

var (
	// ErrModelNotFound файл модели не найден ни по одному из путей
	ErrModelNotFound = errors.New("model not found")

	// ErrModelUnavailable модель найдена, но не загрузилась
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPreprocessing ошибка подготовки изображения (не прерывает анализ)
	ErrPreprocessing = errors.New("preprocessing failed")

	// ErrInference ошибка вызова модели
	ErrInference = errors.New("inference failed")

	// ErrAnnotation ошибка отрисовки рамок (не прерывает анализ)
	ErrAnnotation = errors.New("annotation failed")

	// ErrInvalidThreshold порог уверенности вне [0, 1]
	ErrInvalidThreshold = errors.New("confidence threshold must be within [0, 1]")

	// ErrEmptyImage пустые данные изображения
	ErrEmptyImage = errors.New("empty image")
)
