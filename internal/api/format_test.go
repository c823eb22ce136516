package telegram

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"derma-vision/internal/domain/entity"
)

func TestFormatResult(t *testing.T) {
	preds := entity.NewPredictionList([]entity.Detection{
		entity.NewDetection(0, "acne", 0.91, entity.NewBoundingBox(0, 0, 1, 1)),
	})

	text := FormatResult(&entity.AnalysisResult{Success: true, Predictions: preds, ProcessingTime: 1.234})
	require.Equal(t, "🔍 Найдено:\n• акне (0.91)\n\n⏱ 1.23 с", text)

	text = FormatResult(&entity.AnalysisResult{Success: true, Predictions: entity.PredictionList{}})
	require.True(t, strings.HasPrefix(text, "✅"))

	text = FormatResult(&entity.AnalysisResult{Success: true, Description: "Результат: ok"})
	require.True(t, strings.HasPrefix(text, "🔍 Результат: ok"))
}

func TestFormatHistory(t *testing.T) {
	require.Equal(t, msgNoHistory, FormatHistory(nil))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	preds := entity.NewPredictionList([]entity.Detection{
		entity.NewDetection(0, "acne", 0.9, entity.BoundingBox{}),
		entity.NewDetection(0, "acne", 0.8, entity.BoundingBox{}),
		entity.NewDetection(1, "blackhead", 0.5, entity.BoundingBox{}),
	})
	text := FormatHistory([]*entity.AnalysisResult{
		{Success: true, Predictions: preds, CreatedAt: at},
		{Success: false, CreatedAt: at},
		{Success: true, Predictions: entity.PredictionList{}, CreatedAt: at},
	})

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "1. 01.03.2026 12:00 — найдено 3: акне, чёрные точки", lines[1])
	require.True(t, strings.HasSuffix(lines[2], "ошибка"))
	require.True(t, strings.HasSuffix(lines[3], "чисто"))
}

func TestImageFileID(t *testing.T) {
	id, ok := imageFileID(&tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}})
	require.True(t, ok)
	require.Equal(t, "large", id)

	id, ok = imageFileID(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/png"}})
	require.True(t, ok)
	require.Equal(t, "doc", id)

	_, ok = imageFileID(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "pdf", MimeType: "application/pdf"}})
	require.False(t, ok)

	_, ok = imageFileID(&tgbotapi.Message{Text: "hi"})
	require.False(t, ok)
}
