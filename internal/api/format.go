package telegram

import (
	"fmt"
	"strings"

	"derma-vision/internal/domain/entity"
	"derma-vision/internal/infrastructure/describer"
)

// FormatResult текст ответа на фото
func FormatResult(result *entity.AnalysisResult) string {
	var sb strings.Builder
	if result.Description != "" {
		sb.WriteString("🔍 ")
		sb.WriteString(result.Description)
	} else if len(result.Predictions) == 0 {
		sb.WriteString("✅ Проблем не обнаружено.")
	} else {
		sb.WriteString("🔍 Найдено:")
		for _, p := range result.Predictions {
			fmt.Fprintf(&sb, "\n• %s (%.2f)", describer.ConditionName(p.Label), p.Confidence)
		}
	}
	fmt.Fprintf(&sb, "\n\n⏱ %.2f с", result.ProcessingTime)
	return sb.String()
}

// FormatHistory список последних анализов
func FormatHistory(results []*entity.AnalysisResult) string {
	if len(results) == 0 {
		return msgNoHistory
	}

	var sb strings.Builder
	sb.WriteString("🗂 Последние анализы:")
	for i, r := range results {
		fmt.Fprintf(&sb, "\n%d. %s — ", i+1, r.CreatedAt.Local().Format("02.01.2006 15:04"))
		switch {
		case !r.Success:
			sb.WriteString("ошибка")
		case len(r.Predictions) == 0:
			sb.WriteString("чисто")
		default:
			labels := r.Predictions.Labels()
			for j, l := range labels {
				labels[j] = describer.ConditionName(l)
			}
			fmt.Fprintf(&sb, "найдено %d: %s", len(r.Predictions), strings.Join(labels, ", "))
		}
	}
	return sb.String()
}
