// Package policy сводит находки модели в итог с рекомендациями.
//
// Набор «серьёзных» меток и таблица рекомендаций являются данными политики, а не
// логика конвейера: их можно заменить, не трогая остальной код.
package policy

import (
	"math"

	"derma-vision/internal/domain/entity"
)

// Rule рекомендации, которые выдаются при наличии метки
type Rule struct {
	Label           string
	Recommendations []string
}

// Policy правила построения сводки
type Policy struct {
	// SeriousLabels переводят статус в needs_attention
	SeriousLabels []string
	// Rules проверяются по порядку, сработавшие рекомендации склеиваются
	Rules []Rule
	// ClearRecommendations для снимка без находок
	ClearRecommendations []string
	// NoRuleRecommendations если находки есть, но ни одно правило не сработало
	NoRuleRecommendations []string
	// GeneralRecommendations добавляются в конец всегда, кроме чистого снимка
	GeneralRecommendations []string
}

// Default политика по умолчанию.
func Default() Policy {
	return Policy{
		SeriousLabels: []string{"acne", "redness", "dark_spot"},
		Rules: []Rule{
			{
				Label: "acne",
				Recommendations: []string{
					"Consider using salicylic acid or benzoyl peroxide products for acne treatment.",
					"Maintain a consistent cleansing routine with gentle, non-comedogenic products.",
				},
			},
			{
				Label: "blackhead",
				Recommendations: []string{
					"Use BHA (beta hydroxy acid) products to help unclog pores.",
					"Consider regular exfoliation with gentle chemical exfoliants.",
				},
			},
			{
				Label: "dark_spot",
				Recommendations: []string{
					"Apply vitamin C serum in the morning for dark spot treatment.",
					"Use retinol products at night to promote skin cell turnover.",
					"Always apply SPF 30+ sunscreen to prevent further dark spots.",
				},
			},
			{
				Label: "redness",
				Recommendations: []string{
					"Use products with niacinamide to reduce redness and inflammation.",
					"Avoid harsh scrubs and opt for gentle, fragrance-free products.",
					"Consider products with centella asiatica or aloe vera for soothing effects.",
				},
			},
		},
		ClearRecommendations: []string{
			"Your skin appears clear! Keep up with your current skincare routine.",
		},
		NoRuleRecommendations: []string{
			"Your skin looks great! Maintain your current routine.",
			"Don't forget daily SPF protection.",
		},
		GeneralRecommendations: []string{
			"Stay hydrated and maintain a healthy diet for optimal skin health.",
			"If concerns persist, consider consulting a dermatologist.",
		},
	}
}

// Summarize строит сводку по списку находок.
func (p Policy) Summarize(predictions entity.PredictionList) entity.AnalysisSummary {
	if len(predictions) == 0 {
		return entity.AnalysisSummary{
			OverallStatus:      entity.StatusClear,
			DetectedConditions: []string{},
			ConditionCounts:    map[string]int{},
			TotalDetections:    0,
			ConfidenceAvg:      0.0,
			Recommendations:    p.clearRecommendations(),
		}
	}

	counts := make(map[string]int)
	var total float64
	for _, d := range predictions {
		counts[d.Label]++
		total += d.Confidence
	}

	status := entity.StatusMildConcerns
	if p.hasSerious(counts) {
		status = entity.StatusNeedsAttention
	}

	return entity.AnalysisSummary{
		OverallStatus:      status,
		DetectedConditions: predictions.Labels(),
		ConditionCounts:    counts,
		TotalDetections:    len(predictions),
		ConfidenceAvg:      averageConfidence(total, len(predictions)),
		Recommendations:    p.recommend(counts),
	}
}

func (p Policy) hasSerious(counts map[string]int) bool {
	for _, label := range p.SeriousLabels {
		if counts[label] > 0 {
			return true
		}
	}
	return false
}

func (p Policy) recommend(counts map[string]int) []string {
	var out []string
	for _, rule := range p.Rules {
		if counts[rule.Label] > 0 {
			out = append(out, rule.Recommendations...)
		}
	}
	if len(out) == 0 {
		out = append(out, p.NoRuleRecommendations...)
	}
	out = append(out, p.GeneralRecommendations...)
	if len(out) == 0 {
		// пустая политика не должна давать пустой список
		out = append(out, Default().GeneralRecommendations...)
	}
	return out
}

func (p Policy) clearRecommendations() []string {
	out := append([]string(nil), p.ClearRecommendations...)
	if len(out) == 0 {
		out = append(out, Default().ClearRecommendations...)
	}
	return out
}

// averageConfidence среднее, округлённое до трёх знаков; для непустого списка не меньше 0.001
func averageConfidence(total float64, n int) float64 {
	avg := round3(total / float64(n))
	if avg == 0 {
		return 0.001
	}
	return avg
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
