package describer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-vision/internal/domain/entity"
)

func TestTemplateDescriber_Findings(t *testing.T) {
	d := NewTemplateDescriber()
	result := &entity.AnalysisResult{
		Success: true,
		Summary: &entity.AnalysisSummary{
			OverallStatus:      entity.StatusNeedsAttention,
			DetectedConditions: []string{"normal", "acne"},
			ConditionCounts:    map[string]int{"normal": 1, "acne": 2},
			TotalDetections:    3,
			ConfidenceAvg:      0.7,
			Recommendations:    []string{"Wash twice daily"},
		},
	}

	desc, err := d.Describe(context.Background(), result)
	require.NoError(t, err)

	want := "Результат: требуется внимание\n" +
		"Найдено: 3 (средняя уверенность 0.70)\n" +
		"- акне: 2\n" +
		"- здоровая кожа: 1\n" +
		"\n" +
		"Рекомендации:\n" +
		"• Wash twice daily"
	require.Equal(t, want, desc.Text)
}

func TestTemplateDescriber_Clear(t *testing.T) {
	d := NewTemplateDescriber()
	result := &entity.AnalysisResult{
		Success: true,
		Summary: &entity.AnalysisSummary{
			OverallStatus:   entity.StatusClear,
			ConditionCounts: map[string]int{},
			Recommendations: []string{"Keep it up"},
		},
	}

	desc, err := d.Describe(context.Background(), result)
	require.NoError(t, err)
	require.Equal(t, "Результат: проблем не обнаружено\n\nРекомендации:\n• Keep it up", desc.Text)
}

func TestTemplateDescriber_Errors(t *testing.T) {
	d := NewTemplateDescriber()
	ctx := context.Background()

	_, err := d.Describe(ctx, &entity.AnalysisResult{Success: false, Error: "boom"})
	require.Error(t, err)

	_, err = d.Describe(ctx, &entity.AnalysisResult{Success: true})
	require.Error(t, err)
}

func TestConditionName(t *testing.T) {
	require.Equal(t, "акне", ConditionName("acne"))
	require.Equal(t, "class 12", ConditionName("class_12"))
}
