package describer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"derma-vision/internal/domain/entity"
	"derma-vision/internal/domain/port"
)

var conditionNames = map[string]string{
	"acne":         "акне",
	"blackhead":    "чёрные точки",
	"dark_spot":    "пигментные пятна",
	"redness":      "покраснение",
	"normal":       "здоровая кожа",
	"whitehead":    "закрытые комедоны",
	"pimple":       "прыщи",
	"skin_blemish": "несовершенства кожи",
	"acne_scar":    "постакне",
	"skin_lesion":  "повреждения кожи",
}

var statusNames = map[entity.OverallStatus]string{
	entity.StatusClear:          "проблем не обнаружено",
	entity.StatusMildConcerns:   "есть незначительные проблемы",
	entity.StatusNeedsAttention: "требуется внимание",
}

const reportTemplate = `Результат: {{ .Status }}
{{- if .Conditions }}
Найдено: {{ .Total }} (средняя уверенность {{ printf "%.2f" .ConfidenceAvg }})
{{- range .Conditions }}
- {{ .Name }}: {{ .Count }}
{{- end }}
{{- end }}
{{- if .Recommendations }}

Рекомендации:
{{- range .Recommendations }}
• {{ . }}
{{- end }}
{{- end }}`

type condition struct {
	Name  string
	Count int
}

type reportData struct {
	Status          string
	Total           int
	ConfidenceAvg   float64
	Conditions      []condition
	Recommendations []string
}

// TemplateDescriber собирает текстовый отчёт по сводке анализа без внешних сервисов
type TemplateDescriber struct {
	tmpl *template.Template
}

// NewTemplateDescriber создаёт описатель со встроенным шаблоном
func NewTemplateDescriber() *TemplateDescriber {
	return &TemplateDescriber{
		tmpl: template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// Describe возвращает отчёт. Для неуспешного анализа возвращает ошибку.
func (d *TemplateDescriber) Describe(ctx context.Context, result *entity.AnalysisResult) (*entity.Description, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result == nil || !result.Success {
		return nil, errors.New("nothing to describe")
	}
	if result.Summary == nil {
		return nil, errors.New("analysis has no summary")
	}

	s := result.Summary
	data := reportData{
		Status:          statusName(s.OverallStatus),
		Total:           s.TotalDetections,
		ConfidenceAvg:   s.ConfidenceAvg,
		Recommendations: s.Recommendations,
	}
	for _, label := range s.DetectedConditions {
		data.Conditions = append(data.Conditions, condition{Name: ConditionName(label), Count: s.ConditionCounts[label]})
	}
	sort.SliceStable(data.Conditions, func(i, j int) bool {
		return data.Conditions[i].Count > data.Conditions[j].Count
	})

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return &entity.Description{Text: strings.TrimSpace(buf.String())}, nil
}

// ConditionName русское название метки; неизвестная метка возвращается как есть
func ConditionName(label string) string {
	if name, ok := conditionNames[label]; ok {
		return name
	}
	return strings.ReplaceAll(label, "_", " ")
}

func statusName(s entity.OverallStatus) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return string(s)
}

// Проверка реализации интерфейса
var _ port.ConditionDescriber = (*TemplateDescriber)(nil)
