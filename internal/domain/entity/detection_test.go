package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectionArea(t *testing.T) {
	d := NewDetection(0, "acne", 0.9, BoundingBox{X1: 10, Y1: 10, X2: 30, Y2: 40})
	require.Equal(t, 600.0, d.Area)
	require.Equal(t, Rect{X: 10, Y: 10, Width: 20, Height: 30}, d.Rect)
}

func TestDetectionArea_Degenerate(t *testing.T) {
	d := NewDetection(0, "acne", 0.9, BoundingBox{X1: 10, Y1: 10, X2: 10, Y2: 10})
	require.Equal(t, 0.0, d.Area)
	require.Equal(t, 0.0, d.Rect.Width)
}

func TestNewBoundingBox_SwapsCorners(t *testing.T) {
	b := NewBoundingBox(30, 40, 10, 10)
	require.Equal(t, BoundingBox{X1: 10, Y1: 10, X2: 30, Y2: 40}, b)
	require.Equal(t, 600.0, b.Area())
}

func TestNewPredictionList_StableByConfidence(t *testing.T) {
	in := []Detection{
		{Label: "a", Confidence: 0.5},
		{Label: "b", Confidence: 0.9},
		{Label: "c", Confidence: 0.5},
		{Label: "d", Confidence: 0.9},
		{Label: "e", Confidence: 0.1},
	}

	list := NewPredictionList(in)

	var labels []string
	for _, d := range list {
		labels = append(labels, d.Label)
	}
	require.Equal(t, []string{"b", "d", "a", "c", "e"}, labels)
	// входной срез не меняется
	require.Equal(t, "a", in[0].Label)
}

func TestPredictionList_Labels(t *testing.T) {
	list := PredictionList{{Label: "acne"}, {Label: "normal"}, {Label: "acne"}}
	require.Equal(t, []string{"acne", "normal"}, list.Labels())
	require.Empty(t, PredictionList{}.Labels())
}

func TestClassCatalog_Label(t *testing.T) {
	c := DefaultClassCatalog()
	require.Equal(t, 10, c.Len())
	require.Equal(t, "acne", c.Label(0))
	require.Equal(t, "skin_lesion", c.Label(9))
	require.Equal(t, "class_42", c.Label(42))
}

func TestPreprocessingOptions_Default(t *testing.T) {
	o := DefaultPreprocessingOptions()
	require.True(t, o.ConvertToGrayscale)
	require.True(t, o.EnhanceContrast)
	require.True(t, o.NoiseReduction)
	require.True(t, o.NormalizeBrightness)
	require.True(t, o.Any())
	require.False(t, PreprocessingOptions{}.Any())
}
