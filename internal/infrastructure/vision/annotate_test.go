package vision

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-vision/internal/domain/entity"
)

func decodeAnnotated(t *testing.T, uri string) ([]byte, string) {
	t.Helper()
	data, mimeType, err := entity.DecodeDataURI(uri)
	require.NoError(t, err)
	return data, mimeType
}

func TestAnnotate_EmptyPredictions(t *testing.T) {
	a := NewAnnotator()
	src := pngBytes(t, colorfulImage(40, 30))

	uri, err := a.Annotate(src, entity.PredictionList{})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	data, mimeType := decodeAnnotated(t, uri)
	require.Equal(t, "image/jpeg", mimeType)
	require.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	img, err := decodeImage(data)
	require.NoError(t, err)
	require.Equal(t, 40, img.Bounds().Dx())
	require.Equal(t, 30, img.Bounds().Dy())
}

func TestAnnotate_DrawsBoxInLabelColor(t *testing.T) {
	a := NewAnnotator()
	a.Thickness = 8
	src := pngBytes(t, solidImage(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	preds := entity.NewPredictionList([]entity.Detection{
		entity.NewDetection(0, "acne", 0.87, entity.NewBoundingBox(20, 40, 60, 90)),
	})

	uri, err := a.Annotate(src, preds)
	require.NoError(t, err)

	data, _ := decodeAnnotated(t, uri)
	img, err := decodeImage(data)
	require.NoError(t, err)

	r, g, b, _ := img.At(23, 70).RGBA()
	require.Greater(t, r>>8, uint32(180))
	require.Less(t, g>>8, uint32(90))
	require.Less(t, b>>8, uint32(90))

	// внутри рамки фон не тронут
	r, g, b, _ = img.At(40, 70).RGBA()
	require.Greater(t, r>>8, uint32(230))
	require.Greater(t, g>>8, uint32(230))
	require.Greater(t, b>>8, uint32(230))
}

func TestAnnotate_LabelNearTopEdge(t *testing.T) {
	a := NewAnnotator()
	src := pngBytes(t, colorfulImage(60, 60))
	preds := entity.NewPredictionList([]entity.Detection{
		entity.NewDetection(9, "skin_lesion", 0.5, entity.NewBoundingBox(0, 0, 59, 59)),
		entity.NewDetection(3, "mystery", 0.4, entity.NewBoundingBox(-10, -10, 200, 200)),
	})

	uri, err := a.Annotate(src, preds)
	require.NoError(t, err)
	require.NotEmpty(t, uri)
}

func TestAnnotator_ColorFor(t *testing.T) {
	a := NewAnnotator()
	require.Equal(t, color.RGBA{R: 255, A: 255}, a.ColorFor("acne"))
	require.Equal(t, color.RGBA{G: 200, A: 255}, a.ColorFor("normal"))
	require.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, a.ColorFor("class_17"))
}

func TestAnnotate_InvalidImage(t *testing.T) {
	_, err := NewAnnotator().Annotate([]byte("garbage"), nil)
	require.ErrorIs(t, err, entity.ErrAnnotation)
}

func TestTextColorOn(t *testing.T) {
	require.Equal(t, color.RGBA{A: 255}, textColorOn(color.RGBA{R: 240, G: 240, B: 240, A: 255}))
	require.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, textColorOn(color.RGBA{R: 40, G: 40, B: 40, A: 255}))
}
