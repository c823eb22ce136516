package vision

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-vision/internal/domain/entity"
)

// syntheticOutput собирает выход [1, 4+nc, N] с заданными ячейками
func syntheticOutput(inputSize, numClasses int, cells map[int][]float32) yoloOutput {
	n := anchorCount(inputSize)
	channels := 4 + numClasses
	data := make([]float32, channels*n)
	for i, v := range cells {
		for c, value := range v {
			data[c*n+i] = value
		}
	}
	return yoloOutput{data: data, channels: channels, anchors: n, inputSize: inputSize}
}

func TestAnchorCount(t *testing.T) {
	require.Equal(t, 8400, anchorCount(640))
	require.Equal(t, 84, anchorCount(64))
}

func TestYOLODecode(t *testing.T) {
	out := syntheticOutput(64, 3, map[int][]float32{
		// xc, yc, w, h, class0, class1, class2
		0: {32, 32, 16, 16, 0, 0.9, 0},
		1: {33, 32, 16, 16, 0, 0.8, 0},  // дубль класса 1
		2: {32, 32, 16, 16, 0, 0, 0.85}, // тот же бокс, другой класс
		3: {10, 10, 4, 4, 0.25, 0, 0},   // ровно на пороге
		4: {50, 50, 4, 4, 0.2, 0, 0},    // ниже порога
	})

	dets := out.decode(128, 64, 0.25, 0.7)

	require.Len(t, dets, 3)
	require.Equal(t, 1, dets[0].ClassID)
	require.InDelta(t, 0.9, dets[0].Score, 1e-6)
	require.Equal(t, entity.BoundingBox{X1: 48, Y1: 24, X2: 80, Y2: 40}, dets[0].Box)
	require.Equal(t, 2, dets[1].ClassID)
	require.Equal(t, 0, dets[2].ClassID)
	require.Equal(t, 0.25, dets[2].Score)
}

func TestYOLODecode_ClampsToImage(t *testing.T) {
	out := syntheticOutput(64, 1, map[int][]float32{
		0: {2, 62, 10, 10, 0.6},
	})

	dets := out.decode(64, 64, 0.5, 0.7)

	require.Len(t, dets, 1)
	require.Equal(t, entity.BoundingBox{X1: 0, Y1: 57, X2: 7, Y2: 64}, dets[0].Box)
}

func TestYOLODecode_MalformedOutput(t *testing.T) {
	require.Nil(t, yoloOutput{data: make([]float32, 10), channels: 4, anchors: 2, inputSize: 64}.decode(64, 64, 0.1, 0.7))
	require.Nil(t, yoloOutput{data: make([]float32, 3), channels: 5, anchors: 2, inputSize: 64}.decode(64, 64, 0.1, 0.7))
}

func TestNonMaxSuppression(t *testing.T) {
	box := entity.NewBoundingBox(0, 0, 10, 10)
	shifted := entity.NewBoundingBox(5, 0, 15, 10)
	dets := []RawDetection{
		{ClassID: 0, Score: 0.6, Box: box},
		{ClassID: 0, Score: 0.9, Box: box},
		{ClassID: 0, Score: 0.7, Box: shifted}, // IoU 1/3, остаётся
	}

	kept := nonMaxSuppression(dets, 0.5)

	require.Len(t, kept, 2)
	require.Equal(t, 0.9, kept[0].Score)
	require.Equal(t, 0.7, kept[1].Score)
}

func TestIntersectionOverUnion(t *testing.T) {
	a := entity.NewBoundingBox(0, 0, 10, 10)
	require.InDelta(t, 1.0, intersectionOverUnion(a, a), 1e-9)
	require.InDelta(t, 1.0/3.0, intersectionOverUnion(a, entity.NewBoundingBox(5, 0, 15, 10)), 1e-9)
	require.Equal(t, 0.0, intersectionOverUnion(a, entity.NewBoundingBox(20, 20, 30, 30)))
	require.Equal(t, 0.0, intersectionOverUnion(entity.BoundingBox{}, entity.BoundingBox{}))
}

func TestImageToTensor(t *testing.T) {
	img := solidImage(8, 8, color.NRGBA{R: 255, A: 255})

	tensor := imageToTensor(img, 4)

	require.Len(t, tensor, 3*4*4)
	for i := 0; i < 16; i++ {
		require.InDelta(t, 1.0, tensor[i], 0.01)
		require.InDelta(t, 0.0, tensor[16+i], 0.01)
		require.InDelta(t, 0.0, tensor[32+i], 0.01)
	}
}
