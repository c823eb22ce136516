package vision

import (
	"image"
	"sort"

	"github.com/nfnt/resize"

	"derma-vision/internal/domain/entity"
)

const (
	// DefaultInputSize сторона квадратного входа модели
	DefaultInputSize = 640
	// DefaultIOUThreshold порог перекрытия для подавления дублей
	DefaultIOUThreshold = 0.7
)

// RawDetection находка в том виде, как её отдаёт движок
type RawDetection struct {
	ClassID int
	Score   float64
	Box     entity.BoundingBox
}

// imageToTensor растягивает изображение до size×size и раскладывает в CHW float32 [0,1].
func imageToTensor(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
	b := resized.Bounds()
	stride := size * size
	input := make([]float32, 3*stride)
	idx := 0
	for y := b.Min.Y; y < b.Min.Y+size; y++ {
		for x := b.Min.X; x < b.Min.X+size; x++ {
			r, g, bl, _ := resized.At(x, y).RGBA()
			input[idx] = float32(r>>8) / 255.0
			input[idx+stride] = float32(g>>8) / 255.0
			input[idx+2*stride] = float32(bl>>8) / 255.0
			idx++
		}
	}
	return input
}

// anchorCount количество ячеек трёх голов YOLOv8 (шаги 8, 16, 32)
func anchorCount(inputSize int) int {
	n := 0
	for _, s := range []int{8, 16, 32} {
		side := inputSize / s
		n += side * side
	}
	return n
}

// yoloOutput выход вида [1, 4+nc, N]: сначала xc, yc, w, h, затем оценки классов
type yoloOutput struct {
	data      []float32
	channels  int
	anchors   int
	inputSize int
}

// decode отбирает ячейки не ниже порога, переводит рамки в пиксели исходного
// изображения и подавляет дубли внутри класса.
func (o yoloOutput) decode(imgW, imgH int, threshold, iou float64) []RawDetection {
	numClasses := o.channels - 4
	if numClasses <= 0 || o.anchors <= 0 || len(o.data) < o.channels*o.anchors {
		return nil
	}
	sx := float64(imgW) / float64(o.inputSize)
	sy := float64(imgH) / float64(o.inputSize)
	n := o.anchors

	var candidates []RawDetection
	for i := 0; i < n; i++ {
		classID, best := 0, float32(-1)
		for c := 0; c < numClasses; c++ {
			if v := o.data[(4+c)*n+i]; v > best {
				best, classID = v, c
			}
		}
		score := float64(best)
		if score < threshold {
			continue
		}
		xc, yc := float64(o.data[i]), float64(o.data[n+i])
		w, h := float64(o.data[2*n+i]), float64(o.data[3*n+i])
		box := entity.NewBoundingBox(
			clampF((xc-w/2)*sx, 0, float64(imgW)),
			clampF((yc-h/2)*sy, 0, float64(imgH)),
			clampF((xc+w/2)*sx, 0, float64(imgW)),
			clampF((yc+h/2)*sy, 0, float64(imgH)),
		)
		candidates = append(candidates, RawDetection{ClassID: classID, Score: score, Box: box})
	}
	return nonMaxSuppression(candidates, iou)
}

// nonMaxSuppression оставляет рамку с наибольшей уверенностью среди перекрывающихся рамок одного класса.
func nonMaxSuppression(dets []RawDetection, iou float64) []RawDetection {
	sorted := make([]RawDetection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	suppressed := make([]bool, len(sorted))
	kept := make([]RawDetection, 0, len(sorted))
	for i := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, sorted[i])
		for j := i + 1; j < len(sorted); j++ {
			if suppressed[j] || sorted[j].ClassID != sorted[i].ClassID {
				continue
			}
			if intersectionOverUnion(sorted[i].Box, sorted[j].Box) > iou {
				suppressed[j] = true
			}
		}
	}
	return kept
}

func intersectionOverUnion(a, b entity.BoundingBox) float64 {
	inter := entity.NewBoundingBox(
		maxF(a.X1, b.X1), maxF(a.Y1, b.Y1),
		minF(a.X2, b.X2), minF(a.Y2, b.Y2),
	)
	if a.X2 < b.X1 || b.X2 < a.X1 || a.Y2 < b.Y1 || b.Y2 < a.Y1 {
		return 0
	}
	union := a.Area() + b.Area() - inter.Area()
	if union <= 0 {
		return 0
	}
	return inter.Area() / union
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
