package entity

import "sort"

// BoundingBox область находки в пикселях, углы (x1,y1)-(x2,y2)
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Rect та же область в виде (x, y, ширина, высота)
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBoundingBox создаёт рамку, упорядочивая углы так, что x1<=x2 и y1<=y2.
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width ширина рамки
func (b BoundingBox) Width() float64 {
	return b.X2 - b.X1
}

// Height высота рамки
func (b BoundingBox) Height() float64 {
	return b.Y2 - b.Y1
}

// Area площадь рамки, для вырожденной рамки 0
func (b BoundingBox) Area() float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Rect возвращает рамку в представлении x/y/width/height
func (b BoundingBox) Rect() Rect {
	return Rect{X: b.X1, Y: b.Y1, Width: b.Width(), Height: b.Height()}
}

// Detection одна находка модели
type Detection struct {
	ClassID    int         `json:"class_id"`
	Label      string      `json:"class_name"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"bounding_box"`
	Rect       Rect        `json:"box"`
	Area       float64     `json:"area"`
}

// NewDetection собирает находку и заполняет производные поля.
func NewDetection(classID int, label string, confidence float64, box BoundingBox) Detection {
	box = NewBoundingBox(box.X1, box.Y1, box.X2, box.Y2)
	return Detection{
		ClassID:    classID,
		Label:      label,
		Confidence: confidence,
		Box:        box,
		Rect:       box.Rect(),
		Area:       box.Area(),
	}
}

// PredictionList находки одного вызова модели, по убыванию уверенности
type PredictionList []Detection

// NewPredictionList копирует находки и сортирует их по убыванию уверенности.
// Порядок находок с одинаковой уверенностью сохраняется.
func NewPredictionList(detections []Detection) PredictionList {
	list := make(PredictionList, len(detections))
	copy(list, detections)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Confidence > list[j].Confidence
	})
	return list
}

// Labels возвращает метки в порядке первого появления
func (p PredictionList) Labels() []string {
	seen := make(map[string]struct{}, len(p))
	labels := make([]string, 0, len(p))
	for _, d := range p {
		if _, ok := seen[d.Label]; ok {
			continue
		}
		seen[d.Label] = struct{}{}
		labels = append(labels, d.Label)
	}
	return labels
}
