package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"derma-vision/internal/domain/entity"
	"derma-vision/internal/domain/port"
)

// DefaultPalette цвета рамок по меткам
func DefaultPalette() map[string]color.RGBA {
	return map[string]color.RGBA{
		"acne":         {R: 255, A: 255},
		"blackhead":    {R: 40, G: 40, B: 40, A: 255},
		"dark_spot":    {R: 139, G: 69, B: 19, A: 255},
		"redness":      {R: 255, G: 105, B: 180, A: 255},
		"normal":       {G: 200, A: 255},
		"whitehead":    {R: 240, G: 240, B: 240, A: 255},
		"pimple":       {R: 255, G: 140, A: 255},
		"skin_blemish": {R: 148, B: 211, A: 255},
		"acne_scar":    {R: 128, A: 255},
		"skin_lesion":  {B: 255, A: 255},
	}
}

// Annotator рисует рамки находок с подписями
type Annotator struct {
	Palette   map[string]color.RGBA
	Fallback  color.RGBA
	Thickness int
	Quality   int
	face      font.Face
}

// NewAnnotator создаёт разметчик с палитрой по умолчанию.
func NewAnnotator() *Annotator {
	return &Annotator{
		Palette:   DefaultPalette(),
		Fallback:  color.RGBA{R: 128, G: 128, B: 128, A: 255},
		Thickness: 2,
		Quality:   JPEGQuality,
		face:      basicfont.Face7x13,
	}
}

// Annotate рисует рамки и возвращает JPEG в виде data URI.
// Для пустого списка возвращается исходное изображение без рамок.
func (a *Annotator) Annotate(imageData []byte, predictions entity.PredictionList) (uri string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", entity.ErrAnnotation, r)
		}
	}()

	img, err := decodeImage(imageData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrAnnotation, err)
	}
	canvas := imaging.Clone(img)

	for _, p := range predictions {
		a.drawDetection(canvas, p)
	}

	encoded, err := encodeJPEG(canvas, a.Quality)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrAnnotation, err)
	}
	return entity.EncodeDataURI(encoded, "image/jpeg"), nil
}

// ColorFor цвет рамки для метки
func (a *Annotator) ColorFor(label string) color.RGBA {
	if c, ok := a.Palette[label]; ok {
		return c
	}
	return a.Fallback
}

func (a *Annotator) drawDetection(dst *image.NRGBA, d entity.Detection) {
	c := a.ColorFor(d.Label)
	rect := image.Rect(
		int(math.Round(d.Box.X1)), int(math.Round(d.Box.Y1)),
		int(math.Round(d.Box.X2)), int(math.Round(d.Box.Y2)),
	)
	drawRectangle(dst, rect, c, a.Thickness)
	a.drawLabel(dst, rect.Min, fmt.Sprintf("%s (%.2f)", d.Label, d.Confidence), c)
}

// drawLabel подпись на заливке цвета рамки; над рамкой, а если не помещается, то внутри
func (a *Annotator) drawLabel(dst *image.NRGBA, at image.Point, text string, bg color.RGBA) {
	const pad = 2
	metrics := a.face.Metrics()
	textW := font.MeasureString(a.face, text).Ceil()
	textH := (metrics.Ascent + metrics.Descent).Ceil()

	top := at.Y - textH - 2*pad
	if top < dst.Bounds().Min.Y {
		top = at.Y
	}
	box := image.Rect(at.X, top, at.X+textW+2*pad, top+textH+2*pad)
	draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColorOn(bg)),
		Face: a.face,
		Dot:  fixed.P(box.Min.X+pad, box.Min.Y+pad+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
}

// drawRectangle рамка толщиной thickness внутрь от границ rect
func drawRectangle(dst *image.NRGBA, rect image.Rectangle, c color.RGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X+1, rect.Min.Y+thickness),
		image.Rect(rect.Min.X, rect.Max.Y-thickness+1, rect.Max.X+1, rect.Max.Y+1),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thickness, rect.Max.Y+1),
		image.Rect(rect.Max.X-thickness+1, rect.Min.Y, rect.Max.X+1, rect.Max.Y+1),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// textColorOn чёрный текст на светлом фоне, белый на тёмном
func textColorOn(bg color.RGBA) color.RGBA {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum > 160 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

var _ port.Annotator = (*Annotator)(nil)
