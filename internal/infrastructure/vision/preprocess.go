package vision

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"derma-vision/internal/domain/entity"
	"derma-vision/internal/domain/port"
)

// BilateralParams параметры сглаживания с сохранением краёв
type BilateralParams struct {
	Diameter   int
	SigmaColor float64
	SigmaSpace float64
}

// Preprocessor готовит снимок к модели: яркость в один канал, контраст, яркость, шумоподавление.
type Preprocessor struct {
	ContrastFactor   float64
	BrightnessFactor float64
	Smoothing        BilateralParams
	Quality          int
	log              *logrus.Entry
}

// NewPreprocessor создаёт препроцессор с параметрами по умолчанию.
func NewPreprocessor(logger *logrus.Logger) *Preprocessor {
	return &Preprocessor{
		ContrastFactor:   1.3,
		BrightnessFactor: 1.1,
		Smoothing: BilateralParams{
			Diameter:   9,
			SigmaColor: 75,
			SigmaSpace: 75,
		},
		Quality: JPEGQuality,
		log:     logger.WithField("component", "preprocessor"),
	}
}

// Preprocess применяет включённые шаги в фиксированном порядке.
// Ошибки не пробрасываются: при любой проблеме возвращаются исходные байты.
func (p *Preprocessor) Preprocess(imageData []byte, opts entity.PreprocessingOptions) ([]byte, bool) {
	if !opts.Any() {
		return imageData, false
	}
	out, err := p.process(imageData, opts)
	if err != nil {
		p.log.WithError(err).Warn("Preprocessing failed, using original image")
		return imageData, false
	}
	return out, true
}

func (p *Preprocessor) process(imageData []byte, opts entity.PreprocessingOptions) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", entity.ErrPreprocessing, r)
		}
	}()

	img, err := decodeImage(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPreprocessing, err)
	}

	// 1. Три канала
	work := imaging.Clone(img)

	// 2. Яркость в один канал, с проверкой
	if opts.ConvertToGrayscale {
		work = imaging.Grayscale(work)
		if !nrgbaChannelsEqual(work) {
			repairNRGBA(work)
			p.log.Warn("Grayscale conversion left unequal channels, forced channel average")
		}
	}

	// 3-4. Контраст и яркость через таблицы: одинаковые каналы остаются одинаковыми
	if opts.EnhanceContrast {
		work = applyLUT(work, contrastLUT(meanLuminance(work), p.ContrastFactor))
	}
	if opts.NormalizeBrightness {
		work = applyLUT(work, brightnessLUT(p.BrightnessFactor))
	}

	// 5. Шумоподавление
	if opts.NoiseReduction {
		work, err = bilateralFilter(work, p.Smoothing)
		if err != nil {
			return nil, fmt.Errorf("%w: bilateral filter: %v", entity.ErrPreprocessing, err)
		}
	}

	var final image.Image = work
	if opts.ConvertToGrayscale {
		gray, repaired := EnsureGrayscale(work)
		if repaired {
			p.log.Warn("Channels diverged after enhancement, forced channel average")
		}
		final = gray
	}

	out, err = encodeJPEG(final, p.Quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPreprocessing, err)
	}
	p.log.WithFields(logrus.Fields{
		"width":     final.Bounds().Dx(),
		"height":    final.Bounds().Dy(),
		"grayscale": opts.ConvertToGrayscale,
		"bytes":     len(out),
	}).Debug("Image preprocessed")
	return out, nil
}

// EnsureGrayscale проверяет готовые байты перед моделью. Если каналы не равны,
// пересобирает изображение как один канал и кодирует заново.
func (p *Preprocessor) EnsureGrayscale(imageData []byte) ([]byte, bool, error) {
	img, err := decodeImage(imageData)
	if err != nil {
		return imageData, false, err
	}
	if ChannelsEqual(img) {
		return imageData, false, nil
	}
	gray, _ := EnsureGrayscale(img)
	out, err := encodeJPEG(gray, p.Quality)
	if err != nil {
		return imageData, false, err
	}
	p.log.Warn("Image handed to inference was not grayscale, forced repair")
	return out, true, nil
}

// meanLuminance средняя яркость (ITU-R 601), округлённая до целого
func meanLuminance(m *image.NRGBA) float64 {
	b := m.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := m.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += 0.299*float64(m.Pix[i]) + 0.587*float64(m.Pix[i+1]) + 0.114*float64(m.Pix[i+2])
			i += 4
		}
	}
	return math.Round(sum / float64(n))
}

// contrastLUT растягивает значения от средней яркости в factor раз
func contrastLUT(mean, factor float64) [256]uint8 {
	var lut [256]uint8
	for v := range lut {
		lut[v] = clamp8(mean + factor*(float64(v)-mean))
	}
	return lut
}

// brightnessLUT умножает значения на factor
func brightnessLUT(factor float64) [256]uint8 {
	var lut [256]uint8
	for v := range lut {
		lut[v] = clamp8(float64(v) * factor)
	}
	return lut
}

func applyLUT(m *image.NRGBA, lut [256]uint8) *image.NRGBA {
	return imaging.AdjustFunc(m, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

var _ port.ImagePreprocessor = (*Preprocessor)(nil)
