package vision

import (
	"image"
	"image/color"
)

// ChannelsEqual проверяет, что у каждого пикселя R=G=B.
func ChannelsEqual(img image.Image) bool {
	switch m := img.(type) {
	case *image.Gray:
		return true
	case *image.NRGBA:
		return nrgbaChannelsEqual(m)
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r>>8 != g>>8 || g>>8 != bl>>8 {
				return false
			}
		}
	}
	return true
}

func nrgbaChannelsEqual(m *image.NRGBA) bool {
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := m.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if m.Pix[i] != m.Pix[i+1] || m.Pix[i+1] != m.Pix[i+2] {
				return false
			}
			i += 4
		}
	}
	return true
}

// EnsureGrayscale приводит изображение к одному каналу яркости.
// Если каналы уже равны, значение берётся как есть; иначе яркость
// пересчитывается как среднее трёх каналов и repaired=true.
func EnsureGrayscale(img image.Image) (gray *image.Gray, repaired bool) {
	if g, ok := img.(*image.Gray); ok {
		return g, false
	}
	b := img.Bounds()
	gray = image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			r8, g8, b8 := r>>8, g>>8, bl>>8
			if r8 == g8 && g8 == b8 {
				gray.SetGray(x, y, color.Gray{Y: uint8(r8)})
				continue
			}
			repaired = true
			gray.SetGray(x, y, color.Gray{Y: uint8((r8 + g8 + b8) / 3)})
		}
	}
	return gray, repaired
}

// repairNRGBA выравнивает каналы на месте по среднему, возвращает true если что-то поменялось
func repairNRGBA(m *image.NRGBA) bool {
	repaired := false
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := m.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl := m.Pix[i], m.Pix[i+1], m.Pix[i+2]
			if r != g || g != bl {
				avg := uint8((uint16(r) + uint16(g) + uint16(bl)) / 3)
				m.Pix[i], m.Pix[i+1], m.Pix[i+2] = avg, avg, avg
				repaired = true
			}
			i += 4
		}
	}
	return repaired
}
