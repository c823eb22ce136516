//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"image"
	"math"
	"runtime"
	"sync"
)

// bilateralFilter сглаживает шум, сохраняя края (сборка без OpenCV).
// Вес соседа: произведение пространственного гауссиана и гауссиана по сумме
// модулей разности каналов, как в cv::bilateralFilter. Один вес на все три
// канала, поэтому серое изображение остаётся серым.
func bilateralFilter(src *image.NRGBA, p BilateralParams) (*image.NRGBA, error) {
	if p.Diameter <= 0 || p.SigmaColor <= 0 || p.SigmaSpace <= 0 {
		return nil, errors.New("invalid bilateral parameters")
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst, nil
	}

	radius := p.Diameter / 2
	type offset struct {
		dx, dy int
		w      float64
	}
	spaceCoeff := -0.5 / (p.SigmaSpace * p.SigmaSpace)
	var kernel []offset
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if r2 > float64(radius*radius) {
				continue
			}
			kernel = append(kernel, offset{dx: dx, dy: dy, w: math.Exp(r2 * spaceCoeff)})
		}
	}

	colorCoeff := -0.5 / (p.SigmaColor * p.SigmaColor)
	var colorWeight [256 * 3]float64
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	pixel := func(x, y int) int {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return src.PixOffset(b.Min.X+x, b.Min.Y+y)
	}

	filterRow := func(y int) {
		for x := 0; x < w; x++ {
			c := pixel(x, y)
			r0, g0, b0 := int(src.Pix[c]), int(src.Pix[c+1]), int(src.Pix[c+2])
			var sr, sg, sb, sw float64
			for _, k := range kernel {
				n := pixel(x+k.dx, y+k.dy)
				r, g, bl := int(src.Pix[n]), int(src.Pix[n+1]), int(src.Pix[n+2])
				weight := k.w * colorWeight[absInt(r-r0)+absInt(g-g0)+absInt(bl-b0)]
				sr += weight * float64(r)
				sg += weight * float64(g)
				sb += weight * float64(bl)
				sw += weight
			}
			d := dst.PixOffset(x, y)
			dst.Pix[d] = clamp8(sr / sw)
			dst.Pix[d+1] = clamp8(sg / sw)
			dst.Pix[d+2] = clamp8(sb / sw)
			dst.Pix[d+3] = src.Pix[c+3]
		}
	}

	workers := runtime.NumCPU()
	if workers > h {
		workers = h
	}
	rows := make(chan int, h)
	for y := 0; y < h; y++ {
		rows <- y
	}
	close(rows)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				filterRow(y)
			}
		}()
	}
	wg.Wait()
	return dst, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
