//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// bilateralFilter сглаживает шум средствами OpenCV, сохраняя края.
func bilateralFilter(src *image.NRGBA, p BilateralParams) (*image.NRGBA, error) {
	mat, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, errors.New("empty image")
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.BilateralFilter(mat, &dst, p.Diameter, p.SigmaColor, p.SigmaSpace)

	img, err := dst.ToImage()
	if err != nil {
		return nil, err
	}
	out := imaging.Clone(img)
	copyAlpha(out, src)
	return out, nil
}

func copyAlpha(dst, src *image.NRGBA) {
	for i := 3; i < len(dst.Pix) && i < len(src.Pix); i += 4 {
		dst.Pix[i] = src.Pix[i]
	}
}
