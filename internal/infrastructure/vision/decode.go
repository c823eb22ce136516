package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// JPEGQuality качество кодирования подготовленных и размеченных изображений
const JPEGQuality = 95

// decodeImage превращает байты изображения в image.Image с учётом EXIF-ориентации.
// Все шаги конвейера декодируют одинаково, поэтому координаты рамок совпадают.
func decodeImage(imageData []byte) (image.Image, error) {
	if len(imageData) == 0 {
		return nil, errors.New("empty image")
	}
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("decoded image is empty")
	}
	return img, nil
}

// encodeJPEG кодирует изображение в JPEG. *image.Gray кодируется в один канал.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
