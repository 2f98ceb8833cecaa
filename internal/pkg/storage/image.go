package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

// ErrNotAnImage is returned when content cannot be decoded as a supported image.
var ErrNotAnImage = errors.New("content is not a supported image")

// ImageProcessor resizes venue photos.
type ImageProcessor struct {
	quality int
}

// NewImageProcessor creates an ImageProcessor encoding JPEG at quality 80.
func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{quality: 80}
}

// Fit decodes content and scales it to fit within maxWidth x maxHeight, returning JPEG bytes.
// Images already inside the box are re-encoded without upscaling.
func (p *ImageProcessor) Fit(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf, nil
}

// Thumbnail crops the center of the image to a square of the given size.
// Venue cards show square covers, so the crop keeps them uniform.
func (p *ImageProcessor) Thumbnail(content io.Reader, size int) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf, nil
}
