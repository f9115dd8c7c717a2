package qr

import (
	"image"

	"github.com/disintegration/imaging"
)

// Pass is a named image transformation tried before decoding.
// Passes are pure: they never modify the source image.
type Pass struct {
	Name  string
	Apply func(image.Image) image.Image
}

// DefaultPasses returns the enhancement attempts in the order they are
// tried after the original image fails to decode. Cheap adjustments run
// before the heavier filtered variants.
func DefaultPasses() []Pass {
	return []Pass{
		{
			Name: "contrast",
			Apply: func(img image.Image) image.Image {
				return imaging.AdjustContrast(img, 50)
			},
		},
		{
			Name: "sharpened",
			Apply: func(img image.Image) image.Image {
				return imaging.Sharpen(img, 2.0)
			},
		},
		{
			Name: "grayscale",
			Apply: func(img image.Image) image.Image {
				return imaging.Grayscale(img)
			},
		},
		{
			Name: "grayscale_contrast",
			Apply: func(img image.Image) image.Image {
				return imaging.AdjustContrast(imaging.Grayscale(img), 80)
			},
		},
		{
			Name: "blur_threshold",
			Apply: func(img image.Image) image.Image {
				// Slight blur knocks out speckle noise before the hard
				// contrast push flattens the image to near black/white.
				return imaging.AdjustContrast(imaging.Blur(img, 0.8), 100)
			},
		},
	}
}
