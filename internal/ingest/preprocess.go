package ingest

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

const (
	binarizeThreshold = 140
	minOCRWidth       = 800
)

// Preprocess prepares a page image for OCR: grayscale, binarize at a fixed
// luminance threshold, then upscale narrow images to a minimum width.
func Preprocess(src image.Image) *image.Gray {
	b := src.Bounds()
	bin := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			v := uint8(255)
			if g.Y < binarizeThreshold {
				v = 0
			}
			bin.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: v})
		}
	}

	w, h := b.Dx(), b.Dy()
	if w == 0 || w >= minOCRWidth {
		return bin
	}

	scale := float64(minOCRWidth) / float64(w)
	dst := image.NewGray(image.Rect(0, 0, minOCRWidth, int(float64(h)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), bin, bin.Bounds(), draw.Src, nil)
	return dst
}
