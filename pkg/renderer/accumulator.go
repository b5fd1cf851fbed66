package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Accumulate merges a new linear sample into a gamma-encoded running value.
//
// prevGamma holds the square root of the mean of the first sampleIndex
// samples. The result is sqrt((sample + i*prevGamma^2) / (i+1)), so the
// stored value is always the gamma-2 encoding of the running mean.
// Negative intermediate values are clamped to zero before the root.
func Accumulate(prevGamma, sample core.Color, sampleIndex int) core.Color {
	i := float64(sampleIndex)
	return prevGamma.Square().Multiply(i).Add(sample).Divide(i + 1).Sqrt()
}

// ToRGBA converts a gamma-encoded color to 8 bits per channel, truncating
func ToRGBA(gamma core.Color) color.RGBA {
	c := gamma.Multiply(255).Clamp(0, 255)
	return color.RGBA{
		R: uint8(c.X),
		G: uint8(c.Y),
		B: uint8(c.Z),
		A: 255,
	}
}

// Accumulator stores one gamma-encoded color per pixel and the number of
// samples merged into every pixel so far.
//
// Within a pass each pixel is merged at most once; EndPass then advances the
// shared counter. Distinct pixels may be merged concurrently.
type Accumulator struct {
	width, height int
	pixels        []core.Color
	samples       int
}

// NewAccumulator creates an empty accumulator for a width x height image
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		width:  width,
		height: height,
		pixels: make([]core.Color, width*height),
	}
}

// Merge folds a linear sample into pixel (x, y), row 0 at the top
func (a *Accumulator) Merge(x, y int, sample core.Color) {
	idx := y*a.width + x
	a.pixels[idx] = Accumulate(a.pixels[idx], sample, a.samples)
}

// EndPass advances the shared sample counter after every pixel was merged once
func (a *Accumulator) EndPass() {
	a.samples++
}

// Reset discards all accumulated samples
func (a *Accumulator) Reset() {
	clear(a.pixels)
	a.samples = 0
}

// Samples returns the number of completed passes
func (a *Accumulator) Samples() int {
	return a.samples
}

// At returns the gamma-encoded value of pixel (x, y)
func (a *Accumulator) At(x, y int) core.Color {
	return a.pixels[y*a.width+x]
}

// Width returns the image width in pixels
func (a *Accumulator) Width() int { return a.width }

// Height returns the image height in pixels
func (a *Accumulator) Height() int { return a.height }

// Image converts the accumulated values to an 8-bit image
func (a *Accumulator) Image() *image.RGBA {
	return a.SubImage(image.Rect(0, 0, a.width, a.height))
}

// SubImage converts the pixels inside bounds to an image whose origin is bounds.Min
func (a *Accumulator) SubImage(bounds image.Rectangle) *image.RGBA {
	bounds = bounds.Intersect(image.Rect(0, 0, a.width, a.height))
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, ToRGBA(a.At(x, y)))
		}
	}

	return img
}
