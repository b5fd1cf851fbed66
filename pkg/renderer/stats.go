package renderer

import (
	"image"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Samples taken during the pass
	SamplesPerPixel int           // Samples accumulated in every pixel after the pass
	MaxSamples      int           // Sample cap per pixel
	PassTime        time.Duration // Wall time of the pass

	AverageLuminance float64 // Mean luminance of the accumulated image, in [0,1]
}

// Add combines the counters of two partial stats
func (rs RenderStats) Add(other RenderStats) RenderStats {
	rs.TotalPixels += other.TotalPixels
	rs.TotalSamples += other.TotalSamples
	return rs
}

// CalculateAverageLuminance returns the mean luminance of an image in [0,1].
// It levels off as the image converges.
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += core.NewVec3(float64(c.R), float64(c.G), float64(c.B)).Divide(255).Luminance()
		}
	}

	return total / float64(pixels)
}
