package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WritePPM writes img as a plain-text PPM (P3): a "P3" line, "width height",
// "255", then one "r g b" triple per line, top row first.
func WritePPM(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return fmt.Errorf("failed to write PPM header: %w", err)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", c.R, c.G, c.B); err != nil {
				return fmt.Errorf("failed to write PPM pixel: %w", err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush PPM: %w", err)
	}
	return nil
}

// WritePNG writes img as a PNG
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// Output formats understood by SaveImage
const (
	FormatPNG = "png"
	FormatPPM = "ppm"
)

// FormatForPath returns the output format implied by a file extension, defaulting to PNG
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		return FormatPPM
	}
	return FormatPNG
}

// SaveImage writes img to path in the given format, creating parent directories
func SaveImage(path, format string, img image.Image) (err error) {
	var write func(io.Writer, image.Image) error
	switch format {
	case FormatPNG:
		write = WritePNG
	case FormatPPM:
		write = WritePPM
	default:
		return fmt.Errorf("unknown image format %q", format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	return write(file, img)
}
