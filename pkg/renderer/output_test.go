package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newOutputTestImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})
	img.SetRGBA(0, 1, color.RGBA{0, 0, 255, 255})
	img.SetRGBA(1, 1, color.RGBA{12, 34, 56, 255})
	return img
}

func TestWritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePPM(&buf, newOutputTestImage()); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	expected := strings.Join([]string{
		"P3",
		"2 2",
		"255",
		"255 0 0",
		"0 255 0",
		"0 0 255",
		"12 34 56",
		"",
	}, "\n")

	if buf.String() != expected {
		t.Errorf("Unexpected PPM output:\n%s\nwant:\n%s", buf.String(), expected)
	}
}

func TestWritePNGRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	img := newOutputTestImage()
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if got := color.RGBAModel.Convert(decoded.At(1, 1)).(color.RGBA); got != img.RGBAAt(1, 1) {
		t.Errorf("Expected %v, got %v", img.RGBAAt(1, 1), got)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"out/render.ppm": FormatPPM,
		"out/render.PPM": FormatPPM,
		"out/render.png": FormatPNG,
		"render":         FormatPNG,
	}

	for path, expected := range tests {
		if got := FormatForPath(path); got != expected {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, expected)
		}
	}
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "render.ppm")

	if err := SaveImage(path, FormatPPM, newOutputTestImage()); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "P3\n2 2\n255\n") {
		t.Errorf("Unexpected file header: %q", string(data[:12]))
	}

	if err := SaveImage(filepath.Join(dir, "render.bmp"), "bmp", newOutputTestImage()); err == nil {
		t.Error("Expected error for unknown format")
	}
}
