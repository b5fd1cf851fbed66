package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

const testSceneJSON = `{
  "name": "Single Sphere",
  "camera": {"origin": [0, 0, 0], "direction": [0, 0, -1], "vfov": 90, "aspectRatio": 2},
  "render": {"width": 40, "maxDepth": 5},
  "materials": {"gray": {"type": "lambertian", "albedo": [0.5, 0.5, 0.5]}},
  "spheres": [{"center": [0, 0, -1], "radius": 0.5, "material": "gray"}]
}`

type testLogger struct{}

func (testLogger) Printf(format string, args ...interface{}) {}

func writeTestScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "single-sphere.json")
	if err := os.WriteFile(path, []byte(testSceneJSON), 0644); err != nil {
		t.Fatalf("Failed to write scene file: %v", err)
	}
	return path
}

func TestCreateScene(t *testing.T) {
	scenePath := writeTestScene(t)

	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"basic scene", "basic", false},
		{"sphere-grid scene", "sphere-grid", false},
		{"empty scene", "empty", false},

		// Scene files
		{"json scene file", scenePath, false},
		{"missing json file", filepath.Join(t.TempDir(), "nonexistent.json"), true},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := createScene(tt.sceneType, 42)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if scene != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s', got %T", tt.sceneType, scene)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if scene == nil {
				t.Fatalf("Expected scene for valid scene type '%s', got nil", tt.sceneType)
			}
			if scene.SamplingConfig.Width <= 0 || scene.SamplingConfig.Height <= 0 {
				t.Errorf("Scene size should be positive, got %dx%d", scene.SamplingConfig.Width, scene.SamplingConfig.Height)
			}
			if scene.SamplingConfig.MaxDepth <= 0 {
				t.Errorf("Scene max depth should be positive, got %d", scene.SamplingConfig.MaxDepth)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	config, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("Expected defaults to parse, got %v", err)
	}
	if config.Scene != "default" || config.MaxSamples != 100 || config.Workers != 1 || config.TileSize != 64 {
		t.Errorf("Unexpected defaults %+v", config)
	}

	config, err = parseFlags([]string{"-scene", "basic", "-width", "64", "-samples", "4", "-depth", "3", "-format", "ppm", "-workers", "2"})
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if config.Scene != "basic" || config.Width != 64 || config.MaxSamples != 4 || config.MaxDepth != 3 || config.Format != "ppm" || config.Workers != 2 {
		t.Errorf("Unexpected config %+v", config)
	}

	config, err = parseFlags([]string{"-out", "render.image", "-format", "ppm"})
	if err != nil || config.Format != "ppm" {
		t.Errorf("An extension that names no format should accept -format, got %+v (err %v)", config, err)
	}

	invalid := [][]string{
		{"-out", "img.png", "-format", "ppm"},
		{"-out", "img.PPM", "-format", "png"},
		{"-width", "-1"},
		{"-samples", "0"},
		{"-passes", "-2"},
		{"-depth", "-1"},
		{"-workers", "0"},
		{"-tile", "0"},
		{"-format", "jpeg"},
		{"-unknown"},
	}
	for _, args := range invalid {
		if _, err := parseFlags(args); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}

func TestCreateSceneUsesSeed(t *testing.T) {
	a, err := createScene("sphere-grid", 42)
	if err != nil {
		t.Fatalf("createScene failed: %v", err)
	}
	b, err := createScene("sphere-grid", 7)
	if err != nil {
		t.Fatalf("createScene failed: %v", err)
	}

	if b.SamplingConfig.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", b.SamplingConfig.Seed)
	}
	same := true
	for i, shape := range a.World.Shapes() {
		if shape.(*geometry.Sphere).Center != b.World.Shapes()[i].(*geometry.Sphere).Center {
			same = false
			break
		}
	}
	if same {
		t.Error("The seed should change the sphere grid layout")
	}
}

func TestOutputPath(t *testing.T) {
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"explicit output", Config{Scene: "basic", Output: "out/x.ppm"}, "out/x.ppm"},
		{"builtin scene", Config{Scene: "basic"}, filepath.Join("output", "basic", "render_20240304_050607.png")},
		{"ppm format", Config{Scene: "basic", Format: "ppm"}, filepath.Join("output", "basic", "render_20240304_050607.ppm")},
		{"scene file", Config{Scene: "scenes/my-scene.json"}, filepath.Join("output", "my-scene", "render_20240304_050607.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.config, now); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRunWritesImage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "render.ppm")
	config, err := parseFlags([]string{"-scene", writeTestScene(t), "-width", "16", "-samples", "2", "-out", out})
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}

	if err := run(context.Background(), config, testLogger{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	if !strings.HasPrefix(string(data), "P3\n16 8\n255\n") {
		t.Errorf("Unexpected PPM header %q", string(data[:min(len(data), 20)]))
	}
	if lines := strings.Count(string(data), "\n"); lines != 3+16*8 {
		t.Errorf("Expected %d lines, got %d", 3+16*8, lines)
	}
}

func TestRunRejectsUnknownIntegrator(t *testing.T) {
	config, err := parseFlags([]string{"-scene", "empty", "-integrator", "bdpt", "-out", filepath.Join(t.TempDir(), "x.png")})
	if err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if err := run(context.Background(), config, testLogger{}); err == nil {
		t.Error("Expected error for unknown integrator")
	}
}
