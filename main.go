package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// Config holds the command line options
type Config struct {
	Scene      string
	ScenesDir  string
	Width      int
	MaxSamples int
	MaxPasses  int
	MaxDepth   int
	Integrator string
	Workers    int
	TileSize   int
	Seed       int64
	Output     string
	Format     string
	List       bool
	Help       bool
}

// newFlagSet registers every command line option on a fresh flag set
func newFlagSet(config *Config) *flag.FlagSet {
	defaults := renderer.DefaultProgressiveConfig()

	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.StringVar(&config.Scene, "scene", "default", "Built-in scene ID or path to a JSON scene file")
	fs.StringVar(&config.ScenesDir, "scenes", "scenes", "Directory listed by -list")
	fs.IntVar(&config.Width, "width", 0, "Image width (0 = scene default; height follows the aspect ratio)")
	fs.IntVar(&config.MaxSamples, "samples", defaults.MaxSamplesPerPixel, "Samples per pixel")
	fs.IntVar(&config.MaxPasses, "passes", 0, "Stop after this many passes (0 = until -samples is reached)")
	fs.IntVar(&config.MaxDepth, "depth", 0, "Maximum bounces per path (0 = scene default)")
	fs.StringVar(&config.Integrator, "integrator", integrator.PathTracing, "Integrator: 'path' or 'normals'")
	fs.IntVar(&config.Workers, "workers", defaults.NumWorkers, "Parallel tile workers")
	fs.IntVar(&config.TileSize, "tile", defaults.TileSize, "Tile edge in pixels")
	fs.Int64Var(&config.Seed, "seed", defaults.Seed, "Random seed")
	fs.StringVar(&config.Output, "out", "", "Output file (default output/<scene>/render_<timestamp>.png)")
	fs.StringVar(&config.Format, "format", "", "Output format: 'png' or 'ppm' (default from the -out extension)")
	fs.BoolVar(&config.List, "list", false, "List available scenes and exit")
	fs.BoolVar(&config.Help, "help", false, "Show help information")
	return fs
}

// parseFlags parses and validates the command line
func parseFlags(args []string) (Config, error) {
	var config Config
	fs := newFlagSet(&config)

	if err := fs.Parse(args); err != nil {
		return config, err
	}

	switch {
	case config.Width < 0:
		return config, fmt.Errorf("width must not be negative, got %d", config.Width)
	case config.MaxSamples < 1:
		return config, fmt.Errorf("samples must be at least 1, got %d", config.MaxSamples)
	case config.MaxPasses < 0:
		return config, fmt.Errorf("passes must not be negative, got %d", config.MaxPasses)
	case config.MaxDepth < 0:
		return config, fmt.Errorf("depth must not be negative, got %d", config.MaxDepth)
	case config.Workers < 1:
		return config, fmt.Errorf("workers must be at least 1, got %d", config.Workers)
	case config.TileSize < 1:
		return config, fmt.Errorf("tile must be at least 1, got %d", config.TileSize)
	}
	if config.Format != "" && config.Format != renderer.FormatPNG && config.Format != renderer.FormatPPM {
		return config, fmt.Errorf("unknown format %q", config.Format)
	}
	if config.Format != "" && config.Output != "" {
		if implied, ok := formatForExtension(config.Output); ok && implied != config.Format {
			return config, fmt.Errorf("format %q does not match output file %s", config.Format, config.Output)
		}
	}

	return config, nil
}

func main() {
	config, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Printf("Error: %v", err)
		os.Exit(2)
	}

	if config.Help {
		showHelp()
		return
	}
	if config.List {
		if err := listScenes(config.ScenesDir); err != nil {
			log.Printf("Error listing scenes: %v", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, config, renderer.NewDefaultLogger()); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("Progressive Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs := newFlagSet(&Config{})
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.BuiltinScenes() {
		fmt.Printf("  %-12s - %s\n", info.ID, info.Description)
	}
	fmt.Println("  <file>.json  - JSON scene file")
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png unless -out is given")
}

func listScenes(dir string) error {
	response, err := scene.ListAllScenes(dir)
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Printf("%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Printf("  %-24s %s\n", info.ID, info.Name)
		}
	}
	return nil
}

// createScene resolves a built-in scene ID or a JSON scene file path.
// seed lays out built-in scenes with a randomized layout.
func createScene(sceneName string, seed int64) (*scene.Scene, error) {
	if sceneName == "" {
		return nil, fmt.Errorf("scene name must not be empty")
	}

	if strings.EqualFold(filepath.Ext(sceneName), ".json") {
		s, err := loaders.LoadScene(sceneName)
		if err != nil {
			return nil, fmt.Errorf("failed to load scene file %s: %w", sceneName, err)
		}
		s.SamplingConfig.Seed = seed
		return s, nil
	}

	return scene.NewSeededBuiltinScene(sceneName, seed)
}

// applyOverrides sets the command line size and depth on the scene
func applyOverrides(s *scene.Scene, config Config) {
	if config.Width > 0 {
		s.SamplingConfig.Width = config.Width
		s.SamplingConfig.Height = scene.HeightForWidth(config.Width, s.CameraConfig.AspectRatio)
	}
	if config.MaxDepth > 0 {
		s.SamplingConfig.MaxDepth = config.MaxDepth
	}
}

// formatForExtension returns the output format named by a .png or .ppm extension
func formatForExtension(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return renderer.FormatPNG, true
	case ".ppm":
		return renderer.FormatPPM, true
	default:
		return "", false
	}
}

// outputPath returns the file the render is written to
func outputPath(config Config, now time.Time) string {
	if config.Output != "" {
		return config.Output
	}

	sceneDir := config.Scene
	if strings.EqualFold(filepath.Ext(sceneDir), ".json") {
		sceneDir = strings.TrimSuffix(filepath.Base(sceneDir), filepath.Ext(sceneDir))
	}
	ext := ".png"
	if config.Format == renderer.FormatPPM {
		ext = ".ppm"
	}
	return filepath.Join("output", sceneDir, fmt.Sprintf("render_%s%s", now.Format("20060102_150405"), ext))
}

// run renders the configured scene progressively and saves the final image
func run(ctx context.Context, config Config, logger core.Logger) error {
	s, err := createScene(config.Scene, config.Seed)
	if err != nil {
		return err
	}
	applyOverrides(s, config)

	integratorInst, err := integrator.New(config.Integrator)
	if err != nil {
		return err
	}

	progressiveConfig := renderer.ProgressiveConfig{
		TileSize:           config.TileSize,
		MaxSamplesPerPixel: config.MaxSamples,
		MaxPasses:          config.MaxPasses,
		NumWorkers:         config.Workers,
		Seed:               config.Seed,
	}
	raytracer := renderer.NewProgressiveRaytracer(s, integratorInst, progressiveConfig, logger)

	fmt.Printf("Rendering %s (%dx%d, %d samples, depth %d, %s integrator)...\n",
		config.Scene, s.SamplingConfig.Width, s.SamplingConfig.Height,
		config.MaxSamples, s.SamplingConfig.MaxDepth, config.Integrator)

	startTime := time.Now()
	passChan, _, errChan := raytracer.RenderProgressive(ctx, renderer.RenderOptions{})

	var final image.Image
	for result := range passChan {
		final = result.Image
		fmt.Printf("Pass %d: %d/%d samples per pixel, average luminance %.4f\n",
			result.PassNumber, result.Stats.SamplesPerPixel, result.Stats.MaxSamples, result.Stats.AverageLuminance)
	}

	var renderErr error
	for err := range errChan {
		renderErr = err
	}
	if final == nil {
		if renderErr != nil {
			return fmt.Errorf("render failed: %w", renderErr)
		}
		return fmt.Errorf("render produced no passes")
	}
	if renderErr != nil {
		// Interrupted: keep the partially converged image
		fmt.Printf("Render interrupted: %v\n", renderErr)
	}

	fmt.Printf("Render completed in %v\n", time.Since(startTime))

	filename := outputPath(config, time.Now())
	format := config.Format
	if format == "" {
		format = renderer.FormatForPath(filename)
	}
	if err := renderer.SaveImage(filename, format, final); err != nil {
		return err
	}

	fmt.Printf("Render saved as %s\n", filename)
	return nil
}
