package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ErrClosed is returned when rendering on a raytracer whose workers were stopped
var ErrClosed = errors.New("progressive raytracer is closed")

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize           int   // Size of each tile (64x64 recommended)
	MaxSamplesPerPixel int   // Sample cap per pixel (0 = no cap)
	MaxPasses          int   // Maximum number of passes (0 = until the sample cap)
	NumWorkers         int   // Number of parallel workers (values below 1 mean 1)
	Seed               int64 // Base seed for the per-tile random streams
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:           64,
		MaxSamplesPerPixel: 100,
		MaxPasses:          0,
		NumWorkers:         1,
		Seed:               42,
	}
}

// ProgressiveRaytracer renders one sample per pixel per pass and accumulates
// the passes into a converging image.
//
// mu is held for the duration of every pass, so camera and scene edits made
// through UpdateCamera and UpdateScene always land between passes.
type ProgressiveRaytracer struct {
	scene         *scene.Scene
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile
	accumulator   *Accumulator
	workerPool    *WorkerPool
	logger        core.Logger

	mu      sync.Mutex
	closed  bool
	resetCh chan struct{} // Signalled after every reset
}

// NewProgressiveRaytracer creates a progressive raytracer for the scene's
// image size and sampling settings
func NewProgressiveRaytracer(s *scene.Scene, integratorInst integrator.Integrator, config ProgressiveConfig, logger core.Logger) *ProgressiveRaytracer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultProgressiveConfig().TileSize
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	width, height := s.SamplingConfig.Width, s.SamplingConfig.Height
	tiles := NewTileGrid(width, height, config.TileSize, config.Seed)
	accumulator := NewAccumulator(width, height)
	tileRenderer := NewTileRenderer(s.Camera, s.World, integratorInst, width, height, s.SamplingConfig.MaxDepth)

	return &ProgressiveRaytracer{
		scene:       s,
		width:       width,
		height:      height,
		config:      config,
		tiles:       tiles,
		accumulator: accumulator,
		workerPool:  NewWorkerPool(tileRenderer, accumulator, len(tiles), config.NumWorkers),
		logger:      logger,
		resetCh:     make(chan struct{}, 1),
	}
}

// Samples returns the number of samples accumulated in every pixel
func (pr *ProgressiveRaytracer) Samples() int {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.accumulator.Samples()
}

// Image returns the current accumulated image
func (pr *ProgressiveRaytracer) Image() *image.RGBA {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.accumulator.Image()
}

// CameraConfig returns a snapshot of the current camera inputs
func (pr *ProgressiveRaytracer) CameraConfig() geometry.CameraConfig {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.scene.Camera.Config()
}

// UpdateCamera applies edit to the camera between passes, recomputes its
// basis and discards the accumulated samples
func (pr *ProgressiveRaytracer) UpdateCamera(edit func(camera *geometry.Camera)) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	edit(pr.scene.Camera)
	pr.scene.Camera.UpdateBasis()
	pr.resetLocked("camera changed")
}

// UpdateScene applies edit to the world between passes and discards the
// accumulated samples
func (pr *ProgressiveRaytracer) UpdateScene(edit func(world *geometry.World)) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	edit(pr.scene.World)
	pr.resetLocked("scene changed")
}

// Reset discards the accumulated samples
func (pr *ProgressiveRaytracer) Reset() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.resetLocked("reset requested")
}

// Inspect runs fn with exclusive access to the scene, between passes
func (pr *ProgressiveRaytracer) Inspect(fn func(s *scene.Scene)) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	fn(pr.scene)
}

func (pr *ProgressiveRaytracer) resetLocked(reason string) {
	pr.accumulator.Reset()
	pr.logger.Printf("Accumulation reset: %s\n", reason)

	select {
	case pr.resetCh <- struct{}{}:
	default:
	}
}

// capReached reports whether every pixel holds the configured maximum number of samples
func (pr *ProgressiveRaytracer) capReached() bool {
	return pr.config.MaxSamplesPerPixel > 0 && pr.Samples() >= pr.config.MaxSamplesPerPixel
}

// Close stops the worker pool. Further passes return ErrClosed.
func (pr *ProgressiveRaytracer) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if !pr.closed {
		pr.closed = true
		pr.workerPool.Stop()
	}
}

// RenderPass renders a single progressive pass using parallel processing
func (pr *ProgressiveRaytracer) RenderPass(passNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.closed {
		return nil, RenderStats{}, ErrClosed
	}

	startTime := time.Now()
	pr.workerPool.Start()

	for taskID, tile := range pr.tiles {
		pr.workerPool.SubmitTask(TileTask{
			Tile:       tile,
			PassNumber: passNumber,
			TaskID:     taskID,
		})
	}

	var stats RenderStats

	// Wait for all tiles and dispatch callbacks from this goroutine only
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		stats = stats.Add(result.Stats)

		tile := pr.tiles[result.TaskID]

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:      tile.Bounds.Min.X / pr.config.TileSize,
				TileY:      tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:  pr.accumulator.SubImage(tile.Bounds),
				PassNumber: passNumber,
				TileNumber: i + 1,
				TotalTiles: len(pr.tiles),
			})
		}
	}

	pr.accumulator.EndPass()

	stats.SamplesPerPixel = pr.accumulator.Samples()
	stats.MaxSamples = pr.config.MaxSamplesPerPixel
	stats.PassTime = time.Since(startTime)

	img := pr.accumulator.Image()
	stats.AverageLuminance = CalculateAverageLuminance(img)

	return img, stats, nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	TileImage  *image.RGBA // Image data for just this tile
	PassNumber int         // Which pass this tile was rendered in

	// Progress information
	TileNumber int // Current tile number in this pass (1-based)
	TotalTiles int // Total number of tiles in the image
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
	Continuous  bool // Keep running at the sample cap, resuming after each reset
}

// RenderProgressive renders passes on a separate goroutine and reports them on channels.
// Rendering stops between passes when ctx is cancelled, and at the sample cap
// unless options.Continuous is set. If options.TileUpdates is false the tile
// channel is closed immediately.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.Close()

		pr.logger.Printf("Starting progressive rendering (%dx%d, %d tiles, %d workers, cap %d samples)...\n",
			pr.width, pr.height, len(pr.tiles), pr.workerPool.GetNumWorkers(), pr.config.MaxSamplesPerPixel)

		var tileCallback func(TileCompletionResult)
		if options.TileUpdates {
			tileCallback = func(result TileCompletionResult) {
				select {
				case tileChan <- result:
				case <-ctx.Done():
				default:
					// Channel full, drop the update
				}
			}
		}

		for pass := 1; pr.config.MaxPasses <= 0 || pass <= pr.config.MaxPasses; pass++ {
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			if pr.capReached() {
				if !options.Continuous {
					return
				}
				pr.logger.Printf("Reached maximum samples per pixel (%d), waiting for changes.\n", pr.config.MaxSamplesPerPixel)
				for pr.capReached() {
					select {
					case <-ctx.Done():
						errChan <- ctx.Err()
						return
					case <-pr.resetCh:
					}
				}
			}

			img, stats, err := pr.RenderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (%d samples/pixel, luminance %.4f)\n",
				pass, stats.PassTime, stats.SamplesPerPixel, stats.AverageLuminance)

			atCap := pr.config.MaxSamplesPerPixel > 0 && stats.SamplesPerPixel >= pr.config.MaxSamplesPerPixel
			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				IsLast:     pass == pr.config.MaxPasses || (atCap && !options.Continuous),
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}

			if atCap && !options.Continuous {
				pr.logger.Printf("Reached maximum samples per pixel (%d), stopping.\n", pr.config.MaxSamplesPerPixel)
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID      int             // Unique tile identifier
	Bounds  image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Sampler core.Sampler    // Tile-specific random stream for deterministic results
}

// NewTile creates a new tile whose random stream depends only on seed and id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	random := rand.New(rand.NewSource(seed*1_000_003 + int64(id) + 42)) // +42 to avoid seed 0

	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewRandomSampler(random),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
