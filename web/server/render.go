package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX      int    `json:"tileX"`
	TileY      int    `json:"tileY"`
	ImageData  string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber int    `json:"passNumber"`
	TileNumber int    `json:"tileNumber"` // Current tile number in this pass (1-based)
	TotalTiles int    `json:"totalTiles"` // Total number of tiles in the image
}

// PassUpdate represents a completed pass sent via SSE
type PassUpdate struct {
	PassNumber      int     `json:"passNumber"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	MaxSamples      int     `json:"maxSamples"`
	ElapsedMs       int64   `json:"elapsedMs"`
	PassMs          int64   `json:"passMs"`
	TotalPixels     int     `json:"totalPixels"`
	PrimitiveCount  int     `json:"primitiveCount"`
	Luminance       float64 `json:"luminance"` // Mean image luminance, levels off as the render converges
	ImageData       string  `json:"imageData"` // Base64 encoded PNG of the full image
}

// StartUpdate announces a new render and the ID used for camera edits
type StartUpdate struct {
	RenderID string `json:"renderId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "start", "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	ID        string
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender handles progressive rendering with real-time tile streaming via SSE.
// The render keeps running at the sample cap so camera edits can restart it,
// and ends when the client disconnects.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(w, ctx, sseEventChan)
	}()

	// Console streaming must stop before the event channel is closed
	consoleCtx, stopConsole := context.WithCancel(ctx)
	var consoleWG sync.WaitGroup
	defer func() {
		stopConsole()
		consoleWG.Wait()
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	consoleChan, webLogger := s.setupConsoleLogging(renderID)
	consoleWG.Add(1)
	go func() {
		defer consoleWG.Done()
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
	}()

	pipeline, err := s.setupRenderingPipeline(renderID, req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	s.registerRender(pipeline.ID, pipeline.Raytracer)
	defer s.unregisterRender(pipeline.ID)

	s.sendJSONEvent(ctx, sseEventChan, "start", StartUpdate{
		RenderID: pipeline.ID,
		Width:    pipeline.Scene.SamplingConfig.Width,
		Height:   pipeline.Scene.SamplingConfig.Height,
	})

	startTime := time.Now()
	renderOptions := renderer.RenderOptions{TileUpdates: req.TileUpdates, Continuous: true}
	passChan, tileChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, renderOptions)

	s.handleRenderingEvents(ctx, sseEventChan, passChan, tileChan, errChan, pipeline.Scene, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging(renderID string) (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards console messages to the SSE stream until ctx ends
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}

			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip message to avoid blocking
			}

		case <-ctx.Done():
			return
		}
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", renderer.DefaultProgressiveConfig().MaxSamplesPerPixel, 1, 10000); err != nil {
		return nil, err
	}
	if req.Workers, err = parseIntParam(query, "workers", 1, 1, 64); err != nil {
		return nil, err
	}
	req.Integrator = query.Get("integrator")
	req.TileUpdates = query.Get("tiles") != "false"

	// Performance warning
	if req.Width > 1000 && req.MaxSamples > 1000 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// setupRenderingPipeline creates and configures the scene and raytracer
func (s *Server) setupRenderingPipeline(id string, req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	sceneObj, err := s.createScene(req)
	if err != nil {
		return nil, err
	}

	integratorInst, err := newIntegrator(req.Integrator)
	if err != nil {
		return nil, err
	}

	config := renderer.DefaultProgressiveConfig()
	config.TileSize = DefaultTileSize
	config.MaxSamplesPerPixel = req.MaxSamples
	config.NumWorkers = req.Workers

	return &RenderingPipeline{
		ID:        id,
		Scene:     sceneObj,
		Raytracer: renderer.NewProgressiveRaytracer(sceneObj, integratorInst, config, logger),
	}, nil
}

// handleRenderingEvents processes the main rendering event loop
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan SSEEvent,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	sceneObj *scene.Scene, startTime time.Time) {

	for passChan != nil || tileChan != nil || errChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.handlePassComplete(ctx, sseEventChan, passResult, sceneObj, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult)

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if err != nil && ctx.Err() == nil {
				s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
			}
		}
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handlePassComplete processes and sends pass completion events
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan SSEEvent, passResult renderer.PassResult, sceneObj *scene.Scene, startTime time.Time) {
	if ctx.Err() != nil {
		return
	}

	imageData, err := s.imageToBase64PNG(passResult.Image)
	if err != nil {
		log.Printf("Error encoding pass image: %v", err)
		return
	}

	s.sendJSONEvent(ctx, sseEventChan, "passComplete", PassUpdate{
		PassNumber:      passResult.PassNumber,
		SamplesPerPixel: passResult.Stats.SamplesPerPixel,
		MaxSamples:      passResult.Stats.MaxSamples,
		ElapsedMs:       time.Since(startTime).Milliseconds(),
		PassMs:          passResult.Stats.PassTime.Milliseconds(),
		TotalPixels:     passResult.Stats.TotalPixels,
		PrimitiveCount:  sceneObj.GetPrimitiveCount(),
		Luminance:       passResult.Stats.AverageLuminance,
		ImageData:       imageData,
	})
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan SSEEvent, tileResult renderer.TileCompletionResult) {
	if ctx.Err() != nil {
		return
	}

	tileData, err := s.imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		log.Printf("Error encoding tile image (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}

	s.sendJSONEvent(ctx, sseEventChan, "tile", TileUpdate{
		TileX:      tileResult.TileX,
		TileY:      tileResult.TileY,
		ImageData:  tileData,
		PassNumber: tileResult.PassNumber,
		TileNumber: tileResult.TileNumber,
		TotalTiles: tileResult.TotalTiles,
	})
}

// sendJSONEvent marshals payload and queues it as an SSE event
func (s *Server) sendJSONEvent(ctx context.Context, sseEventChan chan SSEEvent, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
