package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// DefaultTileSize is the tile edge used for web renders
const DefaultTileSize = 64

// Server handles web requests for the progressive path tracer
type Server struct {
	port      int
	scenesDir string

	mu      sync.Mutex
	renders map[string]*renderer.ProgressiveRaytracer // Live renders by ID
}

// NewServer creates a new web server serving scene files from scenesDir
func NewServer(port int, scenesDir string) *Server {
	return &Server{
		port:      port,
		scenesDir: scenesDir,
		renders:   make(map[string]*renderer.ProgressiveRaytracer),
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string `json:"scene"`      // Built-in scene ID or "file:<name>"
	Width      int    `json:"width"`      // Image width
	MaxSamples int    `json:"maxSamples"` // Sample cap per pixel
	MaxDepth   int    `json:"maxDepth"`   // Maximum bounces per path
	Integrator string `json:"integrator"` // "path" or "normals"
	Workers    int    `json:"workers"`    // Parallel tile workers

	TileUpdates bool `json:"tileUpdates"` // Stream per-tile images between passes

	Camera geometry.CameraConfig `json:"camera"` // Overrides; zero fields keep scene defaults
	LookAt *core.Vec3            `json:"lookAt"` // Optional look-at target, replaces the direction
}

// Handler returns the HTTP handler serving the UI and the API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/camera", s.handleCamera)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration and parameter limits for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(&RenderRequest{Scene: sceneName})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	camera := sceneObj.CameraConfig
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":       sceneObj.SamplingConfig.Width,
			"height":      sceneObj.SamplingConfig.Height,
			"maxDepth":    sceneObj.SamplingConfig.MaxDepth,
			"maxSamples":  renderer.DefaultProgressiveConfig().MaxSamplesPerPixel,
			"origin":      vecToArray(camera.Origin),
			"direction":   vecToArray(camera.Direction),
			"vfov":        camera.VFov,
			"focalLength": camera.FocalLength,
		},
		"limits": map[string]interface{}{
			"width":       map[string]int{"min": 16, "max": 2000},
			"maxSamples":  map[string]int{"min": 1, "max": 10000},
			"maxDepth":    map[string]int{"min": 1, "max": 500},
			"workers":     map[string]int{"min": 1, "max": 64},
			"vfov":        map[string]float64{"min": 1, "max": 179},
			"focalLength": map[string]float64{"min": 0.01, "max": 100},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// parseCommonSceneParams parses the scene, image size and camera parameters
// shared by render and inspect requests
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 16, 2000); err != nil {
		return err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 1, 500); err != nil {
		return err
	}

	camera, lookAt, err := parseCameraParams(query)
	if err != nil {
		return err
	}
	req.Camera = camera
	req.LookAt = lookAt

	return nil
}

// parseCameraParams reads optional camera overrides from the query
func parseCameraParams(query url.Values) (geometry.CameraConfig, *core.Vec3, error) {
	var config geometry.CameraConfig
	var err error

	origin, err := parseVec3Param(query, "origin")
	if err != nil {
		return config, nil, err
	}
	if origin != nil {
		config.Origin = *origin
	}

	direction, err := parseVec3Param(query, "direction")
	if err != nil {
		return config, nil, err
	}
	if direction != nil {
		if direction.NearZero() {
			return config, nil, fmt.Errorf("direction must not be zero")
		}
		config.Direction = *direction
	}

	lookAt, err := parseVec3Param(query, "lookAt")
	if err != nil {
		return config, nil, err
	}

	if config.VFov, err = parseFloatParam(query, "vfov", 0, 1, 179); err != nil {
		return config, nil, err
	}
	if config.FocalLength, err = parseFloatParam(query, "focalLength", 0, 0.01, 100); err != nil {
		return config, nil, err
	}

	return config, lookAt, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseVec3Param parses an "x,y,z" parameter; a missing parameter yields nil
func parseVec3Param(values url.Values, key string) (*core.Vec3, error) {
	value := values.Get(key)
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid %s: expected x,y,z, got: %s", key, value)
	}

	var components [3]float64
	for i, part := range parts {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s", key, value)
		}
		components[i] = parsed
	}

	v := core.NewVec3(components[0], components[1], components[2])
	return &v, nil
}

// createScene builds the requested scene and applies the request's overrides
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	var sceneObj *scene.Scene
	var err error

	if name, ok := strings.CutPrefix(req.Scene, "file:"); ok {
		if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
			return nil, fmt.Errorf("invalid scene file name: %q", name)
		}
		sceneObj, err = loaders.LoadScene(filepath.Join(s.scenesDir, name+".json"))
		if err != nil {
			return nil, fmt.Errorf("failed to load scene: %w", err)
		}
		if req.Camera != (geometry.CameraConfig{}) {
			sceneObj.CameraConfig = geometry.MergeCameraConfig(sceneObj.CameraConfig, req.Camera)
		}
	} else {
		sceneObj, err = scene.NewBuiltinScene(req.Scene, req.Camera)
		if err != nil {
			return nil, err
		}
	}

	if req.LookAt != nil {
		sceneObj.CameraConfig.Direction = geometry.LookAt(sceneObj.CameraConfig.Origin, *req.LookAt)
		if sceneObj.CameraConfig.Direction.NearZero() {
			return nil, fmt.Errorf("lookAt must differ from the camera origin")
		}
	}
	if !validDirection(sceneObj.CameraConfig.Direction, sceneObj.CameraConfig.Up) {
		return nil, fmt.Errorf("camera direction must not be parallel to the up vector")
	}
	sceneObj.Camera = geometry.NewCamera(sceneObj.CameraConfig)

	if req.Width > 0 {
		sceneObj.SamplingConfig.Width = req.Width
		sceneObj.SamplingConfig.Height = scene.HeightForWidth(req.Width, sceneObj.CameraConfig.AspectRatio)
	}
	if req.MaxDepth > 0 {
		sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	}

	return sceneObj, nil
}

// registerRender makes a live render reachable by ID for camera edits and inspection
func (s *Server) registerRender(id string, raytracer *renderer.ProgressiveRaytracer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders[id] = raytracer
}

// unregisterRender removes a finished render
func (s *Server) unregisterRender(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.renders, id)
}

// lookupRender returns the live render with the given ID
func (s *Server) lookupRender(id string) (*renderer.ProgressiveRaytracer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raytracer, ok := s.renders[id]
	return raytracer, ok
}

// handleCamera applies camera edits to a live render, restarting its accumulation
func (s *Server) handleCamera(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "camera edits must use POST")
		return
	}

	raytracer, ok := s.lookupRender(r.URL.Query().Get("render"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown render: "+r.URL.Query().Get("render"))
		return
	}

	edits, lookAt, err := parseCameraParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateCameraEdits(raytracer.CameraConfig(), edits, lookAt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raytracer.UpdateCamera(func(camera *geometry.Camera) {
		applyCameraEdits(camera, edits, lookAt)
	})

	writeJSON(w, http.StatusOK, cameraResponse(raytracer.CameraConfig()))
}

// validateCameraEdits rejects edits that would leave the camera without a usable basis
func validateCameraEdits(current geometry.CameraConfig, edits geometry.CameraConfig, lookAt *core.Vec3) error {
	var zero core.Vec3
	origin := current.Origin
	if edits.Origin != zero {
		origin = edits.Origin
	}
	if edits.Direction != zero && !validDirection(edits.Direction, current.Up) {
		return fmt.Errorf("direction must not be parallel to the up vector")
	}
	if lookAt != nil && !validDirection(geometry.LookAt(origin, *lookAt), current.Up) {
		return fmt.Errorf("lookAt must differ from the origin and not lie straight above or below it")
	}
	return nil
}

// applyCameraEdits sets every non-zero field of edits on the camera
func applyCameraEdits(camera *geometry.Camera, edits geometry.CameraConfig, lookAt *core.Vec3) {
	var zero core.Vec3
	if edits.Origin != zero {
		camera.SetOrigin(edits.Origin)
	}
	if edits.Direction != zero && validDirection(edits.Direction, camera.Up) {
		camera.SetDirection(edits.Direction)
	}
	if lookAt != nil {
		if direction := geometry.LookAt(camera.Origin, *lookAt); validDirection(direction, camera.Up) {
			camera.SetDirection(direction)
		}
	}
	if edits.VFov != 0 {
		camera.SetVFov(edits.VFov)
	}
	if edits.FocalLength != 0 {
		camera.SetFocalLength(edits.FocalLength)
	}
}

// validDirection reports whether direction can orient a camera with the given up vector
func validDirection(direction, up core.Vec3) bool {
	return !direction.NearZero() && !direction.Normalize().Cross(up.Normalize()).NearZero()
}

func cameraResponse(config geometry.CameraConfig) map[string]interface{} {
	return map[string]interface{}{
		"origin":      vecToArray(config.Origin),
		"direction":   vecToArray(config.Direction),
		"up":          vecToArray(config.Up),
		"vfov":        config.VFov,
		"focalLength": config.FocalLength,
		"aspectRatio": config.AspectRatio,
	}
}

// newIntegrator resolves the integrator name of a request
func newIntegrator(name string) (integrator.Integrator, error) {
	integratorInst, err := integrator.New(name)
	if err != nil {
		return nil, fmt.Errorf("invalid integrator: %w", err)
	}
	return integratorInst, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func vecToArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
