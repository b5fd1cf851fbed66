package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// inspectTMin matches the integrator's self-intersection offset
const inspectTMin = 0.001

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// extractMaterialInfo extracts detailed material information with type assertions
func (s *Server) extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecToArray(m.Albedo)
		properties["color"] = colorHex(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecToArray(m.Albedo)
		properties["color"] = colorHex(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		properties["type"] = fmt.Sprintf("%T", mat)
		return "unknown", properties
	}
}

// extractGeometryInfo extracts geometry information with type assertions
func (s *Server) extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch g := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecToArray(g.Center)
		properties["radius"] = g.Radius
		return "sphere", properties

	default:
		properties["type"] = fmt.Sprintf("%T", shape)
		return "unknown", properties
	}
}

// inspectPixel casts the pixel-center ray and reports the closest surface
func (s *Server) inspectPixel(sceneObj *scene.Scene, x, y int) InspectResponse {
	width := sceneObj.SamplingConfig.Width
	height := sceneObj.SamplingConfig.Height
	u, v := renderer.PixelUV(x, y, width, height, core.NewVec2(0.5, 0.5))
	ray := sceneObj.Camera.GetRay(u, v)

	// Walk the shapes directly so the hit can be attributed to one of them
	var closestHit *material.HitRecord
	var closestShape geometry.Shape
	closest := math.Inf(1)
	for _, shape := range sceneObj.World.Shapes() {
		if hit, ok := shape.Hit(ray, inspectTMin, closest); ok {
			closest = hit.T
			closestHit = hit
			closestShape = shape
		}
	}

	if closestHit == nil {
		return InspectResponse{Hit: false}
	}

	materialType, materialProps := s.extractMaterialInfo(closestHit.Material)
	geometryType, geometryProps := s.extractGeometryInfo(closestShape)

	properties := make(map[string]interface{}, len(materialProps)+len(geometryProps))
	for k, v := range materialProps {
		properties[k] = v
	}
	for k, v := range geometryProps {
		properties[k] = v
	}

	return InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecToArray(closestHit.Point),
		Normal:       vecToArray(closestHit.Normal),
		Distance:     closestHit.T,
		FrontFace:    closestHit.FrontFace(),
		Properties:   properties,
	}
}

// handleInspect reports what lies under a pixel, either in a live render
// (render=<id>) or in a scene built from the request parameters
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	x, err := parseIntParam(query, "x", -1, 0, math.MaxInt32)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	y, err := parseIntParam(query, "y", -1, 0, math.MaxInt32)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if x < 0 || y < 0 {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	var response InspectResponse
	var inspectErr error
	inspect := func(sceneObj *scene.Scene) {
		if x >= sceneObj.SamplingConfig.Width || y >= sceneObj.SamplingConfig.Height {
			inspectErr = fmt.Errorf("pixel (%d, %d) outside %dx%d image", x, y,
				sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height)
			return
		}
		response = s.inspectPixel(sceneObj, x, y)
	}

	if renderID := query.Get("render"); renderID != "" {
		raytracer, ok := s.lookupRender(renderID)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown render: "+renderID)
			return
		}
		raytracer.Inspect(inspect)
	} else {
		req := &RenderRequest{}
		if err := s.parseCommonSceneParams(r, req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sceneObj, err := s.createScene(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		inspect(sceneObj)
	}

	if inspectErr != nil {
		writeError(w, http.StatusBadRequest, inspectErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func colorHex(c core.Color) string {
	to8 := func(x float64) int { return int(math.Max(0, math.Min(1, x)) * 255) }
	return fmt.Sprintf("#%02x%02x%02x", to8(c.X), to8(c.Y), to8(c.Z))
}
