// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"

	"github.com/opengeos/anymap-sub000/pkg/mapbase"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

const (
	Trait_CameraHeight = "camera_height"
	Trait_Heading      = "heading"
	Trait_Roll         = "roll"
)

// CesiumMap is the CesiumJS 3D globe backend.  Entities take the place of
// the layer mapping; each Add* helper stores an entity record and queues the
// addEntity call.
type CesiumMap struct {
	*mapwidget.MapWidget
}

type CesiumOptions struct {
	Center       []float64 // [lat, lng]
	CameraHeight float64   // meters, defaults to 10000000 (full globe)
	Heading      float64
	Pitch        float64
	Roll         float64
	Width        string
	Height       string
	AccessToken  string // falls back to CESIUM_TOKEN / CESIUM_ACCESS_TOKEN
}

func MakeCesiumMap(opts CesiumOptions) *CesiumMap {
	token := opts.AccessToken
	if token == "" {
		token = mapbase.GetCesiumToken()
	}
	if opts.CameraHeight == 0 {
		opts.CameraHeight = 10000000
	}
	if opts.Pitch == 0 {
		opts.Pitch = -90.0
	}
	w := mapwidget.MakeMapWidget(Backend_Cesium, map[string]any{
		Trait_AccessToken:  "",
		Trait_CameraHeight: 10000000.0,
		Trait_Heading:      0.0,
		Trait_Roll:         0.0,
	})
	m := &CesiumMap{w}
	applyCommonOptions(w, opts.Center, 0, opts.Width, opts.Height)
	w.Traits().Set(Trait_AccessToken, token)
	w.Traits().Set(Trait_CameraHeight, opts.CameraHeight)
	w.Traits().Set(Trait_Heading, opts.Heading)
	w.Traits().Set(mapwidget.Trait_Pitch, opts.Pitch)
	w.Traits().Set(Trait_Roll, opts.Roll)
	return m
}

func (m *CesiumMap) SetAccessToken(token string) {
	m.Traits().Set(Trait_AccessToken, token)
}

// CesiumFlyToOptions are the optional camera parameters for FlyTo.
type CesiumFlyToOptions struct {
	Height   *float64
	Heading  *float64
	Pitch    *float64
	Roll     *float64
	Duration float64 // seconds, defaults to 3
}

// FlyTo animates the camera to lat/lng.
func (m *CesiumMap) FlyTo(lat float64, lng float64, opts *CesiumFlyToOptions) {
	options := map[string]any{"latitude": lat, "longitude": lng, "duration": 3.0}
	if opts != nil {
		if opts.Duration > 0 {
			options["duration"] = opts.Duration
		}
		if opts.Height != nil {
			options["height"] = *opts.Height
		}
		if opts.Heading != nil {
			options["heading"] = *opts.Heading
		}
		if opts.Pitch != nil {
			options["pitch"] = *opts.Pitch
		}
		if opts.Roll != nil {
			options["roll"] = *opts.Roll
		}
	}
	m.Call("flyTo", options)
}

// SetCameraPosition moves the camera immediately by updating the camera
// traits (no queued call; the view observes the traits).
func (m *CesiumMap) SetCameraPosition(lat float64, lng float64, height float64, heading float64, pitch float64, roll float64) {
	m.SetCenter(lat, lng)
	m.Traits().Set(Trait_CameraHeight, height)
	m.Traits().Set(Trait_Heading, heading)
	m.Traits().Set(mapwidget.Trait_Pitch, pitch)
	m.Traits().Set(Trait_Roll, roll)
}

// AddEntity stores the entity record under its id and queues the view call.
func (m *CesiumMap) AddEntity(entityConfig map[string]any) {
	entityId, _ := entityConfig["id"].(string)
	if entityId != "" {
		layers := m.GetLayers()
		layers[entityId] = entityConfig
		m.Traits().Set(mapwidget.Trait_Layers, layers)
	}
	m.Call("addEntity", entityConfig)
}

func (m *CesiumMap) RemoveEntity(entityId string) {
	layers := m.GetLayers()
	if _, ok := layers[entityId]; ok {
		delete(layers, entityId)
		m.Traits().Set(mapwidget.Trait_Layers, layers)
	}
	m.Call("removeEntity", entityId)
}

// PointOptions are the optional knobs for AddPoint.
type PointOptions struct {
	Height      float64
	Name        string
	Description string
	Color       string // defaults to "#ffff00"
	PixelSize   int    // defaults to 10
	EntityId    string
}

// AddPoint adds a point entity on the globe and returns its entity id.
func (m *CesiumMap) AddPoint(lat float64, lng float64, opts *PointOptions) string {
	if opts == nil {
		opts = &PointOptions{}
	}
	if opts.Color == "" {
		opts.Color = "#ffff00"
	}
	if opts.PixelSize == 0 {
		opts.PixelSize = 10
	}
	entityId := opts.EntityId
	if entityId == "" {
		entityId = fmt.Sprintf("point_%d", len(m.GetLayers()))
	}
	heightRef := "NONE"
	if opts.Height == 0 {
		heightRef = "CLAMP_TO_GROUND"
	}
	entityConfig := map[string]any{
		"id": entityId,
		"position": map[string]any{
			"longitude": lng,
			"latitude":  lat,
			"height":    opts.Height,
		},
		"point": map[string]any{
			"pixelSize":       opts.PixelSize,
			"color":           opts.Color,
			"outlineColor":    "#000000",
			"outlineWidth":    2,
			"heightReference": heightRef,
		},
	}
	if opts.Name != "" {
		entityConfig["name"] = opts.Name
	}
	if opts.Description != "" {
		entityConfig["description"] = opts.Description
	}
	m.AddEntity(entityConfig)
	return entityId
}

// AddBillboard adds an image billboard entity at lat/lng.
func (m *CesiumMap) AddBillboard(lat float64, lng float64, imageURL string, scale float64, entityId string) string {
	if entityId == "" {
		entityId = fmt.Sprintf("billboard_%d", len(m.GetLayers()))
	}
	if scale == 0 {
		scale = 1.0
	}
	m.AddEntity(map[string]any{
		"id": entityId,
		"position": map[string]any{
			"longitude": lng,
			"latitude":  lat,
			"height":    0.0,
		},
		"billboard": map[string]any{
			"image": imageURL,
			"scale": scale,
		},
	})
	return entityId
}

// AddPolyline adds a polyline entity from [[lat, lng], ...] positions.
func (m *CesiumMap) AddPolyline(coordinates [][]float64, color string, width float64, entityId string) string {
	if entityId == "" {
		entityId = fmt.Sprintf("polyline_%d", len(m.GetLayers()))
	}
	if color == "" {
		color = "#ff0000"
	}
	if width == 0 {
		width = 2
	}
	m.AddEntity(map[string]any{
		"id": entityId,
		"polyline": map[string]any{
			"positions": latLngPositions(coordinates),
			"material":  color,
			"width":     width,
		},
	})
	return entityId
}

// AddPolygon adds a polygon entity from [[lat, lng], ...] vertices.
func (m *CesiumMap) AddPolygon(coordinates [][]float64, color string, outlineColor string, entityId string) string {
	if entityId == "" {
		entityId = fmt.Sprintf("polygon_%d", len(m.GetLayers()))
	}
	if color == "" {
		color = "#0000ff"
	}
	if outlineColor == "" {
		outlineColor = "#000000"
	}
	m.AddEntity(map[string]any{
		"id": entityId,
		"polygon": map[string]any{
			"hierarchy":    latLngPositions(coordinates),
			"material":     color,
			"outline":      true,
			"outlineColor": outlineColor,
		},
	})
	return entityId
}

func latLngPositions(coordinates [][]float64) []any {
	positions := make([]any, 0, len(coordinates))
	for _, coord := range coordinates {
		if len(coord) < 2 {
			continue
		}
		pos := map[string]any{"latitude": coord[0], "longitude": coord[1]}
		if len(coord) > 2 {
			pos["height"] = coord[2]
		}
		positions = append(positions, pos)
	}
	return positions
}

// AddDataSource loads an external data source (geojson, kml, czml) by URL.
func (m *CesiumMap) AddDataSource(sourceType string, data any, options map[string]any) {
	m.Call("addDataSource", map[string]any{
		"type":    sourceType,
		"data":    data,
		"options": options,
	})
}

func (m *CesiumMap) AddGeoJSON(data any, options map[string]any) {
	m.AddDataSource("geojson", data, options)
}

func (m *CesiumMap) AddKML(kmlURL string, options map[string]any) {
	m.AddDataSource("kml", kmlURL, options)
}

func (m *CesiumMap) AddCZML(data any, options map[string]any) {
	m.AddDataSource("czml", data, options)
}

// SetTerrain sets the terrain provider; nil resets to the default ellipsoid.
func (m *CesiumMap) SetTerrain(terrainConfig map[string]any) {
	var arg any
	if terrainConfig != nil {
		arg = terrainConfig
	}
	m.Call("setTerrain", arg)
}

// SetCesiumWorldTerrain enables Cesium World Terrain (requires a token).
func (m *CesiumMap) SetCesiumWorldTerrain(requestWaterMask bool, requestVertexNormals bool) {
	m.SetTerrain(map[string]any{
		"type":                 "cesium-world-terrain",
		"requestWaterMask":     requestWaterMask,
		"requestVertexNormals": requestVertexNormals,
	})
}

func (m *CesiumMap) SetImagery(imageryConfig map[string]any) {
	m.Call("setImagery", imageryConfig)
}

func (m *CesiumMap) SetSceneMode3D()       { m.Call("setSceneMode3D") }
func (m *CesiumMap) SetSceneMode2D()       { m.Call("setSceneMode2D") }
func (m *CesiumMap) SetSceneModeColumbus() { m.Call("setSceneModeColumbus") }

func (m *CesiumMap) EnableLighting(enabled bool) {
	m.Call("enableLighting", enabled)
}

func (m *CesiumMap) EnableFog(enabled bool) {
	m.Call("enableFog", enabled)
}

func (m *CesiumMap) ZoomToEntity(entityId string) {
	m.Call("zoomToEntity", entityId)
}

// Home resets the camera to the default globe view.
func (m *CesiumMap) Home() {
	m.Call("home")
}

// ClearEntities removes every stored entity.
func (m *CesiumMap) ClearEntities() {
	for entityId := range m.GetLayers() {
		m.RemoveEntity(entityId)
	}
}
