// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/opengeos/anymap-sub000/pkg/mapcmd"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

const (
	Trait_Controller = "controller"
	Trait_MaxZoom    = "max_zoom"
	Trait_MinZoom    = "min_zoom"
)

// DeckGLMap is the deck.gl backend for large-scale data visualization.
// Layers are deck.gl layer descriptors ({"type": "ScatterplotLayer", ...})
// stored in the layer mapping like any other backend.
type DeckGLMap struct {
	*mapwidget.MapWidget
}

type DeckGLOptions struct {
	Center     []float64 // [lat, lng]
	Zoom       float64
	Width      string
	Height     string
	Bearing    float64
	Pitch      float64
	Controller *bool   // defaults to true
	MaxZoom    float64 // defaults to 20
	MinZoom    float64
}

func MakeDeckGLMap(opts DeckGLOptions) *DeckGLMap {
	controller := true
	if opts.Controller != nil {
		controller = *opts.Controller
	}
	if opts.MaxZoom == 0 {
		opts.MaxZoom = 20.0
	}
	w := mapwidget.MakeMapWidget(Backend_DeckGL, map[string]any{
		Trait_Controller: true,
		Trait_MaxZoom:    20.0,
		Trait_MinZoom:    0.0,
	})
	m := &DeckGLMap{w}
	applyCommonOptions(w, opts.Center, opts.Zoom, opts.Width, opts.Height)
	if opts.Bearing != 0 {
		w.Traits().Set(mapwidget.Trait_Bearing, opts.Bearing)
	}
	if opts.Pitch != 0 {
		w.Traits().Set(mapwidget.Trait_Pitch, opts.Pitch)
	}
	w.Traits().Set(Trait_Controller, controller)
	w.Traits().Set(Trait_MaxZoom, opts.MaxZoom)
	w.Traits().Set(Trait_MinZoom, opts.MinZoom)
	return m
}

// SetViewState updates any subset of the deck.gl view state.
func (m *DeckGLMap) SetViewState(viewState map[string]any) {
	m.Call("setViewState", viewState)
}

// AddDeckLayer stores a deck.gl layer descriptor and queues the view call.
// The descriptor's "type" is the deck.gl layer class name.
func (m *DeckGLMap) AddDeckLayer(layerId string, layerType string, props map[string]any) {
	config := map[string]any{"type": layerType}
	for k, v := range props {
		config[k] = v
	}
	m.AddLayer(layerId, config)
}

// AddScatterplotLayer renders points from data records carrying a position
// field.
func (m *DeckGLMap) AddScatterplotLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":            anySlice(data),
		"getPosition":     "position",
		"getRadius":       100,
		"getFillColor":    []any{255, 0, 0, 255},
		"radiusScale":     1.0,
		"radiusMinPixels": 1,
		"radiusMaxPixels": 100,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "ScatterplotLayer", merged)
}

func (m *DeckGLMap) AddLineLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":              anySlice(data),
		"getSourcePosition": "sourcePosition",
		"getTargetPosition": "targetPosition",
		"getColor":          []any{0, 255, 0, 255},
		"getWidth":          1,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "LineLayer", merged)
}

func (m *DeckGLMap) AddArcLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":              anySlice(data),
		"getSourcePosition": "sourcePosition",
		"getTargetPosition": "targetPosition",
		"getSourceColor":    []any{0, 128, 255, 255},
		"getTargetColor":    []any{255, 0, 128, 255},
		"getWidth":          1,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "ArcLayer", merged)
}

func (m *DeckGLMap) AddPathLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":     anySlice(data),
		"getPath":  "path",
		"getColor": []any{0, 0, 255, 255},
		"getWidth": 1,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "PathLayer", merged)
}

func (m *DeckGLMap) AddPolygonLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":         anySlice(data),
		"getPolygon":   "polygon",
		"getFillColor": []any{0, 0, 255, 128},
		"getLineColor": []any{0, 0, 0, 255},
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "PolygonLayer", merged)
}

func (m *DeckGLMap) AddGeoJSONLayer(layerId string, data map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":         data,
		"getFillColor": []any{0, 0, 255, 128},
		"getLineColor": []any{0, 0, 0, 255},
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "GeoJsonLayer", merged)
}

func (m *DeckGLMap) AddHexagonLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":        anySlice(data),
		"getPosition": "position",
		"radius":      1000,
		"extruded":    true,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "HexagonLayer", merged)
}

func (m *DeckGLMap) AddGridLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":        anySlice(data),
		"getPosition": "position",
		"cellSize":    1000,
		"extruded":    true,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "GridLayer", merged)
}

func (m *DeckGLMap) AddHeatmapLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":        anySlice(data),
		"getPosition": "position",
		"getWeight":   1,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "HeatmapLayer", merged)
}

func (m *DeckGLMap) AddColumnLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":         anySlice(data),
		"getPosition":  "position",
		"getElevation": "elevation",
		"radius":       250,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "ColumnLayer", merged)
}

func (m *DeckGLMap) AddTextLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":        anySlice(data),
		"getPosition": "position",
		"getText":     "text",
		"getSize":     16,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "TextLayer", merged)
}

func (m *DeckGLMap) AddIconLayer(layerId string, data []map[string]any, props map[string]any) {
	merged := map[string]any{
		"data":        anySlice(data),
		"getPosition": "position",
		"getIcon":     "icon",
		"getSize":     32,
	}
	for k, v := range props {
		merged[k] = v
	}
	m.AddDeckLayer(layerId, "IconLayer", merged)
}

// UpdateLayer merges new props into an existing layer descriptor (last write
// wins) and queues an updateLayer call.
func (m *DeckGLMap) UpdateLayer(layerId string, props map[string]any) {
	layers := m.GetLayers()
	config, _ := layers[layerId].(map[string]any)
	if config == nil {
		config = map[string]any{}
	}
	for k, v := range props {
		config[k] = v
	}
	layers[layerId] = config
	m.Traits().Set(mapwidget.Trait_Layers, layers)
	m.Call("updateLayer", layerId, props)
}

// FitBounds fits the view to [[west, south], [east, north]].
func (m *DeckGLMap) FitBounds(bounds [][]float64, padding int) {
	if padding <= 0 {
		padding = 20
	}
	m.CallJS(&mapcmd.FitBoundsCommand{Bounds: bounds, Options: map[string]any{"padding": padding}})
}

func (m *DeckGLMap) EnableController(enabled bool) {
	m.Traits().Set(Trait_Controller, enabled)
}

func (m *DeckGLMap) SetZoomRange(minZoom float64, maxZoom float64) {
	m.Traits().Set(Trait_MinZoom, minZoom)
	m.Traits().Set(Trait_MaxZoom, maxZoom)
}

func anySlice[T any](in []T) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	return out
}
