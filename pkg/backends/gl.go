// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/opengeos/anymap-sub000/pkg/mapcmd"
	"github.com/opengeos/anymap-sub000/pkg/mapconfig"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
	"github.com/opengeos/anymap-sub000/pkg/util/utilfn"
)

// glMap holds the operation surface MapLibre and Mapbox share.  Both
// libraries use the same source/layer split, paint/layout property model,
// and [lng, lat] coordinate order.
type glMap struct {
	*mapwidget.MapWidget
}

// AddGeoJSONLayer adds a geojson source plus one styled layer on it.  The
// source id is derived as "{layerId}_source".
func (m *glMap) AddGeoJSONLayer(layerId string, geojsonData map[string]any, layerType string, paint map[string]any) {
	if layerType == "" {
		layerType = "fill"
	}
	sourceId := layerId + "_source"
	m.AddSource(sourceId, map[string]any{"type": "geojson", "data": geojsonData})
	layerConfig := map[string]any{"id": layerId, "type": layerType, "source": sourceId}
	if paint != nil {
		layerConfig["paint"] = paint
	}
	m.AddLayer(layerId, layerConfig)
}

// AddMarker places a marker at lat/lng.  The wire record carries [lng, lat],
// matching the GL libraries' coordinate order.
func (m *glMap) AddMarker(lat float64, lng float64, popup string) {
	m.CallJS(&mapcmd.AddMarkerCommand{Coordinates: []float64{lng, lat}, Popup: popup})
}

// FitBounds fits the viewport to [[west, south], [east, north]].
func (m *glMap) FitBounds(bounds [][]float64, padding int) {
	if padding <= 0 {
		padding = 50
	}
	m.CallJS(&mapcmd.FitBoundsCommand{Bounds: bounds, Options: map[string]any{"padding": padding}})
}

// FlyTo animates the camera to lat/lng.  The wire record carries the center
// as [lng, lat], matching the GL libraries' coordinate order.
func (m *glMap) FlyTo(lat float64, lng float64, zoom *float64) {
	options := map[string]any{"center": []float64{lng, lat}}
	if zoom != nil {
		options["zoom"] = *zoom
	}
	m.CallJS(&mapcmd.FlyToCommand{Options: options})
}

func (m *glMap) SetStyle(style any) {
	m.Traits().Set(mapwidget.Trait_Style, style)
	m.CallJS(&mapcmd.SetStyleCommand{Style: style})
}

func (m *glMap) SetProjection(projection map[string]any) {
	m.Traits().Set(mapwidget.Trait_Projection, projection)
	m.CallJS(&mapcmd.SetProjectionCommand{Projection: projection})
}

// SetTerrain enables 3D terrain; nil removes it.
func (m *glMap) SetTerrain(terrainConfig map[string]any) {
	m.CallJS(&mapcmd.SetTerrainCommand{Terrain: terrainConfig})
}

func (m *glMap) SetPaintProperty(layerId string, name string, value any) {
	m.Call("setPaintProperty", layerId, name, value)
}

func (m *glMap) SetLayoutProperty(layerId string, name string, value any) {
	m.Call("setLayoutProperty", layerId, name, value)
}

func (m *glMap) SetVisibility(layerId string, visible bool) {
	visibility := "visible"
	if !visible {
		visibility = "none"
	}
	m.SetLayoutProperty(layerId, "visibility", visibility)
}

// SetOpacity adjusts the opacity paint property appropriate for the layer's
// type.  Unknown layer ids are logged and skipped.
func (m *glMap) SetOpacity(layerId string, opacity float64) {
	layerType := m.GetLayerType(layerId)
	if layerType == "" {
		log.Printf("[warning] layer %q not found, cannot set opacity\n", layerId)
		return
	}
	prop, ok := opacityPropForLayerType(layerType)
	if !ok {
		log.Printf("[warning] layer type %q has no opacity property\n", layerType)
		return
	}
	m.SetPaintProperty(layerId, prop, opacity)
}

func opacityPropForLayerType(layerType string) (string, bool) {
	switch layerType {
	case "fill":
		return "fill-opacity", true
	case "line":
		return "line-opacity", true
	case "circle":
		return "circle-opacity", true
	case "symbol":
		return "icon-opacity", true
	case "raster":
		return "raster-opacity", true
	case "fill-extrusion":
		return "fill-extrusion-opacity", true
	case "heatmap":
		return "heatmap-opacity", true
	}
	return "", false
}

// GetLayerType returns the stored layer's "type" field, empty when the layer
// id is unknown.
func (m *glMap) GetLayerType(layerId string) string {
	config, ok := m.GetLayers()[layerId].(map[string]any)
	if !ok {
		return ""
	}
	layerType, _ := config["type"].(string)
	return layerType
}

// AddTileLayer adds an xyz raster tile layer.
func (m *glMap) AddTileLayer(layerId string, sourceURL string, opts *TileLayerOptions) {
	sourceId := layerId + "_source"
	sourceConfig := map[string]any{"type": "raster", "tiles": []any{sourceURL}, "tileSize": 256}
	layerConfig := map[string]any{"id": layerId, "type": "raster", "source": sourceId}
	if opts != nil {
		if opts.Attribution != "" {
			sourceConfig["attribution"] = opts.Attribution
		}
		if opts.MinZoom > 0 {
			sourceConfig["minzoom"] = opts.MinZoom
		}
		if opts.MaxZoom > 0 {
			sourceConfig["maxzoom"] = opts.MaxZoom
		}
		if opts.Paint != nil {
			layerConfig["paint"] = opts.Paint
		}
		if opts.Layout != nil {
			layerConfig["layout"] = opts.Layout
		}
	}
	m.AddSource(sourceId, sourceConfig)
	m.AddLayer(layerId, layerConfig)
}

// TileLayerOptions are the optional knobs for AddTileLayer.
type TileLayerOptions struct {
	Attribution string
	MinZoom     int
	MaxZoom     int
	Paint       map[string]any
	Layout      map[string]any
}

// AddRasterLayer adds a raster layer from a tile URL template.
func (m *glMap) AddRasterLayer(layerId string, sourceURL string, paint map[string]any, layout map[string]any) {
	sourceId := layerId + "_source"
	m.AddSource(sourceId, map[string]any{"type": "raster", "tiles": []any{sourceURL}, "tileSize": 256})
	layerConfig := map[string]any{"id": layerId, "type": "raster", "source": sourceId}
	if paint != nil {
		layerConfig["paint"] = paint
	}
	if layout != nil {
		layerConfig["layout"] = layout
	}
	m.AddLayer(layerId, layerConfig)
}

// AddVectorLayer adds a vector tile source and a styled layer on one of its
// source layers.
func (m *glMap) AddVectorLayer(layerId string, sourceURL string, sourceLayer string, layerType string, paint map[string]any, layout map[string]any) {
	if layerType == "" {
		layerType = "fill"
	}
	sourceId := layerId + "_source"
	m.AddSource(sourceId, map[string]any{"type": "vector", "url": sourceURL})
	layerConfig := map[string]any{
		"id":           layerId,
		"type":         layerType,
		"source":       sourceId,
		"source-layer": sourceLayer,
	}
	if paint != nil {
		layerConfig["paint"] = paint
	}
	if layout != nil {
		layerConfig["layout"] = layout
	}
	m.AddLayer(layerId, layerConfig)
}

// AddImageLayer overlays a georeferenced image.  Coordinates are the four
// corners [[lng, lat] x4] in top-left, top-right, bottom-right, bottom-left
// order.
func (m *glMap) AddImageLayer(layerId string, imageURL string, coordinates [][]float64, opacity float64) {
	sourceId := layerId + "_source"
	m.AddSource(sourceId, map[string]any{"type": "image", "url": imageURL, "coordinates": coordinates})
	layerConfig := map[string]any{
		"id":     layerId,
		"type":   "raster",
		"source": sourceId,
		"paint":  map[string]any{"raster-opacity": opacity},
	}
	m.AddLayer(layerId, layerConfig)
}

// AddCOGLayer streams a Cloud Optimized GeoTIFF via the cog:// protocol
// handler registered browser-side.
func (m *glMap) AddCOGLayer(layerId string, cogURL string, paint map[string]any) {
	sourceId := layerId + "_source"
	m.AddSource(sourceId, map[string]any{"type": "raster", "url": "cog://" + cogURL, "tileSize": 256})
	layerConfig := map[string]any{"id": layerId, "type": "raster", "source": sourceId}
	if paint != nil {
		layerConfig["paint"] = paint
	}
	m.AddLayer(layerId, layerConfig)
}

// AddPMTiles adds a PMTiles vector archive.  With a nil layers slice a
// default landuse/roads/buildings/water styling is applied.
func (m *glMap) AddPMTiles(pmtilesURL string, layerId string, layers []map[string]any) {
	if layerId == "" {
		parts := strings.Split(pmtilesURL, "/")
		layerId = strings.TrimSuffix(parts[len(parts)-1], ".pmtiles")
	}
	sourceId := layerId + "_source"
	m.AddSource(sourceId, map[string]any{
		"type":        "vector",
		"url":         "pmtiles://" + pmtilesURL,
		"attribution": "PMTiles",
	})
	if layers == nil {
		layers = defaultPMTilesLayers(layerId, sourceId)
	}
	for _, layerConfig := range layers {
		id, _ := layerConfig["id"].(string)
		if id == "" {
			continue
		}
		m.AddLayer(id, layerConfig)
	}
}

func defaultPMTilesLayers(layerId string, sourceId string) []map[string]any {
	return []map[string]any{
		{
			"id":           layerId + "_landuse",
			"source":       sourceId,
			"source-layer": "landuse",
			"type":         "fill",
			"paint":        map[string]any{"fill-color": "steelblue", "fill-opacity": 0.5},
		},
		{
			"id":           layerId + "_roads",
			"source":       sourceId,
			"source-layer": "roads",
			"type":         "line",
			"paint":        map[string]any{"line-color": "black", "line-width": 1},
		},
		{
			"id":           layerId + "_buildings",
			"source":       sourceId,
			"source-layer": "buildings",
			"type":         "fill",
			"paint":        map[string]any{"fill-color": "gray", "fill-opacity": 0.7},
		},
		{
			"id":           layerId + "_water",
			"source":       sourceId,
			"source-layer": "water",
			"type":         "fill",
			"paint":        map[string]any{"fill-color": "lightblue", "fill-opacity": 0.8},
		},
	}
}

// AddBasemap adds a named provider from the basemap catalog as a raster
// tile layer.  The family shorthand ("OpenStreetMap") resolves to the first
// provider in that family.
func (m *glMap) AddBasemap(basemap string, layerId string) error {
	fullConfig := mapconfig.ReadFullConfig()
	provider, ok := fullConfig.GetBasemap(basemap)
	if !ok {
		return fmt.Errorf("basemap %q not found, available: %v", basemap, fullConfig.BasemapNames())
	}
	if layerId == "" {
		layerId = provider.Name
	}
	m.AddTileLayer(layerId, provider.URL, &TileLayerOptions{
		Attribution: provider.Attribution,
		MaxZoom:     provider.MaxZoom,
		Paint:       map[string]any{"raster-opacity": 1.0},
	})
	return nil
}

// AddDrawControl attaches a geometry draw/edit control.  Duplicate positions
// are rejected by the control store under the "draw_{position}" key.
func (m *glMap) AddDrawControl(position string, controls map[string]bool, defaultMode string) {
	if position == "" {
		position = "top-left"
	}
	if controls == nil {
		controls = map[string]bool{"point": true, "line_string": true, "polygon": true, "trash": true}
	}
	if defaultMode == "" {
		defaultMode = "simple_select"
	}
	controlsAny := make(map[string]any, len(controls))
	for name, enabled := range controls {
		controlsAny[name] = enabled
	}
	drawOptions := map[string]any{
		"displayControlsDefault": false,
		"controls":               controlsAny,
		"defaultMode":            defaultMode,
		"keybindings":            true,
		"touchEnabled":           true,
	}
	m.AddControl("draw", position, drawOptions)
}

// AddLayerControl attaches a collapsible panel for toggling per-layer
// visibility and opacity.  A nil layer list includes every current layer;
// the synthetic "Background" entry covers the basemap style layers.  Stored
// under the "layer_control_{position}" key.
func (m *glMap) AddLayerControl(position string, collapsed bool, layerIds []string) {
	if position == "" {
		position = "top-right"
	}
	layerStates := map[string]any{}
	if layerIds == nil || utilfn.ContainsStr(layerIds, "Background") {
		layerStates["Background"] = map[string]any{"visible": true, "opacity": 1.0, "name": "Background"}
	}
	layers := m.GetLayers()
	targets := layerIds
	if targets == nil {
		for layerId := range layers {
			targets = append(targets, layerId)
		}
		sort.Strings(targets)
	}
	for _, layerId := range targets {
		if layerId == "Background" {
			continue
		}
		if _, ok := layers[layerId]; !ok {
			continue
		}
		layerStates[layerId] = map[string]any{"visible": true, "opacity": 1.0, "name": layerId}
	}
	options := map[string]any{
		"collapsed":   collapsed,
		"layers":      layerIds,
		"layerStates": layerStates,
	}
	m.AddControl("layer_control", position, options)
}

// AddGeocoderControl attaches a place-search box.  Options pass through to
// the view control (api_url, placeholder, ...).
func (m *glMap) AddGeocoderControl(position string, options map[string]any) {
	if position == "" {
		position = "top-left"
	}
	m.AddControl("geocoder", position, options)
}

// LoadDrawData loads a GeoJSON FeatureCollection into the draw control and
// mirrors it into the draw-data trait.
func (m *glMap) LoadDrawData(geojsonData map[string]any) {
	m.Traits().Set(mapwidget.Trait_DrawData, geojsonData)
	m.Call("loadDrawData", geojsonData)
}

// GetDrawData returns the last draw state synced from the view.  An empty
// FeatureCollection is returned before any draw event arrives.
func (m *glMap) GetDrawData() map[string]any {
	var data map[string]any
	if err := m.Traits().GetAs(mapwidget.Trait_DrawData, &data); err != nil {
		log.Printf("[error] reading draw data: %v\n", err)
	}
	if len(data) == 0 {
		return map[string]any{"type": "FeatureCollection", "features": []any{}}
	}
	return data
}

func (m *glMap) ClearDrawData() {
	m.Traits().Set(mapwidget.Trait_DrawData, map[string]any{"type": "FeatureCollection", "features": []any{}})
	m.Call("clearDrawData")
}

func (m *glMap) DeleteDrawFeatures(featureIds []string) {
	ids := make([]any, 0, len(featureIds))
	for _, id := range featureIds {
		ids = append(ids, id)
	}
	m.Call("deleteDrawFeatures", ids)
}

func (m *glMap) SetDrawMode(mode string) {
	m.Call("setDrawMode", mode)
}
