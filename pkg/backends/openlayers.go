// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"

	"github.com/opengeos/anymap-sub000/pkg/mapcmd"
	"github.com/opengeos/anymap-sub000/pkg/mapconfig"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

// OpenLayersMap is the OpenLayers backend.  It keeps the source/layer split
// for vector data (like the GL backends) but styles features with plain
// option maps (like Leaflet).  Wire coordinates are [lng, lat].
type OpenLayersMap struct {
	*mapwidget.MapWidget
}

type OpenLayersOptions struct {
	Center    []float64 // [lat, lng]
	Zoom      float64
	Width     string
	Height    string
	TileLayer string // basemap catalog name, defaults to "OpenStreetMap"
}

func MakeOpenLayersMap(opts OpenLayersOptions) *OpenLayersMap {
	if opts.TileLayer == "" {
		opts.TileLayer = "OpenStreetMap"
	}
	w := mapwidget.MakeMapWidget(Backend_OpenLayers, map[string]any{
		Trait_TileLayer: "OpenStreetMap",
	})
	m := &OpenLayersMap{w}
	applyCommonOptions(w, opts.Center, opts.Zoom, opts.Width, opts.Height)
	w.Traits().Set(Trait_TileLayer, opts.TileLayer)
	return m
}

func (m *OpenLayersMap) nextLayerId(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, len(m.GetLayers()))
}

// AddTileLayer adds an xyz tile layer from a URL template.
func (m *OpenLayersMap) AddTileLayer(urlTemplate string, attribution string, layerId string) string {
	if layerId == "" {
		layerId = m.nextLayerId("tile_layer")
	}
	m.AddLayer(layerId, map[string]any{
		"type":        "tile",
		"url":         urlTemplate,
		"attribution": attribution,
	})
	return layerId
}

// AddBasemap adds a named provider from the basemap catalog.
func (m *OpenLayersMap) AddBasemap(basemap string, layerId string) (string, error) {
	fullConfig := mapconfig.ReadFullConfig()
	provider, ok := fullConfig.GetBasemap(basemap)
	if !ok {
		return "", fmt.Errorf("basemap %q not found, available: %v", basemap, fullConfig.BasemapNames())
	}
	if layerId == "" {
		layerId = provider.Name
	}
	return m.AddTileLayer(provider.URL, provider.Attribution, layerId), nil
}

// AddVectorLayer adds a vector layer backed by a GeoJSON source.  The
// source id is derived as "{layerId}_source".
func (m *OpenLayersMap) AddVectorLayer(layerId string, geojsonData map[string]any, style map[string]any) {
	sourceId := layerId + "_source"
	m.AddSource(sourceId, map[string]any{"type": "geojson", "data": geojsonData})
	config := map[string]any{
		"type":   "vector",
		"source": sourceId,
	}
	if style != nil {
		config["style"] = style
	}
	m.AddLayer(layerId, config)
}

// AddMarker places a marker at lat/lng.  The wire record carries [lng, lat].
func (m *OpenLayersMap) AddMarker(lat float64, lng float64, popup string) {
	m.CallJS(&mapcmd.AddMarkerCommand{Coordinates: []float64{lng, lat}, Popup: popup})
}

// AddCircle adds a circle feature of radius meters centered at [lat, lng].
func (m *OpenLayersMap) AddCircle(lat float64, lng float64, radius float64, style map[string]any) string {
	circleId := m.nextLayerId("circle")
	config := map[string]any{
		"type":        "circle",
		"coordinates": []float64{lng, lat},
		"radius":      radius,
	}
	if style != nil {
		config["style"] = style
	}
	m.AddLayer(circleId, config)
	return circleId
}

// FitBounds fits the view to [[west, south], [east, north]].
func (m *OpenLayersMap) FitBounds(bounds [][]float64, padding int) {
	if padding <= 0 {
		padding = 50
	}
	m.CallJS(&mapcmd.FitBoundsCommand{Bounds: bounds, Options: map[string]any{"padding": padding}})
}
