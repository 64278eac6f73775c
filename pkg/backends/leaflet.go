// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"

	"github.com/opengeos/anymap-sub000/pkg/mapcmd"
	"github.com/opengeos/anymap-sub000/pkg/mapconfig"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

const (
	Trait_TileLayer   = "tile_layer"
	Trait_Attribution = "attribution"
	Trait_MapOptions  = "map_options"
)

// LeafletMap is the Leaflet backend.  Unlike the GL backends there is no
// source/layer split: every feature (marker, circle, polygon, geojson, tile)
// is one layer record, and coordinates are [lat, lng] end to end.
type LeafletMap struct {
	*mapwidget.MapWidget
}

type LeafletOptions struct {
	Center     []float64 // [lat, lng]
	Zoom       float64
	Width      string
	Height     string
	TileLayer  string // basemap catalog name, defaults to "OpenStreetMap"
	MapOptions map[string]any
}

func MakeLeafletMap(opts LeafletOptions) *LeafletMap {
	if opts.TileLayer == "" {
		opts.TileLayer = "OpenStreetMap"
	}
	if opts.MapOptions == nil {
		opts.MapOptions = map[string]any{}
	}
	w := mapwidget.MakeMapWidget(Backend_Leaflet, map[string]any{
		Trait_TileLayer:   "OpenStreetMap",
		Trait_Attribution: "",
		Trait_MapOptions:  map[string]any{},
	})
	m := &LeafletMap{w}
	applyCommonOptions(w, opts.Center, opts.Zoom, opts.Width, opts.Height)
	w.Traits().Set(Trait_TileLayer, opts.TileLayer)
	w.Traits().Set(Trait_MapOptions, opts.MapOptions)
	return m
}

// nextLayerId generates "{prefix}_{n}" ids the way auto-added features are
// named, n being the current layer count.
func (m *LeafletMap) nextLayerId(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, len(m.GetLayers()))
}

// AddTileLayer adds an xyz tile layer from a URL template.
func (m *LeafletMap) AddTileLayer(urlTemplate string, attribution string, layerId string) string {
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
func (m *LeafletMap) AddBasemap(basemap string, layerId string) (string, error) {
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

// MarkerOptions are the optional knobs for AddMarker.
type MarkerOptions struct {
	Popup     string
	Tooltip   string
	Draggable bool
	Icon      map[string]any
}

// AddMarker adds a marker at [lat, lng] and returns its generated layer id.
func (m *LeafletMap) AddMarker(latlng []float64, opts *MarkerOptions) string {
	markerId := m.nextLayerId("marker")
	config := map[string]any{
		"type":   "marker",
		"latlng": latlng,
	}
	if opts != nil {
		config["popup"] = opts.Popup
		config["tooltip"] = opts.Tooltip
		config["draggable"] = opts.Draggable
		if opts.Icon != nil {
			config["icon"] = opts.Icon
		}
	}
	m.AddLayer(markerId, config)
	return markerId
}

// AddCircle adds a circle of radius meters centered at [lat, lng].
func (m *LeafletMap) AddCircle(latlng []float64, radius float64, style map[string]any) string {
	circleId := m.nextLayerId("circle")
	config := map[string]any{
		"type":        "circle",
		"latlng":      latlng,
		"radius":      radius,
		"color":       "blue",
		"fillColor":   "blue",
		"fillOpacity": 0.2,
	}
	for k, v := range style {
		config[k] = v
	}
	m.AddLayer(circleId, config)
	return circleId
}

// AddPolygon adds a polygon from [[lat, lng], ...] vertices.
func (m *LeafletMap) AddPolygon(latlngs [][]float64, style map[string]any) string {
	polygonId := m.nextLayerId("polygon")
	config := map[string]any{
		"type":        "polygon",
		"latlngs":     latlngs,
		"color":       "blue",
		"fillColor":   "blue",
		"fillOpacity": 0.2,
	}
	for k, v := range style {
		config[k] = v
	}
	m.AddLayer(polygonId, config)
	return polygonId
}

// AddPolyline adds a polyline from [[lat, lng], ...] vertices.
func (m *LeafletMap) AddPolyline(latlngs [][]float64, style map[string]any) string {
	polylineId := m.nextLayerId("polyline")
	config := map[string]any{
		"type":    "polyline",
		"latlngs": latlngs,
		"color":   "blue",
		"weight":  3,
	}
	for k, v := range style {
		config[k] = v
	}
	m.AddLayer(polylineId, config)
	return polylineId
}

// AddGeoJSON adds a GeoJSON feature collection with optional styling.
func (m *LeafletMap) AddGeoJSON(data map[string]any, style map[string]any) string {
	geojsonId := m.nextLayerId("geojson")
	config := map[string]any{
		"type": "geojson",
		"data": data,
	}
	if style != nil {
		config["style"] = style
	}
	m.AddLayer(geojsonId, config)
	return geojsonId
}

// AddGeoTIFF streams a Cloud Optimized GeoTIFF rendered browser-side via
// HTTP range requests.
func (m *LeafletMap) AddGeoTIFF(url string, layerId string, fitBounds bool) string {
	if layerId == "" {
		layerId = m.nextLayerId("geotiff")
	}
	m.AddLayer(layerId, map[string]any{
		"type":       "geotiff",
		"url":        url,
		"fit_bounds": fitBounds,
	})
	return layerId
}

// FitBounds fits the view to [[south, west], [north, east]].
func (m *LeafletMap) FitBounds(bounds [][]float64) {
	m.CallJS(&mapcmd.FitBoundsCommand{Bounds: bounds})
}
