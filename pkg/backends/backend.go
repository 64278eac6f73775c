// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// backends implements one widget type per supported mapping library.  Each
// type embeds mapwidget.MapWidget for the wire traits and queues and adds
// the library-specific operation surface.  Rendering, projection math, and
// tile fetching belong to the browser libraries referenced by CDN URL.
package backends

const (
	Backend_MapLibre   = "maplibre"
	Backend_Mapbox     = "mapbox"
	Backend_Leaflet    = "leaflet"
	Backend_OpenLayers = "openlayers"
	Backend_Cesium     = "cesium"
	Backend_Potree     = "potree"
	Backend_DeckGL     = "deckgl"
	Backend_Compare    = "compare"
)

// Assets lists the CDN script/style dependencies one backend needs in a
// page.  The exporter and the live server inject these idempotently.
type Assets struct {
	ScriptURLs []string `json:"scripturls"`
	StyleURLs  []string `json:"styleurls"`
}

var backendAssets = map[string]Assets{
	Backend_MapLibre: {
		ScriptURLs: []string{"https://unpkg.com/maplibre-gl@5.6.1/dist/maplibre-gl.js"},
		StyleURLs:  []string{"https://unpkg.com/maplibre-gl@5.6.1/dist/maplibre-gl.css"},
	},
	Backend_Mapbox: {
		ScriptURLs: []string{"https://api.mapbox.com/mapbox-gl-js/v3.13.0/mapbox-gl.js"},
		StyleURLs:  []string{"https://api.mapbox.com/mapbox-gl-js/v3.13.0/mapbox-gl.css"},
	},
	Backend_Leaflet: {
		ScriptURLs: []string{"https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"},
		StyleURLs:  []string{"https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"},
	},
	Backend_OpenLayers: {
		ScriptURLs: []string{"https://cdn.jsdelivr.net/npm/ol@v10.1.0/dist/ol.js"},
		StyleURLs:  []string{"https://cdn.jsdelivr.net/npm/ol@v10.1.0/ol.css"},
	},
	Backend_Cesium: {
		ScriptURLs: []string{"https://cesium.com/downloads/cesiumjs/releases/1.119/Build/Cesium/Cesium.js"},
		StyleURLs:  []string{"https://cesium.com/downloads/cesiumjs/releases/1.119/Build/Cesium/Widgets/widgets.css"},
	},
	Backend_Potree: {
		ScriptURLs: []string{
			"https://cdn.jsdelivr.net/gh/potree/potree@1.8.2/libs/three.js/build/three.min.js",
			"https://cdn.jsdelivr.net/gh/potree/potree@1.8.2/build/potree/potree.min.js",
		},
		StyleURLs: []string{"https://cdn.jsdelivr.net/gh/potree/potree@1.8.2/build/potree/potree.css"},
	},
	Backend_DeckGL: {
		ScriptURLs: []string{"https://unpkg.com/deck.gl@9.0.38/dist.min.js"},
	},
	Backend_Compare: {
		ScriptURLs: []string{
			"https://unpkg.com/maplibre-gl@5.6.1/dist/maplibre-gl.js",
			"https://unpkg.com/@maplibre/maplibre-gl-compare@0.5.0/dist/maplibre-gl-compare.js",
		},
		StyleURLs: []string{
			"https://unpkg.com/maplibre-gl@5.6.1/dist/maplibre-gl.css",
			"https://unpkg.com/@maplibre/maplibre-gl-compare@0.5.0/dist/maplibre-gl-compare.css",
		},
	},
}

func AssetsFor(backend string) Assets {
	return backendAssets[backend]
}

// ExclusiveBackends render into a single global container and support one
// concurrent live view.
var ExclusiveBackends = map[string]bool{
	Backend_Potree: true,
}
