// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/opengeos/anymap-sub000/pkg/mapbase"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

const (
	Trait_AccessToken = "access_token"

	DefaultMapboxStyle = "mapbox://styles/mapbox/streets-v12"
)

// MapboxMap is the Mapbox GL JS backend.  It shares the GL operation surface
// with MapLibre and adds token handling plus the Mapbox-only terrain, fog,
// and 3D-building helpers.
type MapboxMap struct {
	glMap
}

type MapboxOptions struct {
	Center      []float64 // [lat, lng]
	Zoom        float64
	Style       any
	Width       string
	Height      string
	Bearing     float64
	Pitch       float64
	AccessToken string // falls back to MAPBOX_TOKEN / MAPBOX_ACCESS_TOKEN
}

func MakeMapboxMap(opts MapboxOptions) *MapboxMap {
	if opts.Style == nil || opts.Style == "" {
		opts.Style = DefaultMapboxStyle
	}
	token := opts.AccessToken
	if token == "" {
		token = mapbase.GetMapboxToken()
	}
	w := mapwidget.MakeMapWidget(Backend_Mapbox, map[string]any{
		Trait_AccessToken: "",
	})
	m := &MapboxMap{glMap{w}}
	applyCommonOptions(w, opts.Center, opts.Zoom, opts.Width, opts.Height)
	w.Traits().Set(mapwidget.Trait_Style, opts.Style)
	if opts.Bearing != 0 {
		w.Traits().Set(mapwidget.Trait_Bearing, opts.Bearing)
	}
	if opts.Pitch != 0 {
		w.Traits().Set(mapwidget.Trait_Pitch, opts.Pitch)
	}
	w.Traits().Set(Trait_AccessToken, token)
	return m
}

func (m *MapboxMap) SetAccessToken(token string) {
	m.Traits().Set(Trait_AccessToken, token)
}

func (m *MapboxMap) AccessToken() string {
	token, _ := m.Traits().Get(Trait_AccessToken).(string)
	return token
}

// SetFog sets atmospheric fog; nil removes it.
func (m *MapboxMap) SetFog(fogConfig map[string]any) {
	var arg any
	if fogConfig != nil {
		arg = fogConfig
	}
	m.Call("setFog", arg)
}

// Add3DBuildings adds the standard extruded building layer from the Mapbox
// composite source.
func (m *MapboxMap) Add3DBuildings(layerId string) {
	if layerId == "" {
		layerId = "3d-buildings"
	}
	heightInterp := []any{
		"interpolate", []any{"linear"}, []any{"zoom"},
		15, 0,
		15.05, []any{"get", "height"},
	}
	baseInterp := []any{
		"interpolate", []any{"linear"}, []any{"zoom"},
		15, 0,
		15.05, []any{"get", "min_height"},
	}
	layerConfig := map[string]any{
		"id":           layerId,
		"source":       "composite",
		"source-layer": "building",
		"filter":       []any{"==", "extrude", "true"},
		"type":         "fill-extrusion",
		"minzoom":      15,
		"paint": map[string]any{
			"fill-extrusion-color":   "#aaa",
			"fill-extrusion-height":  heightInterp,
			"fill-extrusion-base":    baseInterp,
			"fill-extrusion-opacity": 0.6,
		},
	}
	m.AddLayer(layerId, layerConfig)
}
