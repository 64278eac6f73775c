// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

const (
	Trait_Antialias = "antialias"

	DefaultMapLibreStyle = "https://demotiles.maplibre.org/style.json"
)

// MapLibreMap is the MapLibre GL JS backend.  Coordinates on the wire are
// [lng, lat]; the host API takes (lat, lng) like every other backend.
type MapLibreMap struct {
	glMap
}

type MapLibreOptions struct {
	Center    []float64 // [lat, lng]
	Zoom      float64
	Style     any // style URL or full style object
	Width     string
	Height    string
	Bearing   float64
	Pitch     float64
	Antialias bool
}

func MakeMapLibreMap(opts MapLibreOptions) *MapLibreMap {
	if opts.Style == nil || opts.Style == "" {
		opts.Style = DefaultMapLibreStyle
	}
	w := mapwidget.MakeMapWidget(Backend_MapLibre, map[string]any{
		Trait_Antialias: true,
	})
	m := &MapLibreMap{glMap{w}}
	applyCommonOptions(w, opts.Center, opts.Zoom, opts.Width, opts.Height)
	w.Traits().Set(mapwidget.Trait_Style, opts.Style)
	if opts.Bearing != 0 {
		w.Traits().Set(mapwidget.Trait_Bearing, opts.Bearing)
	}
	if opts.Pitch != 0 {
		w.Traits().Set(mapwidget.Trait_Pitch, opts.Pitch)
	}
	w.Traits().Set(Trait_Antialias, opts.Antialias)
	return m
}

func applyCommonOptions(w *mapwidget.MapWidget, center []float64, zoom float64, width string, height string) {
	if len(center) == 2 {
		w.SetCenter(center[0], center[1])
	}
	if zoom != 0 {
		w.SetZoom(zoom)
	}
	if width != "" {
		w.Traits().Set(mapwidget.Trait_Width, width)
	}
	if height != "" {
		w.Traits().Set(mapwidget.Trait_Height, height)
	}
}
