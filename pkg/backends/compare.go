// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"

	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

const (
	Trait_LeftMapConfig  = "left_map_config"
	Trait_RightMapConfig = "right_map_config"
	Trait_Orientation    = "orientation"
	Trait_Mousemove      = "mousemove"
	Trait_SliderPosition = "slider_position"
	Trait_CompareBackend = "backend"
	Trait_SyncCenter     = "sync_center"
	Trait_SyncZoom       = "sync_zoom"
	Trait_SyncBearing    = "sync_bearing"
	Trait_SyncPitch      = "sync_pitch"
)

// MapCompare is the side-by-side comparison widget: two GL maps under one
// swipe slider.  It reuses the widget base for traits and queues but has no
// layer/source surface of its own; each side is configured wholesale through
// its config map.
type MapCompare struct {
	*mapwidget.MapWidget
}

type MapCompareOptions struct {
	LeftMap     map[string]any
	RightMap    map[string]any
	Backend     string // "maplibre" or "mapbox", defaults to maplibre
	Orientation string // "vertical" or "horizontal"
	Mousemove   bool
	Width       string
	Height      string
	SyncCenter  *bool // all sync options default to true
	SyncZoom    *bool
	SyncBearing *bool
	SyncPitch   *bool
}

func MakeMapCompare(opts MapCompareOptions) (*MapCompare, error) {
	if opts.Backend == "" {
		opts.Backend = Backend_MapLibre
	}
	if opts.Backend != Backend_MapLibre && opts.Backend != Backend_Mapbox {
		return nil, fmt.Errorf("compare backend must be %q or %q, got %q", Backend_MapLibre, Backend_Mapbox, opts.Backend)
	}
	if opts.Orientation == "" {
		opts.Orientation = "vertical"
	}
	if err := validateOrientation(opts.Orientation); err != nil {
		return nil, err
	}
	if opts.LeftMap == nil {
		opts.LeftMap = defaultCompareConfig(opts.Backend, false)
	}
	if opts.RightMap == nil {
		opts.RightMap = defaultCompareConfig(opts.Backend, true)
	}
	w := mapwidget.MakeMapWidget(Backend_Compare, map[string]any{
		Trait_LeftMapConfig:  map[string]any{},
		Trait_RightMapConfig: map[string]any{},
		Trait_Orientation:    "vertical",
		Trait_Mousemove:      false,
		Trait_SliderPosition: 0.5,
		Trait_CompareBackend: Backend_MapLibre,
		Trait_SyncCenter:     true,
		Trait_SyncZoom:       true,
		Trait_SyncBearing:    true,
		Trait_SyncPitch:      true,
	})
	m := &MapCompare{w}
	applyCommonOptions(w, nil, 0, opts.Width, opts.Height)
	w.Traits().Set(Trait_LeftMapConfig, opts.LeftMap)
	w.Traits().Set(Trait_RightMapConfig, opts.RightMap)
	w.Traits().Set(Trait_CompareBackend, opts.Backend)
	w.Traits().Set(Trait_Orientation, opts.Orientation)
	w.Traits().Set(Trait_Mousemove, opts.Mousemove)
	if opts.SyncCenter != nil {
		w.Traits().Set(Trait_SyncCenter, *opts.SyncCenter)
	}
	if opts.SyncZoom != nil {
		w.Traits().Set(Trait_SyncZoom, *opts.SyncZoom)
	}
	if opts.SyncBearing != nil {
		w.Traits().Set(Trait_SyncBearing, *opts.SyncBearing)
	}
	if opts.SyncPitch != nil {
		w.Traits().Set(Trait_SyncPitch, *opts.SyncPitch)
	}
	return m, nil
}

func defaultCompareConfig(backend string, right bool) map[string]any {
	style := DefaultMapLibreStyle
	if backend == Backend_Mapbox {
		style = DefaultMapboxStyle
		if right {
			style = "mapbox://styles/mapbox/satellite-v9"
		}
	}
	return map[string]any{
		"center": []any{0.0, 0.0},
		"zoom":   2.0,
		"style":  style,
	}
}

func validateOrientation(orientation string) error {
	if orientation != "vertical" && orientation != "horizontal" {
		return fmt.Errorf("orientation must be 'vertical' or 'horizontal', got %q", orientation)
	}
	return nil
}

// SetSliderPosition moves the swipe slider; position is a 0..1 fraction.
func (m *MapCompare) SetSliderPosition(position float64) error {
	if position < 0 || position > 1 {
		return fmt.Errorf("slider position must be between 0 and 1, got %v", position)
	}
	m.Traits().Set(Trait_SliderPosition, position)
	m.Call("setSlider", position)
	return nil
}

func (m *MapCompare) SetOrientation(orientation string) error {
	if err := validateOrientation(orientation); err != nil {
		return err
	}
	m.Traits().Set(Trait_Orientation, orientation)
	m.Call("setOrientation", orientation)
	return nil
}

// EnableMousemove switches the slider to follow the pointer.
func (m *MapCompare) EnableMousemove(enabled bool) {
	m.Traits().Set(Trait_Mousemove, enabled)
	m.Call("setMousemove", enabled)
}

// SyncOptions selects which camera properties the two maps keep in sync.
// Nil fields leave the current setting unchanged.
type SyncOptions struct {
	Center  *bool
	Zoom    *bool
	Bearing *bool
	Pitch   *bool
}

func (m *MapCompare) SetSyncOptions(opts SyncOptions) {
	if opts.Center != nil {
		m.Traits().Set(Trait_SyncCenter, *opts.Center)
	}
	if opts.Zoom != nil {
		m.Traits().Set(Trait_SyncZoom, *opts.Zoom)
	}
	if opts.Bearing != nil {
		m.Traits().Set(Trait_SyncBearing, *opts.Bearing)
	}
	if opts.Pitch != nil {
		m.Traits().Set(Trait_SyncPitch, *opts.Pitch)
	}
	m.Call("setSyncOptions", map[string]any{
		"center":  m.boolTrait(Trait_SyncCenter),
		"zoom":    m.boolTrait(Trait_SyncZoom),
		"bearing": m.boolTrait(Trait_SyncBearing),
		"pitch":   m.boolTrait(Trait_SyncPitch),
	})
}

func (m *MapCompare) boolTrait(name string) bool {
	v, _ := m.Traits().Get(name).(bool)
	return v
}

// UpdateLeftMap replaces the left map configuration.
func (m *MapCompare) UpdateLeftMap(config map[string]any) {
	m.Traits().Set(Trait_LeftMapConfig, config)
	m.Call("updateLeftMap", config)
}

// UpdateRightMap replaces the right map configuration.
func (m *MapCompare) UpdateRightMap(config map[string]any) {
	m.Traits().Set(Trait_RightMapConfig, config)
	m.Call("updateRightMap", config)
}

// FlyTo animates both maps to lat/lng.
func (m *MapCompare) FlyTo(lat float64, lng float64, zoom *float64) {
	options := map[string]any{"center": []any{lng, lat}}
	if zoom != nil {
		options["zoom"] = *zoom
	}
	m.Call("flyTo", options)
}
