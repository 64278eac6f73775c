// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"

	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

const (
	Trait_PointCloudURL   = "point_cloud_url"
	Trait_PointSize       = "point_size"
	Trait_PointSizeType   = "point_size_type"
	Trait_PointShape      = "point_shape"
	Trait_ShowGrid        = "show_grid"
	Trait_GridSize        = "grid_size"
	Trait_GridColor       = "grid_color"
	Trait_BackgroundColor = "background_color"
	Trait_EDLEnabled      = "edl_enabled"
	Trait_EDLRadius       = "edl_radius"
	Trait_EDLStrength     = "edl_strength"
	Trait_CameraPosition  = "camera_position"
	Trait_CameraTarget    = "camera_target"
	Trait_FOV             = "fov"
	Trait_NearClip        = "near_clip"
	Trait_FarClip         = "far_clip"
)

// PotreeMap is the Potree point cloud viewer backend.  Potree renders into
// one global container, so at most one widget per registry can hold a live
// view; Activate returns mapwidget.ErrBackendBusy for a second one.
type PotreeMap struct {
	*mapwidget.MapWidget
	registry *mapwidget.Registry
}

type PotreeOptions struct {
	PointCloudURL   string
	Width           string
	Height          string
	PointSize       float64 // defaults to 1.0
	PointSizeType   string  // "fixed", "adaptive", "attenuation"
	PointShape      string  // "square", "circle"
	CameraPosition  []float64
	CameraTarget    []float64
	FOV             float64
	BackgroundColor string
	EDLEnabled      *bool // defaults to true
	ShowGrid        bool
	Registry        *mapwidget.Registry // defaults to mapwidget.DefaultRegistry()
}

func MakePotreeMap(opts PotreeOptions) (*PotreeMap, error) {
	if opts.PointSize == 0 {
		opts.PointSize = 1.0
	}
	if opts.PointSizeType == "" {
		opts.PointSizeType = "adaptive"
	}
	if err := validatePointSizeType(opts.PointSizeType); err != nil {
		return nil, err
	}
	if opts.PointShape == "" {
		opts.PointShape = "square"
	}
	if err := validatePointShape(opts.PointShape); err != nil {
		return nil, err
	}
	if opts.CameraPosition == nil {
		opts.CameraPosition = []float64{0.0, 0.0, 10.0}
	}
	if opts.CameraTarget == nil {
		opts.CameraTarget = []float64{0.0, 0.0, 0.0}
	}
	if opts.FOV == 0 {
		opts.FOV = 60.0
	}
	if opts.BackgroundColor == "" {
		opts.BackgroundColor = "#000000"
	}
	edlEnabled := true
	if opts.EDLEnabled != nil {
		edlEnabled = *opts.EDLEnabled
	}
	registry := opts.Registry
	if registry == nil {
		registry = mapwidget.DefaultRegistry()
	}
	w := mapwidget.MakeMapWidget(Backend_Potree, map[string]any{
		Trait_PointCloudURL:   "",
		Trait_PointSize:       1.0,
		Trait_PointSizeType:   "adaptive",
		Trait_PointShape:      "square",
		Trait_ShowGrid:        false,
		Trait_GridSize:        10.0,
		Trait_GridColor:       "#aaaaaa",
		Trait_BackgroundColor: "#000000",
		Trait_EDLEnabled:      true,
		Trait_EDLRadius:       1.0,
		Trait_EDLStrength:     1.0,
		Trait_CameraPosition:  []float64{0.0, 0.0, 10.0},
		Trait_CameraTarget:    []float64{0.0, 0.0, 0.0},
		Trait_FOV:             60.0,
		Trait_NearClip:        0.1,
		Trait_FarClip:         1000.0,
	})
	m := &PotreeMap{MapWidget: w, registry: registry}
	applyCommonOptions(w, nil, 0, opts.Width, opts.Height)
	w.Traits().Set(Trait_PointCloudURL, opts.PointCloudURL)
	w.Traits().Set(Trait_PointSize, opts.PointSize)
	w.Traits().Set(Trait_PointSizeType, opts.PointSizeType)
	w.Traits().Set(Trait_PointShape, opts.PointShape)
	w.Traits().Set(Trait_CameraPosition, opts.CameraPosition)
	w.Traits().Set(Trait_CameraTarget, opts.CameraTarget)
	w.Traits().Set(Trait_FOV, opts.FOV)
	w.Traits().Set(Trait_BackgroundColor, opts.BackgroundColor)
	w.Traits().Set(Trait_EDLEnabled, edlEnabled)
	w.Traits().Set(Trait_ShowGrid, opts.ShowGrid)
	return m, nil
}

func validatePointSizeType(sizeType string) error {
	switch sizeType {
	case "fixed", "adaptive", "attenuation":
		return nil
	}
	return fmt.Errorf("point size type must be 'fixed', 'adaptive', or 'attenuation', got %q", sizeType)
}

func validatePointShape(shape string) error {
	switch shape {
	case "square", "circle":
		return nil
	}
	return fmt.Errorf("point shape must be 'square' or 'circle', got %q", shape)
}

// Activate claims the single live-view slot for the Potree backend.
func (m *PotreeMap) Activate() error {
	return m.registry.Activate(m.MapWidget, true)
}

// Release gives the live-view slot back.
func (m *PotreeMap) Release() {
	m.registry.Deactivate(m.WidgetId())
}

// LoadPointCloud loads a point cloud from its metadata URL.
func (m *PotreeMap) LoadPointCloud(pointCloudURL string, name string) {
	m.Traits().Set(Trait_PointCloudURL, pointCloudURL)
	options := map[string]any{"url": pointCloudURL}
	if name != "" {
		options["name"] = name
	}
	m.Call("loadPointCloud", options)
}

// LoadMultiplePointClouds loads several point clouds, each described by a
// {"url": ..., "name": ...} map.
func (m *PotreeMap) LoadMultiplePointClouds(pointClouds []map[string]string) {
	for _, pc := range pointClouds {
		m.LoadPointCloud(pc["url"], pc["name"])
	}
}

func (m *PotreeMap) SetPointSize(size float64) {
	m.Traits().Set(Trait_PointSize, size)
}

func (m *PotreeMap) SetPointSizeType(sizeType string) error {
	if err := validatePointSizeType(sizeType); err != nil {
		return err
	}
	m.Traits().Set(Trait_PointSizeType, sizeType)
	return nil
}

func (m *PotreeMap) SetPointShape(shape string) error {
	if err := validatePointShape(shape); err != nil {
		return err
	}
	m.Traits().Set(Trait_PointShape, shape)
	return nil
}

// SetCameraPosition sets the camera position [x, y, z] and optional target.
func (m *PotreeMap) SetCameraPosition(position []float64, target []float64) {
	m.Traits().Set(Trait_CameraPosition, position)
	if target != nil {
		m.Traits().Set(Trait_CameraTarget, target)
	}
	m.Call("setCameraPosition", position, target)
}

func (m *PotreeMap) FitToScreen() {
	m.Call("fitToScreen")
}

func (m *PotreeMap) EnableEDL(enabled bool) {
	m.Traits().Set(Trait_EDLEnabled, enabled)
}

func (m *PotreeMap) SetEDLSettings(radius float64, strength float64) {
	m.Traits().Set(Trait_EDLRadius, radius)
	m.Traits().Set(Trait_EDLStrength, strength)
}

func (m *PotreeMap) ShowCoordinateGrid(show bool, size float64, color string) {
	if size == 0 {
		size = 10.0
	}
	if color == "" {
		color = "#aaaaaa"
	}
	m.Traits().Set(Trait_ShowGrid, show)
	m.Traits().Set(Trait_GridSize, size)
	m.Traits().Set(Trait_GridColor, color)
}

func (m *PotreeMap) SetBackgroundColor(color string) {
	m.Traits().Set(Trait_BackgroundColor, color)
}

func (m *PotreeMap) ClearPointClouds() {
	m.Traits().Set(Trait_PointCloudURL, "")
	m.Call("clearPointClouds")
}

func (m *PotreeMap) TakeScreenshot() {
	m.Call("takeScreenshot")
}

func (m *PotreeMap) SetFOV(fov float64) {
	m.Traits().Set(Trait_FOV, fov)
}

func (m *PotreeMap) SetClipDistances(near float64, far float64) {
	m.Traits().Set(Trait_NearClip, near)
	m.Traits().Set(Trait_FarClip, far)
}

// AddMeasurement starts an interactive measurement ("distance", "area",
// "angle", "height").
func (m *PotreeMap) AddMeasurement(measurementType string) {
	if measurementType == "" {
		measurementType = "distance"
	}
	m.Call("addMeasurement", measurementType)
}

func (m *PotreeMap) ClearMeasurements() {
	m.Call("clearMeasurements")
}

func (m *PotreeMap) SetQuality(quality string) error {
	switch quality {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("quality must be 'low', 'medium', or 'high', got %q", quality)
	}
	m.Call("setQuality", quality)
	return nil
}

// SetClassificationVisibility toggles point classes on or off by LAS
// classification code.
func (m *PotreeMap) SetClassificationVisibility(classifications map[int]bool) {
	arg := make(map[string]any, len(classifications))
	for code, visible := range classifications {
		arg[fmt.Sprintf("%d", code)] = visible
	}
	m.Call("setClassificationVisibility", arg)
}

// FilterByElevation shows only points between min and max elevation.
func (m *PotreeMap) FilterByElevation(minElevation float64, maxElevation float64) {
	m.Call("filterByElevation", map[string]any{"min": minElevation, "max": maxElevation})
}

func (m *PotreeMap) ClearFilters() {
	m.Call("clearFilters")
}
