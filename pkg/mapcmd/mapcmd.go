// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// mapcmd defines the host→view command set.  Commands travel on the wire as
// {id, method, args, kwargs} records; host side they are a tagged union so
// nothing downstream has to switch on raw strings.  Method names the union
// does not know decode to DynamicCall, the documented escape hatch onto the
// full underlying library API.
package mapcmd

import (
	"fmt"

	"github.com/opengeos/anymap-sub000/pkg/util/utilfn"
)

const (
	Cmd_FlyTo         = "flyTo"
	Cmd_AddLayer      = "addLayer"
	Cmd_RemoveLayer   = "removeLayer"
	Cmd_AddSource     = "addSource"
	Cmd_RemoveSource  = "removeSource"
	Cmd_AddControl    = "addControl"
	Cmd_RemoveControl = "removeControl"
	Cmd_AddMarker     = "addMarker"
	Cmd_FitBounds     = "fitBounds"
	Cmd_SetStyle      = "setStyle"
	Cmd_SetProjection = "setProjection"
	Cmd_SetTerrain    = "setTerrain"
)

// CallRecord is the wire shape of one queued call.
type CallRecord struct {
	Id     int            `json:"id"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

type Command interface {
	GetMethod() string
	// Record produces the wire record the browser-side dispatch switch
	// consumes.  The id is assigned by the issuing widget.
	Record(id int) CallRecord
}

type FlyToCommand struct {
	Options map[string]any `json:"options"`
}

func (c *FlyToCommand) GetMethod() string { return Cmd_FlyTo }
func (c *FlyToCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_FlyTo, Args: []any{c.Options}}
}

type AddLayerCommand struct {
	LayerId string         `json:"layerid"`
	Config  map[string]any `json:"config"`
}

func (c *AddLayerCommand) GetMethod() string { return Cmd_AddLayer }
func (c *AddLayerCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_AddLayer, Args: []any{c.Config, c.LayerId}}
}

type RemoveLayerCommand struct {
	LayerId string `json:"layerid"`
}

func (c *RemoveLayerCommand) GetMethod() string { return Cmd_RemoveLayer }
func (c *RemoveLayerCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_RemoveLayer, Args: []any{c.LayerId}}
}

type AddSourceCommand struct {
	SourceId string         `json:"sourceid"`
	Config   map[string]any `json:"config"`
}

func (c *AddSourceCommand) GetMethod() string { return Cmd_AddSource }
func (c *AddSourceCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_AddSource, Args: []any{c.SourceId, c.Config}}
}

type RemoveSourceCommand struct {
	SourceId string `json:"sourceid"`
}

func (c *RemoveSourceCommand) GetMethod() string { return Cmd_RemoveSource }
func (c *RemoveSourceCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_RemoveSource, Args: []any{c.SourceId}}
}

type AddControlCommand struct {
	ControlType string         `json:"controltype"`
	Position    string         `json:"position"`
	Options     map[string]any `json:"options,omitempty"`
}

func (c *AddControlCommand) GetMethod() string { return Cmd_AddControl }
func (c *AddControlCommand) Record(id int) CallRecord {
	opts := utilfn.CopyMap(c.Options)
	if opts == nil {
		opts = make(map[string]any)
	}
	opts["position"] = c.Position
	return CallRecord{Id: id, Method: Cmd_AddControl, Args: []any{c.ControlType, opts}}
}

type RemoveControlCommand struct {
	ControlType string `json:"controltype"`
	Position    string `json:"position"`
}

func (c *RemoveControlCommand) GetMethod() string { return Cmd_RemoveControl }
func (c *RemoveControlCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_RemoveControl, Args: []any{c.ControlType, c.Position}}
}

type AddMarkerCommand struct {
	// Coordinates are in the owning backend's documented order
	// (MapLibre/Mapbox: [lng, lat]; Leaflet/OpenLayers: [lat, lng]).
	Coordinates []float64      `json:"coordinates"`
	Popup       string         `json:"popup,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

func (c *AddMarkerCommand) GetMethod() string { return Cmd_AddMarker }
func (c *AddMarkerCommand) Record(id int) CallRecord {
	markerData := map[string]any{"coordinates": c.Coordinates}
	if c.Popup != "" {
		markerData["popup"] = c.Popup
	}
	for k, v := range c.Options {
		markerData[k] = v
	}
	return CallRecord{Id: id, Method: Cmd_AddMarker, Args: []any{markerData}}
}

type FitBoundsCommand struct {
	Bounds  [][]float64    `json:"bounds"`
	Options map[string]any `json:"options,omitempty"`
}

func (c *FitBoundsCommand) GetMethod() string { return Cmd_FitBounds }
func (c *FitBoundsCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_FitBounds, Args: []any{c.Bounds, c.Options}}
}

type SetStyleCommand struct {
	// Style is a URL string or a full style object.
	Style any `json:"style"`
}

func (c *SetStyleCommand) GetMethod() string { return Cmd_SetStyle }
func (c *SetStyleCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_SetStyle, Args: []any{c.Style}}
}

type SetProjectionCommand struct {
	Projection map[string]any `json:"projection"`
}

func (c *SetProjectionCommand) GetMethod() string { return Cmd_SetProjection }
func (c *SetProjectionCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: Cmd_SetProjection, Args: []any{c.Projection}}
}

type SetTerrainCommand struct {
	// nil Terrain removes terrain
	Terrain map[string]any `json:"terrain,omitempty"`
}

func (c *SetTerrainCommand) GetMethod() string { return Cmd_SetTerrain }
func (c *SetTerrainCommand) Record(id int) CallRecord {
	var arg any
	if c.Terrain != nil {
		arg = c.Terrain
	}
	return CallRecord{Id: id, Method: Cmd_SetTerrain, Args: []any{arg}}
}

// DynamicCallCommand forwards an arbitrary method to the underlying library
// object.  Never an error host-side; the view logs and drops methods the
// library does not expose.
type DynamicCallCommand struct {
	Method string         `json:"method"`
	Args   []any          `json:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

func (c *DynamicCallCommand) GetMethod() string { return c.Method }
func (c *DynamicCallCommand) Record(id int) CallRecord {
	return CallRecord{Id: id, Method: c.Method, Args: c.Args, Kwargs: c.Kwargs}
}

func argAsMap(args []any, idx int) map[string]any {
	if idx >= len(args) {
		return nil
	}
	m, ok := args[idx].(map[string]any)
	if !ok {
		return nil
	}
	return m
}

func argAsString(args []any, idx int) string {
	if idx >= len(args) {
		return ""
	}
	s, _ := args[idx].(string)
	return s
}

// ParseCallRecord lifts a wire record back into the tagged union.  Records
// whose args do not fit the typed shape fall through to DynamicCall rather
// than failing: a malformed call is the view's problem to log, not a host
// error.
func ParseCallRecord(rec CallRecord) Command {
	switch rec.Method {
	case Cmd_FlyTo:
		return &FlyToCommand{Options: argAsMap(rec.Args, 0)}
	case Cmd_AddLayer:
		layerId := argAsString(rec.Args, 1)
		config := argAsMap(rec.Args, 0)
		if config != nil {
			return &AddLayerCommand{LayerId: layerId, Config: config}
		}
	case Cmd_RemoveLayer:
		return &RemoveLayerCommand{LayerId: argAsString(rec.Args, 0)}
	case Cmd_AddSource:
		sourceId := argAsString(rec.Args, 0)
		config := argAsMap(rec.Args, 1)
		if sourceId != "" && config != nil {
			return &AddSourceCommand{SourceId: sourceId, Config: config}
		}
	case Cmd_RemoveSource:
		return &RemoveSourceCommand{SourceId: argAsString(rec.Args, 0)}
	case Cmd_AddControl:
		opts := argAsMap(rec.Args, 1)
		position, _ := opts["position"].(string)
		return &AddControlCommand{ControlType: argAsString(rec.Args, 0), Position: position, Options: opts}
	case Cmd_RemoveControl:
		return &RemoveControlCommand{ControlType: argAsString(rec.Args, 0), Position: argAsString(rec.Args, 1)}
	case Cmd_AddMarker:
		markerData := argAsMap(rec.Args, 0)
		if markerData != nil {
			var cmd AddMarkerCommand
			if err := utilfn.DoMapStructure(&cmd, markerData); err == nil {
				return &cmd
			}
		}
	case Cmd_FitBounds:
		if len(rec.Args) >= 1 {
			var cmd FitBoundsCommand
			if err := utilfn.ReUnmarshal(&cmd.Bounds, rec.Args[0]); err == nil && len(cmd.Bounds) > 0 {
				cmd.Options = argAsMap(rec.Args, 1)
				return &cmd
			}
		}
	case Cmd_SetStyle:
		if len(rec.Args) >= 1 {
			return &SetStyleCommand{Style: rec.Args[0]}
		}
	case Cmd_SetProjection:
		return &SetProjectionCommand{Projection: argAsMap(rec.Args, 0)}
	case Cmd_SetTerrain:
		return &SetTerrainCommand{Terrain: argAsMap(rec.Args, 0)}
	}
	return &DynamicCallCommand{Method: rec.Method, Args: rec.Args, Kwargs: rec.Kwargs}
}

// ValidateRecord is a debug helper: it round-trips a record through the
// union and reports whether it parsed to a typed command.
func ValidateRecord(rec CallRecord) (Command, bool, error) {
	if rec.Method == "" {
		return nil, false, fmt.Errorf("call record has no method")
	}
	cmd := ParseCallRecord(rec)
	_, dynamic := cmd.(*DynamicCallCommand)
	return cmd, !dynamic, nil
}
