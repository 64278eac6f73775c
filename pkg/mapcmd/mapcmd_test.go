// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mapcmd

import (
	"testing"
)

func TestAddLayerRoundTrip(t *testing.T) {
	cmd := &AddLayerCommand{
		LayerId: "buildings",
		Config:  map[string]any{"id": "buildings", "type": "fill", "source": "buildings_source"},
	}
	rec := cmd.Record(7)
	if rec.Id != 7 || rec.Method != Cmd_AddLayer {
		t.Fatalf("bad record: %+v", rec)
	}
	parsed := ParseCallRecord(rec)
	addLayer, ok := parsed.(*AddLayerCommand)
	if !ok {
		t.Fatalf("expected AddLayerCommand, got %T", parsed)
	}
	if addLayer.LayerId != "buildings" || addLayer.Config["type"] != "fill" {
		t.Errorf("bad parse: %+v", addLayer)
	}
}

func TestAddSourceRecordArgOrder(t *testing.T) {
	cmd := &AddSourceCommand{SourceId: "s1", Config: map[string]any{"type": "geojson"}}
	rec := cmd.Record(0)
	// browser dispatch expects addSource(sourceId, config)
	if rec.Args[0] != "s1" {
		t.Errorf("expected source id first, got %v", rec.Args[0])
	}
}

func TestAddControlCarriesPosition(t *testing.T) {
	cmd := &AddControlCommand{ControlType: "navigation", Position: "top-left"}
	rec := cmd.Record(1)
	opts, ok := rec.Args[1].(map[string]any)
	if !ok || opts["position"] != "top-left" {
		t.Errorf("expected position in options, got %v", rec.Args)
	}
	parsed := ParseCallRecord(rec)
	ctl, ok := parsed.(*AddControlCommand)
	if !ok || ctl.Position != "top-left" {
		t.Errorf("bad parse: %T %+v", parsed, parsed)
	}
}

func TestUnknownMethodIsDynamicCall(t *testing.T) {
	rec := CallRecord{Id: 1, Method: "rotateTo", Args: []any{180.0}}
	parsed := ParseCallRecord(rec)
	dyn, ok := parsed.(*DynamicCallCommand)
	if !ok {
		t.Fatalf("expected DynamicCallCommand, got %T", parsed)
	}
	if dyn.Method != "rotateTo" || len(dyn.Args) != 1 {
		t.Errorf("bad dynamic call: %+v", dyn)
	}
}

func TestMalformedTypedRecordFallsBackToDynamic(t *testing.T) {
	// addLayer with no config map cannot parse as the typed variant
	rec := CallRecord{Method: Cmd_AddLayer, Args: []any{"not-a-map"}}
	if _, ok := ParseCallRecord(rec).(*DynamicCallCommand); !ok {
		t.Errorf("expected dynamic fallback for malformed addLayer")
	}
}

func TestFitBoundsRoundTrip(t *testing.T) {
	cmd := &FitBoundsCommand{
		Bounds:  [][]float64{{-74.1, 40.6}, {-73.9, 40.8}},
		Options: map[string]any{"padding": 50.0},
	}
	parsed := ParseCallRecord(cmd.Record(2))
	fb, ok := parsed.(*FitBoundsCommand)
	if !ok {
		t.Fatalf("expected FitBoundsCommand, got %T", parsed)
	}
	if len(fb.Bounds) != 2 || fb.Bounds[0][0] != -74.1 {
		t.Errorf("bad bounds: %v", fb.Bounds)
	}
	if fb.Options["padding"] != 50.0 {
		t.Errorf("bad options: %v", fb.Options)
	}
}

func TestSetTerrainNilRemoves(t *testing.T) {
	cmd := &SetTerrainCommand{}
	rec := cmd.Record(3)
	if len(rec.Args) != 1 || rec.Args[0] != nil {
		t.Errorf("expected single nil arg, got %v", rec.Args)
	}
}

func TestValidateRecord(t *testing.T) {
	if _, _, err := ValidateRecord(CallRecord{}); err == nil {
		t.Errorf("expected error for empty method")
	}
	_, typed, err := ValidateRecord(CallRecord{Method: Cmd_RemoveLayer, Args: []any{"l1"}})
	if err != nil || !typed {
		t.Errorf("expected typed parse, got typed=%v err=%v", typed, err)
	}
	_, typed, err = ValidateRecord(CallRecord{Method: "spinGlobe"})
	if err != nil || typed {
		t.Errorf("expected dynamic parse, got typed=%v err=%v", typed, err)
	}
}
