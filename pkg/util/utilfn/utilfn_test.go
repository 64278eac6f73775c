// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package utilfn

import (
	"strings"
	"testing"
)

func TestAddElemToSliceUniq(t *testing.T) {
	arr := []string{"a", "b"}
	arr = AddElemToSliceUniq(arr, "b")
	if len(arr) != 2 {
		t.Errorf("expected 2 elems, got %d", len(arr))
	}
	arr = AddElemToSliceUniq(arr, "c")
	if len(arr) != 3 || arr[2] != "c" {
		t.Errorf("expected c appended, got %v", arr)
	}
}

func TestRemoveElemFromSlice(t *testing.T) {
	arr := []string{"a", "b", "c", "b"}
	arr = RemoveElemFromSlice(arr, "b")
	if len(arr) != 2 || arr[0] != "a" || arr[1] != "c" {
		t.Errorf("expected [a c], got %v", arr)
	}
}

func TestCopyMap(t *testing.T) {
	m := map[string]int{"a": 1}
	cp := CopyMap(m)
	cp["b"] = 2
	if len(m) != 1 {
		t.Errorf("copy aliases the original: %v", m)
	}
	if CopyMap[string, int](nil) != nil {
		t.Errorf("nil map should copy to nil")
	}
}

func TestDoMapStructure(t *testing.T) {
	type opts struct {
		Center []float64 `json:"center"`
		Zoom   float64   `json:"zoom"`
	}
	var o opts
	err := DoMapStructure(&o, map[string]any{"center": []float64{1, 2}, "zoom": 5.0})
	if err != nil {
		t.Fatalf("DoMapStructure error: %v", err)
	}
	if o.Zoom != 5.0 || len(o.Center) != 2 {
		t.Errorf("bad decode: %+v", o)
	}
}

func TestMarshalIndentNoHTMLString(t *testing.T) {
	str, err := MarshalIndentNoHTMLString(map[string]any{"url": "https://a.tile/<z>"}, "", "  ")
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if !strings.Contains(str, "<z>") {
		t.Errorf("expected unescaped html, got %s", str)
	}
}
