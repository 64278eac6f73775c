// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package trait

import (
	"testing"
)

func makeTestStore() *Store {
	return MakeStore(map[string]any{
		"center": []float64{0, 0},
		"zoom":   2.0,
		"width":  "100%",
	})
}

func TestStore_Defaults(t *testing.T) {
	s := makeTestStore()
	if s.Get("zoom") != 2.0 {
		t.Errorf("expected default zoom 2.0, got %v", s.Get("zoom"))
	}
	if s.Get("width") != "100%" {
		t.Errorf("expected default width, got %v", s.Get("width"))
	}
	if s.Get("missing") != nil {
		t.Errorf("expected nil for undeclared trait")
	}
}

func TestStore_SetGet(t *testing.T) {
	s := makeTestStore()
	if err := s.Set("zoom", 10.0); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if s.Get("zoom") != 10.0 {
		t.Errorf("expected 10.0, got %v", s.Get("zoom"))
	}
}

func TestStore_TypeAdaptation(t *testing.T) {
	s := makeTestStore()
	// int should adapt to the declared float64 default type
	if err := s.Set("zoom", 7); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if s.Get("zoom") != 7.0 {
		t.Errorf("expected adapted 7.0, got %v (%T)", s.Get("zoom"), s.Get("zoom"))
	}
	// []any of numbers should adapt to []float64
	if err := s.Set("center", []any{40.7128, -74.0060}); err != nil {
		t.Fatalf("set error: %v", err)
	}
	center, ok := s.Get("center").([]float64)
	if !ok || center[0] != 40.7128 || center[1] != -74.0060 {
		t.Errorf("expected adapted []float64, got %v (%T)", s.Get("center"), s.Get("center"))
	}
}

func TestStore_Observers(t *testing.T) {
	s := makeTestStore()
	var got []Change
	cancel := s.Observe("zoom", func(change Change) {
		got = append(got, change)
	})
	s.Set("zoom", 5.0)
	s.Set("center", []float64{1, 2}) // different trait, no notification
	if len(got) != 1 {
		t.Fatalf("expected 1 change, got %d", len(got))
	}
	if got[0].Old != 2.0 || got[0].New != 5.0 {
		t.Errorf("bad change: %+v", got[0])
	}
	cancel()
	s.Set("zoom", 6.0)
	if len(got) != 1 {
		t.Errorf("observer fired after cancel")
	}
}

func TestStore_MultipleObservers(t *testing.T) {
	s := makeTestStore()
	count1, count2 := 0, 0
	s.Observe("zoom", func(Change) { count1++ })
	s.Observe("zoom", func(Change) { count2++ })
	s.Set("zoom", 3.0)
	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both observers to fire, got %d/%d", count1, count2)
	}
}

func TestStore_ConvergenceAcrossTraits(t *testing.T) {
	// set_center followed by set_zoom must leave both traits at their new
	// values regardless of notification interleaving
	s := makeTestStore()
	s.Set("center", []float64{40.7128, -74.0060})
	s.Set("zoom", 10.0)
	center := s.Get("center").([]float64)
	if center[0] != 40.7128 || center[1] != -74.0060 {
		t.Errorf("center did not converge: %v", center)
	}
	if s.Get("zoom") != 10.0 {
		t.Errorf("zoom did not converge: %v", s.Get("zoom"))
	}
}

func TestStore_Snapshot(t *testing.T) {
	s := makeTestStore()
	s.Set("zoom", 4.0)
	snap := s.Snapshot()
	if snap["zoom"] != 4.0 {
		t.Errorf("snapshot missing written value")
	}
	if snap["width"] != "100%" {
		t.Errorf("snapshot missing default value")
	}
}

func TestStore_GetAs(t *testing.T) {
	s := MakeStore(map[string]any{"_layers": map[string]any{}})
	s.Set("_layers", map[string]any{"l1": map[string]any{"type": "circle"}})
	var layers map[string]map[string]any
	if err := s.GetAs("_layers", &layers); err != nil {
		t.Fatalf("GetAs error: %v", err)
	}
	if layers["l1"]["type"] != "circle" {
		t.Errorf("bad GetAs decode: %v", layers)
	}
}

func TestStore_ObserverReentrancy(t *testing.T) {
	s := makeTestStore()
	s.Observe("zoom", func(change Change) {
		if change.New == 5.0 {
			s.Set("width", "50%")
		}
	})
	s.Set("zoom", 5.0)
	if s.Get("width") != "50%" {
		t.Errorf("reentrant set from observer did not apply")
	}
}
