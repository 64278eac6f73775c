// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package htmlexport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opengeos/anymap-sub000/pkg/backends"
	"github.com/opengeos/anymap-sub000/pkg/mapbase"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
)

func TestExportMapLibreContainsLayersAndSources(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{Center: []float64{37.77, -122.42}, Zoom: 12})
	m.AddGeoJSONLayer("parcels", map[string]any{"type": "FeatureCollection", "features": []any{}}, "fill", nil)
	m.AddRasterLayer("hillshade", "https://tiles.example.com/{z}/{x}/{y}.png", nil, nil)

	page, err := ExportWidget(m.MapWidget, Options{Title: "Parcel Viewer"})
	if err != nil {
		t.Fatalf("ExportWidget: %v", err)
	}
	for _, want := range []string{
		"<title>Parcel Viewer</title>",
		"maplibre-gl.js",
		"maplibre-gl.css",
		`"parcels"`,
		`"parcels_source"`,
		`"hillshade_source"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("export missing %q", want)
		}
	}
}

func TestExportDoesNotDrainPendingCalls(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{})
	m.AddMarker(37.77, -122.42, "pier 39")
	before := m.PendingCallCount()

	page, err := ExportWidget(m.MapWidget, Options{Title: "t"})
	if err != nil {
		t.Fatal(err)
	}
	if m.PendingCallCount() != before {
		t.Errorf("export drained the call queue")
	}
	// marker replay carries GL [lng, lat] order
	if !strings.Contains(page, "-122.42") {
		t.Errorf("marker coordinates missing from export")
	}
}

func TestExportLeafletLatLngOrder(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeLeafletMap(backends.LeafletOptions{Center: []float64{51.5, -0.09}, Zoom: 10})
	m.AddMarker([]float64{51.5, -0.09}, &backends.MarkerOptions{Popup: "London"})

	page, err := ExportWidget(m.MapWidget, Options{Title: "London"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, "leaflet.js") {
		t.Errorf("leaflet script asset missing")
	}
	if !strings.Contains(page, `"latlng"`) {
		t.Errorf("marker latlng missing from export")
	}
}

func TestExportUnknownBackend(t *testing.T) {
	snap := mapwidget.Snapshot{WidgetId: "w1", Backend: "globus", Traits: map[string]any{}}
	if _, err := ExportSnapshot(snap, nil, Options{Title: "t"}); err == nil {
		t.Errorf("expected error for unknown backend")
	}
}

func TestExportTitleFallsBackToConfig(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{})
	page, err := ExportWidget(m.MapWidget, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, "<title>Anymap Export</title>") {
		t.Errorf("default export title not applied")
	}
}

func TestExportTitleEscaped(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{})
	page, err := ExportWidget(m.MapWidget, Options{Title: "<script>alert(1)</script>"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(page, "<script>alert(1)</script>") {
		t.Errorf("title not escaped")
	}
}

func TestExportToFile(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeCesiumMap(backends.CesiumOptions{Center: []float64{46.5, 6.6}})
	m.AddPoint(46.5, 6.6, &backends.PointOptions{Name: "Lausanne"})

	fileName := filepath.Join(t.TempDir(), "globe.html")
	if err := ExportToFile(m.MapWidget, fileName, Options{Title: "Globe"}); err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	barr, err := os.ReadFile(fileName)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(barr), "Cesium.js") {
		t.Errorf("cesium assets missing from written file")
	}
}

func TestLiveExportContainsWSBootstrap(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{})

	live, err := ExportWidget(m.MapWidget, Options{Title: "t", Live: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(live, "new WebSocket") {
		t.Errorf("live page missing websocket bootstrap")
	}
	if !strings.Contains(live, "widgetid="+m.WidgetId()) {
		t.Errorf("live page missing widget id in ws url")
	}

	static, err := ExportWidget(m.MapWidget, Options{Title: "t"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(static, "new WebSocket") {
		t.Errorf("static export should not carry the websocket bootstrap")
	}
}

func TestExportEveryBackendHasTemplate(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	widgets := []*mapwidget.MapWidget{
		backends.MakeMapLibreMap(backends.MapLibreOptions{}).MapWidget,
		backends.MakeMapboxMap(backends.MapboxOptions{}).MapWidget,
		backends.MakeLeafletMap(backends.LeafletOptions{}).MapWidget,
		backends.MakeOpenLayersMap(backends.OpenLayersOptions{}).MapWidget,
		backends.MakeCesiumMap(backends.CesiumOptions{}).MapWidget,
		backends.MakeDeckGLMap(backends.DeckGLOptions{}).MapWidget,
	}
	potree, err := backends.MakePotreeMap(backends.PotreeOptions{Registry: mapwidget.MakeRegistry()})
	if err != nil {
		t.Fatal(err)
	}
	widgets = append(widgets, potree.MapWidget)
	compare, err := backends.MakeMapCompare(backends.MapCompareOptions{})
	if err != nil {
		t.Fatal(err)
	}
	widgets = append(widgets, compare.MapWidget)

	for _, w := range widgets {
		page, err := ExportWidget(w, Options{Title: "t"})
		if err != nil {
			t.Errorf("export %s: %v", w.Backend(), err)
			continue
		}
		if !strings.Contains(page, "<!DOCTYPE html>") {
			t.Errorf("export %s: not a full page", w.Backend())
		}
	}
}
