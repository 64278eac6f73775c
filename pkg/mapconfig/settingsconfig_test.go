// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mapconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opengeos/anymap-sub000/pkg/mapbase"
)

func TestReadFullConfigDefaults(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	fc := ReadFullConfig()
	if fc.Settings.MapDefaultZoom != 2 {
		t.Errorf("expected default zoom 2, got %v", fc.Settings.MapDefaultZoom)
	}
	if fc.Settings.MapDefaultBasemap != "OpenStreetMap.Mapnik" {
		t.Errorf("unexpected default basemap: %q", fc.Settings.MapDefaultBasemap)
	}
	if len(fc.Basemaps) == 0 {
		t.Fatalf("expected embedded basemap catalog")
	}
	osm, ok := fc.Basemaps["OpenStreetMap.Mapnik"]
	if !ok || osm.URL == "" {
		t.Errorf("OpenStreetMap.Mapnik missing from catalog")
	}
}

func TestUserSettingsOverrideDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(mapbase.AnymapHomeVarName, home)
	configDir := filepath.Join(home, mapbase.ConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	userSettings := `{"map:defaultzoom": 9, "server:addr": "0.0.0.0:9000"}`
	if err := os.WriteFile(filepath.Join(configDir, SettingsFile), []byte(userSettings), 0644); err != nil {
		t.Fatal(err)
	}
	fc := ReadFullConfig()
	if fc.Settings.MapDefaultZoom != 9 {
		t.Errorf("user zoom override not applied: %v", fc.Settings.MapDefaultZoom)
	}
	if fc.Settings.ServerAddr != "0.0.0.0:9000" {
		t.Errorf("user addr override not applied: %q", fc.Settings.ServerAddr)
	}
	// untouched defaults survive the merge
	if fc.Settings.ExportTitle != "Anymap Export" {
		t.Errorf("default export title lost: %q", fc.Settings.ExportTitle)
	}
}

func TestUserBasemapsMergeOverDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(mapbase.AnymapHomeVarName, home)
	configDir := filepath.Join(home, mapbase.ConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	userBasemaps := `{"Custom.Tiles": {"name": "Custom.Tiles", "url": "https://tiles.example.com/{z}/{x}/{y}.png"}}`
	if err := os.WriteFile(filepath.Join(configDir, BasemapsFile), []byte(userBasemaps), 0644); err != nil {
		t.Fatal(err)
	}
	fc := ReadFullConfig()
	if _, ok := fc.Basemaps["Custom.Tiles"]; !ok {
		t.Errorf("user basemap not merged")
	}
	if _, ok := fc.Basemaps["OpenStreetMap.Mapnik"]; !ok {
		t.Errorf("default basemap lost in merge")
	}
}

func TestGetBasemapFamilyShorthand(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	fc := ReadFullConfig()
	provider, ok := fc.GetBasemap("OpenStreetMap")
	if !ok {
		t.Fatalf("family shorthand lookup failed")
	}
	if provider.URL == "" {
		t.Errorf("empty provider url")
	}
	if _, ok := fc.GetBasemap("NoSuchProvider"); ok {
		t.Errorf("expected miss for unknown provider")
	}
}
