// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// mapconfig reads the anymap settings and basemap catalog: embedded
// defaults merged under whatever json files exist in the config dir.
package mapconfig

import (
	"embed"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/opengeos/anymap-sub000/pkg/mapbase"
)

//go:embed defaultconfig/*.json
var defaultConfigFS embed.FS

const (
	SettingsFile = "settings.json"
	BasemapsFile = "basemaps.json"
)

type SettingsType struct {
	MapDefaultCenter  []float64 `json:"map:defaultcenter,omitempty"`
	MapDefaultZoom    float64   `json:"map:defaultzoom,omitempty"`
	MapDefaultBasemap string    `json:"map:defaultbasemap,omitempty"`
	ServerAddr        string    `json:"server:addr,omitempty"`
	ExportTitle       string    `json:"export:title,omitempty"`
	QueueMaxSize      int       `json:"queue:maxsize,omitempty"`
}

// BasemapProvider describes one xyz tile service usable as a base layer.
type BasemapProvider struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution,omitempty"`
	MaxZoom     int    `json:"maxzoom,omitempty"`
	Type        string `json:"type,omitempty"` // always "xyz" for now
}

type FullConfigType struct {
	Settings SettingsType               `json:"settings"`
	Basemaps map[string]BasemapProvider `json:"basemaps"`
}

func readJSONFile(barr []byte, fileName string, out any) {
	if len(barr) == 0 {
		return
	}
	if err := json.Unmarshal(barr, out); err != nil {
		log.Printf("[error] parsing %s: %v\n", fileName, err)
	}
}

func readDefaultFile(fileName string) []byte {
	barr, err := defaultConfigFS.ReadFile("defaultconfig/" + fileName)
	if err != nil {
		log.Printf("[error] reading embedded default %s: %v\n", fileName, err)
		return nil
	}
	return barr
}

func readUserFile(fileName string) []byte {
	fullPath := filepath.Join(mapbase.GetConfigDir(), fileName)
	barr, err := os.ReadFile(fullPath)
	if err != nil {
		// missing user file is the normal case
		return nil
	}
	return barr
}

// ReadFullConfig returns embedded defaults with any user config dir files
// merged over them.  User basemap entries override same-named defaults and
// may add new providers.
func ReadFullConfig() FullConfigType {
	var fullConfig FullConfigType
	fullConfig.Basemaps = make(map[string]BasemapProvider)

	readJSONFile(readDefaultFile(SettingsFile), SettingsFile, &fullConfig.Settings)
	readJSONFile(readUserFile(SettingsFile), SettingsFile, &fullConfig.Settings)

	readJSONFile(readDefaultFile(BasemapsFile), BasemapsFile, &fullConfig.Basemaps)
	userBasemaps := make(map[string]BasemapProvider)
	readJSONFile(readUserFile(BasemapsFile), BasemapsFile, &userBasemaps)
	for name, provider := range userBasemaps {
		fullConfig.Basemaps[name] = provider
	}
	return fullConfig
}

// GetBasemap looks a provider up by name ("OpenStreetMap.Mapnik", or the
// "OpenStreetMap" shorthand for the first provider in that family).
func (fc FullConfigType) GetBasemap(name string) (BasemapProvider, bool) {
	if provider, ok := fc.Basemaps[name]; ok {
		return provider, true
	}
	var familyNames []string
	for key := range fc.Basemaps {
		familyNames = append(familyNames, key)
	}
	sort.Strings(familyNames)
	for _, key := range familyNames {
		if len(key) > len(name) && key[:len(name)] == name && key[len(name)] == '.' {
			return fc.Basemaps[key], true
		}
	}
	return BasemapProvider{}, false
}

// BasemapNames returns the catalog keys in sorted order.
func (fc FullConfigType) BasemapNames() []string {
	names := make([]string, 0, len(fc.Basemaps))
	for name := range fc.Basemaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
