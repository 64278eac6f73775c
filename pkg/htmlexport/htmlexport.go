// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// htmlexport renders a widget snapshot into a standalone HTML page.  The
// page reconstructs the view from the persisted traits: sources first, then
// layers, then controls, then a replay of any still-queued calls, each step
// wrapped so one bad record degrades to a console warning instead of a blank
// map.
package htmlexport

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"os"
	"text/template"

	"github.com/opengeos/anymap-sub000/pkg/backends"
	"github.com/opengeos/anymap-sub000/pkg/mapcmd"
	"github.com/opengeos/anymap-sub000/pkg/mapconfig"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
	"github.com/opengeos/anymap-sub000/pkg/util/utilfn"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var backendTemplateNames = map[string]string{
	backends.Backend_MapLibre:   "maplibre.tmpl",
	backends.Backend_Mapbox:     "mapbox.tmpl",
	backends.Backend_Leaflet:    "leaflet.tmpl",
	backends.Backend_OpenLayers: "openlayers.tmpl",
	backends.Backend_Cesium:     "cesium.tmpl",
	backends.Backend_Potree:     "potree.tmpl",
	backends.Backend_DeckGL:     "deckgl.tmpl",
	backends.Backend_Compare:    "compare.tmpl",
}

type Options struct {
	Title string // defaults to the configured export title
	Live  bool   // emit the websocket bootstrap (served pages, not file exports)
}

type templateData struct {
	Title      string
	WidgetId   string
	Width      string
	Height     string
	Scripts    []string
	Styles     []string
	TraitsJSON string
	CallsJSON  string
	Live       bool
}

// ExportWidget renders the widget's current snapshot plus its still-pending
// calls.  The pending queue is peeked, not drained; exporting does not
// consume calls a live view has yet to apply.
func ExportWidget(w *mapwidget.MapWidget, opts Options) (string, error) {
	return ExportSnapshot(w.Snapshot(), w.PendingCalls(), opts)
}

// ExportSnapshot renders a stored snapshot and optional call replay list.
func ExportSnapshot(snap mapwidget.Snapshot, calls []mapcmd.CallRecord, opts Options) (string, error) {
	tmplName, ok := backendTemplateNames[snap.Backend]
	if !ok {
		return "", fmt.Errorf("no export template for backend %q", snap.Backend)
	}
	title := opts.Title
	if title == "" {
		title = mapconfig.ReadFullConfig().Settings.ExportTitle
	}
	traitsJSON, err := utilfn.MarshalIndentNoHTMLString(snap.Traits, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling traits: %w", err)
	}
	if calls == nil {
		calls = []mapcmd.CallRecord{}
	}
	callsJSON, err := utilfn.MarshalIndentNoHTMLString(calls, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling calls: %w", err)
	}
	assets := backends.AssetsFor(snap.Backend)
	data := templateData{
		Title:      html.EscapeString(title),
		WidgetId:   snap.WidgetId,
		Width:      traitString(snap.Traits, mapwidget.Trait_Width, "100%"),
		Height:     traitString(snap.Traits, mapwidget.Trait_Height, "600px"),
		Scripts:    assets.ScriptURLs,
		Styles:     assets.StyleURLs,
		TraitsJSON: traitsJSON,
		CallsJSON:  callsJSON,
		Live:       opts.Live,
	}
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, tmplName, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", tmplName, err)
	}
	return buf.String(), nil
}

// ExportToFile writes the rendered page to fileName.
func ExportToFile(w *mapwidget.MapWidget, fileName string, opts Options) error {
	page, err := ExportWidget(w, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fileName, []byte(page), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", fileName, err)
	}
	return nil
}

func traitString(traits map[string]any, name string, defaultVal string) string {
	s, _ := traits[name].(string)
	if s == "" {
		return defaultVal
	}
	return s
}
