// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mapserver

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opengeos/anymap-sub000/pkg/backends"
	"github.com/opengeos/anymap-sub000/pkg/mapbase"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
	"github.com/opengeos/anymap-sub000/pkg/mps"
)

func makeTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	return MakeServer("127.0.0.1:0", mps.MakeBroker(), mapwidget.MakeRegistry())
}

func TestRegisterWidgetExclusive(t *testing.T) {
	s := makeTestServer(t)
	registry := mapwidget.MakeRegistry()
	s.registry = registry

	p1, err := backends.MakePotreeMap(backends.PotreeOptions{Registry: registry})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := backends.MakePotreeMap(backends.PotreeOptions{Registry: registry})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterWidget(p1.MapWidget); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err = s.RegisterWidget(p2.MapWidget)
	if !errors.Is(err, mapwidget.ErrBackendBusy) {
		t.Errorf("expected ErrBackendBusy, got %v", err)
	}
	s.UnregisterWidget(p1.WidgetId())
	if err := s.RegisterWidget(p2.MapWidget); err != nil {
		t.Errorf("register after unregister: %v", err)
	}
}

func TestMapPageServesExport(t *testing.T) {
	s := makeTestServer(t)
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{})
	m.AddGeoJSONLayer("parks", map[string]any{"type": "FeatureCollection"}, "fill", nil)
	if err := s.RegisterWidget(m.MapWidget); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/map/"+m.WidgetId(), nil)
	s.router().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"parks"`) {
		t.Errorf("served page missing layer state")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/map/no-such-widget", nil)
	s.router().ServeHTTP(rec, req)
	if rec.Code != 404 {
		t.Errorf("expected 404 for unknown widget, got %d", rec.Code)
	}
}

func TestListWidgets(t *testing.T) {
	s := makeTestServer(t)
	m := backends.MakeLeafletMap(backends.LeafletOptions{})
	if err := s.RegisterWidget(m.MapWidget); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/widgets", nil)
	s.router().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var widgets []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &widgets); err != nil {
		t.Fatal(err)
	}
	if len(widgets) != 1 || widgets[0]["backend"] != backends.Backend_Leaflet {
		t.Errorf("unexpected widget list: %v", widgets)
	}
}

func TestWSClientDrainsQueuedCalls(t *testing.T) {
	s := makeTestServer(t)
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{})
	if err := s.RegisterWidget(m.MapWidget); err != nil {
		t.Fatal(err)
	}
	client := &wsClient{connId: "c1", widget: m.MapWidget, outputCh: make(chan any, 10)}
	s.broker.Subscribe(client, mps.SubscriptionRequest{Event: mps.Event_CallsQueued, Scopes: []string{m.WidgetId()}})

	m.SetStyle("https://example.com/style.json")
	select {
	case msg := <-client.outputCh:
		m2, ok := msg.(map[string]any)
		if !ok || m2["type"] != "calls" {
			t.Fatalf("unexpected message: %#v", msg)
		}
	default:
		t.Fatalf("no calls message delivered")
	}
	if m.PendingCallCount() != 0 {
		t.Errorf("calls not drained by delivery")
	}
}

func TestProcessMessageDispatchesMapEvent(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{})
	var got mapwidget.EventRecord
	m.OnMapEvent("click", func(event mapwidget.EventRecord) {
		got = event
	})

	outputCh := make(chan any, 10)
	processMessage(map[string]any{
		"type":  "mapevent",
		"event": map[string]any{"type": "click", "lngLat": []any{-122.42, 37.77}},
	}, m.MapWidget, outputCh)

	if got == nil || got.EventType() != "click" {
		t.Errorf("click handler not invoked: %#v", got)
	}
}

func TestProcessMessageBadPayload(t *testing.T) {
	t.Setenv(mapbase.AnymapHomeVarName, t.TempDir())
	m := backends.MakeMapLibreMap(backends.MapLibreOptions{})
	outputCh := make(chan any, 10)
	processMessage(map[string]any{"type": "mapevent"}, m.MapWidget, outputCh)
	select {
	case msg := <-outputCh:
		m2, _ := msg.(map[string]any)
		if m2["type"] != "error" {
			t.Errorf("expected error message, got %#v", msg)
		}
	default:
		t.Errorf("expected error message for bad payload")
	}
}
