// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mps

// Event names published through the broker.  View-originated map events
// (click, moveend, ...) are published under Event_MapEvent with the raw
// event type inside the payload; widget lifecycle and config changes get
// their own names.
const (
	Event_MapEvent      = "mapevent"      // type: mapwidget.EventRecord
	Event_CallsQueued   = "callsqueued"   // type: none (scope = widget id)
	Event_WidgetClosed  = "widgetclosed"  // type: none
	Event_ConfigUpdate  = "configupdate"  // type: mapconfig.WatcherUpdate
	Event_DrawData      = "drawdata"      // type: map[string]any (GeoJSON FeatureCollection)
	Event_DispatchError = "dispatcherror" // type: map[string]any {method, error}
)
