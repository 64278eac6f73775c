// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// mapwidget implements the backend-independent widget base: the wire trait
// set, the pending call/event queues, layer/source/control persistence, and
// host-side event callback dispatch.  Backend packages embed MapWidget and
// add their own traits and operations on top.
package mapwidget

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/opengeos/anymap-sub000/pkg/mapcmd"
	"github.com/opengeos/anymap-sub000/pkg/mps"
	"github.com/opengeos/anymap-sub000/pkg/trait"
	"github.com/opengeos/anymap-sub000/pkg/util/utilfn"
)

// wire trait names, shared with the browser-side bootstrap and the HTML
// exporter.  renaming any of these breaks the two sides apart.
const (
	Trait_Center     = "center"
	Trait_Zoom       = "zoom"
	Trait_Width      = "width"
	Trait_Height     = "height"
	Trait_Style      = "style"
	Trait_Bearing    = "bearing"
	Trait_Pitch      = "pitch"
	Trait_Layers     = "_layers"
	Trait_Sources    = "_sources"
	Trait_Controls   = "_controls"
	Trait_Projection = "_projection"
	Trait_JSCalls    = "_js_calls"
	Trait_JSEvents   = "_js_events"
	Trait_DrawData   = "_draw_data"
)

// EventRecord is the wire shape of one view→host event: a flat JSON object
// with at least a "type" field.
type EventRecord map[string]any

func (e EventRecord) EventType() string {
	s, _ := e["type"].(string)
	return s
}

type EventHandlerFn func(event EventRecord)

// Snapshot is the host-side source of truth handed to renders and exports.
// Any view reconstructs itself from a snapshot, which is what makes
// re-display of the same widget idempotent.
type Snapshot struct {
	WidgetId string         `json:"widgetid"`
	Backend  string         `json:"backend"`
	Traits   map[string]any `json:"traits"`
}

type MapWidget struct {
	lock          *sync.Mutex
	widgetId      string
	backend       string
	traits        *trait.Store
	callQueue     *BoundedQueue[mapcmd.CallRecord]
	eventQueue    *BoundedQueue[EventRecord]
	eventHandlers map[string][]EventHandlerFn
	callCounter   int
	broker        *mps.Broker
}

func MakeMapWidget(backend string, extraDefaults map[string]any) *MapWidget {
	defaults := map[string]any{
		Trait_Center:     []float64{0.0, 0.0},
		Trait_Zoom:       2.0,
		Trait_Width:      "100%",
		Trait_Height:     "600px",
		Trait_Style:      nil, // a URL string or a full style object, so no typed default
		Trait_Bearing:    0.0,
		Trait_Pitch:      0.0,
		Trait_Layers:     map[string]any{},
		Trait_Sources:    map[string]any{},
		Trait_Controls:   map[string]any{},
		Trait_Projection: map[string]any{},
		Trait_JSCalls:    []any{},
		Trait_JSEvents:   []any{},
		Trait_DrawData:   map[string]any{},
	}
	for name, val := range extraDefaults {
		defaults[name] = val
	}
	widgetId := uuid.New().String()
	return &MapWidget{
		lock:          &sync.Mutex{},
		widgetId:      widgetId,
		backend:       backend,
		traits:        trait.MakeStore(defaults),
		callQueue:     MakeBoundedQueue[mapcmd.CallRecord](widgetId+":calls", DefaultQueueSize),
		eventQueue:    MakeBoundedQueue[EventRecord](widgetId+":events", DefaultQueueSize),
		eventHandlers: make(map[string][]EventHandlerFn),
	}
}

func (w *MapWidget) WidgetId() string { return w.widgetId }
func (w *MapWidget) Backend() string  { return w.backend }

func (w *MapWidget) Traits() *trait.Store { return w.traits }

// AttachBroker connects the widget to a pubsub broker; queued-call and map
// event notifications are published scoped to the widget id.
func (w *MapWidget) AttachBroker(broker *mps.Broker) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.broker = broker
}

func (w *MapWidget) getBroker() *mps.Broker {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.broker
}

// CallJS appends a command to the pending call queue and mirrors the queue
// into the _js_calls trait.
func (w *MapWidget) CallJS(cmd mapcmd.Command) {
	w.lock.Lock()
	id := w.callCounter
	w.callCounter++
	w.lock.Unlock()
	rec := cmd.Record(id)
	w.callQueue.Enqueue(rec)
	w.syncCallsTrait()
	if broker := w.getBroker(); broker != nil {
		broker.Publish(mps.MapEvent{
			Event:  mps.Event_CallsQueued,
			Scopes: []string{w.widgetId},
			Sender: w.widgetId,
		})
	}
}

// Call is the generic escape hatch: forward an arbitrary method to the
// underlying library object with positional args.
func (w *MapWidget) Call(method string, args ...any) {
	w.CallJS(&mapcmd.DynamicCallCommand{Method: method, Args: args})
}

func (w *MapWidget) syncCallsTrait() {
	recs := w.callQueue.Peek()
	arr := make([]any, 0, len(recs))
	for _, rec := range recs {
		arr = append(arr, rec)
	}
	if err := w.traits.Set(Trait_JSCalls, arr); err != nil {
		log.Printf("[error] syncing %s trait: %v\n", Trait_JSCalls, err)
	}
}

// DrainCalls hands all pending call records to a view (in arrival order) and
// clears the queue.
func (w *MapWidget) DrainCalls() []mapcmd.CallRecord {
	recs := w.callQueue.Drain()
	if len(recs) > 0 {
		w.syncCallsTrait()
	}
	return recs
}

func (w *MapWidget) PendingCallCount() int {
	return w.callQueue.Size()
}

// PendingCalls returns the queued call records without draining them.
func (w *MapWidget) PendingCalls() []mapcmd.CallRecord {
	return w.callQueue.Peek()
}

// OnMapEvent registers a host callback for a view event type.  Callbacks for
// one type run synchronously in registration order.
func (w *MapWidget) OnMapEvent(eventType string, handler EventHandlerFn) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.eventHandlers[eventType] = append(w.eventHandlers[eventType], handler)
}

// PushEvent appends a view event to the pending event queue (append, not
// replace — events between host observations must not be lost).
func (w *MapWidget) PushEvent(event EventRecord) {
	w.eventQueue.Enqueue(event)
	arr := make([]any, 0, w.eventQueue.Size())
	for _, rec := range w.eventQueue.Peek() {
		arr = append(arr, map[string]any(rec))
	}
	if err := w.traits.Set(Trait_JSEvents, arr); err != nil {
		log.Printf("[error] syncing %s trait: %v\n", Trait_JSEvents, err)
	}
}

// DispatchEvents drains the event queue and invokes registered callbacks.
// A panicking callback is logged and does not stop the drain.
func (w *MapWidget) DispatchEvents() int {
	events := w.eventQueue.Drain()
	if len(events) == 0 {
		return 0
	}
	if err := w.traits.Set(Trait_JSEvents, []any{}); err != nil {
		log.Printf("[error] clearing %s trait: %v\n", Trait_JSEvents, err)
	}
	broker := w.getBroker()
	for _, event := range events {
		eventType := event.EventType()
		if eventType == "drawdata" || eventType == "draw.update" {
			w.captureDrawData(event)
		}
		w.lock.Lock()
		handlers := append([]EventHandlerFn(nil), w.eventHandlers[eventType]...)
		w.lock.Unlock()
		for _, handler := range handlers {
			w.invokeHandler(eventType, handler, event)
		}
		if broker != nil {
			broker.Publish(mps.MapEvent{
				Event:  mps.Event_MapEvent,
				Scopes: []string{w.widgetId},
				Sender: w.widgetId,
				Data:   event,
			})
		}
	}
	return len(events)
}

func (w *MapWidget) invokeHandler(eventType string, handler EventHandlerFn, event EventRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[error] panic in %q event handler: %v\n", eventType, r)
		}
	}()
	handler(event)
}

func (w *MapWidget) captureDrawData(event EventRecord) {
	data, ok := event["data"].(map[string]any)
	if !ok {
		return
	}
	if err := w.traits.Set(Trait_DrawData, data); err != nil {
		log.Printf("[error] storing draw data: %v\n", err)
	}
}

func (w *MapWidget) SetCenter(lat float64, lng float64) {
	w.traits.Set(Trait_Center, []float64{lat, lng})
}

func (w *MapWidget) SetZoom(zoom float64) {
	w.traits.Set(Trait_Zoom, zoom)
}

func (w *MapWidget) SetBearing(bearing float64) {
	w.traits.Set(Trait_Bearing, bearing)
}

func (w *MapWidget) SetPitch(pitch float64) {
	w.traits.Set(Trait_Pitch, pitch)
}

func (w *MapWidget) FlyTo(lat float64, lng float64, zoom *float64) {
	options := map[string]any{"center": []float64{lat, lng}}
	if zoom != nil {
		options["zoom"] = *zoom
	}
	w.CallJS(&mapcmd.FlyToCommand{Options: options})
}

func (w *MapWidget) getMapTrait(name string) map[string]any {
	var m map[string]any
	if err := w.traits.GetAs(name, &m); err != nil {
		log.Printf("[error] reading %s trait: %v\n", name, err)
	}
	if m == nil {
		m = make(map[string]any)
	}
	return m
}

// AddLayer persists the layer record (last write wins on the id) and queues
// the view-side addLayer call.
func (w *MapWidget) AddLayer(layerId string, config map[string]any) {
	layers := w.getMapTrait(Trait_Layers)
	layers[layerId] = config
	w.traits.Set(Trait_Layers, layers)
	w.CallJS(&mapcmd.AddLayerCommand{LayerId: layerId, Config: config})
}

func (w *MapWidget) RemoveLayer(layerId string) {
	layers := w.getMapTrait(Trait_Layers)
	if _, ok := layers[layerId]; ok {
		delete(layers, layerId)
		w.traits.Set(Trait_Layers, layers)
	}
	w.CallJS(&mapcmd.RemoveLayerCommand{LayerId: layerId})
}

func (w *MapWidget) AddSource(sourceId string, config map[string]any) {
	sources := w.getMapTrait(Trait_Sources)
	sources[sourceId] = config
	w.traits.Set(Trait_Sources, sources)
	w.CallJS(&mapcmd.AddSourceCommand{SourceId: sourceId, Config: config})
}

func (w *MapWidget) RemoveSource(sourceId string) {
	sources := w.getMapTrait(Trait_Sources)
	if _, ok := sources[sourceId]; ok {
		delete(sources, sourceId)
		w.traits.Set(Trait_Sources, sources)
	}
	w.CallJS(&mapcmd.RemoveSourceCommand{SourceId: sourceId})
}

func ControlKey(controlType string, position string) string {
	return fmt.Sprintf("%s_%s", controlType, position)
}

// AddControl records the control keyed by "{type}_{position}" and queues the
// view call.  A duplicate key is skipped so a control is never instantiated
// twice at the same position.
func (w *MapWidget) AddControl(controlType string, position string, options map[string]any) {
	key := ControlKey(controlType, position)
	controls := w.getMapTrait(Trait_Controls)
	if _, ok := controls[key]; ok {
		log.Printf("[warning] control %q already present, skipping\n", key)
		return
	}
	controls[key] = map[string]any{
		"type":     controlType,
		"position": position,
		"options":  options,
	}
	w.traits.Set(Trait_Controls, controls)
	w.CallJS(&mapcmd.AddControlCommand{ControlType: controlType, Position: position, Options: options})
}

func (w *MapWidget) RemoveControl(controlType string, position string) {
	key := ControlKey(controlType, position)
	controls := w.getMapTrait(Trait_Controls)
	if _, ok := controls[key]; ok {
		delete(controls, key)
		w.traits.Set(Trait_Controls, controls)
	}
	w.CallJS(&mapcmd.RemoveControlCommand{ControlType: controlType, Position: position})
}

func (w *MapWidget) GetLayers() map[string]any {
	return w.getMapTrait(Trait_Layers)
}

func (w *MapWidget) GetSources() map[string]any {
	return w.getMapTrait(Trait_Sources)
}

func (w *MapWidget) GetControls() map[string]any {
	return w.getMapTrait(Trait_Controls)
}

func (w *MapWidget) ClearLayers() {
	for layerId := range w.GetLayers() {
		w.RemoveLayer(layerId)
	}
}

func (w *MapWidget) ClearSources() {
	for sourceId := range w.GetSources() {
		w.RemoveSource(sourceId)
	}
}

func (w *MapWidget) ClearAll() {
	w.ClearLayers()
	w.ClearSources()
}

// Snapshot copies the full trait state.  The pending queues are transient
// and excluded — a fresh view replays from the persistent mappings instead.
func (w *MapWidget) Snapshot() Snapshot {
	traits := w.traits.Snapshot()
	delete(traits, Trait_JSCalls)
	delete(traits, Trait_JSEvents)
	return Snapshot{
		WidgetId: w.widgetId,
		Backend:  w.backend,
		Traits:   utilfn.CopyMap(traits),
	}
}

// RestoreSnapshot loads a stored snapshot back into the trait store (used
// when re-opening a saved map document).
func (w *MapWidget) RestoreSnapshot(snap Snapshot) error {
	if snap.Backend != "" && snap.Backend != w.backend {
		return fmt.Errorf("snapshot backend %q does not match widget backend %q", snap.Backend, w.backend)
	}
	for name, val := range snap.Traits {
		if name == Trait_JSCalls || name == Trait_JSEvents {
			continue
		}
		if err := w.traits.Set(name, val); err != nil {
			return fmt.Errorf("restoring trait %q: %w", name, err)
		}
	}
	return nil
}
