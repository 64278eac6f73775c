// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mapwidget

import (
	"fmt"
	"sync"
)

// ErrBackendBusy is returned when activating a second widget of an
// exclusive backend (Potree renders into a single global container and
// supports one concurrent instance).
var ErrBackendBusy = fmt.Errorf("backend already has an active exclusive instance")

// Registry tracks which widgets currently have a live view, keyed by widget
// id.  Exclusive backends get an API-level error on a second activation
// instead of a silent DOM conflict.
type Registry struct {
	lock      *sync.Mutex
	active    map[string]*MapWidget // widgetid -> widget
	exclusive map[string]string     // backend -> widgetid holding the slot
}

func MakeRegistry() *Registry {
	return &Registry{
		lock:      &sync.Mutex{},
		active:    make(map[string]*MapWidget),
		exclusive: make(map[string]string),
	}
}

var defaultRegistry = MakeRegistry()

func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Activate marks the widget as having a live view.  Activating an already
// active widget is a no-op (a re-render replaces the prior view,
// last-render-wins).
func (r *Registry) Activate(w *MapWidget, exclusive bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if exclusive {
		holder, ok := r.exclusive[w.Backend()]
		if ok && holder != w.WidgetId() {
			return fmt.Errorf("%w: backend %q held by widget %s", ErrBackendBusy, w.Backend(), holder)
		}
		r.exclusive[w.Backend()] = w.WidgetId()
	}
	r.active[w.WidgetId()] = w
	return nil
}

func (r *Registry) Deactivate(widgetId string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	w, ok := r.active[widgetId]
	if !ok {
		return
	}
	delete(r.active, widgetId)
	if r.exclusive[w.Backend()] == widgetId {
		delete(r.exclusive, w.Backend())
	}
}

func (r *Registry) Get(widgetId string) *MapWidget {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.active[widgetId]
}

func (r *Registry) ActiveIds() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	rtn := make([]string, 0, len(r.active))
	for widgetId := range r.active {
		rtn = append(rtn, widgetId)
	}
	return rtn
}
