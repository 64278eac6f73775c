// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// mapserver serves live widget views over HTTP: an exported page per widget
// plus a websocket that streams queued calls down and map events back up.
package mapserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/opengeos/anymap-sub000/pkg/backends"
	"github.com/opengeos/anymap-sub000/pkg/htmlexport"
	"github.com/opengeos/anymap-sub000/pkg/mapconfig"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
	"github.com/opengeos/anymap-sub000/pkg/mps"
	"golang.org/x/sync/errgroup"
)

const HttpReadTimeout = 5 * time.Second
const HttpWriteTimeout = 21 * time.Second
const HttpMaxHeaderBytes = 60000
const httpShutdownTimeout = 5 * time.Second

type Server struct {
	addr     string
	broker   *mps.Broker
	registry *mapwidget.Registry
}

// MakeServer wires a broker and widget registry into an HTTP server.  An
// empty addr falls back to the configured server:addr setting.
func MakeServer(addr string, broker *mps.Broker, registry *mapwidget.Registry) *Server {
	if addr == "" {
		addr = mapconfig.ReadFullConfig().Settings.ServerAddr
	}
	if broker == nil {
		broker = mps.MakeBroker()
	}
	if registry == nil {
		registry = mapwidget.DefaultRegistry()
	}
	return &Server{addr: addr, broker: broker, registry: registry}
}

func (s *Server) Broker() *mps.Broker {
	return s.broker
}

// RegisterWidget makes the widget servable and attaches it to the broker.
// Exclusive backends (Potree) get ErrBackendBusy on a second registration.
func (s *Server) RegisterWidget(w *mapwidget.MapWidget) error {
	exclusive := backends.ExclusiveBackends[w.Backend()]
	if err := s.registry.Activate(w, exclusive); err != nil {
		return err
	}
	w.AttachBroker(s.broker)
	return nil
}

func (s *Server) UnregisterWidget(widgetId string) {
	s.registry.Deactivate(widgetId)
	s.broker.Publish(mps.MapEvent{
		Event:  mps.Event_WidgetClosed,
		Scopes: []string{widgetId},
	})
}

func (s *Server) router() *mux.Router {
	gr := mux.NewRouter()
	gr.HandleFunc("/map/{widgetid}", s.handleMapPage).Methods("GET")
	gr.HandleFunc("/ws", s.handleWs).Methods("GET")
	gr.HandleFunc("/api/widgets", s.handleListWidgets).Methods("GET")
	return gr
}

func (s *Server) handleMapPage(w http.ResponseWriter, r *http.Request) {
	widgetId := mux.Vars(r)["widgetid"]
	widget := s.registry.Get(widgetId)
	if widget == nil {
		http.Error(w, fmt.Sprintf("no active widget %s", widgetId), http.StatusNotFound)
		return
	}
	// queued calls are not embedded; the websocket initial sync delivers them
	page, err := htmlexport.ExportSnapshot(widget.Snapshot(), nil, htmlexport.Options{Live: true})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *Server) handleListWidgets(w http.ResponseWriter, r *http.Request) {
	type widgetInfo struct {
		WidgetId string `json:"widgetid"`
		Backend  string `json:"backend"`
	}
	var rtn []widgetInfo
	for _, widgetId := range s.registry.ActiveIds() {
		widget := s.registry.Get(widgetId)
		if widget == nil {
			continue
		}
		rtn = append(rtn, widgetInfo{WidgetId: widgetId, Backend: widget.Backend()})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rtn)
}

// Run serves until ctx is canceled, then shuts down gracefully.  The config
// watcher broadcasts settings changes to connected views for as long as the
// server runs.
func (s *Server) Run(ctx context.Context) error {
	watcher := mapconfig.GetWatcher(s.broker)
	watcher.Start()
	defer watcher.Close()

	server := &http.Server{
		Addr:           s.addr,
		ReadTimeout:    HttpReadTimeout,
		WriteTimeout:   HttpWriteTimeout,
		MaxHeaderBytes: HttpMaxHeaderBytes,
		Handler:        s.router(),
	}
	server.SetKeepAlivesEnabled(false)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("Running map server on %s\n", s.addr)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("map server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
