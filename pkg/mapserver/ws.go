// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mapserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/opengeos/anymap-sub000/pkg/mapwidget"
	"github.com/opengeos/anymap-sub000/pkg/mps"
)

const wsReadWaitTimeout = 15 * time.Second
const wsWriteWaitTimeout = 10 * time.Second
const wsPingPeriodTickTime = 10 * time.Second
const wsInitialPingTime = 1 * time.Second

var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:   4 * 1024,
	WriteBufferSize:  32 * 1024,
	HandshakeTimeout: 1 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// wsClient is one live browser view attached to a widget.  It implements
// mps.Client so broker events flow into its output channel.
type wsClient struct {
	connId   string
	widget   *mapwidget.MapWidget
	outputCh chan any
}

func (c *wsClient) ClientId() string {
	return c.connId
}

// SendEvent forwards a broker event down the socket.  A queued-calls
// notification is expanded into the drained call records; everything else is
// passed through.  A full output channel drops the message (the next drain
// resyncs state).
func (c *wsClient) SendEvent(event mps.MapEvent) {
	var msg any
	switch event.Event {
	case mps.Event_CallsQueued:
		recs := c.widget.DrainCalls()
		if len(recs) == 0 {
			return
		}
		msg = map[string]any{"type": "calls", "widgetid": c.widget.WidgetId(), "calls": recs}
	default:
		msg = map[string]any{"type": "event", "event": event}
	}
	select {
	case c.outputCh <- msg:
	default:
		log.Printf("[warning] ws output channel full, dropping %s for conn %s\n", event.Event, c.connId)
	}
}

func getMessageType(jmsg map[string]any) string {
	if str, ok := jmsg["type"].(string); ok {
		return str
	}
	return ""
}

// processMessage handles one inbound view message.  Map events are pushed
// onto the widget's event queue and dispatched to host callbacks.
func processMessage(jmsg map[string]any, widget *mapwidget.MapWidget, outputCh chan any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic in processMessage: %v\n", r)
			debug.PrintStack()
			outputCh <- map[string]any{"type": "error", "error": fmt.Sprintf("panic: %v", r)}
		}
	}()
	switch getMessageType(jmsg) {
	case "mapevent":
		eventData, ok := jmsg["event"].(map[string]any)
		if !ok {
			outputCh <- map[string]any{"type": "error", "error": "mapevent message has no event object"}
			return
		}
		widget.PushEvent(mapwidget.EventRecord(eventData))
		widget.DispatchEvents()
	case "drain":
		recs := widget.DrainCalls()
		outputCh <- map[string]any{"type": "calls", "widgetid": widget.WidgetId(), "calls": recs}
	default:
		log.Printf("[warning] unknown ws message type %q\n", getMessageType(jmsg))
	}
}

func readLoop(conn *websocket.Conn, widget *mapwidget.MapWidget, outputCh chan any, closeCh chan any) {
	readWait := wsReadWaitTimeout
	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(readWait))
	defer close(closeCh)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("ReadPump error: %v\n", err)
			break
		}
		jmsg := map[string]any{}
		err = json.Unmarshal(message, &jmsg)
		if err != nil {
			log.Printf("Error unmarshalling json: %v\n", err)
			break
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
		msgType := getMessageType(jmsg)
		if msgType == "pong" {
			// nothing
			continue
		}
		if msgType == "ping" {
			now := time.Now()
			pongMessage := map[string]any{"type": "pong", "stime": now.UnixMilli()}
			outputCh <- pongMessage
			continue
		}
		processMessage(jmsg, widget, outputCh)
	}
}

func writePing(conn *websocket.Conn) error {
	now := time.Now()
	pingMessage := map[string]any{"type": "ping", "stime": now.UnixMilli()}
	jsonVal, _ := json.Marshal(pingMessage)
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout)) // no error
	return conn.WriteMessage(websocket.TextMessage, jsonVal)
}

func writeLoop(conn *websocket.Conn, outputCh chan any, closeCh chan any) {
	ticker := time.NewTicker(wsInitialPingTime)
	defer ticker.Stop()
	initialPing := true
	for {
		select {
		case msg := <-outputCh:
			barr, err := json.Marshal(msg)
			if err != nil {
				log.Printf("cannot marshal websocket message: %v\n", err)
				break
			}
			err = conn.WriteMessage(websocket.TextMessage, barr)
			if err != nil {
				conn.Close()
				log.Printf("WritePump error: %v\n", err)
				return
			}

		case <-ticker.C:
			err := writePing(conn)
			if err != nil {
				log.Printf("WritePump error: %v\n", err)
				return
			}
			if initialPing {
				initialPing = false
				ticker.Reset(wsPingPeriodTickTime)
			}

		case <-closeCh:
			return
		}
	}
}

func (s *Server) handleWs(w http.ResponseWriter, r *http.Request) {
	err := s.handleWsInternal(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleWsInternal(w http.ResponseWriter, r *http.Request) error {
	widgetId := r.URL.Query().Get("widgetid")
	if widgetId == "" {
		return fmt.Errorf("widgetid is required")
	}
	widget := s.registry.Get(widgetId)
	if widget == nil {
		return fmt.Errorf("no active widget %s", widgetId)
	}
	conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("WebSocket Upgrade Failed: %v", err)
	}
	defer conn.Close()
	client := &wsClient{
		connId:   uuid.New().String(),
		widget:   widget,
		outputCh: make(chan any, 100),
	}
	log.Printf("New websocket connection: widgetid:%s connid:%s\n", widgetId, client.connId)
	s.broker.Subscribe(client, mps.SubscriptionRequest{Event: mps.Event_CallsQueued, Scopes: []string{widgetId}})
	s.broker.Subscribe(client, mps.SubscriptionRequest{Event: mps.Event_ConfigUpdate, AllScopes: true})
	defer s.broker.UnsubscribeAll(client)

	// initial sync: full snapshot, then whatever calls are already queued
	client.outputCh <- map[string]any{"type": "snapshot", "snapshot": widget.Snapshot()}
	if recs := widget.DrainCalls(); len(recs) > 0 {
		client.outputCh <- map[string]any{"type": "calls", "widgetid": widgetId, "calls": recs}
	}

	closeCh := make(chan any)
	wg := &sync.WaitGroup{}
	wg.Add(2)
	go func() {
		// read loop
		defer wg.Done()
		readLoop(conn, widget, client.outputCh, closeCh)
	}()
	go func() {
		// write loop
		defer wg.Done()
		writeLoop(conn, client.outputCh, closeCh)
	}()
	wg.Wait()
	return nil
}
