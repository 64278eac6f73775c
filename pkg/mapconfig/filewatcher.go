// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mapconfig

import (
	"log"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/opengeos/anymap-sub000/pkg/mapbase"
	"github.com/opengeos/anymap-sub000/pkg/mps"
)

var instance *Watcher
var once sync.Once

// Watcher watches the config dir and broadcasts merged config on change.
type Watcher struct {
	initialized bool
	watcher     *fsnotify.Watcher
	mutex       sync.Mutex
	broker      *mps.Broker
	fullConfig  FullConfigType
}

type WatcherUpdate struct {
	FullConfig FullConfigType `json:"fullconfig"`
}

// GetWatcher returns the singleton instance of the Watcher
func GetWatcher(broker *mps.Broker) *Watcher {
	once.Do(func() {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Printf("failed to create file watcher: %v", err)
			return
		}
		instance = &Watcher{watcher: watcher, broker: broker}
		configDir := mapbase.GetConfigDir()
		if err := mapbase.EnsureDir(configDir); err != nil {
			log.Printf("failed to create config dir %s: %v", configDir, err)
		}
		err = instance.watcher.Add(configDir)
		if err != nil {
			log.Printf("failed to add path %s to watcher: %v", configDir, err)
		}
	})
	return instance
}

func (w *Watcher) Start() {
	if w == nil {
		return
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()

	log.Printf("starting config watcher\n")
	w.initialized = true
	w.fullConfig = ReadFullConfig()
	w.broadcast(WatcherUpdate{FullConfig: w.fullConfig})

	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Println("watcher error:", err)
			}
		}
	}()
}

func (w *Watcher) Close() {
	if w == nil {
		return
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
		log.Println("config watcher closed")
	}
}

func (w *Watcher) broadcast(message WatcherUpdate) {
	if w.broker == nil {
		return
	}
	w.broker.Publish(mps.MapEvent{
		Event: mps.Event_ConfigUpdate,
		Data:  message,
	})
}

func (w *Watcher) GetFullConfig() FullConfigType {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.fullConfig
}

var validFileRe = regexp.MustCompile(`^[a-zA-Z0-9_@.-]+\.json$`)

func isValidConfigFileName(fileName string) bool {
	if filepath.Ext(fileName) != ".json" {
		return false
	}
	return validFileRe.MatchString(filepath.Base(fileName))
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if event.Op == fsnotify.Chmod {
		return
	}
	if !isValidConfigFileName(filepath.ToSlash(event.Name)) {
		return
	}
	w.fullConfig = ReadFullConfig()
	w.broadcast(WatcherUpdate{FullConfig: w.fullConfig})
}
