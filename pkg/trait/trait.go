// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// trait implements the observable property store that backs every map
// widget.  trait names are the wire contract between the host and the view.
package trait

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Change is delivered to observers on every Set.
type Change struct {
	Name string
	Old  any
	New  any
}

type ObserverFn func(change Change)

type observerEntry struct {
	id int
	fn ObserverFn
}

// Store holds named trait values with declared defaults.  All values are
// JSON-shaped (numbers, strings, bools, []any, map[string]any, or structs
// that marshal to those).  Each Set is independently observable; there is no
// transactional grouping of writes.
type Store struct {
	lock       *sync.Mutex
	defaults   map[string]any
	values     map[string]any
	observers  map[string][]observerEntry
	observerId int
}

func MakeStore(defaults map[string]any) *Store {
	s := &Store{
		lock:      &sync.Mutex{},
		defaults:  make(map[string]any, len(defaults)),
		values:    make(map[string]any),
		observers: make(map[string][]observerEntry),
	}
	for name, val := range defaults {
		s.defaults[name] = val
	}
	return s
}

// Declare registers a trait default after construction.  Backends use this
// to add their own traits on top of the base widget set.
func (s *Store) Declare(name string, defaultVal any) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.defaults[name] = defaultVal
}

func (s *Store) Has(name string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.values[name]; ok {
		return true
	}
	_, ok := s.defaults[name]
	return ok
}

func (s *Store) Get(name string) any {
	s.lock.Lock()
	defer s.lock.Unlock()
	if val, ok := s.values[name]; ok {
		return val
	}
	return s.defaults[name]
}

// GetAs unmarshals the trait value into out (a pointer) via a JSON round
// trip.  Useful for pulling typed config out of the loosely typed store.
func (s *Store) GetAs(name string, out any) error {
	val := s.Get(name)
	if val == nil {
		return nil
	}
	barr, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("trait %q marshal: %w", name, err)
	}
	return json.Unmarshal(barr, out)
}

// Set stores the value and synchronously notifies observers of name.
// Observers run without the store lock held, so they may call back into the
// store.  Invocation order across observers is not guaranteed.
func (s *Store) Set(name string, val any) error {
	s.lock.Lock()
	old, ok := s.values[name]
	if !ok {
		old = s.defaults[name]
	}
	adapted, err := s.adaptVal_nolock(name, val)
	if err != nil {
		s.lock.Unlock()
		return err
	}
	s.values[name] = adapted
	entries := append([]observerEntry(nil), s.observers[name]...)
	s.lock.Unlock()

	change := Change{Name: name, Old: old, New: adapted}
	for _, entry := range entries {
		entry.fn(change)
	}
	return nil
}

// adaptVal_nolock coerces val to the declared default's type.  If the types
// already line up (or no default is declared) the value passes through;
// otherwise it goes through a JSON marshal/unmarshal round trip, mirroring
// how values arrive off the wire.
func (s *Store) adaptVal_nolock(name string, val any) (any, error) {
	if val == nil {
		return nil, nil
	}
	defVal, ok := s.defaults[name]
	if !ok || defVal == nil {
		return val, nil
	}
	defType := reflect.TypeOf(defVal)
	if reflect.TypeOf(val) == defType {
		return val, nil
	}
	barr, err := json.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("trait %q: cannot adapt %T: %w", name, val, err)
	}
	resultPtr := reflect.New(defType)
	if err := json.Unmarshal(barr, resultPtr.Interface()); err != nil {
		return nil, fmt.Errorf("trait %q: cannot adapt %T => %s: %w", name, val, defType, err)
	}
	return resultPtr.Elem().Interface(), nil
}

// Observe registers fn for changes to name and returns a cancel func.
func (s *Store) Observe(name string, fn ObserverFn) func() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.observerId++
	id := s.observerId
	s.observers[name] = append(s.observers[name], observerEntry{id: id, fn: fn})
	return func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		entries := s.observers[name]
		for idx, entry := range entries {
			if entry.id == id {
				s.observers[name] = append(entries[:idx:idx], entries[idx+1:]...)
				break
			}
		}
		if len(s.observers[name]) == 0 {
			delete(s.observers, name)
		}
	}
}

// Snapshot returns a copy of every declared trait's current value keyed by
// trait name.  Defaults fill in for traits never written.
func (s *Store) Snapshot() map[string]any {
	s.lock.Lock()
	defer s.lock.Unlock()
	rtn := make(map[string]any, len(s.defaults))
	for name, val := range s.defaults {
		rtn[name] = val
	}
	for name, val := range s.values {
		rtn[name] = val
	}
	return rtn
}

// Names returns all declared/written trait names (order unspecified).
func (s *Store) Names() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	seen := make(map[string]bool)
	var rtn []string
	for name := range s.defaults {
		if !seen[name] {
			seen[name] = true
			rtn = append(rtn, name)
		}
	}
	for name := range s.values {
		if !seen[name] {
			seen[name] = true
			rtn = append(rtn, name)
		}
	}
	return rtn
}
