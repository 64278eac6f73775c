// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

// map pubsub system
package mps

import (
	"sync"

	"github.com/opengeos/anymap-sub000/pkg/util/utilfn"
)

// this broker interface is mostly generic
// event names and payload types are defined by the producers

type MapEvent struct {
	Event  string   `json:"event"`
	Scopes []string `json:"scopes,omitempty"` // widget ids
	Sender string   `json:"sender,omitempty"`
	Data   any      `json:"data,omitempty"`
}

func (e MapEvent) HasScope(scope string) bool {
	return utilfn.ContainsStr(e.Scopes, scope)
}

type SubscriptionRequest struct {
	Event     string   `json:"event"`
	Scopes    []string `json:"scopes,omitempty"`
	AllScopes bool     `json:"allscopes,omitempty"`
}

type Client interface {
	ClientId() string
	SendEvent(event MapEvent)
}

type BrokerSubscription struct {
	AllSubs   []string            // clientids subscribed to all scopes
	ScopeSubs map[string][]string // clientids subscribed to specific widget ids
}

func (bs *BrokerSubscription) IsEmpty() bool {
	return len(bs.AllSubs) == 0 && len(bs.ScopeSubs) == 0
}

type Broker struct {
	Lock      *sync.Mutex
	ClientMap map[string]Client
	SubMap    map[string]*BrokerSubscription
}

func MakeBroker() *Broker {
	return &Broker{
		Lock:      &sync.Mutex{},
		ClientMap: make(map[string]Client),
		SubMap:    make(map[string]*BrokerSubscription),
	}
}

func (b *Broker) Subscribe(subscriber Client, sub SubscriptionRequest) {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	clientId := subscriber.ClientId()
	b.ClientMap[clientId] = subscriber
	bs := b.SubMap[sub.Event]
	if bs == nil {
		bs = &BrokerSubscription{
			AllSubs:   []string{},
			ScopeSubs: make(map[string][]string),
		}
		b.SubMap[sub.Event] = bs
	}
	if sub.AllScopes {
		bs.AllSubs = utilfn.AddElemToSliceUniq(bs.AllSubs, clientId)
	}
	for _, scope := range sub.Scopes {
		scopeSubs := bs.ScopeSubs[scope]
		scopeSubs = utilfn.AddElemToSliceUniq(scopeSubs, clientId)
		bs.ScopeSubs[scope] = scopeSubs
	}
}

func (b *Broker) Unsubscribe(subscriber Client, sub SubscriptionRequest) {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	clientId := subscriber.ClientId()
	bs := b.SubMap[sub.Event]
	if bs == nil {
		return
	}
	if sub.AllScopes {
		bs.AllSubs = utilfn.RemoveElemFromSlice(bs.AllSubs, clientId)
	}
	for _, scope := range sub.Scopes {
		scopeSubs := utilfn.RemoveElemFromSlice(bs.ScopeSubs[scope], clientId)
		if len(scopeSubs) == 0 {
			delete(bs.ScopeSubs, scope)
		} else {
			bs.ScopeSubs[scope] = scopeSubs
		}
	}
	if bs.IsEmpty() {
		delete(b.SubMap, sub.Event)
	}
}

func (b *Broker) UnsubscribeAll(subscriber Client) {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	clientId := subscriber.ClientId()
	delete(b.ClientMap, clientId)
	for eventType, bs := range b.SubMap {
		bs.AllSubs = utilfn.RemoveElemFromSlice(bs.AllSubs, clientId)
		for scope, scopeSubs := range bs.ScopeSubs {
			scopeSubs = utilfn.RemoveElemFromSlice(scopeSubs, clientId)
			if len(scopeSubs) == 0 {
				delete(bs.ScopeSubs, scope)
			} else {
				bs.ScopeSubs[scope] = scopeSubs
			}
		}
		if bs.IsEmpty() {
			delete(b.SubMap, eventType)
		}
	}
}

func (b *Broker) Publish(event MapEvent) {
	clientIds := b.getMatchingClientIds(event)
	for _, clientId := range clientIds {
		b.Lock.Lock()
		client := b.ClientMap[clientId]
		b.Lock.Unlock()
		if client != nil {
			client.SendEvent(event)
		}
	}
}

func (b *Broker) getMatchingClientIds(event MapEvent) []string {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	bs := b.SubMap[event.Event]
	if bs == nil {
		return nil
	}
	clientIds := make(map[string]bool)
	for _, clientId := range bs.AllSubs {
		clientIds[clientId] = true
	}
	for _, scope := range event.Scopes {
		for _, clientId := range bs.ScopeSubs[scope] {
			clientIds[clientId] = true
		}
	}
	var rtn []string
	for clientId := range clientIds {
		rtn = append(rtn, clientId)
	}
	return rtn
}
