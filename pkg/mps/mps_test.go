// Copyright 2026, Open Geospatial Solutions
// SPDX-License-Identifier: Apache-2.0

package mps

import (
	"testing"
)

type testClient struct {
	id     string
	events []MapEvent
}

func (c *testClient) ClientId() string { return c.id }

func (c *testClient) SendEvent(event MapEvent) {
	c.events = append(c.events, event)
}

func TestBroker_ScopedSubscription(t *testing.T) {
	b := MakeBroker()
	c1 := &testClient{id: "c1"}
	c2 := &testClient{id: "c2"}
	b.Subscribe(c1, SubscriptionRequest{Event: Event_MapEvent, Scopes: []string{"widget-a"}})
	b.Subscribe(c2, SubscriptionRequest{Event: Event_MapEvent, Scopes: []string{"widget-b"}})

	b.Publish(MapEvent{Event: Event_MapEvent, Scopes: []string{"widget-a"}, Data: "click"})
	if len(c1.events) != 1 {
		t.Errorf("c1 expected 1 event, got %d", len(c1.events))
	}
	if len(c2.events) != 0 {
		t.Errorf("c2 expected 0 events, got %d", len(c2.events))
	}
}

func TestBroker_AllScopes(t *testing.T) {
	b := MakeBroker()
	c := &testClient{id: "c"}
	b.Subscribe(c, SubscriptionRequest{Event: Event_MapEvent, AllScopes: true})
	b.Publish(MapEvent{Event: Event_MapEvent, Scopes: []string{"anything"}})
	b.Publish(MapEvent{Event: Event_MapEvent})
	if len(c.events) != 2 {
		t.Errorf("expected 2 events, got %d", len(c.events))
	}
}

func TestBroker_NoDuplicateDelivery(t *testing.T) {
	b := MakeBroker()
	c := &testClient{id: "c"}
	b.Subscribe(c, SubscriptionRequest{Event: Event_MapEvent, AllScopes: true, Scopes: []string{"w1"}})
	b.Publish(MapEvent{Event: Event_MapEvent, Scopes: []string{"w1"}})
	if len(c.events) != 1 {
		t.Errorf("expected single delivery, got %d", len(c.events))
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := MakeBroker()
	c := &testClient{id: "c"}
	sub := SubscriptionRequest{Event: Event_MapEvent, Scopes: []string{"w1"}}
	b.Subscribe(c, sub)
	b.Unsubscribe(c, sub)
	b.Publish(MapEvent{Event: Event_MapEvent, Scopes: []string{"w1"}})
	if len(c.events) != 0 {
		t.Errorf("expected no delivery after unsubscribe, got %d", len(c.events))
	}
	if len(b.SubMap) != 0 {
		t.Errorf("expected empty submap after last unsubscribe")
	}
}

func TestBroker_UnsubscribeAll(t *testing.T) {
	b := MakeBroker()
	c := &testClient{id: "c"}
	b.Subscribe(c, SubscriptionRequest{Event: Event_MapEvent, Scopes: []string{"w1"}})
	b.Subscribe(c, SubscriptionRequest{Event: Event_ConfigUpdate, AllScopes: true})
	b.UnsubscribeAll(c)
	b.Publish(MapEvent{Event: Event_MapEvent, Scopes: []string{"w1"}})
	b.Publish(MapEvent{Event: Event_ConfigUpdate})
	if len(c.events) != 0 {
		t.Errorf("expected no delivery after UnsubscribeAll, got %d", len(c.events))
	}
}
