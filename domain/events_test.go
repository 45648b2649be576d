package domain

import (
	"context"
	"testing"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()

	var first, second []Event
	bus.Attach(SinkFunc(func(_ context.Context, ev Event) { first = append(first, ev) }))
	bus.Attach(SinkFunc(func(_ context.Context, ev Event) { second = append(second, ev) }))

	bus.Publish(context.Background(), Event{Type: EventFireStarted, Weapon: "bolt"})

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("fan-out counts = %d, %d, want 1, 1", len(first), len(second))
	}
	if first[0].Weapon != "bolt" {
		t.Errorf("Weapon = %s, want bolt", first[0].Weapon)
	}
}

func TestBusAttachNil(t *testing.T) {
	bus := NewBus()
	bus.Attach(nil)
	// nilシンクはパニックせず無視される
	bus.Publish(context.Background(), Event{Type: EventFireStarted})
}

func TestFeedSinkDropsWhenFull(t *testing.T) {
	sink := NewFeedSink(2)
	ctx := context.Background()

	sink.Publish(ctx, Event{Type: EventFireStarted})
	sink.Publish(ctx, Event{Type: EventFireEnded})
	sink.Publish(ctx, Event{Type: EventImpact}) // バッファ満杯、破棄される

	events := sink.Drain()
	if len(events) != 2 {
		t.Fatalf("drained %d events, want 2", len(events))
	}
	if events[0].Type != EventFireStarted || events[1].Type != EventFireEnded {
		t.Errorf("unexpected event order: %+v", events)
	}
}

func TestFeedSinkDrainEmpty(t *testing.T) {
	sink := NewFeedSink(4)
	if events := sink.Drain(); len(events) != 0 {
		t.Errorf("drained %d events, want 0", len(events))
	}
}
