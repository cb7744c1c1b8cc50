package events

import "testing"

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewDispatcher()

	ticks, all := 0, 0
	d.Subscribe(TypeResourceTick, func(Event) { ticks++ })
	d.SubscribeAll(func(Event) { all++ })

	d.Publish(Event{Type: TypeResourceTick})
	d.Publish(Event{Type: TypeQueueCompleted})

	if ticks != 1 {
		t.Errorf("typed handler fired %d times, want 1", ticks)
	}
	if all != 2 {
		t.Errorf("catch-all handler fired %d times, want 2", all)
	}
}

func TestDispatcherDeliversPayload(t *testing.T) {
	d := NewDispatcher()

	var got CompletionPayload
	d.Subscribe(TypeQueueCompleted, func(e Event) {
		got = e.Payload.(CompletionPayload)
	})

	d.Publish(Event{
		Type:    TypeQueueCompleted,
		Payload: CompletionPayload{Domain: "construction", Key: "sawmill", Level: 2},
	})

	if got.Key != "sawmill" || got.Level != 2 {
		t.Errorf("payload = %+v", got)
	}
}
