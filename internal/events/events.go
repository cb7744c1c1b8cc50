// Package events defines the notification port shared by every simulation
// system. Components take a Bus as a constructor dependency rather than
// importing a shared singleton, so the core never depends on who is listening.
package events

// Type categorizes a notification.
type Type string

const (
	TypeResourceTick     Type = "RESOURCE_TICK"
	TypeRatesChanged     Type = "RATES_CHANGED"
	TypePopulationChange Type = "POPULATION_CHANGE"
	TypeQueueCompleted   Type = "QUEUE_COMPLETED"
	TypeQueueCancelled   Type = "QUEUE_CANCELLED"
	TypeQueueStarted     Type = "QUEUE_STARTED"
	TypeShortfallBegan   Type = "SHORTFALL_BEGAN"
	TypeShortfallEnded   Type = "SHORTFALL_ENDED"
	TypeUIPulse          Type = "UI_PULSE"
)

// Event is a single notification. Payload shape depends on Type.
type Event struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
}

// CompletionPayload accompanies TypeQueueCompleted and TypeQueueCancelled.
type CompletionPayload struct {
	Domain string `json:"domain"` // "construction", "research", "training"
	Key    string `json:"key"`    // catalog key of the finished item
	Level  int    `json:"level"`  // resulting level or trained count
}

// PopulationPayload accompanies TypePopulationChange.
type PopulationPayload struct {
	Current float64 `json:"current"`
	Cap     float64 `json:"cap"`
}

// Bus is the publish side of the pub/sub capability handed to each system.
type Bus interface {
	Publish(Event)
}

// Handler receives published events.
type Handler func(Event)

// Dispatcher is the in-process Bus implementation. Delivery is synchronous
// and in subscription order; the simulation is single-threaded so handlers
// run to completion before the next publish.
type Dispatcher struct {
	handlers map[Type][]Handler
	all      []Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for one event type.
func (d *Dispatcher) Subscribe(t Type, h Handler) {
	d.handlers[t] = append(d.handlers[t], h)
}

// SubscribeAll registers a handler for every event type.
func (d *Dispatcher) SubscribeAll(h Handler) {
	d.all = append(d.all, h)
}

// Publish delivers an event to all matching handlers.
func (d *Dispatcher) Publish(e Event) {
	for _, h := range d.handlers[e.Type] {
		h(e)
	}
	for _, h := range d.all {
		h(e)
	}
}

// Nop is a Bus that discards everything. Useful for tests and for systems
// constructed before wiring.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(Event) {}
