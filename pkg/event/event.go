// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// Type represents the type of event
type Type string

// Common event types
const (
	SimulationStarted Type = "simulation_started"
	SimulationEnded   Type = "simulation_ended"
	TrajectoryReset   Type = "trajectory_reset"
	TracerSampled     Type = "tracer_sampled"
	BodyUpdated       Type = "body_updated"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Bus manages event subscriptions and dispatching. Publish is synchronous:
// handlers run in subscription order on the publisher's goroutine, which is
// what keeps tracer samples arriving in time order.
type Bus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers, ok := b.handlers[event.GetType()]
	b.mu.RUnlock()

	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(event)
	}
}

// Specific event implementations

// TracerEvent carries one sampled trajectory marker
type TracerEvent struct {
	BaseEvent
	Position physics.Vector2D
	Tick     uint64
}

// NewTracerEvent creates a new tracer sample event
func NewTracerEvent(source interface{}, position physics.Vector2D, tick uint64) *TracerEvent {
	return &TracerEvent{
		BaseEvent: BaseEvent{
			EventType: TracerSampled,
			Source:    source,
		},
		Position: position,
		Tick:     tick,
	}
}

// BodyEvent carries the body snapshot produced by one integration step, or
// the body a new trajectory session starts from
type BodyEvent struct {
	BaseEvent
	Body entity.Body
	Tick uint64
}

// NewBodyEvent creates a new body event of the given type
func NewBodyEvent(eventType Type, source interface{}, body entity.Body, tick uint64) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Body: body,
		Tick: tick,
	}
}
