package stagecraft

import "reflect"

// MaxEventTypes defines the maximum number of unique event types that can be
// registered in the EventBus. This value is fixed at 256.
const MaxEventTypes = 256

// EventBus provides a simple, type-safe bus for decoupled notification of
// lifecycle events. The core publishes the event types below when a bus is
// wired to a container or manager; applications may publish their own types
// through the same bus. Handlers run synchronously, in subscription order, on
// the frame thread.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]any
	nextEventTypeID uint8
}

// ComponentRegisteredEvent fires when a component joins a container's live
// set.
type ComponentRegisteredEvent struct {
	Component Component
}

// ComponentUnregisteredEvent fires when a component leaves a container's
// live set.
type ComponentUnregisteredEvent struct {
	Component Component
}

// SceneLoadedEvent fires after a scene is registered as loaded, before its
// Load hook runs.
type SceneLoadedEvent struct {
	Scene Scene
	Mode  LoadMode
}

// SceneUnloadedEvent fires after a scene's Unload hook ran and its container
// was destroyed.
type SceneUnloadedEvent struct {
	Scene Scene
}

// Subscribe registers a handler function to be called when an event of type
// T is published. Handlers are stored in the order they are subscribed.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	t := reflect.TypeFor[T]()
	id := bus.getEventTypeID(t)
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish broadcasts an event of type T to all registered handlers for that
// type, synchronously. A nil bus is a no-op, so the core can publish without
// checking whether anything is wired.
func Publish[T any](bus *EventBus, event T) {
	if bus == nil {
		return
	}
	t := reflect.TypeFor[T]()
	if id, ok := bus.eventTypeMap[t]; ok {
		for _, h := range bus.handlers[id] {
			h.(func(T))(event)
		}
	}
}

// getEventTypeID retrieves or assigns an ID for the event type.
func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if len(bus.eventTypeMap) >= MaxEventTypes {
		panic("stagecraft: too many event types")
	}
	id := bus.nextEventTypeID
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
