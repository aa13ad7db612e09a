package stagecraft

import (
	"fmt"
	"reflect"
)

// MaxSceneSystems defines the maximum number of distinct scene-system types
// that can be registered process-wide. This value is fixed at 256.
const MaxSceneSystems = 256

// SceneSystem is a singleton cross-cutting processor attached to one
// container. On registration it receives the container and every currently
// registered component as an initialization batch, then incremental
// notifications as components come and go. It participates in per-stage
// dispatch, after entities, by implementing the same stage interfaces
// components use.
//
// ComponentRegistered and ComponentUnregistered see every component; each
// system applies its own type filter and ignores what it does not want.
type SceneSystem interface {
	Attached(c *Container)
	Detached()
	ComponentRegistered(comp Component)
	ComponentUnregistered(comp Component)
}

var (
	nextSystemTypeID uint32
	systemTypeIDs    = make(map[reflect.Type]uint32, MaxSceneSystems)
)

// systemTypeID registers or fetches the monotonic type ID for t. IDs are
// assigned once per distinct type and feed the container's direct-indexed
// system table.
func systemTypeID(t reflect.Type) uint32 {
	if id, ok := systemTypeIDs[t]; ok {
		return id
	}
	if nextSystemTypeID >= MaxSceneSystems {
		panic(fmt.Sprintf("stagecraft: cannot register scene system %s: maximum number of system types (%d) reached", t, MaxSceneSystems))
	}
	id := nextSystemTypeID
	systemTypeIDs[t] = id
	nextSystemTypeID++
	return id
}

// RegisterSystem registers sys as the container's singleton of type T. The
// system receives Attached, then the full current component set. Registering
// the same system type twice on one container panics. No-op while the
// container is being destroyed.
func RegisterSystem[T SceneSystem](c *Container, sys T) {
	if c.destroying {
		return
	}
	id := systemTypeID(reflect.TypeFor[T]())
	if c.systems[id] != nil {
		panic(fmt.Sprintf("stagecraft: scene system %s already registered", reflect.TypeFor[T]()))
	}
	c.systems[id] = sys
	c.systemOrder = append(c.systemOrder, sys)
	sys.Attached(c)
	for _, comp := range c.components {
		sys.ComponentRegistered(comp)
	}
}

// UnregisterSystem removes the container's singleton of type T and sends it
// Detached. Panics if no system of that type is registered.
func UnregisterSystem[T SceneSystem](c *Container) {
	t := reflect.TypeFor[T]()
	id, ok := systemTypeIDs[t]
	if !ok || c.systems[id] == nil {
		panic(fmt.Sprintf("stagecraft: scene system %s not registered", t))
	}
	sys := c.systems[id]
	c.systems[id] = nil
	for i, s := range c.systemOrder {
		if s == sys {
			c.systemOrder = append(c.systemOrder[:i], c.systemOrder[i+1:]...)
			break
		}
	}
	sys.Detached()
}

// SystemOf returns the container's singleton of type T.
func SystemOf[T SceneSystem](c *Container) (T, bool) {
	var zero T
	id, ok := systemTypeIDs[reflect.TypeFor[T]()]
	if !ok || c.systems[id] == nil {
		return zero, false
	}
	t, ok := c.systems[id].(T)
	return t, ok
}
