package stagecraft

import (
	"time"

	"go.uber.org/zap"
)

// RenderHost is the renderer-side collaborator of a container. The container
// keeps it informed of the live component set and hands it one Render call
// per frame; what it does with either is outside this core.
type RenderHost interface {
	ComponentRegistered(comp Component)
	ComponentUnregistered(comp Component)
	Render(c *Container)
}

// Container owns the live set of scene entities and components of one scene
// and dispatches the per-stage update walk. Its central invariant: the live
// entity list is never mutated while it is being iterated. Entities created
// from inside an update callback land in a pending queue and join the live
// list at the next frame's registration drain; entities destroyed mid-frame
// are released at the next disposal drain and their root slot tombstoned,
// compacted at the next frame start.
type Container struct {
	roots       []*Entity // live root list; tombstones are nil entries
	pending     []*Entity
	components  []Component
	systems     [MaxSceneSystems]SceneSystem
	systemOrder []SceneSystem
	renderHost  RenderHost
	events      *EventBus
	log         *zap.Logger
	iterating   bool
	destroying  bool
	rootsDirty  bool
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{log: zap.NewNop()}
}

// Reserve pre-allocates the live entity and component lists. Growing past
// either capacity still works.
func (c *Container) Reserve(entities, components int) {
	if entities > cap(c.roots) {
		c.roots = append(make([]*Entity, 0, entities), c.roots...)
	}
	if components > cap(c.components) {
		c.components = append(make([]Component, 0, components), c.components...)
	}
}

// SetLogger replaces the container's logger. nil restores the no-op logger.
func (c *Container) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	c.log = log
}

// SetRenderHost wires the renderer-side collaborator. The host is offered the
// current component set immediately.
func (c *Container) SetRenderHost(h RenderHost) {
	c.renderHost = h
	if h == nil {
		return
	}
	for _, comp := range c.components {
		h.ComponentRegistered(comp)
	}
}

// SetEventBus wires a bus for lifecycle notifications.
func (c *Container) SetEventBus(bus *EventBus) { c.events = bus }

// Destroying reports whether DestroyAll has run. All registration calls are
// no-ops from then on.
func (c *Container) Destroying() bool { return c.destroying }

// NewEntity creates a root entity and registers it. Mid-iteration the entity
// is queued and becomes visible to iteration at the next frame start.
func (c *Container) NewEntity(name string) *Entity {
	e := &Entity{container: c, enabled: true, root: true}
	Manage(e, name)
	c.registerEntity(e)
	return e
}

// Entities returns the live root entities, skipping tombstones and pending
// registrations.
func (c *Container) Entities() []*Entity {
	out := make([]*Entity, 0, len(c.roots))
	for _, e := range c.roots {
		if e != nil && !e.Destroyed() {
			out = append(out, e)
		}
	}
	return out
}

// Components returns the live component set. The slice is owned by the
// container; callers must not mutate it.
func (c *Container) Components() []Component { return c.components }

func (c *Container) registerEntity(e *Entity) {
	if c.destroying {
		return
	}
	if c.iterating {
		e.pending = true
		c.pending = append(c.pending, e)
		return
	}
	c.addLive(e)
}

func (c *Container) addLive(e *Entity) {
	e.pending = false
	c.roots = append(c.roots, e)
	c.registerTree(e)
}

// registerTree marks the subtree visible and registers already-attached
// components.
func (c *Container) registerTree(e *Entity) {
	e.registered = true
	for _, comp := range e.components {
		c.registerComponent(comp)
	}
	for _, ch := range e.children {
		c.registerTree(ch)
	}
}

// registerComponent adds comp to the live set and offers it to every scene
// system and the render host.
func (c *Container) registerComponent(comp Component) {
	if c.destroying {
		return
	}
	st := comp.state()
	if st.registered {
		return
	}
	st.registered = true
	c.components = append(c.components, comp)
	for _, sys := range c.systemOrder {
		sys.ComponentRegistered(comp)
	}
	if c.renderHost != nil {
		c.renderHost.ComponentRegistered(comp)
	}
	Publish(c.events, ComponentRegisteredEvent{Component: comp})
}

// UnregisterComponent removes comp from the live set and notifies scene
// systems and the render host symmetrically. Panics if comp is not currently
// registered.
func (c *Container) UnregisterComponent(comp Component) {
	if !comp.state().registered {
		panic("stagecraft: component not registered: " + comp.Name())
	}
	c.removeComponent(comp)
}

func (c *Container) removeComponent(comp Component) {
	comp.state().registered = false
	for i, cc := range c.components {
		if cc == comp {
			c.components = append(c.components[:i], c.components[i+1:]...)
			break
		}
	}
	for _, sys := range c.systemOrder {
		sys.ComponentUnregistered(comp)
	}
	if c.renderHost != nil {
		c.renderHost.ComponentUnregistered(comp)
	}
	Publish(c.events, ComponentUnregisteredEvent{Component: comp})
}

func (c *Container) removePending(e *Entity) {
	for i, p := range c.pending {
		if p == e {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// tombstoneRoot marks a root slot dead without shifting the live list; the
// slot is compacted out at the next frame start.
func (c *Container) tombstoneRoot(e *Entity) {
	for i, r := range c.roots {
		if r == e {
			c.roots[i] = nil
			c.rootsDirty = true
			return
		}
	}
}

// compact squeezes tombstoned roots out of the live list and sweeps
// components whose release ran without container bookkeeping (individually
// destroyed components).
func (c *Container) compact() {
	if c.rootsDirty {
		live := c.roots[:0]
		for _, e := range c.roots {
			if e != nil && !e.Destroyed() {
				live = append(live, e)
			}
		}
		c.roots = live
		c.rootsDirty = false
	}
	for i := 0; i < len(c.components); {
		comp := c.components[i]
		if !comp.Destroyed() {
			i++
			continue
		}
		if owner := comp.state().owner; owner != nil {
			for j, oc := range owner.components {
				if oc == comp {
					owner.components = append(owner.components[:j], owner.components[j+1:]...)
					break
				}
			}
			comp.state().owner = nil
		}
		c.removeComponent(comp)
	}
}

// BeginFrame runs the pending-registration drain and the initialization
// pass. The frame driver calls it once per frame, after scene loads apply and
// before any stage runs.
func (c *Container) BeginFrame() {
	if c.destroying {
		return
	}
	c.compact()
	for len(c.pending) > 0 {
		batch := c.pending
		c.pending = nil
		for _, e := range batch {
			if !e.Destroyed() {
				c.addLive(e)
			}
		}
	}
	c.iterating = true
	for _, e := range c.roots {
		if e != nil && !e.Destroyed() {
			e.ensureInit()
		}
	}
	c.iterating = false
}

// RunStage dispatches one stage: enabled root entities first (recursing into
// children), then every registered scene system, in registration order.
func (c *Container) RunStage(stage Stage, dt time.Duration) {
	if c.destroying {
		return
	}
	c.iterating = true
	for _, e := range c.roots {
		if e != nil && !e.Destroyed() {
			e.runStage(stage, dt)
		}
	}
	for _, sys := range c.systemOrder {
		dispatchStage(sys, stage, dt)
	}
	c.iterating = false
}

// Render delegates to the render host, if any.
func (c *Container) Render() {
	if c.destroying || c.renderHost == nil {
		return
	}
	c.renderHost.Render(c)
}

// DestroyAll tears the container down: registration becomes a no-op, every
// scene system is unregistered (reverse of registration order, each with a
// Detached notification), then every pending and root entity is
// force-released, children through their owning parent. The destroy veto does
// not apply on this path.
func (c *Container) DestroyAll() {
	if c.destroying {
		return
	}
	c.destroying = true
	for i := len(c.systemOrder) - 1; i >= 0; i-- {
		sys := c.systemOrder[i]
		for id := range c.systems {
			if c.systems[id] == sys {
				c.systems[id] = nil
				break
			}
		}
		sys.Detached()
	}
	c.systemOrder = nil
	pending := c.pending
	c.pending = nil
	for i := len(pending) - 1; i >= 0; i-- {
		release(pending[i])
	}
	roots := c.roots
	c.roots = nil
	for i := len(roots) - 1; i >= 0; i-- {
		if roots[i] != nil && !roots[i].Destroyed() {
			release(roots[i])
		}
	}
	c.components = nil
}
