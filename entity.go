package stagecraft

import "time"

// Entity is a node in the scene-object tree. Root entities are walked
// directly by their container each stage; children are updated recursively
// through their parent. An entity is owned by the container that created it
// and is destroyed when that container's scene unloads, or explicitly.
type Entity struct {
	Object
	container  *Container
	parent     *Entity
	children   []*Entity
	components []Component
	enabled    bool
	root       bool
	registered bool // visible to container iteration
	pending    bool // created mid-iteration, registers at next frame start
}

// Enabled reports whether the entity participates in update dispatch.
// Disabled entities and their descendants are skipped, not unregistered.
func (e *Entity) Enabled() bool { return e.enabled }

// SetEnabled toggles participation in update dispatch.
func (e *Entity) SetEnabled(enabled bool) { e.enabled = enabled }

// Container returns the owning container.
func (e *Entity) Container() *Container { return e.container }

// Parent returns the parent entity, nil for roots.
func (e *Entity) Parent() *Entity { return e.parent }

// Children returns the entity's direct children. The slice is owned by the
// entity; callers must not mutate it.
func (e *Entity) Children() []*Entity { return e.children }

// Components returns the attached components. The slice is owned by the
// entity; callers must not mutate it.
func (e *Entity) Components() []Component { return e.components }

// NewChild creates a child entity. Children are not registered with the
// container's root list; they live and update through their parent.
func (e *Entity) NewChild(name string) *Entity {
	ch := &Entity{container: e.container, parent: e, enabled: true}
	Manage(ch, name)
	e.children = append(e.children, ch)
	if e.registered {
		ch.registered = true
	}
	return ch
}

// Attach manages c under name, binds it to e, and registers it with the
// owning container. When e itself is still pending, component registration is
// deferred to the entity's own registration at the next frame start. Panics
// if c is already attached somewhere.
func (e *Entity) Attach(c Component, name string) {
	st := c.state()
	if st.owner != nil {
		panic("stagecraft: component already attached: " + name)
	}
	Manage(c, name)
	st.owner = e
	e.components = append(e.components, c)
	if e.registered && e.container != nil {
		e.container.registerComponent(c)
	}
}

// ComponentOf returns the first component of e satisfying T.
func ComponentOf[T Component](e *Entity) (T, bool) {
	for _, c := range e.components {
		if c.Destroyed() {
			continue
		}
		if t, ok := any(c).(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// ensureInit gives every not-yet-initialized component of the enabled subtree
// its one-time Init call.
func (e *Entity) ensureInit() {
	if !e.enabled || e.Destroyed() {
		return
	}
	for _, c := range e.components {
		st := c.state()
		if st.inited || c.Destroyed() {
			continue
		}
		st.inited = true
		if in, ok := c.(Initializer); ok {
			in.Init()
		}
	}
	for _, ch := range e.children {
		ch.ensureInit()
	}
}

// runStage dispatches one stage to the enabled subtree: own components first,
// then children recursively.
func (e *Entity) runStage(stage Stage, dt time.Duration) {
	if !e.enabled || e.Destroyed() {
		return
	}
	for _, c := range e.components {
		if c.Destroyed() {
			continue
		}
		dispatchStage(c, stage, dt)
	}
	for _, ch := range e.children {
		ch.runStage(stage, dt)
	}
}

func (e *Entity) removeChild(ch *Entity) {
	for i, c := range e.children {
		if c == ch {
			e.children = append(e.children[:i], e.children[i+1:]...)
			return
		}
	}
}

// OnRelease tears the entity down: children in reverse-of-creation order,
// then components, then container bookkeeping. Runs exactly once, from the
// release routine.
func (e *Entity) OnRelease() {
	children := e.children
	e.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		ch := children[i]
		ch.parent = nil
		release(ch)
	}
	comps := e.components
	e.components = nil
	for i := len(comps) - 1; i >= 0; i-- {
		c := comps[i]
		if e.container != nil && c.state().registered {
			e.container.removeComponent(c)
		}
		c.state().owner = nil
		release(c)
	}
	if e.parent != nil {
		e.parent.removeChild(e)
		e.parent = nil
	}
	if e.container != nil {
		if e.pending {
			e.container.removePending(e)
		} else if e.root && e.registered {
			e.container.tombstoneRoot(e)
		}
	}
}
