package stagecraft

import "errors"

// Lifecycle misuse reported by Destroy and DestroyImmediate. Double-destroy
// is a programmer error, never retried and never silently absorbed.
var (
	// ErrDestroyed is returned when destroying an object whose release
	// routine has already run.
	ErrDestroyed = errors.New("stagecraft: object already destroyed")
	// ErrDestroyQueued is returned when destroying an object that is already
	// awaiting disposal.
	ErrDestroyQueued = errors.New("stagecraft: object already queued for destruction")
)

// Managed is the uniform lifecycle contract every engine-managed object
// (entities, components, scenes, resources) satisfies. It is sealed: the only
// way to implement it is to embed Object.
type Managed interface {
	// InstanceID returns the object's process-unique identity, or NoIdentity
	// before the object is managed.
	InstanceID() Identity
	// Name returns the object's human-readable name.
	Name() string
	// Destroyed reports whether the release routine has run.
	Destroyed() bool

	meta() *Object
}

// Releaser is implemented by managed objects that hold resources needing
// release. OnRelease runs exactly once, from the one-time release routine,
// regardless of whether destruction was deferred or immediate.
type Releaser interface {
	OnRelease()
}

// DestroyGuard lets an object veto ad-hoc destruction, e.g. a scene's
// permanent camera. When AllowDestroy returns false, Destroy and
// DestroyImmediate are silent no-ops. Scene teardown bypasses the veto.
type DestroyGuard interface {
	AllowDestroy() bool
}

// Object is the embeddable base for all managed objects. The zero value is
// ready to be passed to Manage.
type Object struct {
	id        Identity
	name      string
	handle    Handle
	destroyed bool
	queued    bool
}

// InstanceID returns the identity assigned by Manage.
func (o *Object) InstanceID() Identity { return o.id }

// Name returns the human-readable name assigned by Manage.
func (o *Object) Name() string { return o.name }

// SetName replaces the human-readable name.
func (o *Object) SetName(name string) { o.name = name }

// Destroyed reports whether the release routine has run.
func (o *Object) Destroyed() bool { return o.destroyed }

// QueuedForDestroy reports whether the object sits on the disposal queue.
func (o *Object) QueuedForDestroy() bool { return o.queued }

// Handle returns the object's weak registry handle.
func (o *Object) Handle() Handle { return o.handle }

func (o *Object) meta() *Object { return o }

// Manage allocates an identity for obj, names it, and registers it with the
// weak registry. It panics if obj is already managed. Container and manager
// APIs call it on the caller's behalf; only hand-rolled Managed types need it
// directly.
func Manage(obj Managed, name string) Identity {
	m := obj.meta()
	if m.id != NoIdentity {
		panic("stagecraft: object already managed: " + m.name)
	}
	m.id = AllocateIdentity()
	m.name = name
	m.handle = liveObjects.register(obj)
	return m.id
}

// Destroy marks obj as awaiting disposal and pushes it onto the disposal
// queue; the release routine runs at the next queue drain. It fails if obj is
// already destroyed or already queued, and is a silent no-op if obj vetoes
// destruction through DestroyGuard.
func Destroy(obj Managed) error {
	m := obj.meta()
	if m.destroyed {
		return ErrDestroyed
	}
	if m.queued {
		return ErrDestroyQueued
	}
	if g, ok := obj.(DestroyGuard); ok && !g.AllowDestroy() {
		return nil
	}
	m.queued = true
	disposalQueue.enqueue(obj)
	return nil
}

// DestroyImmediate runs the release routine synchronously, bypassing the
// disposal queue. Preconditions match Destroy, except an already-queued
// object is released now; the drain later skips it.
func DestroyImmediate(obj Managed) error {
	m := obj.meta()
	if m.destroyed {
		return ErrDestroyed
	}
	if g, ok := obj.(DestroyGuard); ok && !g.AllowDestroy() {
		return nil
	}
	release(obj)
	return nil
}

// release is the one-time release routine all destruction paths converge on.
// The destroyed flag is the single idempotence point for the whole subsystem:
// a second invocation is a no-op.
func release(obj Managed) {
	m := obj.meta()
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.queued = false
	if r, ok := obj.(Releaser); ok {
		r.OnRelease()
	}
	liveObjects.unregister(m.handle, m.id)
}
