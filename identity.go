// Package stagecraft provides the object-lifecycle and scene-update core of a
// real-time engine runtime: unique instance identities, a weak (non-owning)
// registry of live objects, deferred disposal, an entity/component container
// with deterministic per-stage update dispatch, and a scene manager with a
// deferred load queue.
package stagecraft

import (
	"sync/atomic"
)

// Identity is a process-unique identifier for a managed object. Identities
// are strictly increasing and never reused, even after the object they named
// has been destroyed.
type Identity uint64

// NoIdentity is the reserved "no object" sentinel. It is never issued by
// AllocateIdentity; downstream consumers (GPU buffers, serialized references)
// rely on zero meaning "none".
const NoIdentity Identity = 0

var identityCounter atomic.Uint64

// AllocateIdentity returns the next instance identity. It is safe to call
// from any goroutine and never returns NoIdentity. It panics if the identity
// space is exhausted.
func AllocateIdentity() Identity {
	id := identityCounter.Add(1)
	if id == 0 {
		panic("stagecraft: identity space exhausted")
	}
	return Identity(id)
}

var (
	liveObjects   = NewRegistry(DefaultRegistryCapacity)
	disposalQueue = &DisposalQueue{}
)

// Objects returns the process-wide weak registry of live managed objects.
func Objects() *Registry {
	return liveObjects
}

// Disposal returns the process-wide deferred-disposal queue. The frame driver
// drains it once per frame; user code never enqueues directly.
func Disposal() *DisposalQueue {
	return disposalQueue
}

// ResetGlobalRegistry resets the identity counter, the weak registry and the
// disposal queue. This is useful for tests or applications that need to
// re-initialize the runtime state.
func ResetGlobalRegistry() {
	identityCounter.Store(0)
	liveObjects = NewRegistry(DefaultRegistryCapacity)
	disposalQueue = &DisposalQueue{}
}
