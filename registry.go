package stagecraft

// DefaultRegistryCapacity is the slot count pre-allocated by the process-wide
// registry. The registry grows past it on demand.
const DefaultRegistryCapacity = 1024

// Handle is a weak, generation-checked reference into a Registry. The zero
// Handle never resolves. A Handle whose slot has been freed (and possibly
// reused for an unrelated object) resolves to "not found" instead of aliasing
// the new occupant.
type Handle struct {
	index      uint32
	generation uint32
}

// slot holds one registry entry. The generation counter starts at 1 and is
// bumped every time the slot is freed, invalidating outstanding handles.
type slot struct {
	obj        Managed
	generation uint32
}

// Registry is a non-owning index of live managed objects. It never extends an
// object's lifetime: entries are removed when the object is released, and a
// defensive purge pass drops any entry whose object was released through
// another path. A resolvable entry always refers to a live object.
type Registry struct {
	slots []slot
	free  []uint32
	byID  map[Identity]Handle
}

// NewRegistry creates a registry with storage pre-allocated for capacity
// entries.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		slots: make([]slot, 0, capacity),
		free:  make([]uint32, 0, capacity),
		byID:  make(map[Identity]Handle, capacity),
	}
}

// register stores obj and returns its handle. Called by Manage only.
func (r *Registry) register(obj Managed) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[idx].obj = obj
	} else {
		r.slots = append(r.slots, slot{obj: obj, generation: 1})
		idx = uint32(len(r.slots) - 1)
	}
	h := Handle{index: idx, generation: r.slots[idx].generation}
	r.byID[obj.InstanceID()] = h
	return h
}

// unregister frees the slot named by h. Stale handles are ignored.
func (r *Registry) unregister(h Handle, id Identity) {
	if int(h.index) >= len(r.slots) {
		return
	}
	s := &r.slots[h.index]
	if s.generation != h.generation || s.obj == nil {
		return
	}
	s.obj = nil
	s.generation++
	r.free = append(r.free, h.index)
	delete(r.byID, id)
}

// Resolve returns the object referenced by h, or false if the handle is
// stale, freed, or refers to an object that has since been destroyed.
func (r *Registry) Resolve(h Handle) (Managed, bool) {
	if int(h.index) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[h.index]
	if s.generation != h.generation || s.obj == nil || s.obj.Destroyed() {
		return nil, false
	}
	return s.obj, true
}

// Len reports the number of resolvable entries.
func (r *Registry) Len() int {
	return len(r.byID)
}

// purge frees every entry whose object has been released without
// unregistering. The normal release routine unregisters explicitly, so this
// pass usually finds nothing; the disposal queue runs it after every drain.
func (r *Registry) purge() int {
	n := 0
	for i := range r.slots {
		o := r.slots[i].obj
		if o == nil || !o.Destroyed() {
			continue
		}
		m := o.meta()
		r.unregister(m.handle, m.id)
		n++
	}
	return n
}

// FindFirst returns the first resolvable entry satisfying the capability
// filter T, in slot order.
func FindFirst[T any](r *Registry) (T, bool) {
	for i := range r.slots {
		o := r.slots[i].obj
		if o == nil || o.Destroyed() {
			continue
		}
		if t, ok := any(o).(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// FindAll returns every resolvable entry satisfying the capability filter T,
// in slot order.
func FindAll[T any](r *Registry) []T {
	var out []T
	for i := range r.slots {
		o := r.slots[i].obj
		if o == nil || o.Destroyed() {
			continue
		}
		if t, ok := any(o).(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// FindByIdentity resolves id and asserts the result to T. It returns false if
// the identity was never issued, the object has been destroyed, or the object
// does not satisfy T.
func FindByIdentity[T any](r *Registry, id Identity) (T, bool) {
	var zero T
	h, ok := r.byID[id]
	if !ok {
		return zero, false
	}
	o, ok := r.Resolve(h)
	if !ok {
		return zero, false
	}
	t, ok := any(o).(T)
	if !ok {
		return zero, false
	}
	return t, true
}
