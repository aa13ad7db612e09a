package stagecraft

// DisposalQueue is the deferred-release worklist. Destroy pushes onto it; the
// frame driver drains it once per frame, before pending scene loads apply.
type DisposalQueue struct {
	pending []Managed
}

// enqueue appends obj. Called only by Destroy.
func (q *DisposalQueue) enqueue(obj Managed) {
	q.pending = append(q.pending, obj)
}

// Len reports the number of objects awaiting disposal.
func (q *DisposalQueue) Len() int {
	return len(q.pending)
}

// Drain pops every entry in reverse-of-enqueue order and runs the release
// routine on any entry not already released by another path. LIFO order is
// deliberate: for objects queued within one frame it approximates
// reverse-of-creation teardown, which matters when later-created objects hold
// back-references to earlier ones. After the queue empties, a purge pass
// drops unresolvable weak-registry entries. Safe to call when empty. Returns
// the number of objects released.
func (q *DisposalQueue) Drain() int {
	released := 0
	for len(q.pending) > 0 {
		last := len(q.pending) - 1
		obj := q.pending[last]
		q.pending = q.pending[:last]
		if obj.Destroyed() {
			continue
		}
		release(obj)
		released++
	}
	liveObjects.purge()
	return released
}
