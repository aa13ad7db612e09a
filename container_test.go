package stagecraft_test

import (
	"testing"
	"time"

	"github.com/fumizuki/stagecraft"
)

// recorder collects callback invocations for order assertions.
type recorder struct {
	calls []string
}

func (r *recorder) add(s string) { r.calls = append(r.calls, s) }

// probe is a component that records every hook it receives.
type probe struct {
	stagecraft.BaseComponent
	rec   *recorder
	label string
}

func (p *probe) Init()                          { p.rec.add(p.label + ".Init") }
func (p *probe) PreUpdate(dt time.Duration)     { p.rec.add(p.label + ".PreUpdate") }
func (p *probe) Update(dt time.Duration)        { p.rec.add(p.label + ".Update") }
func (p *probe) PostUpdate(dt time.Duration)    { p.rec.add(p.label + ".PostUpdate") }
func (p *probe) FixedUpdate(step time.Duration) { p.rec.add(p.label + ".FixedUpdate") }
func (p *probe) PostRender(dt time.Duration)    { p.rec.add(p.label + ".PostRender") }
func (p *probe) OnRelease()                     { p.rec.add(p.label + ".OnRelease") }

// spawner creates an entity from inside an update callback.
type spawner struct {
	stagecraft.BaseComponent
	spawned *stagecraft.Entity
}

func (s *spawner) Update(dt time.Duration) {
	if s.spawned == nil {
		s.spawned = s.Owner().Container().NewEntity("spawned")
	}
}

// destroyer destroys a target entity from inside an update callback.
type destroyer struct {
	stagecraft.BaseComponent
	target *stagecraft.Entity
	done   bool
}

func (d *destroyer) Update(dt time.Duration) {
	if !d.done {
		d.done = true
		if err := stagecraft.Destroy(d.target); err != nil {
			panic(err)
		}
	}
}

// countingSystem records component offers and per-stage updates.
type countingSystem struct {
	rec          *recorder
	registered   int
	unregistered int
	updates      int
}

func (s *countingSystem) Attached(c *stagecraft.Container) { s.rec.add("sys.Attached") }
func (s *countingSystem) Detached()                        { s.rec.add("sys.Detached") }
func (s *countingSystem) ComponentRegistered(comp stagecraft.Component) {
	s.registered++
	s.rec.add("sys.ComponentRegistered:" + comp.Name())
}
func (s *countingSystem) ComponentUnregistered(comp stagecraft.Component) {
	s.unregistered++
	s.rec.add("sys.ComponentUnregistered:" + comp.Name())
}
func (s *countingSystem) Update(dt time.Duration) {
	s.updates++
	s.rec.add("sys.Update")
}

func runFrame(c *stagecraft.Container, dt time.Duration) {
	stagecraft.Disposal().Drain()
	c.BeginFrame()
	for _, stage := range []stagecraft.Stage{
		stagecraft.StagePreUpdate,
		stagecraft.StageUpdate,
		stagecraft.StagePostUpdate,
	} {
		c.RunStage(stage, dt)
	}
	c.Render()
	c.RunStage(stagecraft.StagePostRender, dt)
}

// go test -run ^TestContainerStageOrder$ . -count 1
func TestContainerStageOrder(t *testing.T) {
	stagecraft.ResetGlobalRegistry()
	rec := &recorder{}
	c := stagecraft.NewContainer()

	e := c.NewEntity("e")
	e.Attach(&probe{rec: rec, label: "p"}, "p")
	sys := &countingSystem{rec: rec}
	stagecraft.RegisterSystem(c, sys)

	rec.calls = nil
	runFrame(c, time.Millisecond)

	want := []string{
		"p.Init",
		"p.PreUpdate",
		"p.Update", "sys.Update",
		"p.PostUpdate",
		"p.PostRender",
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d: %v", len(want), len(rec.calls), rec.calls)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], rec.calls[i])
		}
	}

	// Init must not run again.
	rec.calls = nil
	runFrame(c, time.Millisecond)
	for _, call := range rec.calls {
		if call == "p.Init" {
			t.Error("Init ran twice")
		}
	}
}

func TestRegisterEntityMidIteration(t *testing.T) {
	stagecraft.ResetGlobalRegistry()
	c := stagecraft.NewContainer()

	e := c.NewEntity("host")
	sp := &spawner{}
	e.Attach(sp, "spawner")

	runFrame(c, time.Millisecond)
	if sp.spawned == nil {
		t.Fatal("spawner did not run")
	}
	// The spawned entity must not be visible to this frame's live list.
	if got := len(c.Entities()); got != 1 {
		t.Fatalf("expected 1 live entity during spawn frame, got %d", got)
	}

	runFrame(c, time.Millisecond)
	if got := len(c.Entities()); got != 2 {
		t.Errorf("expected spawned entity live after pending drain, got %d entities", got)
	}
}

func TestDestroyEntityMidUpdate(t *testing.T) {
	stagecraft.ResetGlobalRegistry()
	rec := &recorder{}
	c := stagecraft.NewContainer()

	// killer is registered before victim so its Update runs first.
	killer := c.NewEntity("killer")
	victim := c.NewEntity("victim")
	victim.Attach(&probe{rec: rec, label: "victim"}, "victim-probe")
	killer.Attach(&destroyer{target: victim}, "destroyer")

	runFrame(c, time.Millisecond)

	// The victim's component must still have run for the remainder of the
	// frame: Update and PostUpdate both present.
	var sawUpdate, sawPostUpdate bool
	for _, call := range rec.calls {
		switch call {
		case "victim.Update":
			sawUpdate = true
		case "victim.PostUpdate":
			sawPostUpdate = true
		}
	}
	if !sawUpdate || !sawPostUpdate {
		t.Fatalf("victim skipped stages in its destruction frame: %v", rec.calls)
	}
	if victim.Destroyed() {
		t.Fatal("victim released before disposal drain")
	}

	// Next frame's drain releases it; no further updates.
	rec.calls = nil
	runFrame(c, time.Millisecond)
	if !victim.Destroyed() {
		t.Fatal("victim not released by drain")
	}
	for _, call := range rec.calls {
		if call != "victim.OnRelease" {
			t.Errorf("victim callback after destruction: %s", call)
		}
	}
	if got := len(c.Entities()); got != 1 {
		t.Errorf("expected 1 live entity after drain, got %d", got)
	}
}

func TestChildEntitiesUpdateThroughParent(t *testing.T) {
	stagecraft.ResetGlobalRegistry()
	rec := &recorder{}
	c := stagecraft.NewContainer()

	parent := c.NewEntity("parent")
	parent.Attach(&probe{rec: rec, label: "parent"}, "pp")
	child := parent.NewChild("child")
	child.Attach(&probe{rec: rec, label: "child"}, "cp")

	// Children never appear in the root list.
	if got := len(c.Entities()); got != 1 {
		t.Fatalf("expected 1 root entity, got %d", got)
	}

	rec.calls = nil
	c.BeginFrame()
	c.RunStage(stagecraft.StageUpdate, time.Millisecond)
	want := []string{"parent.Init", "child.Init", "parent.Update", "child.Update"}
	if len(rec.calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, rec.calls)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], rec.calls[i])
		}
	}

	// Disabling the parent silences the whole subtree.
	parent.SetEnabled(false)
	rec.calls = nil
	c.RunStage(stagecraft.StageUpdate, time.Millisecond)
	if len(rec.calls) != 0 {
		t.Errorf("disabled subtree still updated: %v", rec.calls)
	}

	// Destroying the parent releases the child through it.
	if err := stagecraft.Destroy(parent); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	stagecraft.Disposal().Drain()
	if !child.Destroyed() {
		t.Error("child not released through parent")
	}
}

func TestSceneSystemLifecycle(t *testing.T) {
	stagecraft.ResetGlobalRegistry()
	rec := &recorder{}
	c := stagecraft.NewContainer()

	e := c.NewEntity("e")
	e.Attach(&probe{rec: rec, label: "p1"}, "p1")
	e.Attach(&probe{rec: rec, label: "p2"}, "p2")

	sys := &countingSystem{rec: rec}
	stagecraft.RegisterSystem(c, sys)

	t.Run("InitializationBatch", func(t *testing.T) {
		if sys.registered != 2 {
			t.Errorf("expected initialization batch of 2, got %d", sys.registered)
		}
	})

	t.Run("IncrementalNotifications", func(t *testing.T) {
		e.Attach(&probe{rec: rec, label: "p3"}, "p3")
		if sys.registered != 3 {
			t.Errorf("expected incremental registration, got %d", sys.registered)
		}
	})

	t.Run("DuplicateRegistrationPanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		stagecraft.RegisterSystem(c, &countingSystem{rec: rec})
	})

	t.Run("UpdatesOncePerStage", func(t *testing.T) {
		sys.updates = 0
		runFrame(c, time.Millisecond)
		if sys.updates != 1 {
			t.Errorf("expected system Update once per frame, got %d", sys.updates)
		}
	})

	t.Run("SystemOf", func(t *testing.T) {
		got, ok := stagecraft.SystemOf[*countingSystem](c)
		if !ok || got != sys {
			t.Errorf("SystemOf returned %v (ok=%v)", got, ok)
		}
	})

	t.Run("Unregister", func(t *testing.T) {
		stagecraft.UnregisterSystem[*countingSystem](c)
		if _, ok := stagecraft.SystemOf[*countingSystem](c); ok {
			t.Error("system still present after unregister")
		}
		sys.updates = 0
		runFrame(c, time.Millisecond)
		if sys.updates != 0 {
			t.Error("unregistered system still updated")
		}
	})

	t.Run("UnregisterMissingPanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		stagecraft.UnregisterSystem[*countingSystem](c)
	})
}

func TestUnregisterUnknownComponentPanics(t *testing.T) {
	stagecraft.ResetGlobalRegistry()
	c := stagecraft.NewContainer()
	comp := &probe{rec: &recorder{}, label: "stray"}
	stagecraft.Manage(comp, "stray")
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	c.UnregisterComponent(comp)
}

func TestDestroyAll(t *testing.T) {
	stagecraft.ResetGlobalRegistry()
	rec := &recorder{}
	c := stagecraft.NewContainer()

	e1 := c.NewEntity("e1")
	e1.Attach(&probe{rec: rec, label: "p1"}, "p1")
	e2 := c.NewEntity("e2")
	ch := e2.NewChild("child")
	sys := &countingSystem{rec: rec}
	stagecraft.RegisterSystem(c, sys)

	c.DestroyAll()

	if !c.Destroying() {
		t.Fatal("destroying flag not set")
	}
	for _, e := range []*stagecraft.Entity{e1, e2, ch} {
		if !e.Destroyed() {
			t.Errorf("entity %s not released", e.Name())
		}
	}
	var sawDetach bool
	for _, call := range rec.calls {
		if call == "sys.Detached" {
			sawDetach = true
		}
	}
	if !sawDetach {
		t.Error("system did not receive Detached")
	}

	// Registration becomes a no-op on a dying container.
	c.NewEntity("late")
	if len(c.Entities()) != 0 {
		t.Error("entity registered into a dying container")
	}
}

func TestRenderHostNotifications(t *testing.T) {
	stagecraft.ResetGlobalRegistry()
	c := stagecraft.NewContainer()

	host := &fakeRenderHost{}
	c.SetRenderHost(host)

	e := c.NewEntity("e")
	p := &probe{rec: &recorder{}, label: "p"}
	e.Attach(p, "p")
	if host.registered != 1 {
		t.Fatalf("expected render host to see 1 component, got %d", host.registered)
	}

	c.Render()
	if host.renders != 1 {
		t.Errorf("expected 1 render dispatch, got %d", host.renders)
	}

	c.UnregisterComponent(p)
	if host.unregistered != 1 {
		t.Errorf("expected symmetric unregister notification, got %d", host.unregistered)
	}
}

type fakeRenderHost struct {
	registered   int
	unregistered int
	renders      int
}

func (h *fakeRenderHost) ComponentRegistered(stagecraft.Component) { h.registered++ }

func (h *fakeRenderHost) ComponentUnregistered(stagecraft.Component) { h.unregistered++ }

func (h *fakeRenderHost) Render(*stagecraft.Container) { h.renders++ }
