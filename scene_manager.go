package stagecraft

import (
	"reflect"

	"go.uber.org/zap"
)

// loadOp is one queued scene transition.
type loadOp struct {
	name    string
	factory func() Scene
	mode    LoadMode
}

// Manager owns scene lifecycle: the set of loaded scenes, the "current"
// scene, and a FIFO queue of pending load operations applied between frames.
// Requesting a load never runs it synchronously, so a scene transition can
// never interrupt another scene's update stage.
type Manager struct {
	cfg        *Config
	log        *zap.Logger
	events     *EventBus
	renderHost RenderHost
	queue      []loadOp
	loaded     []Scene
	current    Scene
	applying   bool
	down       bool
}

// NewManager creates a scene manager. A nil cfg uses defaults; a nil log is
// replaced with a no-op logger.
func NewManager(cfg *Config, log *zap.Logger) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{cfg: cfg, log: log}
}

// SetEventBus wires a bus for scene lifecycle notifications; it is also
// passed to containers of scenes loaded afterwards.
func (m *Manager) SetEventBus(bus *EventBus) { m.events = bus }

// SetRenderHost wires the renderer collaborator handed to containers of
// scenes loaded afterwards.
func (m *Manager) SetRenderHost(h RenderHost) { m.renderHost = h }

// Load enqueues a scene transition. The factory runs during the next Apply;
// returning nil is a fatal construction failure.
func (m *Manager) Load(name string, factory func() Scene, mode LoadMode) {
	if m.down {
		m.log.Warn("scene load after shutdown dropped", zap.String("scene", name))
		return
	}
	m.queue = append(m.queue, loadOp{name: name, factory: factory, mode: mode})
}

// ScenePtr constrains PT to a pointer to T that implements Scene.
type ScenePtr[T any] interface {
	Scene
	*T
}

// LoadScene enqueues a load of scene type T, named after the type:
//
//	stagecraft.LoadScene[TitleScene](mgr, stagecraft.LoadSingle)
func LoadScene[T any, PT ScenePtr[T]](m *Manager, mode LoadMode) {
	name := reflect.TypeFor[T]().Name()
	m.Load(name, func() Scene { return PT(new(T)) }, mode)
}

// Apply drains the load queue. For each operation the scene is constructed;
// in Single mode every currently loaded scene is unloaded first (unload hook,
// then container teardown); the new scene is registered as loaded, becomes
// current, and only then gets its Load hook. The drain is not re-entrant:
// loads enqueued during a Load hook apply at the next frame's drain.
func (m *Manager) Apply() {
	if m.applying {
		return
	}
	m.applying = true
	defer func() { m.applying = false }()

	n := len(m.queue)
	for i := 0; i < n; i++ {
		op := m.queue[i]
		scn := op.factory()
		if scn == nil || reflect.ValueOf(scn).IsNil() {
			panic("stagecraft: scene factory returned nil: " + op.name)
		}
		Manage(scn, op.name)
		ctn := NewContainer()
		ctn.Reserve(m.cfg.World.EntityCapacity, m.cfg.World.ComponentCapacity)
		ctn.SetLogger(m.log)
		ctn.SetEventBus(m.events)
		if m.renderHost != nil {
			ctn.SetRenderHost(m.renderHost)
		}
		scn.sceneState().container = ctn
		if op.mode == LoadSingle {
			m.unloadAll()
		}
		m.loaded = append(m.loaded, scn)
		m.current = scn
		m.log.Info("scene loaded",
			zap.String("scene", op.name),
			zap.Uint64("id", uint64(scn.InstanceID())),
			zap.Stringer("mode", op.mode))
		Publish(m.events, SceneLoadedEvent{Scene: scn, Mode: op.mode})
		scn.Load()
	}
	m.queue = m.queue[n:]
	if len(m.queue) == 0 {
		m.queue = nil
	}
}

// unloadAll unloads loaded scenes in reverse-of-load order: unload hook,
// container teardown, then release of the scene object itself.
func (m *Manager) unloadAll() {
	for i := len(m.loaded) - 1; i >= 0; i-- {
		scn := m.loaded[i]
		m.log.Info("scene unloading", zap.String("scene", scn.Name()))
		scn.Unload()
		scn.Container().DestroyAll()
		Publish(m.events, SceneUnloadedEvent{Scene: scn})
		release(scn)
	}
	m.loaded = m.loaded[:0]
	m.current = nil
}

// Current returns the current scene: the most recently loaded one. Querying
// before the first load completes is an invariant violation.
func (m *Manager) Current() Scene {
	if m.current == nil {
		panic("stagecraft: no scene loaded")
	}
	return m.current
}

// HasCurrent reports whether a scene has finished loading.
func (m *Manager) HasCurrent() bool { return m.current != nil }

// Loaded returns the loaded scenes in load order.
func (m *Manager) Loaded() []Scene {
	out := make([]Scene, len(m.loaded))
	copy(out, m.loaded)
	return out
}

// Containers returns the containers of loaded scenes in load order. The
// frame driver walks these each stage.
func (m *Manager) Containers() []*Container {
	out := make([]*Container, 0, len(m.loaded))
	for _, s := range m.loaded {
		out = append(out, s.Container())
	}
	return out
}

// Pending reports the number of queued load operations.
func (m *Manager) Pending() int { return len(m.queue) }

// Shutdown unloads every loaded scene, drains the disposal queue once more to
// catch objects released by those unloads, and clears manager state. Further
// loads are dropped. When the leak-check debug toggle is on, resources still
// resolvable afterwards are reported as leaks.
func (m *Manager) Shutdown() {
	if m.down {
		return
	}
	m.down = true
	m.queue = nil
	m.unloadAll()
	disposalQueue.Drain()
	if m.cfg.Debug.LeakCheck {
		if n := liveObjects.ReportLeaks(m.log); n > 0 {
			m.log.Warn("resource leaks detected at shutdown", zap.Int("count", n))
		}
	}
	m.log.Info("scene manager shut down")
}
