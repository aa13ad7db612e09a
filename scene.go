package stagecraft

// Scene is one loadable unit of content. A scene owns exactly one container,
// created when the scene is constructed by the manager and destroyed when the
// scene unloads, not before. Implement Scene by embedding BaseScene and
// defining the load/unload hooks.
type Scene interface {
	Managed

	// Load runs after the scene is registered as loaded, so entity creation
	// inside it sees a consistent container.
	Load()
	// Unload runs before the scene's container is destroyed.
	Unload()
	// Container returns the scene's entity/component container.
	Container() *Container

	sceneState() *BaseScene
}

// BaseScene is the embeddable base for scenes.
type BaseScene struct {
	Object
	container *Container
}

func (s *BaseScene) sceneState() *BaseScene { return s }

// Container returns the scene's entity/component container. It is nil only
// during the scene factory call itself; by the time Load runs it is set.
func (s *BaseScene) Container() *Container { return s.container }

// LoadMode selects how a queued scene load treats already-loaded scenes.
type LoadMode uint8

const (
	// LoadSingle unloads every currently loaded scene, then loads the new
	// one as the sole active scene.
	LoadSingle LoadMode = iota
	// LoadAdditive loads the new scene alongside existing ones. It becomes
	// the current scene without evicting others.
	LoadAdditive
)

func (m LoadMode) String() string {
	if m == LoadAdditive {
		return "Additive"
	}
	return "Single"
}
