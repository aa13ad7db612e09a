package stagecraft

import "time"

// Stage names one slice of the per-frame update dispatch. Within a stage,
// entity updates always precede scene-system updates.
type Stage uint8

const (
	StagePreUpdate Stage = iota
	StageUpdate
	StagePostUpdate
	StageFixedUpdate
	StagePostRender
	numStages
)

func (s Stage) String() string {
	switch s {
	case StagePreUpdate:
		return "PreUpdate"
	case StageUpdate:
		return "Update"
	case StagePostUpdate:
		return "PostUpdate"
	case StageFixedUpdate:
		return "FixedUpdate"
	case StagePostRender:
		return "PostRender"
	}
	return "Unknown"
}

// Component is the contract for behavior attached to an entity. It is sealed:
// implement it by embedding BaseComponent. A component participates in update
// stages by additionally implementing any of the stage interfaces below; the
// container probes for them at dispatch time.
type Component interface {
	Managed
	state() *BaseComponent
}

// Initializer receives a one-time Init call during the initialization pass of
// the first frame in which the component's entity is live and enabled.
type Initializer interface {
	Init()
}

// PreUpdater runs during the PreUpdate stage.
type PreUpdater interface {
	PreUpdate(dt time.Duration)
}

// Updater runs during the Update stage.
type Updater interface {
	Update(dt time.Duration)
}

// PostUpdater runs during the PostUpdate stage.
type PostUpdater interface {
	PostUpdate(dt time.Duration)
}

// FixedUpdater runs during the FixedUpdate stage, zero or more times per
// frame under the frame driver's fixed-timestep accumulator. step is the
// configured fixed step, not the frame delta.
type FixedUpdater interface {
	FixedUpdate(step time.Duration)
}

// PostRenderer runs after render dispatch.
type PostRenderer interface {
	PostRender(dt time.Duration)
}

// BaseComponent is the embeddable base for components. The zero value is
// ready; Entity.Attach manages and wires it.
type BaseComponent struct {
	Object
	owner      *Entity
	inited     bool
	registered bool
}

func (c *BaseComponent) state() *BaseComponent { return c }

// Owner returns the entity this component is attached to, nil once detached.
func (c *BaseComponent) Owner() *Entity { return c.owner }

// dispatchStage invokes the stage hook of v, if v implements it. Shared by
// component and scene-system dispatch so both probe the same interfaces.
func dispatchStage(v any, stage Stage, dt time.Duration) {
	switch stage {
	case StagePreUpdate:
		if u, ok := v.(PreUpdater); ok {
			u.PreUpdate(dt)
		}
	case StageUpdate:
		if u, ok := v.(Updater); ok {
			u.Update(dt)
		}
	case StagePostUpdate:
		if u, ok := v.(PostUpdater); ok {
			u.PostUpdate(dt)
		}
	case StageFixedUpdate:
		if u, ok := v.(FixedUpdater); ok {
			u.FixedUpdate(dt)
		}
	case StagePostRender:
		if u, ok := v.(PostRenderer); ok {
			u.PostRender(dt)
		}
	}
}
