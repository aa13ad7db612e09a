// Profiling:
// go build ./profile/frames
// go tool pprof -http=":8000" -nodefraction=0.001 ./frames mem.pprof

package main

import (
	"time"

	"github.com/fumizuki/stagecraft"
	"github.com/pkg/profile"
)

type mover struct {
	stagecraft.BaseComponent
	x, y float64
}

func (m *mover) Update(dt time.Duration) {
	m.x += dt.Seconds()
	m.y += dt.Seconds() * 0.5
}

type physics struct {
	stagecraft.BaseComponent
	v float64
}

func (p *physics) FixedUpdate(step time.Duration) {
	p.v += 9.8 * step.Seconds()
}

type simScene struct {
	stagecraft.BaseScene
	entities int
}

func (s *simScene) Load() {
	for i := 0; i < s.entities; i++ {
		e := s.Container().NewEntity("e")
		e.Attach(&mover{}, "mover")
		e.Attach(&physics{}, "physics")
	}
}

func (s *simScene) Unload() {}

func main() {
	rounds := 20
	frames := 2000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, frames, entities)
	p.Stop()
}

func run(rounds, frames, numEntities int) {
	cfg := stagecraft.DefaultConfig()
	cfg.Frame.FixedStep = 10 * time.Millisecond
	cfg.World.EntityCapacity = numEntities
	cfg.World.ComponentCapacity = numEntities * 2

	for range rounds {
		stagecraft.ResetGlobalRegistry()
		mgr := stagecraft.NewManager(cfg, nil)
		loop := stagecraft.NewLoop(mgr, cfg, nil)
		mgr.Load("sim", func() stagecraft.Scene {
			return &simScene{entities: numEntities}
		}, stagecraft.LoadSingle)

		for range frames {
			loop.Step(16 * time.Millisecond)
		}
		mgr.Shutdown()
	}
}
