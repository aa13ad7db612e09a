package stagecraft

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TimeSource supplies the loop's notion of now. Injectable for tests.
type TimeSource interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Loop is the frame driver. Each frame it runs, in order: disposal-queue
// drain, scene-load-queue drain, pending-registration drain and init pass per
// container, FixedUpdate zero or more times under the fixed-timestep
// accumulator, PreUpdate / Update / PostUpdate with the frame delta, render
// dispatch, and PostRender. Strictly single-threaded: every callback runs on
// the goroutine that calls Step.
type Loop struct {
	manager *Manager
	cfg     FrameConfig
	clock   TimeSource
	log     *zap.Logger

	last    time.Time
	started bool
	acc     time.Duration
	frame   uint64
}

// NewLoop creates a frame driver over m. A nil cfg uses defaults; a nil log
// is replaced with a no-op logger.
func NewLoop(m *Manager, cfg *Config, log *zap.Logger) *Loop {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{manager: m, cfg: cfg.Frame, clock: systemClock{}, log: log}
}

// SetTimeSource replaces the wall clock, for tests.
func (l *Loop) SetTimeSource(ts TimeSource) {
	l.clock = ts
	l.started = false
}

// Frame returns the number of completed frames.
func (l *Loop) Frame() uint64 { return l.frame }

// Tick measures the delta since the previous Tick and runs one frame. The
// first Tick runs with a zero delta.
func (l *Loop) Tick() {
	now := l.clock.Now()
	var dt time.Duration
	if l.started {
		dt = now.Sub(l.last)
	}
	l.started = true
	l.last = now
	l.Step(dt)
}

// Step runs one frame with an explicit delta.
func (l *Loop) Step(dt time.Duration) {
	disposalQueue.Drain()
	l.manager.Apply()

	ctns := l.manager.Containers()
	for _, c := range ctns {
		c.BeginFrame()
	}

	if l.cfg.FixedStep > 0 {
		l.acc += dt
		steps := 0
		for l.acc >= l.cfg.FixedStep {
			if l.cfg.MaxSubsteps > 0 && steps >= l.cfg.MaxSubsteps {
				// Falling behind; drop the remainder instead of spiraling.
				l.acc = 0
				break
			}
			for _, c := range ctns {
				c.RunStage(StageFixedUpdate, l.cfg.FixedStep)
			}
			l.acc -= l.cfg.FixedStep
			steps++
		}
	}

	for _, stage := range [...]Stage{StagePreUpdate, StageUpdate, StagePostUpdate} {
		for _, c := range ctns {
			c.RunStage(stage, dt)
		}
	}

	for _, c := range ctns {
		c.Render()
	}
	for _, c := range ctns {
		c.RunStage(StagePostRender, dt)
	}
	l.frame++
}

// Run drives Tick on a ticker at the configured tick rate until ctx is
// cancelled, then shuts the manager down.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.TickRate)
	defer ticker.Stop()
	l.log.Info("frame loop started",
		zap.Duration("tick_rate", l.cfg.TickRate),
		zap.Duration("fixed_step", l.cfg.FixedStep))
	for {
		select {
		case <-ctx.Done():
			l.manager.Shutdown()
			l.log.Info("frame loop stopped", zap.Uint64("frames", l.frame))
			return ctx.Err()
		case <-ticker.C:
			l.Tick()
		}
	}
}
