// Terminal demo: glyph entities drifting around a scene, rendered with tcell.
//
//	go run ./cmd/scene-demo
//
// Keys: q/Esc quit, r reload the field scene, o toggle the overlay scene.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fumizuki/stagecraft"
	"github.com/gdamore/tcell/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("STAGECRAFT_CONFIG")
	cfg := stagecraft.DefaultConfig()
	if cfgPath != "" {
		loaded, err := stagecraft.LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	// The screen owns the terminal, so logs go to a file instead of stderr.
	cfg.Logging.Format = "json"
	log, err := stagecraft.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("tcell screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("tcell init: %w", err)
	}
	defer screen.Fini()

	renderer := newTermRenderer(screen)
	mgr := stagecraft.NewManager(cfg, log)
	mgr.SetRenderHost(renderer)
	loop := stagecraft.NewLoop(mgr, cfg, log)

	stagecraft.LoadScene[fieldScene](mgr, stagecraft.LoadSingle)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	// Everything that touches the manager or the containers runs on this
	// goroutine: input handling and frame ticks interleave, never overlap.
	ticker := time.NewTicker(cfg.Frame.TickRate)
	defer ticker.Stop()
	overlay := false
	for {
		select {
		case <-ctx.Done():
			mgr.Shutdown()
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
					mgr.Shutdown()
					return nil
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
					mgr.Shutdown()
					return nil
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'r':
					stagecraft.LoadScene[fieldScene](mgr, stagecraft.LoadSingle)
					overlay = false
				case ev.Key() == tcell.KeyRune && ev.Rune() == 'o':
					if !overlay {
						stagecraft.LoadScene[overlayScene](mgr, stagecraft.LoadAdditive)
						overlay = true
					}
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			loop.Tick()
		}
	}
}

// ── Scenes ─────────────────────────────────────────────────────────

const glyphCount = 24

// fieldScene fills the screen with drifting glyphs.
type fieldScene struct {
	stagecraft.BaseScene
}

func (s *fieldScene) Load() {
	chars := []rune("abcdefghijklmnopqrstuvwxyz0123456789*+~")
	styles := []tcell.Style{
		tcell.StyleDefault.Foreground(tcell.ColorGreen),
		tcell.StyleDefault.Foreground(tcell.ColorBlue),
		tcell.StyleDefault.Foreground(tcell.ColorYellow),
		tcell.StyleDefault.Foreground(tcell.ColorPurple),
	}
	for i := 0; i < glyphCount; i++ {
		e := s.Container().NewEntity(fmt.Sprintf("glyph-%d", i))
		e.Attach(&glyph{
			char:  chars[rand.Intn(len(chars))],
			style: styles[rand.Intn(len(styles))],
			x:     rand.Float64() * 80,
			y:     rand.Float64() * 24,
			vx:    (rand.Float64() - 0.5) * 20,
			vy:    (rand.Float64() - 0.5) * 10,
		}, "glyph")
	}
}

func (s *fieldScene) Unload() {}

// overlayScene adds a status banner on top of whatever is loaded.
type overlayScene struct {
	stagecraft.BaseScene
}

func (s *overlayScene) Load() {
	e := s.Container().NewEntity("banner")
	e.Attach(&banner{text: "ADDITIVE OVERLAY"}, "banner")
}

func (s *overlayScene) Unload() {}

// ── Components ─────────────────────────────────────────────────────

// glyph drifts across the screen, bouncing off the edges.
type glyph struct {
	stagecraft.BaseComponent
	char   rune
	style  tcell.Style
	x, y   float64
	vx, vy float64
	w, h   int
}

func (g *glyph) Update(dt time.Duration) {
	if g.w <= 0 || g.h <= 0 {
		return
	}
	s := dt.Seconds()
	g.x += g.vx * s
	g.y += g.vy * s
	if g.x < 0 {
		g.x, g.vx = 0, -g.vx
	}
	if g.y < 0 {
		g.y, g.vy = 0, -g.vy
	}
	if g.x >= float64(g.w) {
		g.x, g.vx = float64(g.w-1), -g.vx
	}
	if g.y >= float64(g.h) {
		g.y, g.vy = float64(g.h-1), -g.vy
	}
}

// banner is a static overlay line.
type banner struct {
	stagecraft.BaseComponent
	text string
}

// ── Renderer ───────────────────────────────────────────────────────

// termRenderer draws registered components onto a tcell screen. It satisfies
// stagecraft.RenderHost and tracks drawables through registration callbacks.
type termRenderer struct {
	screen  tcell.Screen
	glyphs  []*glyph
	banners []*banner
	frames  uint64
}

func newTermRenderer(screen tcell.Screen) *termRenderer {
	return &termRenderer{screen: screen}
}

func (r *termRenderer) ComponentRegistered(c stagecraft.Component) {
	switch v := c.(type) {
	case *glyph:
		r.glyphs = append(r.glyphs, v)
	case *banner:
		r.banners = append(r.banners, v)
	}
}

func (r *termRenderer) ComponentUnregistered(c stagecraft.Component) {
	switch v := c.(type) {
	case *glyph:
		for i, g := range r.glyphs {
			if g == v {
				r.glyphs = append(r.glyphs[:i], r.glyphs[i+1:]...)
				break
			}
		}
	case *banner:
		for i, b := range r.banners {
			if b == v {
				r.banners = append(r.banners[:i], r.banners[i+1:]...)
				break
			}
		}
	}
}

func (r *termRenderer) Render(ctn *stagecraft.Container) {
	w, h := r.screen.Size()
	r.screen.Clear()

	for _, g := range r.glyphs {
		g.w, g.h = w, h-1
		x, y := int(g.x), int(g.y)
		if x >= 0 && x < w && y >= 0 && y < h-1 {
			r.screen.SetContent(x, y, g.char, nil, g.style)
		}
	}

	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for _, b := range r.banners {
		drawText(r.screen, 2, 1, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true), b.text)
	}
	status := fmt.Sprintf(" q: quit | r: reload | o: overlay | glyphs: %d | frame %d", len(r.glyphs), r.frames)
	drawText(r.screen, 0, h-1, dim, status)

	r.screen.Show()
	r.frames++
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, ch := range text {
		s.SetContent(x+i, y, ch, nil, style)
	}
}
