package terminal

import (
	"context"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-starstrike/pkg/input"
	"github.com/opd-ai/go-starstrike/pkg/logging"
)

// Control runes passed to a Pump's key handler.
const (
	RuneEnter     = '\r'
	RuneEscape    = 0x1b
	RuneInterrupt = 0x03
)

// Pump reads terminal events, steering the player from arrow and WASD
// keys and mouse drags, and passes every other key to OnKey.
type Pump struct {
	screen  tcell.Screen
	surface *Surface
	state   *input.State
	logger  *logging.Logger

	// OnKey receives non-movement keys as lower-case runes or one of the
	// Rune constants.
	OnKey func(r rune)
	// OnResize receives the arena size in pixels after the terminal is
	// resized.
	OnResize func(width, height float64)
	// Clock stamps taps. Tests may replace it.
	Clock func() time.Time

	dragging bool
	lastX    int
	lastY    int
}

// NewPump creates a pump feeding state.
func NewPump(screen tcell.Screen, surface *Surface, state *input.State, logger *logging.Logger) *Pump {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pump{
		screen:  screen,
		surface: surface,
		state:   state,
		logger:  logger,
		Clock:   time.Now,
	}
}

// Run handles events until ctx is done or the screen is finalized.
func (p *Pump) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p.Handle(ev)
	}
}

// Handle applies one event.
func (p *Pump) Handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		p.key(ev)
	case *tcell.EventMouse:
		p.mouse(ev)
	case *tcell.EventResize:
		p.screen.Sync()
		p.Resize(ev.Size())
	}
}

// Resize fits the surface to cols by rows cells and reports the new arena
// size to OnResize.
func (p *Pump) Resize(cols, rows int) {
	w, h := p.surface.Resize(cols, rows)
	p.logger.Debug(context.Background(), "Terminal resized",
		"cols", cols,
		"rows", rows,
		"width", w,
		"height", h,
	)
	if p.OnResize != nil {
		p.OnResize(w, h)
	}
}

func (p *Pump) key(ev *tcell.EventKey) {
	now := p.Clock()
	switch ev.Key() {
	case tcell.KeyLeft:
		p.state.Tap(input.Left, now)
	case tcell.KeyRight:
		p.state.Tap(input.Right, now)
	case tcell.KeyUp:
		p.state.Tap(input.Up, now)
	case tcell.KeyDown:
		p.state.Tap(input.Down, now)
	case tcell.KeyEnter:
		p.emit(RuneEnter)
	case tcell.KeyEscape:
		p.emit(RuneEscape)
	case tcell.KeyCtrlC:
		p.emit(RuneInterrupt)
	case tcell.KeyRune:
		r := unicode.ToLower(ev.Rune())
		switch r {
		case 'a':
			p.state.Tap(input.Left, now)
		case 'd':
			p.state.Tap(input.Right, now)
		case 'w':
			p.state.Tap(input.Up, now)
		case 's':
			p.state.Tap(input.Down, now)
		default:
			p.emit(r)
		}
	}
}

func (p *Pump) emit(r rune) {
	if p.OnKey != nil {
		p.OnKey(r)
	}
}

func (p *Pump) mouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	if ev.Buttons()&tcell.Button1 == 0 {
		if p.dragging {
			p.dragging = false
			p.state.Release()
		}
		return
	}
	if p.dragging {
		dx := float64(x-p.lastX) * p.surface.cellW
		dy := float64(y-p.lastY) * p.surface.cellH
		if dx != 0 || dy != 0 {
			p.state.Drag(dx, dy)
		}
	}
	p.dragging = true
	p.lastX, p.lastY = x, y
}
