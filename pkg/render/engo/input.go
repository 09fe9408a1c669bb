package engo

import (
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-starstrike/pkg/input"
)

// Control runes delivered to OnKey.
const (
	RuneEnter  = '\r'
	RuneEscape = 0x1b
)

var directionButtons = []struct {
	name string
	key  input.Key
	keys []engo.Key
}{
	{"left", input.Left, []engo.Key{engo.KeyArrowLeft, engo.KeyA}},
	{"right", input.Right, []engo.Key{engo.KeyArrowRight, engo.KeyD}},
	{"up", input.Up, []engo.Key{engo.KeyArrowUp, engo.KeyW}},
	{"down", input.Down, []engo.Key{engo.KeyArrowDown, engo.KeyS}},
}

var commandButtons = []struct {
	r   rune
	key engo.Key
}{
	{RuneEnter, engo.KeyEnter},
	{RuneEscape, engo.KeyEscape},
	{'m', engo.KeyM},
	{'t', engo.KeyT},
	{'l', engo.KeyL},
	{'p', engo.KeyP},
	{'q', engo.KeyQ},
	{'n', engo.KeyN},
	{'1', engo.KeyOne},
	{'2', engo.KeyTwo},
	{'3', engo.KeyThree},
}

func commandButton(r rune) string {
	return "cmd-" + string(r)
}

// SetupInputBindings registers the movement and command buttons.
func SetupInputBindings() {
	for _, b := range directionButtons {
		engo.Input.RegisterButton(b.name, b.keys...)
	}
	for _, c := range commandButtons {
		engo.Input.RegisterButton(commandButton(c.r), c.key)
	}
}

// Sample is the engo input for one update.
type Sample struct {
	Held      [4]bool
	Pressed   []rune
	MouseDown bool
	MouseX    float32
	MouseY    float32
}

// InputSystem copies engo input into the shared input state. Held keys
// map to held directions; command presses go to OnKey; a left-button drag
// moves the ship by the pointer delta.
type InputSystem struct {
	state *input.State
	onKey func(rune)

	mouseDown bool
	dragging  bool
	lastX     float32
	lastY     float32
}

// NewInputSystem creates an input system. onKey may be nil.
func NewInputSystem(state *input.State, onKey func(rune)) *InputSystem {
	if onKey == nil {
		onKey = func(rune) {}
	}
	return &InputSystem{state: state, onKey: onKey}
}

// Update implements ecs.System.
func (is *InputSystem) Update(float32) {
	is.Apply(is.read())
}

// Remove implements ecs.System.
func (is *InputSystem) Remove(ecs.BasicEntity) {}

func (is *InputSystem) read() Sample {
	var s Sample
	for _, b := range directionButtons {
		s.Held[b.key] = engo.Input.Button(b.name).Down()
	}
	for _, c := range commandButtons {
		if engo.Input.Button(commandButton(c.r)).JustPressed() {
			s.Pressed = append(s.Pressed, c.r)
		}
	}

	m := engo.Input.Mouse
	switch m.Action {
	case engo.Press:
		if m.Button == engo.MouseButtonLeft {
			is.mouseDown = true
		}
	case engo.Release:
		is.mouseDown = false
	}
	s.MouseDown = is.mouseDown
	s.MouseX, s.MouseY = m.X, m.Y
	return s
}

// Apply feeds one sample into the input state.
func (is *InputSystem) Apply(s Sample) {
	for k, down := range s.Held {
		is.state.SetKey(input.Key(k), down)
	}
	for _, r := range s.Pressed {
		is.onKey(r)
	}

	switch {
	case s.MouseDown && is.dragging:
		is.state.Drag(float64(s.MouseX-is.lastX), float64(s.MouseY-is.lastY))
	case !s.MouseDown && is.dragging:
		is.state.Release()
	}
	is.dragging = s.MouseDown
	is.lastX, is.lastY = s.MouseX, s.MouseY
}

// Stepper advances one frame.
type Stepper interface {
	Step(now time.Time) bool
}

// LoopSystem steps the frame loop once per engo update.
type LoopSystem struct {
	loop  Stepper
	clock func() time.Time
}

// NewLoopSystem creates a loop system stepping l with the wall clock.
func NewLoopSystem(l Stepper) *LoopSystem {
	return &LoopSystem{loop: l, clock: time.Now}
}

// Update implements ecs.System.
func (ls *LoopSystem) Update(float32) {
	ls.loop.Step(ls.clock())
}

// Remove implements ecs.System.
func (ls *LoopSystem) Remove(ecs.BasicEntity) {}
