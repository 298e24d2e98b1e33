// pkg/render/live.go
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// LiveRenderer draws a trajectory on a tcell screen. It is used by the
// watch command to display samples as they arrive from a feed. Like the
// ASCII renderer, tracer markers persist until the trajectory resets.
type LiveRenderer struct {
	screen    tcell.Screen
	scale     float64
	centerPos physics.Vector2D
	tracers   []physics.Vector2D

	bodyStyle   tcell.Style
	tracerStyle tcell.Style
}

// NewLiveRenderer creates a renderer on a freshly initialized terminal
// screen. The caller owns the screen lifecycle and must call Close when
// done.
func NewLiveRenderer(scale float64) (*LiveRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	return NewLiveRendererWithScreen(screen, scale), nil
}

// NewLiveRendererWithScreen creates a renderer on an existing screen.
// Tests use this with tcell's simulation screen.
func NewLiveRendererWithScreen(screen tcell.Screen, scale float64) *LiveRenderer {
	if scale <= 0 {
		scale = 1
	}
	return &LiveRenderer{
		screen:      screen,
		scale:       scale,
		bodyStyle:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
		tracerStyle: tcell.StyleDefault.Foreground(tcell.ColorGreen),
	}
}

// SetCenter sets the world position shown at the center of the view
func (r *LiveRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// Screen exposes the underlying screen for event polling
func (r *LiveRenderer) Screen() tcell.Screen {
	return r.screen
}

// worldToScreen converts world coordinates to screen cells, flipping the
// vertical axis
func (r *LiveRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	width, height := r.screen.Size()
	x := int((pos.X-r.centerPos.X)/r.scale + float64(width)/2)
	y := int(float64(height)/2 - (pos.Y-r.centerPos.Y)/r.scale)
	return x, y
}

func (r *LiveRenderer) plot(x, y int, symbol rune, style tcell.Style) {
	width, height := r.screen.Size()
	if x >= 0 && x < width && y >= 0 && y < height {
		r.screen.SetContent(x, y, symbol, nil, style)
	}
}

// Clear implements entity.Renderer, replotting the accumulated trajectory
func (r *LiveRenderer) Clear() {
	r.screen.Clear()
	for _, pos := range r.tracers {
		x, y := r.worldToScreen(pos)
		r.plot(x, y, '.', r.tracerStyle)
	}
}

// Present implements entity.Renderer
func (r *LiveRenderer) Present() {
	r.screen.Show()
}

// RenderBody implements entity.Renderer
func (r *LiveRenderer) RenderBody(b entity.Body) {
	x, y := r.worldToScreen(b.Center())
	r.plot(x, y, '#', r.bodyStyle)
}

// RenderTracer implements entity.Renderer
func (r *LiveRenderer) RenderTracer(position physics.Vector2D) {
	r.tracers = append(r.tracers, position)
	x, y := r.worldToScreen(position)
	r.plot(x, y, '.', r.tracerStyle)
}

// ResetTrajectory implements entity.Renderer
func (r *LiveRenderer) ResetTrajectory(b entity.Body) {
	r.tracers = r.tracers[:0]
	r.Clear()
	r.RenderBody(b)
}

// Close releases the terminal
func (r *LiveRenderer) Close() {
	r.screen.Fini()
}
