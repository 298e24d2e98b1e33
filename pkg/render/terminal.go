// pkg/render/terminal.go
package render

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// TerminalRenderer provides a simple ASCII-based rendering for terminals.
// Tracer markers accumulate across frames and are only discarded when a new
// trajectory session begins.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D
	tracers   []physics.Vector2D
}

// NewTerminalRenderer creates a new terminal renderer with the specified
// dimensions. scale is world units per character cell.
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	return &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
}

// SetCenter sets the world position shown at the center of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to screen coordinates. The
// vertical axis flips: world Y grows upward, rows grow downward.
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2)
	screenY := int(float64(r.height)/2 - (pos.Y-r.centerPos.Y)/r.scale)
	return screenX, screenY
}

// plot writes a rune into the buffer if the cell is on screen
func (r *TerminalRenderer) plot(x, y int, symbol rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = symbol
	}
}

// Clear implements entity.Renderer. The accumulated trajectory is replotted
// so markers survive frame clears.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
	for _, pos := range r.tracers {
		x, y := r.worldToScreen(pos)
		r.plot(x, y, '.')
	}
}

// Present implements entity.Renderer
func (r *TerminalRenderer) Present() {
	fmt.Print("\033[H\033[2J")

	fmt.Println("+" + strings.Repeat("-", r.width) + "+")
	for y := range r.buffer {
		fmt.Print("|")
		for x := range r.buffer[y] {
			fmt.Print(string(r.buffer[y][x]))
		}
		fmt.Println("|")
	}
	fmt.Println("+" + strings.Repeat("-", r.width) + "+")
}

// RenderBody implements entity.Renderer. The projectile is drawn as a
// single cell at its center; its extent is usually below one cell at
// sensible scales.
func (r *TerminalRenderer) RenderBody(b entity.Body) {
	x, y := r.worldToScreen(b.Center())
	r.plot(x, y, '#')
}

// RenderTracer implements entity.Renderer
func (r *TerminalRenderer) RenderTracer(position physics.Vector2D) {
	r.tracers = append(r.tracers, position)
	x, y := r.worldToScreen(position)
	r.plot(x, y, '.')
}

// ResetTrajectory implements entity.Renderer
func (r *TerminalRenderer) ResetTrajectory(b entity.Body) {
	r.tracers = r.tracers[:0]
	r.Clear()
	r.RenderBody(b)
}

// TracerCount returns how many markers the current trajectory has
func (r *TerminalRenderer) TracerCount() int {
	return len(r.tracers)
}

// CellAt returns the rune currently plotted at a world position
func (r *TerminalRenderer) CellAt(pos physics.Vector2D) rune {
	x, y := r.worldToScreen(pos)
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0
	}
	return r.buffer[y][x]
}
