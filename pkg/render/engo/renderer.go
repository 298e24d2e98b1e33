// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-trajectory/pkg/entity"
	"github.com/opd-ai/go-trajectory/pkg/physics"
)

// spriteEntity groups an ECS entity with the components the render
// system draws it with, so positions can be updated in place.
type spriteEntity struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
}

// EngoRenderer implements entity.Renderer using the Engo game engine.
// The projectile is a single persistent entity whose position is
// updated each frame; tracer markers become their own entities and
// stay on screen until the trajectory resets.
type EngoRenderer struct {
	world        *ecs.World
	renderSystem *common.RenderSystem

	// Entity management
	body    *spriteEntity
	tracers []*spriteEntity

	// View transform: world units per pixel
	scale     float64
	centerPos physics.Vector2D

	// Asset management
	assets *AssetManager
}

// NewEngoRenderer creates a new Engo-based renderer
func NewEngoRenderer(world *ecs.World, scale float64) *EngoRenderer {
	if scale <= 0 {
		scale = 1
	}
	return &EngoRenderer{
		world:  world,
		scale:  scale,
		assets: NewAssetManager(),
	}
}

// Initialize sets up the renderer's systems and generates sprites
func (r *EngoRenderer) Initialize() error {
	r.renderSystem = &common.RenderSystem{}
	r.world.AddSystem(r.renderSystem)

	return r.assets.LoadAssets()
}

// SetCenter sets the world position shown at the center of the window
func (r *EngoRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// Clear implements entity.Renderer. Engo clears the frame itself and
// tracer entities persist in the world, so there is nothing to do.
func (r *EngoRenderer) Clear() {}

// Present implements entity.Renderer. Engo presents through its render
// system at the end of each update.
func (r *EngoRenderer) Present() {}

// RenderBody implements entity.Renderer
func (r *EngoRenderer) RenderBody(b entity.Body) {
	if r.body == nil {
		r.body = r.newSpriteEntity(r.assets.GetBodySprite(), 12, 12, color.RGBA{255, 220, 80, 255})
	}
	pos := r.worldToScreen(b.Center())
	r.body.space.Position = engo.Point{
		X: pos.X - r.body.space.Width/2,
		Y: pos.Y - r.body.space.Height/2,
	}
}

// RenderTracer implements entity.Renderer
func (r *EngoRenderer) RenderTracer(position physics.Vector2D) {
	tracer := r.newSpriteEntity(r.assets.GetTracerSprite(), 4, 4, color.RGBA{80, 255, 120, 255})
	pos := r.worldToScreen(position)
	tracer.space.Position = engo.Point{
		X: pos.X - tracer.space.Width/2,
		Y: pos.Y - tracer.space.Height/2,
	}
	r.tracers = append(r.tracers, tracer)
}

// ResetTrajectory implements entity.Renderer, discarding all tracer
// entities and moving the projectile to its launch position
func (r *EngoRenderer) ResetTrajectory(b entity.Body) {
	for _, tracer := range r.tracers {
		r.renderSystem.Remove(tracer.basic)
	}
	r.tracers = r.tracers[:0]
	r.RenderBody(b)
}

// TracerCount returns how many markers the current trajectory has
func (r *EngoRenderer) TracerCount() int {
	return len(r.tracers)
}

// newSpriteEntity creates an entity and registers it with the render system
func (r *EngoRenderer) newSpriteEntity(drawable common.Drawable, width, height float32, tint color.Color) *spriteEntity {
	e := &spriteEntity{
		basic: ecs.NewBasic(),
		render: common.RenderComponent{
			Drawable: drawable,
			Color:    tint,
		},
		space: common.SpaceComponent{
			Position: engo.Point{X: 0, Y: 0},
			Width:    width,
			Height:   height,
		},
	}
	r.renderSystem.Add(&e.basic, &e.render, &e.space)
	return e
}

// worldToScreen converts world coordinates to screen coordinates.
// Engo's vertical axis grows downward, so world Y flips.
func (r *EngoRenderer) worldToScreen(worldPos physics.Vector2D) engo.Point {
	return engo.Point{
		X: float32((worldPos.X-r.centerPos.X)/r.scale) + engo.GameWidth()/2,
		Y: engo.GameHeight()/2 - float32((worldPos.Y-r.centerPos.Y)/r.scale),
	}
}
