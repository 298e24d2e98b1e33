// pkg/render/engo/assets.go
package engo

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/EngoEngine/engo/common"
)

// AssetManager handles loading and managing the visualization sprites.
// All sprites are generated at startup; no image files ship with the
// binary.
type AssetManager struct {
	bodySprite   common.Drawable
	tracerSprite common.Drawable

	backgroundTexture common.Drawable
}

// NewAssetManager creates a new asset manager
func NewAssetManager() *AssetManager {
	return &AssetManager{}
}

// LoadAssets generates all sprites. Requires an active OpenGL context.
func (am *AssetManager) LoadAssets() error {
	if err := am.loadBodySprite(); err != nil {
		return err
	}
	if err := am.loadTracerSprite(); err != nil {
		return err
	}
	return am.loadBackground()
}

// loadBodySprite creates the projectile sprite, a filled circle
func (am *AssetManager) loadBodySprite() error {
	bodyPattern := [][]int{
		{0, 0, 0, 1, 1, 1, 1, 1, 1, 0, 0, 0},
		{0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0},
		{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
		{0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0},
		{0, 0, 0, 1, 1, 1, 1, 1, 1, 0, 0, 0},
	}

	am.bodySprite = am.createSprite(12, 12, bodyPattern)
	return nil
}

// loadTracerSprite creates the tracer marker, a small dot
func (am *AssetManager) loadTracerSprite() error {
	tracerPattern := [][]int{
		{0, 1, 1, 0},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
		{0, 1, 1, 0},
	}

	am.tracerSprite = am.createSprite(4, 4, tracerPattern)
	return nil
}

// loadBackground creates a sparse starfield background
func (am *AssetManager) loadBackground() error {
	backgroundPattern := make([][]int, 64)
	for i := range backgroundPattern {
		backgroundPattern[i] = make([]int, 64)
		if i%8 == 0 && (i/8)%3 == 0 {
			backgroundPattern[i][i%64] = 1
		}
	}

	am.backgroundTexture = am.createSprite(64, 64, backgroundPattern)
	return nil
}

// createSprite creates a sprite from a 2D pixel pattern
func (am *AssetManager) createSprite(width, height int, pattern [][]int) common.Drawable {
	img := am.createBaseImage(width, height)
	am.drawPatternOnImage(img, pattern, width, height)
	return am.convertToEngoTexture(img)
}

// createBaseImage creates a transparent RGBA image with the specified dimensions.
func (am *AssetManager) createBaseImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{0, 0, 0, 0}}, image.Point{}, draw.Src)
	return img
}

// drawPatternOnImage draws a 2D pixel pattern onto the provided RGBA image.
func (am *AssetManager) drawPatternOnImage(img *image.RGBA, pattern [][]int, width, height int) {
	for y, row := range pattern {
		if y >= height {
			break
		}
		for x, pixel := range row {
			if x >= width {
				break
			}
			if pixel == 1 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
}

// convertToEngoTexture converts an RGBA image to an Engo-compatible texture.
func (am *AssetManager) convertToEngoTexture(img *image.RGBA) common.Drawable {
	bounds := img.Bounds()
	nrgbaImg := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			nrgbaImg.Set(x, y, img.At(x, y))
		}
	}

	texture := common.NewImageObject(nrgbaImg)
	return common.NewTextureSingle(texture)
}

// GetBodySprite returns the projectile sprite
func (am *AssetManager) GetBodySprite() common.Drawable {
	return am.bodySprite
}

// GetTracerSprite returns the tracer marker sprite
func (am *AssetManager) GetTracerSprite() common.Drawable {
	return am.tracerSprite
}

// GetBackgroundTexture returns the background texture
func (am *AssetManager) GetBackgroundTexture() common.Drawable {
	return am.backgroundTexture
}
