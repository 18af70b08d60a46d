// Package camera provides the orthographic view used by the inspector compositor.
package camera

// Ortho is an orthographic view centered on the origin, one world unit per
// screen pixel, with Y growing upward.
type Ortho struct {
	Left, Right float32
	Top, Bottom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32
}

// NewOrtho creates a view matching a viewport of the given pixel size.
func NewOrtho(viewportW, viewportH float32) Ortho {
	var o Ortho
	o.Resize(viewportW, viewportH)
	return o
}

// Resize updates the projection bounds to match a new viewport.
func (o *Ortho) Resize(viewportW, viewportH float32) {
	o.ViewportW = viewportW
	o.ViewportH = viewportH
	o.Left = -viewportW / 2
	o.Right = viewportW / 2
	o.Top = viewportH / 2
	o.Bottom = -viewportH / 2
}

// WorldToScreen converts view coordinates to screen pixels (Y down).
func (o Ortho) WorldToScreen(wx, wy float32) (sx, sy float32) {
	w := o.Right - o.Left
	h := o.Top - o.Bottom
	if w == 0 || h == 0 {
		return 0, 0
	}
	sx = (wx - o.Left) / w * o.ViewportW
	sy = (o.Top - wy) / h * o.ViewportH
	return sx, sy
}

// ScreenToWorld converts screen pixels to view coordinates.
func (o Ortho) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	if o.ViewportW == 0 || o.ViewportH == 0 {
		return 0, 0
	}
	wx = o.Left + sx/o.ViewportW*(o.Right-o.Left)
	wy = o.Top - sy/o.ViewportH*(o.Top-o.Bottom)
	return wx, wy
}

// RectToScreen converts a rectangle given by its center and size in view
// coordinates to its top-left corner and size in screen pixels.
func (o Ortho) RectToScreen(cx, cy, w, h float32) (x, y, sw, sh float32) {
	x0, y0 := o.WorldToScreen(cx-w/2, cy+h/2)
	x1, y1 := o.WorldToScreen(cx+w/2, cy-h/2)
	return x0, y0, x1 - x0, y1 - y0
}

// VisibleWorldBounds returns (minX, minY, maxX, maxY) of the view.
func (o Ortho) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	return o.Left, o.Bottom, o.Right, o.Top
}
