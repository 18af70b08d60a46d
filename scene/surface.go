package scene

import "math"

// Vertex is one displaced grid point in screen pixels.
type Vertex struct {
	X, Y      float32
	Intensity float32
}

// Surface is a regular grid over the viewport whose vertices are pushed
// along the flow.
type Surface struct {
	cols, rows    int
	width, height float32
	amplitude     float32
	verts         []Vertex
}

// NewSurface creates a grid of cols x rows cells. amplitude scales flow
// values to pixels.
func NewSurface(cols, rows int, width, height, amplitude float32) *Surface {
	cols = max(cols, 1)
	rows = max(rows, 1)
	s := &Surface{
		cols:      cols,
		rows:      rows,
		amplitude: amplitude,
		verts:     make([]Vertex, (cols+1)*(rows+1)),
	}
	s.Resize(width, height)
	return s
}

// Resize resets every vertex to its rest position for a new viewport.
func (s *Surface) Resize(width, height float32) {
	s.width, s.height = width, height
	for j := 0; j <= s.rows; j++ {
		for i := 0; i <= s.cols; i++ {
			x, y := s.rest(i, j)
			s.verts[j*(s.cols+1)+i] = Vertex{X: x, Y: y}
		}
	}
}

// Update displaces each vertex from its rest position by the flow under it.
func (s *Surface) Update(field *FieldCache) {
	if s.width <= 0 || s.height <= 0 {
		return
	}
	for j := 0; j <= s.rows; j++ {
		for i := 0; i <= s.cols; i++ {
			x, y := s.rest(i, j)
			flow := field.SampleBilinear(x/s.width, 1-y/s.height)
			s.verts[j*(s.cols+1)+i] = Vertex{
				X:         x + flow.R*s.amplitude,
				Y:         y - flow.G*s.amplitude,
				Intensity: flow.B,
			}
		}
	}
}

// Grid returns the grid dimensions in cells.
func (s *Surface) Grid() (cols, rows int) {
	return s.cols, s.rows
}

// At returns vertex (i, j), 0 <= i <= cols, 0 <= j <= rows.
func (s *Surface) At(i, j int) Vertex {
	return s.verts[j*(s.cols+1)+i]
}

func (s *Surface) rest(i, j int) (float32, float32) {
	return float32(i) * s.width / float32(s.cols), float32(j) * s.height / float32(s.rows)
}

func pow32(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
