package pict

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo moves to a point without drawing.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo draws a line to a point.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// QuadTo draws a quadratic Bezier curve.
type QuadTo struct {
	Control Point
	Point   Point
}

func (QuadTo) isPathElement() {}

// CubicTo draws a cubic Bezier curve.
type CubicTo struct {
	Control1 Point
	Control2 Point
	Point    Point
}

func (CubicTo) isPathElement() {}

// Close closes the current subpath.
type Close struct{}

func (Close) isPathElement() {}

// Path is a vector path: an ordered sequence of path elements plus a
// cached control-point bounding box. Paths stored in a picture are
// immutable; the bounds cache is populated when the table is built so
// playback never races on it.
type Path struct {
	elements    []PathElement
	bounds      Rect
	boundsValid bool
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{elements: make([]PathElement, 0, 16)}
}

// MoveTo starts a new subpath at the given point.
func (p *Path) MoveTo(x, y float64) {
	p.elements = append(p.elements, MoveTo{Point: Point{X: x, Y: y}})
	p.boundsValid = false
}

// LineTo adds a line to the current subpath.
func (p *Path) LineTo(x, y float64) {
	p.elements = append(p.elements, LineTo{Point: Point{X: x, Y: y}})
	p.boundsValid = false
}

// QuadTo adds a quadratic Bezier curve.
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.elements = append(p.elements, QuadTo{
		Control: Point{X: cx, Y: cy},
		Point:   Point{X: x, Y: y},
	})
	p.boundsValid = false
}

// CubicTo adds a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.elements = append(p.elements, CubicTo{
		Control1: Point{X: c1x, Y: c1y},
		Control2: Point{X: c2x, Y: c2y},
		Point:    Point{X: x, Y: y},
	})
	p.boundsValid = false
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.elements = append(p.elements, Close{})
}

// Elements returns the path elements.
func (p *Path) Elements() []PathElement {
	return p.elements
}

// IsEmpty returns true if the path has no elements.
func (p *Path) IsEmpty() bool {
	return len(p.elements) == 0
}

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	clone := &Path{
		elements:    make([]PathElement, len(p.elements)),
		bounds:      p.bounds,
		boundsValid: p.boundsValid,
	}
	copy(clone.elements, p.elements)
	return clone
}

// Bounds returns the control-point bounding box, computing and caching
// it on first use.
func (p *Path) Bounds() Rect {
	if !p.boundsValid {
		p.updateBoundsCache()
	}
	return p.bounds
}

// updateBoundsCache recomputes the cached bounds.
func (p *Path) updateBoundsCache() {
	b := EmptyRect()
	for _, elem := range p.elements {
		switch el := elem.(type) {
		case MoveTo:
			b = b.UnionPoint(el.Point)
		case LineTo:
			b = b.UnionPoint(el.Point)
		case QuadTo:
			b = b.UnionPoint(el.Control)
			b = b.UnionPoint(el.Point)
		case CubicTo:
			b = b.UnionPoint(el.Control1)
			b = b.UnionPoint(el.Control2)
			b = b.UnionPoint(el.Point)
		}
	}
	p.bounds = b
	p.boundsValid = true
}

// Path element verbs on the wire.
const (
	pathVerbMove  = 0
	pathVerbLine  = 1
	pathVerbQuad  = 2
	pathVerbCubic = 3
	pathVerbClose = 4
)

func (p *Path) flatten(b *WriteBuffer) {
	b.WritePackedUint(uint64(len(p.elements)))
	for _, elem := range p.elements {
		switch el := elem.(type) {
		case MoveTo:
			b.WriteBytes([]byte{pathVerbMove})
			writePoint(b, el.Point)
		case LineTo:
			b.WriteBytes([]byte{pathVerbLine})
			writePoint(b, el.Point)
		case QuadTo:
			b.WriteBytes([]byte{pathVerbQuad})
			writePoint(b, el.Control)
			writePoint(b, el.Point)
		case CubicTo:
			b.WriteBytes([]byte{pathVerbCubic})
			writePoint(b, el.Control1)
			writePoint(b, el.Control2)
			writePoint(b, el.Point)
		case Close:
			b.WriteBytes([]byte{pathVerbClose})
		}
	}
}

func (p *Path) unflatten(b *ReadBuffer) bool {
	count := b.ReadPackedUint()
	// Every element needs at least a verb byte.
	if !b.Validate(b.CanRead(count)) {
		return false
	}
	p.elements = make([]PathElement, 0, count)
	for i := uint64(0); i < count; i++ {
		verb := b.ReadBytes(1)
		if verb == nil {
			return false
		}
		switch verb[0] {
		case pathVerbMove:
			p.elements = append(p.elements, MoveTo{Point: readPoint(b)})
		case pathVerbLine:
			p.elements = append(p.elements, LineTo{Point: readPoint(b)})
		case pathVerbQuad:
			p.elements = append(p.elements, QuadTo{
				Control: readPoint(b),
				Point:   readPoint(b),
			})
		case pathVerbCubic:
			p.elements = append(p.elements, CubicTo{
				Control1: readPoint(b),
				Control2: readPoint(b),
				Point:    readPoint(b),
			})
		case pathVerbClose:
			p.elements = append(p.elements, Close{})
		default:
			b.Invalidate()
			return false
		}
	}
	return b.IsValid()
}

func writePoint(b *WriteBuffer, pt Point) {
	b.WriteFloat32(float32(pt.X))
	b.WriteFloat32(float32(pt.Y))
}

func readPoint(b *ReadBuffer) Point {
	x := b.ReadFloat32()
	y := b.ReadFloat32()
	return Point{X: float64(x), Y: float64(y)}
}
