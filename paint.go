package pict

// RGBA is a color with float components in [0, 1], not premultiplied.
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque color.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// PaintStyle selects between filling and stroking.
type PaintStyle uint8

const (
	// PaintFill fills the geometry.
	PaintFill PaintStyle = iota
	// PaintStroke strokes the geometry outline.
	PaintStroke
)

// LineCap specifies the shape of line endpoints.
type LineCap uint8

const (
	// LineCapButt specifies a flat line cap.
	LineCapButt LineCap = iota
	// LineCapRound specifies a rounded line cap.
	LineCapRound
	// LineCapSquare specifies a square line cap.
	LineCapSquare
)

// LineJoin specifies the shape of line joins.
type LineJoin uint8

const (
	// LineJoinMiter specifies a sharp (mitered) join.
	LineJoinMiter LineJoin = iota
	// LineJoinRound specifies a rounded join.
	LineJoinRound
	// LineJoinBevel specifies a beveled join.
	LineJoinBevel
)

// FillRule specifies how to determine which areas are inside a path.
type FillRule uint8

const (
	// FillRuleNonZero uses the non-zero winding rule.
	FillRuleNonZero FillRule = iota
	// FillRuleEvenOdd uses the even-odd rule.
	FillRuleEvenOdd
)

// BlendMode is the compositing mode applied when drawing.
type BlendMode uint8

const (
	// BlendSrcOver is normal source-over compositing, the default.
	BlendSrcOver BlendMode = iota
	// BlendSrc replaces the destination.
	BlendSrc
	// BlendMultiply multiplies source and destination.
	BlendMultiply
	// BlendScreen inverts, multiplies, and inverts again.
	BlendScreen
	// BlendPlus adds source and destination.
	BlendPlus

	blendModeCount
)

// Paint is the styling state for a draw operation. Paints are stored by
// value in the paint table; the optional Shader is a shared, immutable
// flattenable.
type Paint struct {
	// Color is the solid fill or stroke color.
	Color RGBA

	// Style selects filling or stroking.
	Style PaintStyle

	// LineWidth is the stroke width.
	LineWidth float64

	// LineCap is the shape of stroke endpoints.
	LineCap LineCap

	// LineJoin is the shape of stroke joins.
	LineJoin LineJoin

	// MiterLimit is the miter limit for sharp joins.
	MiterLimit float64

	// FillRule is the fill rule for paths.
	FillRule FillRule

	// Blend is the compositing mode.
	Blend BlendMode

	// Antialias enables anti-aliasing.
	Antialias bool

	// Shader, if non-nil, overrides Color with a polymorphic paint
	// source decoded through the factory registry.
	Shader Flattenable
}

// NewPaint returns a paint with default values: opaque black fill,
// 1px stroke width, butt caps, miter joins, anti-aliased.
func NewPaint() Paint {
	return Paint{
		Color:      RGBA{A: 1},
		LineWidth:  1,
		MiterLimit: 4,
		Antialias:  true,
	}
}

// Paint flags are packed into one 32-bit word on the wire.
const (
	paintFlagStyleShift   = 0
	paintFlagCapShift     = 1
	paintFlagJoinShift    = 3
	paintFlagRuleShift    = 5
	paintFlagAntialiasBit = 1 << 6
	paintFlagBlendShift   = 8
	paintFlagBlendMask    = 0x3f
)

func (p *Paint) flatten(b *WriteBuffer) {
	b.WriteFloat32(float32(p.Color.R))
	b.WriteFloat32(float32(p.Color.G))
	b.WriteFloat32(float32(p.Color.B))
	b.WriteFloat32(float32(p.Color.A))
	b.WriteFloat32(float32(p.LineWidth))
	b.WriteFloat32(float32(p.MiterLimit))

	flags := uint32(p.Style)<<paintFlagStyleShift |
		uint32(p.LineCap)<<paintFlagCapShift |
		uint32(p.LineJoin)<<paintFlagJoinShift |
		uint32(p.FillRule)<<paintFlagRuleShift |
		uint32(p.Blend)<<paintFlagBlendShift
	if p.Antialias {
		flags |= paintFlagAntialiasBit
	}
	b.WriteUint32(flags)
	b.WriteFlattenable(p.Shader)
}

func (p *Paint) unflatten(b *ReadBuffer) bool {
	p.Color.R = float64(b.ReadFloat32())
	p.Color.G = float64(b.ReadFloat32())
	p.Color.B = float64(b.ReadFloat32())
	p.Color.A = float64(b.ReadFloat32())
	p.LineWidth = float64(b.ReadFloat32())
	p.MiterLimit = float64(b.ReadFloat32())

	flags := b.ReadUint32()
	p.Style = PaintStyle(flags >> paintFlagStyleShift & 1)
	p.LineCap = LineCap(flags >> paintFlagCapShift & 3)
	p.LineJoin = LineJoin(flags >> paintFlagJoinShift & 3)
	p.FillRule = FillRule(flags >> paintFlagRuleShift & 1)
	p.Antialias = flags&paintFlagAntialiasBit != 0
	p.Blend = BlendMode(flags >> paintFlagBlendShift & paintFlagBlendMask)

	if !b.Validate(p.LineCap <= LineCapSquare &&
		p.LineJoin <= LineJoinBevel &&
		p.Blend < blendModeCount) {
		return false
	}
	p.Shader = b.ReadFlattenable()
	return b.IsValid()
}
