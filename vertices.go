package pict

import (
	"errors"

	"github.com/gogpu/pict/wire"
)

// VertexMode describes how vertex positions form triangles.
type VertexMode uint32

const (
	// VertexTriangles treats every three positions as one triangle.
	VertexTriangles VertexMode = iota
	// VertexTriangleStrip shares the last two positions of each triangle.
	VertexTriangleStrip
	// VertexTriangleFan shares the first position across all triangles.
	VertexTriangleFan

	vertexModeCount
)

// Vertices is an immutable triangle mesh: positions, optional per-vertex
// colors, and optional indices. It carries its own self-contained binary
// encoding, stored in the vertex table as an opaque byte array.
type Vertices struct {
	// Mode describes triangle assembly.
	Mode VertexMode

	// Positions are the vertex positions. Required, non-empty.
	Positions []Point

	// Colors holds one packed RGBA8888 color per position, or nil.
	Colors []uint32

	// Indices index into Positions, or nil for sequential assembly.
	Indices []uint16
}

var errInvalidVertices = errors.New("pict: invalid vertex mesh encoding")

// Encode returns the self-contained binary form of the mesh.
func (v *Vertices) Encode() []byte {
	b := wire.NewBuffer()
	b.WriteUint32(uint32(v.Mode))
	b.WriteUint32(uint32(len(v.Positions)))
	b.WriteUint32(uint32(len(v.Colors)))
	b.WriteUint32(uint32(len(v.Indices)))
	for _, p := range v.Positions {
		b.WriteFloat32(float32(p.X))
		b.WriteFloat32(float32(p.Y))
	}
	for _, c := range v.Colors {
		b.WriteUint32(c)
	}
	for _, i := range v.Indices {
		b.WriteUint32(uint32(i))
	}
	return b.Bytes()
}

// DecodeVertices parses and validates a mesh encoding produced by
// Encode. The declared counts must fit the payload exactly, colors must
// be absent or match the position count, and every index must reference
// an existing position.
func DecodeVertices(data []byte) (*Vertices, error) {
	b := wire.NewReadBuffer(data)
	mode := VertexMode(b.ReadUint32())
	posCount := b.ReadUint32()
	colorCount := b.ReadUint32()
	indexCount := b.ReadUint32()
	if !b.IsValid() || mode >= vertexModeCount {
		return nil, errInvalidVertices
	}
	if posCount == 0 || (colorCount != 0 && colorCount != posCount) {
		return nil, errInvalidVertices
	}
	need := uint64(posCount)*8 + uint64(colorCount)*4 + uint64(indexCount)*4
	if !b.CanRead(need) {
		return nil, errInvalidVertices
	}

	v := &Vertices{Mode: mode}
	v.Positions = make([]Point, posCount)
	for i := range v.Positions {
		v.Positions[i] = Point{
			X: float64(b.ReadFloat32()),
			Y: float64(b.ReadFloat32()),
		}
	}
	if colorCount > 0 {
		v.Colors = make([]uint32, colorCount)
		for i := range v.Colors {
			v.Colors[i] = b.ReadUint32()
		}
	}
	if indexCount > 0 {
		v.Indices = make([]uint16, indexCount)
		for i := range v.Indices {
			idx := b.ReadUint32()
			if idx >= posCount || idx > 0xffff {
				return nil, errInvalidVertices
			}
			v.Indices[i] = uint16(idx)
		}
	}
	if !b.IsValid() || !b.EOF() {
		return nil, errInvalidVertices
	}
	return v, nil
}

// Bounds returns the bounding box of the vertex positions.
func (v *Vertices) Bounds() Rect {
	b := EmptyRect()
	for _, p := range v.Positions {
		b = b.UnionPoint(p)
	}
	return b
}
