package pict

import (
	"bytes"
	"math"

	"github.com/gogpu/pict/wire"
)

// pictMagic identifies an encoded picture stream. Eight bytes so the
// header stays 32-bit aligned.
var pictMagic = [8]byte{'g', 'g', '-', 'p', 'i', 'c', 't', 0}

const (
	// FormatVersion is the wire format version written by this package.
	FormatVersion uint32 = 2

	// MinReadVersion is the oldest wire format version this package can
	// still read.
	MinReadVersion uint32 = 1

	// typefaceCentralizationVersion is the first version that serializes
	// all typefaces in one table at the top-level picture. Older streams
	// carry a typeface table per sub-picture.
	typefaceCentralizationVersion uint32 = 2
)

// PictInfo is the format metadata preceding a picture body: the wire
// version and the nominal cull bounds. The version gates layout decisions
// during parsing, most importantly where typeface tables live.
type PictInfo struct {
	Version  uint32
	CullRect Rect
}

func (p PictInfo) write(w *wire.Writer) {
	w.WriteBytes(pictMagic[:])
	w.WriteUint32(p.Version)
	w.WriteFloat32(float32(p.CullRect.MinX))
	w.WriteFloat32(float32(p.CullRect.MinY))
	w.WriteFloat32(float32(p.CullRect.MaxX))
	w.WriteFloat32(float32(p.CullRect.MaxY))
}

func readPictInfo(r *wire.StreamReader) (PictInfo, bool) {
	magic, ok := r.ReadBytes(uint64(len(pictMagic)))
	if !ok || !bytes.Equal(magic, pictMagic[:]) {
		return PictInfo{}, false
	}
	var info PictInfo
	if info.Version, ok = r.ReadUint32(); !ok {
		return PictInfo{}, false
	}
	if info.Version < MinReadVersion || info.Version > FormatVersion {
		return PictInfo{}, false
	}
	var c [4]float32
	for i := range c {
		v, ok := r.ReadUint32()
		if !ok {
			return PictInfo{}, false
		}
		c[i] = math.Float32frombits(v)
	}
	info.CullRect = Rect{
		MinX: float64(c[0]), MinY: float64(c[1]),
		MaxX: float64(c[2]), MaxY: float64(c[3]),
	}
	return info, true
}

// flatten writes the header fields into a buffer payload. Buffer-nested
// pictures do not repeat the magic; the enclosing stream already proved
// the format.
func (p PictInfo) flatten(b *WriteBuffer) {
	b.buf.WriteUint32(p.Version)
	b.buf.WriteFloat32(float32(p.CullRect.MinX))
	b.buf.WriteFloat32(float32(p.CullRect.MinY))
	b.buf.WriteFloat32(float32(p.CullRect.MaxX))
	b.buf.WriteFloat32(float32(p.CullRect.MaxY))
}

func pictInfoFromBuffer(b *ReadBuffer) (PictInfo, bool) {
	var info PictInfo
	info.Version = b.ReadUint32()
	info.CullRect = Rect{
		MinX: float64(b.ReadFloat32()),
		MinY: float64(b.ReadFloat32()),
		MaxX: float64(b.ReadFloat32()),
		MaxY: float64(b.ReadFloat32()),
	}
	if !b.Validate(info.Version >= MinReadVersion && info.Version <= FormatVersion) {
		return PictInfo{}, false
	}
	return info, true
}
