package pict

import (
	"math"

	"github.com/gogpu/pict/wire"
)

// Op stream encoding. The stream is a flat sequence of 32-bit words: an
// opcode followed by that opcode's fixed argument words. Table
// references are 1-based; 0 means "none" where an argument is optional.
const opWordSize = 4

const (
	opSave uint32 = iota + 1
	opRestore
	opDrawPath     // path ref, paint ref
	opDrawImage    // image ref, x, y, paint ref (0 for none)
	opDrawTextBlob // blob ref, x, y, paint ref (0 for none)
	opDrawVertices // vertices ref, paint ref
	opDrawPicture  // picture ref
	opDrawDrawable // drawable ref
)

// Recorder captures drawing commands into a Picture. It implements
// Canvas, so anything that draws onto a Canvas can draw into a
// recording, including Playback of another picture.
//
// A Recorder is single-use: Finish returns the picture and the recorder
// must not be used afterwards. Not safe for concurrent use.
type Recorder struct {
	cull      Rect
	ops       *wire.Buffer
	paints    []Paint
	paintIDs  map[Paint]uint32
	paths     []*Path
	textBlobs []*TextBlob
	vertices  []*Vertices
	images    []*Image
	pictures  []*Picture
	drawables []Drawable
	finished  bool
}

// Recorder records everything a Canvas can draw.
var _ Canvas = (*Recorder)(nil)

// NewRecorder starts a recording with the given cull bounds.
func NewRecorder(cull Rect) *Recorder {
	return &Recorder{cull: cull, ops: wire.NewBuffer()}
}

func (r *Recorder) op(code uint32, args ...uint32) {
	if r.finished {
		panic("pict: Recorder used after Finish")
	}
	r.ops.WriteUint32(code)
	for _, a := range args {
		r.ops.WriteUint32(a)
	}
}

// addPaint snapshots the paint into the paint table and returns its
// 1-based reference, or 0 for nil. Paints without a shader are
// deduplicated by value; shader-bearing paints are not, since the
// interface's dynamic type may not be comparable.
func (r *Recorder) addPaint(p *Paint) uint32 {
	if p == nil {
		return 0
	}
	if p.Shader == nil {
		if id, ok := r.paintIDs[*p]; ok {
			return id
		}
	}
	r.paints = append(r.paints, *p)
	id := uint32(len(r.paints))
	if p.Shader == nil {
		if r.paintIDs == nil {
			r.paintIDs = make(map[Paint]uint32)
		}
		r.paintIDs[*p] = id
	}
	return id
}

func coord(v float64) uint32 {
	return math.Float32bits(float32(v))
}

// Save pushes the canvas state.
func (r *Recorder) Save() {
	r.op(opSave)
}

// Restore pops the canvas state.
func (r *Recorder) Restore() {
	r.op(opRestore)
}

// DrawPath records a filled or stroked path. The path is snapshotted;
// later mutations of p do not affect the recording.
func (r *Recorder) DrawPath(p *Path, paint *Paint) {
	if p == nil || paint == nil {
		return
	}
	r.paths = append(r.paths, p.Clone())
	r.op(opDrawPath, uint32(len(r.paths)), r.addPaint(paint))
}

// DrawImage records an image draw with its top-left corner at the given
// point. paint may be nil.
func (r *Recorder) DrawImage(img *Image, at Point, paint *Paint) {
	if img == nil {
		return
	}
	r.images = append(r.images, img)
	r.op(opDrawImage, uint32(len(r.images)), coord(at.X), coord(at.Y), r.addPaint(paint))
}

// DrawTextBlob records a text blob draw with its origin at the given
// point. paint may be nil.
func (r *Recorder) DrawTextBlob(blob *TextBlob, at Point, paint *Paint) {
	if blob == nil {
		return
	}
	r.textBlobs = append(r.textBlobs, blob)
	r.op(opDrawTextBlob, uint32(len(r.textBlobs)), coord(at.X), coord(at.Y), r.addPaint(paint))
}

// DrawVertices records a vertex mesh draw.
func (r *Recorder) DrawVertices(v *Vertices, paint *Paint) {
	if v == nil || paint == nil {
		return
	}
	r.vertices = append(r.vertices, v)
	r.op(opDrawVertices, uint32(len(r.vertices)), r.addPaint(paint))
}

// DrawPicture nests another picture into the recording. The picture is
// referenced, not copied; it serializes as a nested stream.
func (r *Recorder) DrawPicture(pic *Picture) {
	if pic == nil {
		return
	}
	r.pictures = append(r.pictures, pic)
	r.op(opDrawPicture, uint32(len(r.pictures)))
}

// DrawDrawable records a custom draw object. The drawable's concrete
// type must be registered with RegisterFlattenable for the recording to
// serialize.
func (r *Recorder) DrawDrawable(d Drawable) {
	if d == nil {
		return
	}
	r.drawables = append(r.drawables, d)
	r.op(opDrawDrawable, uint32(len(r.drawables)))
}

// Finish ends the recording and returns the picture. The recorder must
// not be used again.
func (r *Recorder) Finish() *Picture {
	if r.finished {
		panic("pict: Recorder already finished")
	}
	r.finished = true
	d := newPictureData(PictInfo{Version: FormatVersion, CullRect: r.cull})
	d.opData = r.ops.Bytes()
	d.paints = r.paints
	d.paths = r.paths
	d.textBlobs = r.textBlobs
	d.vertices = r.vertices
	d.images = r.images
	d.pictures = r.pictures
	d.drawables = r.drawables
	return newPicture(d)
}
