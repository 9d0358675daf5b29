package pict

import "github.com/gogpu/pict/wire"

// Canvas is the playback target for recorded pictures. Recorder
// implements Canvas, so recordings compose: playing a picture into a
// recorder re-records it.
type Canvas interface {
	// Save pushes the canvas state.
	Save()

	// Restore pops the canvas state. Never called more times than Save.
	Restore()

	// DrawPath draws a filled or stroked path. paint is never nil.
	DrawPath(p *Path, paint *Paint)

	// DrawImage draws an image with its top-left corner at the given
	// point. paint may be nil.
	DrawImage(img *Image, at Point, paint *Paint)

	// DrawTextBlob draws shaped text with its origin at the given point.
	// paint may be nil.
	DrawTextBlob(blob *TextBlob, at Point, paint *Paint)

	// DrawVertices draws a triangle mesh. paint is never nil.
	DrawVertices(v *Vertices, paint *Paint)

	// DrawPicture replays a nested picture.
	DrawPicture(pic *Picture)

	// DrawDrawable draws a custom draw object.
	DrawDrawable(d Drawable)
}

// Playback replays the recorded commands onto c in recording order.
// References into the auxiliary tables are range-checked as they are
// decoded, so a picture assembled from hostile bytes can fail here even
// after parsing succeeded; the canvas sees nothing invalid either way.
// Save and Restore are always delivered balanced.
func (p *Picture) Playback(c Canvas) error {
	d := p.data
	b := wire.NewReadBuffer(d.opData)
	depth := 0
	for !b.EOF() && b.IsValid() {
		switch op := b.ReadUint32(); op {
		case opSave:
			if b.IsValid() {
				c.Save()
				depth++
			}

		case opRestore:
			if !b.Validate(depth > 0) {
				break
			}
			c.Restore()
			depth--

		case opDrawPath:
			ref := b.ReadUint32()
			paint := d.paintRef(b, b.ReadUint32(), false)
			if !b.Validate(ref >= 1 && uint64(ref) <= uint64(len(d.paths))) {
				break
			}
			c.DrawPath(d.paths[ref-1], paint)

		case opDrawImage:
			ref := b.ReadUint32()
			at := Point{X: float64(b.ReadFloat32()), Y: float64(b.ReadFloat32())}
			paint := d.paintRef(b, b.ReadUint32(), true)
			if !b.Validate(ref >= 1 && uint64(ref) <= uint64(len(d.images))) {
				break
			}
			c.DrawImage(d.images[ref-1], at, paint)

		case opDrawTextBlob:
			ref := b.ReadUint32()
			at := Point{X: float64(b.ReadFloat32()), Y: float64(b.ReadFloat32())}
			paint := d.paintRef(b, b.ReadUint32(), true)
			if !b.Validate(ref >= 1 && uint64(ref) <= uint64(len(d.textBlobs))) {
				break
			}
			c.DrawTextBlob(d.textBlobs[ref-1], at, paint)

		case opDrawVertices:
			ref := b.ReadUint32()
			paint := d.paintRef(b, b.ReadUint32(), false)
			if !b.Validate(ref >= 1 && uint64(ref) <= uint64(len(d.vertices))) {
				break
			}
			c.DrawVertices(d.vertices[ref-1], paint)

		case opDrawPicture:
			ref := b.ReadUint32()
			if !b.Validate(ref >= 1 && uint64(ref) <= uint64(len(d.pictures))) {
				break
			}
			c.DrawPicture(d.pictures[ref-1])

		case opDrawDrawable:
			ref := b.ReadUint32()
			if !b.Validate(ref >= 1 && uint64(ref) <= uint64(len(d.drawables))) {
				break
			}
			c.DrawDrawable(d.drawables[ref-1])

		default:
			b.Invalidate()
		}
	}
	if !b.IsValid() {
		return ErrInvalidPicture
	}
	// Close any saves the recording left open.
	for ; depth > 0; depth-- {
		c.Restore()
	}
	return nil
}

// paintRef resolves a 1-based paint reference. The zero reference is
// allowed only where the op treats the paint as optional.
func (d *pictureData) paintRef(b *wire.ReadBuffer, ref uint32, optional bool) *Paint {
	if ref == 0 {
		if !optional {
			b.Invalidate()
		}
		return nil
	}
	if !b.Validate(uint64(ref) <= uint64(len(d.paints))) {
		return nil
	}
	return &d.paints[ref-1]
}
