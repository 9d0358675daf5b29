package pict

// Drawable is a custom draw object recorded into a picture. Unlike the
// fixed aux tables, drawables are polymorphic: their concrete type is
// chosen at decode time through the flattenable factory registry, so
// applications can persist their own draw objects inside a picture.
//
// Implementations must be immutable once recorded.
type Drawable interface {
	Flattenable

	// Bounds returns a conservative bounding box of what Draw paints.
	Bounds() Rect

	// Draw replays the drawable onto a canvas.
	Draw(c Canvas)
}

// drawableFromBuffer decodes one drawable table entry. The entry decodes
// through the factory registry; an object that is not a Drawable fails
// the parse.
func drawableFromBuffer(b *ReadBuffer) Drawable {
	obj := b.ReadFlattenable()
	if !b.IsValid() {
		return nil
	}
	d, ok := obj.(Drawable)
	if !b.Validate(ok) {
		return nil
	}
	return d
}
