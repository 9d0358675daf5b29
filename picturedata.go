package pict

import "github.com/gogpu/pict/wire"

// pictureData is the body of a picture: the raw op-stream bytes plus the
// auxiliary tables the ops index into. It is built either by a Recorder
// (write path) or incrementally while parsing (read path), and is never
// mutated after construction completes.
type pictureData struct {
	info      PictInfo
	opData    []byte
	paints    []Paint
	paths     []*Path
	textBlobs []*TextBlob
	vertices  []*Vertices
	images    []*Image
	pictures  []*Picture
	drawables []Drawable

	// Playback tables built while parsing. The factory table is scoped
	// to this level's buffer payload; the typeface table may be empty
	// here and resolved against the top-level picture's table instead.
	factories *factoryPlayback
	typefaces *typefacePlayback
}

func newPictureData(info PictInfo) *pictureData {
	return &pictureData{info: info}
}

// initForPlayback precomputes the path bounds caches so concurrent
// playback never writes to shared state.
func (d *pictureData) initForPlayback() {
	for _, p := range d.paths {
		p.updateBoundsCache()
	}
}

// ---------------------------------------------------------------------------
// Write path
// ---------------------------------------------------------------------------

// serialize writes this level onto the stream. topLevel is the shared
// typeface dedup set when a parent owns the typeface table, or nil when
// this level owns it.
//
// The fixed chunk order is a protocol requirement: the factory and
// typeface tables must be complete before the buffer payload that
// references them is framed, and the typeface table must additionally
// reflect every descendant's needs, which is what the dry-run pass below
// guarantees.
func (d *pictureData) serialize(w *wire.Writer, procs SerialProcs, topLevel *TypefaceSet) {
	// The op data never references the tables, so it goes first.
	w.WriteTagSize(uint32(TagOps), uint32(len(d.opData)))
	w.WriteBytes(d.opData)

	centralized := d.info.Version >= typefaceCentralizationVersion
	typefaces := topLevel
	ownTable := typefaces == nil || !centralized
	if ownTable {
		typefaces = NewTypefaceSet()
	}

	// Flattening discovers which factories and typefaces this level
	// itself uses.
	factories := NewFactorySet()
	buf := newWriteBuffer(factories, typefaces, procs)
	d.flattenToBuffer(buf)

	// Dry-run serialize the sub-pictures into a discard sink. The only
	// effect is populating the shared typeface set with the typefaces
	// descendants will need, before the table is committed below.
	if centralized {
		devnull := wire.NewCountingSink()
		for _, pic := range d.pictures {
			pic.serialize(devnull, procs, typefaces)
		}
	}

	factories.write(w)
	if ownTable {
		typefaces.write(w, procs)
	}

	w.WriteTagSize(uint32(TagBufferSize), uint32(buf.length()))
	w.WriteBytes(buf.bytes())

	if len(d.pictures) > 0 {
		w.WriteTagSize(uint32(TagPictures), uint32(len(d.pictures)))
		for _, pic := range d.pictures {
			if centralized {
				pic.serialize(w, procs, typefaces)
			} else {
				pic.serialize(w, procs, nil)
			}
		}
	}

	w.WriteUint32(uint32(TagEOF))
}

// flattenToBuffer encodes the auxiliary tables as consecutive tagged
// sub-chunks. Empty tables are omitted entirely rather than written as
// empty chunks.
func (d *pictureData) flattenToBuffer(b *WriteBuffer) {
	if n := len(d.paints); n > 0 {
		b.writeTagSize(TagPaints, uint32(n))
		for i := range d.paints {
			d.paints[i].flatten(b)
		}
	}

	if n := len(d.paths); n > 0 {
		b.writeTagSize(TagPaths, uint32(n))
		b.WriteInt32(int32(n))
		for _, p := range d.paths {
			p.flatten(b)
		}
	}

	if n := len(d.textBlobs); n > 0 {
		b.writeTagSize(TagTextBlobs, uint32(n))
		for _, blob := range d.textBlobs {
			blob.flatten(b)
		}
	}

	if n := len(d.vertices); n > 0 {
		b.writeTagSize(TagVertices, uint32(n))
		for _, v := range d.vertices {
			b.WriteByteArray(v.Encode())
		}
	}

	if n := len(d.images); n > 0 {
		b.writeTagSize(TagImages, uint32(n))
		for _, img := range d.images {
			writeImage(b, img)
		}
	}

	// Drawables are polymorphic, so they ride in the buffer payload where
	// the factory table is in scope.
	if n := len(d.drawables); n > 0 {
		b.writeTagSize(TagDrawables, uint32(n))
		for _, dr := range d.drawables {
			b.WriteFlattenable(dr)
		}
	}
}

// flatten writes the whole level in the buffer dialect, used for
// pictures nested inside another buffer payload.
func (d *pictureData) flatten(b *WriteBuffer) {
	b.writeTagSize(TagOps, uint32(len(d.opData)))
	b.WriteByteArray(d.opData)

	if n := len(d.pictures); n > 0 {
		b.writeTagSize(TagPictures, uint32(n))
		for _, pic := range d.pictures {
			pic.Flatten(b)
		}
	}

	d.flattenToBuffer(b)
	b.WriteUint32(uint32(TagEOF))
}

// ---------------------------------------------------------------------------
// Read path, stream dialect
// ---------------------------------------------------------------------------

// parseStream reads chunks until the end marker. Any failure abandons
// the parse; the caller must not retain d afterwards.
func (d *pictureData) parseStream(r *wire.StreamReader, procs DeserialProcs, topTF *typefacePlayback) bool {
	// Tracks whether the buffer payload has been consumed at this
	// level. Factory or typeface chunks arriving after it could no
	// longer feed the references already resolved, so that ordering is
	// a hard structural violation.
	haveBuffer := false

	for {
		tag, ok := r.ReadUint32()
		if !ok {
			return false
		}
		if Tag(tag) == TagEOF {
			break
		}
		size, ok := r.ReadUint32()
		if !ok {
			return false
		}
		if !d.parseStreamTag(r, Tag(tag), size, procs, topTF, &haveBuffer) {
			Logger().Debug("picture stream parse failed",
				"tag", Tag(tag).String(), "size", size)
			return false
		}
	}

	// Even an intentionally empty picture carries a zero-length op
	// buffer; a level without one is invalid.
	return d.opData != nil
}

func (d *pictureData) parseStreamTag(r *wire.StreamReader, tag Tag, size uint32,
	procs DeserialProcs, topTF *typefacePlayback, haveBuffer *bool) bool {
	switch tag {
	case TagOps:
		if d.opData != nil {
			return false
		}
		data, ok := r.ReadBytes(uint64(size))
		if !ok {
			return false
		}
		d.opData = data

	case TagFactories:
		if *haveBuffer || d.factories != nil {
			return false
		}
		p, ok := readFactoryPlayback(r)
		if !ok {
			return false
		}
		d.factories = p

	case TagTypefaces:
		if *haveBuffer || d.typefaces != nil {
			return false
		}
		p, ok := readTypefacePlayback(r, size, procs)
		if !ok {
			return false
		}
		d.typefaces = p

	case TagPictures:
		if len(d.pictures) > 0 {
			return false
		}
		top := topTF
		if top == nil {
			top = d.typefaces
		}
		for i := uint32(0); i < size; i++ {
			pic, err := makeFromStream(r, procs, top)
			if err != nil {
				return false
			}
			d.pictures = append(d.pictures, pic)
		}

	case TagBufferSize:
		// The factory table is written unconditionally, so its absence
		// here means the stream is structurally broken.
		if d.factories == nil {
			return false
		}
		payload, ok := r.ReadBytes(uint64(size))
		if !ok {
			return false
		}
		b := newReadBuffer(payload, d.info.Version)
		b.bindFactories(d.factories)
		b.bindProcs(procs)
		if d.typefaces.count() > 0 {
			// Pre-centralization streams carry a typeface table per
			// sub-picture.
			b.bindTypefaces(d.typefaces)
		} else {
			// Newer streams keep all typefaces with the top picture.
			b.bindTypefaces(topTF)
		}
		for !b.EOF() && b.IsValid() {
			t := Tag(b.ReadUint32())
			if t == TagEOF {
				break
			}
			d.parseBufferTag(b, t, b.ReadUint32())
		}
		if !b.IsValid() {
			return false
		}
		*haveBuffer = true

	default:
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Read path, buffer dialect
// ---------------------------------------------------------------------------

// parseBuffer reads a full picture level in the buffer dialect, for
// pictures nested inside another buffer payload. The buffer arrives
// bound to the enclosing level's factory and typeface tables.
func (d *pictureData) parseBuffer(b *ReadBuffer) bool {
	for b.IsValid() {
		tag := Tag(b.ReadUint32())
		if !b.IsValid() {
			return false
		}
		if tag == TagEOF {
			break
		}
		d.parseBufferTag(b, tag, b.ReadUint32())
		if !b.IsValid() {
			return false
		}
	}
	return b.IsValid() && d.opData != nil
}

func (d *pictureData) parseBufferTag(b *ReadBuffer, tag Tag, size uint32) {
	switch tag {
	case TagPaints:
		// Preflight that the count is not absurd for the remaining
		// payload before allocating anything.
		if !b.Validate(len(d.paints) == 0 && b.CanRead(uint64(size))) {
			return
		}
		d.paints = make([]Paint, 0, min(int(size), 64))
		for i := uint32(0); i < size; i++ {
			var p Paint
			if !p.unflatten(b) {
				return
			}
			d.paints = append(d.paints, p)
		}

	case TagPaths:
		if size == 0 {
			return
		}
		count := b.ReadInt32()
		if !b.Validate(count >= 0 && len(d.paths) == 0 && b.CanRead(uint64(count))) {
			return
		}
		for i := int32(0); i < count; i++ {
			p := NewPath()
			if !p.unflatten(b) {
				return
			}
			p.updateBoundsCache()
			d.paths = append(d.paths, p)
		}

	case TagTextBlobs:
		if !b.Validate(len(d.textBlobs) == 0 && b.CanRead(uint64(size))) {
			return
		}
		for i := uint32(0); i < size; i++ {
			blob := textBlobFromBuffer(b)
			if blob == nil {
				b.Invalidate()
				return
			}
			d.textBlobs = append(d.textBlobs, blob)
		}

	case TagVertices:
		if !b.Validate(len(d.vertices) == 0 && b.CanRead(uint64(size))) {
			return
		}
		for i := uint32(0); i < size; i++ {
			payload := b.ReadByteArray()
			if !b.IsValid() {
				return
			}
			v, err := DecodeVertices(payload)
			if err != nil {
				b.Invalidate()
				return
			}
			d.vertices = append(d.vertices, v)
		}

	case TagImages:
		if !b.Validate(len(d.images) == 0 && b.CanRead(uint64(size))) {
			return
		}
		for i := uint32(0); i < size; i++ {
			img := imageFromBuffer(b)
			if img == nil {
				b.Invalidate()
				return
			}
			d.images = append(d.images, img)
		}

	case TagOps:
		if !b.Validate(d.opData == nil && b.CanRead(uint64(size))) {
			return
		}
		data := b.ReadByteArray()
		if !b.IsValid() {
			return
		}
		d.opData = data

	case TagPictures:
		if !b.Validate(len(d.pictures) == 0 && b.CanRead(uint64(size))) {
			return
		}
		for i := uint32(0); i < size; i++ {
			pic := makeFromBuffer(b)
			if pic == nil {
				b.Invalidate()
				return
			}
			d.pictures = append(d.pictures, pic)
		}

	case TagDrawables:
		if !b.Validate(len(d.drawables) == 0 && b.CanRead(uint64(size))) {
			return
		}
		for i := uint32(0); i < size; i++ {
			dr := drawableFromBuffer(b)
			if dr == nil {
				b.Invalidate()
				return
			}
			d.drawables = append(d.drawables, dr)
		}

	default:
		b.Invalidate()
	}
}
