package pict

import (
	"bytes"
	"io"
	"sync/atomic"

	"github.com/gogpu/pict/wire"
)

var pictureIDs atomic.Uint32

// nextPictureID returns a process-unique nonzero picture ID. IDs let
// caches key on a picture without retaining it.
func nextPictureID() uint32 {
	for {
		if id := pictureIDs.Add(1); id != 0 {
			return id
		}
	}
}

// Picture is an immutable recorded sequence of drawing commands. It is
// produced by a Recorder or decoded from an encoded stream, and can be
// played back onto any Canvas, serialized, or nested inside another
// recording. A Picture is safe for concurrent use.
type Picture struct {
	id   uint32
	data *pictureData
}

func newPicture(data *pictureData) *Picture {
	data.initForPlayback()
	return &Picture{id: nextPictureID(), data: data}
}

// UniqueID returns a nonzero ID unique within the process. Decoding the
// same bytes twice yields different IDs.
func (p *Picture) UniqueID() uint32 {
	return p.id
}

// CullRect returns the nominal bounds of the recorded content.
func (p *Picture) CullRect() Rect {
	return p.data.info.CullRect
}

// ApproximateOpCount returns a rough count of recorded operations,
// usable as a caching heuristic. Sub-pictures count as one op each.
func (p *Picture) ApproximateOpCount() int {
	return len(p.data.opData) / opWordSize
}

// Serialize writes the picture in the binary stream format.
func (p *Picture) Serialize(dst io.Writer) error {
	return p.SerializeWithProcs(dst, SerialProcs{})
}

// SerializeWithProcs writes the picture in the binary stream format,
// routing image and typeface encoding through the given procs.
func (p *Picture) SerializeWithProcs(dst io.Writer, procs SerialProcs) error {
	w := wire.NewWriter(dst)
	p.serialize(w, procs, nil)
	return w.Err()
}

// serialize writes the header and body. topLevel carries the shared
// typeface set down to nested pictures; nil at the top level.
func (p *Picture) serialize(w *wire.Writer, procs SerialProcs, topLevel *TypefaceSet) {
	p.data.info.write(w)
	p.data.serialize(w, procs, topLevel)
}

// Flatten writes the picture in the buffer dialect, for embedding a
// picture inside a custom Flattenable's payload. Ordinary serialization
// goes through Serialize instead.
func (p *Picture) Flatten(b *WriteBuffer) {
	p.data.info.flatten(b)
	p.data.flatten(b)
}

// MakeFromStream decodes a picture serialized with Serialize. The input
// is untrusted: any structural violation yields ErrInvalidPicture rather
// than a partially-decoded picture.
func MakeFromStream(src io.Reader) (*Picture, error) {
	return MakeFromStreamWithProcs(src, DeserialProcs{})
}

// MakeFromStreamWithProcs decodes a picture, routing custom-encoded
// images and typefaces through the given procs.
func MakeFromStreamWithProcs(src io.Reader, procs DeserialProcs) (*Picture, error) {
	return makeFromStream(wire.NewStreamReader(src), procs, nil)
}

// MakeFromBytes decodes a picture from an in-memory encoding.
func MakeFromBytes(data []byte) (*Picture, error) {
	return MakeFromStream(bytes.NewReader(data))
}

func makeFromStream(r *wire.StreamReader, procs DeserialProcs, topTF *typefacePlayback) (*Picture, error) {
	info, ok := readPictInfo(r)
	if !ok {
		return nil, ErrInvalidPicture
	}
	d := newPictureData(info)
	if !d.parseStream(r, procs, topTF) {
		return nil, ErrInvalidPicture
	}
	return newPicture(d), nil
}

// MakeFromBuffer decodes a picture written with Flatten. The picture
// resolves factory and typeface references against the buffer's bound
// tables; it has none of its own.
func MakeFromBuffer(b *ReadBuffer) (*Picture, error) {
	pic := makeFromBuffer(b)
	if pic == nil {
		return nil, ErrInvalidPicture
	}
	return pic, nil
}

func makeFromBuffer(b *ReadBuffer) *Picture {
	info, ok := pictInfoFromBuffer(b)
	if !ok {
		return nil
	}
	d := newPictureData(info)
	if !d.parseBuffer(b) {
		return nil
	}
	return newPicture(d)
}
