package pict

// Tag identifies a chunk in the picture wire format. Tags are 32-bit
// four-character codes, written little-endian like every other field.
//
// Two dispatch contexts share the tag space. The stream dialect frames
// chunks directly on a sequential stream; the buffer dialect frames them
// inside an in-memory payload (the flattened auxiliary tables, and
// pictures nested through the buffer format). A tag that is not
// recognized in the current context invalidates the parse.
type Tag uint32

const (
	// TagOps frames the raw draw-operation bytes. Size is the byte
	// length. Exactly one per picture level; a zero length is legal.
	TagOps Tag = 'o'<<24 | 'p'<<16 | 's'<<8 | ' '

	// TagFactories frames the polymorphic-type name table. Size is the
	// payload byte length: a uint32 count followed by packed
	// length-prefixed names. Stream dialect only.
	TagFactories Tag = 'f'<<24 | 'a'<<16 | 'c'<<8 | 't'

	// TagTypefaces frames the typeface table. Size is the entry count;
	// each entry is one typeface encoding. Stream dialect only.
	TagTypefaces Tag = 't'<<24 | 'p'<<16 | 'f'<<8 | 'c'

	// TagPictures frames nested sub-pictures. Size is the count. In the
	// stream dialect each entry is a full recursive picture encoding; in
	// the buffer dialect each entry uses the flattened buffer format.
	TagPictures Tag = 'p'<<24 | 'i'<<16 | 'c'<<8 | 't'

	// TagBufferSize frames the flattened auxiliary-table payload. Size
	// is the byte length of a nested tag stream in the buffer dialect.
	// Stream dialect only.
	TagBufferSize Tag = 'b'<<24 | 'u'<<16 | 'f'<<8 | 's'

	// TagPaints frames the paint table inside a buffer payload. Size is
	// the entry count.
	TagPaints Tag = 'p'<<24 | 'n'<<16 | 't'<<8 | ' '

	// TagPaths frames the path table inside a buffer payload. Size is
	// the entry count, repeated as an int32 in the payload.
	TagPaths Tag = 'p'<<24 | 't'<<16 | 'h'<<8 | ' '

	// TagTextBlobs frames the text-blob table inside a buffer payload.
	// Size is the entry count.
	TagTextBlobs Tag = 'b'<<24 | 'l'<<16 | 'o'<<8 | 'b'

	// TagVertices frames the vertex-mesh table inside a buffer payload.
	// Size is the entry count; each entry is a length-prefixed mesh
	// encoding.
	TagVertices Tag = 'v'<<24 | 'e'<<16 | 'r'<<8 | 't'

	// TagImages frames the image table inside a buffer payload. Size is
	// the entry count.
	TagImages Tag = 'i'<<24 | 'm'<<16 | 'g'<<8 | ' '

	// TagDrawables frames the custom-drawable table inside a buffer
	// payload. Size is the entry count; each entry is a polymorphic
	// encoding resolved through the factory table.
	TagDrawables Tag = 'd'<<24 | 'r'<<16 | 'w'<<8 | 'b'

	// TagEOF terminates the current level. It has no size field and no
	// payload.
	TagEOF Tag = 'e'<<24 | 'o'<<16 | 'f'<<8 | ' '
)

// String returns the four-character form of the tag, with non-printable
// bytes replaced, for diagnostics and stream dumps.
func (t Tag) String() string {
	b := [4]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)}
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			b[i] = '?'
		}
	}
	return string(b[:])
}
