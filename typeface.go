package pict

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/zeebo/blake3"

	"github.com/gogpu/pict/internal/fontcache"
	"github.com/gogpu/pict/wire"
)

// FontStyle describes the weight and slant of a typeface.
type FontStyle struct {
	// Weight is the CSS-style weight, 100 through 900; 400 is regular.
	Weight int32
	// Italic is true for italic or oblique faces.
	Italic bool
}

// NormalStyle returns the regular upright style.
func NormalStyle() FontStyle {
	return FontStyle{Weight: 400}
}

func (s FontStyle) bits() uint32 {
	b := uint32(s.Weight) & 0xffff
	if s.Italic {
		b |= 1 << 16
	}
	return b
}

func styleFromBits(b uint32) FontStyle {
	return FontStyle{
		Weight: int32(b & 0xffff),
		Italic: b&(1<<16) != 0,
	}
}

// Typeface is an immutable font reference: a family name, a style, and
// optionally the raw font bytes. When font bytes are present they are
// parsed once at construction; a typeface that fails to parse is never
// constructed.
//
// Typefaces are shared-ownership, read-only objects; the same *Typeface
// may be referenced by any number of pictures and read concurrently.
type Typeface struct {
	family string
	style  FontStyle
	data   []byte
	font   *font.Font
	key    [32]byte
}

// NewTypeface creates a typeface referencing a family by name only, with
// no embedded font data. Name-only typefaces rely on the playback
// environment to supply the actual font.
func NewTypeface(family string, style FontStyle) *Typeface {
	t := &Typeface{family: family, style: style}
	t.key = t.contentKey()
	return t
}

// parsedFonts memoizes font parsing by data digest. Typeface tables
// across many decoded pictures tend to repeat the same embedded fonts.
var parsedFonts = fontcache.New[*font.Font]()

// ParseTypeface creates a typeface carrying embedded font data. The data
// must be a parseable TTF/OTF font.
func ParseTypeface(family string, style FontStyle, data []byte) (*Typeface, error) {
	digest := blake3.Sum256(data)
	f, ok := parsedFonts.Get(digest)
	if !ok {
		face, err := font.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("pict: parse typeface %q: %w", family, err)
		}
		f = face.Font
		parsedFonts.Put(digest, f)
	}
	t := &Typeface{
		family: family,
		style:  style,
		data:   bytes.Clone(data),
		font:   f,
	}
	t.key = t.contentKey()
	return t, nil
}

var defaultTypeface = sync.OnceValue(func() *Typeface {
	return NewTypeface("sans-serif", NormalStyle())
})

// DefaultTypeface returns the shared fallback typeface, substituted for
// table entries that fail to decode.
func DefaultTypeface() *Typeface {
	return defaultTypeface()
}

// Family returns the family name.
func (t *Typeface) Family() string { return t.family }

// Style returns the font style.
func (t *Typeface) Style() FontStyle { return t.style }

// Font returns the parsed font, or nil for a name-only typeface.
// The returned *font.Font is read-only and safe for concurrent use.
func (t *Typeface) Font() *font.Font { return t.font }

// HasData reports whether the typeface carries embedded font bytes.
func (t *Typeface) HasData() bool { return len(t.data) > 0 }

// contentKey digests the identity-relevant content so the dedup set
// recognizes the same face reached through different pointers.
func (t *Typeface) contentKey() [32]byte {
	h := blake3.New()
	h.Write([]byte(t.family))
	h.Write([]byte{0})
	var style [4]byte
	bits := t.style.bits()
	style[0] = byte(bits)
	style[1] = byte(bits >> 8)
	style[2] = byte(bits >> 16)
	style[3] = byte(bits >> 24)
	h.Write(style[:])
	h.Write(t.data)
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

// Typeface entry encodings. The flag selects between the default codec
// and a caller-supplied override.
const (
	typefaceEncodingDefault = 0
	typefaceEncodingCustom  = 1
)

func (t *Typeface) serialize(w *wire.Writer, procs SerialProcs) {
	if procs.EncodeTypeface != nil {
		if payload, ok := procs.EncodeTypeface(t); ok {
			w.WriteBytes([]byte{typefaceEncodingCustom})
			w.WriteByteArray(payload)
			return
		}
	}
	w.WriteBytes([]byte{typefaceEncodingDefault})
	w.WriteString(t.family)
	w.WriteUint32(t.style.bits())
	w.WriteByteArray(t.data)
}

var (
	errTruncatedTypeface       = errors.New("pict: truncated typeface entry")
	errUnknownTypefaceEncoding = errors.New("pict: unknown typeface encoding")
)

func deserializeTypeface(r *wire.StreamReader, procs DeserialProcs) (*Typeface, error) {
	flag, ok := r.ReadBytes(1)
	if !ok {
		return nil, errTruncatedTypeface
	}
	switch flag[0] {
	case typefaceEncodingCustom:
		payload, ok := r.ReadByteArray()
		if !ok {
			return nil, errTruncatedTypeface
		}
		if procs.DecodeTypeface == nil {
			return nil, errors.New("pict: typeface uses custom encoding but no DecodeTypeface proc is set")
		}
		t, err := procs.DecodeTypeface(payload)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, errors.New("pict: DecodeTypeface returned no typeface")
		}
		return t, nil
	case typefaceEncodingDefault:
		family, ok := r.ReadString()
		if !ok {
			return nil, errTruncatedTypeface
		}
		bits, ok := r.ReadUint32()
		if !ok {
			return nil, errTruncatedTypeface
		}
		data, ok := r.ReadByteArray()
		if !ok {
			return nil, errTruncatedTypeface
		}
		style := styleFromBits(bits)
		if len(data) == 0 {
			return NewTypeface(family, style), nil
		}
		return ParseTypeface(family, style, data)
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownTypefaceEncoding, flag[0])
	}
}

// TypefaceSet is the write side of the typeface table: an ordered,
// content-deduplicating set shared by a picture and all its descendants
// during serialization.
type TypefaceSet struct {
	index map[[32]byte]uint32
	faces []*Typeface
}

// NewTypefaceSet creates an empty typeface set.
func NewTypefaceSet() *TypefaceSet {
	return &TypefaceSet{index: make(map[[32]byte]uint32)}
}

// add returns the 0-based table index for t, appending it on first use.
func (s *TypefaceSet) add(t *Typeface) uint32 {
	if i, ok := s.index[t.key]; ok {
		return i
	}
	i := uint32(len(s.faces))
	s.faces = append(s.faces, t)
	s.index[t.key] = i
	return i
}

func (s *TypefaceSet) count() int { return len(s.faces) }

// write frames the typeface chunk: the size field carries the entry
// count, then each typeface is serialized in insertion order.
func (s *TypefaceSet) write(w *wire.Writer, procs SerialProcs) {
	w.WriteTagSize(uint32(TagTypefaces), uint32(len(s.faces)))
	for _, t := range s.faces {
		t.serialize(w, procs)
	}
}

// typefacePlayback is the read side of the typeface table, indexed by
// position. Entries are never nil: a typeface that fails to decode is
// replaced by the default typeface, degrading fidelity without aborting
// the parse.
type typefacePlayback struct {
	faces []*Typeface
}

func readTypefacePlayback(r *wire.StreamReader, count uint32, procs DeserialProcs) (*typefacePlayback, bool) {
	p := &typefacePlayback{faces: make([]*Typeface, 0, min(int(count), 16))}
	for i := uint32(0); i < count; i++ {
		t, err := deserializeTypeface(r, procs)
		if err != nil {
			if r.Failed() || errors.Is(err, errUnknownTypefaceEncoding) {
				// The stream itself is broken; nothing after this entry
				// can be framed correctly.
				return nil, false
			}
			Logger().Warn("typeface entry failed to decode, substituting default",
				"index", i, "error", err)
			t = DefaultTypeface()
		}
		p.faces = append(p.faces, t)
	}
	return p, true
}

func (p *typefacePlayback) count() int {
	if p == nil {
		return 0
	}
	return len(p.faces)
}

func (p *typefacePlayback) at(i int) *Typeface { return p.faces[i] }
