package pict

import "github.com/gogpu/pict/wire"

// WriteBuffer assembles a flattened payload in memory while recording
// which polymorphic factories and typefaces the payload references.
// Factory names and typefaces are not written inline; the buffer stores
// small-integer references and the referenced tables are framed
// separately, before the payload, by the picture writer.
type WriteBuffer struct {
	buf       *wire.Buffer
	factories *FactorySet
	typefaces *TypefaceSet
	procs     SerialProcs
}

func newWriteBuffer(factories *FactorySet, typefaces *TypefaceSet, procs SerialProcs) *WriteBuffer {
	return &WriteBuffer{
		buf:       wire.NewBuffer(),
		factories: factories,
		typefaces: typefaces,
		procs:     procs,
	}
}

// WriteUint32 writes a little-endian 32-bit value.
func (b *WriteBuffer) WriteUint32(v uint32) { b.buf.WriteUint32(v) }

// WriteInt32 writes a little-endian signed 32-bit value.
func (b *WriteBuffer) WriteInt32(v int32) { b.buf.WriteInt32(v) }

// WriteFloat32 writes an IEEE 754 32-bit value.
func (b *WriteBuffer) WriteFloat32(v float32) { b.buf.WriteFloat32(v) }

// WriteBool writes a single boolean byte.
func (b *WriteBuffer) WriteBool(v bool) { b.buf.WriteBool(v) }

// WritePackedUint writes an unsigned LEB128 varint.
func (b *WriteBuffer) WritePackedUint(v uint64) { b.buf.WritePackedUint(v) }

// WriteString writes a packed length-prefixed string.
func (b *WriteBuffer) WriteString(s string) { b.buf.WriteString(s) }

// WriteByteArray writes a 32-bit length-prefixed byte array.
func (b *WriteBuffer) WriteByteArray(p []byte) { b.buf.WriteByteArray(p) }

// WriteBytes writes raw bytes.
func (b *WriteBuffer) WriteBytes(p []byte) { b.buf.WriteBytes(p) }

func (b *WriteBuffer) writeTagSize(tag Tag, size uint32) {
	b.buf.WriteTagSize(uint32(tag), size)
}

// WriteTypeface writes a reference to t, entering it into the shared
// typeface dedup set on first use. A nil typeface writes the zero
// reference.
func (b *WriteBuffer) WriteTypeface(t *Typeface) {
	if t == nil {
		b.buf.WriteUint32(0)
		return
	}
	b.buf.WriteUint32(b.typefaces.add(t) + 1)
}

// WriteFlattenable writes f as a factory reference followed by a
// length-prefixed payload. The payload is flattened into a sub-buffer
// sharing this buffer's factory and typeface recorders, so nested
// flattenables and typeface references land in the same tables.
func (b *WriteBuffer) WriteFlattenable(f Flattenable) {
	if f == nil {
		b.buf.WriteUint32(0)
		return
	}
	b.buf.WriteUint32(b.factories.idFor(f.TypeName()))
	sub := newWriteBuffer(b.factories, b.typefaces, b.procs)
	f.Flatten(sub)
	b.buf.WriteByteArray(sub.bytes())
}

func (b *WriteBuffer) bytes() []byte { return b.buf.Bytes() }

func (b *WriteBuffer) length() int { return b.buf.Len() }

// ReadBuffer decodes a flattened payload. It wraps the raw wire buffer
// with the playback tables built from the factory and typeface chunks
// that preceded the payload; references inside the payload resolve
// against those tables with hard range checks.
type ReadBuffer struct {
	*wire.ReadBuffer
	factories *factoryPlayback
	typefaces *typefacePlayback
	procs     DeserialProcs
}

func newReadBuffer(data []byte, version uint32) *ReadBuffer {
	rb := &ReadBuffer{ReadBuffer: wire.NewReadBuffer(data)}
	rb.SetVersion(version)
	return rb
}

func (b *ReadBuffer) bindFactories(p *factoryPlayback)  { b.factories = p }
func (b *ReadBuffer) bindTypefaces(p *typefacePlayback) { b.typefaces = p }
func (b *ReadBuffer) bindProcs(procs DeserialProcs)     { b.procs = procs }

// ReadTypeface resolves a typeface reference against the playback table.
// The zero reference yields nil. An out-of-range index or a reference
// without a bound table fails the buffer.
func (b *ReadBuffer) ReadTypeface() *Typeface {
	n := b.ReadUint32()
	if !b.IsValid() || n == 0 {
		return nil
	}
	if b.typefaces == nil || !b.Validate(uint64(n) <= uint64(b.typefaces.count())) {
		b.Invalidate()
		return nil
	}
	return b.typefaces.at(int(n - 1))
}

// ReadFlattenable decodes a polymorphic object: a factory reference
// followed by a length-prefixed payload. The zero reference yields nil.
// A reference to a factory slot that failed to resolve by name fails the
// buffer here, at first use, not when the table was built.
func (b *ReadBuffer) ReadFlattenable() Flattenable {
	id := b.ReadUint32()
	if !b.IsValid() || id == 0 {
		return nil
	}
	if b.factories == nil || !b.Validate(uint64(id) <= uint64(b.factories.count())) {
		b.Invalidate()
		return nil
	}
	factory := b.factories.at(int(id - 1))
	payload := b.ReadByteArray()
	if !b.IsValid() {
		return nil
	}
	if factory == nil {
		// The name did not resolve when the factory table was read.
		b.Invalidate()
		return nil
	}
	sub := newReadBuffer(payload, b.Version())
	sub.factories = b.factories
	sub.typefaces = b.typefaces
	sub.procs = b.procs
	obj := factory(sub)
	if !b.Validate(sub.IsValid() && obj != nil) {
		return nil
	}
	return obj
}
