package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Writer writes framed fields to an underlying io.Writer.
// It tracks the number of bytes written and latches the first error;
// after a failure all further writes are no-ops. Callers check Err()
// once at the end instead of after every field.
type Writer struct {
	w   io.Writer
	n   uint64
	err error
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NewCountingSink returns a Writer that discards its output but still
// counts bytes. Used for dry-run serialization passes whose only purpose
// is the side effects of writing (populating shared tables).
func NewCountingSink() *Writer {
	return &Writer{w: io.Discard}
}

// BytesWritten returns the total number of bytes written so far.
func (w *Writer) BytesWritten() uint64 {
	return w.n
}

// Err returns the first error encountered, or nil.
func (w *Writer) Err() error {
	return w.err
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += uint64(n)
	w.err = err
}

// WriteUint32 writes a little-endian 32-bit value.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.WriteBytes(b[:])
}

// WriteInt32 writes a little-endian signed 32-bit value.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteFloat32 writes the IEEE 754 bits of v.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteBool writes a single byte, 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	b := [1]byte{}
	if v {
		b[0] = 1
	}
	w.WriteBytes(b[:])
}

// WritePackedUint writes v as an unsigned LEB128 varint.
func (w *Writer) WritePackedUint(v uint64) {
	var b [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(b[:], v)
	w.WriteBytes(b[:n])
}

// WriteString writes a packed length followed by the string bytes.
func (w *Writer) WriteString(s string) {
	w.WritePackedUint(uint64(len(s)))
	w.WriteBytes([]byte(s))
}

// WriteByteArray writes a 32-bit length followed by the bytes.
func (w *Writer) WriteByteArray(p []byte) {
	w.WriteUint32(uint32(len(p)))
	w.WriteBytes(p)
}

// WriteTagSize writes a (tag, size) chunk header.
func (w *Writer) WriteTagSize(tag, size uint32) {
	w.WriteUint32(tag)
	w.WriteUint32(size)
}

// PackedUintSize returns the encoded size of v in bytes, for callers that
// must precompute a chunk's byte length before writing it.
func PackedUintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Buffer is a Writer that accumulates into memory. It is used to assemble
// size-prefixed payloads whose byte length must be known before they are
// framed onto a stream.
type Buffer struct {
	Writer
	buf bytes.Buffer
}

// NewBuffer creates an empty in-memory Buffer.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.Writer.w = &b.buf
	return b
}

// Bytes returns the accumulated bytes. The slice is valid until the next
// write.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

// Len returns the number of accumulated bytes.
func (b *Buffer) Len() int {
	return b.buf.Len()
}

// WriteTo copies the accumulated bytes to dst.
func (b *Buffer) WriteTo(dst *Writer) {
	dst.WriteBytes(b.buf.Bytes())
}
