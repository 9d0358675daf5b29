package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// readChunk bounds single allocations while reading length-prefixed data
// from a stream. A hostile length field larger than the remaining input
// fails after at most one chunk instead of allocating the full claimed
// size up front.
const readChunk = 1 << 20

// StreamReader reads framed fields from a sequential io.Reader.
// Every method reports success explicitly; after the first failure all
// further reads fail.
type StreamReader struct {
	r      io.Reader
	failed bool
}

// NewStreamReader creates a StreamReader over r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

func (r *StreamReader) readFull(p []byte) bool {
	if r.failed {
		return false
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		r.failed = true
		return false
	}
	return true
}

// ReadUint32 reads a little-endian 32-bit value.
func (r *StreamReader) ReadUint32() (uint32, bool) {
	var b [4]byte
	if !r.readFull(b[:]) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[:]), true
}

// ReadTagSize reads a (tag, size) chunk header.
func (r *StreamReader) ReadTagSize() (tag, size uint32, ok bool) {
	if tag, ok = r.ReadUint32(); !ok {
		return 0, 0, false
	}
	if size, ok = r.ReadUint32(); !ok {
		return 0, 0, false
	}
	return tag, size, true
}

// ReadPackedUint reads an unsigned LEB128 varint.
func (r *StreamReader) ReadPackedUint() (uint64, bool) {
	var v uint64
	var shift uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		var b [1]byte
		if !r.readFull(b[:]) {
			return 0, false
		}
		v |= uint64(b[0]&0x7f) << shift
		if b[0] < 0x80 {
			return v, true
		}
		shift += 7
	}
	r.failed = true
	return 0, false
}

// ReadString reads a packed length followed by that many bytes.
func (r *StreamReader) ReadString() (string, bool) {
	n, ok := r.ReadPackedUint()
	if !ok {
		return "", false
	}
	b, ok := r.ReadBytes(n)
	if !ok {
		return "", false
	}
	return string(b), true
}

// ReadBytes reads exactly n raw bytes. Allocation grows chunk by chunk so
// a truncated stream with an oversized length field fails early.
func (r *StreamReader) ReadBytes(n uint64) ([]byte, bool) {
	if r.failed {
		return nil, false
	}
	if n == 0 {
		return []byte{}, true
	}
	var out []byte
	for n > 0 {
		step := n
		if step > readChunk {
			step = readChunk
		}
		buf := make([]byte, step)
		if !r.readFull(buf) {
			return nil, false
		}
		out = append(out, buf...)
		n -= step
	}
	return out, true
}

// ReadByteArray reads a 32-bit length followed by the bytes.
func (r *StreamReader) ReadByteArray() ([]byte, bool) {
	n, ok := r.ReadUint32()
	if !ok {
		return nil, false
	}
	return r.ReadBytes(uint64(n))
}

// Failed reports whether any read has failed.
func (r *StreamReader) Failed() bool {
	return r.failed
}

// ReadBuffer reads framed fields from an in-memory payload. Reads return
// values directly; any failure (exhaustion, an explicitly failed
// validation) clears a validity flag, and every subsequent read returns
// zero values. Decode code runs straight-line and checks IsValid at chunk
// boundaries, so a hostile payload can never be half-trusted.
type ReadBuffer struct {
	data    []byte
	off     int
	valid   bool
	version uint32
}

// NewReadBuffer creates a ReadBuffer over data.
func NewReadBuffer(data []byte) *ReadBuffer {
	return &ReadBuffer{data: data, valid: true}
}

// SetVersion records the format version governing version-gated decodes.
func (b *ReadBuffer) SetVersion(v uint32) {
	b.version = v
}

// Version returns the format version set with SetVersion.
func (b *ReadBuffer) Version() uint32 {
	return b.version
}

// IsValid reports whether all reads so far have succeeded.
func (b *ReadBuffer) IsValid() bool {
	return b.valid
}

// Validate fails the buffer if cond is false. It returns the validity
// state afterwards, so it can guard a decode step in one expression.
func (b *ReadBuffer) Validate(cond bool) bool {
	if !cond {
		b.valid = false
	}
	return b.valid
}

// Invalidate marks the buffer as failed.
func (b *ReadBuffer) Invalidate() {
	b.valid = false
}

// EOF reports whether the buffer is exhausted.
func (b *ReadBuffer) EOF() bool {
	return b.off >= len(b.data)
}

// Remaining returns the number of unread bytes.
func (b *ReadBuffer) Remaining() int {
	return len(b.data) - b.off
}

// CanRead reports whether n more bytes are available. It does not fail
// the buffer; use it to preflight allocations sized by untrusted counts.
func (b *ReadBuffer) CanRead(n uint64) bool {
	return b.valid && n <= uint64(b.Remaining())
}

// ReadBytes reads n raw bytes. The returned slice aliases the buffer.
func (b *ReadBuffer) ReadBytes(n int) []byte {
	if !b.valid || n < 0 || b.Remaining() < n {
		b.valid = false
		return nil
	}
	p := b.data[b.off : b.off+n]
	b.off += n
	return p
}

// ReadUint32 reads a little-endian 32-bit value.
func (b *ReadBuffer) ReadUint32() uint32 {
	p := b.ReadBytes(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

// ReadInt32 reads a little-endian signed 32-bit value.
func (b *ReadBuffer) ReadInt32() int32 {
	return int32(b.ReadUint32())
}

// ReadFloat32 reads an IEEE 754 32-bit value.
func (b *ReadBuffer) ReadFloat32() float32 {
	return math.Float32frombits(b.ReadUint32())
}

// ReadBool reads a single byte as a boolean.
func (b *ReadBuffer) ReadBool() bool {
	p := b.ReadBytes(1)
	return p != nil && p[0] != 0
}

// ReadPackedUint reads an unsigned LEB128 varint.
func (b *ReadBuffer) ReadPackedUint() uint64 {
	var v uint64
	var shift uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		p := b.ReadBytes(1)
		if p == nil {
			return 0
		}
		v |= uint64(p[0]&0x7f) << shift
		if p[0] < 0x80 {
			return v
		}
		shift += 7
	}
	b.valid = false
	return 0
}

// ReadString reads a packed length followed by the string bytes.
func (b *ReadBuffer) ReadString() string {
	n := b.ReadPackedUint()
	if !b.CanRead(n) {
		b.valid = false
		return ""
	}
	return string(b.ReadBytes(int(n)))
}

// ReadByteArray reads a 32-bit length followed by the bytes. The result
// is a copy, safe to retain after the buffer is discarded.
func (b *ReadBuffer) ReadByteArray() []byte {
	n := b.ReadUint32()
	if !b.CanRead(uint64(n)) {
		b.valid = false
		return nil
	}
	p := b.ReadBytes(int(n))
	out := make([]byte, len(p))
	copy(out, p)
	return out
}
