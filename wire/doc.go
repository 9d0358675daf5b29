// Package wire implements the framing primitives of the picture format:
// little-endian 32-bit fields, LEB128 packed integers, length-prefixed
// byte arrays, and (tag, size) chunk headers.
//
// Two read-side types share the same vocabulary:
//
//   - StreamReader consumes a sequential io.Reader. Each read reports
//     success explicitly; once a read fails the reader stays failed.
//   - ReadBuffer consumes an in-memory payload. Reads return values
//     directly and record failure in a validity flag, so decode code can
//     run straight-line and check validity at chunk boundaries.
//
// The write side mirrors this with Writer (any io.Writer, byte-counted)
// and Buffer (in-memory accumulation for size-prefixed payloads).
//
// No semantic validation happens here; size and ordering checks belong to
// the tag dispatch logic that owns each chunk.
package wire
