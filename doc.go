// Package pict records 2D drawing commands into immutable pictures and
// serializes them to a compact, versioned binary format.
//
// A Recorder captures draw calls (paths, images, text blobs, vertex
// meshes, nested pictures, custom drawables) into a Picture. Pictures
// play back onto any Canvas implementation, serialize to an io.Writer,
// and decode from untrusted input with full structural validation:
//
//	rec := pict.NewRecorder(pict.NewRect(0, 0, 256, 256))
//	rec.DrawPath(path, paint)
//	pic := rec.Finish()
//
//	var buf bytes.Buffer
//	if err := pic.Serialize(&buf); err != nil { ... }
//	pic2, err := pict.MakeFromStream(&buf)
//
// The encoding stores the raw op words next to auxiliary tables of the
// heavyweight resources the ops reference. Polymorphic objects round-trip
// through a name-based factory registry (RegisterFlattenable), and
// typefaces are deduplicated across an entire picture tree into a single
// table at the top level.
package pict
