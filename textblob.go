package pict

import "golang.org/x/text/language"

// TextRun is a contiguous sequence of positioned glyphs drawn with one
// typeface at one size.
type TextRun struct {
	// Typeface is the face the glyph IDs belong to. May be nil, in
	// which case playback uses the default typeface.
	Typeface *Typeface

	// Size is the text size in points.
	Size float64

	// Glyphs are the glyph IDs, already shaped.
	Glyphs []uint16

	// Positions holds one baseline position per glyph.
	Positions []Point
}

// TextBlob is an immutable collection of shaped text runs with a
// conservative bounding box. The shaping language is carried along so a
// re-shaping backend can reproduce the original segmentation.
type TextBlob struct {
	// Runs are the glyph runs in drawing order.
	Runs []TextRun

	// Bounds is a conservative bounding box of all runs.
	Bounds Rect

	// Language is the BCP-47 language the text was shaped for.
	// language.Und when unknown.
	Language language.Tag
}

func (t *TextBlob) flatten(b *WriteBuffer) {
	b.WriteFloat32(float32(t.Bounds.MinX))
	b.WriteFloat32(float32(t.Bounds.MinY))
	b.WriteFloat32(float32(t.Bounds.MaxX))
	b.WriteFloat32(float32(t.Bounds.MaxY))
	b.WriteString(t.Language.String())
	b.WritePackedUint(uint64(len(t.Runs)))
	for i := range t.Runs {
		run := &t.Runs[i]
		b.WriteTypeface(run.Typeface)
		b.WriteFloat32(float32(run.Size))
		// Only glyph/position pairs are representable; a caller-built
		// run with mismatched slices writes the pairs that exist.
		n := min(len(run.Glyphs), len(run.Positions))
		b.WritePackedUint(uint64(n))
		for _, g := range run.Glyphs[:n] {
			b.WriteUint32(uint32(g))
		}
		for _, pos := range run.Positions[:n] {
			writePoint(b, pos)
		}
	}
}

func textBlobFromBuffer(b *ReadBuffer) *TextBlob {
	blob := &TextBlob{}
	blob.Bounds = Rect{
		MinX: float64(b.ReadFloat32()),
		MinY: float64(b.ReadFloat32()),
		MaxX: float64(b.ReadFloat32()),
		MaxY: float64(b.ReadFloat32()),
	}
	lang := b.ReadString()
	if !b.IsValid() {
		return nil
	}
	if lang != "" && lang != "und" {
		tag, err := language.Parse(lang)
		if err != nil {
			b.Invalidate()
			return nil
		}
		blob.Language = tag
	} else {
		blob.Language = language.Und
	}

	runCount := b.ReadPackedUint()
	if !b.Validate(b.CanRead(runCount)) {
		return nil
	}
	blob.Runs = make([]TextRun, 0, runCount)
	for i := uint64(0); i < runCount; i++ {
		var run TextRun
		run.Typeface = b.ReadTypeface()
		run.Size = float64(b.ReadFloat32())
		glyphCount := b.ReadPackedUint()
		// Each glyph carries a 4-byte ID and an 8-byte position. Divide
		// rather than multiply so a huge count cannot wrap the product.
		if !b.Validate(glyphCount <= uint64(b.Remaining())/12) {
			return nil
		}
		run.Glyphs = make([]uint16, glyphCount)
		for g := range run.Glyphs {
			v := b.ReadUint32()
			if !b.Validate(v <= 0xffff) {
				return nil
			}
			run.Glyphs[g] = uint16(v)
		}
		run.Positions = make([]Point, glyphCount)
		for g := range run.Positions {
			run.Positions[g] = readPoint(b)
		}
		if !b.IsValid() {
			return nil
		}
		blob.Runs = append(blob.Runs, run)
	}
	if !b.IsValid() {
		return nil
	}
	return blob
}
