package pict

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPathRoundTrip(t *testing.T) {
	p := NewPath()
	p.MoveTo(1, 2)
	p.LineTo(3.5, 4.5)
	p.QuadTo(5, 6, 7, 8)
	p.CubicTo(9, 10, 11, 12, 13, 14)
	p.Close()

	wb := newWriteBuffer(NewFactorySet(), NewTypefaceSet(), SerialProcs{})
	p.flatten(wb)

	got := NewPath()
	rb := newReadBuffer(wb.bytes(), FormatVersion)
	if !got.unflatten(rb) {
		t.Fatal("unflatten failed")
	}
	if diff := cmp.Diff(p.Elements(), got.Elements()); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}
	if !rb.EOF() {
		t.Errorf("%d bytes left after unflatten", rb.Remaining())
	}
}

func TestPathUnflattenRejectsUnknownVerb(t *testing.T) {
	wb := newWriteBuffer(NewFactorySet(), NewTypefaceSet(), SerialProcs{})
	wb.WritePackedUint(1)
	wb.WriteBytes([]byte{42})

	got := NewPath()
	rb := newReadBuffer(wb.bytes(), FormatVersion)
	if got.unflatten(rb) || rb.IsValid() {
		t.Fatal("unknown verb did not fail the parse")
	}
}

func TestPathUnflattenRejectsOversizedCount(t *testing.T) {
	// The declared count exceeds the remaining bytes; the preflight must
	// reject it before allocating.
	wb := newWriteBuffer(NewFactorySet(), NewTypefaceSet(), SerialProcs{})
	wb.WritePackedUint(1 << 40)

	got := NewPath()
	rb := newReadBuffer(wb.bytes(), FormatVersion)
	if got.unflatten(rb) || rb.IsValid() {
		t.Fatal("oversized element count did not fail the parse")
	}
}

func TestPathBounds(t *testing.T) {
	p := NewPath()
	p.MoveTo(10, 20)
	p.QuadTo(-5, 0, 30, 40)

	want := Rect{MinX: -5, MinY: 0, MaxX: 30, MaxY: 40}
	if got := p.Bounds(); got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}

	if !NewPath().Bounds().IsEmpty() {
		t.Errorf("empty path has non-empty bounds")
	}
}
