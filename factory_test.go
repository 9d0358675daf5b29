package pict

import (
	"bytes"
	"testing"

	"github.com/gogpu/pict/wire"
)

func TestRegisterFlattenablePanics(t *testing.T) {
	cases := []struct {
		name string
		reg  func()
	}{
		{"nil factory", func() {
			RegisterFlattenable("pict_test.NilFactory", nil)
		}},
		{"empty name", func() {
			RegisterFlattenable("", func(*ReadBuffer) Flattenable { return nil })
		}},
		{"duplicate", func() {
			f := func(*ReadBuffer) Flattenable { return nil }
			RegisterFlattenable("pict_test.Duplicate", f)
			RegisterFlattenable("pict_test.Duplicate", f)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("RegisterFlattenable did not panic")
				}
			}()
			tc.reg()
		})
	}
}

func TestFactorySetIDs(t *testing.T) {
	s := NewFactorySet()
	if id := s.idFor("alpha"); id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}
	if id := s.idFor("beta"); id != 2 {
		t.Errorf("second id = %d, want 2", id)
	}
	if id := s.idFor("alpha"); id != 1 {
		t.Errorf("repeated name got id %d, want 1", id)
	}
	if s.count() != 2 {
		t.Errorf("count = %d, want 2", s.count())
	}
}

func TestFactoryTableRoundTrip(t *testing.T) {
	s := NewFactorySet()
	s.idFor(testShaderName)
	s.idFor("pict_test.NeverRegistered")

	buf := wire.NewBuffer()
	s.write(&buf.Writer)

	r := wire.NewStreamReader(bytes.NewReader(buf.Bytes()))
	tag, size, ok := r.ReadTagSize()
	if !ok || Tag(tag) != TagFactories {
		t.Fatalf("chunk header = %v %v, want %v", Tag(tag), ok, TagFactories)
	}
	if size != s.chunkSize() {
		t.Errorf("chunk size = %d, want %d", size, s.chunkSize())
	}

	p, ok := readFactoryPlayback(r)
	if !ok {
		t.Fatal("readFactoryPlayback failed")
	}
	if p.count() != 2 {
		t.Fatalf("playback count = %d, want 2", p.count())
	}
	if p.at(0) == nil {
		t.Errorf("registered name did not resolve")
	}
	if p.at(1) != nil {
		t.Errorf("unregistered name resolved to a factory")
	}
}

func TestUnresolvedFactoryFailsAtFirstUse(t *testing.T) {
	fp := &factoryPlayback{factories: []FactoryFn{nil}}

	// The nil reference never touches the table.
	b := wire.NewBuffer()
	b.WriteUint32(0)
	rb := newReadBuffer(b.Bytes(), FormatVersion)
	rb.bindFactories(fp)
	if obj := rb.ReadFlattenable(); obj != nil {
		t.Errorf("nil reference decoded to %v", obj)
	}
	if !rb.IsValid() {
		t.Errorf("nil reference invalidated the buffer")
	}

	// Dereferencing the unresolved slot fails.
	b = wire.NewBuffer()
	b.WriteUint32(1)
	b.WriteByteArray(nil)
	rb = newReadBuffer(b.Bytes(), FormatVersion)
	rb.bindFactories(fp)
	if obj := rb.ReadFlattenable(); obj != nil {
		t.Errorf("unresolved slot decoded to %v", obj)
	}
	if rb.IsValid() {
		t.Errorf("dereferencing an unresolved slot left the buffer valid")
	}
}

func TestFlattenableOutOfRangeID(t *testing.T) {
	fp := &factoryPlayback{factories: []FactoryFn{factoryForName(testShaderName)}}

	b := wire.NewBuffer()
	b.WriteUint32(2)
	b.WriteByteArray(nil)
	rb := newReadBuffer(b.Bytes(), FormatVersion)
	rb.bindFactories(fp)
	if obj := rb.ReadFlattenable(); obj != nil || rb.IsValid() {
		t.Errorf("out-of-range id: obj=%v valid=%v, want nil/invalid", obj, rb.IsValid())
	}
}
