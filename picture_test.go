package pict

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/gogpu/pict/wire"
)

// ---------------------------------------------------------------------------
// Shared fixtures
// ---------------------------------------------------------------------------

const (
	testShaderName   = "pict_test.SolidShader"
	testDrawableName = "pict_test.BoxDrawable"
)

type testShader struct {
	Seed uint32
}

func (s *testShader) TypeName() string       { return testShaderName }
func (s *testShader) Flatten(b *WriteBuffer) { b.WriteUint32(s.Seed) }

type testDrawable struct {
	Box Rect
}

func (d *testDrawable) TypeName() string { return testDrawableName }

func (d *testDrawable) Flatten(b *WriteBuffer) {
	b.WriteFloat32(float32(d.Box.MinX))
	b.WriteFloat32(float32(d.Box.MinY))
	b.WriteFloat32(float32(d.Box.MaxX))
	b.WriteFloat32(float32(d.Box.MaxY))
}

func (d *testDrawable) Bounds() Rect  { return d.Box }
func (d *testDrawable) Draw(c Canvas) {}

func init() {
	RegisterFlattenable(testShaderName, func(b *ReadBuffer) Flattenable {
		return &testShader{Seed: b.ReadUint32()}
	})
	RegisterFlattenable(testDrawableName, func(b *ReadBuffer) Flattenable {
		return &testDrawable{Box: Rect{
			MinX: float64(b.ReadFloat32()),
			MinY: float64(b.ReadFloat32()),
			MaxX: float64(b.ReadFloat32()),
			MaxY: float64(b.ReadFloat32()),
		}}
	})
}

// unregisteredShader flattens fine but has no registered factory, so any
// picture referencing it must fail to decode.
type unregisteredShader struct{}

func (unregisteredShader) TypeName() string       { return "pict_test.Unregistered" }
func (unregisteredShader) Flatten(b *WriteBuffer) {}

func playbackFromSet(fs *FactorySet) *factoryPlayback {
	p := &factoryPlayback{}
	for _, name := range fs.names {
		p.factories = append(p.factories, factoryForName(name))
	}
	return p
}

// logCanvas records a deterministic trace of the draw calls it receives,
// so two pictures can be compared by playing both back.
type logCanvas struct {
	log []string
}

func (c *logCanvas) Save()    { c.log = append(c.log, "save") }
func (c *logCanvas) Restore() { c.log = append(c.log, "restore") }

func describePaint(p *Paint) string {
	if p == nil {
		return "none"
	}
	s := fmt.Sprintf("color=%v style=%d blend=%d aa=%v", p.Color, p.Style, p.Blend, p.Antialias)
	if sh, ok := p.Shader.(*testShader); ok {
		s += fmt.Sprintf(" shader=%d", sh.Seed)
	}
	return s
}

func (c *logCanvas) DrawPath(p *Path, paint *Paint) {
	c.log = append(c.log, fmt.Sprintf("path elems=%d bounds=%v paint={%s}",
		len(p.Elements()), p.Bounds(), describePaint(paint)))
}

func (c *logCanvas) DrawImage(img *Image, at Point, paint *Paint) {
	c.log = append(c.log, fmt.Sprintf("image bounds=%v at=%v paint={%s}",
		img.Bounds(), at, describePaint(paint)))
}

func (c *logCanvas) DrawTextBlob(blob *TextBlob, at Point, paint *Paint) {
	families := make([]string, len(blob.Runs))
	glyphs := 0
	for i, run := range blob.Runs {
		if run.Typeface != nil {
			families[i] = run.Typeface.Family()
		} else {
			families[i] = "<default>"
		}
		glyphs += len(run.Glyphs)
	}
	c.log = append(c.log, fmt.Sprintf("text lang=%v faces=%v glyphs=%d at=%v paint={%s}",
		blob.Language, families, glyphs, at, describePaint(paint)))
}

func (c *logCanvas) DrawVertices(v *Vertices, paint *Paint) {
	c.log = append(c.log, fmt.Sprintf("vertices mode=%d n=%d colors=%d indices=%d paint={%s}",
		v.Mode, len(v.Positions), len(v.Colors), len(v.Indices), describePaint(paint)))
}

func (c *logCanvas) DrawPicture(pic *Picture) {
	c.log = append(c.log, fmt.Sprintf("picture cull=%v {", pic.CullRect()))
	if err := pic.Playback(c); err != nil {
		c.log = append(c.log, "playback error: "+err.Error())
	}
	c.log = append(c.log, "}")
}

func (c *logCanvas) DrawDrawable(d Drawable) {
	c.log = append(c.log, fmt.Sprintf("drawable bounds=%v", d.Bounds()))
}

func playbackLog(t *testing.T, pic *Picture) []string {
	t.Helper()
	c := &logCanvas{}
	if err := pic.Playback(c); err != nil {
		t.Fatalf("Playback: %v", err)
	}
	return c.log
}

func buildChildPicture() *Picture {
	rec := NewRecorder(NewRect(0, 0, 64, 64))
	paint := NewPaint()
	paint.Color = RGB(0, 0.5, 1)
	path := NewPath()
	path.MoveTo(4, 4)
	path.LineTo(60, 60)
	rec.DrawPath(path, &paint)
	// The second run repeats the parent's face, so centralized
	// serialization must dedup it across the tree.
	rec.DrawTextBlob(&TextBlob{
		Language: language.Und,
		Runs: []TextRun{
			{
				Typeface:  NewTypeface("Mono", NormalStyle()),
				Size:      12,
				Glyphs:    []uint16{9},
				Positions: []Point{{X: 0, Y: 0}},
			},
			{
				Typeface:  NewTypeface("Inter", NormalStyle()),
				Size:      12,
				Glyphs:    []uint16{17},
				Positions: []Point{{X: 8, Y: 0}},
			},
		},
	}, Point{X: 4, Y: 16}, nil)
	return rec.Finish()
}

func buildTestPicture() *Picture {
	rec := NewRecorder(NewRect(0, 0, 128, 128))
	rec.Save()

	fill := NewPaint()
	fill.Color = RGB(1, 0, 0)
	fill.Shader = &testShader{Seed: 41}

	path := NewPath()
	path.MoveTo(8, 8)
	path.QuadTo(16, 0, 24, 8)
	path.Close()
	rec.DrawPath(path, &fill)

	rec.DrawImage(testImage(), Point{X: 10, Y: 20}, nil)

	rec.DrawTextBlob(&TextBlob{
		Bounds:   Rect{MinX: 0, MinY: -12, MaxX: 48, MaxY: 4},
		Language: language.MustParse("en"),
		Runs: []TextRun{{
			Typeface:  NewTypeface("Inter", NormalStyle()),
			Size:      14,
			Glyphs:    []uint16{1, 2},
			Positions: []Point{{X: 0, Y: 0}, {X: 8, Y: 0}},
		}},
	}, Point{X: 8, Y: 100}, &fill)

	rec.DrawVertices(&Vertices{
		Mode:      VertexTriangles,
		Positions: []Point{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 0, Y: 8}},
	}, &fill)

	rec.DrawPicture(buildChildPicture())
	rec.DrawDrawable(&testDrawable{Box: NewRect(1, 2, 3, 4)})

	rec.Restore()
	return rec.Finish()
}

func serializePicture(t *testing.T, pic *Picture) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := pic.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------------
// Round trips
// ---------------------------------------------------------------------------

func TestPictureRoundTrip(t *testing.T) {
	pic := buildTestPicture()
	data := serializePicture(t, pic)

	got, err := MakeFromBytes(data)
	if err != nil {
		t.Fatalf("MakeFromBytes: %v", err)
	}
	if got.CullRect() != pic.CullRect() {
		t.Errorf("cull rect = %+v, want %+v", got.CullRect(), pic.CullRect())
	}
	if diff := cmp.Diff(playbackLog(t, pic), playbackLog(t, got)); diff != "" {
		t.Errorf("playback mismatch (-recorded +decoded):\n%s", diff)
	}
}

func TestPictureSerializeDeterministic(t *testing.T) {
	pic := buildTestPicture()
	first := serializePicture(t, pic)
	second := serializePicture(t, pic)
	if !bytes.Equal(first, second) {
		t.Errorf("two serializations of the same picture differ")
	}
}

func TestPictureSerializeConcurrently(t *testing.T) {
	rec := NewRecorder(NewRect(0, 0, 16, 16))
	rec.DrawImage(testImage(), Point{X: 2, Y: 2}, nil)
	pic := rec.Finish()

	const workers = 8
	outs := make([][]byte, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf bytes.Buffer
			errs[i] = pic.Serialize(&buf)
			outs[i] = buf.Bytes()
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("Serialize %d: %v", i, errs[i])
		}
		if !bytes.Equal(outs[i], outs[0]) {
			t.Errorf("serialization %d differs from serialization 0", i)
		}
	}
}

func TestEmptyPictureRoundTrip(t *testing.T) {
	pic := NewRecorder(NewRect(0, 0, 32, 32)).Finish()
	if pic.ApproximateOpCount() != 0 {
		t.Errorf("op count = %d, want 0", pic.ApproximateOpCount())
	}

	got, err := MakeFromBytes(serializePicture(t, pic))
	if err != nil {
		t.Fatalf("MakeFromBytes: %v", err)
	}
	if log := playbackLog(t, got); len(log) != 0 {
		t.Errorf("empty picture played back %d calls: %v", len(log), log)
	}
}

func TestPictureUniqueIDs(t *testing.T) {
	a := NewRecorder(NewRect(0, 0, 8, 8)).Finish()
	b := NewRecorder(NewRect(0, 0, 8, 8)).Finish()
	if a.UniqueID() == 0 || b.UniqueID() == 0 {
		t.Errorf("unique ID is zero")
	}
	if a.UniqueID() == b.UniqueID() {
		t.Errorf("two pictures share ID %d", a.UniqueID())
	}
}

func TestRerecordedPicturePlaysBackIdentically(t *testing.T) {
	pic := buildTestPicture()

	rec := NewRecorder(pic.CullRect())
	if err := pic.Playback(rec); err != nil {
		t.Fatalf("Playback into recorder: %v", err)
	}
	again := rec.Finish()

	if diff := cmp.Diff(playbackLog(t, pic), playbackLog(t, again)); diff != "" {
		t.Errorf("re-recorded playback mismatch (-orig +rerecorded):\n%s", diff)
	}
}

func TestBufferDialectRoundTrip(t *testing.T) {
	pic := buildTestPicture()

	fs := NewFactorySet()
	ts := NewTypefaceSet()
	wb := newWriteBuffer(fs, ts, SerialProcs{})
	pic.Flatten(wb)

	rb := newReadBuffer(wb.bytes(), FormatVersion)
	rb.bindFactories(playbackFromSet(fs))
	rb.bindTypefaces(&typefacePlayback{faces: ts.faces})

	got, err := MakeFromBuffer(rb)
	if err != nil {
		t.Fatalf("MakeFromBuffer: %v", err)
	}
	if !rb.EOF() {
		t.Errorf("%d bytes left after decode", rb.Remaining())
	}
	if got.CullRect() != pic.CullRect() {
		t.Errorf("cull rect = %+v, want %+v", got.CullRect(), pic.CullRect())
	}
	if diff := cmp.Diff(playbackLog(t, pic), playbackLog(t, got)); diff != "" {
		t.Errorf("playback mismatch (-recorded +decoded):\n%s", diff)
	}
}

func TestBufferDialectRejectsTruncation(t *testing.T) {
	pic := buildChildPicture()

	fs := NewFactorySet()
	ts := NewTypefaceSet()
	wb := newWriteBuffer(fs, ts, SerialProcs{})
	pic.Flatten(wb)
	data := wb.bytes()

	for n := 0; n < len(data); n += 3 {
		rb := newReadBuffer(data[:n], FormatVersion)
		rb.bindFactories(playbackFromSet(fs))
		rb.bindTypefaces(&typefacePlayback{faces: ts.faces})
		if _, err := MakeFromBuffer(rb); err == nil {
			t.Fatalf("truncation to %d of %d bytes decoded successfully", n, len(data))
		}
	}
}

// ---------------------------------------------------------------------------
// Typeface centralization
// ---------------------------------------------------------------------------

func TestTypefacesCentralizedAtTopLevel(t *testing.T) {
	pic := buildTestPicture()
	data := serializePicture(t, pic)

	var dump strings.Builder
	if err := DumpStream(bytes.NewReader(data), &dump); err != nil {
		t.Fatalf("DumpStream: %v", err)
	}
	out := dump.String()
	if n := strings.Count(out, "tpfc"); n != 1 {
		t.Errorf("found %d typeface tables, want 1 at the top level:\n%s", n, out)
	}
	// Inter from the parent, Mono from the nested child; the child's
	// second Inter dedups against the parent's.
	if !strings.Contains(out, "tpfc  2 entries") {
		t.Errorf("top-level typeface table not deduplicated across the tree:\n%s", out)
	}

	got, err := MakeFromBytes(data)
	if err != nil {
		t.Fatalf("MakeFromBytes: %v", err)
	}
	log := strings.Join(playbackLog(t, got), "\n")
	if !strings.Contains(log, "Mono") {
		t.Errorf("nested picture lost its typeface:\n%s", log)
	}
}

func TestPreCentralizationWritesPerLevelTables(t *testing.T) {
	pic := buildTestPicture()
	pic.data.info.Version = 1
	for _, sub := range pic.data.pictures {
		sub.data.info.Version = 1
	}
	data := serializePicture(t, pic)

	var dump strings.Builder
	if err := DumpStream(bytes.NewReader(data), &dump); err != nil {
		t.Fatalf("DumpStream: %v", err)
	}
	if n := strings.Count(dump.String(), "tpfc"); n != 2 {
		t.Errorf("found %d typeface tables, want one per level (2):\n%s", n, dump.String())
	}

	got, err := MakeFromBytes(data)
	if err != nil {
		t.Fatalf("MakeFromBytes: %v", err)
	}
	if diff := cmp.Diff(playbackLog(t, pic), playbackLog(t, got)); diff != "" {
		t.Errorf("playback mismatch (-recorded +decoded):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// Hostile input
// ---------------------------------------------------------------------------

func pictHeader(version uint32) *wire.Buffer {
	b := wire.NewBuffer()
	PictInfo{Version: version, CullRect: NewRect(0, 0, 16, 16)}.write(&b.Writer)
	return b
}

func mustFail(t *testing.T, data []byte) {
	t.Helper()
	if _, err := MakeFromBytes(data); !errors.Is(err, ErrInvalidPicture) {
		t.Fatalf("MakeFromBytes = %v, want ErrInvalidPicture", err)
	}
}

func TestStreamRequiresOpsChunk(t *testing.T) {
	b := pictHeader(FormatVersion)
	NewFactorySet().write(&b.Writer)
	b.WriteTagSize(uint32(TagBufferSize), 0)
	b.WriteUint32(uint32(TagEOF))
	mustFail(t, b.Bytes())
}

func TestStreamRejectsTableAfterBuffer(t *testing.T) {
	b := pictHeader(FormatVersion)
	b.WriteTagSize(uint32(TagOps), 0)
	NewFactorySet().write(&b.Writer)
	b.WriteTagSize(uint32(TagBufferSize), 0)
	b.WriteTagSize(uint32(TagTypefaces), 0)
	b.WriteUint32(uint32(TagEOF))
	mustFail(t, b.Bytes())
}

func TestStreamRejectsBufferWithoutFactories(t *testing.T) {
	b := pictHeader(FormatVersion)
	b.WriteTagSize(uint32(TagOps), 0)
	b.WriteTagSize(uint32(TagBufferSize), 0)
	b.WriteUint32(uint32(TagEOF))
	mustFail(t, b.Bytes())
}

func TestStreamRejectsDuplicateOps(t *testing.T) {
	b := pictHeader(FormatVersion)
	b.WriteTagSize(uint32(TagOps), 0)
	b.WriteTagSize(uint32(TagOps), 0)
	b.WriteUint32(uint32(TagEOF))
	mustFail(t, b.Bytes())
}

func TestStreamRejectsUnknownTag(t *testing.T) {
	b := pictHeader(FormatVersion)
	b.WriteTagSize(uint32(TagOps), 0)
	b.WriteTagSize(uint32(TagPaints), 0) // buffer-dialect tag in stream context
	b.WriteUint32(uint32(TagEOF))
	mustFail(t, b.Bytes())
}

func TestStreamRejectsBadMagic(t *testing.T) {
	data := serializePicture(t, buildTestPicture())
	data[0] ^= 0xff
	mustFail(t, data)
}

func TestStreamRejectsBadVersion(t *testing.T) {
	for _, version := range []uint32{0, FormatVersion + 1, 0xffffffff} {
		b := pictHeader(version)
		b.WriteTagSize(uint32(TagOps), 0)
		NewFactorySet().write(&b.Writer)
		b.WriteTagSize(uint32(TagBufferSize), 0)
		b.WriteUint32(uint32(TagEOF))
		mustFail(t, b.Bytes())
	}
}

func TestStreamRejectsEveryTruncation(t *testing.T) {
	data := serializePicture(t, buildTestPicture())
	for n := 0; n < len(data); n++ {
		if _, err := MakeFromBytes(data[:n]); err == nil {
			t.Fatalf("truncation to %d of %d bytes decoded successfully", n, len(data))
		}
	}
}

func TestStreamRejectsOversizedLengthField(t *testing.T) {
	b := pictHeader(FormatVersion)
	b.WriteTagSize(uint32(TagOps), 0xfffffff0)
	mustFail(t, b.Bytes())
}

func TestUnregisteredShaderFailsDecode(t *testing.T) {
	rec := NewRecorder(NewRect(0, 0, 16, 16))
	paint := NewPaint()
	paint.Shader = unregisteredShader{}
	path := NewPath()
	path.MoveTo(0, 0)
	path.LineTo(8, 8)
	rec.DrawPath(path, &paint)
	mustFail(t, serializePicture(t, rec.Finish()))
}
