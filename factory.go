package pict

import (
	"sync"

	"github.com/gogpu/pict/wire"
)

// Flattenable is an object whose concrete type is chosen at decode time
// by looking up its registered type name. Shaders, path effects, and
// custom drawables are flattenables.
type Flattenable interface {
	// TypeName returns the stable registered name of the concrete type.
	TypeName() string

	// Flatten writes the object's state. The same state must be
	// readable by the factory registered under TypeName.
	Flatten(b *WriteBuffer)
}

// FactoryFn reconstructs a flattenable from its flattened payload.
// Returning nil, or leaving the buffer invalid, fails the decode of the
// referencing object.
type FactoryFn func(b *ReadBuffer) Flattenable

// Global name→factory registry, populated at initialization and never
// mutated concurrently with decoding.
var (
	registryMu        sync.RWMutex
	flattenableByName = make(map[string]FactoryFn)
)

// RegisterFlattenable registers a factory for the given type name,
// following the database/sql driver pattern: call it from init() in the
// package defining the type.
//
// RegisterFlattenable panics if factory is nil or the name is already
// registered, so duplicate registrations are caught during program
// initialization rather than silently overwriting each other.
func RegisterFlattenable(name string, factory FactoryFn) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("pict: RegisterFlattenable factory is nil")
	}
	if name == "" {
		panic("pict: RegisterFlattenable name is empty")
	}
	if _, dup := flattenableByName[name]; dup {
		panic("pict: RegisterFlattenable called twice for " + name)
	}
	flattenableByName[name] = factory
}

// factoryForName resolves a type name read from a stream. Unknown names
// return nil; the caller records the nil slot and fails only if the slot
// is dereferenced.
func factoryForName(name string) FactoryFn {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return flattenableByName[name]
}

// FactorySet is the write side of the factory table: a bijection between
// type names and the small-integer ids used inside a buffer payload,
// built incrementally as flattenables are written.
type FactorySet struct {
	ids   map[string]uint32
	names []string
}

// NewFactorySet creates an empty factory set.
func NewFactorySet() *FactorySet {
	return &FactorySet{ids: make(map[string]uint32)}
}

// idFor returns the 1-based id for name, assigning the next id on first
// use. Id 0 is reserved for the nil flattenable.
func (s *FactorySet) idFor(name string) uint32 {
	if id, ok := s.ids[name]; ok {
		return id
	}
	s.names = append(s.names, name)
	id := uint32(len(s.names))
	s.ids[name] = id
	return id
}

func (s *FactorySet) count() int { return len(s.names) }

// chunkSize returns the byte length of the factory chunk payload:
// a uint32 count plus each packed length-prefixed name.
func (s *FactorySet) chunkSize() uint32 {
	size := 4
	for _, name := range s.names {
		size += wire.PackedUintSize(uint64(len(name))) + len(name)
	}
	return uint32(size)
}

// write frames the factory chunk onto the stream.
func (s *FactorySet) write(w *wire.Writer) {
	w.WriteTagSize(uint32(TagFactories), s.chunkSize())
	start := w.BytesWritten()
	w.WriteUint32(uint32(len(s.names)))
	for _, name := range s.names {
		w.WriteString(name)
	}
	if written := w.BytesWritten() - start; written != uint64(s.chunkSize()) {
		// Internal consistency only; the writer never sees hostile input.
		Logger().Debug("factory chunk size mismatch",
			"computed", s.chunkSize(), "written", written)
	}
}

// factoryPlayback is the read side of the factory table: an ordered
// table of constructors indexed by the ids the write side assigned.
// Slots whose names failed to resolve are nil and poison only the
// objects that reference them.
type factoryPlayback struct {
	factories []FactoryFn
}

// readFactoryPlayback parses the factory chunk payload: count, then each
// packed length-prefixed name, resolved through the global registry.
func readFactoryPlayback(r *wire.StreamReader) (*factoryPlayback, bool) {
	count, ok := r.ReadUint32()
	if !ok {
		return nil, false
	}
	p := &factoryPlayback{factories: make([]FactoryFn, 0, min(int(count), 16))}
	for i := uint32(0); i < count; i++ {
		name, ok := r.ReadString()
		if !ok {
			return nil, false
		}
		p.factories = append(p.factories, factoryForName(name))
	}
	return p, true
}

func (p *factoryPlayback) count() int {
	if p == nil {
		return 0
	}
	return len(p.factories)
}

func (p *factoryPlayback) at(i int) FactoryFn { return p.factories[i] }
