package pict

// SerialProcs carries optional hooks that override the default encoding
// of specific object kinds during serialization. A nil hook, or a hook
// returning ok=false, falls back to the default codec.
//
// Hooks must be deterministic for the dry-run serialization pass to
// produce the same table contents as the real pass.
type SerialProcs struct {
	// EncodeImage replaces the default (PNG) image encoding.
	EncodeImage func(img *Image) (payload []byte, ok bool)

	// EncodeTypeface replaces the default typeface encoding. Streams
	// written with this hook can only be read with a matching
	// DecodeTypeface hook.
	EncodeTypeface func(t *Typeface) (payload []byte, ok bool)
}

// DeserialProcs carries optional hooks that override the default
// decoding of specific object kinds. They mirror SerialProcs.
type DeserialProcs struct {
	// DecodeImage replaces the default image decoding.
	DecodeImage func(payload []byte) (*Image, error)

	// DecodeTypeface decodes typeface entries written by a matching
	// EncodeTypeface hook. An entry that fails to decode is replaced by
	// the default typeface, like any other per-entry typeface failure.
	DecodeTypeface func(payload []byte) (*Typeface, error)
}
