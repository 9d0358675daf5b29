package pict

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Image is an immutable image reference held by a picture's image table.
// The encoded form is cached so serializing the same picture twice does
// not re-encode pixels, and so a decoded image re-serializes
// byte-identically. The cache fill is synchronized, keeping concurrent
// serialization of the same picture safe.
type Image struct {
	img        image.Image
	encodeOnce sync.Once
	encoded    []byte
}

// NewImage wraps an image for recording. The image must not be mutated
// afterwards.
func NewImage(img image.Image) *Image {
	return &Image{img: img}
}

// Image returns the pixel data. Images constructed by decoding a stream
// are always *image.NRGBA.
func (i *Image) Image() image.Image {
	return i.img
}

// Bounds returns the image bounds as a Rect.
func (i *Image) Bounds() Rect {
	b := i.img.Bounds()
	return Rect{
		MinX: float64(b.Min.X), MinY: float64(b.Min.Y),
		MaxX: float64(b.Max.X), MaxY: float64(b.Max.Y),
	}
}

// Image entry encodings, mirroring the typeface flag scheme.
const (
	imageEncodingDefault = 0
	imageEncodingCustom  = 1
)

func writeImage(b *WriteBuffer, img *Image) {
	if b.procs.EncodeImage != nil {
		if payload, ok := b.procs.EncodeImage(img); ok {
			b.WriteBytes([]byte{imageEncodingCustom})
			b.WriteByteArray(payload)
			return
		}
	}
	b.WriteBytes([]byte{imageEncodingDefault})
	b.WriteByteArray(img.encodedBytes())
}

// encodedBytes returns the default-encoded payload, encoding at most
// once. Decoded images already carry their original payload.
func (i *Image) encodedBytes() []byte {
	i.encodeOnce.Do(func() {
		if i.encoded != nil {
			return
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, i.img); err != nil {
			// PNG encoding of an in-memory image only fails on
			// pathological bounds; record and write an empty payload,
			// which the reader will reject.
			Logger().Debug("image encode failed", "error", err)
		}
		i.encoded = buf.Bytes()
	})
	return i.encoded
}

func imageFromBuffer(b *ReadBuffer) *Image {
	flag := b.ReadBytes(1)
	payload := b.ReadByteArray()
	if !b.IsValid() {
		return nil
	}
	switch flag[0] {
	case imageEncodingCustom:
		if b.procs.DecodeImage == nil {
			b.Invalidate()
			return nil
		}
		img, err := b.procs.DecodeImage(payload)
		if err != nil || img == nil {
			b.Invalidate()
			return nil
		}
		return img
	case imageEncodingDefault:
		src, _, err := image.Decode(bytes.NewReader(payload))
		if err != nil {
			b.Invalidate()
			return nil
		}
		return &Image{img: normalizeImage(src), encoded: payload}
	default:
		b.Invalidate()
		return nil
	}
}

// normalizeImage converts any decoded image to NRGBA so playback sees a
// single pixel layout regardless of the source encoding.
func normalizeImage(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	dst := image.NewNRGBA(src.Bounds())
	xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
	return dst
}
