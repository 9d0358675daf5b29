package pict

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/pict/wire"
)

// DumpStream writes a human-readable outline of an encoded picture to
// out: the header, each chunk with its tag and size, factory names,
// typeface families, and nested pictures indented one level per depth.
// It validates framing as it walks but does not decode the buffer
// payload's table entries.
func DumpStream(src io.Reader, out io.Writer) error {
	r := wire.NewStreamReader(src)
	if err := dumpPicture(r, out, 0); err != nil {
		return err
	}
	return nil
}

func dumpPicture(r *wire.StreamReader, out io.Writer, depth int) error {
	pad := strings.Repeat("  ", depth)
	info, ok := readPictInfo(r)
	if !ok {
		return ErrInvalidPicture
	}
	fmt.Fprintf(out, "%spicture version=%d cull=(%g, %g, %g, %g)\n", pad,
		info.Version,
		info.CullRect.MinX, info.CullRect.MinY,
		info.CullRect.MaxX, info.CullRect.MaxY)

	for {
		tag, ok := r.ReadUint32()
		if !ok {
			return ErrInvalidPicture
		}
		if Tag(tag) == TagEOF {
			fmt.Fprintf(out, "%s%s\n", pad, TagEOF)
			return nil
		}
		size, ok := r.ReadUint32()
		if !ok {
			return ErrInvalidPicture
		}

		switch Tag(tag) {
		case TagOps:
			fmt.Fprintf(out, "%s%s  %d bytes (%d words)\n", pad, TagOps, size, size/opWordSize)
			if _, ok := r.ReadBytes(uint64(size)); !ok {
				return ErrInvalidPicture
			}

		case TagFactories:
			count, ok := r.ReadUint32()
			if !ok {
				return ErrInvalidPicture
			}
			fmt.Fprintf(out, "%s%s  %d entries\n", pad, TagFactories, count)
			for i := uint32(0); i < count; i++ {
				name, ok := r.ReadString()
				if !ok {
					return ErrInvalidPicture
				}
				fmt.Fprintf(out, "%s  [%d] %q\n", pad, i+1, name)
			}

		case TagTypefaces:
			fmt.Fprintf(out, "%s%s  %d entries\n", pad, TagTypefaces, size)
			for i := uint32(0); i < size; i++ {
				// Decoding with empty procs still consumes custom entries;
				// their payload is length-prefixed.
				t, err := deserializeTypeface(r, DeserialProcs{})
				switch {
				case r.Failed() || errors.Is(err, errUnknownTypefaceEncoding):
					return ErrInvalidPicture
				case err != nil:
					fmt.Fprintf(out, "%s  [%d] (undecodable: %v)\n", pad, i+1, err)
				default:
					fmt.Fprintf(out, "%s  [%d] %q weight=%d italic=%v data=%v\n", pad, i+1,
						t.Family(), t.Style().Weight, t.Style().Italic, t.HasData())
				}
			}

		case TagBufferSize:
			fmt.Fprintf(out, "%s%s  %d bytes\n", pad, TagBufferSize, size)
			if _, ok := r.ReadBytes(uint64(size)); !ok {
				return ErrInvalidPicture
			}

		case TagPictures:
			fmt.Fprintf(out, "%s%s  %d nested\n", pad, TagPictures, size)
			for i := uint32(0); i < size; i++ {
				if err := dumpPicture(r, out, depth+1); err != nil {
					return err
				}
			}

		default:
			// Unknown tags have no skippable framing.
			fmt.Fprintf(out, "%sunknown tag %s size=%d\n", pad, Tag(tag), size)
			return ErrInvalidPicture
		}
	}
}
