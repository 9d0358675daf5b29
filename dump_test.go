package pict

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDumpStreamStructure(t *testing.T) {
	data := serializePicture(t, buildTestPicture())

	var out strings.Builder
	if err := DumpStream(bytes.NewReader(data), &out); err != nil {
		t.Fatalf("DumpStream: %v", err)
	}
	dump := out.String()

	for _, want := range []string{
		"picture version=2",
		"ops ",
		"fact",
		testShaderName,
		testDrawableName,
		"tpfc",
		"Inter",
		"Mono",
		"bufs",
		"pict  1 nested",
		"eof ",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}

	// The nested picture's chunks appear indented one level.
	if !strings.Contains(dump, "\n  picture version=2") {
		t.Errorf("nested picture not indented:\n%s", dump)
	}
}

func TestDumpStreamRejectsGarbage(t *testing.T) {
	err := DumpStream(bytes.NewReader([]byte("this is not a picture")), io.Discard)
	if !errors.Is(err, ErrInvalidPicture) {
		t.Fatalf("DumpStream = %v, want ErrInvalidPicture", err)
	}
}

func TestDumpStreamRejectsTruncation(t *testing.T) {
	data := serializePicture(t, buildTestPicture())
	err := DumpStream(bytes.NewReader(data[:len(data)-2]), io.Discard)
	if !errors.Is(err, ErrInvalidPicture) {
		t.Fatalf("DumpStream = %v, want ErrInvalidPicture", err)
	}
}
