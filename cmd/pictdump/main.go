// Command pictdump prints the chunk structure of an encoded picture.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/gogpu/pict"
)

func main() {
	var output string
	pflag.StringVarP(&output, "output", "o", "", "write the dump to a file instead of stdout")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: pictdump [flags] [file]")
		fmt.Fprintln(os.Stderr, "Reads an encoded picture from file (or stdin) and prints its chunk structure.")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() > 1 {
		pflag.Usage()
		os.Exit(2)
	}

	in := os.Stdin
	if pflag.NArg() == 1 && pflag.Arg(0) != "-" {
		f, err := os.Open(pflag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "pictdump:", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pictdump:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := pict.DumpStream(in, out); err != nil {
		fmt.Fprintln(os.Stderr, "pictdump:", err)
		os.Exit(1)
	}
}
