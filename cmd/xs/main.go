// xs converts hierarchical documents between JSON and YAML renditions,
// including the lossless explicit JSON form, without needing the Go
// types the document was serialized from.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/j2eeguys/xstream/hio"
	"github.com/j2eeguys/xstream/ir"
	"github.com/j2eeguys/xstream/jsonr"
	"github.com/j2eeguys/xstream/jsonw"
	"github.com/j2eeguys/xstream/yamlio"
)

var (
	inFormat  = flag.String("in", "json", "input format: json, json-explicit or yaml")
	outFormat = flag.String("out", "json", "output format: json or yaml")
	layout    = flag.String("layout", "minimal", "json layout: minimal, pretty or compact")
	rootName  = flag.String("root", "root", "root element name for documents without a root wrapper")
	output    = flag.StringP("output", "o", "", "write to a file instead of stdout")
	dropRoot  = flag.Bool("drop-root", false, "omit the root name wrapper in json output")
	strict    = flag.Bool("strict", false, "fail instead of emitting a bare scalar document")
	explicit  = flag.Bool("explicit", false, "emit the lossless explicit json form")
	ieee754   = flag.Bool("ieee754", false, "write integers beyond 2^53 as strings")
)

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "xs: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("expected at most one input file, got %d", len(args))
	}
	in := io.Reader(os.Stdin)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	root, err := read(in)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return write(out, root)
}

func read(r io.Reader) (*ir.Node, error) {
	switch *inFormat {
	case "json":
		return jsonr.Parse(r, jsonr.WithRootName(*rootName))
	case "json-explicit":
		return jsonr.Parse(r, jsonr.WithExplicit(), jsonr.WithRootName(*rootName))
	case "yaml":
		return yamlio.Decode(r, *rootName)
	}
	return nil, fmt.Errorf("unknown input format %q", *inFormat)
}

func write(w io.Writer, root *ir.Node) error {
	switch *outFormat {
	case "yaml":
		return yamlio.Encode(w, root)
	case "json":
		var mode jsonw.Mode
		if *dropRoot {
			mode |= jsonw.ModeDropRoot
		}
		if *strict {
			mode |= jsonw.ModeStrict
		}
		if *explicit {
			mode |= jsonw.ModeExplicit
		}
		if *ieee754 {
			mode |= jsonw.ModeIEEE754
		}
		format, err := layoutFormat()
		if err != nil {
			return err
		}
		jw := jsonw.NewWriter(w, jsonw.WithMode(mode), jsonw.WithFormat(format))
		if err := hio.Replay(root, jw, nil); err != nil {
			return err
		}
		if err := jw.Flush(); err != nil {
			return err
		}
		_, err = fmt.Fprintln(w)
		return err
	}
	return fmt.Errorf("unknown output format %q", *outFormat)
}

func layoutFormat() (jsonw.Format, error) {
	switch *layout {
	case "minimal":
		return jsonw.MinimalFormat(), nil
	case "pretty":
		return jsonw.PrettyFormat(), nil
	case "compact":
		return jsonw.CompactFormat(), nil
	}
	return jsonw.Format{}, fmt.Errorf("unknown layout %q", *layout)
}
