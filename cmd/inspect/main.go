package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/wippyai/serial/jsonform"
	"github.com/wippyai/serial/mapform"
	"github.com/wippyai/serial/schema"
	"github.com/wippyai/serial/tagwire"
)

func main() {
	var (
		list        = flag.Bool("list", false, "List registered demo types and exit")
		typeName    = flag.String("type", "", "Demo type to render")
		format      = flag.String("format", "json", "Output format: json, wire or map")
		descName    = flag.String("desc", "", "Print the descriptor of a demo type and exit")
		patchDoc    = flag.String("patch", "", "Sparse JSON document to merge into the sample")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !*list && *typeName == "" && *descName == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -list")
		fmt.Fprintln(os.Stderr, "       inspect -type <name> [-format json|wire|map] [-patch <json>]")
		fmt.Fprintln(os.Stderr, "       inspect -desc <name>")
		fmt.Fprintln(os.Stderr, "       inspect -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*list, *typeName, *format, *descName, *patchDoc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(list bool, typeName, format, descName, patchDoc string) error {
	if list {
		fmt.Println("Registered types:")
		for _, e := range registry() {
			d := e.codec.Descriptor()
			fmt.Printf("  %-10s %s (%s, %d elements)\n", e.name, d.Name(), d.Kind(), d.NumElements())
		}
		return nil
	}

	if descName != "" {
		e, err := lookup(descName)
		if err != nil {
			return err
		}
		printDescriptor(e.codec.Descriptor())
		return nil
	}

	e, err := lookup(typeName)
	if err != nil {
		return err
	}

	sample := e.sample
	if patchDoc != "" {
		patched, err := jsonform.Update(e.codec, []byte(patchDoc), sample)
		if err != nil {
			return fmt.Errorf("apply patch: %w", err)
		}
		sample = patched
	}

	switch format {
	case "json":
		data, err := jsonform.MarshalIndent(e.codec, sample, 2)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "wire":
		data, err := tagwire.Marshal(e.codec, sample)
		if err != nil {
			return err
		}
		fmt.Printf("%d bytes\n%s", len(data), hex.Dump(data))
	case "map":
		tree, err := mapform.Encode(e.codec, sample)
		if err != nil {
			return err
		}
		fmt.Printf("%#v\n", tree)
	default:
		return fmt.Errorf("unknown format %q (want json, wire or map)", format)
	}
	return nil
}

// printDescriptor walks the descriptor tree, showing each element's name,
// kind, optionality and wire tag.
func printDescriptor(d *schema.Descriptor) {
	printDescriptorIndent(d, 0, map[*schema.Descriptor]bool{})
}

func printDescriptorIndent(d *schema.Descriptor, depth int, seen map[*schema.Descriptor]bool) {
	pad := strings.Repeat("  ", depth)
	fmt.Printf("%s%s (%s)\n", pad, d.Name(), d.Kind())
	if seen[d] {
		fmt.Printf("%s  ... (recursive)\n", pad)
		return
	}
	seen[d] = true
	if d.Kind().IsPrimitive() {
		return
	}
	tagged := (*schema.Tagged)(nil)
	if d.Kind() == schema.KindStruct {
		tagged = schema.NewTagged(d)
	}
	for i := 0; i < d.NumElements(); i++ {
		opt := ""
		if d.IsElementOptional(i) {
			opt = " optional"
		}
		tag := ""
		if tagged != nil {
			tag = fmt.Sprintf(" tag=%d", tagged.TagByIndex(i))
		}
		fmt.Printf("%s  [%d] %s%s%s\n", pad, i, d.ElementName(i), opt, tag)
		nested, err := d.ElementDescriptor(i)
		if err != nil || nested == nil {
			continue
		}
		printDescriptorIndent(nested, depth+2, seen)
	}
}
