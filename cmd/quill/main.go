// Command quill is the CLI boundary: reads a single Quill source file,
// parses and evaluates it, and prints the rendered final value.
// Grounded on the teacher's cmd/barn/main.go: stdlib flag parsing, a
// trace.Init wiring for -trace/-trace-filter, and an unadorned
// log.Fatalf error style, narrowed from a MOO server's many inspection
// flags down to the single batch-run use this interpreter has.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"quill/builtins"
	"quill/interp"
	"quill/parser"
	"quill/trace"
	"quill/value"
)

func main() {
	log.SetFlags(0)

	traceEnabled := flag.Bool("trace", false, "enable execution tracing")
	traceFilter := flag.String("trace-filter", "", "trace filter pattern (glob, e.g. '.s+' or 'closure')")
	gcInterval := flag.Int("gc-interval", interp.GCInterval, "steps between garbage collections")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: quill [-trace] [-trace-filter pattern] [-gc-interval n] <source-file>")
	}

	var filters []string
	if *traceFilter != "" {
		filters = []string{*traceFilter}
	}
	trace.Init(*traceEnabled, filters, os.Stderr)

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}

	root, err := parser.Parse(string(src))
	if err != nil {
		log.Fatalf("%v", err)
	}

	dispatcher := builtins.New(os.Stdin, os.Stdout)
	m := interp.New(root, dispatcher, *gcInterval)
	if err := m.Execute(); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Println(value.Render(m.Result()))
}
