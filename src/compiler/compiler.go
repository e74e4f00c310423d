// Package compiler wires the frontend parser/checker and the IR emitter
// into the single entry point cmd/porkchop drives: read one source file,
// tokenize, parse and type-check it, then emit its requested output
// format. It owns the exit-code mapping of spec §6/§7 so cmd/porkchop's
// main stays a thin flag-to-Options, Options-to-os.Exit shim.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"porkchoplite/src/ast"
	"porkchoplite/src/diag"
	"porkchoplite/src/emit"
	"porkchoplite/src/frontend"
	"porkchoplite/src/source"
)

// ExitCode mirrors the process exit status spec §6 assigns to each
// outcome; cmd/porkchop is the only place that ever calls os.Exit with
// one of these.
type ExitCode int

const (
	Success             ExitCode = 0
	MissingInput         ExitCode = 10
	UnknownFlag          ExitCode = 11
	MissingOutputType    ExitCode = 12
	InputCannotBeOpened  ExitCode = 20
	ParseOrTypeError     ExitCode = -1
	TokenizationError    ExitCode = -3
	OutOfMemory          ExitCode = -10
	InternalError        ExitCode = -100
)

// Options carries the resolved command-line configuration, already
// validated by cmd/porkchop's flag parsing (spec §6).
type Options struct {
	Src    string // input file path
	Out    string // output path, or the sentinels "<null>"/"<stdout>"
	LLVM   bool   // -l/--llvm-ir: emit LLVM textual IR
	Mermaid bool  // -m/--mermaid: emit an AST Mermaid diagram
	Debug  bool   // -g/--debug: enable debug metadata
}

// Compile runs the full pipeline for opt.Src and returns the produced
// text together with the exit code to report. A non-Success code is
// always accompanied by a human-readable error already folded into the
// returned text being empty; cmd/porkchop prints err itself.
func Compile(opt Options) (string, ExitCode, error) {
	if opt.Src == "" {
		return "", MissingInput, fmt.Errorf("no input file given")
	}
	if !opt.LLVM && !opt.Mermaid {
		return "", MissingOutputType, fmt.Errorf("no output type requested (pass -l or -m)")
	}

	text, err := os.ReadFile(opt.Src)
	if err != nil {
		return "", InputCannotBeOpened, fmt.Errorf("cannot open %q: %w", opt.Src, err)
	}

	src := source.New(opt.Src, string(text))
	if err := frontend.Tokenize(src); err != nil {
		return "", codeOf(err), err
	}

	global := ast.NewGlobalScopeWithBuiltins()
	p := frontend.NewParser(src, global, frontend.NewImporter())
	if err := p.ParseFile(); err != nil {
		return "", codeOf(err), err
	}

	if opt.Mermaid {
		return renderMermaid(global), Success, nil
	}

	dir, file := filepath.Split(opt.Src)
	if dir == "" {
		dir = "."
	}
	m := emit.New(global, opt.Debug, file, dir)
	out, err := m.Emit()
	if err != nil {
		return "", codeOf(err), err
	}
	return out, Success, nil
}

// codeOf maps a diag.Error's Kind to the exit code spec §6/§7 assigns it.
// Any other error shape (I/O failures surfaced outside diag, e.g.) is
// reported as an internal error: the pipeline itself guarantees every
// expected failure is already a *diag.Error by the time it bubbles here.
func codeOf(err error) ExitCode {
	de, ok := err.(*diag.Error)
	if !ok {
		return InternalError
	}
	switch de.Kind {
	case diag.Tokenization:
		return TokenizationError
	case diag.Structural, diag.Parse, diag.Type, diag.Semantic, diag.IO:
		return ParseOrTypeError
	default:
		return InternalError
	}
}
