// Command porkchop compiles a single PorkchopLite source file to textual
// LLVM IR, or dumps its AST as a Mermaid diagram.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"porkchoplite/src/compiler"
)

// run drives one compilation from opt and writes its output, mirroring the
// shape of the teacher's own run(opt) error but without the goroutine/
// channel output writer: the compiler front-to-back pass here is strictly
// single-threaded (spec §5), so there is nothing for a writer goroutine to
// overlap with.
func run(opt compiler.Options) (compiler.ExitCode, error) {
	out, code, err := compiler.Compile(opt)
	if err != nil {
		return code, err
	}

	switch opt.Out {
	case "<null>":
		// discard
	case "", "<stdout>":
		fmt.Print(out)
	default:
		if err := os.WriteFile(opt.Out, []byte(out), 0644); err != nil {
			return compiler.InputCannotBeOpened, fmt.Errorf("cannot write %q: %w", opt.Out, err)
		}
	}
	return compiler.Success, nil
}

// defaultOut derives the `-o`-less default output path from src's own
// extension, replacing it with .ll for LLVM IR or .mmd for a Mermaid
// diagram (spec §6: "default: input with extension replaced by output
// type").
func defaultOut(src string, llvm, mermaid bool) string {
	base := strings.TrimSuffix(src, filepath.Ext(src))
	if llvm {
		return base + ".ll"
	}
	if mermaid {
		return base + ".mmd"
	}
	return base
}

func main() {
	var opt compiler.Options

	cmd := &cobra.Command{
		Use:           "porkchop <input>",
		Short:         "Compile a PorkchopLite source file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Src = args[0]
			if opt.Out == "" {
				opt.Out = defaultOut(opt.Src, opt.LLVM, opt.Mermaid)
			}
			code, err := run(opt)
			if err != nil {
				fmt.Fprintf(os.Stderr, "porkchop: %s\n", err)
			}
			os.Exit(int(code))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opt.Out, "out", "o", "", "output path (\"<null>\" discards, \"<stdout>\" writes to stdout)")
	flags.BoolVarP(&opt.LLVM, "llvm-ir", "l", false, "emit LLVM textual IR")
	flags.BoolVarP(&opt.Mermaid, "mermaid", "m", false, "emit an AST Mermaid diagram")
	flags.BoolVarP(&opt.Debug, "debug", "g", false, "enable debug metadata")

	if err := cmd.Execute(); err != nil {
		if strings.Contains(err.Error(), "unknown flag") || strings.Contains(err.Error(), "unknown shorthand flag") {
			fmt.Fprintf(os.Stderr, "porkchop: %s\n", err)
			os.Exit(int(compiler.UnknownFlag))
		}
		fmt.Fprintf(os.Stderr, "porkchop: %s\n", err)
		os.Exit(int(compiler.MissingInput))
	}
}
