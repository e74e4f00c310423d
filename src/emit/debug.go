package emit

import (
	"fmt"
	"strings"
)

// debugInfo accumulates the DWARF-style metadata nodes emitted when the
// -g flag is set (spec §4.3.3). Numbering starts at !10 with the DIFile
// and DICompileUnit nodes; ids below !10 are not used.
type debugInfo struct {
	next   int
	nodes  []string
	fileID int
	cuID   int
}

func newDebugInfo(file, dir string) *debugInfo {
	d := &debugInfo{next: 10}
	d.fileID = d.alloc(`!DIFile(filename: "%s", directory: "%s")`, file, dir)
	d.cuID = d.alloc(`distinct !DICompileUnit(language: DW_LANG_C, file: !%d, emissionKind: FullDebug)`, d.fileID)
	return d
}

func (d *debugInfo) alloc(format string, args ...interface{}) int {
	id := d.next
	d.next++
	d.nodes = append(d.nodes, fmt.Sprintf("!%d = "+format, append([]interface{}{id}, args...)...))
	return id
}

// subprogram emits a DISubprogram node for a function definition and
// returns its metadata id, attached to the function's `define` line via
// `!dbg !N`.
func (d *debugInfo) subprogram(name string, line int) int {
	return d.alloc(`distinct !DISubprogram(name: "%s", scope: !%d, file: !%d, line: %d, unit: !%d)`,
		name, d.fileID, d.fileID, line, d.cuID)
}

// lexicalBlock emits a DILexicalBlock nested under scope, used for every
// Clause (`{ ... }` block) the emitter enters, which covers if/else arms
// and while bodies (spec §4.3.3).
func (d *debugInfo) lexicalBlock(scope int, line, col int) int {
	return d.alloc(`distinct !DILexicalBlock(scope: !%d, file: !%d, line: %d, column: %d)`, scope, d.fileID, line, col)
}

func (d *debugInfo) render() string {
	var sb strings.Builder
	for _, n := range d.nodes {
		sb.WriteString(n)
		sb.WriteByte('\n')
	}
	return sb.String()
}
