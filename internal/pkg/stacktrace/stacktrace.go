// Package stacktrace trims runtime stacks down to this module's own frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame that
// points into an internal package. Frames from the runtime or deps are skipped.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)

		at := strings.Index(line, marker)
		if at == -1 {
			continue
		}
		loc := line[at+1:]

		dot := strings.Index(loc, ".go:")
		if dot == -1 {
			continue
		}
		if sp := strings.IndexByte(loc[dot:], ' '); sp != -1 {
			loc = loc[:dot+sp]
		}

		paths = append(paths, loc)
	}

	return paths
}
