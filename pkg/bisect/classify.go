package bisect

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// successMarker is the header cargo-bisect-rustc prints to stderr before its result summary.
// The cutoff is tied to the tool's exact output format.
const successMarker = "searched nightlies:"

// classifyOutput turns a finished tool invocation into a job status.
//
// A non-zero exit is a valid Error result carrying the last excerptLines lines of stderr in
// their original order. A zero exit is a Success result carrying everything from the last
// occurrence of successMarker to the end of stderr. Stderr that is not valid UTF-8, or a zero
// exit without the marker, violate the tool's output contract and are returned as errors.
func classifyOutput(exitedOK bool, stderr []byte, excerptLines int) (BisectStatus, error) {
	if !utf8.Valid(stderr) {
		return BisectStatus{}, fmt.Errorf("tool stderr is not valid utf-8")
	}
	output := string(stderr)

	if !exitedOK {
		return ErrorStatus(lastLines(output, excerptLines)), nil
	}

	cutoff := strings.LastIndex(output, successMarker)
	if cutoff == -1 {
		return BisectStatus{}, fmt.Errorf("cannot find %q in tool output. output:\n%s", successMarker, output)
	}

	return SuccessStatus(output[cutoff:]), nil
}

// lastLines returns the last n lines of s, keeping their original top-to-bottom order.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
