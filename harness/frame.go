package harness

import (
	"strings"

	"github.com/dkoval/gridbench/bench"
)

// consoleMarker stands in for the structured payload when the console
// log is reconstructed for human reading.
const consoleMarker = "[structured result omitted]"

// Framed is the decomposition of captured child output around the
// sentinel lines.
type Framed struct {
	// Payload is the structured region between the sentinels, exclusive
	// of the sentinel lines themselves.
	Payload []string

	// Before and After are the console fragments surrounding the
	// payload.
	Before []string
	After  []string
}

// Frame scans captured output for the sentinel protocol. ok is false
// when the BEGIN sentinel never appears, which is the pipeline's
// success/failure discriminator: the child crashed or errored before
// reaching the point where it emits structured output.
func Frame(lines []string) (framed Framed, ok bool) {
	begin := -1

	for i, line := range lines {
		if line == bench.SentinelBegin {
			begin = i

			break
		}
	}

	if begin < 0 {
		return Framed{}, false
	}

	framed.Before = lines[:begin]

	end := len(lines)

	for i := begin + 1; i < len(lines); i++ {
		if lines[i] == bench.SentinelEnd {
			end = i

			break
		}
	}

	framed.Payload = lines[begin+1 : end]

	if end < len(lines) {
		framed.After = lines[end+1:]
	}

	return framed, true
}

// Console reconstructs a single human-readable log from the fragments,
// with a marker line standing in for the payload.
func (f Framed) Console() string {
	parts := make([]string, 0, len(f.Before)+len(f.After)+1)
	parts = append(parts, f.Before...)
	parts = append(parts, consoleMarker)
	parts = append(parts, f.After...)

	return strings.Join(parts, "\n")
}

// PayloadText joins the payload region back into a single document.
func (f Framed) PayloadText() string {
	return strings.Join(f.Payload, "\n")
}
