package harness

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dkoval/gridbench/bench"
)

func TestFramePayloadOnly(t *testing.T) {
	payload := []string{`{"benchmark":"sort"}`}

	lines := []string{bench.SentinelBegin}
	lines = append(lines, payload...)
	lines = append(lines, bench.SentinelEnd)

	framed, ok := Frame(lines)
	if !ok {
		t.Fatal("Frame failed to find sentinels")
	}

	if diff := cmp.Diff(payload, framed.Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	if len(framed.Before) != 0 {
		t.Errorf("before = %v, want empty", framed.Before)
	}

	if len(framed.After) != 0 {
		t.Errorf("after = %v, want empty", framed.After)
	}
}

func TestFrameMultiLinePayload(t *testing.T) {
	lines := []string{
		"loading dataset",
		bench.SentinelBegin,
		"{",
		`  "benchmark": "hash"`,
		"}",
		bench.SentinelEnd,
		"teardown done",
	}

	framed, ok := Frame(lines)
	if !ok {
		t.Fatal("Frame failed to find sentinels")
	}

	if framed.PayloadText() != "{\n  \"benchmark\": \"hash\"\n}" {
		t.Errorf("payload text = %q", framed.PayloadText())
	}

	if diff := cmp.Diff([]string{"loading dataset"}, framed.Before); diff != "" {
		t.Errorf("before mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"teardown done"}, framed.After); diff != "" {
		t.Errorf("after mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameMissingBegin(t *testing.T) {
	lines := []string{
		"panic: runtime error",
		"goroutine 1 [running]:",
	}

	_, ok := Frame(lines)
	if ok {
		t.Error("Frame reported success without a BEGIN sentinel")
	}
}

func TestFrameMissingEnd(t *testing.T) {
	// Payload runs to end of output when END never appears.
	lines := []string{
		bench.SentinelBegin,
		`{"partial": true}`,
	}

	framed, ok := Frame(lines)
	if !ok {
		t.Fatal("Frame failed with BEGIN present")
	}

	if framed.PayloadText() != `{"partial": true}` {
		t.Errorf("payload text = %q", framed.PayloadText())
	}

	if len(framed.After) != 0 {
		t.Errorf("after = %v, want empty", framed.After)
	}
}

func TestFrameSentinelMustMatchWholeLine(t *testing.T) {
	lines := []string{
		"prefix " + bench.SentinelBegin,
	}

	_, ok := Frame(lines)
	if ok {
		t.Error("Frame matched a sentinel embedded in a longer line")
	}
}

func TestConsoleReconstruction(t *testing.T) {
	lines := []string{
		"before one",
		"before two",
		bench.SentinelBegin,
		"{}",
		bench.SentinelEnd,
		"after one",
	}

	framed, ok := Frame(lines)
	if !ok {
		t.Fatal("Frame failed")
	}

	console := framed.Console()

	if !strings.Contains(console, "before one\nbefore two") {
		t.Errorf("console missing before fragment: %q", console)
	}

	if !strings.Contains(console, consoleMarker) {
		t.Errorf("console missing marker line: %q", console)
	}

	if !strings.HasSuffix(console, "after one") {
		t.Errorf("console missing after fragment: %q", console)
	}

	if strings.Contains(console, "{}") {
		t.Errorf("console leaked payload: %q", console)
	}
}
