package obslog

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogIterationIncludesTagAndFields(t *testing.T) {
	var buf bytes.Buffer
	lg := New(log.New(&buf, "", 0))

	lg.LogIteration(IterationDecision{
		RunID: "run-1", Iteration: 2, Kappa: 0.5, StatesExpanded: 4,
		Pmin: 0.1, Pmax: 0.3, WindowClosed: false, Reason: "window open",
	})

	out := buf.String()
	if !strings.Contains(out, "[REFINE]") {
		t.Fatalf("expected [REFINE] tag, got %q", out)
	}
	if !strings.Contains(out, "run=run-1") || !strings.Contains(out, "iter=2") {
		t.Fatalf("expected run and iteration fields, got %q", out)
	}
}

func TestLogRecoverableTagsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	lg := New(log.New(&buf, "", 0))
	lg.LogRecoverable("GUARD", errTest("undersized remap vector"))
	if !strings.Contains(buf.String(), "[GUARD] recoverable:") {
		t.Fatalf("expected GUARD recoverable tag, got %q", buf.String())
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
