package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_VerboseGate(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, false)

	log.Infof("info")
	log.Warnf("warn")
	log.Successf("success")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}

	log.Errorf("boom")
	if got := buf.String(); got != "boom\n" {
		t.Errorf("Errorf wrote %q, want it regardless of verbosity", got)
	}
}

func TestLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, true)

	log.Infof("exported %d users", 3)
	log.Warnf("skipping user %s", "u1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "exported 3 users" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "skipping user u1" {
		t.Errorf("line 2 = %q", lines[1])
	}
}
