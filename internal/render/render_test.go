package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/radj307/ARRCON/internal/hosts"
)

func TestCommandWritesOutputAndNewline(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, &bytes.Buffer{}, false, true)

	r.Command("ok")

	if out.String() != "ok\n" {
		t.Fatalf("got %q, want %q", out.String(), "ok\n")
	}
}

func TestFatalIgnoresQuiet(t *testing.T) {
	var errBuf bytes.Buffer
	r := New(&bytes.Buffer{}, &errBuf, true, true)

	r.Fatal(fatalErr{})

	if !strings.Contains(errBuf.String(), "connection lost") {
		t.Fatalf("Fatal output %q missing message", errBuf.String())
	}
}

type fatalErr struct{}

func (fatalErr) Error() string { return "connection lost" }

func TestWarnSuppressedByQuiet(t *testing.T) {
	var errBuf bytes.Buffer
	r := New(&bytes.Buffer{}, &errBuf, true, true)

	r.Warn("discarding oversize frame")

	if errBuf.Len() != 0 {
		t.Fatalf("expected no output when Quiet is set, got %q", errBuf.String())
	}
}

func TestInfoSuppressedByQuiet(t *testing.T) {
	var errBuf bytes.Buffer
	r := New(&bytes.Buffer{}, &errBuf, true, true)

	r.Info("connecting to 127.0.0.1:27015")

	if errBuf.Len() != 0 {
		t.Fatalf("expected no output when Quiet is set, got %q", errBuf.String())
	}
}

func TestInfoShownWhenNotQuiet(t *testing.T) {
	var errBuf bytes.Buffer
	r := New(&bytes.Buffer{}, &errBuf, false, true)

	r.Info("connecting to 127.0.0.1:27015")

	if !strings.Contains(errBuf.String(), "connecting to 127.0.0.1:27015") {
		t.Fatalf("got %q", errBuf.String())
	}
}

func TestHostTableListsAllEntriesAndRedactsPassword(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, &bytes.Buffer{}, false, true)

	r.HostTable([]hosts.Entry{
		{Name: "main", Target: hosts.Target{Host: "10.0.0.1", Port: "27015"}},
		{Name: "backup", Target: hosts.Target{Host: "10.0.0.2", Port: "27016"}},
	})

	rendered := out.String()
	for _, want := range []string{"main", "10.0.0.1", "27015", "backup", "10.0.0.2", "27016"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("table missing %q:\n%s", want, rendered)
		}
	}
	if strings.Contains(rendered, "sPass") {
		t.Fatalf("table leaked a password key:\n%s", rendered)
	}
}

func TestHostTableEmptyPrintsInfoNotTable(t *testing.T) {
	var out, errBuf bytes.Buffer
	r := New(&out, &errBuf, false, true)

	r.HostTable(nil)

	if out.Len() != 0 {
		t.Fatalf("expected nothing on stdout for an empty host list, got %q", out.String())
	}
	if !strings.Contains(errBuf.String(), "no saved hosts") {
		t.Fatalf("got %q", errBuf.String())
	}
}

func TestPrintEnvRedactsPassword(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, &bytes.Buffer{}, false, true)

	r.PrintEnv("ARRCON", "10.0.0.1", "27015", "secret")

	rendered := out.String()
	if strings.Contains(rendered, "secret") {
		t.Fatalf("PrintEnv leaked the password:\n%s", rendered)
	}
	if !strings.Contains(rendered, "ARRCON_HOST=10.0.0.1") {
		t.Fatalf("got %q", rendered)
	}
}
