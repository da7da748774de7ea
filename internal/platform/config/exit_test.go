package config

import (
	"bytes"
	"testing"
)

func TestExitfWritesAndExits(t *testing.T) {
	var code int
	prev := osExit
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = prev })

	var out bytes.Buffer
	exitf(&out, "Error: %s", "store locked")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if out.String() != "Error: store locked\n" {
		t.Fatalf("output = %q", out.String())
	}
}
