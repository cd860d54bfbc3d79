package main

import (
	"strings"
	"testing"
)

func TestServeCmd_Help(t *testing.T) {
	out, _, err := run(t, "", "serve", "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"--port", "--require-backend", "--config"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q:\n%s", want, out)
		}
	}
}

func TestServeCmd_RequireBackendFails(t *testing.T) {
	cfg := writeConfig(t, "backend:\n  driver: postgres\n  host: 127.0.0.1\n  port: 1\n  database: qadesk\n  timeout_sec: 1\n")
	_, _, err := run(t, "", "serve", "-c", cfg, "--require-backend")
	if err == nil {
		t.Fatal("expected error when the backend is unreachable")
	}
}
