package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func sqliteConfig(t *testing.T) string {
	t.Helper()
	return writeConfig(t, fmt.Sprintf("backend:\n  driver: sqlite\n  path: %s\n", filepath.Join(t.TempDir(), "qadesk.db")))
}

func TestDBCmd_Help(t *testing.T) {
	out, _, err := run(t, "", "db", "--help")
	if err != nil {
		t.Fatalf("db --help failed: %v", err)
	}
	if !strings.Contains(out, "Database management") {
		t.Errorf("expected help to mention 'Database management', got: %s", out)
	}
	if !strings.Contains(out, "init") || !strings.Contains(out, "reset") {
		t.Errorf("expected help to list init and reset, got: %s", out)
	}
}

func TestDBInit_NoBackend(t *testing.T) {
	_, _, err := run(t, "", "db", "init", "-c", writeConfig(t, ""))
	if err == nil {
		t.Fatal("expected error without a backend")
	}
	if !strings.Contains(err.Error(), "no backend configured") {
		t.Errorf("error = %q", err)
	}
}

func TestDBInit_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	for range 2 {
		out, _, err := run(t, "", "db", "init", "-c", cfg)
		if err != nil {
			t.Fatalf("db init: %v", err)
		}
		for _, want := range []string{"Connected to sqlite", "Migrated 3 tables", "Seeded 6 requirements", "Seeded 3 test plans"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	}
}

func TestDBReset(t *testing.T) {
	cfg := sqliteConfig(t)
	if _, _, err := run(t, "", "db", "init", "-c", cfg); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		stdin   string
		args    []string
		want    string
		notWant string
	}{
		{name: "declined", stdin: "no\n", args: nil, want: "Aborted.", notWant: "Dropped"},
		{name: "confirmed", stdin: "yes\n", args: nil, want: "reset and re-initialized"},
		{name: "skip prompt", args: []string{"--yes"}, want: "Dropped all qadesk tables", notWant: "Type \"yes\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"db", "reset", "-c", cfg}, tt.args...)
			out, _, err := run(t, tt.stdin, args...)
			if err != nil {
				t.Fatalf("db reset: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
			if tt.notWant != "" && strings.Contains(out, tt.notWant) {
				t.Errorf("output should not contain %q:\n%s", tt.notWant, out)
			}
		})
	}
}

func TestPlanList_FromSQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	if _, _, err := run(t, "", "db", "init", "-c", cfg); err != nil {
		t.Fatal(err)
	}
	out, stderr, err := run(t, "", "plan", "create", "-c", cfg,
		"--name", "回归测试", "--start", "2024-12-20", "--end", "2024-12-27", "--hours", "14")
	if err != nil {
		t.Fatal(err)
	}
	if stderr != "" {
		t.Errorf("unexpected warning with a working backend: %s", stderr)
	}
	if !strings.Contains(out, "Created plan PLAN-") {
		t.Errorf("output = %s", out)
	}

	out, _, err = run(t, "", "plan", "list", "-c", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "回归测试") {
		t.Errorf("persisted plan missing from list:\n%s", out)
	}
}
