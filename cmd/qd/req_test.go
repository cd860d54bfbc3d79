package main

import (
	"strings"
	"testing"
)

func TestReqList(t *testing.T) {
	cfg := writeConfig(t, "")
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{name: "all", want: []string{"REQ-001", "REQ-006"}},
		{name: "by system", args: []string{"--system", "支付系统"}, want: []string{"REQ-006"}, notWant: []string{"REQ-001"}},
		{name: "by module", args: []string{"--system", "采购系统", "--module", "库存管理"}, want: []string{"REQ-003"}, notWant: []string{"REQ-001", "REQ-002"}},
		{name: "keyword", args: []string{"-q", "退款"}, want: []string{"REQ-006"}, notWant: []string{"REQ-004"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, "", append([]string{"req", "list", "-c", cfg}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestReqCreate(t *testing.T) {
	cfg := writeConfig(t, "")
	_, _, err := run(t, "", "req", "create", "-c", cfg, "--system", "采购系统", "--module", "供应商管理")
	if err == nil || !strings.Contains(err.Error(), "请输入需求标题") {
		t.Fatalf("err = %v, want title validation", err)
	}

	out, stderr, err := run(t, "", "req", "create", "-c", cfg,
		"--title", "批量导入供应商", "--system", "采购系统", "--module", "供应商管理")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Created requirement REQ-") || !strings.Contains(out, "(采购系统/供应商管理)") {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(stderr, "warning:") {
		t.Errorf("expected an offline warning, got %q", stderr)
	}
}

func TestReqImport(t *testing.T) {
	cfg := writeConfig(t, "")
	out, _, err := run(t, "", "req", "import", "PLAN-003", "REQ-001", "REQ-006", "-c", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Plan PLAN-003 now covers 3 requirements") {
		t.Errorf("output = %s", out)
	}

	if _, _, err := run(t, "", "req", "import", "PLAN-404", "REQ-001", "-c", cfg); err == nil {
		t.Error("expected error for unknown plan")
	}
	if _, _, err := run(t, "", "req", "import", "PLAN-003", "-c", cfg); err == nil {
		t.Error("expected error without requirement IDs")
	}
}

func TestReqSyncGitHub_NotConfigured(t *testing.T) {
	_, _, err := run(t, "", "req", "sync-github", "-c", writeConfig(t, ""))
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("err = %v, want not configured", err)
	}
}
