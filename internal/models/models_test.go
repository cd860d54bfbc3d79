package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestRequirement_Fields(t *testing.T) {
	typ := reflect.TypeOf(Requirement{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "Title", "not null")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "System", "index")
	assertGormTag(t, typ, "Module", "index")
	assertGormTag(t, typ, "Priority", "default:medium")
	assertGormTag(t, typ, "Status", "default:pending")
	assertGormTag(t, typ, "TestPlanID", "size:32")
	assertFieldType(t, typ, "ImportedAt", "*time.Time")
	assertFieldType(t, typ, "TestPlanID", "*string")
}

func TestTestPlan_Fields(t *testing.T) {
	typ := reflect.TypeOf(TestPlan{})

	assertGormTag(t, typ, "RowID", "primaryKey")
	assertGormTag(t, typ, "ID", "column:plan_id")
	assertGormTag(t, typ, "ID", "uniqueIndex")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Status", "default:draft")
	for _, f := range []string{"AssignedTo", "Requirements", "TestCases", "BurndownData"} {
		assertGormTag(t, typ, f, "serializer:json")
	}
	assertFieldType(t, typ, "AssignedTo", "[]string")
	assertFieldType(t, typ, "TestCases", "[]models.TestCaseSelection")
	assertFieldType(t, typ, "BurndownData", "[]models.BurndownPoint")
	assertFieldType(t, typ, "Progress", "int")
}

func TestTestCaseExecution_Fields(t *testing.T) {
	typ := reflect.TypeOf(TestCaseExecution{})

	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "TestPlanID", "index")
	assertGormTag(t, typ, "Status", "default:planned")
	assertFieldType(t, typ, "ActualExecutionTime", "*float64")
}

func TestTestPlan_JSONUsesBusinessKey(t *testing.T) {
	data, err := json.Marshal(TestPlan{RowID: 7, ID: "PLAN-001", Name: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"id":"PLAN-001"`) {
		t.Errorf("json = %s, want business id", s)
	}
	if strings.Contains(s, "RowID") || strings.Contains(s, ":7,") {
		t.Errorf("json = %s, surrogate key should be hidden", s)
	}
}

func TestSystemModule_IsSystem(t *testing.T) {
	parent := "1"
	if !(SystemModule{ID: "1"}).IsSystem() {
		t.Error("node without parent should be a system")
	}
	if (SystemModule{ID: "1-1", ParentID: &parent}).IsSystem() {
		t.Error("node with parent should be a module")
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{PriorityLabel, "high", "高"},
		{PriorityLabel, "medium", "中"},
		{PriorityLabel, "low", "低"},
		{PriorityLabel, "weird", "weird"},
		{StatusLabel, "open", "开放"},
		{StatusLabel, "in-progress", "处理中"},
		{StatusLabel, "resolved", "已解决"},
		{StatusLabel, "in_progress", "进行中"},
		{CategoryLabel, "boundary", "边界"},
		{CategoryLabel, "api", "API测试"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("label(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
