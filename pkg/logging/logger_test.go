package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestContextFields(t *testing.T) {
	ctx := AddFields(context.Background(), Fields{RepositoryFieldKey: "acme/docs"})
	ctx = AddFields(ctx, Fields{BranchFieldKey: "main"})

	fields, ok := ctx.Value(LogFieldsContextKey).(Fields)
	if !ok {
		t.Fatal("expected log fields on context")
	}
	if fields[RepositoryFieldKey] != "acme/docs" {
		t.Errorf("repository field = %v, expected acme/docs", fields[RepositoryFieldKey])
	}
	if fields[BranchFieldKey] != "main" {
		t.Errorf("branch field = %v, expected main", fields[BranchFieldKey])
	}
}

func TestFromContextWritesFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetOutputFormat("json")
	SetLevel("debug")

	ctx := AddFields(context.Background(), Fields{PathFieldKey: "docs/specs/foo.md"})
	FromContext(ctx).Info("sync started")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry[PathFieldKey] != "docs/specs/foo.md" {
		t.Errorf("path field = %v, expected docs/specs/foo.md", entry[PathFieldKey])
	}
	if entry["msg"] != "sync started" {
		t.Errorf("msg = %v, expected 'sync started'", entry["msg"])
	}
}
