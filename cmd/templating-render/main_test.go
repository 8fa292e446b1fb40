package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-templating/pkg/templating"
)

func TestReadArgs_Empty(t *testing.T) {
	args, err := readArgs("")
	if err != nil {
		t.Fatalf("readArgs: %v", err)
	}
	if len(args) != 0 {
		t.Fatalf("expected empty args, got %v", args)
	}
}

func TestReadArgs_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.yaml")
	content := "element:\n  title: Hello\nsubtitle: world\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write args: %v", err)
	}

	args, err := readArgs(path)
	if err != nil {
		t.Fatalf("readArgs: %v", err)
	}

	want := templating.Args{
		"element":  templating.Args{"title": "Hello"},
		"subtitle": "world",
	}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestReadArgs_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.yaml")
	if err := os.WriteFile(path, []byte("- not\n- a map\n"), 0o600); err != nil {
		t.Fatalf("write args: %v", err)
	}
	if _, err := readArgs(path); err == nil {
		t.Fatal("expected error for non-map args")
	}
}
