package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testManifest = `
[project]
name = "demo"

[[package]]
name = "app"
depends = [{ on = "lib" }, { on = "docs", class = "optional" }]

[[package]]
name = "lib"

[[package]]
name = "docs"
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deps.toml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGraph(t *testing.T) {
	path := writeManifest(t)
	g, err := loadGraph(path)
	if err != nil {
		t.Fatalf("loadGraph: %v", err)
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
}

func TestLoadGraphUnsupportedExtension(t *testing.T) {
	if _, err := loadGraph("deps.yaml"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()

	want := []string{"check", "cycles", "order", "export", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestOrderCommand(t *testing.T) {
	path := writeManifest(t)

	var logBuf bytes.Buffer
	c := New(&logBuf, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"order", path, "--json"})
	root.SetOut(&logBuf)
	root.SetErr(&logBuf)

	if err := root.Execute(); err != nil {
		t.Fatalf("order: %v", err)
	}
}

func TestExportDOT(t *testing.T) {
	path := writeManifest(t)
	out := filepath.Join(t.TempDir(), "graph.dot")

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"export", path, "--format", "dot", "--out", out})

	if err := root.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"app" -> "lib"`) {
		t.Errorf("DOT output missing edge:\n%s", data)
	}
}

func TestFormatNodes(t *testing.T) {
	if got := formatNodes(nil); got != "none" {
		t.Errorf("formatNodes(nil) = %q", got)
	}
	if got := formatNodes([]string{"a", "b"}); got != "a, b" {
		t.Errorf("formatNodes = %q", got)
	}
	many := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	if got := formatNodes(many); !strings.Contains(got, "(10 total)") {
		t.Errorf("formatNodes = %q, want truncation", got)
	}
}
