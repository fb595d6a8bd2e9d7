package io

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-graphviz"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/graph"
	"github.com/matzehuels/nodegraph/pkg/neighbor"
	"github.com/matzehuels/nodegraph/pkg/session/sessiontest"
)

func sample(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build(sessiontest.New().
		Node("2", "root0").Node("1", "root0_0").
		Connect("2", "output0", "1", "input0").
		Connect("2", "output1", "1", "input1").
		Doc())
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"dot", FormatDOT, false},
		{"svg", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if err != nil && nerrors.GetCode(err) != nerrors.ErrCodeInvalidInput {
				t.Errorf("code = %q", nerrors.GetCode(err))
			}
		})
	}
}

func TestEncodeJSON(t *testing.T) {
	data, err := Encode(neighbor.Project(sample(t)), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "{\n  \"root0\": {\n    \"name\": \"root0\",") {
		t.Errorf("unexpected JSON layout:\n%s", s)
	}
	if !strings.HasSuffix(s, "}\n") {
		t.Error("JSON output should end with a newline")
	}
}

func TestEncodeYAML_KeyOrder(t *testing.T) {
	data, err := Encode(neighbor.Project(sample(t)), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	first := strings.Index(s, "root0:")
	second := strings.Index(s, "root0_0:")
	if first != 0 || second < first {
		t.Errorf("YAML keys out of document order:\n%s", s)
	}
	if !strings.Contains(s, "connected_to: root0_0") {
		t.Errorf("YAML missing output record:\n%s", s)
	}
}

func TestEncodeDOT(t *testing.T) {
	data, err := Encode(sample(t), FormatDOT)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)

	for _, want := range []string{
		"digraph G",
		`"root0" [label="root0"];`,
		`"root0" -> "root0_0" [label="output0 -> input0"];`,
		`"root0" -> "root0_0" [label="output1 -> input1"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}

	gv, err := graphviz.New(context.Background())
	if err != nil {
		t.Fatalf("init graphviz: %v", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes(data)
	if err != nil {
		t.Fatalf("graphviz.ParseBytes() error = %v\n%s", err, dot)
	}
	parsed.Close()
}

func TestEncodeDOT_Unsupported(t *testing.T) {
	_, err := Encode(neighbor.Project(sample(t)), FormatDOT)
	if nerrors.GetCode(err) != nerrors.ErrCodeUnsupported {
		t.Errorf("Encode(neighbors, dot) error = %v, want UNSUPPORTED", err)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{Name: "n", ID: "0x1", Type: "custom.Node", Meta: graph.Metadata{"color": "red"}})

	dot := ToDOT(g, DOTOptions{Detailed: true})
	for _, want := range []string{`id: 0x1`, `type: custom.Node`, `color: red`} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ExportFile([]byte("new\n"), path); err != nil {
		t.Fatalf("ExportFile() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new\n" {
		t.Errorf("content = %q, want %q", got, "new\n")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestExportFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.json")
	if err := ExportFile([]byte("x"), path); err == nil {
		t.Fatal("ExportFile() into missing dir should fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output should not exist, stat err = %v", err)
	}
}
