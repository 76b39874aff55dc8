package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/listgraph/listgraphtest"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"dot only", "dot", []string{"dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid dot", []string{"dot"}, false},
		{"valid all", []string{"svg", "pdf", "png", "dot"}, false},
		{"upper case", []string{"PNG"}, false},
		{"invalid format", []string{"json"}, true},
		{"one invalid", []string{"svg", "gif"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "deps.yaml", "deps"},
		{"", "dir/deps.json", "dir/deps"},
		{"out.svg", "deps.yaml", "out"},
		{"out.dot", "deps.yaml", "out"},
		{"out", "deps.yaml", "out"},
		{"out.v2", "deps.yaml", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	single := &renderOpts{output: "graph.png", formats: []string{"png"}}
	if got := outputPath(single, "deps.yaml", "png"); got != "graph.png" {
		t.Errorf("single format = %q", got)
	}

	multi := &renderOpts{output: "graph.svg", formats: []string{"svg", "pdf"}}
	if got := outputPath(multi, "deps.yaml", "pdf"); got != "graph.pdf" {
		t.Errorf("multiple formats = %q", got)
	}

	derived := &renderOpts{formats: []string{"svg"}}
	if got := outputPath(derived, "in/deps.yaml", "svg"); got != "in/deps.svg" {
		t.Errorf("derived = %q", got)
	}
}

func TestParseQueries(t *testing.T) {
	g := listgraphtest.Sample(t)

	got, err := parseQueries(g, []string{"C=and", "X"})
	if err != nil {
		t.Fatalf("parseQueries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d actions, want 2", len(got))
	}
	if got[0].Node.Key != "C" || got[0].Mode != listgraph.QueryAnd || got[0].Action != interact.ActionQuery {
		t.Errorf("actions[0] = %+v", got[0])
	}
	if got[1].Node.Key != "X" || got[1].Mode != listgraph.QueryOr {
		t.Errorf("actions[1] = %+v, want X=or", got[1])
	}

	if _, err := parseQueries(g, []string{"Z=or"}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("unknown node error = %v", err)
	}
	if _, err := parseQueries(g, []string{"C=maybe"}); !errors.Is(err, errors.ErrCodeInvalidQueryMode) {
		t.Errorf("unknown mode error = %v", err)
	}
}

func TestApplyState(t *testing.T) {
	sess := interact.New(listgraphtest.Sample(t), interact.Options{})
	opts := &renderOpts{queries: []string{"C=and"}, lock: "D", root: "C", hover: []string{"A"}}
	if err := applyState(sess, nil, opts, interact.HighlightOptions{}); err != nil {
		t.Fatalf("applyState: %v", err)
	}

	snap := sess.Snapshot()
	if snap.Locked != "D" || snap.Rooted != "C" {
		t.Errorf("locked, rooted = %q, %q", snap.Locked, snap.Rooted)
	}
	if snap.Queries["C"] != string(listgraph.QueryAnd) || snap.RootQuerySynthesized {
		t.Errorf("queries = %v, synthesized = %v; want the explicit and query kept", snap.Queries, snap.RootQuerySynthesized)
	}
	if a := listgraphtest.Node(t, sess.Graph(), "A"); a.Hovering != listgraph.HoverDirect {
		t.Errorf("A.Hovering = %v", a.Hovering)
	}

	bad := &renderOpts{lock: "nope"}
	if err := applyState(sess, nil, bad, interact.HighlightOptions{}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("unknown lock error = %v", err)
	}
}

const testDoc = `name: demo
nodes:
  - id: app
  - id: lib
  - id: core
edges:
  - {from: app, to: lib}
  - {from: lib, to: core}
`

func TestRunRender_DOT(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "deps.yaml")
	if err := os.WriteFile(input, []byte(testDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(os.Stderr, LogInfo)
	opts := &renderOpts{formats: []string{formatDOT}, lock: "app", noCache: true}
	if err := c.runRender(context.Background(), input, opts); err != nil {
		t.Fatalf("runRender: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "deps.dot"))
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	for _, want := range []string{
		`label="demo";`,
		`"app" -> "lib" [color="#d32f2f", penwidth=2];`,
		`"lib" -> "core" [color="#d32f2f", penwidth=2];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
}
