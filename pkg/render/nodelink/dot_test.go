package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/listgraph/listgraphtest"
)

func TestToDOT_Basic(t *testing.T) {
	g := listgraphtest.Sample(t)

	dot := ToDOT(g, nil, Options{})

	for _, want := range []string{
		"digraph G",
		"rankdir=LR",
		"subgraph col0 {\n    rank=same;",
		`"A" -> "C";`,
		`"B" -> "X#1";`,
		`"A" -> "B" [style=invis];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q", want)
		}
	}
	if !strings.Contains(dot, `"X#1" [label="X", style="rounded,filled,dashed"]`) {
		t.Error("ToDOT() clone missing dashed style")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	b := listgraph.NewBuilder()
	if _, err := b.AddNode("pkg", "Package", 1, map[string]any{"version": "1.0.0"}); err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(b.Graph(), nil, Options{Detailed: true, Title: "demo"})

	for _, want := range []string{"column: 1, row: 0", "version: 1.0.0", "key: pkg", `label="demo"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() detailed output missing %q", want)
		}
	}
}

func TestToDOT_State(t *testing.T) {
	g := listgraphtest.Sample(t)
	s := interact.New(g, interact.Options{})
	c := listgraphtest.Node(t, g, "C")

	s.ToggleLock(c)
	dot := ToDOT(g, s.Index(), Options{})
	if !strings.Contains(dot, `"A" -> "C" [color="#d32f2f", penwidth=2];`) {
		t.Error("locked path link not highlighted")
	}
	if !strings.Contains(dot, `"C" [label="C", style="rounded,filled", fillcolor="#ffd54f", color="#d32f2f", penwidth=3]`) {
		t.Errorf("locked node not styled:\n%s", dot)
	}
	if !strings.Contains(dot, `"B" -> "D";`) {
		t.Error("unrelated link should not be styled")
	}

	s.ToggleRoot(c, false)
	dot = ToDOT(g, s.Index(), Options{})
	if strings.Contains(dot, `"B"`) {
		t.Error("hidden node B rendered")
	}
	if !strings.Contains(dot, "peripheries=2") || !strings.Contains(dot, `xlabel="or"`) {
		t.Error("rooted node missing root and query style")
	}

	dot = ToDOT(g, s.Index(), Options{ShowHidden: true})
	if !strings.Contains(dot, `"B" [label="B", style="rounded,filled", fillcolor=lightgrey, fontcolor=grey]`) {
		t.Error("hidden node not greyed out")
	}
}

func TestFmtLinkAttrs(t *testing.T) {
	if got := fmtLinkAttrs(nil); got != nil {
		t.Errorf("fmtLinkAttrs(nil) = %v", got)
	}
	got := strings.Join(fmtLinkAttrs([]string{"hovering", "custom"}), ", ")
	want := `color="#f57c00:#616161", penwidth=2`
	if got != want {
		t.Errorf("fmtLinkAttrs() = %q, want %q", got, want)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %q, want %q", got, want)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(listgraphtest.Sample(t), nil, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}
