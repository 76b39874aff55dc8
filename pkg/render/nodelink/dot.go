package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/listgraph/pkg/highlight"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the instance key, column, row and metadata in node
	// labels. When false, only the node name is shown.
	Detailed bool
	// ShowHidden draws hidden nodes greyed out instead of omitting them.
	ShowHidden bool
	// Title is drawn above the diagram when set.
	Title string
}

// ClassColors maps highlight classes to link colors. Classes not listed are
// drawn in DefaultClassColor.
var ClassColors = map[string]string{
	highlight.ClassHovering: "#f57c00",
	highlight.ClassLock:     "#d32f2f",
	highlight.ClassFocus:    "#1976d2",
}

// DefaultClassColor is used for highlight classes missing from ClassColors.
const DefaultClassColor = "#616161"

// ToDOT converts the current state of a list graph to Graphviz DOT. Columns
// are laid out left to right in row order. idx supplies highlighted links and
// may be nil.
//
// Node fill reflects the hover mark, a double border marks the rooted node,
// a red border the locked node and an xlabel the query mode. Clones are drawn
// dashed.
func ToDOT(g *listgraph.Graph, idx *highlight.Index, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	visible := func(n *listgraph.Node) bool { return opts.ShowHidden || !n.Hidden }

	for depth := range g.Columns() {
		var col []*listgraph.Node
		for _, n := range g.Column(depth) {
			if visible(n) {
				col = append(col, n)
			}
		}
		if len(col) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph col%d {\n    rank=same;\n", depth)
		for _, n := range col {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.Key, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
		}
		for i := 1; i < len(col); i++ {
			fmt.Fprintf(&buf, "    %q -> %q [style=invis];\n", col[i-1].Key, col[i].Key)
		}
		buf.WriteString("  }\n")
	}

	linkClasses := classesByLink(idx)
	buf.WriteString("\n")
	for _, l := range g.Links() {
		src, tgt := g.Source(l), g.Target(l)
		if !visible(src) || !visible(tgt) {
			continue
		}
		attrs := fmtLinkAttrs(linkClasses[l.ID])
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", src.Key, tgt.Key)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", src.Key, tgt.Key, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *listgraph.Node, detailed bool) string {
	if !detailed {
		return n.Name()
	}

	parts := []string{fmt.Sprintf("key: %s", n.Key), fmt.Sprintf("column: %d, row: %d", n.Depth, n.Row)}
	for _, k := range slices.Sorted(maps.Keys(n.Data.Meta)) {
		if k == listgraph.MetaName {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data.Meta[k]))
	}
	return n.Name() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *listgraph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}

	style := "rounded,filled"
	if n.Clone {
		style += ",dashed"
	}
	attrs = append(attrs, fmt.Sprintf("style=%q", style))

	switch {
	case n.Hidden:
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=grey")
	case n.Hovering == listgraph.HoverDirect:
		attrs = append(attrs, `fillcolor="#ffd54f"`)
	case n.Hovering == listgraph.HoverIndirect:
		attrs = append(attrs, `fillcolor="#fff3c4"`)
	}

	st := n.State()
	if st.Lock {
		attrs = append(attrs, `color="#d32f2f"`, "penwidth=3")
	}
	if st.Root {
		attrs = append(attrs, "peripheries=2")
	}
	if st.Query != listgraph.QueryNone {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", st.Query.String()))
	}
	return attrs
}

func fmtLinkAttrs(classes []string) []string {
	if len(classes) == 0 {
		return nil
	}
	colors := make([]string, 0, len(classes))
	for _, c := range classes {
		color, ok := ClassColors[c]
		if !ok {
			color = DefaultClassColor
		}
		colors = append(colors, color)
	}
	return []string{fmt.Sprintf("color=%q", strings.Join(colors, ":")), "penwidth=2"}
}

func classesByLink(idx *highlight.Index) map[string][]string {
	out := make(map[string][]string)
	if idx == nil {
		return out
	}
	for _, class := range idx.Classes() {
		for _, id := range idx.Union(class) {
			out[id] = append(out[id], class)
		}
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
