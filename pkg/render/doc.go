// Package render turns list graphs into images.
//
// The [nodelink] subpackage draws the current interaction state of a graph as
// a Graphviz node-link diagram. [ToPDF] and [ToPNG] convert its SVG output to
// other formats using the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(g, session.Index(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
package render
