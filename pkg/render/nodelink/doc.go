// Package nodelink renders list graphs as node-link diagrams.
//
// # Overview
//
// Each column of the list graph becomes a Graphviz rank, laid out left to
// right, with nodes kept in row order. The diagram reflects interaction
// state: hover marks fill nodes, the locked and rooted nodes get distinct
// borders, query modes appear as external labels, and links recorded in a
// [highlight.Index] are colored per class (see [ClassColors]). Hidden nodes
// are omitted unless [Options.ShowHidden] is set.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, session.Index(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
