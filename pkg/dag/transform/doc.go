// Package transform prepares an arbitrary directed graph for list-graph
// rendering. It plays the role of the layout collaborator: the interaction
// core never calls it, it only consumes what it produces.
//
// # Overview
//
// [Normalize] applies the pipeline in order:
//
//   - [BreakCycles] removes back edges so rows can be assigned
//   - [AssignLayers] or [AssignShallowLayers] assigns every node a row
//     (a column in the list graph)
//   - [CloneSpanningEdges] reroutes edges that do not connect consecutive
//     rows to clones of their target
//
// After Normalize, [dag.DAG.Validate] succeeds.
//
// # Clones
//
// A list graph never draws an edge across more than one column. Where the
// input would need one, the target is duplicated into the column right of the
// source. The clone shares the original's identity, has no children of its
// own, and lets a node appear in several columns at once.
//
// [dag.DAG.Validate]: github.com/matzehuels/listgraph/pkg/dag.DAG.Validate
package transform
