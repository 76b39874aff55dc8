package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/listgraph/pkg/dag/transform"
	"github.com/matzehuels/listgraph/pkg/graph"
	"github.com/matzehuels/listgraph/pkg/listgraph"
)

// inspectCommand prints the column layout of a graph file and optionally
// writes the laid-out document.
func (c *CLI) inspectCommand() *cobra.Command {
	var export string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the columns, clones and links of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := c.loadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printInspect(res.Doc.Name, res.Graph, res.Stats)

			if export == "" {
				printNewline()
				printNextStep("Explore it", "listgraph explore "+args[0])
				return nil
			}
			layering, _ := c.cfg.Layering()
			d, _, err := graph.LayoutDAG(res.Doc, layering)
			if err != nil {
				return err
			}
			out := graph.FromDAG(d)
			out.Name = res.Doc.Name
			if err := graph.WriteFile(export, out); err != nil {
				return err
			}
			printFile(export)
			return nil
		},
	}

	cmd.Flags().StringVarP(&export, "export", "o", "", "write the laid-out document (json, yaml or toml by extension)")
	return cmd
}

func printInspect(name string, g *listgraph.Graph, stats transform.Stats) {
	var clones int
	for _, n := range g.Nodes() {
		if n.Clone {
			clones++
		}
	}

	if name != "" {
		fmt.Println(StyleTitle.Render(name))
	}
	printKeyValue("Columns", fmt.Sprint(g.Columns()))
	printKeyValue("Nodes", fmt.Sprintf("%d (%d clones)", g.NodeCount(), clones))
	printKeyValue("Links", fmt.Sprint(len(g.Links())))
	printKeyValue("Roots", strings.Join(stats.Roots, ", "))
	printKeyValue("Leaves", strings.Join(stats.Leaves, ", "))
	if len(stats.CycleEdges) > 0 {
		printWarning("%d edges removed to break cycles", len(stats.CycleEdges))
		for _, e := range stats.CycleEdges {
			printDetail("%s → %s", e.From, e.To)
		}
	}
	printNewline()
	fmt.Println(columnTable(g))
}

// columnTable renders one table column per graph column, nodes in row order.
// Clones are dimmed.
func columnTable(g *listgraph.Graph) string {
	headers := make([]string, g.Columns())
	height := 0
	for d := range g.Columns() {
		headers[d] = fmt.Sprintf("Column %d", d)
		height = max(height, len(g.Column(d)))
	}

	rows := make([][]string, height)
	for r := range rows {
		rows[r] = make([]string, g.Columns())
		for d := range g.Columns() {
			if col := g.Column(d); r < len(col) {
				rows[r][d] = nodeLabel(col[r])
			}
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col := g.Column(col); row < len(col) && col[row].Clone {
				return cell.Foreground(colorDim)
			}
			return cell.Foreground(colorWhite)
		}).
		Render()
}

// nodeLabel is the node name with its incoming and outgoing link counts.
func nodeLabel(n *listgraph.Node) string {
	var b strings.Builder
	b.WriteString(n.Name())
	if n.Clone {
		b.WriteString(" ↺")
	}
	fmt.Fprintf(&b, " %s", StyleDim.Render(fmt.Sprintf("←%d →%d", n.Links.Incoming.Total, n.Links.Outgoing.Total)))
	return b.String()
}
