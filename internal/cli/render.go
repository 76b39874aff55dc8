package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/listgraph/pkg/cache"
	"github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/render"
	"github.com/matzehuels/listgraph/pkg/render/nodelink"
	"github.com/matzehuels/listgraph/pkg/session"
)

const formatDOT = "dot"

// renderOpts holds the command-line flags for the render command. The state
// flags put the session into a given interaction state before drawing.
type renderOpts struct {
	output     string   // output file path (or base path for multiple formats)
	formats    []string // output formats: "svg", "pdf", "png", "dot"
	detailed   bool     // show keys, positions and metadata in node labels
	showHidden bool     // draw nodes hidden by rooting in grey
	scale      float64  // PNG scale factor
	noCache    bool     // bypass the render cache

	resume  bool     // start from the state saved by explore
	lock    string   // node to lock
	root    string   // node to root
	hover   []string // nodes to hover
	queries []string // key=mode pairs
}

// renderCommand creates the render command for drawing a graph in a given
// interaction state.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph to SVG, PDF, PNG or DOT",
		Long: `Render draws a graph file as a node-link diagram, one column per layer.

The interaction flags set up hover, lock, root and query state first, so a
render shows exactly what the explorer would:

  listgraph render deps.yaml --root core --query app=and --lock lib`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show keys, positions and metadata")
	cmd.Flags().BoolVar(&opts.showHidden, "show-hidden", false, "draw nodes hidden by rooting")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "apply the state saved by explore")
	cmd.Flags().StringVar(&opts.lock, "lock", "", "lock a node")
	cmd.Flags().StringVar(&opts.root, "root", "", "root a node")
	cmd.Flags().StringSliceVar(&opts.hover, "hover", nil, "hover node(s)")
	cmd.Flags().StringSliceVarP(&opts.queries, "query", "q", nil, "query node(s) as key=mode, mode one of or, and, not")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{string(render.FormatSVG)}
	}
	return strings.Split(s, ",")
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if f == formatDOT {
			continue
		}
		if _, err := render.ParseFormat(f); err != nil {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'pdf', 'png' or 'dot')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. A known format
// extension on output is stripped as well.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validateFormats([]string{strings.TrimPrefix(ext, ".")}) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns where format is written.
func outputPath(opts *renderOpts, input, format string) string {
	if len(opts.formats) == 1 && opts.output != "" {
		return opts.output
	}
	return basePath(opts.output, input) + "." + format
}

// parseQueries parses key=mode pairs into query actions.
func parseQueries(g *listgraph.Graph, pairs []string) ([]interact.QueryAction, error) {
	actions := make([]interact.QueryAction, 0, len(pairs))
	for _, p := range pairs {
		key, modeStr, ok := strings.Cut(p, "=")
		if !ok {
			modeStr = string(listgraph.QueryOr)
		}
		n, err := lookupNode(g, key)
		if err != nil {
			return nil, err
		}
		mode, err := listgraph.ParseQueryMode(modeStr)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidQueryMode, err, "query %q", p)
		}
		actions = append(actions, interact.QueryAction{Node: n, Action: interact.ActionQuery, Mode: mode})
	}
	return actions, nil
}

// lookupNode finds a node by instance key, falling back to its id.
func lookupNode(g *listgraph.Graph, ref string) (*listgraph.Node, error) {
	if n, ok := g.LookupKey(ref); ok {
		return n, nil
	}
	if n, ok := g.Lookup(ref); ok {
		return n, nil
	}
	return nil, errors.New(errors.ErrCodeNodeNotFound, "no node %q", ref)
}

// applyState brings sess into the state described by opts. Queries go
// first, so that rooting keeps an explicit query instead of synthesizing one.
func applyState(sess *interact.Session, saved *session.Saved, opts *renderOpts, hover interact.HighlightOptions) error {
	g := sess.Graph()
	if saved != nil {
		if err := sess.Restore(saved.State); err != nil {
			return err
		}
	}

	actions, err := parseQueries(g, opts.queries)
	if err != nil {
		return err
	}
	sess.BatchQueryHandler(actions)

	if opts.lock != "" {
		n, err := lookupNode(g, opts.lock)
		if err != nil {
			return err
		}
		sess.ToggleLock(n)
	}
	if opts.root != "" {
		n, err := lookupNode(g, opts.root)
		if err != nil {
			return err
		}
		sess.ToggleRoot(n, false)
	}
	for _, key := range opts.hover {
		n, err := lookupNode(g, key)
		if err != nil {
			return err
		}
		sess.HighlightNodes(n, hover)
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	res, src, err := c.loadFile(ctx, input)
	if err != nil {
		return err
	}

	var saved *session.Saved
	if opts.resume {
		store, err := session.NewFileStore("")
		if err != nil {
			return err
		}
		if saved, err = store.Load(src.Path()); err != nil {
			return err
		}
		if saved == nil {
			logger.Warn("no saved state", "source", src.Path())
		}
	}

	ws := session.NewWorkspace(src.Name(), res.Doc, res.Graph, session.WorkspaceOptions{Logger: logger})
	sess := ws.Session()
	if err := applyState(sess, saved, opts, c.cfg.HoverOptions()); err != nil {
		return err
	}

	dot := nodelink.ToDOT(res.Graph, sess.Index(), nodelink.Options{
		Detailed:   opts.detailed,
		ShowHidden: opts.showHidden,
		Title:      res.Doc.Name,
	})

	rc, err := c.newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer rc.Close()
	keyer := cache.NewDefaultKeyer()
	snap := sess.Snapshot()

	for _, format := range opts.formats {
		data := []byte(dot)
		if format != formatDOT {
			f, _ := render.ParseFormat(format)
			keyOpts := cache.RenderKeyOpts{Format: format, Detailed: opts.detailed, ShowHidden: opts.showHidden}
			if f == render.FormatPNG {
				keyOpts.Scale = opts.scale
			}
			key := keyer.RenderKey(ws.DocHash(), snap, keyOpts)
			data, err = cache.Fetch(ctx, rc, "render", key, c.cfg.Cache.TTL.Duration, func() ([]byte, error) {
				svg, err := nodelink.RenderSVG(ctx, dot)
				if err != nil {
					return nil, err
				}
				return render.Convert(ctx, svg, f, opts.scale)
			})
			if err != nil {
				return fmt.Errorf("%s: %w", format, err)
			}
		}

		path := outputPath(opts, input, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		logger.Debug("wrote output", "format", format, "bytes", len(data))
		printFile(path)
	}
	return nil
}
