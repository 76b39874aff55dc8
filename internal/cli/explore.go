package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/listgraph/pkg/controls"
	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/session"
	"github.com/matzehuels/listgraph/pkg/source"
)

// exploreOpts holds the command-line flags for the explore command.
type exploreOpts struct {
	fresh   bool   // ignore the saved state
	noWatch bool   // do not reload the file on change
	logFile string // debug log destination; the terminal belongs to the UI
}

// exploreCommand creates the interactive explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Explore a graph interactively in the terminal",
		Long: `Explore shows the graph column by column. Moving the cursor hovers a node,
highlighting its ancestors and descendants.

Keys:
  ←/→ h/l   move between columns      ↑/↓ k/j   move within a column
  space     lock/unlock                r         root (debounced)
  q         cycle query mode           u / Q     unroot / unquery now
  enter     commit pending changes     [ ]       change the active level
  x         reset everything           esc       save and quit

The state is saved on exit and restored on the next run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "start without the saved state")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not reload the file when it changes")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write debug logs to this file")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts exploreOpts) error {
	logger, closeLog, err := fileLogger(opts.logFile, c.Logger.GetLevel())
	if err != nil {
		return err
	}
	defer closeLog()

	res, src, err := c.loadFile(ctx, input)
	if err != nil {
		return err
	}
	store, err := session.NewFileStore("")
	if err != nil {
		return err
	}

	ws := session.NewWorkspace(src.Name(), res.Doc, res.Graph, session.WorkspaceOptions{Logger: logger})
	if !opts.fresh {
		saved, err := store.Load(src.Path())
		if err != nil {
			return err
		}
		if saved != nil {
			if err := ws.Session().Restore(saved.State); err != nil {
				logger.Warn("saved state partially restored", "err", err)
			}
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program
	menuOpts := c.cfg.MenuOptions()
	menuOpts.OnCommit = func() { go program.Send(commitMsg{}) }

	m := newExploreModel(ws, menuOpts, c.cfg.HoverOptions())
	m.reload = func() (*source.Result, error) {
		layering, _ := c.cfg.Layering()
		return source.Load(ctx, src, layering)
	}
	program = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if !opts.noWatch {
		go func() {
			if err := src.Watch(ctx, func() { program.Send(reloadMsg{}) }); err != nil {
				logger.Warn("watch failed", "err", err)
			}
		}()
	}

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	m.menu.Cancel()

	ws.Lock()
	saved := session.Saved{Source: src.Path(), DocHash: ws.DocHash(), State: ws.Session().Snapshot()}
	ws.Unlock()
	if err := store.Save(saved); err != nil {
		return err
	}
	printSuccess("State saved")
	printNextStep("Resume with", "listgraph explore "+input)
	return nil
}

// =============================================================================
// Model
// =============================================================================

type (
	// commitMsg reports that a debounced menu change was committed.
	commitMsg struct{}
	// reloadMsg reports that the graph file changed.
	reloadMsg struct{}
)

// eventLog keeps the most recent interaction events for the status line.
// Events are published from the UI and from debounce timers.
type eventLog struct {
	mu    sync.Mutex
	items []string
}

const eventLogSize = 4

func (l *eventLog) add(ev events.Event) {
	line := string(ev.Name)
	switch {
	case len(ev.Data.Batch) > 0:
		line += fmt.Sprintf(" (%d)", len(ev.Data.Batch))
	case ev.Data.Mode != "":
		line += " " + ev.Data.NodeID + "=" + ev.Data.Mode
	case ev.Data.NodeID != "":
		line += " " + ev.Data.NodeID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, line)
	if len(l.items) > eventLogSize {
		l.items = l.items[len(l.items)-eventLogSize:]
	}
}

func (l *eventLog) recent() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.items...)
}

// exploreModel is the bubbletea model of the explorer. Session state is
// read and written under the workspace lock, since debounced menu commits
// run on timer goroutines.
type exploreModel struct {
	ws       *session.Workspace
	menu     *controls.Menu
	menuOpts controls.MenuOptions
	hover    interact.HighlightOptions
	reload   func() (*source.Result, error)
	log      *eventLog

	col, row int
	hovered  string // key of the hovered node
	status   string
	width    int
}

func newExploreModel(ws *session.Workspace, menuOpts controls.MenuOptions, hover interact.HighlightOptions) *exploreModel {
	menuOpts.Locker = ws
	m := &exploreModel{
		ws:       ws,
		menuOpts: menuOpts,
		hover:    hover,
		log:      &eventLog{},
	}
	m.menu = controls.NewMenu(ws.Session(), menuOpts)
	ws.Bus().Subscribe(m.log.add)

	ws.Lock()
	m.col = ws.Session().FocusedColumn()
	m.hoverCursor()
	ws.Unlock()
	return m
}

func (m *exploreModel) Init() tea.Cmd { return nil }

// visible returns the shown nodes of column d. The caller holds the lock.
func (m *exploreModel) visible(d int) []*listgraph.Node {
	var out []*listgraph.Node
	for _, n := range m.ws.Session().Graph().Column(d) {
		if !n.Hidden {
			out = append(out, n)
		}
	}
	return out
}

// cursor returns the node under the cursor, clamping the cursor first. The
// caller holds the lock.
func (m *exploreModel) cursor() *listgraph.Node {
	g := m.ws.Session().Graph()
	if g.Columns() == 0 {
		return nil
	}
	m.col = min(max(m.col, 0), g.Columns()-1)
	col := m.visible(m.col)
	if len(col) == 0 {
		return nil
	}
	m.row = min(max(m.row, 0), len(col)-1)
	return col[m.row]
}

// hoverCursor moves the hover highlight to the node under the cursor. The
// caller holds the lock.
func (m *exploreModel) hoverCursor() {
	sess := m.ws.Session()
	n := m.cursor()
	if n != nil && n.Key == m.hovered {
		return
	}
	if prev, ok := sess.Graph().LookupKey(m.hovered); ok {
		sess.UnhighlightNodes(prev, m.hover)
	}
	m.hovered = ""
	if n != nil {
		sess.HighlightNodes(n, m.hover)
		m.hovered = n.Key
	}
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case commitMsg:
		m.withLock(m.hoverCursor)
	case reloadMsg:
		m.doReload()
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

func (m *exploreModel) withLock(fn func()) {
	m.ws.Lock()
	defer m.ws.Unlock()
	fn()
}

// handleKey applies one key press. Menu clicks run without the workspace
// lock, since the menu takes it itself.
func (m *exploreModel) handleKey(key string) tea.Cmd {
	var n *listgraph.Node
	m.withLock(func() { n = m.cursor() })

	switch key {
	case "esc", "ctrl+c":
		return tea.Quit
	case "left", "h":
		m.withLock(func() { m.col--; m.row = 0; m.hoverCursor() })
	case "right", "l":
		m.withLock(func() { m.col++; m.row = 0; m.hoverCursor() })
	case "up", "k":
		m.withLock(func() { m.row--; m.hoverCursor() })
	case "down", "j":
		m.withLock(func() { m.row++; m.hoverCursor() })
	case "[", "]":
		m.withLock(func() {
			sess := m.ws.Session()
			if key == "[" {
				sess.SetActiveLevel(sess.ActiveLevel() - 1)
			} else {
				sess.SetActiveLevel(sess.ActiveLevel() + 1)
			}
			m.col, m.row = sess.FocusedColumn(), 0
			m.hoverCursor()
		})
	case "enter":
		m.menu.Flush()
		m.withLock(m.hoverCursor)
	case "x":
		m.menu.Cancel()
		m.withLock(func() {
			m.ws.Session().Reset()
			m.hovered = ""
			m.hoverCursor()
		})
		m.status = "reset"
	}

	if n == nil {
		return nil
	}
	switch key {
	case " ":
		m.menu.ClickLock(n)
	case "r":
		if rooted := m.menu.ClickRoot(n); rooted {
			m.status = "root " + n.ID + "?"
		} else {
			m.status = "unroot " + n.ID + "?"
		}
	case "q":
		m.status = "query " + n.ID + "=" + m.menu.ClickQuery(n).String() + "?"
	case "u":
		m.menu.Cancel()
		m.withLock(func() {
			m.ws.Session().ToggleRoot(n, true)
			m.hoverCursor()
		})
	case "Q":
		m.menu.Cancel()
		m.withLock(func() {
			m.ws.Session().QueryHandler(n, interact.ActionUnquery, listgraph.QueryNone)
		})
	}
	return nil
}

// doReload swaps in the reloaded graph, keeping state and cursor where the
// nodes still exist.
func (m *exploreModel) doReload() {
	if m.reload == nil {
		return
	}
	res, err := m.reload()
	if err != nil {
		m.status = "reload failed: " + err.Error()
		return
	}
	m.menu.Cancel()
	m.withLock(func() {
		if err := m.ws.Replace(res.Doc, res.Graph); err != nil {
			m.status = "reloaded, some state lost"
		} else {
			m.status = "reloaded"
		}
		hovered := m.hovered
		m.hovered = ""
		if n, ok := res.Graph.LookupKey(hovered); ok {
			m.col = n.Depth
			for i, v := range m.visible(n.Depth) {
				if v == n {
					m.row = i
				}
			}
		}
		m.hoverCursor()
	})
	m.menu = controls.NewMenu(m.ws.Session(), m.menuOpts)
}

// =============================================================================
// View
// =============================================================================

var (
	styleColumn      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	styleColumnFocus = styleColumn.BorderForeground(colorCyan)
	styleCursor      = lipgloss.NewStyle().Reverse(true)
	styleDirect      = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleIndirect    = lipgloss.NewStyle().Foreground(colorYellow)
	styleLocked      = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleTentative   = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)

func (m *exploreModel) View() string {
	m.ws.Lock()
	defer m.ws.Unlock()

	sess := m.ws.Session()
	g := sess.Graph()
	cur := m.cursor()

	cols := make([]string, 0, g.Columns())
	for d := range g.Columns() {
		var lines []string
		header := fmt.Sprintf("Column %d", d)
		if d == sess.FocusedColumn() {
			header = StyleTitle.Render(header)
		} else {
			header = StyleDim.Render(header)
		}
		lines = append(lines, header)
		for _, n := range m.visible(d) {
			lines = append(lines, m.nodeLine(n, n == cur))
		}
		style := styleColumn
		if d == m.col {
			style = styleColumnFocus
		}
		cols = append(cols, style.Render(strings.Join(lines, "\n")))
	}

	var b strings.Builder
	title := m.ws.Doc().Name
	if title == "" {
		title = m.ws.Source
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")

	var parts []string
	if n := sess.LockedNode(); n != nil {
		parts = append(parts, "locked "+n.ID)
	}
	if n := sess.RootedNode(); n != nil {
		parts = append(parts, "rooted "+n.ID)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	b.WriteString(StyleDim.Render(strings.Join(parts, " · ")))
	b.WriteString("\n")
	for _, line := range m.log.recent() {
		b.WriteString(StyleDim.Render("  " + line))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("←→↑↓ move  space lock  r root  q query  enter commit  x reset  esc quit"))
	return b.String()
}

// nodeLine renders one node: name, markers for lock, root and query, and
// the pending menu value. The caller holds the lock.
func (m *exploreModel) nodeLine(n *listgraph.Node, isCursor bool) string {
	st := n.State()
	var b strings.Builder
	b.WriteString(n.Name())
	if n.Clone {
		b.WriteString(" ↺")
	}
	if st.Root {
		b.WriteString(" ◎")
	}
	if st.Query != listgraph.QueryNone {
		b.WriteString(" [" + st.Query.String() + "]")
	}
	if mode, ok := m.menu.TentativeQuery(n); ok {
		b.WriteString(styleTentative.Render(" →" + mode.String()))
	}
	if rooted, ok := m.menu.TentativeRoot(n); ok {
		if rooted {
			b.WriteString(styleTentative.Render(" →root"))
		} else {
			b.WriteString(styleTentative.Render(" →unroot"))
		}
	}

	style := StyleValue
	switch {
	case st.Lock:
		style = styleLocked
	case n.Hovering == listgraph.HoverDirect:
		style = styleDirect
	case n.Hovering == listgraph.HoverIndirect:
		style = styleIndirect
	}
	if isCursor {
		style = style.Inherit(styleCursor)
	}
	return style.Render(b.String())
}
