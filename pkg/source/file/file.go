// Package file reads graph documents from JSON or YAML files and watches
// them for changes.
package file

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/listgraph/pkg/controls"
	"github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/graph"
	"github.com/matzehuels/listgraph/pkg/source"
)

// DefaultDebounce is how long Watch waits for further writes before
// reporting a change. Editors often write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Source.
type Options struct {
	// Debounce is the quiet period before a change is reported.
	// Zero uses DefaultDebounce.
	Debounce time.Duration
	// Logger receives watch errors. Nil discards them.
	Logger *log.Logger
}

// Source is a graph document file. The format follows the extension.
type Source struct {
	path     string
	debounce time.Duration
	logger   *log.Logger
}

var (
	_ source.Source  = (*Source)(nil)
	_ source.Watcher = (*Source)(nil)
)

// New returns a source for the file at path.
func New(path string, opts Options) *Source {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Source{path: path, debounce: opts.Debounce, logger: opts.Logger}
}

// Path returns the absolute file path.
func (s *Source) Path() string { return s.path }

// Name implements source.Source.
func (s *Source) Name() string { return "file:" + filepath.Base(s.path) }

// Fetch implements source.Source.
func (s *Source) Fetch(ctx context.Context) (graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return graph.Graph{}, err
	}
	g, err := graph.ReadFile(s.path)
	if err != nil {
		return graph.Graph{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", s.path)
	}
	return g, nil
}

// Watch implements source.Watcher. The parent directory is watched so that
// editors replacing the file through a rename are noticed too.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	deb := controls.NewDebouncer(s.debounce, nil)
	defer deb.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !s.relevant(ev) {
				continue
			}
			s.logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			deb.Trigger(onChange)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "path", s.path, "err", err)
		}
	}
}

func (s *Source) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != s.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
