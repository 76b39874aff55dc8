package server

import (
	"net/http"
	"strconv"

	"github.com/matzehuels/listgraph/pkg/cache"
	"github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/listgraph"
	"github.com/matzehuels/listgraph/pkg/render"
	"github.com/matzehuels/listgraph/pkg/render/nodelink"
)

var contentTypes = map[string]string{
	"dot":                    "text/vnd.graphviz; charset=utf-8",
	string(render.FormatSVG): "image/svg+xml",
	string(render.FormatPDF): "application/pdf",
	string(render.FormatPNG): "image/png",
}

// handleRender draws the current state. Query parameters: format (dot, svg,
// pdf or png; default svg), detailed, hidden and scale. Images are cached by
// document hash, interaction state and options.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = string(render.FormatSVG)
	}
	opts := cache.RenderKeyOpts{Format: format, Detailed: flag(q.Get("detailed")), ShowHidden: flag(q.Get("hidden"))}
	var f render.Format
	if format != "dot" {
		if f, err = render.ParseFormat(format); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid render format"))
			return
		}
		opts.Format = string(f)
	}
	if f == render.FormatPNG {
		opts.Scale = 1
		if v := q.Get("scale"); v != "" {
			if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil || opts.Scale <= 0 || opts.Scale > 8 {
				s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, 8]"))
				return
			}
		}
	}

	ws.Lock()
	dot := nodelink.ToDOT(ws.Session().Graph(), ws.Session().Index(), nodelink.Options{
		Detailed:   opts.Detailed,
		ShowHidden: opts.ShowHidden,
		Title:      ws.Doc().Name,
	})
	key := s.opts.Keyer.RenderKey(ws.DocHash(), renderState{
		Snapshot: ws.Session().Snapshot(),
		Marks:    marks(ws.Session().Graph()),
	}, opts)
	ws.Unlock()

	if format == "dot" {
		w.Header().Set("Content-Type", contentTypes["dot"])
		_, _ = w.Write([]byte(dot))
		return
	}

	data, err := cache.Fetch(r.Context(), s.opts.Cache, "render", key, s.opts.CacheTTL, func() ([]byte, error) {
		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		out, err := render.Convert(r.Context(), svg, f, opts.Scale)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupportedInput, err, "convert to %s", f)
		}
		return out, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[string(f)])
	_, _ = w.Write(data)
}

// renderState is everything about a session that changes its rendering.
type renderState struct {
	interact.Snapshot
	Marks map[string]string `json:"marks,omitempty"`
}

func marks(g *listgraph.Graph) map[string]string {
	var out map[string]string
	for _, n := range g.Nodes() {
		if n.Hovering == listgraph.HoverNone {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[n.Key] = n.Hovering.String()
	}
	return out
}

func flag(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
