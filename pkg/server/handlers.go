package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/planboard/pkg/buildinfo"
	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/export"
	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/source"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// windowResponse is the body of GET /api/v1/window.
type windowResponse struct {
	export.Window
	Previous string `json:"previous"` // cursor of the preceding window
	Next     string `json:"next"`     // cursor of the following window
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"source":  s.opts.Source.Name(),
	})
}

func (s *Server) window(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	win, err := opts.Window()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	prev, err := win.Shift(-1)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	next, err := win.Shift(1)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, windowResponse{
		Window: export.Window{
			Start:       win.Start.Format(time.DateOnly),
			End:         win.End.Format(time.DateOnly),
			TotalDays:   win.TotalDays,
			Granularity: string(win.Granularity),
			Label:       win.Label(),
		},
		Previous: prev.Start.Format(time.DateOnly),
		Next:     next.Start.Format(time.DateOnly),
	})
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, hit, ok := s.layout(w, r, opts)
	if !ok {
		return
	}

	w.Header().Set("X-Cache", cacheHeader(hit))
	writeJSON(w, http.StatusOK, export.FromResult(res))
}

func (s *Server) timelineSVG(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts.Formats = []string{pipeline.FormatSVG}

	res, layoutHit, ok := s.layout(w, r, opts)
	if !ok {
		return
	}
	artifacts, renderHit, err := s.opts.Runner.RenderWithCacheInfo(r.Context(), res, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", cacheHeader(layoutHit && renderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}

// layout loads the items of the requested window and lays them out. On
// failure it writes the error response and returns ok == false.
func (s *Server) layout(w http.ResponseWriter, r *http.Request, opts pipeline.Options) (res timeline.Result, hit, ok bool) {
	win, err := opts.Window()
	if err != nil {
		writeError(w, statusFor(err), err)
		return res, false, false
	}

	snap, err := source.LoadWindow(r.Context(), s.opts.Source, win)
	if err != nil {
		s.opts.Logger.Error("load items", "source", s.opts.Source.Name(), "error", err)
		writeError(w, sourceStatus(r.Context()), err)
		return res, false, false
	}
	for _, warning := range snap.Warnings {
		s.opts.Logger.Debug(warning, "source", s.opts.Source.Name())
	}

	res, hit, err = s.opts.Runner.LayoutWithCacheInfo(r.Context(), snap.Items, snap.Revision, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return res, false, false
	}
	return res, hit, true
}

// parseOptions builds pipeline options from the server defaults and the
// query string, and validates them.
func (s *Server) parseOptions(q url.Values) (pipeline.Options, error) {
	opts := s.opts.Defaults
	opts.Logger = s.opts.Logger
	opts.Formats = nil

	if v := q.Get("granularity"); v != "" {
		opts.Granularity = v
	}
	if v := q.Get("cursor"); v != "" {
		cursor, err := timeline.ParseDate(v)
		if err != nil {
			return opts, err
		}
		opts.Cursor = cursor
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidCursor, "invalid offset %q", v)
		}
		opts.Offset = n
	}

	opts.Search = q.Get("q")

	opts.Today = s.opts.Now()
	if v := q.Get("today"); v != "" {
		today, err := timeline.ParseDate(v)
		if err != nil {
			return opts, err
		}
		opts.Today = today
	}
	if opts.Cursor.IsZero() {
		opts.Cursor = opts.Today
	}

	if v := q.Get("tie_break"); v != "" {
		opts.TieBreak = v
	}
	if v := q.Get("collation"); v != "" {
		opts.Collation = v
	}
	if v := q.Get("theme"); v != "" {
		opts.Theme = v
	}
	for name, dst := range map[string]*float64{"width": &opts.Width, "lane_height": &opts.LaneHeight} {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 {
				return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
			}
			*dst = f
		}
	}

	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
