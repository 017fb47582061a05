package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/chartkit/pkg/cache"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/httputil"
	chartio "github.com/matzehuels/chartkit/pkg/io"
	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/pipeline"
	"github.com/matzehuels/chartkit/pkg/render"
	"github.com/matzehuels/chartkit/pkg/store"
)

// fail writes err and reports it to the HTTP hooks.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := httputil.StatusFor(err); status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.Host, r.URL.Path, err)
	httputil.WriteError(w, err)
}

// persist writes def to the store. Store failures are logged, not returned:
// the mounted chart stays authoritative for this process.
func (s *Server) persist(r *http.Request, def store.Definition) {
	if err := s.store.Put(r.Context(), &def); err != nil {
		s.logger.Warn("persist chart", "chart", def.ID, "err", err)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createChart(w http.ResponseWriter, r *http.Request) {
	spec, err := chartio.ReadSpec(http.MaxBytesReader(w, r.Body, s.maxBody), httputil.ContentFormat(r.Header.Get("Content-Type")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	now := s.now().UTC()
	def := store.Definition{
		ID:        uuid.NewString(),
		Config:    spec.Config,
		Data:      spec.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	h, err := newHandle(def, s.logger)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.add(h)
	s.persist(r, h.definition())
	s.logger.Info("created chart", "chart", def.ID, "kind", h.def.Config.Kind, "points", len(def.Data))

	w.Header().Set("Location", "/charts/"+def.ID)
	httputil.WriteJSON(w, http.StatusCreated, h.status())
}

func (s *Server) listCharts(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	defs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	type entry struct {
		ID        string    `json:"id"`
		Kind      string    `json:"kind"`
		Title     string    `json:"title,omitempty"`
		Points    int       `json:"points"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	out := make([]entry, 0, len(defs))
	for _, d := range defs {
		out = append(out, entry{
			ID:        d.ID,
			Kind:      string(d.Config.Kind),
			Title:     d.Config.Title,
			Points:    len(d.Data),
			UpdatedAt: d.UpdatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"charts": out})
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.status())
}

func (s *Server) deleteChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h, mounted := s.remove(id)
	if mounted {
		h.unmount()
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		if !mounted || !stderrors.Is(err, store.ErrNotFound) {
			s.fail(w, r, err)
			return
		}
	}
	s.logger.Info("deleted chart", "chart", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putData(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	series, err := chartio.ReadData(http.MaxBytesReader(w, r.Body, s.maxBody), httputil.ContentFormat(r.Header.Get("Content-Type")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st, err := h.setData(series, s.now().UTC())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.persist(r, h.definition())
	httputil.WriteJSON(w, http.StatusOK, st)
}

type sizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) putSize(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req sizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode size"))
		return
	}
	if req.Width < 0 || req.Height < 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "width and height must not be negative"))
		return
	}
	st, err := h.resize(req.Width, req.Height, s.now().UTC())
	s.persist(r, h.definition())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t := int64(-1)
	if v := r.URL.Query().Get("t"); v != "" {
		t, err = strconv.ParseInt(v, 10, 64)
		if err != nil || t < 0 {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid t %q (milliseconds since creation)", v))
			return
		}
	}
	svg, active, err := h.frame(r.Context(), t)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.FormatSVG.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Chart-Active", strconv.FormatBool(active))
	_, _ = w.Write(svg)
}

func (s *Server) getRender(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	h, err := s.handle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	def := h.definition()

	q := r.URL.Query()
	opts := pipeline.Options{
		Config:      def.Config,
		Data:        def.Data,
		Formats:     []string{string(format)},
		Interactive: q.Get("interactive") == "true",
		Pinned:      q.Get("pinned") == "true",
		Refresh:     q.Get("refresh") == "true",
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts.Scale = scale
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.fail(w, r, err)
		return
	}
	specHash, err := opts.SpecHash()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	key := fmt.Sprintf("%s:%s:%v:%t:%t:%t", specHash, format, opts.Scale, opts.Interactive, opts.Pinned, opts.Refresh)
	etag := strconv.Quote(cache.Hash([]byte(key))[:32])
	w.Header().Set("ETag", etag)
	if !opts.Refresh && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// Identical concurrent requests share one pipeline run, which must not
	// die with whichever request started it.
	ctx := context.WithoutCancel(r.Context())
	v, err, shared := s.renders.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.runner.Execute(ctx, opts)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res := v.(*pipeline.Result)
	s.logger.Debug("rendered chart",
		"chart", def.ID,
		"format", format,
		"scene_cached", res.CacheInfo.SceneHit,
		"render_cached", res.CacheInfo.RenderHit,
		"shared", shared)

	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(res.Artifacts[string(format)])
}
