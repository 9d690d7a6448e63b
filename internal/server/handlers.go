package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cheertower/pkg/buildinfo"
	"github.com/matzehuels/cheertower/pkg/errors"
	"github.com/matzehuels/cheertower/pkg/formation"
	"github.com/matzehuels/cheertower/pkg/pipeline"
	"github.com/matzehuels/cheertower/pkg/render"
	"github.com/matzehuels/cheertower/pkg/routine"
	"github.com/matzehuels/cheertower/pkg/timing"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// Page
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, http.StatusOK, render.NewPage(routine.Request{}, nil, ""))
}

// handleCompose serves the form post. Errors are shown on the page with
// the form still filled in.
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	req, err := formRequest(r)
	if err != nil {
		s.writePage(w, r, errors.HTTPStatus(err), render.NewPage(req, nil, errors.UserMessage(err)))
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{Request: req, Format: render.FormatHTML})
	if err != nil {
		msg := errors.UserMessage(err)
		if errors.HTTPStatus(err) >= http.StatusInternalServerError {
			s.logger.Error("compose failed", "err", err, "request_id", requestID(r))
			msg = "Something went wrong. Please try again."
		}
		s.writePage(w, r, errors.HTTPStatus(err), render.NewPage(req, nil, msg))
		return
	}
	setCacheHeader(w, res.CacheInfo.RenderHit)
	writeText(w, http.StatusOK, render.ContentTypes[render.FormatHTML], res.Artifact)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, p render.Page) {
	data, err := render.HTML(p)
	if err != nil {
		writeErr(w, r, err, s.logger)
		return
	}
	writeText(w, status, render.ContentTypes[render.FormatHTML], data)
}

// formRequest reads the builder form. The partially filled request is
// returned with any error so the page can echo it back.
func formRequest(r *http.Request) (routine.Request, error) {
	if err := r.ParseForm(); err != nil {
		return routine.Request{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid form data")
	}
	req := routine.Request{
		Level:    r.PostForm.Get("level"),
		Focus:    r.PostForm.Get("focus"),
		Sections: r.PostForm["sections"],
	}

	var err error
	if req.TeamSize, err = formInt(r, "team_size", errors.ErrCodeInvalidTeamSize, "team size"); err != nil {
		return req, err
	}
	if req.LengthMinutes, err = formInt(r, "length", errors.ErrCodeInvalidLength, "length"); err != nil {
		return req, err
	}
	return req, nil
}

func formInt(r *http.Request, key string, code errors.Code, field string) (int, error) {
	raw := strings.TrimSpace(r.PostForm.Get(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(code, "%s must be a whole number, got %q", field, raw)
	}
	return n, nil
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	}, s.logger)
}

// =============================================================================
// Routines API
// =============================================================================

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routine.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeErr(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body: %v", err), s.logger)
		return
	}

	save, err := queryBool(r, "save")
	if err != nil {
		writeErr(w, r, err, s.logger)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Request: req,
		Format:  queryFormat(r),
		Save:    save,
	})
	if err != nil {
		writeErr(w, r, err, s.logger)
		return
	}

	status := http.StatusOK
	if res.Saved {
		status = http.StatusCreated
		w.Header().Set("Location", "/api/routines/"+res.Routine.ID)
	}
	setCacheHeader(w, res.CacheInfo.RenderHit)
	writeText(w, status, render.ContentTypes[res.Format], res.Artifact)
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErr(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive number, got %q", raw), s.logger)
			return
		}
		limit = n
	}

	rts, err := s.runner.List(r.Context(), limit)
	if err != nil {
		writeErr(w, r, err, s.logger)
		return
	}
	if rts == nil {
		rts = []*routine.Routine{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"routines": rts}, s.logger)
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runner.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err, s.logger)
		return
	}

	format := queryFormat(r)
	data, err := s.runner.Render(r.Context(), rt, format)
	if err != nil {
		writeErr(w, r, err, s.logger)
		return
	}
	writeText(w, http.StatusOK, render.ContentTypes[format], data)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, r, err, s.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Formations and Timing
// =============================================================================

func (s *Server) handleFormation(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("team_size")
	teamSize, err := strconv.Atoi(raw)
	if err != nil {
		writeErr(w, r, errors.New(errors.ErrCodeInvalidTeamSize, "team_size must be a whole number, got %q", raw), s.logger)
		return
	}

	c := formation.ParseCategory(chi.URLParam(r, "category"))
	d, hit, err := s.runner.Formation(r.Context(), teamSize, c)
	if err != nil {
		writeErr(w, r, err, s.logger)
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("X-Formation-Category", d.Category.String())

	if r.URL.Query().Get("format") == render.FormatJSON {
		writeJSON(w, http.StatusOK, render.NewFormationDoc(d), s.logger)
		return
	}
	writeText(w, http.StatusOK, render.ContentTypes[render.FormatText], []byte(d.String()+"\n"))
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "seconds")
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		writeErr(w, r, errors.New(errors.ErrCodeInvalidInput, "seconds must be a non-negative whole number, got %q", raw), s.logger)
		return
	}

	label := timing.FormatTime(seconds)
	if r.URL.Query().Get("format") == render.FormatJSON {
		writeJSON(w, http.StatusOK, map[string]any{
			"seconds": seconds,
			"counts":  timing.CountsOfEight(seconds),
			"label":   label,
		}, s.logger)
		return
	}
	writeText(w, http.StatusOK, render.ContentTypes[render.FormatText], []byte(label+"\n"))
}

// =============================================================================
// Helpers
// =============================================================================

// queryFormat returns ?format=, defaulting to JSON for the API.
// Validation happens in the pipeline.
func queryFormat(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return render.FormatJSON
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be true or false, got %q", key, raw)
	}
	return b, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
		return
	}
	w.Header().Set("X-Cache", "MISS")
}
