package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/patchplan/pkg/buildinfo"
	"github.com/matzehuels/patchplan/pkg/errors"
	"github.com/matzehuels/patchplan/pkg/pipeline"
	"github.com/matzehuels/patchplan/pkg/render"
	"github.com/matzehuels/patchplan/pkg/scenario"
	"github.com/matzehuels/patchplan/pkg/world"
)

// PlanRequest is the body of POST /v1/plan.
type PlanRequest struct {
	Scenario scenario.Scenario `json:"scenario"`

	// Formats lists extra renderings to include: "text" and/or "svg".
	// The response itself is the JSON rendering.
	Formats []string `json:"formats,omitempty"`
}

// PlanResponse is the body of a successful plan run.
type PlanResponse struct {
	*pipeline.Result

	// Removed lists the obstacles cleared by the run.
	Removed []world.Obstacle `json:"removed"`

	// Artifacts holds the requested renderings keyed by format.
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	for _, f := range req.Formats {
		if f != pipeline.FormatText && f != pipeline.FormatSVG {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (must be text or svg)", f))
			return
		}
	}

	grid, field, opts, err := req.Scenario.Build(s.catalog)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Logger = s.logger.With("request", w.Header().Get(RequestIDHeader))

	res, err := s.runner.Execute(r.Context(), grid, field, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := PlanResponse{Result: res, Removed: grid.Removed()}
	if resp.Removed == nil {
		resp.Removed = []world.Obstacle{}
	}
	if len(req.Formats) > 0 {
		scene := res.Scene(field, grid.Obstacles(), render.GlyphsFrom(s.catalog))
		artifacts, err := pipeline.Render(res, scene, req.Formats)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render"))
			return
		}
		resp.Artifacts = make(map[string]string, len(artifacts))
		for f, data := range artifacts {
			resp.Artifacts[f] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
