package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/mentorai"
	"github.com/aretw0/mentorai/internal/presentation/graph"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/roadmap"
	"github.com/go-chi/chi/v5"
)

// SignOut handles POST /api/auth/signout: the token is revoked, the workspace
// dropped and the session cookie cleared.
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.App.SignOut(r.Context(), session(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: s.cookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

// GetOnboarding handles GET /api/onboarding.
func (s *Server) GetOnboarding(w http.ResponseWriter, r *http.Request) {
	view, err := s.App.Onboarding(r.Context(), session(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PostOnboarding handles POST /api/onboarding with one mentorai.OnboardingAction.
func (s *Server) PostOnboarding(w http.ResponseWriter, r *http.Request) {
	var act mentorai.OnboardingAction
	if err := decode(r, &act); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.App.Onboard(r.Context(), session(r), act)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListCompanies handles GET /api/companies.
func (s *Server) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.App.Companies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

// GetSelector handles GET /api/selector.
func (s *Server) GetSelector(w http.ResponseWriter, r *http.Request) {
	view, err := s.App.Selector(r.Context(), session(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PostSelector handles POST /api/selector with one mentorai.SelectorAction.
func (s *Server) PostSelector(w http.ResponseWriter, r *http.Request) {
	var act mentorai.SelectorAction
	if err := decode(r, &act); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.App.Select(r.Context(), session(r), act)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetRoadmap handles GET /api/roadmap.
func (s *Server) GetRoadmap(w http.ResponseWriter, r *http.Request) {
	view, err := s.App.Roadmap(r.Context(), session(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DownloadRoadmap handles GET /api/roadmap.md.
func (s *Server) DownloadRoadmap(w http.ResponseWriter, r *http.Request) {
	s.exportRoadmap(w, r, "text/markdown; charset=utf-8", "roadmap.md", roadmap.Markdown)
}

// RoadmapGraph handles GET /api/roadmap.mmd, a Mermaid flowchart of the roadmap.
func (s *Server) RoadmapGraph(w http.ResponseWriter, r *http.Request) {
	s.exportRoadmap(w, r, "text/vnd.mermaid; charset=utf-8", "roadmap.mmd", graph.GenerateMermaid)
}

func (s *Server) exportRoadmap(w http.ResponseWriter, r *http.Request, contentType, filename string, render func(*domain.Roadmap) string) {
	view, err := s.App.Roadmap(r.Context(), session(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if view.Roadmap == nil {
		s.writeError(w, r, fmt.Errorf("%w: no roadmap generated in this session", domain.ErrNotFound))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write([]byte(render(view.Roadmap)))
}

// ToggleMilestone handles POST /api/roadmap/milestones/{id}/toggle.
func (s *Server) ToggleMilestone(w http.ResponseWriter, r *http.Request) {
	view, err := s.App.ToggleMilestone(r.Context(), session(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// BuildRoadmapRequest is the body of POST /api/roadmaps.
type BuildRoadmapRequest struct {
	CompanyIDs []string `json:"company_ids"`
}

// BuildRoadmap handles POST /api/roadmaps: a roadmap for up to three company
// ids, without touching the session workspace.
func (s *Server) BuildRoadmap(w http.ResponseWriter, r *http.Request) {
	var body BuildRoadmapRequest
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	rm, err := s.App.BuildRoadmap(r.Context(), body.CompanyIDs)
	if errors.Is(err, domain.ErrEmptySelection) {
		writeJSON(w, http.StatusOK, roadmap.NewView(nil))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roadmap.NewView(rm))
}
