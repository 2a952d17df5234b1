package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorBody is the payload of a failed request.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Redirect  string         `json:"redirect,omitempty"`
	Notice    *domain.Notice `json:"notice,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}

// classify maps err onto a status, a code and, for the auth gates, the page the
// client should move to.
func classify(r *http.Request, err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "/login?redirectTo=" + url.QueryEscape(r.URL.Path)
	case errors.Is(err, domain.ErrNotOnboarded):
		return http.StatusForbidden, "not_onboarded", "/onboarding"
	case errors.Is(err, domain.ErrAlreadyOnboarded):
		return http.StatusConflict, "already_onboarded", "/roadmap"
	case errors.Is(err, domain.ErrSelectionLimit):
		return http.StatusUnprocessableEntity, "selection_limit", ""
	case errors.Is(err, domain.ErrEmptySelection):
		return http.StatusUnprocessableEntity, "empty_selection", ""
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation", ""
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrMilestoneNotFound),
		errors.Is(err, domain.ErrWorkspaceNotFound):
		return http.StatusNotFound, "not_found", ""
	case errors.Is(err, domain.ErrRemote):
		return http.StatusBadGateway, "remote", ""
	default:
		return http.StatusInternalServerError, "internal", ""
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, redirect := classify(r, err)
	body := ErrorBody{
		Code:      code,
		Message:   err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
		Redirect:  redirect,
	}
	if n, ok := domain.NoticeFrom(err); ok {
		body.Notice = &n
	}
	if errors.Is(err, domain.ErrRemote) {
		s.metrics.RemoteFailure(routePattern(r))
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "request_id", body.RequestID, "err", err)
		if status == http.StatusInternalServerError {
			body.Message = "internal error"
		}
	}
	writeJSON(w, status, errorEnvelope{Error: body})
}
