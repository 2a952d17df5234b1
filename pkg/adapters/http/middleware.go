package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// authenticate resolves the access token into a domain.Session and stores it in
// the request context. Requests without a valid token get a 401 with a login
// redirect that brings the user back.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.App.Authenticate(r.Context(), s.token(r))
		if err != nil {
			// An auth service outage is a remote failure, not a bad token.
			if !errors.Is(err, domain.ErrRemote) {
				err = fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
			}
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.ContextWithSession(r.Context(), sess)))
	})
}

func (s *Server) token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if c, err := r.Cookie(s.cookie); err == nil {
		return c.Value
	}
	return ""
}

func session(r *http.Request) *domain.Session {
	sess, _ := domain.SessionFromContext(r.Context())
	return sess
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := routePattern(r)
		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(r.Method, route, ww.Status(), elapsed)
		s.logger.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.writeError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// routePattern is the matched chi pattern, or the raw path before routing.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		return rc.RoutePattern()
	}
	return r.URL.Path
}
