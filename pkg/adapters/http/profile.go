package http

import (
	"fmt"
	"mime"
	"net/http"

	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/go-chi/chi/v5"
)

const maxUpload = 10 << 20

// GetProfile handles GET /api/profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.App.Profiles().Get(r.Context(), session(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetPublicProfile handles GET /api/in/{username}.
func (s *Server) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.App.Profiles().Public(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetSettings handles GET /api/settings.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.App.Settings().Load(r.Context(), session(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// PutSettings handles PUT /api/settings. The row id and owner come from the
// stored settings, never from the body.
func (s *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	var body domain.Settings
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	uid := session(r).UserID
	cur, err := s.App.Settings().Load(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur.EmailNotifications = body.EmailNotifications
	cur.PublicProfile = body.PublicProfile
	cur.AILearningAssistant = body.AILearningAssistant

	res, err := s.App.Settings().Save(r.Context(), cur)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ToggleSetting handles POST /api/settings/{key} with {"value": bool}.
func (s *Server) ToggleSetting(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value bool `json:"value"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	key := domain.SettingKey(chi.URLParam(r, "key"))
	res, err := s.App.Settings().Toggle(r.Context(), session(r).UserID, key, body.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListEducation handles GET /api/education.
func (s *Server) ListEducation(w http.ResponseWriter, r *http.Request) {
	rows, err := s.App.Credentials().ListEducation(r.Context(), session(r).UserID)
	s.respond(w, r, http.StatusOK, rows, err)
}

// AddEducation handles POST /api/education.
func (s *Server) AddEducation(w http.ResponseWriter, r *http.Request) {
	var body domain.Education
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	row, err := s.App.Credentials().AddEducation(r.Context(), session(r).UserID, body)
	s.respond(w, r, http.StatusCreated, row, err)
}

// DeleteEducation handles DELETE /api/education/{id}.
func (s *Server) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	err := s.App.Credentials().DeleteEducation(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	s.respondEmpty(w, r, err)
}

// ListExperiences handles GET /api/experiences.
func (s *Server) ListExperiences(w http.ResponseWriter, r *http.Request) {
	rows, err := s.App.Credentials().ListExperiences(r.Context(), session(r).UserID)
	s.respond(w, r, http.StatusOK, rows, err)
}

// AddExperience handles POST /api/experiences.
func (s *Server) AddExperience(w http.ResponseWriter, r *http.Request) {
	var body domain.Experience
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	row, err := s.App.Credentials().AddExperience(r.Context(), session(r).UserID, body)
	s.respond(w, r, http.StatusCreated, row, err)
}

// DeleteExperience handles DELETE /api/experiences/{id}.
func (s *Server) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	err := s.App.Credentials().DeleteExperience(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	s.respondEmpty(w, r, err)
}

// ListCertifications handles GET /api/certifications.
func (s *Server) ListCertifications(w http.ResponseWriter, r *http.Request) {
	rows, err := s.App.Credentials().ListCertifications(r.Context(), session(r).UserID)
	s.respond(w, r, http.StatusOK, rows, err)
}

// AddCertification handles POST /api/certifications. It accepts either a JSON
// row or a multipart form whose "file" part is uploaded alongside the row.
func (s *Server) AddCertification(w http.ResponseWriter, r *http.Request) {
	var (
		body domain.Certification
		file *credentials.File
	)
	mediatype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediatype == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: invalid form: %v", domain.ErrValidation, err))
			return
		}
		body = domain.Certification{
			Name:           r.FormValue("name"),
			Issuer:         r.FormValue("issuer"),
			IssueDate:      r.FormValue("issue_date"),
			ExpirationDate: r.FormValue("expiration_date"),
			CredentialID:   r.FormValue("credential_id"),
			CredentialURL:  r.FormValue("credential_url"),
		}
		f, hdr, err := r.FormFile("file")
		switch {
		case err == nil:
			defer f.Close()
			file = &credentials.File{Name: hdr.Filename, ContentType: hdr.Header.Get("Content-Type"), Body: f}
		case err != http.ErrMissingFile:
			s.writeError(w, r, fmt.Errorf("%w: invalid file: %v", domain.ErrValidation, err))
			return
		}
	} else if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	row, err := s.App.Credentials().AddCertification(r.Context(), session(r).UserID, body, file)
	s.respond(w, r, http.StatusCreated, row, err)
}

// DeleteCertification handles DELETE /api/certifications/{id}.
func (s *Server) DeleteCertification(w http.ResponseWriter, r *http.Request) {
	err := s.App.Credentials().DeleteCertification(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	s.respondEmpty(w, r, err)
}

// ListProjects handles GET /api/projects.
func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	rows, err := s.App.Credentials().ListProjects(r.Context(), session(r).UserID)
	s.respond(w, r, http.StatusOK, rows, err)
}

// ListSkills handles GET /api/skills.
func (s *Server) ListSkills(w http.ResponseWriter, r *http.Request) {
	rows, err := s.App.Credentials().ListSkills(r.Context(), session(r).UserID)
	s.respond(w, r, http.StatusOK, rows, err)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, v)
}

func (s *Server) respondEmpty(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
