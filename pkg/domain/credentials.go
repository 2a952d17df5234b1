package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Record is implemented by every per-user collection row.
type Record interface {
	RecordID() string
	OwnerID() string
}

// Education is a row of the education table.
type Education struct {
	ID           string `json:"id,omitempty"`
	UserID       string `json:"user_id"`
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	Location     string `json:"location,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date,omitempty"`
	Grade        string `json:"grade,omitempty"`
	Activities   string `json:"activities,omitempty"`
	Description  string `json:"description,omitempty"`
}

func (e Education) RecordID() string { return e.ID }
func (e Education) OwnerID() string  { return e.UserID }

// Validate checks the fields the form requires.
func (e Education) Validate() error {
	return required(map[string]string{"school": e.School, "degree": e.Degree, "start_date": e.StartDate})
}

// Experience is a row of the experiences table.
type Experience struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

func (e Experience) RecordID() string { return e.ID }
func (e Experience) OwnerID() string  { return e.UserID }

// Validate checks the fields the form requires.
func (e Experience) Validate() error {
	return required(map[string]string{"title": e.Title, "company": e.Company, "start_date": e.StartDate})
}

// Certification is a row of the licenses_certifications table.
type Certification struct {
	ID             string `json:"id,omitempty"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Issuer         string `json:"issuer"`
	IssueDate      string `json:"issue_date"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	CredentialID   string `json:"credential_id,omitempty"`
	CredentialURL  string `json:"credential_url,omitempty"`
	FileURL        string `json:"file_url,omitempty"`
	FilePath       string `json:"file_path,omitempty"`
}

func (c Certification) RecordID() string { return c.ID }
func (c Certification) OwnerID() string  { return c.UserID }

// Validate checks the fields the form requires.
func (c Certification) Validate() error {
	return required(map[string]string{"name": c.Name, "issuer": c.Issuer, "issue_date": c.IssueDate})
}

// Project is a row of the projects table.
type Project struct {
	ID           string   `json:"id,omitempty"`
	UserID       string   `json:"user_id"`
	Name         string   `json:"name"`
	Type         string   `json:"type,omitempty"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Ongoing      bool     `json:"ongoing"`
	RepoURL      string   `json:"repo_url,omitempty"`
	DemoURL      string   `json:"demo_url,omitempty"`
}

func (p Project) RecordID() string { return p.ID }
func (p Project) OwnerID() string  { return p.UserID }

// Skill is a row of the skills table.
type Skill struct {
	ID       string `json:"id,omitempty"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Verified bool   `json:"verified"`
}

func (s Skill) RecordID() string { return s.ID }
func (s Skill) OwnerID() string  { return s.UserID }

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
}
