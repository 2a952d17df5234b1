package domain

import (
	"slices"
	"strings"
	"time"
)

// Company is a catalog row describing a target position.
type Company struct {
	ID                  string            `json:"id"`
	Name                string            `json:"company_name"`
	Position            string            `json:"position"`
	Domain              string            `json:"domain"`
	CodingLanguages     map[string]string `json:"coding_languages,omitempty"`
	DSALevel            int               `json:"dsa_level"`
	SystemDesign        map[string]string `json:"system_design,omitempty"`
	NonTechnicalSkills  []string          `json:"non_technical_skills,omitempty"`
	UGCompensation      float64           `json:"ug_compensation"`
	PGCompensation      float64           `json:"pg_compensation"`
	KeyResponsibilities []string          `json:"key_responsibilities,omitempty"`
	SubjectsToStudy     []string          `json:"subjects_to_study,omitempty"`
	TechnicalQuestions  []string          `json:"technical_questions,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

// DefaultSalaryRange is the unfiltered compensation window.
var DefaultSalaryRange = [2]float64{0, 100}

// CompanyFilter holds the selector's active predicates. Nil pointers mean "any".
type CompanyFilter struct {
	SearchTerm  string     `json:"search_term"`
	Domain      *string    `json:"domain,omitempty"`
	SalaryRange [2]float64 `json:"salary_range"`
	DSALevel    *int       `json:"dsa_level,omitempty"`
}

// NewCompanyFilter returns a filter that matches every company with a default-range salary.
func NewCompanyFilter() CompanyFilter {
	return CompanyFilter{SalaryRange: DefaultSalaryRange}
}

// Predicate reports whether a company passes one filter criterion.
type Predicate func(Company) bool

// Predicates returns the active criteria. Each one is independent, so order does not matter.
func (f CompanyFilter) Predicates() []Predicate {
	var preds []Predicate
	if term := strings.ToLower(f.SearchTerm); term != "" {
		preds = append(preds, func(c Company) bool {
			return strings.Contains(strings.ToLower(c.Name), term) ||
				strings.Contains(strings.ToLower(c.Position), term)
		})
	}
	if f.Domain != nil {
		domain := *f.Domain
		preds = append(preds, func(c Company) bool { return c.Domain == domain })
	}
	lo, hi := f.SalaryRange[0], f.SalaryRange[1]
	preds = append(preds, func(c Company) bool {
		return c.UGCompensation >= lo && c.UGCompensation <= hi
	})
	if f.DSALevel != nil {
		level := *f.DSALevel
		preds = append(preds, func(c Company) bool { return c.DSALevel == level })
	}
	return preds
}

// Apply returns the companies matching every active predicate, preserving input order.
// The input slice is never modified.
func (f CompanyFilter) Apply(companies []Company) []Company {
	return Filter(companies, f.Predicates()...)
}

// Filter keeps the companies that satisfy all preds.
func Filter(companies []Company, preds ...Predicate) []Company {
	out := make([]Company, 0, len(companies))
next:
	for _, c := range companies {
		for _, p := range preds {
			if !p(c) {
				continue next
			}
		}
		out = append(out, c)
	}
	return out
}

// DistinctDomains lists the domains present in companies, in first-seen order.
func DistinctDomains(companies []Company) []string {
	var out []string
	for _, c := range companies {
		if c.Domain != "" && !slices.Contains(out, c.Domain) {
			out = append(out, c.Domain)
		}
	}
	return out
}

// CompaniesByID picks the records for ids, in ids order, skipping unknown ids.
func CompaniesByID(companies []Company, ids []string) []Company {
	out := make([]Company, 0, len(ids))
	for _, id := range ids {
		for _, c := range companies {
			if c.ID == id {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
