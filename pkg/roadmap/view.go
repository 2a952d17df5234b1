package roadmap

import (
	"fmt"

	"github.com/aretw0/mentorai/pkg/domain"
)

// CallToAction replaces the roadmap when nothing is selected.
type CallToAction struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Target      string `json:"target"`
}

// EmptySelection points the user back at the company browser.
var EmptySelection = CallToAction{
	Title:       "No companies selected",
	Description: "Select at least one company from the browse tab to generate a personalized roadmap",
	Action:      "Browse Companies",
	Target:      "/roadmap",
}

// View is what the roadmap screen renders: either Empty or a roadmap.
type View struct {
	Empty     *CallToAction   `json:"empty,omitempty"`
	Heading   string          `json:"heading,omitempty"`
	Subtitle  string          `json:"subtitle,omitempty"`
	Roadmap   *domain.Roadmap `json:"roadmap,omitempty"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
}

// NewView renders r. A nil or company-less roadmap yields the call to action.
func NewView(r *domain.Roadmap) View {
	if r == nil || len(r.CompanyIDs) == 0 {
		cta := EmptySelection
		return View{Empty: &cta}
	}
	done, total := Progress(r)
	return View{
		Heading:   "Your Career Roadmap",
		Subtitle:  basedOn(len(r.CompanyIDs)),
		Roadmap:   r,
		Completed: done,
		Total:     total,
	}
}

func basedOn(n int) string {
	noun := "companies"
	if n == 1 {
		noun = "company"
	}
	return fmt.Sprintf("Based on %d selected %s", n, noun)
}
