package roadmap

import (
	"fmt"
	"strings"

	"github.com/aretw0/mentorai/pkg/domain"
)

// Markdown renders r as a document suitable for download or terminal display.
func Markdown(r *domain.Roadmap) string {
	v := NewView(r)
	var b strings.Builder
	if v.Empty != nil {
		fmt.Fprintf(&b, "# %s\n\n%s\n", v.Empty.Title, v.Empty.Description)
		return b.String()
	}

	fmt.Fprintf(&b, "# %s\n\n", v.Heading)
	fmt.Fprintf(&b, "%s: %s.\n\n", v.Subtitle, strings.Join(r.CompanyNames, ", "))
	fmt.Fprintf(&b, "Progress: %d/%d milestones completed.\n", v.Completed, v.Total)

	for _, m := range r.Milestones {
		box := " "
		if m.Completed {
			box = "x"
		}
		fmt.Fprintf(&b, "\n## %d. %s\n\n- [%s] %s\n", m.Order, m.Title, box, m.Description)
		if len(m.Resources) == 0 {
			continue
		}
		b.WriteString("\n| Resource | Type |\n|---|---|\n")
		for _, res := range m.Resources {
			fmt.Fprintf(&b, "| [%s](%s) | %s |\n", res.Title, res.URL, res.Type)
		}
	}
	return b.String()
}
