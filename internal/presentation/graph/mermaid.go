package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/mentorai/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a roadmap. The selected
// companies form the start node and milestones follow in order:
// - Start: ((Circle))
// - Milestone with resources: [[Subroutine]]
// - Other milestones: [Rectangle]
// Completed milestones are styled as done and the first open one as current.
func GenerateMermaid(r *domain.Roadmap) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if r == nil {
		return sb.String()
	}

	start := "Targets"
	if len(r.CompanyNames) > 0 {
		start = strings.Join(r.CompanyNames, ", ")
	}
	sb.WriteString(fmt.Sprintf("    start((\"%s\"))\n", escapeLabel(start)))

	milestones := slices.Clone(r.Milestones)
	slices.SortStableFunc(milestones, func(a, b domain.Milestone) int { return a.Order - b.Order })

	prev := "start"
	for _, m := range milestones {
		id := sanitizeMermaidID(m.ID)
		opener, closer := "[", "]"
		if len(m.Resources) > 0 {
			opener, closer = "[[", "]]"
		}
		label := escapeLabel(m.Title)
		if n := len(m.Resources); n > 0 {
			label = fmt.Sprintf("%s <br/> %d resource%s", label, n, plural(n))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, id))
		prev = id
	}

	sb.WriteString("\n    %% Progress\n")
	// Force black text (color:#000) so labels stay readable on both themes.
	sb.WriteString("    classDef done fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	current := ""
	for _, m := range milestones {
		id := sanitizeMermaidID(m.ID)
		if m.Completed {
			sb.WriteString(fmt.Sprintf("    class %s done;\n", id))
			continue
		}
		if current == "" {
			current = id
		}
	}
	if current != "" {
		sb.WriteString(fmt.Sprintf("    class %s current;\n", current))
	}
	return sb.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return "m" + s
}
