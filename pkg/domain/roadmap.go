package domain

import "time"

// ResourceType classifies a learning resource.
type ResourceType string

const (
	ResourceVideo   ResourceType = "video"
	ResourceArticle ResourceType = "article"
	ResourceCourse  ResourceType = "course"
	ResourceBook    ResourceType = "book"
)

// Resource is a link attached to a milestone.
type Resource struct {
	Title string       `json:"title"`
	URL   string       `json:"url"`
	Type  ResourceType `json:"type"`
}

// Milestone is one step of a roadmap. Completed is view state and never persisted remotely.
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Order       int        `json:"order"`
	Resources   []Resource `json:"resources"`
}

// Roadmap is the plan built for a set of selected companies.
type Roadmap struct {
	CompanyIDs   []string    `json:"company_ids"`
	CompanyNames []string    `json:"company_names"`
	Milestones   []Milestone `json:"milestones"`
	GeneratedAt  time.Time   `json:"generated_at"`
}
