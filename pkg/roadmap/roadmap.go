package roadmap

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
)

var (
	// NoticeGenerated is shown once a roadmap is built.
	NoticeGenerated = domain.Info("Roadmap generated!", "Your personalized career roadmap is ready")

	noticeEmpty = domain.Warning("No companies selected", "Please select at least one company to generate a roadmap")
)

// Build returns the five-milestone roadmap for companies, in the given order.
// Only the second milestone mentions the companies, by name.
func Build(companies []domain.Company, now time.Time) (*domain.Roadmap, error) {
	if len(companies) == 0 {
		return nil, domain.WithNotice(domain.ErrEmptySelection, noticeEmpty)
	}

	ids := make([]string, len(companies))
	names := make([]string, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
		names[i] = c.Name
	}

	milestones := make([]domain.Milestone, len(templates))
	for i, t := range templates {
		milestones[i] = domain.Milestone{
			ID:          strconv.Itoa(i + 1),
			Title:       t.title,
			Description: t.describe(names),
			Order:       i + 1,
			Resources:   append([]domain.Resource(nil), t.resources...),
		}
	}

	return &domain.Roadmap{
		CompanyIDs:   ids,
		CompanyNames: names,
		Milestones:   milestones,
		GeneratedAt:  now.UTC(),
	}, nil
}

// ToggleMilestoneCompletion flips the completion flag of milestone id and
// returns its new value. No other milestone is touched.
func ToggleMilestoneCompletion(r *domain.Roadmap, id string) (bool, error) {
	if r != nil {
		for i := range r.Milestones {
			if r.Milestones[i].ID == id {
				r.Milestones[i].Completed = !r.Milestones[i].Completed
				return r.Milestones[i].Completed, nil
			}
		}
	}
	return false, fmt.Errorf("%w: %q", domain.ErrMilestoneNotFound, id)
}

// Progress counts completed milestones.
func Progress(r *domain.Roadmap) (done, total int) {
	if r == nil {
		return 0, 0
	}
	for _, m := range r.Milestones {
		if m.Completed {
			done++
		}
	}
	return done, len(r.Milestones)
}
