// Package profile reads user profiles: the caller's own profile and the public
// page published under a username.
package profile

import (
	"context"
	"fmt"

	"github.com/aretw0/mentorai/pkg/credentials"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// Service aggregates a profile with its credential collections.
type Service struct {
	profiles    ports.ProfileStore
	credentials *credentials.Service
}

// NewService creates a Service.
func NewService(profiles ports.ProfileStore, creds *credentials.Service) *Service {
	return &Service{profiles: profiles, credentials: creds}
}

// Get returns the profile of userID.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

// Public returns everything shown on the public page of username. The five
// collections are fetched concurrently; any failure fails the page. An unknown
// username yields domain.ErrNotFound.
func (s *Service) Public(ctx context.Context, username string) (*domain.PublicProfile, error) {
	p, err := s.profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", username, err)
	}

	out := &domain.PublicProfile{Profile: *p}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Experiences, err = s.credentials.ListExperiences(gctx, p.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Education, err = s.credentials.ListEducation(gctx, p.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Certifications, err = s.credentials.ListCertifications(gctx, p.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Projects, err = s.credentials.ListProjects(gctx, p.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Skills, err = s.credentials.ListSkills(gctx, p.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("public profile %q: %w", username, err)
	}
	// The public page never exposes the e-mail address.
	out.Profile.Email = ""
	return out, nil
}
