package mcp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/roadmap"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlanner struct {
	companies []domain.Company
	err       error
}

func (p stubPlanner) Companies(ctx context.Context) ([]domain.Company, error) {
	return p.companies, p.err
}

func (p stubPlanner) BuildRoadmap(ctx context.Context, ids []string) (*domain.Roadmap, error) {
	if len(ids) > domain.MaxSelection {
		return nil, domain.ErrSelectionLimit
	}
	picked := domain.CompaniesByID(p.companies, ids)
	if len(picked) != len(ids) {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, ids)
	}
	return roadmap.Build(picked, time.Unix(0, 0))
}

func catalog() []domain.Company {
	return []domain.Company{
		{ID: "a", Name: "Acme", Position: "SRE", Domain: "Cloud", UGCompensation: 20, DSALevel: 2},
		{ID: "b", Name: "Globex", Position: "ML Engineer", Domain: "AI", UGCompensation: 80, DSALevel: 3},
	}
}

func TestListCompanies(t *testing.T) {
	s := NewServer(stubPlanner{companies: catalog()}, nil)
	ctx := context.Background()

	res, err := s.handleListCompanies(ctx, mcp.CallToolRequest{}, ListCompaniesArgs{})
	require.NoError(t, err)
	assert.Len(t, res.Companies, 2)
	assert.Equal(t, []string{"Cloud", "AI"}, res.Domains)

	res, err = s.handleListCompanies(ctx, mcp.CallToolRequest{}, ListCompaniesArgs{Search: "ml", DSALevel: 3})
	require.NoError(t, err)
	require.Len(t, res.Companies, 1)
	assert.Equal(t, "b", res.Companies[0].ID)

	res, err = s.handleListCompanies(ctx, mcp.CallToolRequest{}, ListCompaniesArgs{Domain: "all", MaxPay: 50})
	require.NoError(t, err)
	require.Len(t, res.Companies, 1)
	assert.Equal(t, "a", res.Companies[0].ID)

	_, err = s.handleListCompanies(ctx, mcp.CallToolRequest{}, ListCompaniesArgs{DSALevel: 7})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.handleListCompanies(ctx, mcp.CallToolRequest{}, ListCompaniesArgs{MinPay: 60, MaxPay: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListCompanies_RemoteFailure(t *testing.T) {
	s := NewServer(stubPlanner{err: domain.ErrRemote}, nil)
	_, err := s.handleListCompanies(context.Background(), mcp.CallToolRequest{}, ListCompaniesArgs{})
	assert.ErrorIs(t, err, domain.ErrRemote)
}

func TestBuildRoadmap(t *testing.T) {
	s := NewServer(stubPlanner{companies: catalog()}, nil)
	ctx := context.Background()

	res, err := s.handleBuildRoadmap(ctx, mcp.CallToolRequest{}, BuildRoadmapArgs{CompanyIDs: " a, b ,"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, res.Roadmap.CompanyNames)
	assert.Len(t, res.Roadmap.Milestones, 5)
	assert.Contains(t, res.Markdown, "Acme, Globex")

	_, err = s.handleBuildRoadmap(ctx, mcp.CallToolRequest{}, BuildRoadmapArgs{CompanyIDs: "a,b,a,b"})
	assert.ErrorIs(t, err, domain.ErrSelectionLimit)

	_, err = s.handleBuildRoadmap(ctx, mcp.CallToolRequest{}, BuildRoadmapArgs{})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}
