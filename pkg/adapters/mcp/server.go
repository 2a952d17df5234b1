package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/mentorai"
	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/roadmap"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Planner is what the assistant tools need from the application.
type Planner interface {
	Companies(ctx context.Context) ([]domain.Company, error)
	BuildRoadmap(ctx context.Context, ids []string) (*domain.Roadmap, error)
}

var _ Planner = (*mentorai.App)(nil)

// ListCompaniesArgs filters the catalog the same way the company browser does.
type ListCompaniesArgs struct {
	Search   string  `json:"search,omitempty"`
	Domain   string  `json:"domain,omitempty"`
	MinPay   float64 `json:"min_compensation,omitempty"`
	MaxPay   float64 `json:"max_compensation,omitempty"`
	DSALevel int     `json:"dsa_level,omitempty"`
}

// CompaniesResponse is the structured result of list_companies.
type CompaniesResponse struct {
	Companies []domain.Company `json:"companies" jsonschema_description:"Companies matching the filters"`
	Domains   []string         `json:"domains" jsonschema_description:"Every domain present in the catalog"`
}

// BuildRoadmapArgs names up to three companies.
type BuildRoadmapArgs struct {
	CompanyIDs string `json:"company_ids"`
}

// RoadmapResponse is the structured result of build_roadmap.
type RoadmapResponse struct {
	Roadmap  *domain.Roadmap `json:"roadmap" jsonschema_description:"The generated roadmap"`
	Markdown string          `json:"markdown" jsonschema_description:"The roadmap rendered as Markdown"`
}

// Server exposes the catalog and the roadmap builder as MCP tools.
type Server struct {
	planner   Planner
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. A nil logger discards output.
func NewServer(planner Planner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		planner:   planner,
		logger:    logger,
		mcpServer: server.NewMCPServer("mentorai-mcp", strings.TrimSpace(mentorai.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_companies",
		mcp.WithDescription("List hiring companies, optionally filtered by search term, domain, compensation range and DSA difficulty (1-3)."),
		mcp.WithString("search", mcp.Description("Case-insensitive match on company name or position")),
		mcp.WithString("domain", mcp.Description("Exact domain, or 'all'")),
		mcp.WithNumber("min_compensation", mcp.Description("Lower bound of UG compensation (LPA)")),
		mcp.WithNumber("max_compensation", mcp.Description("Upper bound of UG compensation (LPA)")),
		mcp.WithNumber("dsa_level", mcp.Description("1 = easy, 2 = medium, 3 = hard")),
		mcp.WithOutputSchema[CompaniesResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListCompanies))

	roadmapTool := mcp.NewTool("build_roadmap",
		mcp.WithDescription("Build the five-milestone career roadmap for up to three companies."),
		mcp.WithString("company_ids", mcp.Required(), mcp.Description("Comma separated company ids (at most 3)")),
		mcp.WithOutputSchema[RoadmapResponse](),
	)
	s.mcpServer.AddTool(roadmapTool, mcp.NewStructuredToolHandler(s.handleBuildRoadmap))
}

func (s *Server) handleListCompanies(ctx context.Context, request mcp.CallToolRequest, args ListCompaniesArgs) (CompaniesResponse, error) {
	companies, err := s.planner.Companies(ctx)
	if err != nil {
		return CompaniesResponse{}, fmt.Errorf("list companies failed: %w", err)
	}

	f := domain.NewCompanyFilter()
	f.SearchTerm = args.Search
	if args.Domain != "" && args.Domain != "all" {
		d := args.Domain
		f.Domain = &d
	}
	if args.MinPay != 0 {
		f.SalaryRange[0] = args.MinPay
	}
	if args.MaxPay != 0 {
		f.SalaryRange[1] = args.MaxPay
	}
	if f.SalaryRange[0] > f.SalaryRange[1] {
		return CompaniesResponse{}, fmt.Errorf("%w: min_compensation above max_compensation", domain.ErrValidation)
	}
	if args.DSALevel != 0 {
		if args.DSALevel < 1 || args.DSALevel > 3 {
			return CompaniesResponse{}, fmt.Errorf("%w: dsa_level must be 1, 2 or 3", domain.ErrValidation)
		}
		l := args.DSALevel
		f.DSALevel = &l
	}

	return CompaniesResponse{
		Companies: f.Apply(companies),
		Domains:   domain.DistinctDomains(companies),
	}, nil
}

func (s *Server) handleBuildRoadmap(ctx context.Context, request mcp.CallToolRequest, args BuildRoadmapArgs) (RoadmapResponse, error) {
	var ids []string
	for _, id := range strings.Split(args.CompanyIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	r, err := s.planner.BuildRoadmap(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "MCP build_roadmap rejected", "ids", ids, "err", err)
		return RoadmapResponse{}, fmt.Errorf("build roadmap failed: %w", err)
	}
	return RoadmapResponse{Roadmap: r, Markdown: roadmap.Markdown(r)}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("mentorai://domains", "Career domains offered during onboarding",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(domain.Domains)
		if err != nil {
			return nil, fmt.Errorf("failed to encode domains: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "mentorai://domains",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
