package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/recordkeep/internal/domain/rent"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
	"github.com/rpggio/recordkeep/internal/metrics"
	"github.com/rpggio/recordkeep/internal/repository"
)

// RentService defines agreement operations needed by MCP.
type RentService interface {
	Create(ctx context.Context, req rent.CreateRequest) (*rent.Agreement, error)
	Activate(ctx context.Context, req rent.TransitionRequest) (*rent.Agreement, error)
	PayRent(ctx context.Context, req rent.TransitionRequest) (*rent.Agreement, error)
	Complete(ctx context.Context, req rent.TransitionRequest) (*rent.Agreement, error)
	Cancel(ctx context.Context, req rent.TransitionRequest) (*rent.Agreement, error)
	Get(ctx context.Context, id uint64) (*rent.Agreement, error)
}

// TimeEntryService defines time entry operations needed by MCP.
type TimeEntryService interface {
	Log(ctx context.Context, req timeentry.LogRequest) (*timeentry.Entry, error)
	Approve(ctx context.Context, req timeentry.ApproveRequest) (*timeentry.Entry, error)
	IsApproved(ctx context.Context, id uint64) (bool, error)
	Get(ctx context.Context, id uint64) (*timeentry.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Rent        RentService
	TimeEntries TimeEntryService
}

// Config contains server configuration.
type Config struct {
	Services         Services
	Resolver         repository.PrincipalResolver
	AuthEnabled      bool
	TransportMode    string // "stdio" or "http"
	DefaultPrincipal string // caller identity when auth is off
	Metrics          *metrics.Collector
	Logger           *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "recordkeep",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is always local: no bearer tokens to check.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware(cfg.DefaultPrincipal))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, toolDeps{
		services: cfg.Services,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	})

	return server
}
