package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/recordkeep/internal/apikey"
	"github.com/rpggio/recordkeep/internal/config"
	"github.com/rpggio/recordkeep/internal/domain/rent"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
	"github.com/rpggio/recordkeep/internal/mcp"
	"github.com/rpggio/recordkeep/internal/metrics"
	"github.com/rpggio/recordkeep/internal/policy"
	"github.com/rpggio/recordkeep/internal/repository"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "recordkeep: %v\n", err)
		os.Exit(1)
	}
}

// run is the whole server lifetime. Deferred cleanup always runs because
// only main exits the process.
func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("recordkeep", flag.ContinueOnError)
	flags.SetOutput(stderr)
	issueKey := flags.String("issue-key", "", "create an API key for this principal, print it, and exit")
	keyDescription := flags.String("key-description", "", "description stored with -issue-key")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := stdout
	if cfg.Transport.Mode == config.TransportStdio || *issueKey != "" {
		logWriter = stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx := context.Background()
	store, err := openBackend(ctx, cfg.DB, logger)
	if err != nil {
		return fmt.Errorf("open storage (%s): %w", cfg.DB.Driver, err)
	}
	defer store.Close()

	if *issueKey != "" {
		token, err := issueAPIKey(ctx, store, *issueKey, *keyDescription)
		if err != nil {
			return fmt.Errorf("issue api key: %w", err)
		}
		fmt.Fprintln(stdout, token)
		return nil
	}

	services, err := buildServices(store.records, cfg.Approval, logger)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}

	collector := metrics.NewCollector()
	var resolver repository.PrincipalResolver
	if store.keys != nil {
		resolver = store.keys
	}
	mcpServer := mcp.NewServer(mcp.Config{
		Services:         services,
		Resolver:         resolver,
		AuthEnabled:      cfg.Auth.Enabled,
		TransportMode:    cfg.Transport.Mode,
		DefaultPrincipal: cfg.Auth.Principal,
		Metrics:          collector,
		Logger:           logger,
	})

	if cfg.Transport.Mode == config.TransportStdio {
		return runStdioMode(logger, mcpServer)
	}
	return runHTTPMode(logger, mcpServer, collector, cfg.Server.Host, cfg.Server.Port, cfg.Auth.Enabled)
}

// buildServices wires both record families onto one store.
func buildServices(records repository.RecordStore, approval config.ApprovalConfig, logger *slog.Logger) (mcp.Services, error) {
	var approvals timeentry.ApprovalPolicy
	if approval.Policy != "" {
		p, err := policy.NewExprPolicy(approval.Policy)
		if err != nil {
			return mcp.Services{}, err
		}
		approvals = p
		logger.Info("time approval policy enabled", "policy", p.Expression())
	}

	return mcp.Services{
		Rent: rent.NewService(
			repository.NewCollection[rent.Agreement](records, rent.Namespace),
			logger.With("service", "rent"),
		),
		TimeEntries: timeentry.NewService(
			repository.NewCollection[timeentry.Entry](records, timeentry.Namespace),
			approvals,
			logger.With("service", "time"),
		),
	}, nil
}

func issueAPIKey(ctx context.Context, store *backend, principal, description string) (string, error) {
	if store.keys == nil {
		return "", errors.New("api keys require a sql driver")
	}
	token, err := apikey.Generate()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := store.keys.AddAPIKey(ctx, token, principal, description); err != nil {
		return "", err
	}
	return token, nil
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	transport := &sdkmcp.StdioTransport{}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

func runHTTPMode(logger *slog.Logger, mcpServer *sdkmcp.Server, collector *metrics.Collector, host string, port int, authEnabled bool) error {
	router, err := newRouter(mcpServer, collector)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", authEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	return waitForShutdown(logger, httpServer, serveErr)
}

// newRouter serves MCP over streamable HTTP next to health and metrics.
func newRouter(mcpServer *sdkmcp.Server, collector *metrics.Collector) (*http.ServeMux, error) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	metricsHandler, err := metrics.Handler(collector)
	if err != nil {
		return nil, err
	}

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.Handle("/metrics", metricsHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return router, nil
}

func waitForShutdown(logger *slog.Logger, server *http.Server, serveErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
