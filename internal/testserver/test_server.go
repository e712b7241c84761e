// Package testserver runs a full HTTP MCP server over SQLite for end-to-end
// tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/recordkeep/internal/domain/rent"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
	"github.com/rpggio/recordkeep/internal/mcp"
	"github.com/rpggio/recordkeep/internal/metrics"
	"github.com/rpggio/recordkeep/internal/repository"
	"github.com/rpggio/recordkeep/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Keys    *sqlite.APIKeyRepository
	Metrics *metrics.Collector
}

// New starts an auth-enabled server. Register callers with AddAPIKey.
func New(t *testing.T, policy timeentry.ApprovalPolicy) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(context.Background(), nil))

	store := sqlite.NewRecordStore(db)
	keys := sqlite.NewAPIKeyRepository(db)
	collector := metrics.NewCollector()

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Rent:        rent.NewService(repository.NewCollection[rent.Agreement](store, rent.Namespace), nil),
			TimeEntries: timeentry.NewService(repository.NewCollection[timeentry.Entry](store, timeentry.Namespace), policy, nil),
		},
		Resolver:      keys,
		AuthEnabled:   true,
		TransportMode: "http",
		Metrics:       collector,
	})

	handler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)
	httpServer := httptest.NewServer(handler)

	t.Cleanup(func() {
		httpServer.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:  httpServer,
		DB:      db,
		Keys:    keys,
		Metrics: collector,
	}
}

func (ts *TestServer) AddAPIKey(t *testing.T, token, principal string) {
	t.Helper()
	require.NoError(t, ts.Keys.AddAPIKey(context.Background(), token, principal, "test"))
}

// Connect opens a client session that authenticates with token.
func (ts *TestServer) Connect(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()

	session, err := ts.TryConnect(context.Background(), token)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

// TryConnect is Connect without assertions.
func (ts *TestServer) TryConnect(ctx context.Context, token string) (*sdkmcp.ClientSession, error) {
	transport := &sdkmcp.StreamableClientTransport{
		Endpoint: ts.Server.URL,
		HTTPClient: &http.Client{
			Transport: bearerTransport{token: token, base: http.DefaultTransport},
		},
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "testserver-client", Version: "0.0.1"}, nil)
	return client.Connect(ctx, transport, nil)
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return b.base.RoundTrip(req)
}
