package mcp

import (
	"context"
	"errors"
	"net/http"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/recordkeep/internal/domain/access"
	"github.com/rpggio/recordkeep/internal/repository"
	"github.com/rpggio/recordkeep/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func capturePrincipal(seen *access.Principal) sdkmcp.MethodHandler {
	return func(ctx context.Context, _ string, _ sdkmcp.Request) (sdkmcp.Result, error) {
		*seen = getPrincipal(ctx)
		return nil, nil
	}
}

func requestWithHeader(header http.Header) *sdkmcp.CallToolRequest {
	return &sdkmcp.CallToolRequest{Extra: &sdkmcp.RequestExtra{Header: header}}
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &mocks.PrincipalResolver{}
	resolver.On("ResolvePrincipal", mock.Anything, "good").Return("alice", nil)
	resolver.On("ResolvePrincipal", mock.Anything, "bad").Return("", repository.ErrInvalidToken)

	var seen access.Principal
	handler := authMiddleware(resolver)(capturePrincipal(&seen))
	ctx := context.Background()

	_, err := handler(ctx, "tools/call", requestWithHeader(http.Header{"Authorization": []string{"Bearer good"}}))
	require.NoError(t, err)
	require.Equal(t, access.Principal("alice"), seen)

	_, err = handler(ctx, "tools/call", requestWithHeader(http.Header{"Authorization": []string{"Bearer bad"}}))
	require.Error(t, err)
	require.True(t, errors.Is(err, repository.ErrInvalidToken))

	_, err = handler(ctx, "tools/call", requestWithHeader(http.Header{}))
	require.ErrorContains(t, err, "missing bearer token")

	_, err = handler(ctx, "tools/call", &sdkmcp.CallToolRequest{})
	require.ErrorContains(t, err, "missing headers")

	seen = ""
	_, err = handler(ctx, "ping", &sdkmcp.CallToolRequest{})
	require.NoError(t, err)
	require.Empty(t, seen)
}

func TestNoAuthMiddleware(t *testing.T) {
	var seen access.Principal
	handler := noAuthMiddleware("local")(capturePrincipal(&seen))

	_, err := handler(context.Background(), "tools/call", &sdkmcp.CallToolRequest{})
	require.NoError(t, err)
	require.Equal(t, access.Principal("local"), seen)
}
