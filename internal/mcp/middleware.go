package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/recordkeep/internal/domain/access"
	"github.com/rpggio/recordkeep/internal/repository"
)

type contextKey int

const principalKey contextKey = iota

// getPrincipal extracts the authenticated caller from context.
func getPrincipal(ctx context.Context) access.Principal {
	v, _ := ctx.Value(principalKey).(access.Principal)
	return v
}

func withPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, access.Principal(principal))
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver repository.PrincipalResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			principal, err := resolver.ResolvePrincipal(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if principal == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			return next(withPrincipal(ctx, principal), method, req)
		}
	}
}

// noAuthMiddleware injects a default principal when auth is disabled.
func noAuthMiddleware(defaultPrincipal string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			return next(withPrincipal(ctx, defaultPrincipal), method, req)
		}
	}
}
