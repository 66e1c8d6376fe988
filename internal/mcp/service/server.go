// Package service hosts the MCP server for the methodology advisor:
// four read-only tools over the engine plus the catalog and compiled
// rules resources, served over stdio or streamable HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cprima/methodology-advisor/internal/engine"
	"github.com/cprima/methodology-advisor/internal/mcp/domain"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Methodology Advisor MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string // HTTP bind address; defaults to localhost:8081 for HTTP transport.
}

// Server hosts the MCP server over a serving engine.
type Server struct {
	mcpServer *mcp.Server
	engine    *engine.Engine
}

// New creates a configured MCP server bound to a serving engine.
func New(eng *engine.Engine) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler: completionHandler,
	})

	server := &Server{mcpServer: mcpServer, engine: eng}
	registerAdvisorTools(mcpServer, eng)
	registerCatalogResources(mcpServer, eng)

	return server, nil
}

func registerAdvisorTools(mcpServer *mcp.Server, eng *engine.Engine) {
	mcp.AddTool(mcpServer, domain.EvaluateGateTool(), domain.EvaluateGateHandler(eng))
	mcp.AddTool(mcpServer, domain.MigrateStateTool(), domain.MigrateStateHandler(eng))
	mcp.AddTool(mcpServer, domain.DiffCatalogsTool(), domain.DiffCatalogsHandler(eng))
	mcp.AddTool(mcpServer, domain.SuggestAdvisoryTool(), domain.SuggestAdvisoryHandler(eng))
}

func registerCatalogResources(mcpServer *mcp.Server, eng *engine.Engine) {
	mcpServer.AddResource(domain.CatalogCurrentResource(), domain.CatalogCurrentResourceHandler(eng))
	mcpServer.AddResource(domain.CatalogPreviousResource(), domain.CatalogPreviousResourceHandler(eng))
	mcpServer.AddResource(domain.CompiledRulesResource(), domain.CompiledRulesResourceHandler(eng))
}

// completionHandler handles completion/complete requests with empty results.
func completionHandler(ctx context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// Run creates and serves the MCP server until the context ends.
func Run(ctx context.Context, cfg Config, eng *engine.Engine) error {
	server, err := New(eng)
	if err != nil {
		return err
	}

	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.Serve(ctx)
	case TransportHTTP:
		return server.serveHTTP(ctx, cfg.HTTPAddr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if err := s.mcpServer.Run(ctx, transport); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	return nil
}

// serveHTTP serves MCP over streamable HTTP, binding to localhost by
// default.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	if addr == "" {
		addr = "localhost:8081"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("mcp http server listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
