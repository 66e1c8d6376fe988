package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cprima/methodology-advisor/internal/catalog"
	"github.com/cprima/methodology-advisor/internal/engine"
)

// CatalogCurrentResource defines the readable active catalog resource.
func CatalogCurrentResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "catalog_current",
		Title:       "Active Catalog",
		Description: "The stripped active catalog version being served",
		MIMEType:    "application/json",
		URI:         "catalog://current",
	}
}

// CatalogPreviousResource defines the readable previous catalog resource.
func CatalogPreviousResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "catalog_previous",
		Title:       "Previous Catalog",
		Description: "The stripped catalog version the active one supersedes",
		MIMEType:    "application/json",
		URI:         "catalog://previous",
	}
}

// CompiledRulesResource defines the readable compiled rules resource.
func CompiledRulesResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "rules_compiled",
		Title:       "Compiled Rules",
		Description: "Indices, compiled gate checks, and the advisory registry of the served artifact",
		MIMEType:    "application/json",
		URI:         "rules://compiled",
	}
}

// CatalogCurrentResourceHandler returns the served active catalog.
func CatalogCurrentResourceHandler(eng *engine.Engine) mcp.ResourceHandler {
	return catalogResourceHandler(eng, CatalogCurrentResource().URI, func(art artifactView) *catalog.Catalog {
		return art.current
	})
}

// CatalogPreviousResourceHandler returns the served previous catalog.
func CatalogPreviousResourceHandler(eng *engine.Engine) mcp.ResourceHandler {
	return catalogResourceHandler(eng, CatalogPreviousResource().URI, func(art artifactView) *catalog.Catalog {
		return art.previous
	})
}

// CompiledRulesResourceHandler returns the compiled artifact view.
func CompiledRulesResourceHandler(eng *engine.Engine) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if eng == nil {
			return nil, fmt.Errorf("engine is not configured")
		}
		return jsonResource(resourceURI(req, CompiledRulesResource().URI), eng.Artifact())
	}
}

type artifactView struct {
	current  *catalog.Catalog
	previous *catalog.Catalog
}

func catalogResourceHandler(eng *engine.Engine, defaultURI string, pick func(artifactView) *catalog.Catalog) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if eng == nil {
			return nil, fmt.Errorf("engine is not configured")
		}
		art := eng.Artifact()
		view := artifactView{current: art.Current, previous: art.Previous}
		return jsonResource(resourceURI(req, defaultURI), pick(view))
	}
}

func resourceURI(req *mcp.ReadResourceRequest, fallback string) string {
	if req != nil && req.Params != nil && req.Params.URI != "" {
		return req.Params.URI
	}
	return fallback
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
