package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/wastesort/internal/rules"
	"github.com/hurttlocker/wastesort/internal/waste"
)

type statistics struct {
	Statistics []rules.CategoryCount `json:"statistics"`
	TotalRules int                   `json:"total_rules"`
}

func buildStatistics(st *rules.Store) statistics {
	return statistics{Statistics: rules.Breakdown(st.Statistics()), TotalRules: st.Len()}
}

func registerStatisticsResource(s *server.MCPServer, st *rules.Store) {
	resource := mcp.NewResource(
		"wastesort://statistics",
		"Rule Statistics",
		mcp.WithResourceDescription("Number and share of classification rules per waste category."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonContents(req.Params.URI, buildStatistics(st))
	})
}

func registerRulesResource(s *server.MCPServer, st *rules.Store) {
	resource := mcp.NewResource(
		"wastesort://rules",
		"Classification Rules",
		mcp.WithResourceDescription("The full rule table in insertion order."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		all := st.All()
		return jsonContents(req.Params.URI, map[string]any{"rules": all, "total": len(all)})
	})
}

func registerCategoriesResource(s *server.MCPServer) {
	resource := mcp.NewResource(
		"wastesort://categories",
		"Waste Categories",
		mcp.WithResourceDescription("The four waste categories with their display color, icon and disposal instructions."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type categoryInfo struct {
			Name         waste.Category `json:"name"`
			Color        string         `json:"color"`
			Icon         string         `json:"icon"`
			Instructions string         `json:"instructions"`
		}
		cats := waste.Categories()
		out := make([]categoryInfo, 0, len(cats))
		for _, c := range cats {
			a := waste.Advise(c)
			out = append(out, categoryInfo{Name: c, Color: a.Color, Icon: a.Icon, Instructions: a.Instructions})
		}
		return jsonContents(req.Params.URI, out)
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding resource %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}
