// Package mcp provides a Model Context Protocol server for wastesort.
//
// It exposes text and image classification plus rule management as MCP
// tools, and the rule table and its statistics as MCP resources. The server
// is served over stdio by `wastesort mcp`.
package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/wastesort/internal/classify"
	"github.com/hurttlocker/wastesort/internal/predict"
	"github.com/hurttlocker/wastesort/internal/rules"
	"github.com/hurttlocker/wastesort/internal/waste"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store    *rules.Store
	Resolver *classify.Resolver
	Images   *predict.Service // optional; the image tool is only registered when set
	Version  string

	// DefaultThreshold applies when a call names no threshold; nil means
	// predict.DefaultThreshold.
	DefaultThreshold *float64
}

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
	maxBatchItems       = 200
)

// NewServer creates a configured MCP server with all wastesort tools and resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = classify.NewResolver(cfg.Store)
	}

	s := server.NewMCPServer(
		"wastesort",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	registerClassifyTool(s, resolver)
	registerBatchClassifyTool(s, resolver)
	registerSimilarItemsTool(s, resolver)
	registerRulesListTool(s, cfg.Store)
	registerRuleUpsertTool(s, cfg.Store)
	registerRuleDeleteTool(s, cfg.Store)
	registerStatisticsTool(s, cfg.Store)
	if cfg.Images.Status().Available {
		threshold := predict.DefaultThreshold
		if cfg.DefaultThreshold != nil {
			threshold = *cfg.DefaultThreshold
		}
		registerClassifyImageTool(s, cfg.Images, threshold)
	}

	registerStatisticsResource(s, cfg.Store)
	registerRulesResource(s, cfg.Store)
	registerCategoriesResource(s)

	return s
}

// --- Tools ---

// toolResult is the JSON shape of a classification in tool output.
type toolResult struct {
	ItemName   string         `json:"item_name"`
	Success    bool           `json:"success"`
	Category   waste.Category `json:"garbage_type"`
	Reason     string         `json:"reason"`
	Suggestion string         `json:"suggestion,omitempty"`
	Source     waste.Source   `json:"source"`
}

func newToolResult(name string, r waste.Result) toolResult {
	return toolResult{
		ItemName:   name,
		Success:    r.Matched,
		Category:   r.Category,
		Reason:     r.Reason,
		Suggestion: r.Suggestion,
		Source:     r.Source,
	}
}

func registerClassifyTool(s *server.MCPServer, resolver *classify.Resolver) {
	tool := mcp.NewTool("waste_classify",
		mcp.WithDescription("Classify an item by name into one of four waste categories (可回收垃圾, 有害垃圾, 厨余垃圾, 其他垃圾). Tries an exact rule, then a similar rule, then keyword heuristics."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("item_name",
			mcp.Required(),
			mcp.Description("Name of the item to classify, e.g. '废电池'"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("item_name")
		if err != nil || strings.TrimSpace(name) == "" {
			return mcp.NewToolResultError("item_name is required"), nil
		}
		return jsonResult(newToolResult(strings.TrimSpace(name), resolver.Classify(name)))
	})
}

func registerBatchClassifyTool(s *server.MCPServer, resolver *classify.Resolver) {
	tool := mcp.NewTool("waste_batch_classify",
		mcp.WithDescription("Classify several items at once. Results are returned in input order."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("Item names to classify (max %d)", maxBatchItems)),
			mcp.WithStringItems(),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := req.RequireStringSlice("items")
		if err != nil {
			return mcp.NewToolResultError("items must be a list of item names"), nil
		}
		if len(items) > maxBatchItems {
			return mcp.NewToolResultError(fmt.Sprintf("too many items: %d (max %d)", len(items), maxBatchItems)), nil
		}

		batch := resolver.BatchClassify(ctx, items)
		out := struct {
			Results    []toolResult `json:"results"`
			Total      int          `json:"total"`
			Successful int          `json:"successful"`
		}{Results: make([]toolResult, len(batch)), Total: len(batch)}
		for i, it := range batch {
			out.Results[i] = newToolResult(it.ItemName, it.Result)
			if it.Result.Matched {
				out.Successful++
			}
		}
		return jsonResult(out)
	})
}

func registerSimilarItemsTool(s *server.MCPServer, resolver *classify.Resolver) {
	tool := mcp.NewTool("waste_similar_items",
		mcp.WithDescription("Suggest stored item names that share characters with the given name. Useful when a classification found no rule."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("item_name",
			mcp.Required(),
			mcp.Description("Item name to find suggestions for"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum suggestions (default: %d, max: %d)", defaultSimilarLimit, maxSimilarLimit)),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("item_name")
		if err != nil || strings.TrimSpace(name) == "" {
			return mcp.NewToolResultError("item_name is required"), nil
		}
		limit := defaultSimilarLimit
		if l, err := req.RequireFloat("limit"); err == nil {
			if l < 1 {
				return mcp.NewToolResultError("limit must be a positive number"), nil
			}
			limit = min(int(l), maxSimilarLimit)
		}

		items := resolver.SimilarItems(name, limit)
		if items == nil {
			items = []string{}
		}
		return jsonResult(map[string]any{
			"item_name":     strings.TrimSpace(name),
			"similar_items": items,
			"count":         len(items),
		})
	})
}

func registerRulesListTool(s *server.MCPServer, st *rules.Store) {
	tool := mcp.NewTool("waste_rules_list",
		mcp.WithDescription("List classification rules in insertion order, optionally filtered by category."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("garbage_type",
			mcp.Description("Only return rules of this category (Chinese label or recyclable/hazardous/kitchen/other)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all := st.All()
		if raw, err := req.RequireString("garbage_type"); err == nil && strings.TrimSpace(raw) != "" {
			cat, ok := waste.ParseCategory(raw)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown garbage_type %q", raw)), nil
			}
			filtered := all[:0]
			for _, r := range all {
				if r.Category == cat {
					filtered = append(filtered, r)
				}
			}
			all = filtered
		}
		return jsonResult(map[string]any{"rules": all, "total": len(all)})
	})
}

func registerRuleUpsertTool(s *server.MCPServer, st *rules.Store) {
	tool := mcp.NewTool("waste_rule_upsert",
		mcp.WithDescription("Add a classification rule, or replace the existing rule for the same item name. The rule table is saved immediately."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("item_name",
			mcp.Required(),
			mcp.Description("Item name the rule applies to"),
		),
		mcp.WithString("garbage_type",
			mcp.Required(),
			mcp.Description("Category: 可回收垃圾, 有害垃圾, 厨余垃圾, 其他垃圾 (or recyclable, hazardous, kitchen, other)"),
		),
		mcp.WithString("reason",
			mcp.Required(),
			mcp.Description("Why the item belongs to the category"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err1 := req.RequireString("item_name")
		category, err2 := req.RequireString("garbage_type")
		reason, err3 := req.RequireString("reason")
		if err := errors.Join(err1, err2, err3); err != nil {
			return mcp.NewToolResultError("item_name, garbage_type and reason are required"), nil
		}

		rule, err := rules.NormalizeRule(name, category, reason)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := st.Add(ctx, rule.ItemName, rule.Category, rule.Reason); err != nil {
			return storeError(err), nil
		}
		return jsonResult(map[string]any{"success": true, "rule": rule})
	})
}

func registerRuleDeleteTool(s *server.MCPServer, st *rules.Store) {
	tool := mcp.NewTool("waste_rule_delete",
		mcp.WithDescription("Delete the classification rule for an item name. The rule table is saved immediately."),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("item_name",
			mcp.Required(),
			mcp.Description("Item name whose rule should be removed"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("item_name")
		if err != nil || strings.TrimSpace(name) == "" {
			return mcp.NewToolResultError("item_name is required"), nil
		}
		if err := st.Delete(ctx, name); err != nil {
			return storeError(err), nil
		}
		return jsonResult(map[string]any{"success": true, "item_name": strings.TrimSpace(name)})
	})
}

func registerStatisticsTool(s *server.MCPServer, st *rules.Store) {
	tool := mcp.NewTool("waste_statistics",
		mcp.WithDescription("Count classification rules per waste category."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(buildStatistics(st))
	})
}

func registerClassifyImageTool(s *server.MCPServer, svc *predict.Service, defaultThreshold float64) {
	tool := mcp.NewTool("waste_classify_image",
		mcp.WithDescription("Classify the main object in a photo. The image is passed base64-encoded (png, jpeg, gif, bmp or webp)."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("image_base64",
			mcp.Required(),
			mcp.Description("Base64-encoded image bytes"),
		),
		mcp.WithNumber("confidence_threshold",
			mcp.Description(fmt.Sprintf("Minimum prediction confidence 0-1 (default: %g)", defaultThreshold)),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		encoded, err := req.RequireString("image_base64")
		if err != nil {
			return mcp.NewToolResultError("image_base64 is required"), nil
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("image_base64 is not valid base64: %v", err)), nil
		}
		threshold := defaultThreshold
		if t, err := req.RequireFloat("confidence_threshold"); err == nil {
			threshold = t
		}

		res, err := svc.ClassifyImage(ctx, data, threshold)
		if err != nil && !res.Result.Failed {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, jerr := jsonResult(res)
		if jerr == nil && res.Result.Failed {
			out.IsError = true
		}
		return out, jerr
	})
}

// --- Helpers ---

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func storeError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, rules.ErrNotFound):
		return mcp.NewToolResultError("rule not found")
	case rules.IsPersistence(err):
		return mcp.NewToolResultError(fmt.Sprintf("rule applied in memory but could not be saved: %v", err))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
