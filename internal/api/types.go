package api

import (
	"github.com/hurttlocker/wastesort/internal/predict"
	"github.com/hurttlocker/wastesort/internal/waste"
)

type errorResponse struct {
	Error        string   `json:"error"`
	Message      string   `json:"message,omitempty"`
	AllowedTypes []string `json:"allowed_types,omitempty"`
}

type classifyRequest struct {
	ItemName *string `json:"item_name" example:"电池"`
}

type classifyResponse struct {
	Success     bool           `json:"success"`
	ItemName    string         `json:"item_name"`
	GarbageType waste.Category `json:"garbage_type"`
	Reason      string         `json:"reason"`
	Suggestion  string         `json:"suggestion"`
	Source      waste.Source   `json:"source"`
	Color       string         `json:"color"`
	Icon        string         `json:"icon"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type batchClassifyRequest struct {
	Items []string `json:"items" binding:"required"`
}

type batchClassifyResponse struct {
	Results    []classifyResponse `json:"results"`
	Total      int                `json:"total"`
	Successful int                `json:"successful"`
	Timestamp  string             `json:"timestamp"`
}

type ruleRequest struct {
	ItemName    *string `json:"item_name"`
	GarbageType *string `json:"garbage_type"`
	Reason      *string `json:"reason"`
}

type ruleView struct {
	ItemName    string         `json:"item_name"`
	GarbageType waste.Category `json:"garbage_type"`
	Reason      string         `json:"reason"`
	Color       string         `json:"color,omitempty"`
	Icon        string         `json:"icon,omitempty"`
}

type rulesResponse struct {
	Rules []ruleView `json:"rules"`
	Total int        `json:"total"`
}

type mutationResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Rule    *ruleView `json:"rule,omitempty"`
}

type categoryStat struct {
	GarbageType waste.Category `json:"garbage_type"`
	Count       int            `json:"count"`
	Percentage  float64        `json:"percentage"`
	Color       string         `json:"color"`
	Icon        string         `json:"icon"`
}

type statisticsResponse struct {
	Statistics []categoryStat `json:"statistics"`
	TotalRules int            `json:"total_rules"`
	Timestamp  string         `json:"timestamp"`
}

type similarItemsResponse struct {
	ItemName     string   `json:"item_name"`
	SimilarItems []string `json:"similar_items"`
	Count        int      `json:"count"`
}

type imageClassifyResponse struct {
	Success             bool             `json:"success"`
	ObjectName          string           `json:"object_name"`
	GarbageType         waste.Category   `json:"garbage_type"`
	Reason              string           `json:"reason"`
	Suggestion          string           `json:"suggestion"`
	Color               string           `json:"color"`
	Icon                string           `json:"icon"`
	Predictions         []predict.Detail `json:"predictions"`
	ConfidenceThreshold float64          `json:"confidence_threshold"`
	Failed              bool             `json:"failed,omitempty"`
	Cached              bool             `json:"cached"`
	Timestamp           string           `json:"timestamp"`
}

type imageStatusResponse struct {
	predict.Status
	Message string `json:"message"`
}

type infoResponse struct {
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Description   string            `json:"description"`
	Documentation string            `json:"documentation"`
	Endpoints     map[string]string `json:"endpoints"`
}

// display returns the color and icon shown next to r.
func display(r waste.Result) (string, string) {
	if !r.Matched {
		a := waste.Advise(waste.Unknown)
		return a.Color, a.Icon
	}
	return waste.Color(r.Category), waste.Icon(r.Category)
}

func toClassifyResponse(itemName string, r waste.Result) classifyResponse {
	color, icon := display(r)
	return classifyResponse{
		Success:     r.Matched,
		ItemName:    itemName,
		GarbageType: r.Category,
		Reason:      r.Reason,
		Suggestion:  r.Suggestion,
		Source:      r.Source,
		Color:       color,
		Icon:        icon,
	}
}
