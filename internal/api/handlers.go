package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hurttlocker/wastesort/internal/predict"
	"github.com/hurttlocker/wastesort/internal/rules"
	"github.com/hurttlocker/wastesort/internal/waste"
)

var allowedImageExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp"}

// handleClassify godoc
// @Summary Classify an item by name
// @Description Resolves an item name by exact rule, similar rule, then keyword heuristic.
// @Tags classify
// @Accept json
// @Produce json
// @Param body body classifyRequest true "item to classify"
// @Success 200 {object} classifyResponse
// @Failure 400 {object} errorResponse
// @Router /classify [post]
func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemName == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "item_name is required"})
		return
	}
	name := strings.TrimSpace(*req.ItemName)
	if name == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "item_name must not be empty"})
		return
	}

	res := s.cfg.Resolver.Classify(*req.ItemName)
	out := toClassifyResponse(name, res)
	out.Timestamp = s.timestamp()
	slog.Info("classified", "item", name, "category", res.Category, "source", res.Source)
	c.JSON(http.StatusOK, out)
}

// handleBatchClassify godoc
// @Summary Classify several items
// @Tags classify
// @Accept json
// @Produce json
// @Param body body batchClassifyRequest true "items to classify"
// @Success 200 {object} batchClassifyResponse
// @Failure 400 {object} errorResponse
// @Router /batch-classify [post]
func (s *Server) handleBatchClassify(c *gin.Context) {
	var req batchClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "items must be a list of item names"})
		return
	}

	items := s.cfg.Resolver.BatchClassify(c.Request.Context(), req.Items)
	out := batchClassifyResponse{
		Results:   make([]classifyResponse, len(items)),
		Total:     len(items),
		Timestamp: s.timestamp(),
	}
	for i, it := range items {
		out.Results[i] = toClassifyResponse(it.ItemName, it.Result)
		if it.Result.Matched {
			out.Successful++
		}
	}
	c.JSON(http.StatusOK, out)
}

// handleListRules godoc
// @Summary List all rules
// @Tags rules
// @Produce json
// @Success 200 {object} rulesResponse
// @Router /rules [get]
func (s *Server) handleListRules(c *gin.Context) {
	all := s.cfg.Store.All()
	out := rulesResponse{Rules: make([]ruleView, len(all)), Total: len(all)}
	for i, r := range all {
		out.Rules[i] = viewOf(r)
	}
	c.JSON(http.StatusOK, out)
}

// handleAddRule godoc
// @Summary Add a rule
// @Description Inserts or replaces the rule for an item. garbage_type must be one of the four categories.
// @Tags rules
// @Accept json
// @Produce json
// @Param body body ruleRequest true "rule"
// @Success 200 {object} mutationResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rules [post]
func (s *Server) handleAddRule(c *gin.Context) {
	s.upsertRule(c, "rule added")
}

// handleUpdateRule godoc
// @Summary Update a rule
// @Tags rules
// @Accept json
// @Produce json
// @Param body body ruleRequest true "rule"
// @Success 200 {object} mutationResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rules [put]
func (s *Server) handleUpdateRule(c *gin.Context) {
	s.upsertRule(c, "rule updated")
}

func (s *Server) upsertRule(c *gin.Context, message string) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemName == nil || req.GarbageType == nil || req.Reason == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "item_name, garbage_type and reason are required"})
		return
	}

	rule, err := rules.NormalizeRule(*req.ItemName, *req.GarbageType, *req.Reason)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	if err := s.cfg.Store.Add(c.Request.Context(), rule.ItemName, rule.Category, rule.Reason); err != nil {
		s.writeStoreError(c, err)
		return
	}

	slog.Info(message, "item", rule.ItemName, "category", rule.Category)
	view := viewOf(rule)
	c.JSON(http.StatusOK, mutationResponse{Success: true, Message: message, Rule: &view})
}

// handleDeleteRule godoc
// @Summary Delete a rule
// @Tags rules
// @Produce json
// @Param item_name query string true "item name"
// @Success 200 {object} mutationResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rules [delete]
func (s *Server) handleDeleteRule(c *gin.Context) {
	name := strings.TrimSpace(c.Query("item_name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "item_name is required"})
		return
	}
	if err := s.cfg.Store.Delete(c.Request.Context(), name); err != nil {
		s.writeStoreError(c, err)
		return
	}
	slog.Info("rule deleted", "item", name)
	c.JSON(http.StatusOK, mutationResponse{Success: true, Message: "rule deleted"})
}

func (s *Server) writeStoreError(c *gin.Context, err error) {
	var verr *rules.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.Is(err, rules.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "rule not found"})
	case rules.IsPersistence(err):
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "rule applied in memory but could not be saved",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// handleStatistics godoc
// @Summary Rule counts per category
// @Tags statistics
// @Produce json
// @Success 200 {object} statisticsResponse
// @Router /statistics [get]
func (s *Server) handleStatistics(c *gin.Context) {
	rows := rules.Breakdown(s.cfg.Store.Statistics())
	out := statisticsResponse{Statistics: make([]categoryStat, 0, len(rows)), Timestamp: s.timestamp()}
	for _, row := range rows {
		out.TotalRules += row.Count
		out.Statistics = append(out.Statistics, categoryStat{
			GarbageType: row.Category,
			Count:       row.Count,
			Percentage:  row.Percentage,
			Color:       waste.Color(row.Category),
			Icon:        waste.Icon(row.Category),
		})
	}
	c.JSON(http.StatusOK, out)
}

// handleSimilarItems godoc
// @Summary Suggest stored items similar to a name
// @Tags classify
// @Produce json
// @Param item_name query string true "item name"
// @Param limit query int false "maximum suggestions" default(5)
// @Success 200 {object} similarItemsResponse
// @Failure 400 {object} errorResponse
// @Router /similar-items [get]
func (s *Server) handleSimilarItems(c *gin.Context) {
	name := strings.TrimSpace(c.Query("item_name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "item_name is required"})
		return
	}
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	items := s.cfg.Resolver.SimilarItems(name, limit)
	if items == nil {
		items = []string{}
	}
	c.JSON(http.StatusOK, similarItemsResponse{ItemName: name, SimilarItems: items, Count: len(items)})
}

// handleClassifyImage godoc
// @Summary Classify an item from a photo
// @Tags image
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "png, jpg, jpeg, gif or bmp"
// @Param confidence_threshold formData number false "minimum confidence (0-1)" default(0.1)
// @Success 200 {object} imageClassifyResponse
// @Failure 400 {object} errorResponse
// @Failure 502 {object} imageClassifyResponse
// @Failure 503 {object} errorResponse
// @Router /classify-image [post]
func (s *Server) handleClassifyImage(c *gin.Context) {
	if !s.cfg.Images.Status().Available {
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			Error:   "image classification unavailable",
			Message: "set image.backend to onnx or http",
		})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes+1<<20)
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "an image file is required in field 'image'"})
		return
	}
	if fh.Filename == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no file selected"})
		return
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if !slices.Contains(allowedImageExtensions, ext) {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:        fmt.Sprintf("unsupported file type: .%s", ext),
			AllowedTypes: allowedImageExtensions,
		})
		return
	}

	threshold := s.threshold
	if raw := strings.TrimSpace(c.PostForm("confidence_threshold")); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "confidence_threshold must be between 0 and 1"})
			return
		}
	}

	if fh.Size > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("image larger than %d MB", s.cfg.MaxUploadBytes>>20)})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "could not read upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "could not read upload"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "image file is empty"})
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("image larger than %d MB", s.cfg.MaxUploadBytes>>20)})
		return
	}

	slog.Info("classifying image", "bytes", len(data), "threshold", threshold)
	res, err := s.cfg.Images.ClassifyImage(c.Request.Context(), data, threshold)
	switch {
	case errors.Is(err, predict.ErrUnsupportedImage), errors.Is(err, predict.ErrInvalidThreshold):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, predict.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	case err != nil && !res.Result.Failed:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	color, icon := display(res.Result)
	out := imageClassifyResponse{
		Success:             res.Result.Matched,
		ObjectName:          res.ObjectName,
		GarbageType:         res.Result.Category,
		Reason:              res.Result.Reason,
		Color:               color,
		Icon:                icon,
		Predictions:         res.Details,
		ConfidenceThreshold: threshold,
		Failed:              res.Result.Failed,
		Cached:              res.CachedPreds,
		Timestamp:           s.timestamp(),
	}
	if res.Result.Matched {
		out.Suggestion = res.Result.Suggestion
	}
	if out.Predictions == nil {
		out.Predictions = []predict.Detail{}
	}

	status := http.StatusOK
	if res.Result.Failed {
		status = http.StatusBadGateway
	}
	slog.Info("image classified", "object", res.ObjectName, "category", res.Result.Category, "failed", res.Result.Failed)
	c.JSON(status, out)
}

// handleImageStatus godoc
// @Summary Image classification availability
// @Tags image
// @Produce json
// @Success 200 {object} imageStatusResponse
// @Router /image-status [get]
func (s *Server) handleImageStatus(c *gin.Context) {
	st := s.cfg.Images.Status()
	msg := "image classification available"
	if !st.Available {
		msg = "image classification unavailable; set image.backend to onnx or http"
	}
	c.JSON(http.StatusOK, imageStatusResponse{Status: st, Message: msg})
}

// handleInfo godoc
// @Summary API information
// @Tags info
// @Produce json
// @Success 200 {object} infoResponse
// @Router /info [get]
func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, infoResponse{
		Name:          "wastesort API",
		Version:       s.cfg.Version,
		Description:   "waste classification and rule management",
		Documentation: "/swagger/index.html",
		Endpoints: map[string]string{
			"classify":       "/api/classify",
			"batch_classify": "/api/batch-classify",
			"rules":          "/api/rules",
			"statistics":     "/api/statistics",
			"similar_items":  "/api/similar-items",
			"image_classify": "/api/classify-image",
			"image_status":   "/api/image-status",
		},
	})
}

func viewOf(r rules.Rule) ruleView {
	return ruleView{
		ItemName:    r.ItemName,
		GarbageType: r.Category,
		Reason:      r.Reason,
		Color:       waste.Color(r.Category),
		Icon:        waste.Icon(r.Category),
	}
}
