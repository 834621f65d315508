package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/hurttlocker/wastesort/internal/cache"
	"github.com/hurttlocker/wastesort/internal/waste"
)

// Defaults for image classification requests.
const (
	DefaultThreshold = 0.1
	DefaultTopK      = 5
)

// ErrInvalidThreshold is returned for thresholds outside [0,1].
var ErrInvalidThreshold = errors.New("confidence threshold must be between 0 and 1")

// ImageResult is the outcome of classifying one image.
type ImageResult struct {
	Result      waste.Result `json:"result"`
	Details     []Detail     `json:"predictions"`
	ObjectName  string       `json:"object_name"`
	Threshold   float64      `json:"confidence_threshold"`
	Predictor   string       `json:"predictor"`
	CachedPreds bool         `json:"cached"`
}

// Status describes the configured image backend.
type Status struct {
	Available   bool   `json:"available"`
	Backend     string `json:"backend"`
	ModelLoaded bool   `json:"model_loaded"`
	Labels      int    `json:"labels"`
}

// Service classifies uploaded images.
type Service struct {
	predictor Predictor
	table     *LabelTable
	cache     cache.Cache
	topK      int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache caches predictions by the upload's content digest.
func WithCache(c cache.Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithTopK sets how many predictions are requested per image.
func WithTopK(k int) ServiceOption {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// NewService returns a Service resolving p's labels through table.
func NewService(p Predictor, table *LabelTable, opts ...ServiceOption) *Service {
	s := &Service{predictor: p, table: table, topK: DefaultTopK}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status reports availability. A nil Service is unavailable.
func (s *Service) Status() Status {
	if s == nil || s.predictor == nil {
		return Status{Backend: "none"}
	}
	st := Status{
		Available:   true,
		Backend:     s.predictor.Name(),
		ModelLoaded: true,
		Labels:      s.table.Len(),
	}
	if l, ok := s.predictor.(loader); ok {
		st.ModelLoaded = l.Loaded()
	}
	return st
}

// ClassifyImage decodes data, runs the predictor and resolves its output.
// A predictor failure returns a Result with Failed set together with an error
// wrapping ErrPredictor.
func (s *Service) ClassifyImage(ctx context.Context, data []byte, threshold float64) (ImageResult, error) {
	if s == nil || s.predictor == nil {
		return ImageResult{}, ErrUnavailable
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return ImageResult{}, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}

	img, err := DecodeImage(data)
	if err != nil {
		return ImageResult{}, err
	}

	out := ImageResult{Threshold: threshold, Predictor: s.predictor.Name()}
	preds, cached, err := s.predict(ctx, img)
	if err != nil {
		if !errors.Is(err, ErrPredictor) {
			err = fmt.Errorf("%w: %w", ErrPredictor, err)
		}
		slog.Warn("image prediction failed", "predictor", out.Predictor, "error", err)
		out.Result = waste.Result{
			Category: waste.Unknown,
			Reason:   "image recognition failed: " + err.Error(),
			Source:   waste.SourceNone,
			Failed:   true,
		}
		return out, err
	}
	out.CachedPreds = cached

	SortByConfidence(preds)
	out.Result, out.Details = Resolve(preds, s.table, threshold)
	out.ObjectName = objectName(out.Details, out.Result)

	slog.Debug("image classified",
		"format", img.Format,
		"dhash", img.Hash,
		"predictions", len(preds),
		"matched", out.Result.Matched,
		"category", out.Result.Category,
		"cached", cached,
	)
	return out, nil
}

func (s *Service) predict(ctx context.Context, img *Image) ([]Prediction, bool, error) {
	key := ""
	if s.cache != nil && img.Digest != "" {
		key = "predict:" + s.predictor.Name() + ":" + strconv.Itoa(s.topK) + ":" + img.Digest
		var preds []Prediction
		ok, err := s.cache.Get(ctx, key, &preds)
		if err != nil {
			slog.Warn("prediction cache read failed", "cache", s.cache.Name(), "error", err)
		}
		if ok {
			return preds, true, nil
		}
	}

	preds, err := s.predictor.Predict(ctx, img, s.topK)
	if err != nil {
		return nil, false, err
	}
	if key != "" {
		if err := s.cache.Set(ctx, key, preds); err != nil {
			slog.Warn("prediction cache write failed", "cache", s.cache.Name(), "error", err)
		}
	}
	return preds, false, nil
}

// objectName is the label the result is about: the winning prediction when
// matched, otherwise the top prediction.
func objectName(details []Detail, r waste.Result) string {
	if len(details) == 0 {
		return ""
	}
	if r.Matched {
		for _, d := range details {
			if d.Mappable && d.Category == r.Category {
				return d.Label
			}
		}
	}
	return details[0].Label
}
