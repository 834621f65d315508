package predict

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
)

// HTTPConfig configures an HTTPPredictor.
type HTTPConfig struct {
	Endpoint    string // full URL of the prediction endpoint
	APIKey      string
	MaxRetries  int // default: 3
	TimeoutSecs int // per-request timeout (default: 30)

	backoff time.Duration
}

// Validate checks the configuration and applies defaults.
func (c *HTTPConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.TimeoutSecs < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = 30
	}
	if c.backoff == 0 {
		c.backoff = time.Second
	}
	return nil
}

// PredictRequest is the JSON body sent to a remote recognizer.
type PredictRequest struct {
	Image  string   `json:"image"` // base64 PNG
	Labels []string `json:"labels"`
	TopK   int      `json:"top_k"`
}

// PredictResponse is the JSON body a remote recognizer answers with.
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// HTTPError represents an HTTP error with additional context.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// HTTPPredictor delegates recognition to a remote zero-shot service. The
// service receives the candidate labels with every request.
type HTTPPredictor struct {
	config HTTPConfig
	labels []string
	http   *http.Client
}

// NewHTTPPredictor creates a predictor for the labels of table.
func NewHTTPPredictor(config HTTPConfig, table *LabelTable) (*HTTPPredictor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid http predictor config: %w", err)
	}
	return &HTTPPredictor{
		config: config,
		labels: table.Labels(),
		http: &http.Client{
			Timeout: time.Duration(config.TimeoutSecs) * time.Second,
		},
	}, nil
}

// Name implements Predictor.
func (p *HTTPPredictor) Name() string { return "http" }

// Predict implements Predictor. Rate limits and server errors are retried
// with exponential backoff, waiting at least as long as any Retry-After
// header asks. Other failures return immediately.
func (p *HTTPPredictor) Predict(ctx context.Context, img *Image, topK int) ([]Prediction, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image); err != nil {
		return nil, fmt.Errorf("%w: encoding image: %v", ErrPredictor, err)
	}
	body, err := json.Marshal(PredictRequest{
		Image:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		Labels: p.labels,
		TopK:   topK,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", ErrPredictor, err)
	}

	var (
		preds      []Prediction
		attempts   int
		retryAfter time.Duration
	)
	exp := retry.WithMaxRetries(uint64(p.config.MaxRetries), retry.NewExponential(p.config.backoff))
	// A server-supplied Retry-After overrides a shorter exponential step.
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := exp.Next()
		if !stop && retryAfter > next {
			next = retryAfter
		}
		retryAfter = 0
		return next, stop
	})
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		var err error
		preds, err = p.attempt(ctx, body)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.retryable() {
			retryAfter = httpErr.RetryAfter
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: after %d attempts: %w", ErrPredictor, attempts, err)
	}

	SortByConfidence(preds)
	if topK > 0 && len(preds) > topK {
		preds = preds[:topK]
	}
	return preds, nil
}

// attempt makes a single prediction request.
func (p *HTTPPredictor) attempt(ctx context.Context, body []byte) ([]Prediction, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	resp, err := p.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var retryAfter time.Duration
		if h := resp.Header.Get("Retry-After"); h != "" {
			if seconds, err := strconv.Atoi(h); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			RetryAfter: retryAfter,
		}
	}

	var out PredictResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}
	for _, pr := range out.Predictions {
		if pr.Confidence < 0 || pr.Confidence > 1 {
			return nil, fmt.Errorf("confidence %v for %q out of range", pr.Confidence, pr.Label)
		}
	}
	return out.Predictions, nil
}
