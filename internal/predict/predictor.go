package predict

import (
	"context"
	"errors"
)

var (
	// ErrPredictor wraps any failure inside a Predictor.
	ErrPredictor = errors.New("image predictor failed")
	// ErrUnsupportedImage is returned for payloads that are not decodable images.
	ErrUnsupportedImage = errors.New("unsupported image")
	// ErrUnavailable is returned when image classification is not configured.
	ErrUnavailable = errors.New("image classification unavailable")
)

// Predictor recognizes objects in an image. Implementations return at most
// topK predictions, sorted by descending confidence.
type Predictor interface {
	Predict(ctx context.Context, img *Image, topK int) ([]Prediction, error)
	Name() string
}

// loader is implemented by predictors with a lazily loaded model.
type loader interface {
	Loaded() bool
}
