package predict

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/hurttlocker/wastesort/internal/cache"
	"github.com/hurttlocker/wastesort/internal/waste"
)

type fakePredictor struct {
	preds  []Prediction
	err    error
	calls  int
	loaded bool
}

func (f *fakePredictor) Name() string { return "fake" }

func (f *fakePredictor) Loaded() bool { return f.loaded }

func (f *fakePredictor) Predict(_ context.Context, _ *Image, _ int) ([]Prediction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]Prediction(nil), f.preds...), nil
}

func TestServiceUnavailable(t *testing.T) {
	var s *Service
	if _, err := s.ClassifyImage(context.Background(), []byte("x"), 0.1); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if st := s.Status(); st.Available || st.Backend != "none" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestServiceRejectsBadThreshold(t *testing.T) {
	f := &fakePredictor{}
	s := NewService(f, DefaultLabelTable())
	for _, th := range []float64{-0.01, 1.01, math.NaN()} {
		if _, err := s.ClassifyImage(context.Background(), pngBytes(t, testImage(8, 8)), th); !errors.Is(err, ErrInvalidThreshold) {
			t.Fatalf("threshold %v: expected ErrInvalidThreshold, got %v", th, err)
		}
	}
	if f.calls != 0 {
		t.Fatal("predictor called for invalid threshold")
	}
}

func TestServiceRejectsNonImage(t *testing.T) {
	f := &fakePredictor{}
	_, err := NewService(f, DefaultLabelTable()).ClassifyImage(context.Background(), []byte("plain text"), 0.1)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
	if f.calls != 0 {
		t.Fatal("predictor called for non-image")
	}
}

func TestServiceClassifyImage(t *testing.T) {
	f := &fakePredictor{preds: []Prediction{{"塑料瓶", 0.3}, {"香蕉", 0.6}}}
	out, err := NewService(f, DefaultLabelTable()).ClassifyImage(context.Background(), pngBytes(t, testImage(8, 8)), 0.5)
	if err != nil {
		t.Fatalf("ClassifyImage: %v", err)
	}
	if !out.Result.Matched || out.Result.Category != waste.Kitchen || out.ObjectName != "香蕉" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if len(out.Details) != 2 || out.Details[0].Label != "香蕉" {
		t.Fatalf("details not sorted: %+v", out.Details)
	}
	if out.Threshold != 0.5 || out.Predictor != "fake" || out.CachedPreds {
		t.Fatalf("unexpected metadata: %+v", out)
	}
}

func TestServicePredictorFailureIsDistinct(t *testing.T) {
	boom := errors.New("model exploded")
	f := &fakePredictor{err: boom}
	out, err := NewService(f, DefaultLabelTable()).ClassifyImage(context.Background(), pngBytes(t, testImage(8, 8)), 0.1)
	if !errors.Is(err, ErrPredictor) || !errors.Is(err, boom) {
		t.Fatalf("expected error wrapping ErrPredictor and cause, got %v", err)
	}
	if !out.Result.Failed || out.Result.Matched || out.Result.Category != waste.Unknown {
		t.Fatalf("expected a failed result, got %+v", out.Result)
	}
}

func TestServiceCachesPredictions(t *testing.T) {
	f := &fakePredictor{preds: []Prediction{{"电池", 0.9}}}
	s := NewService(f, DefaultLabelTable(), WithCache(cache.NewMemory(time.Minute)), WithTopK(3))
	data := pngBytes(t, testImage(8, 8))

	first, err := s.ClassifyImage(context.Background(), data, 0.1)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := s.ClassifyImage(context.Background(), data, 0.95)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if f.calls != 1 {
		t.Fatalf("predictor called %d times, want 1", f.calls)
	}
	if first.CachedPreds || !second.CachedPreds {
		t.Fatalf("cached flags: first=%v second=%v", first.CachedPreds, second.CachedPreds)
	}
	if !first.Result.Matched || second.Result.Matched {
		t.Fatalf("threshold must apply to cached predictions: %+v / %+v", first.Result, second.Result)
	}
}

func TestServiceCacheDoesNotShareAcrossImages(t *testing.T) {
	f := &fakePredictor{preds: []Prediction{{"香蕉", 0.9}}}
	s := NewService(f, DefaultLabelTable(), WithCache(cache.NewMemory(time.Minute)))
	red := pngBytes(t, solidImage(16, 16, color.RGBA{R: 255, A: 255}))
	green := pngBytes(t, solidImage(16, 16, color.RGBA{G: 255, A: 255}))

	first, err := s.ClassifyImage(context.Background(), red, 0.1)
	if err != nil {
		t.Fatalf("red: %v", err)
	}
	f.preds = []Prediction{{"电池", 0.9}}
	second, err := s.ClassifyImage(context.Background(), green, 0.1)
	if err != nil {
		t.Fatalf("green: %v", err)
	}
	if f.calls != 2 {
		t.Fatalf("predictor called %d times, want 2", f.calls)
	}
	if second.CachedPreds {
		t.Fatal("green image served from the red image's cache entry")
	}
	if first.Result.Category != waste.Kitchen || second.Result.Category != waste.Hazardous {
		t.Fatalf("categories: red=%s green=%s", first.Result.Category, second.Result.Category)
	}
}

func TestServiceStatus(t *testing.T) {
	f := &fakePredictor{loaded: false}
	st := NewService(f, DefaultLabelTable()).Status()
	if !st.Available || st.Backend != "fake" || st.ModelLoaded || st.Labels != DefaultLabelTable().Len() {
		t.Fatalf("unexpected status: %+v", st)
	}
}
