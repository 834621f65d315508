package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hurttlocker/wastesort/internal/cache"
	"github.com/hurttlocker/wastesort/internal/classify"
	"github.com/hurttlocker/wastesort/internal/config"
	"github.com/hurttlocker/wastesort/internal/predict"
	"github.com/hurttlocker/wastesort/internal/rules"
)

// app holds the collaborators built from the resolved configuration.
type app struct {
	cfg      config.ResolvedConfig
	store    *rules.Store
	resolver *classify.Resolver
	images   *predict.Service // nil unless withImages and image.backend != none

	closers []io.Closer
}

// openApp validates cfg, opens the rule store and optionally the image
// service. Callers must Close the returned app.
func openApp(ctx context.Context, cfg config.ResolvedConfig, withImages bool) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	backend, err := a.openBackend()
	if err != nil {
		return nil, err
	}
	a.store = rules.NewStore(backend)
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.resolver = classify.NewResolver(a.store)

	if withImages {
		if err := a.openImages(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openBackend() (rules.Backend, error) {
	switch strings.ToLower(a.cfg.StoreBackend.Value) {
	case "sqlite":
		b, err := rules.OpenSQLite(a.cfg.DBPath.Value)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b)
		return b, nil
	default:
		return rules.NewCSVBackend(a.cfg.DataFile.Value), nil
	}
}

func (a *app) openImages(ctx context.Context) error {
	if strings.EqualFold(a.cfg.ImageBackend.Value, "none") {
		slog.Info("image classification disabled", "image_backend", "none")
		return nil
	}

	topK, err := a.cfg.ImageTopK.Int()
	if err != nil {
		return fmt.Errorf("image.top_k: %w", err)
	}
	table := predict.DefaultLabelTable()

	var p predict.Predictor
	switch strings.ToLower(a.cfg.ImageBackend.Value) {
	case "onnx":
		op, err := predict.NewONNXPredictor(predict.ONNXConfig{
			LibraryPath: a.cfg.ONNXLibrary.Value,
			VisionModel: a.cfg.ONNXVisionModel.Value,
			TextModel:   a.cfg.ONNXTextModel.Value,
			Tokenizer:   a.cfg.ONNXTokenizer.Value,
		}, table)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, op)
		p = op
	case "http":
		timeout, err := a.cfg.HTTPTimeoutSecs.Int()
		if err != nil {
			return fmt.Errorf("image.http.timeout_secs: %w", err)
		}
		hp, err := predict.NewHTTPPredictor(predict.HTTPConfig{
			Endpoint:    a.cfg.HTTPEndpoint.Value,
			APIKey:      a.cfg.HTTPAPIKey.Value,
			TimeoutSecs: timeout,
		}, table)
		if err != nil {
			return err
		}
		p = hp
	default:
		return fmt.Errorf("unknown image backend %q", a.cfg.ImageBackend.Value)
	}

	opts := []predict.ServiceOption{predict.WithTopK(topK)}
	c, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	if c != nil {
		opts = append(opts, predict.WithCache(c))
	}
	a.images = predict.NewService(p, table, opts...)
	slog.Info("image classification enabled", "predictor", p.Name(), "labels", table.Len(), "top_k", topK)
	return nil
}

func (a *app) openCache(ctx context.Context) (cache.Cache, error) {
	secs, err := a.cfg.CacheTTLSecs.Int()
	if err != nil {
		return nil, fmt.Errorf("cache.ttl_secs: %w", err)
	}
	ttl := time.Duration(secs) * time.Second

	switch strings.ToLower(a.cfg.CacheBackend.Value) {
	case "memory":
		return cache.NewMemory(ttl), nil
	case "redis":
		r, err := cache.NewRedis(ctx, a.cfg.RedisAddr.Value, ttl)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r)
		return r, nil
	default:
		return nil, nil
	}
}

// threshold is the default image confidence threshold.
func (a *app) threshold() float64 {
	t, err := a.cfg.ImageThreshold.Float()
	if err != nil {
		return predict.DefaultThreshold
	}
	return t
}

// maxUploadBytes converts server.max_upload_mb.
func (a *app) maxUploadBytes() int64 {
	mb, err := a.cfg.MaxUploadMB.Int()
	if err != nil || mb <= 0 {
		return 0
	}
	return int64(mb) << 20
}

// Close releases every opened resource in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
