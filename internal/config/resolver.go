// Package config resolves wastesort settings from built-in defaults, a YAML
// file, WASTESORT_* environment variables and CLI flags, in that order of
// increasing precedence. Every value remembers where it came from.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// Int parses the value as an integer.
func (v ResolvedValue) Int() (int, error) {
	n, err := strconv.Atoi(v.Value)
	if err != nil {
		return 0, fmt.Errorf("%q (from %s %s) is not an integer", v.Value, v.Source, v.From)
	}
	return n, nil
}

// Float parses the value as a float.
func (v ResolvedValue) Float() (float64, error) {
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("%q (from %s %s) is not a number", v.Value, v.Source, v.From)
	}
	return f, nil
}

// Built-in defaults.
const (
	DefaultDataFile      = "~/.wastesort/garbage_rules.csv"
	DefaultDBPath        = "~/.wastesort/rules.db"
	DefaultAddr          = "localhost:5000"
	DefaultMaxUploadMB   = "16"
	DefaultThreshold     = "0.1"
	DefaultTopK          = "5"
	DefaultHTTPTimeout   = "30"
	DefaultRedisAddr     = "localhost:6379"
	DefaultCacheTTLSecs  = "3600"
	DefaultLogLevel      = "info"
	defaultSourceComment = "built-in default"
)

type ResolveOptions struct {
	ConfigPath  string
	CLIDataFile string
	CLIBackend  string
	CLIDBPath   string
	CLIAddr     string
	CLIImage    string
	CLILogLevel string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DataFile     ResolvedValue `json:"data_file"`
	StoreBackend ResolvedValue `json:"store_backend"`
	DBPath       ResolvedValue `json:"db_path"`

	ServerAddr  ResolvedValue `json:"server_addr"`
	MaxUploadMB ResolvedValue `json:"max_upload_mb"`

	ImageBackend   ResolvedValue `json:"image_backend"`
	ImageThreshold ResolvedValue `json:"image_threshold"`
	ImageTopK      ResolvedValue `json:"image_top_k"`

	ONNXLibrary     ResolvedValue `json:"onnx_library_path"`
	ONNXVisionModel ResolvedValue `json:"onnx_vision_model"`
	ONNXTextModel   ResolvedValue `json:"onnx_text_model"`
	ONNXTokenizer   ResolvedValue `json:"onnx_tokenizer"`

	HTTPEndpoint    ResolvedValue `json:"http_endpoint"`
	HTTPAPIKey      ResolvedValue `json:"http_api_key"`
	HTTPTimeoutSecs ResolvedValue `json:"http_timeout_secs"`

	CacheBackend ResolvedValue `json:"cache_backend"`
	RedisAddr    ResolvedValue `json:"redis_addr"`
	CacheTTLSecs ResolvedValue `json:"cache_ttl_secs"`

	LogLevel ResolvedValue `json:"log_level"`
}

type fileConfig struct {
	DataFile string `yaml:"data_file"`
	Store    struct {
		Backend string `yaml:"backend"`
		DBPath  string `yaml:"db_path"`
	} `yaml:"store"`
	Server struct {
		Addr        string `yaml:"addr"`
		MaxUploadMB string `yaml:"max_upload_mb"`
	} `yaml:"server"`
	Image struct {
		Backend   string `yaml:"backend"`
		Threshold string `yaml:"threshold"`
		TopK      string `yaml:"top_k"`
		ONNX      struct {
			LibraryPath string `yaml:"library_path"`
			VisionModel string `yaml:"vision_model"`
			TextModel   string `yaml:"text_model"`
			Tokenizer   string `yaml:"tokenizer"`
		} `yaml:"onnx"`
		HTTP struct {
			Endpoint    string `yaml:"endpoint"`
			APIKey      string `yaml:"api_key"`
			TimeoutSecs string `yaml:"timeout_secs"`
		} `yaml:"http"`
	} `yaml:"image"`
	Cache struct {
		Backend   string `yaml:"backend"`
		RedisAddr string `yaml:"redis_addr"`
		TTLSecs   string `yaml:"ttl_secs"`
	} `yaml:"cache"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wastesort", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{ConfigPath: path}
	for _, d := range []struct {
		dst *ResolvedValue
		v   string
	}{
		{&out.DataFile, DefaultDataFile},
		{&out.StoreBackend, "csv"},
		{&out.DBPath, DefaultDBPath},
		{&out.ServerAddr, DefaultAddr},
		{&out.MaxUploadMB, DefaultMaxUploadMB},
		{&out.ImageBackend, "none"},
		{&out.ImageThreshold, DefaultThreshold},
		{&out.ImageTopK, DefaultTopK},
		{&out.HTTPTimeoutSecs, DefaultHTTPTimeout},
		{&out.CacheBackend, "none"},
		{&out.RedisAddr, DefaultRedisAddr},
		{&out.CacheTTLSecs, DefaultCacheTTLSecs},
		{&out.LogLevel, DefaultLogLevel},
	} {
		apply(d.dst, d.v, SourceDefault, defaultSourceComment)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DataFile, cfg.DataFile, SourceConfig, path)
		apply(&out.StoreBackend, cfg.Store.Backend, SourceConfig, path)
		apply(&out.DBPath, cfg.Store.DBPath, SourceConfig, path)
		apply(&out.ServerAddr, cfg.Server.Addr, SourceConfig, path)
		apply(&out.MaxUploadMB, cfg.Server.MaxUploadMB, SourceConfig, path)
		apply(&out.ImageBackend, cfg.Image.Backend, SourceConfig, path)
		apply(&out.ImageThreshold, cfg.Image.Threshold, SourceConfig, path)
		apply(&out.ImageTopK, cfg.Image.TopK, SourceConfig, path)
		apply(&out.ONNXLibrary, cfg.Image.ONNX.LibraryPath, SourceConfig, path)
		apply(&out.ONNXVisionModel, cfg.Image.ONNX.VisionModel, SourceConfig, path)
		apply(&out.ONNXTextModel, cfg.Image.ONNX.TextModel, SourceConfig, path)
		apply(&out.ONNXTokenizer, cfg.Image.ONNX.Tokenizer, SourceConfig, path)
		apply(&out.HTTPEndpoint, cfg.Image.HTTP.Endpoint, SourceConfig, path)
		apply(&out.HTTPAPIKey, cfg.Image.HTTP.APIKey, SourceConfig, path)
		apply(&out.HTTPTimeoutSecs, cfg.Image.HTTP.TimeoutSecs, SourceConfig, path)
		apply(&out.CacheBackend, cfg.Cache.Backend, SourceConfig, path)
		apply(&out.RedisAddr, cfg.Cache.RedisAddr, SourceConfig, path)
		apply(&out.CacheTTLSecs, cfg.Cache.TTLSecs, SourceConfig, path)
		apply(&out.LogLevel, cfg.Log.Level, SourceConfig, path)
	}

	applyEnv(&out.DataFile, "WASTESORT_DATA_FILE")
	applyEnv(&out.StoreBackend, "WASTESORT_STORE_BACKEND")
	applyEnv(&out.DBPath, "WASTESORT_DB_PATH")
	applyEnv(&out.ServerAddr, "WASTESORT_ADDR")
	applyEnv(&out.MaxUploadMB, "WASTESORT_MAX_UPLOAD_MB")
	applyEnv(&out.ImageBackend, "WASTESORT_IMAGE_BACKEND")
	applyEnv(&out.ImageThreshold, "WASTESORT_IMAGE_THRESHOLD")
	applyEnv(&out.ImageTopK, "WASTESORT_IMAGE_TOP_K")
	applyEnv(&out.ONNXLibrary, "WASTESORT_ONNX_LIBRARY")
	applyEnv(&out.ONNXLibrary, "ONNXRUNTIME_SHARED_LIBRARY_PATH")
	applyEnv(&out.ONNXVisionModel, "WASTESORT_ONNX_VISION_MODEL")
	applyEnv(&out.ONNXTextModel, "WASTESORT_ONNX_TEXT_MODEL")
	applyEnv(&out.ONNXTokenizer, "WASTESORT_ONNX_TOKENIZER")
	applyEnv(&out.HTTPEndpoint, "WASTESORT_IMAGE_ENDPOINT")
	applyEnv(&out.HTTPAPIKey, "WASTESORT_IMAGE_API_KEY")
	applyEnv(&out.HTTPTimeoutSecs, "WASTESORT_IMAGE_TIMEOUT_SECS")
	applyEnv(&out.CacheBackend, "WASTESORT_CACHE_BACKEND")
	applyEnv(&out.RedisAddr, "WASTESORT_REDIS_ADDR")
	applyEnv(&out.CacheTTLSecs, "WASTESORT_CACHE_TTL_SECS")
	applyEnv(&out.LogLevel, "WASTESORT_LOG_LEVEL")

	apply(&out.DataFile, opts.CLIDataFile, SourceCLI, "--data")
	apply(&out.StoreBackend, opts.CLIBackend, SourceCLI, "--backend")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.ServerAddr, opts.CLIAddr, SourceCLI, "--addr")
	apply(&out.ImageBackend, opts.CLIImage, SourceCLI, "--image-backend")
	apply(&out.LogLevel, opts.CLILogLevel, SourceCLI, "--log-level")

	for _, p := range []*ResolvedValue{&out.DataFile, &out.DBPath, &out.ONNXLibrary,
		&out.ONNXVisionModel, &out.ONNXTextModel, &out.ONNXTokenizer} {
		if p.Value != "" {
			p.Value = expandUserPath(p.Value)
		}
	}

	return out, nil
}

// Validate checks enumerations and numeric settings.
func (r ResolvedConfig) Validate() error {
	if err := oneOf("store.backend", r.StoreBackend, "csv", "sqlite"); err != nil {
		return err
	}
	if err := oneOf("image.backend", r.ImageBackend, "none", "onnx", "http"); err != nil {
		return err
	}
	if err := oneOf("cache.backend", r.CacheBackend, "none", "memory", "redis"); err != nil {
		return err
	}
	if err := oneOf("log.level", r.LogLevel, "debug", "info", "warn", "error"); err != nil {
		return err
	}

	th, err := r.ImageThreshold.Float()
	if err != nil {
		return fmt.Errorf("image.threshold: %w", err)
	}
	if th < 0 || th > 1 {
		return fmt.Errorf("image.threshold: %v is outside [0,1]", th)
	}
	for name, v := range map[string]ResolvedValue{
		"server.max_upload_mb":    r.MaxUploadMB,
		"image.top_k":             r.ImageTopK,
		"image.http.timeout_secs": r.HTTPTimeoutSecs,
		"cache.ttl_secs":          r.CacheTTLSecs,
	} {
		n, err := v.Int()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if n <= 0 {
			return fmt.Errorf("%s: must be positive, got %d", name, n)
		}
	}

	switch strings.ToLower(r.ImageBackend.Value) {
	case "onnx":
		for name, v := range map[string]ResolvedValue{
			"image.onnx.vision_model": r.ONNXVisionModel,
			"image.onnx.text_model":   r.ONNXTextModel,
			"image.onnx.tokenizer":    r.ONNXTokenizer,
		} {
			if v.Value == "" {
				return fmt.Errorf("%s is required when image.backend is onnx", name)
			}
		}
	case "http":
		if r.HTTPEndpoint.Value == "" {
			return fmt.Errorf("image.http.endpoint is required when image.backend is http")
		}
	}
	return nil
}

// Entry is one resolved setting for display.
type Entry struct {
	Key string
	ResolvedValue
}

// Entries lists every setting in a stable order. Secrets are masked.
func (r ResolvedConfig) Entries() []Entry {
	apiKey := r.HTTPAPIKey
	if apiKey.Value != "" {
		apiKey.Value = maskSecret(apiKey.Value)
	}
	return []Entry{
		{"data_file", r.DataFile},
		{"store.backend", r.StoreBackend},
		{"store.db_path", r.DBPath},
		{"server.addr", r.ServerAddr},
		{"server.max_upload_mb", r.MaxUploadMB},
		{"image.backend", r.ImageBackend},
		{"image.threshold", r.ImageThreshold},
		{"image.top_k", r.ImageTopK},
		{"image.onnx.library_path", r.ONNXLibrary},
		{"image.onnx.vision_model", r.ONNXVisionModel},
		{"image.onnx.text_model", r.ONNXTextModel},
		{"image.onnx.tokenizer", r.ONNXTokenizer},
		{"image.http.endpoint", r.HTTPEndpoint},
		{"image.http.api_key", apiKey},
		{"image.http.timeout_secs", r.HTTPTimeoutSecs},
		{"cache.backend", r.CacheBackend},
		{"cache.redis_addr", r.RedisAddr},
		{"cache.ttl_secs", r.CacheTTLSecs},
		{"log.level", r.LogLevel},
	}
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func oneOf(name string, v ResolvedValue, allowed ...string) error {
	got := strings.ToLower(v.Value)
	for _, a := range allowed {
		if got == a {
			return nil
		}
	}
	return fmt.Errorf("%s: %q (from %s) must be one of %s", name, v.Value, v.Source, strings.Join(allowed, ", "))
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// ExpandUserPath replaces a leading "~/" with the home directory.
func ExpandUserPath(path string) string { return expandUserPath(path) }

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
