package predict

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"
)

// CLIP image preprocessing constants.
const (
	clipImageSize  = 224
	clipLogitScale = 100
)

var (
	clipMean = [3]float32{0.48145466, 0.4578275, 0.40821073}
	clipStd  = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

// Default tensor names of the split CLIP exports (vision_model.onnx / text_model.onnx).
const (
	DefaultPixelInput  = "pixel_values"
	DefaultImageOutput = "image_embeds"
	DefaultIDsInput    = "input_ids"
	DefaultMaskInput   = "attention_mask"
	DefaultTextOutput  = "text_embeds"
)

// ONNXConfig locates the CLIP model files.
type ONNXConfig struct {
	LibraryPath string // onnxruntime shared library; empty uses the platform default
	VisionModel string
	TextModel   string
	Tokenizer   string // tokenizer.json

	PixelInput  string
	ImageOutput string
	IDsInput    string
	MaskInput   string
	TextOutput  string
}

// Validate checks that every model file is named and fills default tensor names.
func (c *ONNXConfig) Validate() error {
	if c.VisionModel == "" {
		return errors.New("vision model path is required")
	}
	if c.TextModel == "" {
		return errors.New("text model path is required")
	}
	if c.Tokenizer == "" {
		return errors.New("tokenizer path is required")
	}
	setDefault(&c.PixelInput, DefaultPixelInput)
	setDefault(&c.ImageOutput, DefaultImageOutput)
	setDefault(&c.IDsInput, DefaultIDsInput)
	setDefault(&c.MaskInput, DefaultMaskInput)
	setDefault(&c.TextOutput, DefaultTextOutput)
	return nil
}

func setDefault(s *string, v string) {
	if *s == "" {
		*s = v
	}
}

// ONNXPredictor scores images against a fixed label set with a CLIP model
// (zero-shot classification). Models load on first use.
type ONNXPredictor struct {
	cfg    ONNXConfig
	labels []string

	mu         sync.Mutex
	vision     *ort.DynamicAdvancedSession
	textEmbeds [][]float32
	loaded     atomic.Bool
}

// onnxruntime keeps one environment per process.
var ortEnv struct {
	once sync.Once
	err  error
}

func initRuntime(libraryPath string) error {
	ortEnv.once.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// NewONNXPredictor returns a predictor over the labels of table.
func NewONNXPredictor(cfg ONNXConfig, table *LabelTable) (*ONNXPredictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid onnx config: %w", err)
	}
	if table.Len() == 0 {
		return nil, errors.New("label table is empty")
	}
	return &ONNXPredictor{cfg: cfg, labels: table.Labels()}, nil
}

// Name implements Predictor.
func (p *ONNXPredictor) Name() string { return "onnx" }

// Loaded reports whether the models are in memory.
func (p *ONNXPredictor) Loaded() bool { return p.loaded.Load() }

// Predict implements Predictor.
func (p *ONNXPredictor) Predict(ctx context.Context, img *Image, topK int) ([]Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.load(); err != nil {
		return nil, fmt.Errorf("%w: loading clip model: %v", ErrPredictor, err)
	}

	pixels, err := ort.NewTensor(ort.NewShape(1, 3, clipImageSize, clipImageSize), clipPixels(img.Image))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPredictor, err)
	}
	defer pixels.Destroy()

	embed, err := runEmbedding(p.vision, pixels)
	if err != nil {
		return nil, fmt.Errorf("%w: vision model: %v", ErrPredictor, err)
	}
	normalize(embed)

	logits := make([]float64, len(p.textEmbeds))
	for i, t := range p.textEmbeds {
		logits[i] = clipLogitScale * dot(embed, t)
	}
	return topPredictions(p.labels, softmax(logits), topK), nil
}

// load must be called with p.mu held.
func (p *ONNXPredictor) load() error {
	if p.loaded.Load() {
		return nil
	}
	if err := initRuntime(p.cfg.LibraryPath); err != nil {
		return fmt.Errorf("initializing onnxruntime: %w", err)
	}

	tk, err := pretrained.FromFile(p.cfg.Tokenizer)
	if err != nil {
		return fmt.Errorf("loading tokenizer: %w", err)
	}
	text, err := ort.NewDynamicAdvancedSession(p.cfg.TextModel,
		[]string{p.cfg.IDsInput, p.cfg.MaskInput}, []string{p.cfg.TextOutput}, nil)
	if err != nil {
		return fmt.Errorf("opening text model: %w", err)
	}
	defer text.Destroy()

	embeds := make([][]float32, len(p.labels))
	for i, label := range p.labels {
		e, err := embedText(tk, text, label)
		if err != nil {
			return fmt.Errorf("embedding label %q: %w", label, err)
		}
		normalize(e)
		embeds[i] = e
	}

	vision, err := ort.NewDynamicAdvancedSession(p.cfg.VisionModel,
		[]string{p.cfg.PixelInput}, []string{p.cfg.ImageOutput}, nil)
	if err != nil {
		return fmt.Errorf("opening vision model: %w", err)
	}

	p.vision = vision
	p.textEmbeds = embeds
	p.loaded.Store(true)
	return nil
}

// Close releases the vision session.
func (p *ONNXPredictor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.vision == nil {
		return nil
	}
	err := p.vision.Destroy()
	p.vision = nil
	p.textEmbeds = nil
	p.loaded.Store(false)
	return err
}

func embedText(tk *tokenizer.Tokenizer, session *ort.DynamicAdvancedSession, label string) ([]float32, error) {
	enc, err := tk.EncodeSingle(label, true)
	if err != nil {
		return nil, err
	}
	shape := ort.NewShape(1, int64(len(enc.Ids)))

	ids, err := ort.NewTensor(shape, toInt64(enc.Ids))
	if err != nil {
		return nil, err
	}
	defer ids.Destroy()
	mask, err := ort.NewTensor(shape, toInt64(enc.AttentionMask))
	if err != nil {
		return nil, err
	}
	defer mask.Destroy()

	return runEmbedding(session, ids, mask)
}

// runEmbedding runs session and copies out its single float32 output.
func runEmbedding(session *ort.DynamicAdvancedSession, inputs ...ort.Value) ([]float32, error) {
	outputs := []ort.Value{nil}
	if err := session.Run(inputs, outputs); err != nil {
		return nil, err
	}
	defer outputs[0].Destroy()

	t, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	return append([]float32(nil), t.GetData()...), nil
}

func toInt64(v []int) []int64 {
	out := make([]int64, len(v))
	for i, x := range v {
		out[i] = int64(x)
	}
	return out
}

// clipPixels center-crops src to a square, scales it to 224x224 and returns
// normalized CHW float data.
func clipPixels(src image.Image) []float32 {
	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, clipImageSize, clipImageSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	const plane = clipImageSize * clipImageSize
	out := make([]float32, 3*plane)
	for y := 0; y < clipImageSize; y++ {
		for x := 0; x < clipImageSize; x++ {
			off := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := float32(dst.Pix[off+c]) / 255
				out[c*plane+y*clipImageSize+x] = (v - clipMean[c]) / clipStd[c]
			}
		}
	}
	return out
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range min(len(a), len(b)) {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}
	peak := logits[0]
	for _, l := range logits[1:] {
		peak = max(peak, l)
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// topPredictions returns the k most probable labels, highest first.
func topPredictions(labels []string, probs []float64, k int) []Prediction {
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return probs[idx[a]] > probs[idx[b]] })
	if k <= 0 || k > len(idx) {
		k = len(idx)
	}
	out := make([]Prediction, k)
	for i := 0; i < k; i++ {
		out[i] = Prediction{Label: labels[idx[i]], Confidence: probs[idx[i]]}
	}
	return out
}
