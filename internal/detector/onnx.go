package detector

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/eleven-am/pose-coach/internal/pose"
	ort "github.com/yalue/onnxruntime_go"
)

type ONNXConfig struct {
	ModelPath   string
	LibraryPath string
	InputSize   int
	Joints      int
	MinScore    float64
	MaxIoU      float64
	Threads     int
	Logger      *slog.Logger
}

func (c ONNXConfig) withDefaults() ONNXConfig {
	if c.InputSize == 0 {
		c.InputSize = 640
	}
	if c.Joints == 0 {
		c.Joints = pose.COCO17.Size()
	}
	if c.MinScore == 0 {
		c.MinScore = 0.25
	}
	if c.MaxIoU == 0 {
		c.MaxIoU = 0.7
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// ONNX runs a YOLOv8-pose model through onnxruntime. A session is not safe
// for concurrent use; wrap it with Serialize when sharing it.
type ONNX struct {
	session *ort.DynamicAdvancedSession
	cfg     ONNXConfig
	logger  *slog.Logger
}

func NewONNX(cfg ONNXConfig) (*ONNX, error) {
	cfg = cfg.withDefaults()
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx model path is required")
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return nil, fmt.Errorf("failed to set graph optimization: %w", err)
	}
	if err := opts.SetIntraOpNumThreads(cfg.Threads); err != nil {
		cfg.Logger.Warn("failed to set thread count", "error", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, []string{"images"}, []string{"output0"}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &ONNX{
		session: session,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "onnx-detector"),
	}, nil
}

func (d *ONNX) Detect(ctx context.Context, img image.Image) ([]pose.RawFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := d.cfg.InputSize
	boxed, lb := letterboxImage(img, size)

	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(size), int64(size)), toCHW(boxed))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := d.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output tensor is not float32 type")
	}

	shape := tensor.GetShape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}

	cands := decodePose(tensor.GetData(), int(shape[2]), d.cfg.Joints, d.cfg.MinScore, lb)
	kept := nms(cands, d.cfg.MaxIoU)

	people := make([]pose.RawFrame, len(kept))
	for i, c := range kept {
		people[i] = c.keypoints
	}
	d.logger.Debug("pose inference complete", "candidates", len(cands), "people", len(people))
	return people, nil
}

func (d *ONNX) Close() error {
	if d.session != nil {
		d.session.Destroy()
	}
	return ort.DestroyEnvironment()
}
