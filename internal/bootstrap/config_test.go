package bootstrap

import (
	"testing"
	"time"

	"github.com/eleven-am/pose-coach/internal/align"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, DetectorONNX, cfg.DetectorBackend)
	assert.Equal(t, 17, cfg.SkeletonSize)
	assert.Equal(t, time.Second, cfg.SampleInterval)
	assert.Equal(t, 3, cfg.SmoothingWindow)
	assert.Equal(t, "gpt-4o-mini", cfg.FeedbackModel)
	assert.Equal(t, 2.0, cfg.AccuracyThreshold)
	assert.Equal(t, 24*time.Hour, cfg.ReferenceCacheTTL)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DETECTOR_BACKEND", "http")
	t.Setenv("SAMPLE_INTERVAL", "500ms")
	t.Setenv("SKELETON_SIZE", "33")
	t.Setenv("ACCURACY_THRESHOLD", "1.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DetectorHTTP, cfg.DetectorBackend)
	assert.Equal(t, 500*time.Millisecond, cfg.SampleInterval)
	assert.Equal(t, 33, cfg.SkeletonSize)
	assert.Equal(t, 1.5, cfg.AccuracyThreshold)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := map[string]string{
		"DETECTOR_BACKEND": "tflite",
		"SKELETON_SIZE":    "1",
		"SMOOTHING_WINDOW": "0",
		"SAMPLE_INTERVAL":  "-1s",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := &Config{
		SkeletonSize:    17,
		SampleInterval:  2 * time.Second,
		SmoothingWindow: 5,
		AlignMode:       "temporal",
	}

	pc := PipelineConfig(cfg)
	assert.Equal(t, "coco17", pc.Skeleton.Name)
	assert.Equal(t, 2*time.Second, pc.SampleInterval)
	assert.Equal(t, 5, pc.SmoothingWindow)
	assert.Equal(t, align.ModeTemporal, pc.AlignMode)
}

func TestNewDetector_HTTP(t *testing.T) {
	det, err := NewDetector(&Config{DetectorBackend: DetectorHTTP, DetectorURL: "http://localhost:9000"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, det)
}

func TestNewDetector_Unknown(t *testing.T) {
	_, err := NewDetector(&Config{DetectorBackend: "tflite"}, nil)
	assert.Error(t, err)
}

func TestNewFeedbackService_WithoutKey(t *testing.T) {
	svc := NewFeedbackService(&Config{AccuracyThreshold: 2}, nil)
	assert.Equal(t, 2.0, svc.Threshold())
}
