package detector

import (
	"context"
	"image"
	"sync"

	"github.com/eleven-am/pose-coach/internal/pose"
)

// Detector finds people in a single image. Each returned RawFrame holds one
// person's keypoints in the image's pixel space.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]pose.RawFrame, error)
}

type concurrent interface {
	Concurrent() bool
}

// SupportsConcurrency reports whether d may be called from several
// goroutines at once without external locking.
func SupportsConcurrency(d Detector) bool {
	c, ok := d.(concurrent)
	return ok && c.Concurrent()
}

// Serialized guards a detector that cannot be invoked concurrently.
type Serialized struct {
	mu    sync.Mutex
	inner Detector
}

func Serialize(d Detector) *Serialized {
	if s, ok := d.(*Serialized); ok {
		return s
	}
	return &Serialized{inner: d}
}

func (s *Serialized) Detect(ctx context.Context, img image.Image) ([]pose.RawFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.inner.Detect(ctx, img)
}

func (s *Serialized) Close() error {
	if c, ok := s.inner.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
