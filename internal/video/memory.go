package video

import (
	"context"
	"errors"
	"image"
)

// MemorySource serves frames that are already decoded.
type MemorySource struct {
	info   Info
	frames []image.Image
}

func NewMemorySource(fps float64, frames []image.Image) *MemorySource {
	info := Info{FPS: fps, FrameCount: len(frames)}
	if len(frames) > 0 {
		b := frames[0].Bounds()
		info.Width, info.Height = b.Dx(), b.Dy()
	}
	return &MemorySource{info: info, frames: frames}
}

func (s *MemorySource) Info() Info {
	return s.info
}

func (s *MemorySource) Frames(ctx context.Context, step int, fn FrameFunc) error {
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(s.frames); i += step {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i, s.frames[i]); err != nil {
			if errors.Is(err, ErrStopIteration) {
				return nil
			}
			return err
		}
	}
	return nil
}
