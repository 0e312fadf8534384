package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type FFmpegConfig struct {
	FFmpegPath  string
	FFprobePath string
	Logger      *slog.Logger
}

func (c FFmpegConfig) withDefaults() FFmpegConfig {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// FFmpegSource decodes a video file by piping ffmpeg rawvideo output.
type FFmpegSource struct {
	path   string
	info   Info
	cfg    FFmpegConfig
	logger *slog.Logger
}

// OpenFile probes the file with ffprobe and returns a source ready to decode.
func OpenFile(ctx context.Context, path string, cfg FFmpegConfig) (*FFmpegSource, error) {
	cfg = cfg.withDefaults()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("video input file: %w", err)
	}

	info, err := probe(ctx, cfg.FFprobePath, path)
	if err != nil {
		return nil, err
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("probe %s: invalid dimensions %dx%d", path, info.Width, info.Height)
	}

	return &FFmpegSource{
		path:   path,
		info:   info,
		cfg:    cfg,
		logger: cfg.Logger.With("component", "ffmpeg-source"),
	}, nil
}

func (s *FFmpegSource) Info() Info {
	return s.info
}

func (s *FFmpegSource) Frames(ctx context.Context, step int, fn FrameFunc) error {
	if step < 1 {
		step = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	args := []string{
		"-v", "error",
		"-noautorotate",
		"-i", s.path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	}
	cmd := exec.CommandContext(ctx, s.cfg.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout: %w", err)
	}

	s.logger.Debug("executing ffmpeg", "cmd", s.cfg.FFmpegPath+" "+strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	frameSize := s.info.Width * s.info.Height * 3
	buf := make([]byte, frameSize)
	walkErr := func() error {
		for index := 0; ; index++ {
			if _, err := io.ReadFull(stdout, buf); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					return nil
				}
				return fmt.Errorf("read frame %d: %w", index, err)
			}
			if index%step != 0 {
				continue
			}
			if err := fn(index, rgbToImage(buf, s.info.Width, s.info.Height)); err != nil {
				return err
			}
		}
	}()

	stopped := walkErr != nil
	if stopped {
		cancel()
	}
	waitErr := cmd.Wait()

	if walkErr != nil {
		if errors.Is(walkErr, ErrStopIteration) {
			return nil
		}
		return walkErr
	}
	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Error("ffmpeg command failed", "error", waitErr, "output", stderr.String())
		return fmt.Errorf("ffmpeg error: %w, output: %s", waitErr, stderr.String())
	}
	return nil
}

func rgbToImage(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(buf) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
}

func probe(ctx context.Context, ffprobe, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate,nb_frames",
		"-of", "json",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe(output)
}

func parseProbe(data []byte) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Info{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return Info{}, errors.New("no video stream")
	}

	st := out.Streams[0]
	fps := parseRate(st.AvgFrameRate)
	if fps <= 0 {
		fps = parseRate(st.RFrameRate)
	}
	frames, _ := strconv.Atoi(st.NbFrames)

	return Info{
		Width:      st.Width,
		Height:     st.Height,
		FPS:        fps,
		FrameCount: frames,
	}, nil
}

// parseRate reads ffprobe rationals such as "30000/1001".
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
