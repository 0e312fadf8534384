package detector

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"time"

	"github.com/eleven-am/pose-coach/internal/pose"
)

type HTTPConfig struct {
	URL     string
	Timeout time.Duration
	Quality int
}

// HTTPClient calls a remote pose service that accepts a JPEG frame and
// answers with per-person keypoints.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	quality    int
}

func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	quality := cfg.Quality
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.URL,
		quality:    quality,
	}
}

type detectRequest struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type detectResponse struct {
	People []struct {
		Keypoints []pose.Keypoint `json:"keypoints"`
	} `json:"people"`
}

func (c *HTTPClient) Detect(ctx context.Context, img image.Image) ([]pose.RawFrame, error) {
	if img == nil {
		return nil, fmt.Errorf("no frame provided")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	b := img.Bounds()
	body, err := json.Marshal(detectRequest{
		Image:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  b.Dx(),
		Height: b.Dy(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pose", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pose request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose service returned status %d", resp.StatusCode)
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	people := make([]pose.RawFrame, 0, len(out.People))
	for _, p := range out.People {
		people = append(people, pose.RawFrame(p.Keypoints))
	}
	return people, nil
}

func (c *HTTPClient) Concurrent() bool { return true }

func (c *HTTPClient) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
