package detector

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/eleven-am/pose-coach/internal/pose"
	"golang.org/x/image/draw"
)

var letterboxFill = color.RGBA{R: 114, G: 114, B: 114, A: 255}

type letterbox struct {
	scale float64
	padX  float64
	padY  float64
}

// restore maps model-space coordinates back to the source image.
func (l letterbox) restore(x, y float64) (float64, float64) {
	return (x - l.padX) / l.scale, (y - l.padY) / l.scale
}

// letterboxImage scales img into a size x size square keeping its aspect
// ratio and pads the remainder with grey.
func letterboxImage(img image.Image, size int) (*image.RGBA, letterbox) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	padX := (size - nw) / 2
	padY := (size - nh) / 2

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: letterboxFill}, image.Point{}, draw.Src)
	draw.BiLinear.Scale(dst, image.Rect(padX, padY, padX+nw, padY+nh), img, b, draw.Src, nil)

	return dst, letterbox{scale: scale, padX: float64(padX), padY: float64(padY)}
}

// toCHW converts an RGBA image to a planar float tensor in [0,1].
func toCHW(img *image.RGBA) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	out := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			i := y*w + x
			out[i] = float32(img.Pix[o]) / 255
			out[plane+i] = float32(img.Pix[o+1]) / 255
			out[2*plane+i] = float32(img.Pix[o+2]) / 255
		}
	}
	return out
}

type candidate struct {
	x1, y1, x2, y2 float64
	score          float64
	keypoints      pose.RawFrame
}

// decodePose reads a YOLOv8-pose output laid out as
// [4 box + 1 score + 3*joints] features by anchors.
func decodePose(data []float32, anchors, joints int, minScore float64, lb letterbox) []candidate {
	features := 5 + 3*joints
	if anchors <= 0 || len(data) < features*anchors {
		return nil
	}
	at := func(f, a int) float64 {
		return float64(data[f*anchors+a])
	}

	var out []candidate
	for a := 0; a < anchors; a++ {
		score := at(4, a)
		if score < minScore {
			continue
		}
		cx, cy, bw, bh := at(0, a), at(1, a), at(2, a), at(3, a)
		x1, y1 := lb.restore(cx-bw/2, cy-bh/2)
		x2, y2 := lb.restore(cx+bw/2, cy+bh/2)

		kps := make(pose.RawFrame, joints)
		for k := 0; k < joints; k++ {
			x, y := lb.restore(at(5+3*k, a), at(6+3*k, a))
			kps[k] = pose.Keypoint{X: x, Y: y, Confidence: at(7+3*k, a)}
		}
		out = append(out, candidate{x1: x1, y1: y1, x2: x2, y2: y2, score: score, keypoints: kps})
	}
	return out
}

func nms(cands []candidate, maxIoU float64) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	var kept []candidate
	for _, c := range cands {
		overlap := false
		for _, k := range kept {
			if iou(c, k) > maxIoU {
				overlap = true
				break
			}
		}
		if !overlap {
			kept = append(kept, c)
		}
	}
	return kept
}

func iou(a, b candidate) float64 {
	ix := math.Max(0, math.Min(a.x2, b.x2)-math.Max(a.x1, b.x1))
	iy := math.Max(0, math.Min(a.y2, b.y2)-math.Max(a.y1, b.y1))
	inter := ix * iy
	union := (a.x2-a.x1)*(a.y2-a.y1) + (b.x2-b.x1)*(b.y2-b.y1) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
