package pose

import "strconv"

// Keypoint is a single detected joint in pixel space.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// RawFrame holds the keypoints one detector pass produced for one person.
// It may be shorter than the skeleton when joints were dropped.
type RawFrame []Keypoint

// Flatten returns the coordinates as x0,y0,x1,y1,...
func (f RawFrame) Flatten() []float64 {
	out := make([]float64, 0, len(f)*2)
	for _, kp := range f {
		out = append(out, kp.X, kp.Y)
	}
	return out
}

func (f RawFrame) MeanConfidence() float64 {
	if len(f) == 0 {
		return 0
	}
	var sum float64
	for _, kp := range f {
		sum += kp.Confidence
	}
	return sum / float64(len(f))
}

// MostConfident picks the person with the highest mean keypoint confidence.
// Ties keep the earlier detection.
func MostConfident(people []RawFrame) (RawFrame, bool) {
	best := -1
	bestScore := -1.0
	for i, p := range people {
		if len(p) == 0 {
			continue
		}
		if s := p.MeanConfidence(); s > bestScore {
			best = i
			bestScore = s
		}
	}
	if best < 0 {
		return nil, false
	}
	return people[best], true
}

type Skeleton struct {
	Name   string
	Joints []string
}

func (s Skeleton) Size() int {
	return len(s.Joints)
}

// FrameWidth is the length of a normalized frame for this skeleton.
func (s Skeleton) FrameWidth() int {
	return 2 * s.Size()
}

func (s Skeleton) DescriptorWidth() int {
	return PairCount(s.Size())
}

var COCO17 = Skeleton{
	Name: "coco17",
	Joints: []string{
		"nose",
		"left_eye",
		"right_eye",
		"left_ear",
		"right_ear",
		"left_shoulder",
		"right_shoulder",
		"left_elbow",
		"right_elbow",
		"left_wrist",
		"right_wrist",
		"left_hip",
		"right_hip",
		"left_knee",
		"right_knee",
		"left_ankle",
		"right_ankle",
	},
}

// SkeletonOfSize returns COCO17 for k == 17 and a generic skeleton with
// numbered joints otherwise.
func SkeletonOfSize(k int) Skeleton {
	if k == COCO17.Size() {
		return COCO17
	}
	joints := make([]string, k)
	for i := range joints {
		joints[i] = "joint_" + strconv.Itoa(i)
	}
	return Skeleton{Name: "generic" + strconv.Itoa(k), Joints: joints}
}
