// Package pose defines the keypoint and frame types produced by the
// pose-estimation model, plus the joint-angle geometry shared by all
// exercise processors. The core never mutates keypoints; frames are
// ephemeral and live only for the duration of one processing call.
package pose

// Keypoint names follow the 17-point COCO vocabulary emitted by the
// pose model. The rep engine reads 13 of them (no eyes/ears).
const (
	Nose          = "nose"
	LeftEye       = "left_eye"
	RightEye      = "right_eye"
	LeftEar       = "left_ear"
	RightEar      = "right_ear"
	LeftShoulder  = "left_shoulder"
	RightShoulder = "right_shoulder"
	LeftElbow     = "left_elbow"
	RightElbow    = "right_elbow"
	LeftWrist     = "left_wrist"
	RightWrist    = "right_wrist"
	LeftHip       = "left_hip"
	RightHip      = "right_hip"
	LeftKnee      = "left_knee"
	RightKnee     = "right_knee"
	LeftAnkle     = "left_ankle"
	RightAnkle    = "right_ankle"
)

// Point is a 2-D position in frame pixel space. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Keypoint is a named anatomical landmark with a detection confidence
// in [0,1].
type Keypoint struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// Point returns the keypoint position.
func (k Keypoint) Point() Point {
	return Point{X: k.X, Y: k.Y}
}

// Frame is the full keypoint set for one video frame plus the frame
// dimensions used for normalization.
type Frame struct {
	Keypoints   []Keypoint `json:"keypoints"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	TimestampMS int64      `json:"timestamp_ms"`
}

// Lookup returns the named keypoint regardless of confidence. An
// absent name returns found=false, which callers treat identically to
// a low-confidence detection.
func (f *Frame) Lookup(name string) (Keypoint, bool) {
	for _, kp := range f.Keypoints {
		if kp.Name == name {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// Visible returns the named keypoint only if its confidence meets
// minScore.
func (f *Frame) Visible(name string, minScore float64) (Keypoint, bool) {
	kp, ok := f.Lookup(name)
	if !ok || kp.Score < minScore {
		return Keypoint{}, false
	}
	return kp, true
}

// AllVisible reports whether every named keypoint is present with at
// least minScore confidence.
func (f *Frame) AllVisible(minScore float64, names ...string) bool {
	for _, name := range names {
		if _, ok := f.Visible(name, minScore); !ok {
			return false
		}
	}
	return true
}
