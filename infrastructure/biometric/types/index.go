package types

import (
	"context"
	"image"
	"time"
)

// Box is a face bounding box in source image pixels.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Rect converts the box to an integer rectangle clamped to bounds.
func (b Box) Rect(bounds image.Rectangle) image.Rectangle {
	r := image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
	return r.Intersect(bounds)
}

type FaceBox struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
}

type SpoofLabel string

const (
	SpoofLabelReal    SpoofLabel = "real"
	SpoofLabelSpoof   SpoofLabel = "spoof"
	SpoofLabelUnknown SpoofLabel = "unknown"
	SpoofLabelNoFace  SpoofLabel = "no_face"
)

type SpoofDetection struct {
	Box        Box        `json:"box"`
	Confidence float64    `json:"confidence"`
	Label      SpoofLabel `json:"label"`
}

type SpoofCounts struct {
	Real    int `json:"real"`
	Spoof   int `json:"spoof"`
	Unknown int `json:"unknown"`
}

type SpoofVerdict struct {
	Overall SpoofLabel  `json:"overall"`
	Counts  SpoofCounts `json:"counts"`
	IsSpoof bool        `json:"isSpoof"`
}

// Verifiable reports whether the verdict can gate an attendance or enrollment.
func (v SpoofVerdict) Verifiable() bool {
	return v.Overall == SpoofLabelReal || v.Overall == SpoofLabelSpoof
}

type MatchResult struct {
	MatchedID  *string `json:"matchedId"`
	Similarity float64 `json:"similarity"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pose is head orientation in degrees. Positive yaw is to the person's right,
// positive pitch is downwards.
type Pose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// Landmarks is a face mesh in normalized image coordinates. Width and Height
// scale the points back to pixels and default to 1. Pose is optional; when
// absent it is estimated from the mesh.
type Landmarks struct {
	Points []Point `json:"points"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Pose   *Pose   `json:"pose,omitempty"`
}

// Signal is what a single frame contributes to a challenge session.
type Signal struct {
	Blinked        bool
	Yaw            float64
	Pitch          float64
	Roll           float64
	SmileRatio     float64
	MouthOpenRatio float64
}

// Frame is one observation in a challenge session. A nil Landmarks means the
// extractor found no face in the frame.
type Frame struct {
	CapturedAt time.Time
	Landmarks  *Landmarks
}

type FaceLocator interface {
	// Locate returns zero or more face boxes. An empty slice is not an error.
	Locate(ctx context.Context, img []byte) ([]FaceBox, error)
}

type Embedder interface {
	// Embed maps a square RGB face crop to a fixed length vector.
	Embed(ctx context.Context, face image.Image) ([]float32, error)
}

type SpoofClassifier interface {
	Classify(ctx context.Context, img []byte) ([]SpoofDetection, error)
}

type LandmarkExtractor interface {
	// Extract returns nil landmarks when no face is present.
	Extract(ctx context.Context, img []byte) (*Landmarks, error)
}

// HealthChecker is implemented by adapters that can report readiness.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}
