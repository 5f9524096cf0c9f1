package biometric

import (
	"context"
	"time"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/constants"
	"rollcall.io/infrastructure/biometric/types"
)

// FaceService composes the model collaborators into the operations the
// use cases need. Its fields are set once at start up and never mutated.
type FaceService struct {
	Locator   types.FaceLocator
	Embedder  types.Embedder
	Spoof     types.SpoofClassifier
	Landmarks types.LandmarkExtractor
	Health    types.HealthChecker
	Dimension int
}

// Embed locates the most confident face, crops it to the embedder input size
// and returns its embedding.
func (f *FaceService) Embed(ctx context.Context, data []byte) ([]float32, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	boxes, err := f.Locator.Locate(ctx, data)
	if err != nil {
		return nil, apperrors.ModelError("locate face", err)
	}
	best, ok := pickFace(boxes)
	if !ok {
		return nil, apperrors.ErrNoFaceDetected
	}
	rect := best.Box.Rect(img.Bounds())
	if rect.Empty() {
		return nil, apperrors.ErrNoFaceDetected
	}

	embedding, err := f.Embedder.Embed(ctx, CropFace(img, rect, constants.FACE_INPUT_SIZE))
	if err != nil {
		return nil, apperrors.ModelError("embed face", err)
	}
	if f.Dimension > 0 && len(embedding) != f.Dimension {
		return nil, &apperrors.DimensionError{Want: f.Dimension, Got: len(embedding)}
	}
	return embedding, nil
}

// CheckSpoof classifies a single image and aggregates the detections.
func (f *FaceService) CheckSpoof(ctx context.Context, data []byte) (types.SpoofVerdict, error) {
	if _, ok := DetectImageType(data); !ok {
		return types.SpoofVerdict{}, apperrors.ErrInvalidImage
	}
	detections, err := f.Spoof.Classify(ctx, data)
	if err != nil {
		return types.SpoofVerdict{}, apperrors.ModelError("classify spoof", err)
	}
	return AggregateSpoof(detections), nil
}

// Frame turns a captured image into a challenge session frame. A frame in
// which no face is found is returned with nil landmarks, not as an error.
func (f *FaceService) Frame(ctx context.Context, data []byte, capturedAt time.Time) (types.Frame, error) {
	if _, ok := DetectImageType(data); !ok {
		return types.Frame{}, apperrors.ErrInvalidImage
	}
	landmarks, err := f.Landmarks.Extract(ctx, data)
	if err != nil {
		return types.Frame{}, apperrors.ModelError("extract landmarks", err)
	}
	return types.Frame{CapturedAt: capturedAt, Landmarks: landmarks}, nil
}

func (f *FaceService) Healthy(ctx context.Context) error {
	if f.Health == nil {
		return nil
	}
	if err := f.Health.Healthy(ctx); err != nil {
		return apperrors.ModelError("model health", err)
	}
	return nil
}

// pickFace returns the most confident box, the first one on ties.
func pickFace(boxes []types.FaceBox) (types.FaceBox, bool) {
	if len(boxes) == 0 {
		return types.FaceBox{}, false
	}
	best := boxes[0]
	for _, box := range boxes[1:] {
		if box.Confidence > best.Confidence {
			best = box
		}
	}
	return best, true
}
