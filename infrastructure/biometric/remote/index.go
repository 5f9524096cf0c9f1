package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"

	"rollcall.io/infrastructure/biometric/types"
	"rollcall.io/infrastructure/logger"
	"rollcall.io/infrastructure/network"
)

// ModelServer talks to the model serving sidecar. It implements every model
// capability the service needs. Callers map its errors to the model
// unavailable category.
type ModelServer struct {
	Network *network.NetworkController

	ClassNames     []string
	ConfThreshold  float64
	SpoofImageSize int
}

type imageRequest struct {
	Image string `json:"image"`
}

type spoofRequest struct {
	Image     string  `json:"image"`
	ImageSize int     `json:"imgsz"`
	Conf      float64 `json:"conf"`
}

type detectFacesResponse struct {
	Faces []types.FaceBox `json:"faces"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type spoofBox struct {
	Box        types.Box `json:"box"`
	Confidence float64   `json:"confidence"`
	ClassID    int       `json:"class_id"`
}

type spoofResponse struct {
	Detections []spoofBox `json:"detections"`
}

type landmarksResponse struct {
	Landmarks *types.Landmarks `json:"landmarks"`
}

func (m *ModelServer) Locate(ctx context.Context, img []byte) ([]types.FaceBox, error) {
	var result detectFacesResponse
	if err := m.post(ctx, "/detect-faces", imageRequest{Image: encode(img)}, &result); err != nil {
		return nil, err
	}
	return result.Faces, nil
}

func (m *ModelServer) Embed(ctx context.Context, face image.Image) ([]float32, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, face); err != nil {
		return nil, err
	}
	var result embedResponse
	if err := m.post(ctx, "/embed", imageRequest{Image: encode(buf.Bytes())}, &result); err != nil {
		return nil, err
	}
	return result.Embedding, nil
}

// Classify drops detections under ConfThreshold and names the rest from
// ClassNames. Class ids outside ClassNames are reported as unknown.
func (m *ModelServer) Classify(ctx context.Context, img []byte) ([]types.SpoofDetection, error) {
	var result spoofResponse
	payload := spoofRequest{Image: encode(img), ImageSize: m.SpoofImageSize, Conf: m.ConfThreshold}
	if err := m.post(ctx, "/classify-spoof", payload, &result); err != nil {
		return nil, err
	}
	detections := make([]types.SpoofDetection, 0, len(result.Detections))
	for _, d := range result.Detections {
		if d.Confidence < m.ConfThreshold {
			continue
		}
		label := types.SpoofLabelUnknown
		if d.ClassID >= 0 && d.ClassID < len(m.ClassNames) {
			label = types.SpoofLabel(m.ClassNames[d.ClassID])
		}
		detections = append(detections, types.SpoofDetection{Box: d.Box, Confidence: d.Confidence, Label: label})
	}
	return detections, nil
}

func (m *ModelServer) Extract(ctx context.Context, img []byte) (*types.Landmarks, error) {
	var result landmarksResponse
	if err := m.post(ctx, "/landmarks", imageRequest{Image: encode(img)}, &result); err != nil {
		return nil, err
	}
	return result.Landmarks, nil
}

func (m *ModelServer) Healthy(ctx context.Context) error {
	_, statusCode, err := m.Network.Get(ctx, "/health", nil)
	if err != nil {
		return err
	}
	if statusCode == nil || *statusCode != 200 {
		return fmt.Errorf("model server health returned %v", statusCodeValue(statusCode))
	}
	return nil
}

func (m *ModelServer) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	response, statusCode, err := m.Network.Post(ctx, path, &map[string]string{}, body)
	if err != nil {
		logger.Error("model server request failed", logger.LoggerOptions{
			Key:  "path",
			Data: path,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	if statusCode == nil || *statusCode != 200 {
		logger.Error("model server request failed with status code", logger.LoggerOptions{
			Key:  "path",
			Data: path,
		}, logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCodeValue(statusCode),
		})
		return fmt.Errorf("%s returned status %d", path, statusCodeValue(statusCode))
	}
	if err := json.Unmarshal(*response, out); err != nil {
		logger.Error("error unmarshaling model server response", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	return nil
}

func encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func statusCodeValue(code *int) int {
	if code == nil {
		return 0
	}
	return *code
}
