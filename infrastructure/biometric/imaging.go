package biometric

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http"

	xdraw "golang.org/x/image/draw"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/constants"
	"rollcall.io/application/utils"
)

// DetectImageType sniffs the content type and reports whether it is accepted.
func DetectImageType(data []byte) (string, bool) {
	contentType := http.DetectContentType(data)
	return contentType, utils.HasItemString(&constants.ALLOWED_IMAGE_TYPES, contentType)
}

// DecodeImage accepts JPEG and PNG only.
func DecodeImage(data []byte) (image.Image, error) {
	if _, ok := DetectImageType(data); !ok {
		return nil, apperrors.ErrInvalidImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap("decode image", "", fmt.Errorf("%w: %w", apperrors.ErrInvalidImage, err))
	}
	return img, nil
}

// CropFace crops rect out of img and resamples it to a size x size RGB square.
func CropFace(img image.Image, rect image.Rectangle, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, xdraw.Src, nil)
	return dst
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
