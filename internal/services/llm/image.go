package llm

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"

	"github.com/nfnt/resize"
)

const jpegQuality = 85

// imageDataURI reads path and returns it as a base64 data URI. Decodable
// images wider than maxWidth are downscaled and re-encoded as JPEG; formats
// the standard decoders do not know are sent unchanged.
func imageDataURI(path string, maxWidth int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("read image: %s is empty", path)
	}

	encoded, err := resizeImage(data, maxWidth)
	if err != nil {
		mime := http.DetectContentType(data)
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encoded), nil
}

// resizeImage scales data to maxWidth preserving the aspect ratio and
// returns JPEG bytes.
func resizeImage(data []byte, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if maxWidth > 0 && bounds.Dx() > maxWidth {
		height := uint(float64(maxWidth) * float64(bounds.Dy()) / float64(bounds.Dx()))
		img = resize.Resize(uint(maxWidth), height, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
