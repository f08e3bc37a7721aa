package client

import (
	"encoding/base64"
	"fmt"
	"os"
)

// EncodeImage base64-encodes raw image bytes for ChatRequest.Images.
func EncodeImage(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeImageFile reads an image from disk and returns it base64-encoded.
func EncodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return EncodeImage(data), nil
}
