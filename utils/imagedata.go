package utils

import (
	"encoding/base64"
	"errors"
	"strings"

	"backend/models"
)

// ParseImageData turns a data URI (or bare base64 string) into an
// ImagePayload. The media type comes from the URI prefix, defaulting to JPEG
// the way camera uploads arrive; content must decode as base64 and fit the
// 5 MiB bound.
func ParseImageData(input string) (models.ImagePayload, error) {
	if strings.TrimSpace(input) == "" {
		return models.ImagePayload{}, errors.New("No image provided")
	}

	data := input
	if idx := strings.Index(input, "base64,"); idx >= 0 {
		data = input[idx+len("base64,"):]
	}

	mediaType := models.MediaJPEG
	switch {
	case strings.Contains(input, models.MediaPNG):
		mediaType = models.MediaPNG
	case strings.Contains(input, models.MediaWEBP):
		mediaType = models.MediaWEBP
	case strings.Contains(input, models.MediaGIF):
		mediaType = models.MediaGIF
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return models.ImagePayload{}, errors.New("Invalid image encoding")
	}
	if len(raw) == 0 {
		return models.ImagePayload{}, errors.New("No image provided")
	}
	if len(raw) > models.MaxImageBytes {
		return models.ImagePayload{}, errors.New("Image size must be less than 5MB")
	}

	return models.ImagePayload{Data: data, MediaType: mediaType}, nil
}
