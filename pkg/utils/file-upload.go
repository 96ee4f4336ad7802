package utils

import (
	"fmt"
	"net/http"
)

// ValidateFileTypeFromContent validates an upload based on its actual
// content, not the claimed Content-Type header. head should hold the
// first bytes of the file (512 are enough for http.DetectContentType).
// allowedTypes is a slice of allowed MIME types (e.g., []string{"application/pdf", "image/png"}).
// Returns the detected content type and an error if validation fails.
func ValidateFileTypeFromContent(head []byte, allowedTypes []string) (string, error) {
	if len(head) == 0 {
		return "", fmt.Errorf("file is empty")
	}

	contentType := http.DetectContentType(head)

	if len(allowedTypes) == 0 {
		return contentType, nil
	}

	if ContainsString(allowedTypes, contentType) {
		return contentType, nil
	}
	return "", fmt.Errorf("invalid file type: %s", contentType)
}

// GetFileExtensionFromContentType returns the appropriate file extension (with leading dot)
// based on the detected content type. Returns empty string if content type is not recognized.
func GetFileExtensionFromContentType(contentType string) string {
	extensionMap := map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/gif":       ".gif",
		"image/webp":      ".webp",
		"application/pdf": ".pdf",
	}

	if ext, ok := extensionMap[contentType]; ok {
		return ext
	}
	return ""
}
