package media

import (
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	VideoTypes = []string{"video/mp4", "video/quicktime"}
	ImageTypes = []string{"image/jpeg", "image/png", "image/webp"}
)

// Sniff detects the media type from the file's leading bytes and rewinds it.
func Sniff(f File) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

// Allowed reports whether contentType (parameters ignored) is one of allowed.
func Allowed(contentType string, allowed []string) bool {
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, a := range allowed {
		if strings.EqualFold(base, a) {
			return true
		}
	}
	return false
}
