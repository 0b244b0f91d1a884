package imagestore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxImageBytes = 5 << 20

var ErrInvalidImage = errors.New("invalid image")

// Uploader puts an object somewhere publicly readable and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Store turns client supplied image values into stored URLs. Without an
// uploader data URLs are kept inline.
type Store struct {
	up Uploader
}

func New(up Uploader) *Store {
	return &Store{up: up}
}

// Resolve accepts an empty value, an http(s) URL or a base64 image data URL.
func (s *Store) Resolve(ctx context.Context, folder, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "", nil
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		u, err := url.Parse(value)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("%w: bad url", ErrInvalidImage)
		}
		return value, nil
	case strings.HasPrefix(value, "data:"):
		contentType, data, err := decodeDataURL(value)
		if err != nil {
			return "", err
		}
		if s == nil || s.up == nil {
			return value, nil
		}
		key := objectKey(folder, contentType)
		u, err := s.up.Upload(ctx, key, data, contentType)
		if err != nil {
			return "", fmt.Errorf("upload image: %w", err)
		}
		return u, nil
	default:
		return "", fmt.Errorf("%w: expected url or data url", ErrInvalidImage)
	}
}

func decodeDataURL(v string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(v, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data url", ErrInvalidImage)
	}
	contentType, enc, _ := strings.Cut(meta, ";")
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, contentType)
	}
	if enc != "base64" {
		return "", nil, fmt.Errorf("%w: data url must be base64", ErrInvalidImage)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return "", nil, fmt.Errorf("%w: image too large", ErrInvalidImage)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return contentType, data, nil
}

func objectKey(folder, contentType string) string {
	ext := strings.TrimPrefix(contentType, "image/")
	if i := strings.IndexAny(ext, "+;"); i >= 0 {
		ext = ext[:i]
	}
	d := time.Now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%s.%s", strings.Trim(folder, "/"), d.Year(), d.Month(), uuid.NewString(), ext)
}
