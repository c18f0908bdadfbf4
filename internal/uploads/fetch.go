package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var ErrNoImage = errors.New("value does not resolve to an image")

var imageExt = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp)$`)

// maxImageBytes caps remote image downloads.
const maxImageBytes = 20 << 20

// Image is an embeddable picture; Type is the fpdf image type ("JPG", "PNG"
// or "GIF").
type Image struct {
	Data []byte
	Type string
}

// Fetcher resolves upload references to image bytes: /uploads/ paths and
// image file names from the local uploads directory, http(s) URLs over the
// network.
type Fetcher struct {
	dir    string
	client *http.Client
}

func NewFetcher(dir string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{dir: dir, client: client}
}

// LooksLikeImage reports whether v is worth trying to fetch as an image.
func LooksLikeImage(v string) bool {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return false
	case strings.HasPrefix(v, "http://"), strings.HasPrefix(v, "https://"):
		return true
	case strings.HasPrefix(v, PublicPrefix):
		return true
	case strings.HasPrefix(v, "/"):
		return imageExt.MatchString(v)
	default:
		return false
	}
}

func (f *Fetcher) Fetch(ctx context.Context, value string) (*Image, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrNoImage
	}

	if data, ok := f.local(value); ok {
		return decodeImage(data)
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		data, err := f.remote(ctx, value)
		if err != nil {
			return nil, err
		}
		return decodeImage(data)
	}
	return nil, ErrNoImage
}

func (f *Fetcher) local(value string) ([]byte, bool) {
	if !strings.HasPrefix(value, PublicPrefix) && !imageExt.MatchString(value) {
		return nil, false
	}
	name := filepath.Base(strings.TrimPrefix(value, PublicPrefix))
	if !imageExt.MatchString(name) {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (f *Fetcher) remote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

func decodeImage(data []byte) (*Image, error) {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return &Image{Data: data, Type: "JPG"}, nil
	case "image/png":
		return &Image{Data: data, Type: "PNG"}, nil
	case "image/gif":
		return &Image{Data: data, Type: "GIF"}, nil
	default:
		return nil, ErrNoImage
	}
}
