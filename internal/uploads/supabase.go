package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
)

// SupabaseMirror uploads to Supabase Storage over its REST API.
type SupabaseMirror struct {
	baseURL string
	key     string
	bucket  string
	client  *http.Client
	now     func() time.Time
}

func NewSupabaseMirror(baseURL, serviceRoleKey, bucket string, client *http.Client) *SupabaseMirror {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SupabaseMirror{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceRoleKey,
		bucket:  bucket,
		client:  client,
		now:     time.Now,
	}
}

func (m *SupabaseMirror) Name() string { return "supabase" }

func (m *SupabaseMirror) Put(ctx context.Context, filename string, data []byte) (string, error) {
	object := objectKey(m.now(), filename)
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", m.baseURL, m.bucket, object)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+m.key)
	req.Header.Set("Content-Type", contentType(filename))

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("supabase upload: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	io.Copy(io.Discard, resp.Body)

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", m.baseURL, m.bucket, object), nil
}

// objectKey is uploads/<unix-millis>-<basename>.
func objectKey(now time.Time, filename string) string {
	return "uploads/" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + path.Base(filename)
}
