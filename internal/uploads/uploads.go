// Package uploads stores photos on local disk and optionally mirrors them to
// persistent object storage.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL path under which local uploads are served.
const PublicPrefix = "/uploads/"

var ErrEmptyUpload = errors.New("no file uploaded")

// Mirror copies an upload to persistent storage and returns its public URL.
type Mirror interface {
	Name() string
	Put(ctx context.Context, filename string, data []byte) (string, error)
}

// Result describes a stored upload. Path is the public URL of the first
// mirror that accepted the file, or the local /uploads/ path.
type Result struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

type Store struct {
	dir     string
	mirrors []Mirror
	logger  *slog.Logger
}

func NewStore(dir string, logger *slog.Logger, mirrors ...Mirror) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{dir: dir, mirrors: mirrors, logger: logger}
}

func (s *Store) Dir() string { return s.dir }

// Persistent reports whether any mirror is configured.
func (s *Store) Persistent() bool { return len(s.mirrors) > 0 }

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Save writes r to <dir>/<field>-<uuid><ext> and then offers it to each
// mirror in turn. Mirror failures are logged and never fail the upload.
func (s *Store) Save(ctx context.Context, field, originalName string, r io.Reader) (Result, error) {
	field = unsafeChars.ReplaceAllString(field, "")
	if field == "" {
		field = "file"
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if unsafeChars.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	name := field + "-" + uuid.NewString() + ext

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create uploads dir: %w", err)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	if n == 0 {
		return Result{}, ErrEmptyUpload
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0o644); err != nil {
		return Result{}, fmt.Errorf("write upload: %w", err)
	}

	res := Result{Filename: name, Path: PublicPrefix + name}

	mirrorName := filepath.Base(originalName)
	if mirrorName == "." || mirrorName == string(filepath.Separator) {
		mirrorName = name
	}
	for _, m := range s.mirrors {
		url, err := m.Put(ctx, mirrorName, buf.Bytes())
		if err != nil {
			s.logger.Error("upload mirror failed, keeping local path",
				slog.String("mirror", m.Name()),
				slog.String("file", name),
				slog.Any("err", err),
			)
			continue
		}
		s.logger.Info("upload mirrored", slog.String("mirror", m.Name()), slog.String("file", name))
		res.Path = url
		break
	}
	return res, nil
}

// contentType maps an image file name to its MIME type; unknown extensions
// are treated as JPEG.
func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
