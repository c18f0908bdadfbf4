package uploads

import (
	"github.com/garnizeh/ambucheck/internal/config"
)

// MirrorsFromConfig builds the configured mirrors in priority order:
// Supabase first, then S3.
func MirrorsFromConfig(cfg config.StorageConfig) ([]Mirror, error) {
	var out []Mirror
	if cfg.Supabase.Enabled() {
		out = append(out, NewSupabaseMirror(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, cfg.Supabase.Bucket, nil))
	}
	if cfg.S3.Enabled() {
		m, err := NewS3Mirror(S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicURL:       cfg.S3.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
