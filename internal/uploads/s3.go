package uploads

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures an S3-compatible mirror. Endpoint is empty for AWS S3
// and set for compatible stores such as R2.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	Transport       http.RoundTripper
}

type S3Mirror struct {
	client    *minio.Client
	bucket    string
	region    string
	custom    bool
	publicURL string
	now       func() time.Time
}

func NewS3Mirror(opts S3Options) (*S3Mirror, error) {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	host, secure := "s3.amazonaws.com", true
	lookup := minio.BucketLookupAuto
	if opts.Endpoint != "" {
		u, err := url.Parse(opts.Endpoint)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid s3 endpoint %q", opts.Endpoint)
		}
		host, secure = u.Host, u.Scheme != "http"
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure:       secure,
		Region:       opts.Region,
		BucketLookup: lookup,
		Transport:    opts.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Mirror{
		client:    client,
		bucket:    opts.Bucket,
		region:    opts.Region,
		custom:    opts.Endpoint != "",
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		now:       time.Now,
	}, nil
}

func (m *S3Mirror) Name() string { return "s3" }

func (m *S3Mirror) Put(ctx context.Context, filename string, data []byte) (string, error) {
	key := objectKey(m.now(), filename)

	opts := minio.PutObjectOptions{ContentType: contentType(filename)}
	if !m.custom {
		opts.UserMetadata = map[string]string{"x-amz-acl": "public-read"}
	}
	if _, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return m.PublicURL(key), nil
}

// PublicURL is the configured public base, or the AWS virtual-hosted URL.
func (m *S3Mirror) PublicURL(key string) string {
	if m.publicURL != "" {
		return m.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", m.bucket, m.region, key)
}
