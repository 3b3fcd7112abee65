package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	gcsScheme     = "gs://"
	uploadTimeout = 2 * time.Minute
	xlsxMIMEType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// GCSStore keeps reports in a Cloud Storage bucket under a prefix.
// Credentials come from Application Default Credentials unless a
// credentials file is configured.
type GCSStore struct {
	bucket          string
	prefix          string
	credentialsFile string
}

// NewGCSStore returns a store for bucket. prefix may be empty.
func NewGCSStore(bucket, prefix, credentialsFile string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs store: bucket is required")
	}
	return &GCSStore{
		bucket:          bucket,
		prefix:          strings.Trim(prefix, "/"),
		credentialsFile: credentialsFile,
	}, nil
}

func (s *GCSStore) clientOptions() []option.ClientOption {
	return ClientOptions(s.credentialsFile)
}

// ClientOptions returns the client options for a service-account key file.
// An empty path leaves the client on application default credentials.
func ClientOptions(credentialsFile string) []option.ClientOption {
	if credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}

// ObjectName returns the object path for name.
func (s *GCSStore) ObjectName(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", fmt.Errorf("%w: %q", err, name)
	}
	if s.prefix == "" {
		return name, nil
	}
	return path.Join(s.prefix, name), nil
}

// URI returns the gs:// location of name.
func (s *GCSStore) URI(name string) (string, error) {
	obj, err := s.ObjectName(name)
	if err != nil {
		return "", err
	}
	return gcsScheme + s.bucket + "/" + obj, nil
}

// Save uploads data and returns the object's gs:// URI.
func (s *GCSStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	obj, err := s.ObjectName(name)
	if err != nil {
		return "", err
	}

	client, err := storage.NewClient(ctx, s.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(s.bucket).Object(obj).NewWriter(ctx)
	w.ContentType = xlsxMIMEType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", obj, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload %s: %w", obj, err)
	}

	return gcsScheme + s.bucket + "/" + obj, nil
}

// Open downloads name from the bucket.
func (s *GCSStore) Open(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.ObjectName(name)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, s.bucket, obj, s.clientOptions()...)
}

// FetchObject downloads the object at a gs:// URI.
func FetchObject(ctx context.Context, uri string, opts ...option.ClientOption) ([]byte, error) {
	bucket, obj, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, bucket, obj, opts...)
}

func fetch(ctx context.Context, bucket, obj string, opts ...option.ClientOption) ([]byte, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(obj).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", ErrNotFound, bucket, obj)
	}
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, obj, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", bucket, obj, err)
	}
	return data, nil
}

// IsGCSURI reports whether s looks like a gs:// location.
func IsGCSURI(s string) bool { return strings.HasPrefix(s, gcsScheme) }

// ParseGCSURI splits "gs://bucket/path/to/object" into bucket and object.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(uri, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return bucket, object, nil
}

// BaseName returns the last path element of a gs:// URI.
func BaseName(uri string) string {
	_, obj, err := ParseGCSURI(uri)
	if err != nil {
		return path.Base(strings.TrimPrefix(uri, gcsScheme))
	}
	return path.Base(obj)
}
