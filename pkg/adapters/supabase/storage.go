package supabase

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/mentorai/pkg/ports"
)

const storagePath = "/storage/v1/object/"

var _ ports.ObjectStorage = (*Storage)(nil)

// Storage is the object storage of the project.
type Storage struct{ c *Client }

// Storage returns the ports.ObjectStorage of the project.
func (c *Client) Storage() *Storage { return &Storage{c: c} }

func objectPath(bucket, path string) string {
	return bucket + "/" + strings.TrimLeft(path, "/")
}

// Upload implements ports.ObjectStorage. Existing objects are not replaced.
func (s *Storage) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.c.do(ctx, "storage.upload", request{
		method: http.MethodPost,
		path:   storagePath + objectPath(bucket, path),
		raw:    body,
		headers: map[string]string{
			"Content-Type":  contentType,
			"Cache-Control": "max-age=3600",
			"x-upsert":      "false",
		},
	}, nil)
}

// Remove implements ports.ObjectStorage.
func (s *Storage) Remove(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	return s.c.do(ctx, "storage.remove", request{
		method: http.MethodDelete,
		path:   storagePath + bucket,
		body:   map[string][]string{"prefixes": paths},
	}, nil)
}

// PublicURL implements ports.ObjectStorage.
func (s *Storage) PublicURL(bucket, path string) string {
	u := *s.c.baseURL
	u.Path += storagePath + "public/" + objectPath(bucket, path)
	return u.String()
}
