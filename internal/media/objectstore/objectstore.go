// Package objectstore writes relay media to a public bucket.
package objectstore

import (
	"context"
	"net/url"
	"strings"
)

// Store is satisfied by GCS and InMemory.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
	Exists(ctx context.Context, name string) (bool, error)
}

// PublicURL returns the storage.googleapis.com address of a public object.
// Only the final path segment is escaped.
func PublicURL(bucket, name string) string {
	dir, file := "", name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		dir, file = name[:i+1], name[i+1:]
	}
	return "https://storage.googleapis.com/" + bucket + "/" + dir + url.PathEscape(file)
}
