package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage captures the S3-compatible operations used to load and
// archive order-history exports.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	OpenObject(ctx context.Context, key string) (io.ReadCloser, error)
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// LatestObject returns the most recently modified object whose extension is
// one of exts (any extension when exts is empty). Ties go to the greater key.
func LatestObject(objects []ObjectInfo, exts ...string) (ObjectInfo, bool) {
	var (
		latest ObjectInfo
		found  bool
	)
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if len(exts) > 0 && !hasExt(obj.Key, exts) {
			continue
		}
		if !found || obj.LastModified.After(latest.LastModified) ||
			(obj.LastModified.Equal(latest.LastModified) && obj.Key > latest.Key) {
			latest = obj
			found = true
		}
	}
	return latest, found
}

func hasExt(key string, exts []string) bool {
	ext := strings.ToLower(path.Ext(key))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
