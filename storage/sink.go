package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const gcsScheme = "gs://"

// FileSink reads and writes local files. Writes replace the whole file;
// there is no temp-file rename, so a crash mid-write can truncate output.
type FileSink struct{}

func (FileSink) Write(ctx context.Context, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func (FileSink) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// ObjectStore is the remote side of a Router.
type ObjectStore interface {
	Put(ctx context.Context, bucket, object string, data []byte) error
	Get(ctx context.Context, bucket, object string) ([]byte, error)
}

// Router sends gs://bucket/object paths to a remote object store and every
// other path to the local file system.
type Router struct {
	Local  FileSink
	Remote ObjectStore
}

func (r *Router) Write(ctx context.Context, path string, data []byte) error {
	if !IsRemote(path) {
		return r.Local.Write(ctx, path, data)
	}
	bucket, object, err := SplitRemote(path)
	if err != nil {
		return err
	}
	if r.Remote == nil {
		return fmt.Errorf("no object store configured for %s", path)
	}
	return r.Remote.Put(ctx, bucket, object, data)
}

func (r *Router) Read(ctx context.Context, path string) ([]byte, error) {
	if !IsRemote(path) {
		return r.Local.Read(ctx, path)
	}
	bucket, object, err := SplitRemote(path)
	if err != nil {
		return nil, err
	}
	if r.Remote == nil {
		return nil, fmt.Errorf("no object store configured for %s", path)
	}
	return r.Remote.Get(ctx, bucket, object)
}

func IsRemote(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// AnyRemote reports whether any of paths needs the object store.
func AnyRemote(paths ...string) bool {
	for _, p := range paths {
		if IsRemote(p) {
			return true
		}
	}
	return false
}

// SplitRemote parses gs://bucket/object.
func SplitRemote(path string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(path, gcsScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid object path %q: want gs://bucket/object", path)
	}
	return bucket, object, nil
}
