package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type LocalProvider struct {
	// RootPath is the directory where buckets are simulated (e.g., "./exports")
	RootPath string
}

func NewLocalProvider(root string) *LocalProvider {
	// Ensure the root directory exists
	_ = os.MkdirAll(root, 0o755)
	return &LocalProvider{RootPath: root}
}

// path resolves bucket/key under RootPath and refuses keys escaping it.
func (l *LocalProvider) path(bucket, key string) (string, error) {
	base := filepath.Join(l.RootPath, bucket)
	p := filepath.Join(base, filepath.FromSlash(key))
	if p != base && !strings.HasPrefix(p, base+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes bucket %q", key, bucket)
	}
	return p, nil
}

func (l *LocalProvider) List(_ context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	bucketPath := filepath.Join(l.RootPath, bucket)

	err := filepath.Walk(bucketPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == bucketPath {
				return filepath.SkipDir
			}
			return err
		}
		if info.IsDir() {
			return nil
		}

		// Convert OS path back to S3-style key (forward slashes)
		rel, _ := filepath.Rel(bucketPath, path)
		key := filepath.ToSlash(rel)

		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})

	return keys, err
}

func (l *LocalProvider) Get(_ context.Context, bucket, key string) (*FileObject, error) {
	path, err := l.path(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &FileObject{
		Body:          f,
		ContentLength: stat.Size(),
		ContentType:   "application/octet-stream", // Local files usually don't store this
		LastModified:  stat.ModTime(),
	}, nil
}

func (l *LocalProvider) Put(_ context.Context, bucket, key string, body io.ReadSeeker, _ string) error {
	path, err := l.path(bucket, key)
	if err != nil {
		return err
	}

	// Ensure sub-directories exist (e.g. bucket/session/file.csv)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, body)
	return err
}

func (l *LocalProvider) Delete(_ context.Context, bucket, key string) error {
	path, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
