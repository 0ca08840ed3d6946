package fs

import (
	"net/url"

	"github.com/pkg/errors"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/io/fs/file"
)

// Fs abstracts where statistics sources (Parquet files) live. OpenFile is
// the read path; CreateFile exists so tests and snapshot writers can produce
// files through the same backend.
type Fs interface {
	OpenFile(path string) (file.File, error)
	CreateFile(path string) (file.File, error)
	List(prefix string) ([]FileEntry, error)
	Exist(path string) (bool, error)
	DeleteFile(path string) error
}

type FileEntry struct {
	Path string
}

// BuildFileSystem selects a backend from a uri scheme: file://, memory://,
// or s3://user:password@bucket/path?endpoint_override=host%3Aport.
func BuildFileSystem(uri string) (Fs, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrapf(cerr.ErrInvalidUri, "parse %q: %v", uri, err)
	}
	switch parsed.Scheme {
	case "file", "":
		return NewLocalFs(), nil
	case "memory":
		return NewMemoryFs(), nil
	case "s3":
		return NewMinioFs(parsed)
	}
	return nil, errors.Wrapf(cerr.ErrInvalidUri, "unknown scheme %q", parsed.Scheme)
}
