package fs

import (
	"context"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	cerr "github.com/rangeflow-io/rangeflow/common/errors"
	"github.com/rangeflow-io/rangeflow/common/log"
	"github.com/rangeflow-io/rangeflow/io/fs/file"
)

const endpointOverride = "endpoint_override"

type MinioFs struct {
	client     *minio.Client
	bucketName string
}

// NewMinioFs connects from a uri of the form
// s3://username:password@bucket/path?endpoint_override=localhost%3A9000.
func NewMinioFs(uri *url.URL) (*MinioFs, error) {
	accessKey := uri.User.Username()
	secretAccessKey, set := uri.User.Password()
	if !set {
		log.Warn("secret access key not set")
	}

	endpoints, ok := uri.Query()[endpointOverride]
	if !ok || len(endpoints) == 0 {
		return nil, errors.Wrap(cerr.ErrNoEndpoint, uri.Redacted())
	}

	cli, err := minio.New(endpoints[0], &minio.Options{
		BucketLookup: minio.BucketLookupAuto,
		Creds:        credentials.NewStaticV4(accessKey, secretAccessKey, ""),
	})
	if err != nil {
		return nil, err
	}

	bucket := uri.Host
	log.Debug("minio fs connected",
		log.String("endpoint", endpoints[0]),
		log.String("bucket", bucket))

	return &MinioFs{client: cli, bucketName: bucket}, nil
}

func (m *MinioFs) OpenFile(path string) (file.File, error) {
	exist, err := m.Exist(path)
	if err != nil {
		return nil, err
	}
	if !exist {
		return nil, errors.Wrap(cerr.ErrFileNotExist, path)
	}
	return file.NewMinioFile(m.client, path, m.bucketName)
}

func (m *MinioFs) CreateFile(path string) (file.File, error) {
	return file.NewMinioFile(m.client, path, m.bucketName)
}

func (m *MinioFs) List(prefix string) ([]FileEntry, error) {
	entries := make([]FileEntry, 0)
	for info := range m.client.ListObjects(context.TODO(), m.bucketName,
		minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, info.Err
		}
		entries = append(entries, FileEntry{Path: info.Key})
	}
	return entries, nil
}

func (m *MinioFs) Exist(path string) (bool, error) {
	_, err := m.client.StatObject(context.TODO(), m.bucketName, path, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MinioFs) DeleteFile(path string) error {
	return m.client.RemoveObject(context.TODO(), m.bucketName, path, minio.RemoveObjectOptions{})
}
