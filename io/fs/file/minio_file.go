package file

import (
	"bytes"
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

var _ File = (*MinioFile)(nil)

// MinioFile reads straight from an object and buffers writes locally,
// uploading the buffer when the handle is closed.
type MinioFile struct {
	*minio.Object
	writer     *bytes.Buffer
	client     *minio.Client
	fileName   string
	bucketName string
}

// NewMinioFile opens an existing object for reading, or starts a write
// buffer when the object does not exist yet.
func NewMinioFile(client *minio.Client, fileName string, bucketName string) (*MinioFile, error) {
	f := &MinioFile{
		client:     client,
		fileName:   fileName,
		bucketName: bucketName,
	}
	_, err := client.StatObject(context.TODO(), bucketName, fileName, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return nil, err
		}
		f.writer = new(bytes.Buffer)
		return f, nil
	}
	obj, err := client.GetObject(context.TODO(), bucketName, fileName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	f.Object = obj
	return f, nil
}

func (f *MinioFile) Write(p []byte) (int, error) {
	if f.writer == nil {
		return 0, errors.Errorf("file %q is open for reading", f.fileName)
	}
	return f.writer.Write(p)
}

func (f *MinioFile) Close() error {
	if f.writer == nil {
		return f.Object.Close()
	}
	_, err := f.client.PutObject(context.TODO(), f.bucketName, f.fileName,
		bytes.NewReader(f.writer.Bytes()), int64(f.writer.Len()), minio.PutObjectOptions{})
	return err
}
