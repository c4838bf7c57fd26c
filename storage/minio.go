package storage

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage talks to a self-hosted MinIO deployment. AWS-compatible, but
// the native client keeps bucket provisioning and presigning simpler.
type MinioStorage struct {
	bucket Bucket
	client *minio.Client
}

func NewMinioStorage(bucket *Bucket) *MinioStorage {
	key, secret := bucket.keySecret()
	client, err := minio.New(bucket.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: false,
	})
	if err != nil {
		panic(err)
	}
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket.Name)
	if err != nil {
		panic(err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, bucket.Name, minio.MakeBucketOptions{}); err != nil {
			panic(err)
		}
	}
	return &MinioStorage{
		bucket: *bucket,
		client: client,
	}
}

func (s *MinioStorage) GetBucket() *Bucket {
	return &s.bucket
}

func (s *MinioStorage) Save(path string, reader io.Reader, mimeType string) (int64, error) {
	info, err := s.client.PutObject(context.Background(), s.bucket.Name, s.bucket.GetRemotePath(path),
		reader, -1, minio.PutObjectOptions{ContentType: mimeType})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (s *MinioStorage) Load(path string, writer io.Writer) (int64, error) {
	object, err := s.client.GetObject(context.Background(), s.bucket.Name, s.bucket.GetRemotePath(path),
		minio.GetObjectOptions{})
	if err != nil {
		return 0, err
	}
	defer object.Close()
	return io.Copy(writer, object)
}

func (s *MinioStorage) Serve(path, mimeType string, request *http.Request, writer http.ResponseWriter) {
	presignedURL, err := s.client.PresignedGetObject(request.Context(), s.bucket.Name,
		s.bucket.GetRemotePath(path), presignViewURLFor, url.Values{})
	if err != nil {
		http.Error(writer, "storage error", http.StatusInternalServerError)
		return
	}
	http.Redirect(writer, request, presignedURL.String(), http.StatusFound)
}

func (s *MinioStorage) Delete(path string) error {
	return s.client.RemoveObject(context.Background(), s.bucket.Name, s.bucket.GetRemotePath(path),
		minio.RemoveObjectOptions{})
}
