package storage

import (
	"fmt"
	"io"
	"net/http"

	"pinaly/config"
	"pinaly/db"
	"pinaly/logging"
)

// StorageAPI is the blob store contract: originals and thumbnails are
// written once, read back for inference or serving, and deleted together
// with their image row.
type StorageAPI interface {
	GetBucket() *Bucket
	Save(path string, reader io.Reader, mimeType string) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path, mimeType string, request *http.Request, writer http.ResponseWriter)
	Delete(path string) error
}

var cachedStorage []StorageAPI

func Init() {
	if err := db.Instance.AutoMigrate(&Bucket{}); err != nil {
		panic(err)
	}

	var buckets []Bucket
	if err := db.Instance.Find(&buckets).Error; err != nil {
		panic(err)
	}
	if len(buckets) == 0 && config.DEFAULT_BUCKET_DIR != "" {
		bucket := Bucket{
			Name:        "default",
			StorageType: StorageTypeFile,
			Path:        config.DEFAULT_BUCKET_DIR,
		}
		if err := bucket.Create(); err != nil {
			panic(err)
		}
		buckets = append(buckets, bucket)
	}
	logging.L.Infof("storage buckets found: %d", len(buckets))

	cachedStorage = []StorageAPI{}
	for i := range buckets {
		cachedStorage = append(cachedStorage, newStorage(&buckets[i]))
	}
}

func newStorage(bucket *Bucket) StorageAPI {
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket)
	case StorageTypeS3:
		return NewS3Storage(bucket)
	case StorageTypeMinio:
		return NewMinioStorage(bucket)
	}
	panic(fmt.Sprintf("storage type unavailable for bucket %d", bucket.ID))
}

// StorageFrom returns the started backend for a bucket id, nil when the
// bucket is unknown.
func StorageFrom(bucketID uint64) StorageAPI {
	for _, s := range cachedStorage {
		if s.GetBucket().ID == bucketID {
			return s
		}
	}
	return nil
}

func GetDefaultStorage() StorageAPI {
	if len(cachedStorage) == 0 {
		panic("no storage available")
	}
	return cachedStorage[0]
}
