package storage

import (
	"os"
	"strings"

	"pinaly/db"
)

type StorageType uint8

const (
	StorageTypeFile  StorageType = 0
	StorageTypeS3    StorageType = 1
	StorageTypeMinio StorageType = 2
)

const storageLocationUser = "/user"

type Bucket struct {
	ID          uint64 `gorm:"primaryKey"`
	CreatedAt   int64
	UpdatedAt   int64
	Name        string `gorm:"type:varchar(200)"` // Remote bucket name, or a label for disk buckets
	StorageType StorageType
	Path        string `gorm:"type:varchar(300)"` // Directory on a drive or a key prefix in a remote bucket
	Endpoint    string `gorm:"type:varchar(300)"` // S3/MinIO endpoint, empty for AWS default
	Region      string `gorm:"type:varchar(50)"`
	AuthDetails string `gorm:"type:varchar(300)"` // "key:secret" for remote buckets
}

func (b *Bucket) Create() error {
	if err := db.Instance.Create(b).Error; err != nil {
		return err
	}
	if !b.IsRemote() {
		// Pre-create the upload location on disk
		if err := os.MkdirAll(b.Path+storageLocationUser, 0777); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bucket) IsRemote() bool {
	return b.StorageType != StorageTypeFile
}

// GetRemotePath prefixes object keys for remote buckets so several
// installations can share one bucket.
func (b *Bucket) GetRemotePath(path string) string {
	if b.StorageType == StorageTypeFile || b.Path == "" {
		return path
	}
	return strings.Trim(b.Path, "/") + "/" + path
}

func (b *Bucket) keySecret() (string, string) {
	key, secret, _ := strings.Cut(b.AuthDetails, ":")
	return key, secret
}
