package storage

import (
	"fmt"
	"testing"

	"pinaly/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestStorageFromResolvesPerBucket(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.Instance = gdb
	if err = gdb.AutoMigrate(&Bucket{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	first := Bucket{Name: "first", StorageType: StorageTypeFile, Path: t.TempDir()}
	second := Bucket{Name: "second", StorageType: StorageTypeFile, Path: t.TempDir()}
	if err = first.Create(); err != nil {
		t.Fatalf("creating first bucket: %v", err)
	}
	if err = second.Create(); err != nil {
		t.Fatalf("creating second bucket: %v", err)
	}
	Init()

	for _, bucket := range []*Bucket{&first, &second} {
		store := StorageFrom(bucket.ID)
		if store == nil {
			t.Fatalf("no storage for bucket %d", bucket.ID)
		}
		if store.GetBucket().ID != bucket.ID || store.GetBucket().Path != bucket.Path {
			t.Errorf("bucket %d resolved to %+v", bucket.ID, store.GetBucket())
		}
	}
	if StorageFrom(12345) != nil {
		t.Error("unknown bucket id should resolve to nil")
	}
	if GetDefaultStorage().GetBucket().ID != first.ID {
		t.Errorf("default storage is bucket %d, want %d", GetDefaultStorage().GetBucket().ID, first.ID)
	}
}
