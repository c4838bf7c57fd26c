package storage

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestDiskStorageRoundTrip(t *testing.T) {
	bucket := Bucket{Name: "test", StorageType: StorageTypeFile, Path: t.TempDir()}
	store := NewDiskStorage(&bucket)

	content := "hello, disk"
	written, err := store.Save("user/1/photo.jpg", strings.NewReader(content), "image/jpeg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if written != int64(len(content)) {
		t.Errorf("wrote %d bytes, want %d", written, len(content))
	}

	var out bytes.Buffer
	read, err := store.Load("user/1/photo.jpg", &out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if read != written || out.String() != content {
		t.Errorf("read back %q", out.String())
	}

	if err = store.Delete("user/1/photo.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err = os.Stat(bucket.Path + "/user/1/photo.jpg"); !os.IsNotExist(err) {
		t.Error("file still exists after delete")
	}
	if _, err = store.Load("user/1/photo.jpg", &out); err == nil {
		t.Error("load after delete should fail")
	}
}

func TestDiskStorageLoadMissing(t *testing.T) {
	bucket := Bucket{Name: "test", StorageType: StorageTypeFile, Path: t.TempDir()}
	store := NewDiskStorage(&bucket)
	var out bytes.Buffer
	if _, err := store.Load("nope/missing.jpg", &out); err == nil {
		t.Error("expected error for missing file")
	}
}
