package metadata

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
	"time"
)

func Test_dmsToDecimal(t *testing.T) {
	tests := []struct {
		name                      string
		degrees, minutes, seconds float64
		ref                       string
		want                      float64
	}{
		{"north whole degrees", 35, 0, 0, "N", 35.0},
		{"east whole degrees", 135, 0, 0, "E", 135.0},
		{"south negates", 33, 51, 0, "S", -33.85},
		{"west negates", 122, 25, 0, "W", -122.41666666666667},
		{"seconds contribute", 51, 30, 36, "N", 51.51},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dmsToDecimal(tt.degrees, tt.minutes, tt.seconds, tt.ref)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("dmsToDecimal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_NoMetadata(t *testing.T) {
	// A plain encoded JPEG has no EXIF block at all
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}

	tests := []struct {
		name string
		raw  []byte
	}{
		{"nil input", nil},
		{"garbage bytes", []byte("not an image at all")},
		{"jpeg without exif", buf.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Extract(tt.raw)
			if d.GpsLat != nil || d.GpsLong != nil || d.TakenAt != nil {
				t.Errorf("Extract() = %+v, want all nil", d)
			}
		})
	}
}

func Test_exifTimeLayout(t *testing.T) {
	got, err := time.ParseInLocation(exifTimeLayout, "2023:04:22 15:04:05", time.UTC)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	want := time.Date(2023, 4, 22, 15, 4, 5, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parsed %v, want %v", got, want)
	}
	if _, err = time.ParseInLocation(exifTimeLayout, "2023-04-22 15:04:05", time.UTC); err == nil {
		t.Error("dashed timestamp should not parse")
	}
}
