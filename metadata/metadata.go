package metadata

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/zsefvlol/timezonemapper"
)

// EXIF timestamps carry no zone information
const exifTimeLayout = "2006:01:02 15:04:05"

type Data struct {
	GpsLat  *float64
	GpsLong *float64
	TakenAt *time.Time // UTC
}

// Extract reads GPS coordinates and the capture time from the image's EXIF
// block. It never fails: a missing or unreadable block is a normal case and
// yields zero Data. No I/O, no side effects.
func Extract(raw []byte) (d Data) {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil || x == nil {
		return
	}
	lat, latOK := coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	long, longOK := coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	if latOK && longOK {
		d.GpsLat = &lat
		d.GpsLong = &long
	}
	d.TakenAt = takenAt(x, d.GpsLat, d.GpsLong)
	return
}

func coordinate(x *exif.Exif, field, refField exif.FieldName) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil || tag.Count < 3 {
		return 0, false
	}
	refTag, err := x.Get(refField)
	if err != nil {
		return 0, false
	}
	ref, err := refTag.StringVal()
	if err != nil {
		return 0, false
	}
	var dms [3]float64
	for i := range dms {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return 0, false
		}
		dms[i] = float64(num) / float64(den)
	}
	return dmsToDecimal(dms[0], dms[1], dms[2], ref), true
}

// dmsToDecimal converts degrees/minutes/seconds plus a hemisphere reference
// to a decimal coordinate, negative for South and West.
func dmsToDecimal(degrees, minutes, seconds float64, ref string) float64 {
	decimal := degrees + minutes/60 + seconds/3600
	if ref == "S" || ref == "W" {
		return -decimal
	}
	return decimal
}

// takenAt parses DateTimeOriginal (falling back to DateTime). The timestamp
// is wall-clock local to wherever the photo was taken, so when GPS
// coordinates are available the zone is looked up and the result normalized
// to UTC. Unparseable values are dropped, not fatal.
func takenAt(x *exif.Exif, lat, long *float64) *time.Time {
	value := ""
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		if s, err := tag.StringVal(); err == nil && s != "" {
			value = s
			break
		}
	}
	if value == "" {
		return nil
	}
	loc := time.UTC
	if lat != nil && long != nil {
		zone, err := time.LoadLocation(timezonemapper.LatLngToTimezoneString(*lat, *long))
		if err == nil && zone != nil {
			loc = zone
		}
	}
	t, err := time.ParseInLocation(exifTimeLayout, value, loc)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
