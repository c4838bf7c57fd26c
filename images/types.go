package images

import "fmt"

// Detail is the composite read view: image base fields plus the flattened
// confirmed location and the ordered tag list.
type Detail struct {
	ID             uint64   `json:"id"`
	Title          *string  `json:"title"`
	Comment        *string  `json:"comment"`
	IsFavorite     bool     `json:"is_favorite"`
	ImageURL       string   `json:"image_url"`
	ThumbnailURL   string   `json:"thumbnail_url"`
	LocationStatus string   `json:"location_status"`
	GpsLat         *float64 `json:"latitude"`
	GpsLong        *float64 `json:"longitude"`
	Geoname        *string  `json:"geoname"`
	TakenAt        *int64   `json:"taken_at"`
	CreatedAt      int64    `json:"created_at"`
	Tags           []string `json:"tags"`
}

type Candidate struct {
	ID         uint64  `json:"id"`
	Rank       int     `json:"rank"`
	GpsLat     float64 `json:"latitude"`
	GpsLong    float64 `json:"longitude"`
	Confidence float64 `json:"confidence"`
	Geoname    *string `json:"geoname"`
}

type Pin struct {
	ID           uint64  `json:"id"`
	GpsLat       float64 `json:"latitude"`
	GpsLong      float64 `json:"longitude"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Title        *string `json:"title"`
}

type CreateRequest struct {
	FileName string
	MimeType string
	Data     []byte
}

// UpdateRequest is a patch: nil fields are left untouched. For Tags the
// nil-vs-empty distinction is load-bearing — nil keeps the current tags,
// an empty list removes them all.
type UpdateRequest struct {
	Title      *string   `json:"title"`
	Comment    *string   `json:"comment"`
	IsFavorite *bool     `json:"is_favorite"`
	Tags       *[]string `json:"tags"`
}

func fileURL(imageID uint64, thumb bool) string {
	url := fmt.Sprintf("/api/v1/files/%d", imageID)
	if thumb {
		url += "?thumb=1"
	}
	return url
}
