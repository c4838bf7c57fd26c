package images

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"pinaly/geocode"
	"pinaly/inference"
	"pinaly/logging"
	"pinaly/metadata"
	"pinaly/models"
	"pinaly/storage"
	"pinaly/utils"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"gorm.io/gorm"
)

const (
	thumbSize    = 400
	defaultTopK  = 3
	listLimitMax = 100
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Service drives an image from "just uploaded" to "has a confirmed
// location". All collaborators are injected so tests can swap them out.
type Service struct {
	DB        *gorm.DB
	Storage   storage.StorageAPI
	Predictor inference.Predictor
	Geocoder  geocode.Geocoder
	Extract   func([]byte) metadata.Data
	TopK      int

	imageLocks cmap.ConcurrentMap[string, *sync.Mutex]
}

func NewService(db *gorm.DB, store storage.StorageAPI, predictor inference.Predictor, geocoder geocode.Geocoder) *Service {
	return &Service{
		DB:         db,
		Storage:    store,
		Predictor:  predictor,
		Geocoder:   geocoder,
		Extract:    metadata.Extract,
		TopK:       defaultTopK,
		imageLocks: cmap.New[*sync.Mutex](),
	}
}

// storageFor resolves the backend holding the image's blobs; images may
// live on a different bucket than the one new uploads go to. Falls back to
// the injected storage when the bucket is not in the started cache.
func (s *Service) storageFor(image *models.Image) storage.StorageAPI {
	if store := storage.StorageFrom(image.BucketID); store != nil {
		return store
	}
	return s.Storage
}

// ownedImage loads an image if and only if it belongs to the given user.
// A mismatch is reported as not-found, same as a missing row.
func (s *Service) ownedImage(user *models.User, imageID uint64) (*models.Image, error) {
	var image models.Image
	err := s.DB.Where("id = ? AND user_id = ?", imageID, user.ID).First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading image %d: %w", imageID, err)
	}
	return &image, nil
}

// Create stores the upload, extracts metadata and sets the initial state:
// EXIF_PRESENT with a confirmed metadata Location when coordinates were
// embedded, NO_GPS otherwise.
func (s *Service) Create(user *models.User, r CreateRequest) (*Detail, error) {
	ext := strings.ToLower(filepath.Ext(r.FileName))
	if !allowedExtensions[ext] {
		return nil, validationf("unsupported file type %q", ext)
	}

	md := s.Extract(r.Data)

	key := uuid.NewString()
	now := time.Now().Unix()
	image := models.Image{
		UserID:         user.ID,
		BucketID:       s.Storage.GetBucket().ID,
		CreatedAt:      now,
		UpdatedAt:      now,
		Path:           fmt.Sprintf("user/%d/%s%s", user.ID, key, ext),
		ThumbPath:      fmt.Sprintf("user/%d/%s_thumb.jpg", user.ID, key),
		MimeType:       r.MimeType,
		Size:           int64(len(r.Data)),
		LocationStatus: models.StatusNoGPS,
	}
	if md.GpsLat != nil && md.GpsLong != nil {
		image.LocationStatus = models.StatusExifPresent
	}
	if md.TakenAt != nil {
		takenAt := md.TakenAt.Unix()
		image.TakenAt = &takenAt
	}

	if _, err := s.Storage.Save(image.Path, bytes.NewReader(r.Data), r.MimeType); err != nil {
		return nil, fmt.Errorf("storing image blob: %w", err)
	}
	// A failed thumbnail keeps the upload; the original is served instead
	var thumb bytes.Buffer
	if converted, err := utils.CreateThumb(thumbSize, bytes.NewReader(r.Data), &thumb); err != nil {
		logging.L.Warnf("thumbnail for %s: %v", image.Path, err)
		image.ThumbPath = ""
	} else if _, err = s.Storage.Save(image.ThumbPath, &thumb, "image/jpeg"); err != nil {
		logging.L.Warnf("storing thumbnail %s: %v", image.ThumbPath, err)
		image.ThumbPath = ""
	} else {
		image.ThumbSize = converted.ThumbSize
	}

	// The image row and its metadata Location land together or not at all;
	// a failed write also cleans up the blobs saved above.
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
		if md.GpsLat != nil && md.GpsLong != nil {
			return s.upsertConfirmed(tx, image.ID, *md.GpsLat, *md.GpsLong, nil, models.LocationSourceMetadata, nil)
		}
		return nil
	})
	if err != nil {
		s.deleteBlobs(&image)
		return nil, fmt.Errorf("saving image: %w", err)
	}
	return s.detail(&image)
}

func (s *Service) GetDetail(user *models.User, imageID uint64) (*Detail, error) {
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return nil, err
	}
	return s.detail(image)
}

// List returns the user's gallery page, newest first, with locations and
// tags joined in. Read-only: never touches location_status.
func (s *Service) List(user *models.User, limit, offset int) ([]Detail, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > listLimitMax {
		limit = listLimitMax
	}
	if offset < 0 {
		offset = 0
	}
	var images []models.Image
	err := s.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	ids := make([]uint64, 0, len(images))
	for i := range images {
		ids = append(ids, images[i].ID)
	}
	locations, err := s.locationsForImages(ids)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagsForImages(ids)
	if err != nil {
		return nil, err
	}
	result := make([]Detail, 0, len(images))
	for i := range images {
		result = append(result, *assembleDetail(&images[i], locations[images[i].ID], tags[images[i].ID]))
	}
	return result, nil
}

// Update patches title/comment/favorite and, when the tags field is
// present, replaces the tag set. location_status is never touched here.
func (s *Service) Update(user *models.User, imageID uint64, r UpdateRequest) (*Detail, error) {
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if r.Title != nil {
		updates["title"] = *r.Title
	}
	if r.Comment != nil {
		updates["comment"] = *r.Comment
	}
	if r.IsFavorite != nil {
		updates["favourite"] = *r.IsFavorite
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().Unix()
		if err = s.DB.Model(image).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating image %d: %w", imageID, err)
		}
	}
	if r.Tags != nil {
		if err = s.SyncTags(image.ID, *r.Tags); err != nil {
			return nil, err
		}
	}
	return s.GetDetail(user, imageID)
}

// Delete removes the rows first and the blobs after: once the image row is
// gone the delete has succeeded, blob cleanup failures are only logged.
func (s *Service) Delete(user *models.User, imageID uint64) error {
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", image.ID).Delete(&models.Location{}).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id = ?", image.ID).Delete(&models.LocationCandidate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id = ?", image.ID).Delete(&models.ImageTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Image{}, image.ID).Error
	})
	if err != nil {
		return fmt.Errorf("deleting image %d: %w", imageID, err)
	}
	s.deleteBlobs(image)
	// Release the analyze lock entry, the image can never be locked again
	s.imageLocks.Remove(strconv.FormatUint(image.ID, 10))
	return nil
}

func (s *Service) deleteBlobs(image *models.Image) {
	store := s.storageFor(image)
	if err := store.Delete(image.Path); err != nil {
		logging.L.Warnf("image %d: blob delete failed: %v", image.ID, err)
	}
	if image.ThumbPath == "" {
		return
	}
	if err := store.Delete(image.ThumbPath); err != nil {
		logging.L.Warnf("image %d: thumb delete failed: %v", image.ID, err)
	}
}

// Blob resolves the backend and storage path for serving, preferring the
// thumbnail when asked for and available.
func (s *Service) Blob(user *models.User, imageID uint64, thumb bool) (store storage.StorageAPI, path, mimeType string, err error) {
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return nil, "", "", err
	}
	store = s.storageFor(image)
	if thumb && image.ThumbSize > 0 {
		return store, image.ThumbPath, "image/jpeg", nil
	}
	return store, image.Path, image.MimeType, nil
}

// Pins returns map markers inside the bounding box for every image whose
// location is confirmed (metadata, user-confirmed or manual).
func (s *Service) Pins(user *models.User, minLat, maxLat, minLong, maxLong float64) ([]Pin, error) {
	rows, err := s.DB.Table("locations").
		Select("images.id, locations.gps_lat, locations.gps_long, images.title, images.thumb_size").
		Joins("join images on images.id = locations.image_id").
		Where("images.user_id = ? AND images.location_status IN ?", user.ID,
			[]string{models.StatusExifPresent, models.StatusConfirmed, models.StatusUserManual}).
		Where("locations.gps_lat BETWEEN ? AND ? AND locations.gps_long BETWEEN ? AND ?",
			minLat, maxLat, minLong, maxLong).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("loading pins: %w", err)
	}
	defer rows.Close()
	result := []Pin{}
	for rows.Next() {
		var (
			pin       Pin
			thumbSize int64
		)
		if err = rows.Scan(&pin.ID, &pin.GpsLat, &pin.GpsLong, &pin.Title, &thumbSize); err != nil {
			return nil, fmt.Errorf("scanning pin: %w", err)
		}
		pin.ThumbnailURL = fileURL(pin.ID, thumbSize > 0)
		result = append(result, pin)
	}
	return result, nil
}

// AllTags lists every tag name, for input autocompletion. Tags are global,
// not per user.
func (s *Service) AllTags() ([]string, error) {
	var names []string
	if err := s.DB.Model(&models.Tag{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return names, nil
}

func (s *Service) detail(image *models.Image) (*Detail, error) {
	location, err := s.getConfirmed(image.ID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagsForImage(image.ID)
	if err != nil {
		return nil, err
	}
	return assembleDetail(image, location, tags), nil
}

func assembleDetail(image *models.Image, location *models.Location, tags []string) *Detail {
	if tags == nil {
		tags = []string{}
	}
	d := &Detail{
		ID:             image.ID,
		Title:          image.Title,
		Comment:        image.Comment,
		IsFavorite:     image.Favourite,
		ImageURL:       fileURL(image.ID, false),
		ThumbnailURL:   fileURL(image.ID, image.ThumbSize > 0),
		LocationStatus: image.LocationStatus,
		TakenAt:        image.TakenAt,
		CreatedAt:      image.CreatedAt,
		Tags:           tags,
	}
	// Coordinates only surface in states backed by a confirmed Location
	if location != nil && image.HasConfirmedLocation() {
		d.GpsLat = &location.GpsLat
		d.GpsLong = &location.GpsLong
		d.Geoname = location.Geoname
	}
	return d
}
