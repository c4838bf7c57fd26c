package images

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"pinaly/models"

	"gorm.io/gorm"
)

// imageLock returns the per-image serialization point for candidate
// writes, so two concurrent analyze calls cannot interleave.
func (s *Service) imageLock(imageID uint64) *sync.Mutex {
	key := strconv.FormatUint(imageID, 10)
	if lock, ok := s.imageLocks.Get(key); ok {
		return lock
	}
	lock := &sync.Mutex{}
	if !s.imageLocks.SetIfAbsent(key, lock) {
		lock, _ = s.imageLocks.Get(key)
	}
	return lock
}

// Analyze runs the inference model on the image and replaces its candidate
// set. NO_GPS images move to AI_CANDIDATE; images that already have a
// confirmed location keep their status (and their Location row) until the
// user confirms one of the new candidates. A failed inference call leaves
// everything untouched.
func (s *Service) Analyze(ctx context.Context, user *models.User, imageID uint64) ([]Candidate, error) {
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return nil, err
	}
	lock := s.imageLock(image.ID)
	lock.Lock()
	defer lock.Unlock()
	return s.analyzeLocked(ctx, image)
}

// Reanalyze is analyze with explicit discard intent: the old candidate set
// is dropped first and the image always ends up in AI_CANDIDATE.
func (s *Service) Reanalyze(ctx context.Context, user *models.User, imageID uint64) ([]Candidate, error) {
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return nil, err
	}
	lock := s.imageLock(image.ID)
	lock.Lock()
	defer lock.Unlock()

	// The old candidate set is discarded by the atomic replacement inside
	// analyzeLocked; a failed inference call leaves it (and the status)
	// exactly as it was.
	candidates, err := s.analyzeLocked(ctx, image)
	if err != nil {
		return nil, err
	}
	if image.LocationStatus != models.StatusAICandidate {
		if err = s.setStatus(image, models.StatusAICandidate); err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

// analyzeLocked does the blob read and the inference call outside any DB
// transaction; the status only changes after the candidates are durably
// written, so a timed-out inference leaves the pre-analyze state intact.
func (s *Service) analyzeLocked(ctx context.Context, image *models.Image) ([]Candidate, error) {
	var blob bytes.Buffer
	if _, err := s.storageFor(image).Load(image.Path, &blob); err != nil {
		return nil, fmt.Errorf("loading image blob %s: %w", image.Path, err)
	}
	topK := s.TopK
	if topK < 1 {
		topK = 1
	}
	predictions, err := s.Predictor.Predict(ctx, blob.Bytes(), topK)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	candidates := make([]models.LocationCandidate, 0, len(predictions))
	for i, p := range predictions {
		candidate := models.LocationCandidate{
			CreatedAt:  now,
			ImageID:    image.ID,
			Rank:       i + 1,
			GpsLat:     p.GpsLat,
			GpsLong:    p.GpsLong,
			Confidence: p.Confidence,
		}
		// A geocoder outage degrades to nameless candidates
		if name := s.Geocoder.ReverseGeocode(p.GpsLat, p.GpsLong); name != "" {
			candidate.Geoname = &name
		}
		candidates = append(candidates, candidate)
	}
	if err = s.replaceCandidates(image.ID, candidates); err != nil {
		return nil, err
	}
	if image.LocationStatus == models.StatusNoGPS {
		if err = s.setStatus(image, models.StatusAICandidate); err != nil {
			return nil, err
		}
	}
	return toCandidates(candidates), nil
}

// ListCandidates returns the current candidate set, rank ascending.
func (s *Service) ListCandidates(user *models.User, imageID uint64) ([]Candidate, error) {
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.listCandidates(image.ID)
	if err != nil {
		return nil, err
	}
	return toCandidates(candidates), nil
}

// Confirm promotes one candidate to the confirmed Location. The candidate
// must belong to this image; confirming without a prior analyze is a
// validation error. Replacement of the Location, clearing of the candidate
// set and the status change are one transaction.
func (s *Service) Confirm(user *models.User, imageID, candidateID uint64) (*Detail, error) {
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return nil, err
	}
	lock := s.imageLock(image.ID)
	lock.Lock()
	defer lock.Unlock()

	var candidate models.LocationCandidate
	err = s.DB.Where("id = ? AND image_id = ?", candidateID, image.ID).First(&candidate).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, validationf("candidate %d does not exist for image %d", candidateID, image.ID)
		}
		return nil, fmt.Errorf("loading candidate %d: %w", candidateID, err)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", image.ID).Delete(&models.Location{}).Error; err != nil {
			return err
		}
		location := models.Location{
			CreatedAt:  time.Now().Unix(),
			ImageID:    image.ID,
			GpsLat:     candidate.GpsLat,
			GpsLong:    candidate.GpsLong,
			Geoname:    candidate.Geoname,
			Source:     models.LocationSourceInference,
			Confidence: &candidate.Confidence,
		}
		if err := tx.Create(&location).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id = ?", image.ID).Delete(&models.LocationCandidate{}).Error; err != nil {
			return err
		}
		return tx.Model(image).Updates(map[string]any{
			"location_status": models.StatusConfirmed,
			"updated_at":      time.Now().Unix(),
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("confirming candidate %d for image %d: %w", candidateID, image.ID, err)
	}
	return s.GetDetail(user, imageID)
}

// SetManualLocation lets the user drop a pin themselves: upserts the
// confirmed Location with source "manual", clears any candidates and moves
// the image to USER_MANUAL. The place name is looked up when not supplied.
func (s *Service) SetManualLocation(user *models.User, imageID uint64, lat, long float64, geoname *string) (*Detail, error) {
	if lat < -90 || lat > 90 || long < -180 || long > 180 {
		return nil, validationf("coordinates (%f, %f) out of range", lat, long)
	}
	image, err := s.ownedImage(user, imageID)
	if err != nil {
		return nil, err
	}
	lock := s.imageLock(image.ID)
	lock.Lock()
	defer lock.Unlock()

	if geoname == nil {
		if name := s.Geocoder.ReverseGeocode(lat, long); name != "" {
			geoname = &name
		}
	}
	if err = s.upsertConfirmed(s.DB, image.ID, lat, long, geoname, models.LocationSourceManual, nil); err != nil {
		return nil, err
	}
	if err = s.clearCandidates(s.DB, image.ID); err != nil {
		return nil, err
	}
	if err = s.setStatus(image, models.StatusUserManual); err != nil {
		return nil, err
	}
	return s.GetDetail(user, imageID)
}

func (s *Service) setStatus(image *models.Image, status string) error {
	err := s.DB.Model(image).Updates(map[string]any{
		"location_status": status,
		"updated_at":      time.Now().Unix(),
	}).Error
	if err != nil {
		return fmt.Errorf("setting image %d status to %s: %w", image.ID, status, err)
	}
	image.LocationStatus = status
	return nil
}

func toCandidates(candidates []models.LocationCandidate) []Candidate {
	result := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, Candidate{
			ID:         c.ID,
			Rank:       c.Rank,
			GpsLat:     c.GpsLat,
			GpsLong:    c.GpsLong,
			Confidence: c.Confidence,
			Geoname:    c.Geoname,
		})
	}
	return result
}
