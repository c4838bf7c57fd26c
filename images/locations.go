package images

import (
	"errors"
	"fmt"

	"pinaly/models"

	"gorm.io/gorm"
)

// Location store adapter: all reads and writes for the confirmed Location
// row and the candidate set, scoped by image id.

func (s *Service) getConfirmed(imageID uint64) (*models.Location, error) {
	var location models.Location
	err := s.DB.Where("image_id = ?", imageID).First(&location).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading location for image %d: %w", imageID, err)
	}
	return &location, nil
}

func (s *Service) locationsForImages(imageIDs []uint64) (map[uint64]*models.Location, error) {
	result := map[uint64]*models.Location{}
	if len(imageIDs) == 0 {
		return result, nil
	}
	var locations []models.Location
	if err := s.DB.Where("image_id IN ?", imageIDs).Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("loading locations: %w", err)
	}
	for i := range locations {
		result[locations[i].ImageID] = &locations[i]
	}
	return result, nil
}

// upsertConfirmed has replace semantics: any previous row for the image is
// deleted and a fresh one inserted within one transaction, so a reader
// never sees zero and two rows at once. The unique index on image_id backs
// this up against races.
func (s *Service) upsertConfirmed(db *gorm.DB, imageID uint64, lat, long float64, geoname *string, source string, confidence *float64) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", imageID).Delete(&models.Location{}).Error; err != nil {
			return err
		}
		location := models.Location{
			ImageID:    imageID,
			GpsLat:     lat,
			GpsLong:    long,
			Geoname:    geoname,
			Source:     source,
			Confidence: confidence,
		}
		return tx.Create(&location).Error
	})
	if err != nil {
		return fmt.Errorf("upserting location for image %d: %w", imageID, err)
	}
	return nil
}

func (s *Service) listCandidates(imageID uint64) ([]models.LocationCandidate, error) {
	var candidates []models.LocationCandidate
	err := s.DB.Where("image_id = ?", imageID).Order("rank_index ASC").Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("loading candidates for image %d: %w", imageID, err)
	}
	return candidates, nil
}

// replaceCandidates swaps the whole candidate set in one transaction; a
// failed write rolls back to the previous set instead of leaving it empty.
func (s *Service) replaceCandidates(imageID uint64, candidates []models.LocationCandidate) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", imageID).Delete(&models.LocationCandidate{}).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}
		return tx.Create(&candidates).Error
	})
	if err != nil {
		return fmt.Errorf("replacing candidates for image %d: %w", imageID, err)
	}
	return nil
}

func (s *Service) clearCandidates(db *gorm.DB, imageID uint64) error {
	if err := db.Where("image_id = ?", imageID).Delete(&models.LocationCandidate{}).Error; err != nil {
		return fmt.Errorf("clearing candidates for image %d: %w", imageID, err)
	}
	return nil
}
