package images

import (
	"fmt"
	"strings"
	"time"

	"pinaly/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncTags replaces the image's tag set with the given names: trim each,
// skip empties, find-or-create the Tag rows, then swap the associations
// wholesale. An empty list leaves the image with zero tags. Callers handle
// the "field absent" case — SyncTags is never invoked then.
func (s *Service) SyncTags(imageID uint64, tagNames []string) error {
	cleaned := make([]string, 0, len(tagNames))
	seen := map[string]bool{}
	for _, name := range tagNames {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cleaned = append(cleaned, name)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", imageID).Delete(&models.ImageTag{}).Error; err != nil {
			return err
		}
		if len(cleaned) == 0 {
			return nil
		}
		now := time.Now().Unix()
		links := make([]models.ImageTag, 0, len(cleaned))
		for _, name := range cleaned {
			tagID, err := resolveTag(tx, name)
			if err != nil {
				return err
			}
			links = append(links, models.ImageTag{
				CreatedAt: now,
				ImageID:   imageID,
				TagID:     tagID,
			})
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return fmt.Errorf("syncing tags for image %d: %w", imageID, err)
	}
	return nil
}

// resolveTag is an atomic insert-or-fetch on the unique name column, so
// two concurrent syncs asking for the same new name cannot create
// duplicate rows.
func resolveTag(tx *gorm.DB, name string) (uint64, error) {
	tag := models.Tag{Name: name, CreatedAt: time.Now().Unix()}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
		return 0, err
	}
	if tag.ID != 0 {
		return tag.ID, nil
	}
	// Conflict: someone else inserted it, fetch theirs
	if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
		return 0, err
	}
	return tag.ID, nil
}

func (s *Service) tagsForImage(imageID uint64) ([]string, error) {
	var names []string
	err := s.DB.Table("image_tags").
		Select("tags.name").
		Joins("join tags on tags.id = image_tags.tag_id").
		Where("image_tags.image_id = ?", imageID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("loading tags for image %d: %w", imageID, err)
	}
	return names, nil
}

func (s *Service) tagsForImages(imageIDs []uint64) (map[uint64][]string, error) {
	result := map[uint64][]string{}
	if len(imageIDs) == 0 {
		return result, nil
	}
	rows, err := s.DB.Table("image_tags").
		Select("image_tags.image_id, tags.name").
		Joins("join tags on tags.id = image_tags.tag_id").
		Where("image_tags.image_id IN ?", imageIDs).
		Order("tags.name ASC").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			imageID uint64
			name    string
		)
		if err = rows.Scan(&imageID, &name); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		result[imageID] = append(result[imageID], name)
	}
	return result, nil
}
