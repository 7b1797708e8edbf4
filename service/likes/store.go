package likes

import (
	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"gorm.io/gorm"
)

// Store backs like/unlike for both posts and comments with one contract.
// A like is a single relation row guarded by a unique index, so toggles
// by concurrent actors never clobber each other.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) targetExists(targetType string, targetID uint) (bool, error) {
	var count int64
	var err error
	switch targetType {
	case models.TargetPost:
		err = s.db.Model(&models.Post{}).Where("id = ?", targetID).Count(&count).Error
	case models.TargetComment:
		err = s.db.Model(&models.Comment{}).Where("id = ?", targetID).Count(&count).Error
	default:
		return false, apperr.ErrInvalid
	}
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Like records that userID liked the target. Fails with ErrAlreadyDone on
// a repeat like and ErrNotFound if the target does not exist.
func (s *Store) Like(userID uint, targetType string, targetID uint) error {
	exists, err := s.targetExists(targetType, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ErrNotFound
	}

	like := models.Like{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	}
	if err := s.db.Create(&like).Error; err != nil {
		if apperr.IsDuplicateKey(err) {
			return apperr.ErrAlreadyDone
		}
		return err
	}
	return nil
}

// Unlike removes userID's like. Fails with ErrNotDone when no like exists.
func (s *Store) Unlike(userID uint, targetType string, targetID uint) error {
	exists, err := s.targetExists(targetType, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ErrNotFound
	}

	result := s.db.Where("user_id = ? AND target_type = ? AND target_id = ?",
		userID, targetType, targetID).Delete(&models.Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotDone
	}
	return nil
}

func (s *Store) Count(targetType string, targetID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

func (s *Store) Liked(userID uint, targetType string, targetID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Count(&count).Error
	return count > 0, err
}
