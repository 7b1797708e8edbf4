package follow

import (
	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"gorm.io/gorm"
)

// Store maintains the follow graph. Each relationship is a single row
// keyed (follower_id, followee_id) with a unique index, so a follow is
// one atomic insert and both listing directions read the same row —
// concurrent readers can never observe a half-applied relationship.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) userExists(userID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Follow makes actorID follow targetID. Self-follows fail with
// ErrInvalid, a missing target with ErrNotFound and an existing
// relationship with ErrAlreadyDone.
func (s *Store) Follow(actorID, targetID uint) error {
	if actorID == targetID {
		return apperr.ErrInvalid
	}

	exists, err := s.userExists(targetID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ErrNotFound
	}

	relation := models.Follow{
		FollowerID: actorID,
		FolloweeID: targetID,
	}
	if err := s.db.Create(&relation).Error; err != nil {
		if apperr.IsDuplicateKey(err) {
			return apperr.ErrAlreadyDone
		}
		return err
	}
	return nil
}

// Unfollow removes the relationship. Fails with ErrNotFound when the
// target does not exist or is not currently followed.
func (s *Store) Unfollow(actorID, targetID uint) error {
	exists, err := s.userExists(targetID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.ErrNotFound
	}

	result := s.db.Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Followers lists summaries of the users following userID.
func (s *Store) Followers(userID uint) ([]models.UserSummary, error) {
	exists, err := s.userExists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrNotFound
	}

	var relations []models.Follow
	if err := s.db.Where("followee_id = ?", userID).Preload("Follower").Find(&relations).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(relations))
	for _, relation := range relations {
		if relation.Follower == nil {
			continue
		}
		summaries = append(summaries, relation.Follower.Summary())
	}
	return summaries, nil
}

// Following lists summaries of the users userID follows.
func (s *Store) Following(userID uint) ([]models.UserSummary, error) {
	exists, err := s.userExists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.ErrNotFound
	}

	var relations []models.Follow
	if err := s.db.Where("follower_id = ?", userID).Preload("Followee").Find(&relations).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(relations))
	for _, relation := range relations {
		if relation.Followee == nil {
			continue
		}
		summaries = append(summaries, relation.Followee.Summary())
	}
	return summaries, nil
}

// FollowingIDs returns the raw followee id set for feed assembly.
func (s *Store) FollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// IsFollowing reports whether actorID currently follows targetID.
func (s *Store) IsFollowing(actorID, targetID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}
