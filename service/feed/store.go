package feed

import (
	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/eakwetey/Wavely-server/service/follow"
	"github.com/eakwetey/Wavely-server/service/post"
	"gorm.io/gorm"
)

// Store assembles feeds by composing the follow and post stores. It has
// no persistent state of its own.
type Store struct {
	db      *gorm.DB
	follows *follow.Store
	posts   *post.Store
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		follows: follow.NewStore(db),
		posts:   post.NewStore(db),
	}
}

// Feed resolves the candidate author set (following union self) and
// returns their posts newest-first, denormalized with author summaries
// and comment previews.
func (s *Store) Feed(userID uint, page, limit int) ([]post.View, int64, error) {
	authorIDs, err := s.follows.FollowingIDs(userID)
	if err != nil {
		return nil, 0, err
	}
	authorIDs = append(authorIDs, userID)

	return s.posts.ListByAuthors(authorIDs, page, limit)
}

// UserPosts is the feed shape restricted to a single author.
func (s *Store) UserPosts(userID uint, page, limit int) ([]post.View, int64, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, apperr.ErrNotFound
	}

	return s.posts.ListByAuthors([]uint{userID}, page, limit)
}
