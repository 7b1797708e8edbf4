package post

import (
	"errors"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/eakwetey/Wavely-server/service/comment"
	"gorm.io/gorm"
)

// CommentPreviewLimit bounds the comment preview attached to listed and
// feed posts.
const CommentPreviewLimit = 2

// View is a post denormalized with its author summary, like and comment
// counts, and a bounded preview of recent top-level comments.
type View struct {
	models.Post
	Author       models.UserSummary `json:"author"`
	LikeCount    int64              `json:"like_count"`
	CommentCount int64              `json:"comment_count"`
	Comments     []comment.View     `json:"comments,omitempty"`
}

type Store struct {
	db       *gorm.DB
	comments *comment.Store
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		comments: comment.NewStore(db),
	}
}

// Create always succeeds for a valid author. Media is optional.
func (s *Store) Create(authorID uint, content, mediaType, mediaURL string) (*View, error) {
	post := models.Post{
		UserID:    authorID,
		Content:   content,
		MediaType: mediaType,
		MediaURL:  mediaURL,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(&post, post.ID).Error; err != nil {
		return nil, err
	}
	view, err := s.buildView(post, false)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Get returns one post with all of its top-level comments attached.
func (s *Store) Get(postID uint) (*View, error) {
	var post models.Post
	if err := s.db.Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	view, err := s.buildView(post, false)
	if err != nil {
		return nil, err
	}

	comments, _, err := s.comments.ListForPost(post.ID, 1, int(view.CommentCount)+1)
	if err != nil {
		return nil, err
	}
	view.Comments = comments
	return &view, nil
}

// List returns all posts newest-first with pagination.
func (s *Store) List(page, limit int) ([]View, int64, error) {
	return s.list(s.db.Model(&models.Post{}), page, limit)
}

// ListByAuthors restricts the listing to the given author set. Feed
// assembly passes the follow set union self; profile views pass one id.
func (s *Store) ListByAuthors(authorIDs []uint, page, limit int) ([]View, int64, error) {
	if len(authorIDs) == 0 {
		return []View{}, 0, nil
	}
	query := s.db.Model(&models.Post{}).Where("user_id IN ?", authorIDs)
	return s.list(query, page, limit)
}

func (s *Store) list(query *gorm.DB, page, limit int) ([]View, int64, error) {
	var posts []models.Post
	var total int64

	query = query.Preload("User")
	query.Count(&total)

	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	views := make([]View, 0, len(posts))
	for _, post := range posts {
		view, err := s.buildView(post, true)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

// Update edits the body and sets the edited flag. Author only; likes and
// comments are untouched.
func (s *Store) Update(actorID, postID uint, content string) (*View, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if post.UserID != actorID {
		return nil, apperr.ErrForbidden
	}

	post.Content = content
	post.Edited = true
	if err := s.db.Save(&post).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(&post, post.ID).Error; err != nil {
		return nil, err
	}
	view, err := s.buildView(post, false)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete removes a post and cascades every comment, reply and like
// beneath it in one transaction. Author or admin only.
func (s *Store) Delete(actorID, postID uint) error {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	if post.UserID != actorID {
		var actor models.User
		if err := s.db.First(&actor, actorID).Error; err != nil {
			return apperr.ErrForbidden
		}
		if actor.Role != models.RoleAdmin {
			return apperr.ErrForbidden
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("post_id = ?", post.ID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if len(commentIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetComment, commentIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetPost, post.ID).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

func (s *Store) buildView(post models.Post, withPreview bool) (View, error) {
	view := View{Post: post}
	if post.User != nil {
		view.Author = post.User.Summary()
		view.User = nil
	}

	if err := s.db.Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", models.TargetPost, post.ID).
		Count(&view.LikeCount).Error; err != nil {
		return view, err
	}
	if err := s.db.Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", post.ID).
		Count(&view.CommentCount).Error; err != nil {
		return view, err
	}

	if withPreview && view.CommentCount > 0 {
		preview, err := s.comments.PreviewForPost(post.ID, CommentPreviewLimit)
		if err != nil {
			return view, err
		}
		view.Comments = preview
	}
	return view, nil
}
