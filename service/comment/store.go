package comment

import (
	"errors"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"gorm.io/gorm"
)

// ReplyPreviewLimit is how many of the newest replies ride along with
// each top-level comment in listings.
const ReplyPreviewLimit = 2

// View is a comment denormalized with its author summary, like count
// and, for top-level comments, a bounded preview of its newest replies.
type View struct {
	models.Comment
	Author     models.UserSummary `json:"author"`
	LikeCount  int64              `json:"like_count"`
	ReplyCount int64              `json:"reply_count"`
	Replies    []View             `json:"replies,omitempty"`
}

// Store is the authority over comment and reply linkage: it enforces the
// two-level nesting cap and keeps a reply's post reference equal to its
// parent's.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create adds a comment to a post, or a reply when parentID is given.
// A missing post or parent fails with ErrNotFound. Replying to a reply
// fails with ErrInvalid: nesting never exceeds post → comment → reply.
// Replies inherit their post id from the resolved parent, never from the
// caller.
func (s *Store) Create(authorID, postID uint, content string, parentID *uint) (*models.Comment, error) {
	var created models.Comment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}

		resolvedPostID := post.ID
		if parentID != nil {
			var parent models.Comment
			if err := tx.First(&parent, *parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.ErrNotFound
				}
				return err
			}
			if parent.ParentID != nil {
				return apperr.ErrInvalid
			}
			resolvedPostID = parent.PostID
		}

		created = models.Comment{
			UserID:   authorID,
			PostID:   resolvedPostID,
			ParentID: parentID,
			Content:  content,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(&created, created.ID).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// Update edits the body and sets the edited flag. Only the original
// author may edit; likes and replies are untouched.
func (s *Store) Update(actorID, commentID uint, content string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if comment.UserID != actorID {
		return nil, apperr.ErrForbidden
	}

	comment.Content = content
	comment.Edited = true
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment. The author may delete their own; admins may
// delete anyone's. Deleting a top-level comment cascades its replies and
// every affected like row; deleting a reply removes only itself.
func (s *Store) Delete(actorID, commentID uint) error {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	if comment.UserID != actorID {
		var actor models.User
		if err := s.db.First(&actor, actorID).Error; err != nil {
			return apperr.ErrForbidden
		}
		if actor.Role != models.RoleAdmin {
			return apperr.ErrForbidden
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		doomed := []uint{comment.ID}

		if comment.ParentID == nil {
			var replyIDs []uint
			if err := tx.Model(&models.Comment{}).
				Where("parent_id = ?", comment.ID).
				Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			doomed = append(doomed, replyIDs...)
		}

		if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetComment, doomed).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", doomed).Delete(&models.Comment{}).Error
	})
}

// ListForPost returns the post's top-level comments newest-first with
// pagination, each carrying its reply count and newest-reply preview.
func (s *Store) ListForPost(postID uint, page, limit int) ([]View, int64, error) {
	var postCount int64
	if err := s.db.Model(&models.Post{}).Where("id = ?", postID).Count(&postCount).Error; err != nil {
		return nil, 0, err
	}
	if postCount == 0 {
		return nil, 0, apperr.ErrNotFound
	}

	var comments []models.Comment
	var total int64

	query := s.db.Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Preload("User")
	query.Count(&total)

	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	views := make([]View, 0, len(comments))
	for _, comment := range comments {
		view, err := s.buildView(comment, true)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

// Replies returns all replies to one comment, newest-first, paginated.
func (s *Store) Replies(commentID uint, page, limit int) ([]View, int64, error) {
	var parentCount int64
	if err := s.db.Model(&models.Comment{}).Where("id = ?", commentID).Count(&parentCount).Error; err != nil {
		return nil, 0, err
	}
	if parentCount == 0 {
		return nil, 0, apperr.ErrNotFound
	}

	var replies []models.Comment
	var total int64

	query := s.db.Model(&models.Comment{}).
		Where("parent_id = ?", commentID).
		Preload("User")
	query.Count(&total)

	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&replies).Error; err != nil {
		return nil, 0, err
	}

	views := make([]View, 0, len(replies))
	for _, reply := range replies {
		view, err := s.buildView(reply, false)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

// PreviewForPost is the bounded comment preview attached to feed items.
func (s *Store) PreviewForPost(postID uint, count int) ([]View, error) {
	var comments []models.Comment
	if err := s.db.Where("post_id = ? AND parent_id IS NULL", postID).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(count).
		Find(&comments).Error; err != nil {
		return nil, err
	}

	views := make([]View, 0, len(comments))
	for _, comment := range comments {
		view, err := s.buildView(comment, false)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Store) buildView(comment models.Comment, withReplies bool) (View, error) {
	view := View{Comment: comment}
	if comment.User != nil {
		view.Author = comment.User.Summary()
		view.User = nil
	}

	if err := s.db.Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", models.TargetComment, comment.ID).
		Count(&view.LikeCount).Error; err != nil {
		return view, err
	}

	if comment.ParentID == nil {
		if err := s.db.Model(&models.Comment{}).
			Where("parent_id = ?", comment.ID).
			Count(&view.ReplyCount).Error; err != nil {
			return view, err
		}
	}

	if withReplies && view.ReplyCount > 0 {
		var replies []models.Comment
		if err := s.db.Where("parent_id = ?", comment.ID).
			Preload("User").
			Order("created_at DESC, id DESC").
			Limit(ReplyPreviewLimit).
			Find(&replies).Error; err != nil {
			return view, err
		}
		for _, reply := range replies {
			replyView, err := s.buildView(reply, false)
			if err != nil {
				return view, err
			}
			view.Replies = append(view.Replies, replyView)
		}
	}
	return view, nil
}
