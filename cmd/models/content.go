package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	gorm.Model
	UserID    uint   `gorm:"column:user_id;not null;index" json:"user_id"`
	Content   string `gorm:"column:content;type:text;not null" json:"content"`
	MediaType string `gorm:"column:media_type;size:20" json:"media_type,omitempty"`
	MediaURL  string `gorm:"column:media_url;size:500" json:"media_url,omitempty"`
	Edited    bool   `gorm:"column:edited;default:false" json:"edited"`
	User      *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Comment is either a top-level comment on a post (ParentID nil) or a
// reply to a top-level comment. Depth is capped at one reply level: the
// comment store rejects replies whose parent is itself a reply, and a
// reply's PostID is always copied from its parent.
type Comment struct {
	gorm.Model
	UserID   uint   `gorm:"column:user_id;not null;index" json:"user_id"`
	PostID   uint   `gorm:"column:post_id;not null;index" json:"post_id"`
	ParentID *uint  `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	Content  string `gorm:"column:content;type:text;not null" json:"content"`
	Edited   bool   `gorm:"column:edited;default:false" json:"edited"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Like target kinds.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Like is one row per (user, target). The composite unique index makes
// like/unlike single atomic inserts/deletes rather than read-modify-write
// of a membership array, and counts are computed by query. No DeletedAt:
// an unlike must free the slot in the unique index so the user can like
// the target again.
type Like struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UserID     uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_target" json:"user_id"`
	TargetType string    `gorm:"column:target_type;size:20;not null;uniqueIndex:idx_user_target" json:"target_type"`
	TargetID   uint      `gorm:"column:target_id;not null;index;uniqueIndex:idx_user_target" json:"target_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
