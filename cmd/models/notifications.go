package models

import (
	"time"

	"gorm.io/gorm"
)

// Device has no DeletedAt: removing a device must free the slot in the
// token unique index so the same device can register again.
type Device struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Token      string    `gorm:"column:token;not null;uniqueIndex:idx_token_user" json:"token"`
	UserID     uint      `gorm:"column:user_id;not null;index;uniqueIndex:idx_token_user" json:"user_id"`
	DeviceType string    `gorm:"column:device_type;type:varchar(50)" json:"device_type"`
	DeviceName string    `gorm:"column:device_name;type:varchar(100)" json:"device_name,omitempty"`
}

// Notification event kinds.
const (
	NotifyFollow      = "follow"
	NotifyPostLike    = "post_like"
	NotifyCommentLike = "comment_like"
	NotifyComment     = "comment"
	NotifyReply       = "reply"
)

type Notification struct {
	gorm.Model
	UserID  uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	ActorID uint      `gorm:"column:actor_id;not null" json:"actor_id"`
	Type    string    `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Title   string    `gorm:"column:title" json:"title"`
	Body    string    `gorm:"column:body" json:"body"`
	Status  string    `gorm:"column:status;type:varchar(20)" json:"status"`
	SentAt  time.Time `gorm:"column:sent_at" json:"sent_at"`
}
