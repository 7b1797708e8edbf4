package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username           string `gorm:"column:username;size:50;not null;uniqueIndex" json:"username"`
	Email              string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash       string `gorm:"column:password_hash;size:255;not null" json:"-"`
	FullName           string `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Bio                string `gorm:"column:bio;type:text" json:"bio"`
	ProfilePicturePath string `gorm:"column:profile_picture_path;size:255" json:"profile_picture_path"`
	Role               string `gorm:"column:role;size:50;not null;default:user" json:"role"`

	EmailVerified         bool      `gorm:"column:email_verified;default:false" json:"email_verified"`
	EmailVerificationCode string    `gorm:"column:email_verification_code;size:6" json:"-"`
	VerificationExpiry    time.Time `gorm:"column:verification_expiry" json:"-"`

	Refresh               string    `gorm:"column:refresh_token;size:255" json:"-"`
	RefreshTokenExpiredAt time.Time `gorm:"column:refresh_token_expired_at" json:"-"`
}

const RoleAdmin = "admin"

// UserSummary is the projection returned by follower/following listings,
// search and denormalized post/comment authors. Never the full record.
type UserSummary struct {
	ID                 uint   `json:"id"`
	Username           string `json:"username"`
	FullName           string `json:"full_name"`
	ProfilePicturePath string `json:"profile_picture_path"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                 u.ID,
		Username:           u.Username,
		FullName:           u.FullName,
		ProfilePicturePath: u.ProfilePicturePath,
	}
}

// Follow is one directed edge of the follow graph. Both the follower and
// following listings read from this table via its indexes, so there is no
// mirrored pair of sets to keep consistent. No DeletedAt: an unfollow must
// free the slot in the unique index so the pair can follow again later.
type Follow struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FollowerID uint      `gorm:"column:follower_id;not null;index;uniqueIndex:idx_follower_followee" json:"follower_id"`
	FolloweeID uint      `gorm:"column:followee_id;not null;index;uniqueIndex:idx_follower_followee" json:"followee_id"`
	Follower   *User     `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee   *User     `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`
}

type PasswordResetToken struct {
	gorm.Model
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Token     string    `gorm:"column:token;size:6;not null" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
}
