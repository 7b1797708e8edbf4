package user

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName string
	Bio      string
}

// Register creates a new account. Duplicate username or email fails with
// ErrDuplicate. The created user carries a pending 6-digit email
// verification code.
func (s *Store) Register(params RegisterParams) (*models.User, error) {
	if params.Username == "" || params.Email == "" || params.Password == "" || params.FullName == "" {
		return nil, apperr.ErrInvalid
	}

	var existing models.User
	result := s.db.Where("email = ? OR username = ?", params.Email, params.Username).First(&existing)
	if result.Error == nil {
		return nil, apperr.ErrDuplicate
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:              params.Username,
		Email:                 params.Email,
		PasswordHash:          string(passwordHash),
		FullName:              params.FullName,
		Bio:                   params.Bio,
		Role:                  "user",
		EmailVerificationCode: fmt.Sprintf("%06d", rand.Intn(1000000)),
		VerificationExpiry:    time.Now().Add(15 * time.Minute),
	}

	if err := s.db.Create(&user).Error; err != nil {
		if apperr.IsDuplicateKey(err) {
			return nil, apperr.ErrDuplicate
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate checks the credentials. Both an unknown email and a wrong
// password fail with ErrUnauthenticated.
func (s *Store) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUnauthenticated
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	return &user, nil
}

// VerifyEmail consumes a pending verification code.
func (s *Store) VerifyEmail(email, code string) error {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	if user.EmailVerificationCode != code || time.Now().After(user.VerificationExpiry) {
		return apperr.ErrUnauthenticated
	}

	user.EmailVerified = true
	user.EmailVerificationCode = ""
	user.VerificationExpiry = time.Time{}
	return s.db.Save(&user).Error
}

func (s *Store) Get(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

type ProfileUpdate struct {
	FullName           string
	Bio                string
	ProfilePicturePath string
}

// UpdateProfile edits display fields; only the account owner may edit.
func (s *Store) UpdateProfile(actorID, userID uint, update ProfileUpdate) (*models.User, error) {
	if actorID != userID {
		return nil, apperr.ErrForbidden
	}

	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	if update.FullName != "" {
		user.FullName = update.FullName
	}
	if update.Bio != "" {
		user.Bio = update.Bio
	}
	if update.ProfilePicturePath != "" {
		user.ProfilePicturePath = update.ProfilePicturePath
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Search matches the query as a case-insensitive substring of username or
// full name and returns summary projections only. An empty query returns
// the unfiltered listing.
func (s *Store) Search(query string, page, limit int) ([]models.UserSummary, int64, error) {
	dbQuery := s.db.Model(&models.User{})
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		dbQuery = dbQuery.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern)
	}

	var total int64
	dbQuery.Count(&total)

	var users []models.User
	if err := dbQuery.Order("username ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, total, nil
}

// DeleteAccount removes a user and everything they authored: their posts
// with the full comment trees beneath them, their comments elsewhere with
// any replies, their likes, both directions of their follow edges, their
// devices, notifications and reset tokens. One transaction, so readers
// never observe a half-deleted account.
func (s *Store) DeleteAccount(actorID, userID uint) error {
	if actorID != userID {
		var actor models.User
		if err := s.db.First(&actor, actorID).Error; err != nil {
			return apperr.ErrForbidden
		}
		if actor.Role != models.RoleAdmin {
			return apperr.ErrForbidden
		}
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Authored posts and every comment beneath them.
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", userID).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			var commentIDs []uint
			if err := tx.Model(&models.Comment{}).Where("post_id IN ?", postIDs).
				Pluck("id", &commentIDs).Error; err != nil {
				return err
			}
			if len(commentIDs) > 0 {
				if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetComment, commentIDs).
					Delete(&models.Like{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetPost, postIDs).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		// Comments authored elsewhere, with replies under the top-level ones.
		var ownCommentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", userID).
			Pluck("id", &ownCommentIDs).Error; err != nil {
			return err
		}
		if len(ownCommentIDs) > 0 {
			var replyIDs []uint
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", ownCommentIDs).
				Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			doomed := append(ownCommentIDs, replyIDs...)
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetComment, doomed).
				Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", doomed).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", userID, userID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Device{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR actor_id = ?", userID, userID).
			Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		// Hard delete so the unique email and username become usable again.
		return tx.Unscoped().Delete(&user).Error
	})
}
