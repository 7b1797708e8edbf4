package user

import (
	"testing"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/eakwetey/Wavely-server/service/comment"
	"github.com/eakwetey/Wavely-server/service/follow"
	"github.com/eakwetey/Wavely-server/service/post"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Follow{}, &models.Post{}, &models.Comment{},
		&models.Like{}, &models.Device{}, &models.Notification{}, &models.PasswordResetToken{},
	))
	return db
}

func register(t *testing.T, store *Store, username, email string) *models.User {
	t.Helper()
	user, err := store.Register(RegisterParams{
		Username: username,
		Email:    email,
		Password: "hunter22",
		FullName: "Test " + username,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	register(t, store, "alice", "a@x.com")

	_, err := store.Register(RegisterParams{
		Username: "alice2",
		Email:    "a@x.com",
		Password: "hunter22",
		FullName: "Alice Again",
	})
	require.ErrorIs(t, err, apperr.ErrDuplicate)

	_, err = store.Register(RegisterParams{
		Username: "alice",
		Email:    "other@x.com",
		Password: "hunter22",
		FullName: "Alice Again",
	})
	require.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestRegisterRequiredFields(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	_, err := store.Register(RegisterParams{Username: "alice"})
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	register(t, store, "alice", "a@x.com")

	user, err := store.Authenticate("a@x.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	_, err = store.Authenticate("a@x.com", "wrong")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = store.Authenticate("nobody@x.com", "hunter22")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestVerifyEmail(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	user := register(t, store, "alice", "a@x.com")
	require.NotEmpty(t, user.EmailVerificationCode)

	require.ErrorIs(t, store.VerifyEmail("a@x.com", "000000x"), apperr.ErrUnauthenticated)
	require.NoError(t, store.VerifyEmail("a@x.com", user.EmailVerificationCode))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.True(t, reloaded.EmailVerified)
	require.Empty(t, reloaded.EmailVerificationCode)
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	register(t, store, "alice", "a@x.com")
	register(t, store, "malicia", "m@x.com")
	register(t, store, "bob", "b@x.com")

	results, total, err := store.Search("ALIC", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, results, 2)

	// Empty query returns everyone, still projected.
	results, total, err = store.Search("", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	for _, summary := range results {
		require.NotZero(t, summary.ID)
		require.NotEmpty(t, summary.Username)
	}
}

func TestSearchMatchesFullName(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	user, err := store.Register(RegisterParams{
		Username: "jdoe",
		Email:    "j@x.com",
		Password: "hunter22",
		FullName: "Jane Doe",
	})
	require.NoError(t, err)

	results, total, err := store.Search("jane d", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, user.ID, results[0].ID)
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	alice := register(t, store, "alice", "a@x.com")
	bob := register(t, store, "bob", "b@x.com")

	_, err := store.UpdateProfile(bob.ID, alice.ID, ProfileUpdate{Bio: "hacked"})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := store.UpdateProfile(alice.ID, alice.ID, ProfileUpdate{Bio: "hello there"})
	require.NoError(t, err)
	require.Equal(t, "hello there", updated.Bio)
}

func TestDeleteAccountCascades(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	posts := post.NewStore(db)
	comments := comment.NewStore(db)
	follows := follow.NewStore(db)

	alice := register(t, store, "alice", "a@x.com")
	bob := register(t, store, "bob", "b@x.com")

	// Alice's own post with a comment from Bob.
	alicePost, err := posts.Create(alice.ID, "alice's post", "", "")
	require.NoError(t, err)
	_, err = comments.Create(bob.ID, alicePost.ID, "bob's comment", nil)
	require.NoError(t, err)

	// Alice comments on Bob's post; Bob replies beneath her comment.
	bobPost, err := posts.Create(bob.ID, "bob's post", "", "")
	require.NoError(t, err)
	aliceComment, err := comments.Create(alice.ID, bobPost.ID, "alice's comment", nil)
	require.NoError(t, err)
	_, err = comments.Create(bob.ID, bobPost.ID, "bob's reply", &aliceComment.ID)
	require.NoError(t, err)

	require.NoError(t, follows.Follow(alice.ID, bob.ID))
	require.NoError(t, follows.Follow(bob.ID, alice.ID))
	require.NoError(t, db.Create(&models.Like{
		UserID: alice.ID, TargetType: models.TargetPost, TargetID: bobPost.ID,
	}).Error)

	require.NoError(t, store.DeleteAccount(alice.ID, alice.ID))

	var userCount int64
	db.Model(&models.User{}).Where("id = ?", alice.ID).Count(&userCount)
	require.EqualValues(t, 0, userCount)

	// Her post and everything under it is gone.
	var postCount int64
	db.Model(&models.Post{}).Where("user_id = ?", alice.ID).Count(&postCount)
	require.EqualValues(t, 0, postCount)
	var orphanComments int64
	db.Model(&models.Comment{}).Where("post_id = ?", alicePost.ID).Count(&orphanComments)
	require.EqualValues(t, 0, orphanComments)

	// Her comment on Bob's post and the reply beneath it are gone; Bob's
	// post survives.
	var bobPostComments int64
	db.Model(&models.Comment{}).Where("post_id = ?", bobPost.ID).Count(&bobPostComments)
	require.EqualValues(t, 0, bobPostComments)
	var bobPosts int64
	db.Model(&models.Post{}).Where("user_id = ?", bob.ID).Count(&bobPosts)
	require.EqualValues(t, 1, bobPosts)

	// Both follow directions and her likes are gone.
	var followCount, likeCount int64
	db.Model(&models.Follow{}).Count(&followCount)
	db.Model(&models.Like{}).Where("user_id = ?", alice.ID).Count(&likeCount)
	require.EqualValues(t, 0, followCount)
	require.EqualValues(t, 0, likeCount)
}

func TestReregisterAfterDelete(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	alice := register(t, store, "alice", "a@x.com")
	require.NoError(t, store.DeleteAccount(alice.ID, alice.ID))

	// Deletion frees the unique username and email for reuse.
	again := register(t, store, "alice", "a@x.com")
	require.NotEqual(t, alice.ID, again.ID)
}

func TestDeleteAccountAuthorization(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	alice := register(t, store, "alice", "a@x.com")
	bob := register(t, store, "bob", "b@x.com")

	require.ErrorIs(t, store.DeleteAccount(bob.ID, alice.ID), apperr.ErrForbidden)

	admin := register(t, store, "admin", "adm@x.com")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", admin.ID).
		Update("role", models.RoleAdmin).Error)

	require.NoError(t, store.DeleteAccount(admin.ID, alice.ID))
	require.ErrorIs(t, store.DeleteAccount(admin.ID, alice.ID), apperr.ErrNotFound)
}
