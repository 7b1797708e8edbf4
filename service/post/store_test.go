package post

import (
	"fmt"
	"testing"
	"time"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/eakwetey/Wavely-server/service/comment"
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

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hash",
		FullName:     "Test " + username,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestCreatePostAttachesAuthor(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	author := createUser(t, db, "author", "user")

	view, err := store.Create(author.ID, "first post", "image", "/images/x.png")
	require.NoError(t, err)
	require.Equal(t, "first post", view.Content)
	require.Equal(t, "image", view.MediaType)
	require.Equal(t, author.Username, view.Author.Username)
	require.False(t, view.Edited)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	author := createUser(t, db, "author", "user")
	other := createUser(t, db, "other", "user")

	view, err := store.Create(author.ID, "original", "", "")
	require.NoError(t, err)

	_, err = store.Update(other.ID, view.ID, "hijacked")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := store.Update(author.ID, view.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Content)
	require.True(t, updated.Edited)

	_, err = store.Update(author.ID, 999, "nope")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdatePostKeepsLikesAndComments(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	comments := comment.NewStore(db)
	author := createUser(t, db, "author", "user")
	fan := createUser(t, db, "fan", "user")

	view, err := store.Create(author.ID, "original", "", "")
	require.NoError(t, err)

	_, err = comments.Create(fan.ID, view.ID, "nice", nil)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Like{
		UserID: fan.ID, TargetType: models.TargetPost, TargetID: view.ID,
	}).Error)

	updated, err := store.Update(author.ID, view.ID, "edited")
	require.NoError(t, err)
	require.EqualValues(t, 1, updated.LikeCount)
	require.EqualValues(t, 1, updated.CommentCount)
}

func TestDeletePostCascades(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	comments := comment.NewStore(db)
	author := createUser(t, db, "author", "user")
	fan := createUser(t, db, "fan", "user")

	view, err := store.Create(author.ID, "doomed", "", "")
	require.NoError(t, err)

	parent, err := comments.Create(fan.ID, view.ID, "top level", nil)
	require.NoError(t, err)
	reply, err := comments.Create(author.ID, view.ID, "a reply", &parent.ID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Like{
		UserID: fan.ID, TargetType: models.TargetPost, TargetID: view.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Like{
		UserID: author.ID, TargetType: models.TargetComment, TargetID: reply.ID,
	}).Error)

	require.NoError(t, store.Delete(author.ID, view.ID))

	var postCount, commentCount, likeCount int64
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Comment{}).Where("post_id = ?", view.ID).Count(&commentCount)
	db.Model(&models.Like{}).Count(&likeCount)
	require.EqualValues(t, 0, postCount)
	require.EqualValues(t, 0, commentCount)
	require.EqualValues(t, 0, likeCount)
}

func TestDeletePostAuthorization(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	author := createUser(t, db, "author", "user")
	other := createUser(t, db, "other", "user")
	admin := createUser(t, db, "admin", models.RoleAdmin)

	view, err := store.Create(author.ID, "mine", "", "")
	require.NoError(t, err)

	require.ErrorIs(t, store.Delete(other.ID, view.ID), apperr.ErrForbidden)
	require.NoError(t, store.Delete(admin.ID, view.ID))
	require.ErrorIs(t, store.Delete(author.ID, view.ID), apperr.ErrNotFound)
}

func TestListNewestFirstWithPreview(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	comments := comment.NewStore(db)
	author := createUser(t, db, "author", "user")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		post := models.Post{UserID: author.ID, Content: fmt.Sprintf("post %d", i)}
		post.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&post).Error)
	}

	var newest models.Post
	require.NoError(t, db.Order("created_at DESC").First(&newest).Error)
	for i := 0; i < 3; i++ {
		_, err := comments.Create(author.ID, newest.ID, fmt.Sprintf("comment %d", i), nil)
		require.NoError(t, err)
	}

	views, total, err := store.List(1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, views, 3)
	require.Equal(t, "post 2", views[0].Content)
	require.Equal(t, "post 0", views[2].Content)

	require.EqualValues(t, 3, views[0].CommentCount)
	require.Len(t, views[0].Comments, CommentPreviewLimit)
	require.Equal(t, "comment 2", views[0].Comments[0].Content)
}

func TestGetPostIncludesAllTopLevelComments(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	comments := comment.NewStore(db)
	author := createUser(t, db, "author", "user")

	view, err := store.Create(author.ID, "a post", "", "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := comments.Create(author.ID, view.ID, fmt.Sprintf("comment %d", i), nil)
		require.NoError(t, err)
	}

	got, err := store.Get(view.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 5)
	require.EqualValues(t, 5, got.CommentCount)

	_, err = store.Get(999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
