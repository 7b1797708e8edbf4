package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/eakwetey/Wavely-server/cmd/utils"
	"github.com/eakwetey/Wavely-server/service/follow"
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

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Follow{}, &models.Post{}, &models.Comment{}, &models.Like{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hash",
		FullName:     "Test " + username,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createPostAt(t *testing.T, db *gorm.DB, authorID uint, content string, at time.Time) {
	t.Helper()
	post := models.Post{UserID: authorID, Content: content}
	post.CreatedAt = at
	require.NoError(t, db.Create(&post).Error)
}

func TestFeedContainsOnlyFollowSetUnionSelf(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	follows := follow.NewStore(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	dave := createUser(t, db, "dave")

	require.NoError(t, follows.Follow(alice.ID, bob.ID))
	require.NoError(t, follows.Follow(alice.ID, carol.ID))

	base := time.Now().Add(-time.Hour)
	createPostAt(t, db, alice.ID, "from alice", base.Add(1*time.Minute))
	createPostAt(t, db, bob.ID, "from bob", base.Add(2*time.Minute))
	createPostAt(t, db, carol.ID, "from carol", base.Add(3*time.Minute))
	createPostAt(t, db, dave.ID, "from dave", base.Add(4*time.Minute))

	posts, total, err := store.Feed(alice.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	allowed := map[uint]bool{alice.ID: true, bob.ID: true, carol.ID: true}
	for _, view := range posts {
		require.True(t, allowed[view.UserID], "unexpected author %d in feed", view.UserID)
	}

	// Newest-first.
	require.Equal(t, "from carol", posts[0].Content)
	require.Equal(t, "from alice", posts[2].Content)
}

func TestFeedPagination(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	follows := follow.NewStore(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	require.NoError(t, follows.Follow(alice.ID, bob.ID))
	require.NoError(t, follows.Follow(alice.ID, carol.ID))

	authors := []uint{alice.ID, bob.ID, carol.ID}
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		createPostAt(t, db, authors[i%3], fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	page1, total, err := store.Feed(alice.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, page1, 10)
	require.EqualValues(t, 3, utils.TotalPages(total, 10))

	// Items 1-10 are the 10 newest posts.
	require.Equal(t, "post 24", page1[0].Content)
	require.Equal(t, "post 15", page1[9].Content)

	page3, _, err := store.Feed(alice.ID, 3, 10)
	require.NoError(t, err)
	require.Len(t, page3, 5)
	require.Equal(t, "post 0", page3[4].Content)
}

func TestFeedWithNoFollowsShowsOwnPosts(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	createPostAt(t, db, alice.ID, "mine", time.Now())
	createPostAt(t, db, bob.ID, "not mine", time.Now())

	posts, total, err := store.Feed(alice.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "mine", posts[0].Content)
}

func TestUserPosts(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Now().Add(-time.Hour)
	createPostAt(t, db, alice.ID, "alice 1", base.Add(1*time.Minute))
	createPostAt(t, db, alice.ID, "alice 2", base.Add(2*time.Minute))
	createPostAt(t, db, bob.ID, "bob 1", base.Add(3*time.Minute))

	posts, total, err := store.UserPosts(alice.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, "alice 2", posts[0].Content)

	_, _, err = store.UserPosts(999, 1, 10)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
