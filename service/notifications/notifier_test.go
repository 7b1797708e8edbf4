package notifications

import (
	"testing"

	"github.com/eakwetey/Wavely-server/cmd/models"
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

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Device{}, &models.Notification{}))
	return db
}

func TestDeviceReregisterAfterRemoval(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x", FullName: "Alice"}
	require.NoError(t, db.Create(&user).Error)

	const token = "ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"
	device := models.Device{Token: token, UserID: user.ID, DeviceType: "ios"}
	require.NoError(t, db.Create(&device).Error)

	// Removal frees the (token, user) slot so the same device can come
	// back, as it does after an uninstall/reinstall.
	require.NoError(t, db.Where("token = ?", token).Delete(&models.Device{}).Error)

	again := models.Device{Token: token, UserID: user.ID, DeviceType: "ios"}
	require.NoError(t, db.Create(&again).Error)

	var count int64
	db.Model(&models.Device{}).Where("user_id = ?", user.ID).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestNotifierSkipsSelf(t *testing.T) {
	db := setupTestDB(t)
	notifier := NewNotifier(db)

	user := models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x", FullName: "Alice"}
	require.NoError(t, db.Create(&user).Error)

	notifier.Notify(user.ID, user.ID, models.NotifyPostLike, "New like", "you liked your own post")

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	require.EqualValues(t, 0, count)
}
