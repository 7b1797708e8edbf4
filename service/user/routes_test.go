package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

func confirmResetRequest(t *testing.T, userID uint, body map[string]string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest("POST", fmt.Sprintf("/reset-password/%d/confirm", userID), bytes.NewReader(payload))
	return mux.SetURLVars(r, map[string]string{"userId": fmt.Sprint(userID)})
}

func TestPasswordResetRequiresToken(t *testing.T) {
	db := setupTestDB(t)
	handler := NewHandler(db)

	alice := register(t, handler.store, "alice", "a@x.com")
	require.NoError(t, db.Create(&models.PasswordResetToken{
		UserID:    alice.ID,
		Token:     "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}).Error)

	// No token at all.
	w := httptest.NewRecorder()
	handler.handlePasswordReset(w, confirmResetRequest(t, alice.ID, map[string]string{
		"password": "newpassword",
	}))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Wrong token.
	w = httptest.NewRecorder()
	handler.handlePasswordReset(w, confirmResetRequest(t, alice.ID, map[string]string{
		"token":    "654321",
		"password": "newpassword",
	}))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// The old password still works.
	_, err := handler.store.Authenticate("a@x.com", "hunter22")
	require.NoError(t, err)
}

func TestPasswordResetConsumesToken(t *testing.T) {
	db := setupTestDB(t)
	handler := NewHandler(db)

	alice := register(t, handler.store, "alice", "a@x.com")
	require.NoError(t, db.Create(&models.PasswordResetToken{
		UserID:    alice.ID,
		Token:     "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}).Error)

	w := httptest.NewRecorder()
	handler.handlePasswordReset(w, confirmResetRequest(t, alice.ID, map[string]string{
		"token":    "123456",
		"password": "newpassword",
	}))
	require.Equal(t, http.StatusOK, w.Code)

	_, err := handler.store.Authenticate("a@x.com", "newpassword")
	require.NoError(t, err)
	_, err = handler.store.Authenticate("a@x.com", "hunter22")
	require.Error(t, err)

	// The token is single-use.
	w = httptest.NewRecorder()
	handler.handlePasswordReset(w, confirmResetRequest(t, alice.ID, map[string]string{
		"token":    "123456",
		"password": "anotherpassword",
	}))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	handler := NewHandler(db)

	alice := register(t, handler.store, "alice", "a@x.com")
	require.NoError(t, db.Create(&models.PasswordResetToken{
		UserID:    alice.ID,
		Token:     "123456",
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	w := httptest.NewRecorder()
	handler.handlePasswordReset(w, confirmResetRequest(t, alice.ID, map[string]string{
		"token":    "123456",
		"password": "newpassword",
	}))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
