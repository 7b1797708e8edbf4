package follow

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/eakwetey/Wavely-server/cmd/utils"
	"github.com/eakwetey/Wavely-server/service/notifications"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	store    *Store
	notifier *notifications.Notifier
}

func NewHandler(db *gorm.DB, notifier *notifications.Notifier) *Handler {
	return &Handler{
		db:       db,
		store:    NewStore(db),
		notifier: notifier,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/{id}/follow", utils.AuthMiddleware(h.FollowUser)).Methods("POST")
	router.HandleFunc("/users/{id}/unfollow", utils.AuthMiddleware(h.UnfollowUser)).Methods("POST")
	router.HandleFunc("/users/{id}/followers", h.GetFollowers).Methods("GET")
	router.HandleFunc("/users/{id}/following", h.GetFollowing).Methods("GET")
}

func targetIDFromRequest(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	return uint(id), err
}

func (h *Handler) FollowUser(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID, err := targetIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.store.Follow(actorID, targetID); err != nil {
		apperr.Write(w, err)
		return
	}

	var actor models.User
	if err := h.db.First(&actor, actorID).Error; err == nil {
		h.notifier.Notify(targetID, actorID, models.NotifyFollow,
			"New follower", actor.Username+" started following you")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "User followed successfully",
	})
}

func (h *Handler) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID, err := targetIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.store.Unfollow(actorID, targetID); err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "User unfollowed successfully",
	})
}

func (h *Handler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	targetID, err := targetIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	followers, err := h.store.Followers(targetID)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"followers": followers,
		"count":     len(followers),
	})
}

func (h *Handler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	targetID, err := targetIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	following, err := h.store.Following(targetID)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"following": following,
		"count":     len(following),
	})
}
