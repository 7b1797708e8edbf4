package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/eakwetey/Wavely-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type Stats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalPosts    int64 `json:"total_posts"`
	TotalComments int64 `json:"total_comments"`
	TotalLikes    int64 `json:"total_likes"`
	TotalFollows  int64 `json:"total_follows"`
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	dashboardRouter := router.PathPrefix("/dashboard").Subrouter()
	dashboardRouter.HandleFunc("/stats", utils.AuthMiddleware(h.GetStats)).Methods("GET")
}

// GetStats returns aggregate counts. Admin only.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var actor models.User
	if err := h.db.First(&actor, userID).Error; err != nil || actor.Role != models.RoleAdmin {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return
	}

	var stats Stats
	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.Post{}).Count(&stats.TotalPosts)
	h.db.Model(&models.Comment{}).Count(&stats.TotalComments)
	h.db.Model(&models.Like{}).Count(&stats.TotalLikes)
	h.db.Model(&models.Follow{}).Count(&stats.TotalFollows)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
