package feed

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	store *Store
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{store: NewStore(db)}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/feed", utils.AuthMiddleware(h.GetFeed)).Methods("GET")
	router.HandleFunc("/users/{id}/posts", h.GetUserPosts).Methods("GET")
}

// GetFeed returns the authenticated user's personalized feed: posts by
// everyone they follow plus their own, newest-first.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page, limit := utils.ParsePagination(r)

	posts, total, err := h.store.Feed(userID, page, limit)
	if err != nil {
		http.Error(w, "Error assembling feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"posts": posts,
		"total": total,
		"page":  page,
		"pages": utils.TotalPages(total, limit),
	})
}

// GetUserPosts returns one user's posts in the same denormalized shape,
// used for profile views.
func (h *Handler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	page, limit := utils.ParsePagination(r)

	posts, total, err := h.store.UserPosts(uint(userID), page, limit)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"posts": posts,
		"total": total,
		"page":  page,
		"pages": utils.TotalPages(total, limit),
	})
}
