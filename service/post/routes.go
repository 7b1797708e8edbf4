package post

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/eakwetey/Wavely-server/cmd/apperr"
	"github.com/eakwetey/Wavely-server/cmd/models"
	"github.com/eakwetey/Wavely-server/cmd/utils"
	"github.com/eakwetey/Wavely-server/service/likes"
	"github.com/eakwetey/Wavely-server/service/notifications"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	store    *Store
	likes    *likes.Store
	notifier *notifications.Notifier
}

func NewHandler(db *gorm.DB, notifier *notifications.Notifier) *Handler {
	return &Handler{
		db:       db,
		store:    NewStore(db),
		likes:    likes.NewStore(db),
		notifier: notifier,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts", h.GetPosts).Methods("GET")
	router.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.UpdatePost)).Methods("PUT")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.DeletePost)).Methods("DELETE")
	router.HandleFunc("/posts/{id}/like", utils.AuthMiddleware(h.LikePost)).Methods("POST")
	router.HandleFunc("/posts/{id}/unlike", utils.AuthMiddleware(h.UnlikePost)).Methods("POST")

	router.HandleFunc("/uploads", utils.AuthMiddleware(h.UploadMedia)).Methods("POST")
	router.HandleFunc("/images/{filename}", h.ServeImage).Methods("GET")
}

func postIDFromRequest(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	return uint(id), err
}

// CreatePost creates a new post with optional media.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Content   string `json:"content"`
		MediaType string `json:"media_type,omitempty"`
		MediaURL  string `json:"media_url,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	created, err := h.store.Create(userID, body.Content, body.MediaType, body.MediaURL)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetPosts retrieves all posts newest-first with pagination.
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	page, limit := utils.ParsePagination(r)

	posts, total, err := h.store.List(page, limit)
	if err != nil {
		http.Error(w, "Error retrieving posts", http.StatusInternalServerError)
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

// GetPost retrieves a specific post with all of its top-level comments.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	view, err := h.store.Get(postID)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	updated, err := h.store.Update(userID, postID, body.Content)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeletePost deletes a post and cascades its comments, replies and likes.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(userID, postID); err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post deleted successfully",
	})
}

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.likes.Like(userID, models.TargetPost, postID); err != nil {
		apperr.Write(w, err)
		return
	}

	var post models.Post
	var actor models.User
	if err := h.db.First(&post, postID).Error; err == nil {
		if err := h.db.First(&actor, userID).Error; err == nil {
			h.notifier.Notify(post.UserID, userID, models.NotifyPostLike,
				"New like", actor.Username+" liked your post")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post liked successfully",
	})
}

func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := postIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.likes.Unlike(userID, models.TargetPost, postID); err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post unliked successfully",
	})
}

// UploadMedia saves an uploaded image and returns the URL to reference
// from a post body.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if _, err := utils.UserIDFromContext(r.Context()); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imageURL, err := utils.SaveImage(file, header)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error saving image: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"media_type": "image",
		"media_url":  imageURL,
	})
}

func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := filepath.Base(vars["filename"])

	imagePath := filepath.Join(utils.ImagePath, filename)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, imagePath)
}
