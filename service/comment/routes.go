package comment

import (
	"encoding/json"
	"net/http"
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
	router.HandleFunc("/posts/{id}/comments", utils.AuthMiddleware(h.CreateComment)).Methods("POST")
	router.HandleFunc("/posts/{id}/comments", h.GetComments).Methods("GET")
	router.HandleFunc("/comments/{id}/replies", h.GetReplies).Methods("GET")
	router.HandleFunc("/comments/{id}", utils.AuthMiddleware(h.UpdateComment)).Methods("PUT")
	router.HandleFunc("/comments/{id}", utils.AuthMiddleware(h.DeleteComment)).Methods("DELETE")
	router.HandleFunc("/comments/{id}/like", utils.AuthMiddleware(h.LikeComment)).Methods("POST")
	router.HandleFunc("/comments/{id}/unlike", utils.AuthMiddleware(h.UnlikeComment)).Methods("POST")
}

func idFromRequest(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	return uint(id), err
}

// CreateComment adds a comment to a post, or a reply when
// parent_comment_id is supplied.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := idFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Content         string `json:"content"`
		ParentCommentID *uint  `json:"parent_comment_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	created, err := h.store.Create(actorID, postID, body.Content, body.ParentCommentID)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	h.notifyCommented(created, actorID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) notifyCommented(comment *models.Comment, actorID uint) {
	var actor models.User
	if err := h.db.First(&actor, actorID).Error; err != nil {
		return
	}

	if comment.ParentID != nil {
		var parent models.Comment
		if err := h.db.First(&parent, *comment.ParentID).Error; err == nil {
			h.notifier.Notify(parent.UserID, actorID, models.NotifyReply,
				"New reply", actor.Username+" replied to your comment")
		}
		return
	}

	var post models.Post
	if err := h.db.First(&post, comment.PostID).Error; err == nil {
		h.notifier.Notify(post.UserID, actorID, models.NotifyComment,
			"New comment", actor.Username+" commented on your post")
	}
}

// GetComments lists a post's top-level comments, each with a preview of
// its newest replies.
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID, err := idFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	page, limit := utils.ParsePagination(r)

	comments, total, err := h.store.ListForPost(postID, page, limit)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"comments": comments,
		"total":    total,
		"page":     page,
		"pages":    utils.TotalPages(total, limit),
	})
}

func (h *Handler) GetReplies(w http.ResponseWriter, r *http.Request) {
	commentID, err := idFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	page, limit := utils.ParsePagination(r)

	replies, total, err := h.store.Replies(commentID, page, limit)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"replies": replies,
		"total":   total,
		"page":    page,
		"pages":   utils.TotalPages(total, limit),
	})
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commentID, err := idFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
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

	updated, err := h.store.Update(actorID, commentID, body.Content)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commentID, err := idFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(actorID, commentID); err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Comment deleted successfully",
	})
}

func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commentID, err := idFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := h.likes.Like(actorID, models.TargetComment, commentID); err != nil {
		apperr.Write(w, err)
		return
	}

	var comment models.Comment
	var actor models.User
	if err := h.db.First(&comment, commentID).Error; err == nil {
		if err := h.db.First(&actor, actorID).Error; err == nil {
			h.notifier.Notify(comment.UserID, actorID, models.NotifyCommentLike,
				"New like", actor.Username+" liked your comment")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Comment liked successfully",
	})
}

func (h *Handler) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commentID, err := idFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := h.likes.Unlike(actorID, models.TargetComment, commentID); err != nil {
		apperr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Comment unliked successfully",
	})
}
