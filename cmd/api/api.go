package api

import (
	"log"
	"net/http"

	"github.com/eakwetey/Wavely-server/service/comment"
	"github.com/eakwetey/Wavely-server/service/dashboard"
	"github.com/eakwetey/Wavely-server/service/feed"
	"github.com/eakwetey/Wavely-server/service/follow"
	"github.com/eakwetey/Wavely-server/service/notifications"
	"github.com/eakwetey/Wavely-server/service/post"
	"github.com/eakwetey/Wavely-server/service/user"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	notifier := notifications.NewNotifier(s.db)

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	followHandler := follow.NewHandler(s.db, notifier)
	followHandler.RegisterRoutes(subrouter)

	postHandler := post.NewHandler(s.db, notifier)
	postHandler.RegisterRoutes(subrouter)

	commentHandler := comment.NewHandler(s.db, notifier)
	commentHandler.RegisterRoutes(subrouter)

	feedHandler := feed.NewHandler(s.db)
	feedHandler.RegisterRoutes(subrouter)

	notificationHandler := notifications.NewHandler(s.db)
	notificationHandler.RegisterRoutes(subrouter)

	dashboardHandler := dashboard.NewHandler(s.db)
	dashboardHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, handlers.LoggingHandler(log.Writer(), cors(router)))
}
