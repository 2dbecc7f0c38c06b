package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(cfg.Logger))
	router.Use(Recovery())
	router.Use(auth.SecurityHeadersMiddleware())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	tokens := NewTokenController(cfg.AuthService, cfg.LoginThrottle, cfg.AuthService.TokenExpiry())
	router.POST("/api/auth/token", tokens.IssueToken)

	api := router.Group("/api", cfg.AuthMiddleware.RequireAuth())
	admin := cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin)

	api.DELETE("/auth/token", tokens.RevokeToken)

	booksController := NewBooksController(cfg.Books, cfg.Ratings, cfg.ReadingList)
	api.GET("/books", booksController.ListBooks)
	api.GET("/books/:id", booksController.GetBook)
	api.POST("/books", admin, booksController.CreateBook)
	api.PUT("/books/:id", admin, booksController.UpdateBook)
	api.DELETE("/books/:id", admin, booksController.DeleteBook)

	ratings := NewRatingsController(cfg.Ratings, cfg.MaxConflictRetries)
	api.POST("/books/:id/rate", ratings.Rate)
	api.DELETE("/books/:id/rate", ratings.Unrate)
	api.GET("/books/:id/ratings", ratings.ListRatings)

	notes := NewNotesController(cfg.Notes)
	api.GET("/books/:id/notes", notes.ListNotes)
	api.POST("/books/:id/notes", notes.CreateNote)
	api.PUT("/notes/:id", notes.UpdateNote)
	api.DELETE("/notes/:id", notes.DeleteNote)

	readingList := NewReadingListController(cfg.ReadingList)
	api.GET("/reading-list", readingList.List)
	api.POST("/reading-list/:bookId", readingList.Add)
	api.DELETE("/reading-list/:bookId", readingList.Remove)

	users := NewUsersController(cfg.Accounts)
	api.DELETE("/users/:id", admin, users.DeleteUser)

	if cfg.EnrichQueue != nil {
		metadata := NewMetadataController(cfg.Books, cfg.EnrichQueue)
		api.POST("/books/:id/enrich", admin, metadata.EnrichBook)
		api.POST("/metadata/sweep", admin, metadata.EnrichMissing)
	}

	return router
}
