package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Catalog
	Books       BookStore
	Ratings     *catalog.RatingService
	Notes       *catalog.NotesService
	ReadingList *catalog.ReadingListService
	Accounts    *catalog.AccountService

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	LoginThrottle  *auth.LoginThrottle

	// Health
	Database Pinger
	Version  string

	// Task queue for metadata enrichment. Nil disables the enrich endpoints.
	EnrichQueue EnrichQueue

	// MaxConflictRetries bounds retries of a rating write that raced another.
	MaxConflictRetries int

	Logger *zap.Logger
}
