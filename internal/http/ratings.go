package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type RatingsController struct {
	ratings    *catalog.RatingService
	maxRetries int
}

// NewRatingsController creates a controller that retries a write up to
// maxRetries times when it loses a race with a concurrent rating.
func NewRatingsController(ratings *catalog.RatingService, maxRetries int) *RatingsController {
	return &RatingsController{
		ratings:    ratings,
		maxRetries: maxRetries,
	}
}

type RateRequest struct {
	// Range is checked by the rating service so the error reads the same
	// everywhere.
	Rating *int `json:"rating" binding:"required"`
}

// AggregateResponse reports a book's rating aggregate after a change.
type AggregateResponse struct {
	BookID        uint    `json:"book_id"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

type RateResponse struct {
	Outcome string          `json:"outcome"`
	Rating  entities.Rating `json:"rating"`
	AggregateResponse
}

func aggregateOf(book *entities.Book) AggregateResponse {
	return AggregateResponse{
		BookID:        book.ID,
		AverageRating: book.AverageRating,
		TotalRatings:  book.TotalRatings,
	}
}

// Rate handles POST /api/books/:id/rate. Responds 201 for a first rating and
// 200 when the caller's previous rating was replaced.
func (rc *RatingsController) Rate(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	userID := auth.GetUserID(c)
	var result *catalog.RatingResult
	err := catalog.RetryOnConflict(c.Request.Context(), rc.maxRetries, func(ctx context.Context) error {
		var err error
		result, err = rc.ratings.Rate(ctx, bookID, userID, *req.Rating)
		return err
	})
	if err != nil {
		respondDomainError(c, err, "rate book")
		return
	}

	status := http.StatusOK
	if result.Outcome == catalog.RatingCreated {
		status = http.StatusCreated
	}
	c.JSON(status, RateResponse{
		Outcome:           result.Outcome.String(),
		Rating:            *result.Rating,
		AggregateResponse: aggregateOf(result.Book),
	})
}

// Unrate handles DELETE /api/books/:id/rate
func (rc *RatingsController) Unrate(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := auth.GetUserID(c)
	var book *entities.Book
	err := catalog.RetryOnConflict(c.Request.Context(), rc.maxRetries, func(ctx context.Context) error {
		var err error
		book, err = rc.ratings.Unrate(ctx, bookID, userID)
		return err
	})
	if err != nil {
		respondDomainError(c, err, "remove rating")
		return
	}

	c.JSON(http.StatusOK, aggregateOf(book))
}

// ListRatings handles GET /api/books/:id/ratings
func (rc *RatingsController) ListRatings(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ratings, err := rc.ratings.ListRatings(c.Request.Context(), bookID)
	if err != nil {
		respondDomainError(c, err, "list ratings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings, "count": len(ratings)})
}
