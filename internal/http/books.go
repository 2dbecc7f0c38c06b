package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const dateLayout = "2006-01-02"

// BookStore is the catalog persistence used by the books endpoints.
// books.Repository implements it.
type BookStore interface {
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	ListBooks(ctx context.Context, filter books.BookFilter) ([]entities.Book, int64, error)
	CreateBook(ctx context.Context, book *entities.Book) error
	UpdateBook(ctx context.Context, id uint, book *entities.Book) (*entities.Book, error)
	DeleteBook(ctx context.Context, id uint) error
}

type BooksController struct {
	books       BookStore
	ratings     *catalog.RatingService
	readingList *catalog.ReadingListService
}

func NewBooksController(store BookStore, ratings *catalog.RatingService, readingList *catalog.ReadingListService) *BooksController {
	return &BooksController{
		books:       store,
		ratings:     ratings,
		readingList: readingList,
	}
}

// BookRequest is the body accepted when creating or updating a book.
// Aggregate rating fields are not part of it.
type BookRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	Author          string `json:"author" binding:"required,max=255"`
	PublicationDate string `json:"publication_date" binding:"omitempty,datetime=2006-01-02"`
	ISBN            string `json:"isbn" binding:"required,max=13"`
	Genre           string `json:"genre" binding:"max=100"`
	Description     string `json:"description"`
	PageCount       int    `json:"page_count" binding:"min=0"`
	CoverURL        string `json:"cover_url" binding:"omitempty,url,max=2048"`
}

func (r BookRequest) toEntity() *entities.Book {
	book := &entities.Book{
		Title:       strings.TrimSpace(r.Title),
		Author:      strings.TrimSpace(r.Author),
		ISBN:        strings.TrimSpace(r.ISBN),
		Genre:       strings.TrimSpace(r.Genre),
		Description: r.Description,
		PageCount:   r.PageCount,
		CoverURL:    r.CoverURL,
	}
	if r.PublicationDate != "" {
		// Already validated by the datetime binding.
		book.PublicationDate, _ = time.Parse(dateLayout, r.PublicationDate)
	}
	return book
}

// BookDetail is a book as seen by the requesting user.
type BookDetail struct {
	entities.Book
	UserRating    *int `json:"user_rating"`
	InReadingList bool `json:"in_reading_list"`
}

// ListBooks handles GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	sort := c.DefaultQuery("sort", "title")
	if !books.IsValidSort(sort) {
		respondBadRequest(c, "invalid sort field: "+sort)
		return
	}
	order := strings.ToLower(c.DefaultQuery("order", "asc"))
	if order != "asc" && order != "desc" {
		respondBadRequest(c, "order must be asc or desc")
		return
	}

	filter := books.BookFilter{
		Title:  c.Query("title"),
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
		Query:  c.Query("q"),
		Sort:   sort,
		Order:  order,
		Limit:  limit,
		Offset: offset,
	}

	list, total, err := bc.books.ListBooks(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    list,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(list)) < total,
	})
}

// GetBook handles GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	book, err := bc.books.GetBookByID(ctx, id)
	if err != nil {
		bc.respondBookError(c, err, "get book")
		return
	}

	detail := BookDetail{Book: *book}
	userID := auth.GetUserID(c)

	rating, err := bc.ratings.GetUserRating(ctx, id, userID)
	switch {
	case err == nil:
		detail.UserRating = &rating.Value
	case !errors.Is(err, catalog.ErrNotFound):
		respondInternalError(c, err, "get user rating")
		return
	}

	detail.InReadingList, err = bc.readingList.Contains(ctx, userID, id)
	if err != nil {
		respondInternalError(c, err, "check reading list")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CreateBook handles POST /api/books (admin only)
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	book := req.toEntity()
	if err := bc.books.CreateBook(c.Request.Context(), book); err != nil {
		bc.respondBookError(c, err, "create book")
		return
	}

	c.JSON(http.StatusCreated, book)
}

// UpdateBook handles PUT /api/books/:id (admin only). The rating aggregate
// is never touched.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	book, err := bc.books.UpdateBook(c.Request.Context(), id, req.toEntity())
	if err != nil {
		bc.respondBookError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/:id (admin only)
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.books.DeleteBook(c.Request.Context(), id); err != nil {
		bc.respondBookError(c, err, "delete book")
		return
	}

	c.Status(http.StatusNoContent)
}

func (bc *BooksController) respondBookError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, books.ErrBookNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, books.ErrDuplicateISBN):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "duplicate_isbn"})
	default:
		respondInternalError(c, err, op)
	}
}
