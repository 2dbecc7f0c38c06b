// Package books provides database operations for the book catalog.
//
// This package implements the BookCatalog interface defined in
// internal/catalog and the BookUpdater interface defined in internal/metadata.
//
// # Interface Implementation
//
//	var _ catalog.BookCatalog = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(ctx, 123)
//
// Aggregate rating columns are never written here; they belong to
// catalog.RatingService.
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")
)

// Sortable columns accepted by ListBooks.
var sortColumns = map[string]string{
	"title":            "title",
	"author":           "author",
	"publication_date": "publication_date",
	"average_rating":   "average_rating",
	"page_count":       "page_count",
	"created_at":       "created_at",
}

// BookFilter narrows and orders a catalog listing.
type BookFilter struct {
	Title  string // Case-insensitive substring match
	Author string // Case-insensitive substring match
	Genre  string // Case-insensitive substring match
	Query  string // Matches title or author
	Sort   string // One of the keys in sortColumns, default "title"
	Order  string // "asc" (default) or "desc"
	Limit  int
	Offset int
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book by its ID. Returns ErrBookNotFound, which
// wraps gorm.ErrRecordNotFound, when the book does not exist.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrBookNotFound, err)
		}
		return nil, err
	}
	return &book, nil
}

// FindByISBN retrieves a book by its ISBN.
func (r *Repository) FindByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrBookNotFound, err)
		}
		return nil, err
	}
	return &book, nil
}

// ListBooks returns one page of books matching the filter and the total
// number of matches.
func (r *Repository) ListBooks(ctx context.Context, filter BookFilter) ([]entities.Book, int64, error) {
	var books []entities.Book
	var total int64

	query := applyFilter(r.db.WithContext(ctx).Model(&entities.Book{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyFilter(r.db.WithContext(ctx), filter).Order(orderClause(filter.Sort, filter.Order))
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	err := query.Find(&books).Error
	return books, total, err
}

// CountBooks returns the number of books in the catalog.
func (r *Repository) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// CreateBook inserts a new catalog record. Aggregate fields always start at zero.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	book.AverageRating = 0
	book.TotalRatings = 0
	book.RatingSum = 0
	book.RatingVersion = 0
	book.ISBN = strings.TrimSpace(book.ISBN)

	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateISBN
		}
		return err
	}
	return nil
}

// UpdateBook replaces the descriptive fields of a book and returns the
// refreshed record.
func (r *Repository) UpdateBook(ctx context.Context, id uint, book *entities.Book) (*entities.Book, error) {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Updates(map[string]any{
		"title":            book.Title,
		"author":           book.Author,
		"publication_date": book.PublicationDate,
		"isbn":             strings.TrimSpace(book.ISBN),
		"genre":            book.Genre,
		"description":      book.Description,
		"page_count":       book.PageCount,
		"cover_url":        book.CoverURL,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateISBN
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %w", ErrBookNotFound, gorm.ErrRecordNotFound)
	}
	return r.GetBookByID(ctx, id)
}

// DeleteBook removes a book together with its ratings, notes and reading
// list entries in a single transaction.
func (r *Repository) DeleteBook(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.Rating{}).Error; err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.Note{}).Error; err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.ReadingListEntry{}).Error; err != nil {
			return fmt.Errorf("delete reading list entries: %w", err)
		}

		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %w", ErrBookNotFound, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// UpdateBookMetadata applies enrichment results. Only non-nil fields are written.
func (r *Repository) UpdateBookMetadata(ctx context.Context, id uint, fields metadata.BookUpdateFields) error {
	updates := map[string]any{}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.PageCount != nil {
		updates["page_count"] = *fields.PageCount
	}
	if fields.Genre != nil {
		updates["genre"] = *fields.Genre
	}
	if fields.PublicationDate != nil {
		updates["publication_date"] = *fields.PublicationDate
	}
	if fields.CoverURL != nil {
		updates["cover_url"] = *fields.CoverURL
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %w", ErrBookNotFound, gorm.ErrRecordNotFound)
	}
	return nil
}

// GetBooksMissingMetadata returns books lacking a description, page count,
// genre or cover.
func (r *Repository) GetBooksMissingMetadata(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).
		Where("description = '' OR description IS NULL OR page_count = 0 OR genre = '' OR genre IS NULL OR cover_url = '' OR cover_url IS NULL").
		Order("id ASC").
		Find(&books).Error
	return books, err
}

func applyFilter(query *gorm.DB, filter BookFilter) *gorm.DB {
	if filter.Title != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+filter.Title+"%")
	}
	if filter.Author != "" {
		query = query.Where("LOWER(author) LIKE LOWER(?)", "%"+filter.Author+"%")
	}
	if filter.Genre != "" {
		query = query.Where("LOWER(genre) LIKE LOWER(?)", "%"+filter.Genre+"%")
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern)
	}
	return query
}

// orderClause builds an ORDER BY from user input, falling back to title
// ascending for unknown columns. Ties are broken by id for stable paging.
func orderClause(sort, order string) string {
	column, ok := sortColumns[sort]
	if !ok {
		column = "title"
	}
	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", column, direction, direction)
}

// IsValidSort reports whether sort names a sortable column.
func IsValidSort(sort string) bool {
	_, ok := sortColumns[sort]
	return ok
}
