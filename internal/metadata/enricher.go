package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// MetadataProvider defines the interface for fetching book metadata.
type MetadataProvider interface {
	SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}

// BookUpdater defines the catalog operations enrichment needs.
type BookUpdater interface {
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	UpdateBookMetadata(ctx context.Context, id uint, fields BookUpdateFields) error
	GetBooksMissingMetadata(ctx context.Context) ([]entities.Book, error)
}

// BookUpdateFields contains the fields that can be updated via enrichment.
// Nil means "leave as is".
type BookUpdateFields struct {
	Description     *string
	PageCount       *int
	Genre           *string
	PublicationDate *time.Time
	CoverURL        *string
}

// EnrichmentResult contains the result of an enrichment operation.
type EnrichmentResult struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
	Source        string         `json:"source"`
	SearchMethod  string         `json:"search_method"` // "isbn" or "title"
}

// BulkEnrichmentResult contains the summary of a bulk enrichment operation.
type BulkEnrichmentResult struct {
	TotalBooks int      `json:"total_books"`
	Enriched   int      `json:"enriched"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// Enricher fills gaps in catalog records from an external provider. Fields
// an administrator already set are never overwritten.
type Enricher struct {
	provider MetadataProvider
	books    BookUpdater
}

func NewEnricher(provider MetadataProvider, books BookUpdater) *Enricher {
	return &Enricher{provider: provider, books: books}
}

// EnrichBook fetches metadata for a book and stores whatever was missing.
// It tries the ISBN first and falls back to a title and author search.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*EnrichmentResult, error) {
	book, err := e.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var meta *BookMetadata
	searchMethod := "isbn"
	if book.ISBN != "" {
		meta, _ = e.provider.SearchByISBN(ctx, book.ISBN)
	}
	if meta == nil {
		searchMethod = "title"
		meta, err = e.provider.SearchByTitle(ctx, book.Title, book.Author)
		if err != nil {
			return nil, fmt.Errorf("metadata search failed: %w", err)
		}
	}

	updates, fieldsUpdated := buildUpdates(book, meta)
	if len(fieldsUpdated) > 0 {
		if err := e.books.UpdateBookMetadata(ctx, bookID, updates); err != nil {
			return nil, fmt.Errorf("update book metadata: %w", err)
		}
		if book, err = e.books.GetBookByID(ctx, bookID); err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	return &EnrichmentResult{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
		Source:        "openlibrary",
		SearchMethod:  searchMethod,
	}, nil
}

// EnrichAllMissing enriches every book that lacks a description, page
// count, genre or cover. Individual failures are collected, not returned.
func (e *Enricher) EnrichAllMissing(ctx context.Context) (*BulkEnrichmentResult, error) {
	books, err := e.books.GetBooksMissingMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("get books missing metadata: %w", err)
	}

	result := &BulkEnrichmentResult{TotalBooks: len(books)}
	for _, book := range books {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, "operation cancelled")
			return result, err
		}

		enriched, err := e.EnrichBook(ctx, book.ID)
		switch {
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", book.Title, err))
		case len(enriched.FieldsUpdated) > 0:
			result.Enriched++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

// buildUpdates selects the metadata fields that fill empty book fields.
func buildUpdates(book *entities.Book, meta *BookMetadata) (BookUpdateFields, []string) {
	var updates BookUpdateFields
	var fields []string

	if book.Description == "" && meta.Description != "" {
		updates.Description = &meta.Description
		fields = append(fields, "description")
	}
	if book.PageCount == 0 && meta.PageCount > 0 {
		updates.PageCount = &meta.PageCount
		fields = append(fields, "page_count")
	}
	if genre := meta.Genre(); book.Genre == "" && genre != "" {
		updates.Genre = &genre
		fields = append(fields, "genre")
	}
	if book.PublicationDate.IsZero() && meta.PublicationYear > 0 {
		date := time.Date(meta.PublicationYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		updates.PublicationDate = &date
		fields = append(fields, "publication_date")
	}
	if book.CoverURL == "" && meta.CoverURL != "" {
		updates.CoverURL = &meta.CoverURL
		fields = append(fields, "cover_url")
	}

	return updates, fields
}
