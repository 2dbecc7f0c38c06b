package importers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const dateLayout = "2006-01-02"

// CatalogRecord is one book in a catalog file.
type CatalogRecord struct {
	Title           string `json:"title" validate:"required,max=255"`
	Author          string `json:"author" validate:"required,max=255"`
	PublicationDate string `json:"publication_date" validate:"omitempty,datetime=2006-01-02"`
	ISBN            string `json:"isbn" validate:"required,min=10,max=13,alphanum"`
	Genre           string `json:"genre" validate:"max=100"`
	Description     string `json:"description"`
	PageCount       int    `json:"page_count" validate:"gte=0"`
	CoverURL        string `json:"cover_url" validate:"omitempty,url,max=2048"`
}

func (r CatalogRecord) toEntity() *entities.Book {
	book := &entities.Book{
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		Genre:       r.Genre,
		Description: r.Description,
		PageCount:   r.PageCount,
		CoverURL:    r.CoverURL,
	}
	if r.PublicationDate != "" {
		book.PublicationDate, _ = time.Parse(dateLayout, r.PublicationDate)
	}
	return book
}

// normalize trims text fields and strips the separators commonly found in
// printed ISBNs.
func (r *CatalogRecord) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Genre = strings.TrimSpace(r.Genre)
	r.PublicationDate = strings.TrimSpace(r.PublicationDate)
	r.ISBN = strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(r.ISBN))
}

// RecordError describes why one record was not imported.
type RecordError struct {
	Index   int    `json:"index"`
	ISBN    string `json:"isbn,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

func (e RecordError) String() string {
	return fmt.Sprintf("record %d (%q, isbn %s): %s", e.Index, e.Title, e.ISBN, e.Message)
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Errors  []RecordError `json:"errors,omitempty"`
}

// Total is the number of records processed.
func (r ImportResult) Total() int {
	return r.Created + r.Skipped + r.Failed
}

// CatalogStore is where imported books go. books.Repository implements it.
type CatalogStore interface {
	FindByISBN(ctx context.Context, isbn string) (*entities.Book, error)
	CreateBook(ctx context.Context, book *entities.Book) error
}

// CatalogImporter validates catalog records and stores the new ones.
type CatalogImporter struct {
	store    CatalogStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCatalogImporter(store CatalogStore, logger *zap.Logger) *CatalogImporter {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &CatalogImporter{store: store, validate: v, logger: logger}
}

// ReadCatalog decodes a catalog file. Unknown fields are rejected so typos
// in column names surface instead of silently dropping data.
func ReadCatalog(r io.Reader) ([]CatalogRecord, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var records []CatalogRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return records, nil
}

// Import stores every valid record whose ISBN is not yet in the catalog.
// With dryRun set nothing is written, but the result reports what would
// have happened. Only context cancellation aborts the run.
func (i *CatalogImporter) Import(ctx context.Context, records []CatalogRecord, dryRun bool) (*ImportResult, error) {
	result := &ImportResult{}
	seen := make(map[string]bool, len(records))

	for idx, record := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record.normalize()
		fail := func(msg string) {
			result.Failed++
			result.Errors = append(result.Errors, RecordError{Index: idx, ISBN: record.ISBN, Title: record.Title, Message: msg})
		}

		if err := i.validateRecord(record); err != nil {
			fail(err.Error())
			continue
		}

		if seen[record.ISBN] {
			result.Skipped++
			continue
		}
		seen[record.ISBN] = true

		_, err := i.store.FindByISBN(ctx, record.ISBN)
		switch {
		case err == nil:
			result.Skipped++
			continue
		case !errors.Is(err, books.ErrBookNotFound):
			fail(err.Error())
			continue
		}

		if dryRun {
			result.Created++
			continue
		}

		if err := i.store.CreateBook(ctx, record.toEntity()); err != nil {
			if errors.Is(err, books.ErrDuplicateISBN) {
				result.Skipped++
				continue
			}
			fail(err.Error())
			continue
		}
		result.Created++
	}

	i.logger.Info("catalog import finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (i *CatalogImporter) validateRecord(record CatalogRecord) error {
	err := i.validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+" "+friendlyMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "alphanum":
		return "must contain only digits and letters"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "url":
		return "must be a valid URL"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}
