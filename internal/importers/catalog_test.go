package importers

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const sampleCatalog = `[
  {"title": "Dune", "author": "Frank Herbert", "publication_date": "1965-08-01", "isbn": "978-0-441-01359-3", "genre": "Science Fiction", "page_count": 412},
  {"title": "Emma", "author": "Jane Austen", "publication_date": "1815-12-23", "isbn": "9780141439587", "genre": "Classics"},
  {"title": "", "author": "Nobody", "isbn": "9780000000001"},
  {"title": "Dune again", "author": "Frank Herbert", "isbn": "9780441013593"},
  {"title": "Bad date", "author": "Someone", "isbn": "9780000000002", "publication_date": "23/12/1815"}
]`

func setupRepository(t *testing.T) *books.Repository {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "import.db"), database.Options{LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return books.NewRepository(db.DB)
}

func TestReadCatalog(t *testing.T) {
	records, err := ReadCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "Dune", records[0].Title)
	assert.Equal(t, 412, records[0].PageCount)

	_, err = ReadCatalog(strings.NewReader(`[{"title": "Dune", "pages": 412}]`))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = ReadCatalog(strings.NewReader(`{"title": "Dune"}`))
	assert.Error(t, err)
}

func TestCatalogImporter_Import(t *testing.T) {
	repo := setupRepository(t)
	importer := NewCatalogImporter(repo, nil)
	ctx := context.Background()

	records, err := ReadCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	result, err := importer.Import(ctx, records, false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped, "duplicate ISBN within the file")
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 5, result.Total())

	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Index)
	assert.Contains(t, result.Errors[0].Message, "title is required")
	assert.Equal(t, 4, result.Errors[1].Index)
	assert.Contains(t, result.Errors[1].Message, "publication_date must be a date")

	dune, err := repo.FindByISBN(ctx, "9780441013593")
	require.NoError(t, err)
	assert.Equal(t, "Dune", dune.Title)
	assert.Equal(t, 1965, dune.PublicationDate.Year())
	assert.Zero(t, dune.TotalRatings)

	// A second run finds everything already present.
	again, err := importer.Import(ctx, records, false)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 3, again.Skipped)
	assert.Equal(t, 2, again.Failed)
}

func TestCatalogImporter_DryRun(t *testing.T) {
	repo := setupRepository(t)
	importer := NewCatalogImporter(repo, nil)
	ctx := context.Background()

	records, err := ReadCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	result, err := importer.Import(ctx, records, true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	count, err := repo.CountBooks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCatalogImporter_CancelledContext(t *testing.T) {
	importer := NewCatalogImporter(setupRepository(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := importer.Import(ctx, []CatalogRecord{{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"}}, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Total())
}

type failingStore struct{}

func (failingStore) FindByISBN(context.Context, string) (*entities.Book, error) {
	return nil, errors.New("database is locked")
}

func (failingStore) CreateBook(context.Context, *entities.Book) error {
	return nil
}

func TestCatalogImporter_StoreErrorsCountAsFailed(t *testing.T) {
	importer := NewCatalogImporter(failingStore{}, nil)

	result, err := importer.Import(context.Background(), []CatalogRecord{{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"}}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "database is locked", result.Errors[0].Message)
}

func TestCatalogRecord_Normalize(t *testing.T) {
	record := CatalogRecord{Title: "  Dune ", ISBN: "0-441-01359-x "}
	record.normalize()
	assert.Equal(t, "Dune", record.Title)
	assert.Equal(t, "044101359X", record.ISBN)
}
