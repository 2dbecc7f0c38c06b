package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type testEnv struct {
	db       *gorm.DB
	books    *books.Repository
	ratings  *RatingService
	notes    *NotesService
	list     *ReadingListService
	accounts *AccountService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"), database.Options{LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := conn.DB
	repo := books.NewRepository(db)
	return &testEnv{
		db:       db,
		books:    repo,
		ratings:  NewRatingService(db, repo),
		notes:    NewNotesService(db, repo),
		list:     NewReadingListService(db, repo),
		accounts: NewAccountService(db),
	}
}

var isbnCounter int

func (e *testEnv) createBook(t *testing.T, title string) *entities.Book {
	t.Helper()
	isbnCounter++
	book := &entities.Book{
		Title:           title,
		Author:          "Test Author",
		ISBN:            fmt.Sprintf("978%010d", isbnCounter),
		PublicationDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.books.CreateBook(context.Background(), book))
	return book
}

func (e *testEnv) createUser(t *testing.T, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     entities.UserRoleMember,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) reloadBook(t *testing.T, id uint) *entities.Book {
	t.Helper()
	book, err := e.books.GetBookByID(context.Background(), id)
	require.NoError(t, err)
	return book
}
