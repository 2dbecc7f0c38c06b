package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const testPassword = "correct-horse-battery"

type fakeEnrichQueue struct {
	mu      sync.Mutex
	books   []uint
	sweeps  int
	nextErr error
}

func (q *fakeEnrichQueue) EnqueueEnrichBook(_ context.Context, bookID uint) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.nextErr != nil {
		return "", q.nextErr
	}
	q.books = append(q.books, bookID)
	return fmt.Sprintf("task-book-%d", bookID), nil
}

func (q *fakeEnrichQueue) EnqueueEnrichMissing(context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.nextErr != nil {
		return "", q.nextErr
	}
	q.sweeps++
	return "task-sweep", nil
}

type testAPI struct {
	router *gin.Engine
	db     *database.Database
	books  *books.Repository
	queue  *fakeEnrichQueue

	admin, alice, bob                *entities.User
	adminToken, aliceToken, bobToken string
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"), database.Options{LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bookRepo := books.NewRepository(db.DB)
	authService := auth.NewService(users.NewRepository(db.DB), config.Auth{BcryptCost: 4, TokenExpiry: time.Hour})

	api := &testAPI{db: db, books: bookRepo, queue: &fakeEnrichQueue{}}
	api.admin, api.adminToken = createTestUser(t, authService, "admin", entities.UserRoleAdmin)
	api.alice, api.aliceToken = createTestUser(t, authService, "alice", entities.UserRoleMember)
	api.bob, api.bobToken = createTestUser(t, authService, "bob", entities.UserRoleMember)

	api.router = NewRouter(RouterConfig{
		Books:              bookRepo,
		Ratings:            catalog.NewRatingService(db.DB, bookRepo),
		Notes:              catalog.NewNotesService(db.DB, bookRepo),
		ReadingList:        catalog.NewReadingListService(db.DB, bookRepo),
		Accounts:           catalog.NewAccountService(db.DB),
		AuthService:        authService,
		AuthMiddleware:     auth.NewMiddleware(authService, nil),
		LoginThrottle:      auth.NewLoginThrottle(auth.ThrottleConfig{MaxAttempts: 3}),
		Database:           db,
		Version:            "test",
		EnrichQueue:        api.queue,
		MaxConflictRetries: 3,
	})
	return api
}

func createTestUser(t *testing.T, svc *auth.Service, name string, role entities.UserRole) (*entities.User, string) {
	t.Helper()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, name, name+"@example.com", testPassword, role)
	require.NoError(t, err)
	token, err := svc.IssueToken(ctx, user.ID)
	require.NoError(t, err)
	return user, token
}

func (a *testAPI) createBook(t *testing.T, title, isbn string) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:           title,
		Author:          "Author of " + title,
		ISBN:            isbn,
		Genre:           "Fiction",
		PublicationDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
		PageCount:       300,
	}
	require.NoError(t, a.books.CreateBook(context.Background(), book))
	return book
}

func (a *testAPI) reloadBook(t *testing.T, id uint) *entities.Book {
	t.Helper()
	book, err := a.books.GetBookByID(context.Background(), id)
	require.NoError(t, err)
	return book
}

// do sends a request through the router. body may be nil, a string of raw
// JSON, or a value to marshal.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func intPtr(v int) *int { return &v }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func bookPath(id uint, suffix string) string {
	return fmt.Sprintf("/api/books/%d%s", id, suffix)
}
