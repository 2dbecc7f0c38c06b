package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func validBookRequest() BookRequest {
	return BookRequest{
		Title:           "Dune",
		Author:          "Frank Herbert",
		PublicationDate: "1965-08-01",
		ISBN:            "9780441013593",
		Genre:           "Science Fiction",
		Description:     "Desert planet.",
		PageCount:       412,
	}
}

type bookPage struct {
	Data    []entities.Book `json:"data"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	HasMore bool            `json:"has_more"`
}

func TestBooksController_Create(t *testing.T) {
	api := setupAPI(t)

	t.Run("admin creates a book", func(t *testing.T) {
		w := api.do(t, "POST", "/api/books", api.adminToken, validBookRequest())
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		book := decode[entities.Book](t, w)
		assert.NotZero(t, book.ID)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, 1965, book.PublicationDate.Year())
		assert.Zero(t, book.TotalRatings)
	})

	t.Run("duplicate ISBN conflicts", func(t *testing.T) {
		w := api.do(t, "POST", "/api/books", api.adminToken, validBookRequest())
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("members may not create books", func(t *testing.T) {
		req := validBookRequest()
		req.ISBN = "9780000000001"
		w := api.do(t, "POST", "/api/books", api.aliceToken, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("validation errors", func(t *testing.T) {
		bodies := map[string]func(*BookRequest){
			"missing title": func(r *BookRequest) { r.Title = "" },
			"bad date":      func(r *BookRequest) { r.PublicationDate = "01/08/1965" },
			"long isbn":     func(r *BookRequest) { r.ISBN = "97804410135930000" },
			"negative page": func(r *BookRequest) { r.PageCount = -1 },
			"bad cover url": func(r *BookRequest) { r.CoverURL = "not a url" },
		}
		for name, mutate := range bodies {
			t.Run(name, func(t *testing.T) {
				req := validBookRequest()
				req.ISBN = "9780000000002"
				mutate(&req)
				w := api.do(t, "POST", "/api/books", api.adminToken, req)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})
}

func TestBooksController_List(t *testing.T) {
	api := setupAPI(t)
	api.createBook(t, "Dune", "9780000000010")
	api.createBook(t, "Emma", "9780000000011")
	api.createBook(t, "Dracula", "9780000000012")

	w := api.do(t, "GET", "/api/books?q=d&sort=title&order=desc&limit=1", api.aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[bookPage](t, w)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Limit)
	assert.True(t, page.HasMore)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Dune", page.Data[0].Title)

	page = decode[bookPage](t, api.do(t, "GET", "/api/books?genre=fiction", api.aliceToken, nil))
	assert.Equal(t, int64(3), page.Total)
	assert.False(t, page.HasMore)

	assert.Equal(t, http.StatusBadRequest, api.do(t, "GET", "/api/books?sort=isbn", api.aliceToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, "GET", "/api/books?order=sideways", api.aliceToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, "GET", "/api/books?limit=-3", api.aliceToken, nil).Code)
}

func TestBooksController_GetDetail(t *testing.T) {
	api := setupAPI(t)
	book := api.createBook(t, "Dune", "9780000000020")

	w := api.do(t, "GET", bookPath(book.ID, ""), api.aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_rating":null`)
	assert.Contains(t, w.Body.String(), `"in_reading_list":false`)

	require.Equal(t, http.StatusCreated, api.do(t, "POST", bookPath(book.ID, "/rate"), api.aliceToken, RateRequest{Rating: intPtr(9)}).Code)
	require.Equal(t, http.StatusCreated, api.do(t, "POST", "/api/reading-list/"+itoa(book.ID), api.aliceToken, nil).Code)

	detail := decode[BookDetail](t, api.do(t, "GET", bookPath(book.ID, ""), api.aliceToken, nil))
	require.NotNil(t, detail.UserRating)
	assert.Equal(t, 9, *detail.UserRating)
	assert.True(t, detail.InReadingList)
	assert.Equal(t, 9.0, detail.AverageRating)

	// Another user's view carries only their own rating.
	detail = decode[BookDetail](t, api.do(t, "GET", bookPath(book.ID, ""), api.bobToken, nil))
	assert.Nil(t, detail.UserRating)
	assert.False(t, detail.InReadingList)
	assert.Equal(t, 1, detail.TotalRatings)

	assert.Equal(t, http.StatusNotFound, api.do(t, "GET", bookPath(9999, ""), api.aliceToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, "GET", "/api/books/abc", api.aliceToken, nil).Code)
}

func TestBooksController_UpdateKeepsAggregate(t *testing.T) {
	api := setupAPI(t)
	book := api.createBook(t, "Dune", "9780000000030")
	require.Equal(t, http.StatusCreated, api.do(t, "POST", bookPath(book.ID, "/rate"), api.aliceToken, RateRequest{Rating: intPtr(7)}).Code)

	req := validBookRequest()
	req.ISBN = book.ISBN
	req.Title = "Dune (Deluxe Edition)"

	w := api.do(t, "PUT", bookPath(book.ID, ""), api.adminToken, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored := api.reloadBook(t, book.ID)
	assert.Equal(t, "Dune (Deluxe Edition)", stored.Title)
	assert.Equal(t, 7.0, stored.AverageRating)
	assert.Equal(t, 1, stored.TotalRatings)

	assert.Equal(t, http.StatusNotFound, api.do(t, "PUT", bookPath(9999, ""), api.adminToken, req).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, "PUT", bookPath(book.ID, ""), api.bobToken, req).Code)
}

func TestBooksController_Delete(t *testing.T) {
	api := setupAPI(t)
	book := api.createBook(t, "Dune", "9780000000040")

	assert.Equal(t, http.StatusForbidden, api.do(t, "DELETE", bookPath(book.ID, ""), api.aliceToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(t, "DELETE", bookPath(book.ID, ""), api.adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, "DELETE", bookPath(book.ID, ""), api.adminToken, nil).Code)
}
