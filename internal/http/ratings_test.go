package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingsController_Scenario(t *testing.T) {
	api := setupAPI(t)
	book := api.createBook(t, "Dune", "9780000000100")
	path := bookPath(book.ID, "/rate")

	w := api.do(t, "POST", path, api.aliceToken, RateRequest{Rating: intPtr(8)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[RateResponse](t, w)
	assert.Equal(t, "created", resp.Outcome)
	assert.Equal(t, 8.0, resp.AverageRating)
	assert.Equal(t, 1, resp.TotalRatings)
	assert.Equal(t, 8, resp.Rating.Value)

	w = api.do(t, "POST", path, api.bobToken, RateRequest{Rating: intPtr(4)})
	require.Equal(t, http.StatusCreated, w.Code)
	resp = decode[RateResponse](t, w)
	assert.Equal(t, 6.0, resp.AverageRating)
	assert.Equal(t, 2, resp.TotalRatings)

	w = api.do(t, "POST", path, api.aliceToken, RateRequest{Rating: intPtr(10)})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[RateResponse](t, w)
	assert.Equal(t, "updated", resp.Outcome)
	assert.Equal(t, 7.0, resp.AverageRating)
	assert.Equal(t, 2, resp.TotalRatings)
}

func TestRatingsController_RejectsInvalidRatings(t *testing.T) {
	api := setupAPI(t)
	book := api.createBook(t, "Dune", "9780000000110")
	path := bookPath(book.ID, "/rate")

	for _, body := range []any{
		RateRequest{Rating: intPtr(0)},
		RateRequest{Rating: intPtr(11)},
		`{}`,
		`{"rating":"eight"}`,
		`not json`,
	} {
		w := api.do(t, "POST", path, api.aliceToken, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}

	stored := api.reloadBook(t, book.ID)
	assert.Zero(t, stored.TotalRatings)
	assert.Zero(t, stored.AverageRating)

	w := api.do(t, "POST", bookPath(9999, "/rate"), api.aliceToken, RateRequest{Rating: intPtr(5)})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRatingsController_Unrate(t *testing.T) {
	api := setupAPI(t)
	book := api.createBook(t, "Dune", "9780000000120")
	path := bookPath(book.ID, "/rate")

	require.Equal(t, http.StatusCreated, api.do(t, "POST", path, api.aliceToken, RateRequest{Rating: intPtr(9)}).Code)
	require.Equal(t, http.StatusCreated, api.do(t, "POST", path, api.bobToken, RateRequest{Rating: intPtr(6)}).Code)

	w := api.do(t, "DELETE", path, api.aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	agg := decode[AggregateResponse](t, w)
	assert.Equal(t, book.ID, agg.BookID)
	assert.Equal(t, 6.0, agg.AverageRating)
	assert.Equal(t, 1, agg.TotalRatings)

	assert.Equal(t, http.StatusNotFound, api.do(t, "DELETE", path, api.aliceToken, nil).Code)
}

func TestRatingsController_ListRatings(t *testing.T) {
	api := setupAPI(t)
	book := api.createBook(t, "Dune", "9780000000130")
	path := bookPath(book.ID, "/rate")

	require.Equal(t, http.StatusCreated, api.do(t, "POST", path, api.aliceToken, RateRequest{Rating: intPtr(9)}).Code)
	require.Equal(t, http.StatusCreated, api.do(t, "POST", path, api.bobToken, RateRequest{Rating: intPtr(6)}).Code)

	w := api.do(t, "GET", bookPath(book.ID, "/ratings"), api.aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Ratings []struct {
			Username string `json:"username"`
			Rating   int    `json:"rating"`
		} `json:"ratings"`
		Count int `json:"count"`
	}](t, w)
	assert.Equal(t, 2, body.Count)

	byUser := map[string]int{}
	for _, r := range body.Ratings {
		byUser[r.Username] = r.Rating
	}
	assert.Equal(t, map[string]int{"alice": 9, "bob": 6}, byUser)

	assert.Equal(t, http.StatusNotFound, api.do(t, "GET", bookPath(9999, "/ratings"), api.aliceToken, nil).Code)
}
