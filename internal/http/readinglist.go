package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type ReadingListController struct {
	list *catalog.ReadingListService
}

func NewReadingListController(list *catalog.ReadingListService) *ReadingListController {
	return &ReadingListController{list: list}
}

type ReadingListAddResponse struct {
	Outcome string                    `json:"outcome"`
	Entry   entities.ReadingListEntry `json:"entry"`
}

// List handles GET /api/reading-list
func (rc *ReadingListController) List(c *gin.Context) {
	entries, err := rc.list.List(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondDomainError(c, err, "list reading list")
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// Add handles POST /api/reading-list/:bookId. Responds 201 when the book was
// added and 200 when it was already on the list.
func (rc *ReadingListController) Add(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	outcome, entry, err := rc.list.Add(c.Request.Context(), auth.GetUserID(c), bookID)
	if err != nil {
		respondDomainError(c, err, "add to reading list")
		return
	}

	status := http.StatusOK
	if outcome == catalog.Added {
		status = http.StatusCreated
	}
	c.JSON(status, ReadingListAddResponse{Outcome: outcome.String(), Entry: *entry})
}

// Remove handles DELETE /api/reading-list/:bookId
func (rc *ReadingListController) Remove(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := rc.list.Remove(c.Request.Context(), auth.GetUserID(c), bookID); err != nil {
		respondDomainError(c, err, "remove from reading list")
		return
	}

	c.Status(http.StatusNoContent)
}
