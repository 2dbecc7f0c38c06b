package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// EnrichQueue schedules background metadata enrichment. tasks.Client
// implements it.
type EnrichQueue interface {
	EnqueueEnrichBook(ctx context.Context, bookID uint) (string, error)
	EnqueueEnrichMissing(ctx context.Context) (string, error)
}

// BookLookup is the read side of the catalog the metadata endpoints need.
type BookLookup interface {
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
}

// MetadataController queues metadata enrichment jobs.
type MetadataController struct {
	books BookLookup
	queue EnrichQueue
}

func NewMetadataController(lookup BookLookup, queue EnrichQueue) *MetadataController {
	return &MetadataController{books: lookup, queue: queue}
}

type EnqueueResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

// EnrichBook handles POST /api/books/:id/enrich (admin only)
func (mc *MetadataController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := mc.books.GetBookByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	taskID, err := mc.queue.EnqueueEnrichBook(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "enqueue enrich_book")
		return
	}

	c.JSON(http.StatusAccepted, EnqueueResponse{Message: "enrichment queued", TaskID: taskID})
}

// EnrichMissing handles POST /api/metadata/sweep (admin only)
func (mc *MetadataController) EnrichMissing(c *gin.Context) {
	taskID, err := mc.queue.EnqueueEnrichMissing(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "enqueue enrich_missing")
		return
	}

	c.JSON(http.StatusAccepted, EnqueueResponse{Message: "metadata sweep queued", TaskID: taskID})
}
