package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// BookCatalog is the read side of the book store the services depend on.
// Implementations report a missing book with an error wrapping
// gorm.ErrRecordNotFound or ErrNotFound.
type BookCatalog interface {
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
}

func lookupBook(ctx context.Context, books BookCatalog, id uint) (*entities.Book, error) {
	book, err := books.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("load book %d: %w", id, err)
	}
	return book, nil
}

// averageOf returns sum/total rounded half-up to one decimal place, or 0 when
// there are no ratings. Ratings are positive so integer division rounds down.
func averageOf(sum, total int) float64 {
	if total <= 0 {
		return 0
	}
	tenths := (sum*20 + total) / (2 * total)
	return float64(tenths) / 10
}

// applyRatingDelta moves the aggregate of book by the given deltas. The
// update only lands if nobody else wrote the aggregate since book was read;
// otherwise ErrConflict is returned and the caller's transaction rolls back.
// On success book reflects the stored state.
func applyRatingDelta(tx *gorm.DB, book *entities.Book, sumDelta, countDelta int) error {
	sum := book.RatingSum + sumDelta
	total := book.TotalRatings + countDelta
	if total < 0 || sum < 0 || (total == 0) != (sum == 0) {
		return fmt.Errorf("book %d: aggregate would become sum=%d total=%d", book.ID, sum, total)
	}
	average := averageOf(sum, total)

	result := tx.Model(&entities.Book{}).
		Where("id = ? AND rating_version = ?", book.ID, book.RatingVersion).
		Updates(map[string]any{
			"rating_sum":     sum,
			"total_ratings":  total,
			"average_rating": average,
			"rating_version": gorm.Expr("rating_version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("update aggregate of book %d: %w", book.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}

	book.RatingSum = sum
	book.TotalRatings = total
	book.AverageRating = average
	book.RatingVersion++
	return nil
}

// asConflict folds storage-level contention into ErrConflict so callers see
// one retryable condition.
func asConflict(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict):
		return err
	case database.IsUniqueViolation(err), database.IsBusy(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
