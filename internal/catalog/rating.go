package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// RatingOutcome tells whether Rate inserted a new rating or replaced one.
type RatingOutcome int

const (
	RatingCreated RatingOutcome = iota + 1
	RatingUpdated
)

func (o RatingOutcome) String() string {
	switch o {
	case RatingCreated:
		return "created"
	case RatingUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// RatingResult is the outcome of Rate together with the stored rating and
// the book's aggregate after the write.
type RatingResult struct {
	Outcome RatingOutcome
	Rating  *entities.Rating
	Book    *entities.Book
}

// RatingService maintains per-user ratings and the book aggregates that
// summarize them.
type RatingService struct {
	db    *gorm.DB
	books BookCatalog
}

func NewRatingService(db *gorm.DB, books BookCatalog) *RatingService {
	return &RatingService{db: db, books: books}
}

// Rate records value as userID's rating of bookID, replacing any previous
// rating by the same user. The rating row and the book aggregate are
// written in one transaction.
func (s *RatingService) Rate(ctx context.Context, bookID, userID uint, value int) (*RatingResult, error) {
	if value < entities.MinRatingValue || value > entities.MaxRatingValue {
		return nil, ErrInvalidRating
	}

	book, err := lookupBook(ctx, s.books, bookID)
	if err != nil {
		return nil, err
	}

	result := &RatingResult{Book: book}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.Rating
		err := tx.Where("book_id = ? AND user_id = ?", bookID, userID).Take(&existing).Error
		switch {
		case err == nil:
			delta := value - existing.Value
			if err := tx.Model(&existing).Update("rating", value).Error; err != nil {
				return fmt.Errorf("update rating: %w", err)
			}
			existing.Value = value
			result.Outcome = RatingUpdated
			result.Rating = &existing
			return applyRatingDelta(tx, book, delta, 0)

		case errors.Is(err, gorm.ErrRecordNotFound):
			rating := &entities.Rating{BookID: bookID, UserID: userID, Value: value}
			if err := tx.Omit(clause.Associations).Create(rating).Error; err != nil {
				return fmt.Errorf("create rating: %w", err)
			}
			result.Outcome = RatingCreated
			result.Rating = rating
			return applyRatingDelta(tx, book, value, 1)

		default:
			return fmt.Errorf("load rating: %w", err)
		}
	})
	if err != nil {
		return nil, asConflict(err)
	}
	return result, nil
}

// Unrate removes userID's rating of bookID and takes it out of the aggregate.
func (s *RatingService) Unrate(ctx context.Context, bookID, userID uint) (*entities.Book, error) {
	book, err := lookupBook(ctx, s.books, bookID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.Rating
		err := tx.Where("book_id = ? AND user_id = ?", bookID, userID).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRatingNotFound
		}
		if err != nil {
			return fmt.Errorf("load rating: %w", err)
		}

		if err := tx.Delete(&existing).Error; err != nil {
			return fmt.Errorf("delete rating: %w", err)
		}
		return applyRatingDelta(tx, book, -existing.Value, -1)
	})
	if err != nil {
		return nil, asConflict(err)
	}
	return book, nil
}

// GetUserRating returns userID's rating of bookID.
func (s *RatingService) GetUserRating(ctx context.Context, bookID, userID uint) (*entities.Rating, error) {
	var rating entities.Rating
	err := s.db.WithContext(ctx).Where("book_id = ? AND user_id = ?", bookID, userID).Take(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load rating: %w", err)
	}
	return &rating, nil
}

// ListRatings returns every rating of a book, newest first, with the rater's
// username filled in.
func (s *RatingService) ListRatings(ctx context.Context, bookID uint) ([]entities.Rating, error) {
	if _, err := lookupBook(ctx, s.books, bookID); err != nil {
		return nil, err
	}

	var ratings []entities.Rating
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	for i := range ratings {
		ratings[i].Username = ratings[i].User.Username
	}
	return ratings, nil
}

// RemoveUserRatings deletes every rating by userID and adjusts the aggregate
// of each affected book. It returns the number of ratings removed.
func (s *RatingService) RemoveUserRatings(ctx context.Context, userID uint) (int, error) {
	var removed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = removeUserRatings(tx, userID)
		return err
	})
	if err != nil {
		return 0, asConflict(err)
	}
	return removed, nil
}

func removeUserRatings(tx *gorm.DB, userID uint) (int, error) {
	var ratings []entities.Rating
	if err := tx.Where("user_id = ?", userID).Order("book_id").Find(&ratings).Error; err != nil {
		return 0, fmt.Errorf("load ratings of user %d: %w", userID, err)
	}

	for _, rating := range ratings {
		var book entities.Book
		if err := tx.Take(&book, rating.BookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Orphaned rating; nothing to adjust.
				continue
			}
			return 0, fmt.Errorf("load book %d: %w", rating.BookID, err)
		}
		if err := applyRatingDelta(tx, &book, -rating.Value, -1); err != nil {
			return 0, err
		}
	}

	if err := tx.Where("user_id = ?", userID).Delete(&entities.Rating{}).Error; err != nil {
		return 0, fmt.Errorf("delete ratings of user %d: %w", userID, err)
	}
	return len(ratings), nil
}

// Recompute rebuilds a book's aggregate by scanning all of its ratings. It
// is a seeding and repair tool; request handling never needs it.
func (s *RatingService) Recompute(ctx context.Context, bookID uint) (*entities.Book, error) {
	var book entities.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("load book %d: %w", bookID, err)
		}

		var stats struct {
			Total int
			Sum   int
		}
		err := tx.Model(&entities.Rating{}).
			Select("COUNT(*) AS total, COALESCE(SUM(rating), 0) AS sum").
			Where("book_id = ?", bookID).
			Scan(&stats).Error
		if err != nil {
			return fmt.Errorf("scan ratings of book %d: %w", bookID, err)
		}

		return applyRatingDelta(tx, &book, stats.Sum-book.RatingSum, stats.Total-book.TotalRatings)
	})
	if err != nil {
		return nil, asConflict(err)
	}
	return &book, nil
}

// RecomputeAll runs Recompute for every book and returns how many books
// were processed.
func (s *RatingService) RecomputeAll(ctx context.Context) (int, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&entities.Book{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	for i, id := range ids {
		if _, err := s.Recompute(ctx, id); err != nil {
			return i, fmt.Errorf("recompute book %d: %w", id, err)
		}
	}
	return len(ids), nil
}
