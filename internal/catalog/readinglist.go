package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// AddOutcome tells whether Add created an entry.
type AddOutcome int

const (
	Added AddOutcome = iota + 1
	AlreadyPresent
)

func (o AddOutcome) String() string {
	switch o {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already_present"
	default:
		return "unknown"
	}
}

// ReadingListService manages each user's personal list of books. A book
// appears at most once per list.
type ReadingListService struct {
	db    *gorm.DB
	books BookCatalog
}

func NewReadingListService(db *gorm.DB, books BookCatalog) *ReadingListService {
	return &ReadingListService{db: db, books: books}
}

// Add puts bookID on userID's list. Adding a book that is already listed is
// not an error; it reports AlreadyPresent and returns the existing entry.
func (s *ReadingListService) Add(ctx context.Context, userID, bookID uint) (AddOutcome, *entities.ReadingListEntry, error) {
	book, err := lookupBook(ctx, s.books, bookID)
	if err != nil {
		return 0, nil, err
	}

	if entry, err := s.find(ctx, userID, bookID); err == nil {
		entry.Book = *book
		return AlreadyPresent, entry, nil
	} else if !errors.Is(err, ErrEntryNotFound) {
		return 0, nil, err
	}

	entry := &entities.ReadingListEntry{UserID: userID, BookID: bookID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		if !database.IsUniqueViolation(err) {
			return 0, nil, fmt.Errorf("add to reading list: %w", err)
		}
		// Lost a race with a concurrent add of the same pair.
		existing, findErr := s.find(ctx, userID, bookID)
		if findErr != nil {
			return 0, nil, findErr
		}
		existing.Book = *book
		return AlreadyPresent, existing, nil
	}

	entry.Book = *book
	return Added, entry, nil
}

// Remove takes bookID off userID's list.
func (s *ReadingListService) Remove(ctx context.Context, userID, bookID uint) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.ReadingListEntry{})
	if result.Error != nil {
		return fmt.Errorf("remove from reading list: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// List returns userID's entries with their books, most recently added first.
func (s *ReadingListService) List(ctx context.Context, userID uint) ([]entities.ReadingListEntry, error) {
	var entries []entities.ReadingListEntry
	err := s.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("added_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list reading list: %w", err)
	}
	return entries, nil
}

func (s *ReadingListService) Contains(ctx context.Context, userID, bookID uint) (bool, error) {
	_, err := s.find(ctx, userID, bookID)
	if errors.Is(err, ErrEntryNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *ReadingListService) find(ctx context.Context, userID, bookID uint) (*entities.ReadingListEntry, error) {
	var entry entities.ReadingListEntry
	err := s.db.WithContext(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load reading list entry: %w", err)
	}
	return &entry, nil
}
