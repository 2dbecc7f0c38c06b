package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// AccountDeletion summarizes what DeleteUser removed.
type AccountDeletion struct {
	Ratings int   `json:"ratings"`
	Notes   int64 `json:"notes"`
	Entries int64 `json:"reading_list_entries"`
}

// AccountService removes users together with everything they own.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// DeleteUser deletes a user, their ratings (adjusting each rated book's
// aggregate), notes and reading list in one transaction.
func (s *AccountService) DeleteUser(ctx context.Context, userID uint) (*AccountDeletion, error) {
	var summary AccountDeletion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.Take(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user %d: %w", userID, err)
		}

		removed, err := removeUserRatings(tx, userID)
		if err != nil {
			return err
		}
		summary.Ratings = removed

		notes := tx.Where("user_id = ?", userID).Delete(&entities.Note{})
		if notes.Error != nil {
			return fmt.Errorf("delete notes: %w", notes.Error)
		}
		summary.Notes = notes.RowsAffected

		entries := tx.Where("user_id = ?", userID).Delete(&entities.ReadingListEntry{})
		if entries.Error != nil {
			return fmt.Errorf("delete reading list: %w", entries.Error)
		}
		summary.Entries = entries.RowsAffected

		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, asConflict(err)
	}
	return &summary, nil
}
