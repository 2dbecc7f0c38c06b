package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// MaxNoteLength is the longest note content accepted, in characters.
const MaxNoteLength = 10000

// NotesService manages user annotations on books. Only a note's author may
// change or delete it.
type NotesService struct {
	db    *gorm.DB
	books BookCatalog
	now   func() time.Time
}

func NewNotesService(db *gorm.DB, books BookCatalog) *NotesService {
	return &NotesService{db: db, books: books, now: time.Now}
}

// ListNotes returns notes on a book, newest first. With a non-nil userID only
// that user's notes are returned; with nil, every note on the book.
func (s *NotesService) ListNotes(ctx context.Context, bookID uint, userID *uint) ([]entities.Note, error) {
	if _, err := lookupBook(ctx, s.books, bookID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("book_id = ?", bookID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var notes []entities.Note
	if err := query.Order("created_at DESC, id DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// GetNote returns a single note regardless of its author.
func (s *NotesService) GetNote(ctx context.Context, noteID uint) (*entities.Note, error) {
	var note entities.Note
	err := s.db.WithContext(ctx).Take(&note, noteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load note %d: %w", noteID, err)
	}
	return &note, nil
}

func (s *NotesService) CreateNote(ctx context.Context, bookID, userID uint, content string) (*entities.Note, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if _, err := lookupBook(ctx, s.books, bookID); err != nil {
		return nil, err
	}

	now := s.now()
	note := &entities.Note{
		BookID:    bookID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error; err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// UpdateNote replaces the content of a note owned by userID and refreshes
// its modification time.
func (s *NotesService) UpdateNote(ctx context.Context, noteID, userID uint, content string) (*entities.Note, error) {
	note, err := s.ownedNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	now := s.now()
	result := s.db.WithContext(ctx).Model(&entities.Note{}).
		Where("id = ? AND user_id = ?", noteID, userID).
		Updates(map[string]any{"content": content, "updated_at": now})
	if result.Error != nil {
		return nil, fmt.Errorf("update note %d: %w", noteID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoteNotFound
	}

	note.Content = content
	note.UpdatedAt = now
	return note, nil
}

// DeleteNote removes a note owned by userID.
func (s *NotesService) DeleteNote(ctx context.Context, noteID, userID uint) error {
	if _, err := s.ownedNote(ctx, noteID, userID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", noteID, userID).Delete(&entities.Note{})
	if result.Error != nil {
		return fmt.Errorf("delete note %d: %w", noteID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (s *NotesService) ownedNote(ctx context.Context, noteID, userID uint) (*entities.Note, error) {
	note, err := s.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, ErrNotNoteAuthor
	}
	return note, nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxNoteLength {
		return ErrContentTooLong
	}
	return nil
}
