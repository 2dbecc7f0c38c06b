package entities

import (
	"time"
)

// Rating bounds accepted from users.
const (
	MinRatingValue = 1
	MaxRatingValue = 10
)

// Book is a catalog record together with its aggregate rating statistics.
//
// AverageRating, TotalRatings, RatingSum and RatingVersion are owned by the
// rating service and must never be written by catalog import or admin edits.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:255;not null" json:"title"`
	Author          string    `gorm:"index;size:255;not null" json:"author"`
	PublicationDate time.Time `gorm:"type:date" json:"publication_date"`
	ISBN            string    `gorm:"uniqueIndex;size:13;not null" json:"isbn"`
	Genre           string    `gorm:"index;size:100" json:"genre"`
	Description     string    `gorm:"type:text" json:"description"`
	PageCount       int       `json:"page_count"`
	CoverURL        string    `gorm:"size:2048" json:"cover_url,omitempty"`

	// Aggregate rating
	AverageRating float64 `gorm:"type:decimal(3,1);not null;default:0" json:"average_rating"`
	TotalRatings  int     `gorm:"not null;default:0" json:"total_ratings"`
	RatingSum     int     `gorm:"not null;default:0" json:"-"`
	RatingVersion int64   `gorm:"not null;default:0" json:"-"` // Bumped on every aggregate write

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rating is one user's score for one book. At most one row exists per
// (book, user) pair.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"uniqueIndex:idx_rating_book_user;not null" json:"book_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_rating_book_user;index;not null" json:"user_id"`
	Value     int       `gorm:"column:rating;not null;check:rating >= 1 AND rating <= 10" json:"rating"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Username is filled when listing ratings for display.
	Username string `gorm:"-" json:"username,omitempty"`
}

// Note is a free-text annotation a user keeps on a book. Only its author may
// change or delete it.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"index;not null" json:"book_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReadingListEntry marks a book as part of a user's personal reading list.
type ReadingListEntry struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"uniqueIndex:idx_reading_list_user_book;not null" json:"user_id"`
	BookID  uint      `gorm:"uniqueIndex:idx_reading_list_user_book;index;not null" json:"book_id"`
	Book    Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book"`
	User    User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (Book) TableName() string {
	return "books"
}

func (Rating) TableName() string {
	return "ratings"
}

func (Note) TableName() string {
	return "notes"
}

func (ReadingListEntry) TableName() string {
	return "reading_list_entries"
}
