// Package catalog holds the domain rules of the bookshelf: how a book's
// aggregate rating follows individual user ratings, who may touch a note,
// and how a personal reading list behaves.
//
// Every operation takes the acting user's id as an explicit parameter; the
// package has no notion of a current user and performs no credential checks.
//
// # Services
//
//   - RatingService: Rate, Unrate, GetUserRating, ListRatings, and the
//     full-rescan Recompute / RecomputeAll used for seeding and repair
//   - NotesService: ListNotes, CreateNote, UpdateNote, DeleteNote, GetNote
//   - ReadingListService: Add, Remove, List, Contains
//   - AccountService: DeleteUser, which removes a user's ratings (adjusting
//     every affected aggregate), notes and reading list atomically
//
// # Errors
//
// Failures are reported as errors wrapping one of four categories, tested
// with errors.Is: ErrNotFound, ErrForbidden, ErrInvalidInput and ErrConflict.
// ErrConflict means a concurrent writer changed the book aggregate first; the
// whole operation can be retried as is, see RetryOnConflict.
//
// # Aggregate rating
//
// Book keeps RatingSum and TotalRatings next to AverageRating. Every rating
// write adjusts the sum and count by a delta and derives the average from
// them, rounded half-up to one decimal, inside the same transaction as the
// rating row. The write is guarded by Book.RatingVersion so two writers can
// never both apply a delta to the same stale snapshot.
package catalog
