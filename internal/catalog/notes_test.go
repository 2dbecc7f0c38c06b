package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// fixedClock returns a clock that advances one minute per call.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func TestCreateNote(t *testing.T) {
	env := setupTestEnv(t)
	env.notes.now = fixedClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	book := env.createBook(t, "Dune")

	note, err := env.notes.CreateNote(ctx, book.ID, 1, "hello")
	require.NoError(t, err)
	assert.NotZero(t, note.ID)
	assert.Equal(t, "hello", note.Content)
	assert.True(t, note.CreatedAt.Equal(note.UpdatedAt))

	stored, err := env.notes.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.Equal(stored.UpdatedAt))
}

func TestCreateNote_Validation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, "Dune")

	_, err := env.notes.CreateNote(ctx, book.ID, 1, "   \n\t")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = env.notes.CreateNote(ctx, book.ID, 1, strings.Repeat("a", MaxNoteLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.notes.CreateNote(ctx, book.ID, 1, strings.Repeat("é", MaxNoteLength))
	assert.NoError(t, err)

	_, err = env.notes.CreateNote(ctx, 404, 1, "hello")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateNote_OnlyAuthor(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, "Dune")
	const userA, userB = uint(1), uint(2)

	note, err := env.notes.CreateNote(ctx, book.ID, userA, "hello")
	require.NoError(t, err)

	_, err = env.notes.UpdateNote(ctx, note.ID, userB, "hacked")
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.notes.DeleteNote(ctx, note.ID, userB)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := env.notes.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
}

func TestUpdateNote_RefreshesModificationTimeOnly(t *testing.T) {
	env := setupTestEnv(t)
	env.notes.now = fixedClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	book := env.createBook(t, "Dune")

	note, err := env.notes.CreateNote(ctx, book.ID, 1, "first draft")
	require.NoError(t, err)

	updated, err := env.notes.UpdateNote(ctx, note.ID, 1, "second draft")
	require.NoError(t, err)
	assert.Equal(t, "second draft", updated.Content)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	stored, err := env.notes.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "second draft", stored.Content)
	assert.True(t, stored.CreatedAt.Equal(note.CreatedAt))
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))

	_, err = env.notes.UpdateNote(ctx, note.ID, 1, "")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = env.notes.UpdateNote(ctx, 999, 1, "text")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestDeleteNote(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, "Dune")

	note, err := env.notes.CreateNote(ctx, book.ID, 1, "bye")
	require.NoError(t, err)

	require.NoError(t, env.notes.DeleteNote(ctx, note.ID, 1))

	_, err = env.notes.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.ErrorIs(t, env.notes.DeleteNote(ctx, note.ID, 1), ErrNotFound)
}

func TestListNotes(t *testing.T) {
	env := setupTestEnv(t)
	env.notes.now = fixedClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	book := env.createBook(t, "Dune")
	other := env.createBook(t, "Emma")

	for _, n := range []struct {
		user    uint
		book    uint
		content string
	}{
		{1, book.ID, "a1"}, {2, book.ID, "b1"}, {1, book.ID, "a2"}, {1, other.ID, "elsewhere"},
	} {
		_, err := env.notes.CreateNote(ctx, n.book, n.user, n.content)
		require.NoError(t, err)
	}

	all, err := env.notes.ListNotes(ctx, book.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a2", "b1", "a1"}, contents(all))

	userA := uint(1)
	mine, err := env.notes.ListNotes(ctx, book.ID, &userA)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a1"}, contents(mine))

	nobody := uint(99)
	none, err := env.notes.ListNotes(ctx, book.ID, &nobody)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = env.notes.ListNotes(ctx, 404, nil)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func contents(notes []entities.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Content
	}
	return out
}
