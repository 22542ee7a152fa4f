package repository

import (
	"context"

	"notes-agent/internal/domain"
)

// NoteStore is the persistence contract shared by every backend.
type NoteStore interface {
	// InsertIfAbsent adds a note and reports whether a row was created.
	// An existing title is left untouched and yields false.
	InsertIfAbsent(ctx context.Context, title, text string) (bool, error)
	// FetchByTitle returns the note with exactly this title, or nil.
	FetchByTitle(ctx context.Context, title string) (*domain.Note, error)
	// ListTitles returns every title in ascending order.
	ListTitles(ctx context.Context) ([]string, error)
}

var (
	_ NoteStore = (*SQLStore)(nil)
	_ NoteStore = (*DynamoStore)(nil)
)
