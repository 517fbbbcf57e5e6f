package repository

import (
	"errors"

	"AuxFM/model"
)

// Sentinel errors surfaced to the HTTP layer. Wrapped errors carry detail;
// handlers match with errors.Is.
var (
	// ErrNotFound indicates the referenced track does not exist.
	ErrNotFound = errors.New("track not found")
	// ErrInvalidArgument indicates a semantically invalid input, e.g. an
	// empty rename target.
	ErrInvalidArgument = errors.New("invalid argument")
)

// TrackRepository defines the catalog operations over tracks.
//
// CreateTrack assigns ID, CreatedAt and Ordering = max(existing)+1; the
// read-max-then-insert is atomic with respect to concurrent creates.
// GetAllTracks returns tracks ordered by Ordering ascending, ties broken by
// ID so the listing order is deterministic. ReorderTracks applies
// index->ordering for the given id sequence all-or-nothing, silently skipping
// unknown ids. DeleteTrack removes the row and reports what blobs the caller
// should clean up.
type TrackRepository interface {
	CreateTrack(track *model.Track) (*model.Track, error)
	GetTrackByID(id int64) (*model.Track, error)
	GetAllTracks() ([]*model.Track, error)
	RenameTrack(id int64, title string) (*model.Track, error)
	ReorderTracks(ids []int64) error
	DeleteTrack(id int64) (*model.DeletedTrackInfo, error)
	MarkArt(id int64) error
}
