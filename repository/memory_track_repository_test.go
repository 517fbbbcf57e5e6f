package repository

import (
	"fmt"
	"testing"

	"AuxFM/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertTrack(t *testing.T, repo TrackRepository, key string) *model.Track {
	t.Helper()
	track, err := repo.CreateTrack(&model.Track{
		StorageKey:  key,
		DisplayName: key,
		Title:       key,
	})
	require.NoError(t, err)
	return track
}

func assertOrderingTotality(t *testing.T, repo TrackRepository) {
	t.Helper()
	tracks, err := repo.GetAllTracks()
	require.NoError(t, err)

	seen := make(map[int]bool)
	last := -1 << 31
	for _, track := range tracks {
		assert.False(t, seen[track.Ordering], "duplicate ordering %d", track.Ordering)
		seen[track.Ordering] = true
		assert.GreaterOrEqual(t, track.Ordering, last)
		last = track.Ordering
	}
}

func TestCreateTrackAssignsSequentialOrdering(t *testing.T) {
	repo := NewMemoryTrackRepository()

	first := insertTrack(t, repo, "uploads/a.mp3")
	second := insertTrack(t, repo, "uploads/b.mp3")

	assert.Equal(t, 1, first.Ordering)
	assert.Equal(t, 2, second.Ordering)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestGetAllTracksSortedByOrderingThenID(t *testing.T) {
	repo := NewMemoryTrackRepository()
	for i := 0; i < 5; i++ {
		insertTrack(t, repo, fmt.Sprintf("uploads/%d.mp3", i))
	}

	tracks, err := repo.GetAllTracks()
	require.NoError(t, err)
	require.Len(t, tracks, 5)
	assertOrderingTotality(t, repo)
}

func TestReorderAssignsIndexAsOrdering(t *testing.T) {
	repo := NewMemoryTrackRepository()
	insertTrack(t, repo, "uploads/1.mp3") // id 1
	insertTrack(t, repo, "uploads/2.mp3") // id 2
	insertTrack(t, repo, "uploads/3.mp3") // id 3

	require.NoError(t, repo.ReorderTracks([]int64{3, 1, 2}))

	tracks, err := repo.GetAllTracks()
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, int64(3), tracks[0].ID)
	assert.Equal(t, 0, tracks[0].Ordering)
	assert.Equal(t, int64(1), tracks[1].ID)
	assert.Equal(t, 1, tracks[1].Ordering)
	assert.Equal(t, int64(2), tracks[2].ID)
	assert.Equal(t, 2, tracks[2].Ordering)
}

func TestReorderSkipsUnknownIDs(t *testing.T) {
	repo := NewMemoryTrackRepository()
	insertTrack(t, repo, "uploads/1.mp3")

	require.NoError(t, repo.ReorderTracks([]int64{99, 1}))

	tracks, err := repo.GetAllTracks()
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, 1, tracks[0].Ordering)
}

func TestOrderingTotalityAfterMixedOperations(t *testing.T) {
	repo := NewMemoryTrackRepository()
	for i := 0; i < 4; i++ {
		insertTrack(t, repo, fmt.Sprintf("uploads/%d.mp3", i))
	}

	require.NoError(t, repo.ReorderTracks([]int64{4, 2, 1, 3}))
	_, err := repo.DeleteTrack(3)
	require.NoError(t, err)
	insertTrack(t, repo, "uploads/late.mp3")

	assertOrderingTotality(t, repo)
}

func TestRenameUpdatesTitleOnly(t *testing.T) {
	repo := NewMemoryTrackRepository()
	created := insertTrack(t, repo, "uploads/song.mp3")

	renamed, err := repo.RenameTrack(created.ID, "Better Title")
	require.NoError(t, err)
	assert.Equal(t, "Better Title", renamed.Title)
	assert.Equal(t, created.DisplayName, renamed.DisplayName)
	assert.Equal(t, created.StorageKey, renamed.StorageKey)
}

func TestRenameEmptyTitle(t *testing.T) {
	repo := NewMemoryTrackRepository()
	created := insertTrack(t, repo, "uploads/song.mp3")

	_, err := repo.RenameTrack(created.ID, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRenameUnknownTrack(t *testing.T) {
	repo := NewMemoryTrackRepository()
	_, err := repo.RenameTrack(42, "anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteReturnsCleanupInfo(t *testing.T) {
	repo := NewMemoryTrackRepository()
	created := insertTrack(t, repo, "uploads/song.mp3")
	require.NoError(t, repo.MarkArt(created.ID))

	info, err := repo.DeleteTrack(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/song.mp3", info.StorageKey)
	assert.True(t, info.HasArt)

	_, err = repo.GetTrackByID(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUnknownTrack(t *testing.T) {
	repo := NewMemoryTrackRepository()
	_, err := repo.DeleteTrack(7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkArtUnknownTrack(t *testing.T) {
	repo := NewMemoryTrackRepository()
	assert.ErrorIs(t, repo.MarkArt(7), ErrNotFound)
}
