package library

import (
	"context"
	"errors"
	"testing"

	"AuxFM/cache"
	"AuxFM/repository"
	"AuxFM/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, storage.BlobStore) {
	t.Helper()
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	repo := repository.NewMemoryTrackRepository()
	return NewService(repo, blobs, cache.NewPlaylistCache(nil)), blobs
}

func TestIngestCreatesBlobAndRow(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	track, err := svc.Ingest(ctx, "my_song.mp3", []byte("not really audio"), "audio/mpeg")
	require.NoError(t, err)

	assert.Equal(t, "uploads/my_song.mp3", track.StorageKey)
	assert.Equal(t, "my_song.mp3", track.DisplayName)
	// Unparsable bytes degrade to the filename-derived title.
	assert.Equal(t, "My song", track.Title)
	assert.Nil(t, track.DurationSeconds)
	assert.False(t, track.HasArt)
	assert.Equal(t, 1, track.Ordering)

	exists, err := blobs.Exists(ctx, "uploads/my_song.mp3")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIngestCollidingFilenames(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "song.mp3", []byte("first"), "audio/mpeg")
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, "song.mp3", []byte("second"), "audio/mpeg")
	require.NoError(t, err)

	assert.Equal(t, "uploads/song.mp3", first.StorageKey)
	assert.Equal(t, "uploads/song_1.mp3", second.StorageKey)

	tracks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, 1, tracks[0].Ordering)
	assert.Equal(t, 2, tracks[1].Ordering)

	// Every live key stays distinct no matter how many times the name repeats.
	third, err := svc.Ingest(ctx, "song.mp3", []byte("third"), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "uploads/song_2.mp3", third.StorageKey)
}

// failingPutStore rejects every write.
type failingPutStore struct {
	storage.BlobStore
}

func (s *failingPutStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return errors.New("backend unavailable")
}

func TestIngestBlobFailureLeavesNoRow(t *testing.T) {
	local, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	repo := repository.NewMemoryTrackRepository()
	svc := NewService(repo, &failingPutStore{BlobStore: local}, cache.NewPlaylistCache(nil))

	_, err = svc.Ingest(context.Background(), "song.mp3", []byte("data"), "audio/mpeg")
	require.Error(t, err)

	tracks, err := repo.GetAllTracks()
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

// failingDeleteStore accepts writes but refuses deletes.
type failingDeleteStore struct {
	storage.BlobStore
}

func (s *failingDeleteStore) Delete(ctx context.Context, key string) error {
	return errors.New("backend unavailable")
}

func TestDeleteSurvivesBlobFailure(t *testing.T) {
	local, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	repo := repository.NewMemoryTrackRepository()
	svc := NewService(repo, &failingDeleteStore{BlobStore: local}, cache.NewPlaylistCache(nil))
	ctx := context.Background()

	track, err := svc.Ingest(ctx, "song.mp3", []byte("data"), "audio/mpeg")
	require.NoError(t, err)

	// The blob layer is down for deletes, yet the row must still go.
	require.NoError(t, svc.Delete(ctx, track.ID))

	tracks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestDeleteRemovesBlobs(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	track, err := svc.Ingest(ctx, "song.mp3", []byte("data"), "audio/mpeg")
	require.NoError(t, err)
	require.NoError(t, svc.AttachArt(ctx, track.ID, []byte("jpeg bytes"), "image/jpeg"))

	require.NoError(t, svc.Delete(ctx, track.ID))

	exists, err := blobs.Exists(ctx, track.StorageKey)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = blobs.Exists(ctx, ArtKey(track.ID))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteUnknownTrack(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAttachArtMarksTrack(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	track, err := svc.Ingest(ctx, "song.mp3", []byte("data"), "audio/mpeg")
	require.NoError(t, err)
	require.False(t, track.HasArt)

	require.NoError(t, svc.AttachArt(ctx, track.ID, []byte("jpeg bytes"), "image/jpeg"))

	stored, err := svc.Get(ctx, track.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasArt)

	exists, err := blobs.Exists(ctx, ArtKey(track.ID))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAttachArtUnknownTrack(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.AttachArt(context.Background(), 404, []byte("jpeg"), "image/jpeg")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRenameInvalidatesNothingOnError(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	track, err := svc.Ingest(ctx, "song.mp3", []byte("data"), "audio/mpeg")
	require.NoError(t, err)

	_, err = svc.Rename(ctx, track.ID, "")
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)

	renamed, err := svc.Rename(ctx, track.ID, "New Title")
	require.NoError(t, err)
	assert.Equal(t, "New Title", renamed.Title)
	assert.Equal(t, "song.mp3", renamed.DisplayName)
}

func TestReorderAppliesIndexOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		track, err := svc.Ingest(ctx, name, []byte(name), "audio/mpeg")
		require.NoError(t, err)
		ids = append(ids, track.ID)
	}

	require.NoError(t, svc.Reorder(ctx, []int64{ids[2], ids[0], ids[1]}))

	tracks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, ids[2], tracks[0].ID)
	assert.Equal(t, ids[0], tracks[1].ID)
	assert.Equal(t, ids[1], tracks[2].ID)
}
