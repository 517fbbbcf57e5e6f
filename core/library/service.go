package library

import (
	"context"
	"fmt"

	"AuxFM/cache"
	"AuxFM/core/meta"
	"AuxFM/logger"
	"AuxFM/model"
	"AuxFM/repository"
	"AuxFM/storage"
)

// uploadPrefix is the key namespace for track blobs.
const uploadPrefix = "uploads"

// ArtKey is the blob key for a track's cover art.
func ArtKey(trackID int64) string {
	return fmt.Sprintf("art/%d.jpg", trackID)
}

// Service is the playlist ingestion pipeline and catalog facade shared by
// the HTTP handlers and the ingest watcher. It owns the ordering between the
// blob layer and the catalog: blob writes always precede catalog inserts, so
// a blob can transiently exist without a row but never the reverse.
type Service struct {
	repo  repository.TrackRepository
	blobs storage.BlobStore
	cache *cache.PlaylistCache
}

// NewService wires the ingestion pipeline. cache may be nil-backed.
func NewService(repo repository.TrackRepository, blobs storage.BlobStore, playlistCache *cache.PlaylistCache) *Service {
	return &Service{repo: repo, blobs: blobs, cache: playlistCache}
}

// Origin reports which storage backend serves this library's blobs.
func (s *Service) Origin() string {
	return s.blobs.Origin()
}

// Ingest stores the uploaded bytes under a collision-free key, extracts
// metadata and creates the catalog row. Metadata extraction failure is never
// fatal: the track falls back to a title derived from its filename. Cover
// art found in the tags is stored best-effort after the row exists.
func (s *Service) Ingest(ctx context.Context, filename string, data []byte, contentType string) (*model.Track, error) {
	key, err := storage.ResolveKey(ctx, uploadPrefix, filename, s.blobs.Exists)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage key for %s: %w", filename, err)
	}

	// Blob first; the catalog must never reference a blob that failed to
	// write.
	if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to store blob %s: %w", key, err)
	}

	md := meta.Extract(data)
	title := md.Title
	if title == "" {
		title = meta.TitleFromFilename(filename)
	}

	track := &model.Track{
		StorageKey:      key,
		DisplayName:     filename,
		Title:           title,
		Artist:          md.Artist,
		Album:           md.Album,
		DurationSeconds: md.DurationSeconds,
	}

	track, err = s.repo.CreateTrack(track)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog row for %s: %w", key, err)
	}

	if len(md.CoverArt) > 0 {
		artType := md.CoverMIME
		if artType == "" {
			artType = "image/jpeg"
		}
		if err := s.storeArt(ctx, track.ID, md.CoverArt, artType); err != nil {
			// A track without art is still a track.
			logger.Warn("failed to store embedded cover art",
				logger.Int64("trackId", track.ID),
				logger.ErrorField(err))
		} else {
			track.HasArt = true
		}
	}

	s.cache.Invalidate(ctx)
	logger.Info("track ingested",
		logger.Int64("trackId", track.ID),
		logger.String("storageKey", key),
		logger.String("title", track.Title),
		logger.Bool("hasArt", track.HasArt))
	return track, nil
}

// List returns the playlist ordered by ordering, cache-aside.
func (s *Service) List(ctx context.Context) ([]*model.Track, error) {
	if tracks, ok := s.cache.Get(ctx); ok {
		return tracks, nil
	}

	tracks, err := s.repo.GetAllTracks()
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, tracks)
	return tracks, nil
}

// Get returns one track by id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Track, error) {
	return s.repo.GetTrackByID(id)
}

// Rename updates a track's title.
func (s *Service) Rename(ctx context.Context, id int64, title string) (*model.Track, error) {
	track, err := s.repo.RenameTrack(id, title)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return track, nil
}

// Reorder applies a new playlist order all-or-nothing.
func (s *Service) Reorder(ctx context.Context, ids []int64) error {
	if err := s.repo.ReorderTracks(ids); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Delete removes the catalog row, then best-effort deletes the track blob
// and, when present, the art blob. A dangling blob beats an undeletable row,
// so blob failures are logged and swallowed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	info, err := s.repo.DeleteTrack(id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, info.StorageKey); err != nil {
		logger.Warn("failed to delete track blob",
			logger.String("storageKey", info.StorageKey),
			logger.ErrorField(err))
	}
	if info.HasArt {
		if err := s.blobs.Delete(ctx, ArtKey(id)); err != nil {
			logger.Warn("failed to delete art blob",
				logger.Int64("trackId", id),
				logger.ErrorField(err))
		}
	}

	s.cache.Invalidate(ctx)
	return nil
}

// AttachArt stores uploaded cover art for an existing track and marks it.
func (s *Service) AttachArt(ctx context.Context, id int64, data []byte, contentType string) error {
	// Surface NotFound before writing anything.
	if _, err := s.repo.GetTrackByID(id); err != nil {
		return err
	}
	if err := s.storeArt(ctx, id, data, contentType); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *Service) storeArt(ctx context.Context, id int64, data []byte, contentType string) error {
	if err := s.blobs.Put(ctx, ArtKey(id), data, contentType); err != nil {
		return fmt.Errorf("failed to store art blob: %w", err)
	}
	// hasArt flips only after the blob is safely stored.
	if err := s.repo.MarkArt(id); err != nil {
		return fmt.Errorf("failed to mark art: %w", err)
	}
	return nil
}
