package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"AuxFM/model"
)

// memoryTrackRepository implements TrackRepository in process memory. It is
// the default catalog for standalone deployments that have no MySQL around;
// the catalog is lost on restart, the blobs are not.
type memoryTrackRepository struct {
	mu     sync.Mutex
	nextID int64
	tracks map[int64]*model.Track
}

// NewMemoryTrackRepository creates an empty in-memory catalog.
func NewMemoryTrackRepository() TrackRepository {
	return &memoryTrackRepository{
		nextID: 1,
		tracks: make(map[int64]*model.Track),
	}
}

func copyTrack(t *model.Track) *model.Track {
	c := *t
	if t.DurationSeconds != nil {
		d := *t.DurationSeconds
		c.DurationSeconds = &d
	}
	return &c
}

// CreateTrack assigns id, ordering and creation time under the lock, so two
// concurrent uploads can never claim the same ordering slot.
func (r *memoryTrackRepository) CreateTrack(track *model.Track) (*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxOrdering := 0
	for _, t := range r.tracks {
		if t.Ordering > maxOrdering {
			maxOrdering = t.Ordering
		}
	}

	stored := copyTrack(track)
	stored.ID = r.nextID
	stored.Ordering = maxOrdering + 1
	stored.CreatedAt = time.Now()
	r.nextID++
	r.tracks[stored.ID] = stored

	return copyTrack(stored), nil
}

func (r *memoryTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	track, ok := r.tracks[id]
	if !ok {
		return nil, fmt.Errorf("track id %d: %w", id, ErrNotFound)
	}
	return copyTrack(track), nil
}

func (r *memoryTrackRepository) GetAllTracks() ([]*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracks := make([]*model.Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		tracks = append(tracks, copyTrack(t))
	}
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].Ordering != tracks[j].Ordering {
			return tracks[i].Ordering < tracks[j].Ordering
		}
		return tracks[i].ID < tracks[j].ID
	})
	return tracks, nil
}

func (r *memoryTrackRepository) RenameTrack(id int64, title string) (*model.Track, error) {
	if title == "" {
		return nil, fmt.Errorf("empty title: %w", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	track, ok := r.tracks[id]
	if !ok {
		return nil, fmt.Errorf("track id %d: %w", id, ErrNotFound)
	}
	track.Title = title
	return copyTrack(track), nil
}

func (r *memoryTrackRepository) ReorderTracks(ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The whole reorder happens under one lock hold, so two concurrent calls
	// cannot interleave their index assignments.
	for index, id := range ids {
		if track, ok := r.tracks[id]; ok {
			track.Ordering = index
		}
	}
	return nil
}

func (r *memoryTrackRepository) DeleteTrack(id int64) (*model.DeletedTrackInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	track, ok := r.tracks[id]
	if !ok {
		return nil, fmt.Errorf("track id %d: %w", id, ErrNotFound)
	}
	delete(r.tracks, id)
	return &model.DeletedTrackInfo{StorageKey: track.StorageKey, HasArt: track.HasArt}, nil
}

func (r *memoryTrackRepository) MarkArt(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	track, ok := r.tracks[id]
	if !ok {
		return fmt.Errorf("track id %d: %w", id, ErrNotFound)
	}
	track.HasArt = true
	return nil
}
