package repository

import (
	"database/sql"
	"fmt"
	"time"

	"AuxFM/db"
	"AuxFM/logger"
	"AuxFM/model"
)

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	DB *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository() TrackRepository {
	return &mysqlTrackRepository{DB: db.DB}
}

const trackColumns = `id, storage_key, display_name, title, artist, album, duration, has_art, ordering, created_at`

func scanTrack(scanner interface{ Scan(...interface{}) error }) (*model.Track, error) {
	track := &model.Track{}
	var duration sql.NullFloat64
	err := scanner.Scan(&track.ID, &track.StorageKey, &track.DisplayName, &track.Title,
		&track.Artist, &track.Album, &duration, &track.HasArt, &track.Ordering, &track.CreatedAt)
	if err != nil {
		return nil, err
	}
	if duration.Valid {
		track.DurationSeconds = &duration.Float64
	}
	return track, nil
}

// CreateTrack adds a new track to the catalog. The next ordering value is
// computed and the row inserted inside one transaction, with the MAX read
// locked so concurrent uploads cannot claim the same slot.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) (*model.Track, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for CreateTrack: %w", err)
	}
	defer tx.Rollback()

	var maxOrdering sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(ordering) FROM tracks FOR UPDATE`).Scan(&maxOrdering); err != nil {
		return nil, fmt.Errorf("failed to read max ordering: %w", err)
	}

	track.Ordering = int(maxOrdering.Int64) + 1
	track.CreatedAt = time.Now()

	var duration interface{}
	if track.DurationSeconds != nil {
		duration = *track.DurationSeconds
	}

	res, err := tx.Exec(`INSERT INTO tracks (storage_key, display_name, title, artist, album, duration, has_art, ordering, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track.StorageKey, track.DisplayName, track.Title, track.Artist, track.Album,
		duration, track.HasArt, track.Ordering, track.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	track.ID = id

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit CreateTrack: %w", err)
	}

	logger.Info("track created",
		logger.Int64("id", id),
		logger.String("title", track.Title),
		logger.Int("ordering", track.Ordering))
	return track, nil
}

// GetTrackByID retrieves a track by its ID.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	row := r.DB.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)

	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("track id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetAllTracks retrieves all tracks sorted by ordering, then id.
func (r *mysqlTrackRepository) GetAllTracks() ([]*model.Track, error) {
	rows, err := r.DB.Query(`SELECT ` + trackColumns + ` FROM tracks ORDER BY ordering ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetAllTracks: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllTracks: %w", err)
	}

	return tracks, nil
}

// RenameTrack updates the title of a track. The display name is immutable.
func (r *mysqlTrackRepository) RenameTrack(id int64, title string) (*model.Track, error) {
	if title == "" {
		return nil, fmt.Errorf("empty title: %w", ErrInvalidArgument)
	}

	track, err := r.GetTrackByID(id)
	if err != nil {
		return nil, err
	}

	if _, err := r.DB.Exec(`UPDATE tracks SET title = ? WHERE id = ?`, title, id); err != nil {
		return nil, fmt.Errorf("failed to execute RenameTrack for track ID %d: %w", id, err)
	}

	track.Title = title
	return track, nil
}

// ReorderTracks assigns ordering = index for each id in the given sequence,
// inside one transaction. Unknown ids update zero rows and are skipped.
func (r *mysqlTrackRepository) ReorderTracks(ids []int64) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for ReorderTracks: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE tracks SET ordering = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for ReorderTracks: %w", err)
	}
	defer stmt.Close()

	for index, id := range ids {
		if _, err := stmt.Exec(index, id); err != nil {
			return fmt.Errorf("failed to set ordering %d for track ID %d: %w", index, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ReorderTracks: %w", err)
	}
	return nil
}

// DeleteTrack removes a track row and returns the blob locations the caller
// should clean up.
func (r *mysqlTrackRepository) DeleteTrack(id int64) (*model.DeletedTrackInfo, error) {
	track, err := r.GetTrackByID(id)
	if err != nil {
		return nil, err
	}

	if _, err := r.DB.Exec(`DELETE FROM tracks WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to execute DeleteTrack for track ID %d: %w", id, err)
	}

	logger.Info("track deleted", logger.Int64("id", id), logger.String("storageKey", track.StorageKey))
	return &model.DeletedTrackInfo{StorageKey: track.StorageKey, HasArt: track.HasArt}, nil
}

// MarkArt records that a cover art blob has been stored for the track.
func (r *mysqlTrackRepository) MarkArt(id int64) error {
	res, err := r.DB.Exec(`UPDATE tracks SET has_art = TRUE WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to execute MarkArt for track ID %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for MarkArt: %w", err)
	}
	if affected == 0 {
		// Either absent or already marked; distinguish the two.
		if _, err := r.GetTrackByID(id); err != nil {
			return err
		}
	}
	return nil
}
