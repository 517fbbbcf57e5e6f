package model

import "time"

// Track represents one catalog entry for an uploaded audio file.
// DisplayName is the original upload filename and never changes; rename only
// touches Title. StorageKey is the blob address and is unique across the
// catalog for the lifetime of the row.
type Track struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	StorageKey      string    `json:"path" gorm:"column:storage_key;size:767;not null;uniqueIndex"`
	DisplayName     string    `json:"name" gorm:"column:display_name;size:255;not null"`
	Title           string    `json:"title" gorm:"size:255"`
	Artist          string    `json:"artist" gorm:"size:255"`
	Album           string    `json:"album" gorm:"size:255"`
	DurationSeconds *float64  `json:"duration" gorm:"column:duration"`
	HasArt          bool      `json:"hasArt" gorm:"column:has_art;default:false"`
	Ordering        int       `json:"ordering" gorm:"column:ordering;default:0;index"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName keeps the table name stable regardless of GORM pluralization rules.
func (Track) TableName() string {
	return "tracks"
}

// DeletedTrackInfo carries what the caller needs to clean up blobs after a
// catalog row has been removed.
type DeletedTrackInfo struct {
	StorageKey string
	HasArt     bool
}
