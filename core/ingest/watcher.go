package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"AuxFM/core/library"
	"AuxFM/logger"

	"github.com/fsnotify/fsnotify"
)

// audioExtensions lists the containers the watcher will pick up.
var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/x-m4a",
}

// Watcher ingests audio files dropped into a directory through the same
// pipeline as HTTP uploads, then removes them from the drop directory.
// Writers are given a settle delay so half-copied files are not ingested.
type Watcher struct {
	dir     string
	lib     *library.Service
	settle  time.Duration
	watcher *fsnotify.Watcher
}

// NewWatcher creates (if needed) and watches the drop directory.
func NewWatcher(dir string, lib *library.Service) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ingest directory %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		lib:     lib,
		settle:  2 * time.Second,
		watcher: watcher,
	}, nil
}

// Run watches until ctx is cancelled. Files are considered settled once no
// write event has touched them for the settle delay.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	logger.Info("ingest watcher started", logger.String("dir", w.dir))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				ext := strings.ToLower(filepath.Ext(event.Name))
				if _, isAudio := audioExtensions[ext]; isAudio {
					pending[event.Name] = time.Now()
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("ingest watcher error", logger.ErrorField(err))

		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				w.ingestFile(ctx, path)
			}
		}
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read dropped file",
			logger.String("path", path),
			logger.ErrorField(err))
		return
	}

	filename := filepath.Base(path)
	contentType := audioExtensions[strings.ToLower(filepath.Ext(filename))]

	track, err := w.lib.Ingest(ctx, filename, data, contentType)
	if err != nil {
		logger.Error("failed to ingest dropped file",
			logger.String("path", path),
			logger.ErrorField(err))
		return
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("failed to remove ingested file from drop dir",
			logger.String("path", path),
			logger.ErrorField(err))
	}

	logger.Info("dropped file ingested",
		logger.String("path", path),
		logger.Int64("trackId", track.ID))
}
