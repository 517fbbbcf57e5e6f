package server

import (
	"bytes"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"AuxFM/core/library"
	"AuxFM/logger"
	"AuxFM/storage"

	"github.com/gorilla/mux"
)

// presignTTL limits how long generated blob URLs stay valid.
const presignTTL = time.Hour

// StreamTrackHandler serves a track blob. With a remote backend it redirects
// to a time-limited presigned URL so audio bytes never proxy through the
// server; with the local backend it serves the file range-capably so clients
// can seek in long files.
func (h *APIHandler) StreamTrackHandler(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if strings.Contains(key, "..") {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	h.serveBlob(w, r, key)
}

// ArtHandler serves a track's cover art, 404 unless art has been stored.
func (h *APIHandler) ArtHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	track, err := h.lib.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !track.HasArt {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	h.serveBlob(w, r, library.ArtKey(id))
}

func (h *APIHandler) serveBlob(w http.ResponseWriter, r *http.Request, key string) {
	ctx := r.Context()

	if presigner, ok := h.blobs.(storage.Presigner); ok {
		url, err := presigner.PresignedURL(ctx, key, presignTTL)
		if err != nil {
			logger.Warn("failed to presign blob",
				logger.String("key", key),
				logger.ErrorField(err))
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	if ranger, ok := h.blobs.(storage.RangeReader); ok {
		reader, modTime, err := ranger.Open(ctx, key)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		defer reader.Close()
		http.ServeContent(w, r, path.Base(key), modTime, reader)
		return
	}

	// Plain stores proxy the whole blob; ServeContent still answers range
	// requests against the in-memory copy.
	data, err := h.blobs.Get(ctx, key)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	http.ServeContent(w, r, path.Base(key), time.Time{}, bytes.NewReader(data))
}
