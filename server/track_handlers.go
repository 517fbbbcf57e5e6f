package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"AuxFM/logger"
)

// UploadTrackHandler accepts raw audio bytes with the desired filename in the
// X-Filename header and returns the created track.
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	filename := sanitizeFilename(r.Header.Get("X-Filename"))
	if filename == "" {
		respondError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read upload body")
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "no data received")
		return
	}

	contentType := detectAudioType(data, filename)
	if contentType == "" {
		respondError(w, http.StatusBadRequest, "file type not allowed")
		return
	}

	track, err := h.lib.Ingest(r.Context(), filename, data, contentType)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.trackJSON(track))
}

// GetPlaylistHandler returns all tracks ordered by their playlist position.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.lib.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]trackResponse, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, h.trackJSON(t))
	}
	respondJSON(w, http.StatusOK, out)
}

// RenameTrackHandler updates a track's title.
func (h *APIHandler) RenameTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid name")
		return
	}

	track, err := h.lib.Rename(r.Context(), req.ID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "renamed", "title": track.Title})
}

// DeleteTrackHandler removes a track and best-effort cleans up its blobs.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		respondError(w, http.StatusBadRequest, "missing id")
		return
	}

	if err := h.lib.Delete(r.Context(), req.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ReorderPlaylistHandler applies a full new playlist order.
func (h *APIHandler) ReorderPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []int64 `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Order == nil {
		respondError(w, http.StatusBadRequest, "invalid order")
		return
	}

	if err := h.lib.Reorder(r.Context(), req.Order); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// UploadArtHandler attaches cover art to an existing track. Multipart form
// with an "id" field and a "file" part.
func (h *APIHandler) UploadArtHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(w, http.StatusBadRequest, "missing id or file")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing id or file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := detectImageType(data)
	if contentType == "" {
		respondError(w, http.StatusBadRequest, "file type not allowed")
		return
	}

	if err := h.lib.AttachArt(r.Context(), id, data, contentType); err != nil {
		respondServiceError(w, err)
		return
	}

	logger.Info("cover art uploaded", logger.Int64("trackId", id))
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "art_uploaded", "id": id})
}
