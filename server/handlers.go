package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"AuxFM/config"
	"AuxFM/core/library"
	"AuxFM/logger"
	"AuxFM/model"
	"AuxFM/repository"
	"AuxFM/storage"
)

// APIHandler handles all API requests.
type APIHandler struct {
	lib   *library.Service
	blobs storage.BlobStore
	cfg   *config.Config
}

// NewAPIHandler creates the API handler set.
func NewAPIHandler(lib *library.Service, blobs storage.BlobStore, cfg *config.Config) *APIHandler {
	return &APIHandler{lib: lib, blobs: blobs, cfg: cfg}
}

// trackResponse augments a catalog row with the storage origin tag.
type trackResponse struct {
	*model.Track
	Origin string `json:"origin"`
}

func (h *APIHandler) trackJSON(t *model.Track) trackResponse {
	return trackResponse{Track: t, Origin: h.lib.Origin()}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the error taxonomy onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, storage.ErrBlobNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\. ]`)
	multipleSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename reduces an upload filename to a safe basename. Returns ""
// when nothing usable remains.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "..", "")
	name = multipleSpaces.ReplaceAllString(name, "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	if name == "." || name == "/" {
		return ""
	}
	return name
}

var allowedAudioTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/wav":   true,
	"audio/wave":  true,
	"audio/ogg":   true,
	"audio/flac":  true,
	"audio/x-m4a": true,
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// extensionAudioTypes backs up content sniffing: the stdlib sniffer does not
// recognize every audio container (notably FLAC and M4A).
var extensionAudioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/x-m4a",
}

// detectAudioType sniffs the payload and falls back to the file extension.
// Returns "" when the payload is not an allowed audio type.
func detectAudioType(data []byte, filename string) string {
	sniffed := http.DetectContentType(data)
	sniffed, _, _ = strings.Cut(sniffed, ";")
	if allowedAudioTypes[sniffed] {
		return sniffed
	}
	if sniffed == "application/ogg" {
		return "audio/ogg"
	}
	if sniffed == "application/octet-stream" {
		if byExt, ok := extensionAudioTypes[strings.ToLower(filepath.Ext(filename))]; ok {
			return byExt
		}
	}
	return ""
}

// detectImageType sniffs the payload. Returns "" for disallowed types.
func detectImageType(data []byte) string {
	sniffed := http.DetectContentType(data)
	sniffed, _, _ = strings.Cut(sniffed, ";")
	if allowedImageTypes[sniffed] {
		return sniffed
	}
	return ""
}
