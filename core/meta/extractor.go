package meta

import (
	"bytes"
	"io"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"AuxFM/logger"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
)

// Metadata holds whatever could be extracted from an audio buffer. Every
// field is independently optional; zero values mean "absent".
type Metadata struct {
	Title           string
	Artist          string
	Album           string
	DurationSeconds *float64
	CoverArt        []byte
	CoverMIME       string
}

// Extract reads tag metadata, duration and embedded cover art from raw audio
// bytes. It never fails: corrupt or unsupported input yields an all-absent
// Metadata. Duration is only computed for MP3 and FLAC containers.
func Extract(data []byte) (md Metadata) {
	// Tag parsers choke on hostile input in creative ways; keep the
	// never-fails contract even then.
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("metadata extraction panicked", logger.Any("cause", r))
			md = Metadata{}
		}
	}()

	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err == nil {
		md.Title = m.Title()
		md.Artist = m.Artist()
		md.Album = m.Album()
		if pic := m.Picture(); pic != nil {
			md.CoverArt = pic.Data
			md.CoverMIME = pic.MIMEType
		}
	} else {
		logger.Debug("tag read failed", logger.ErrorField(err))
	}

	if d, ok := audioDuration(data); ok {
		md.DurationSeconds = &d
	}
	return md
}

// audioDuration decodes the stream far enough to know its length.
func audioDuration(data []byte) (float64, bool) {
	var streamer beep.StreamSeekCloser
	var format beep.Format
	var err error

	switch {
	case isFLAC(data):
		streamer, format, err = flac.Decode(bytes.NewReader(data))
	case isMP3(data):
		streamer, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return 0, false
	}
	if err != nil {
		logger.Debug("duration decode failed", logger.ErrorField(err))
		return 0, false
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()).Seconds(), true
}

func isFLAC(data []byte) bool {
	return bytes.HasPrefix(data, []byte("fLaC"))
}

func isMP3(data []byte) bool {
	if bytes.HasPrefix(data, []byte("ID3")) {
		return true
	}
	// Bare frame sync.
	return len(data) >= 2 && data[0] == 0xff && data[1]&0xe0 == 0xe0
}

// TitleFromFilename derives the fallback title used when no title tag is
// present: the filename stem with underscores turned into spaces, first rune
// upper-cased and the rest lowered ("my_song.mp3" -> "My song").
func TitleFromFilename(name string) string {
	stem := strings.TrimSuffix(name, path.Ext(name))
	s := strings.ToLower(strings.ReplaceAll(stem, "_", " "))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
