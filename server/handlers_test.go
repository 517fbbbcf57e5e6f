package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "song.mp3", "song.mp3"},
		{"spaces collapse", "my  song.mp3", "my_song.mp3"},
		{"path stripped", "../../etc/passwd.mp3", "passwd.mp3"},
		{"unsafe chars removed", "we$ird#name!.mp3", "weirdname.mp3"},
		{"dot dot only", "..", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"keeps dashes and underscores", "a-b_c.flac", "a-b_c.flac"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeFilename(tc.in))
		})
	}
}

func TestDetectAudioType(t *testing.T) {
	id3 := append([]byte("ID3"), make([]byte, 16)...)
	ogg := append([]byte("OggS\x00"), make([]byte, 16)...)
	opaque := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	cases := []struct {
		name     string
		data     []byte
		filename string
		want     string
	}{
		{"mp3 by sniff", id3, "whatever.bin", "audio/mpeg"},
		{"ogg container remapped", ogg, "clip.ogg", "audio/ogg"},
		{"flac by extension", opaque, "track.flac", "audio/flac"},
		{"m4a by extension", opaque, "track.M4A", "audio/x-m4a"},
		{"unknown binary no extension", opaque, "track.xyz", ""},
		{"text rejected despite extension", []byte("hello world"), "track.mp3", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, detectAudioType(tc.data, tc.filename))
		})
	}
}

func TestDetectImageType(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 8)...)
	jpeg := append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 8)...)

	assert.Equal(t, "image/png", detectImageType(png))
	assert.Equal(t, "image/jpeg", detectImageType(jpeg))
	assert.Equal(t, "", detectImageType([]byte("not an image")))
}
