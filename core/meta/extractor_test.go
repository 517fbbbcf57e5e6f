package meta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_UnparsableBytesNeverFail(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("definitely not audio"),
		bytes.Repeat([]byte{0x00}, 512),
		[]byte("ID3"), // truncated ID3 header
		{0xff, 0xfb}, // bare MP3 frame sync, nothing behind it
		[]byte("fLaC"), // truncated FLAC marker
	}

	for _, data := range inputs {
		md := Extract(data)
		assert.Empty(t, md.Title)
		assert.Empty(t, md.Artist)
		assert.Empty(t, md.Album)
		assert.Nil(t, md.DurationSeconds)
		assert.Nil(t, md.CoverArt)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"my_song.mp3", "My song"},
		{"My_Song.mp3", "My song"},
		{"ALREADY LOUD.flac", "Already loud"},
		{"nested_under_scores.ogg", "Nested under scores"},
		{"noext", "Noext"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromFilename(tt.name))
		})
	}
}
