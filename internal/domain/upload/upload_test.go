package upload

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/jutjub/internal/domain/video"
)

func TestCheckVideoType(t *testing.T) {
	for _, ct := range []string{"video/mp4", "VIDEO/WEBM", "video/ogg; codecs=theora", "video/quicktime", "video/x-msvideo"} {
		_, err := CheckVideoType(ct)
		assert.NoError(t, err, ct)
	}

	_, err := CheckVideoType("image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVideoType)
	for _, allowed := range AllowedVideoTypes {
		assert.Contains(t, err.Error(), allowed)
	}

	_, err = CheckVideoType("")
	assert.ErrorIs(t, err, ErrVideoType)
}

func TestCheckBinaries(t *testing.T) {
	vid := NewBytesFile("clip.mp4", "video/mp4", []byte("v"))
	thumb := NewBytesFile("thumb.png", "image/png", []byte("t"))

	assert.ErrorIs(t, CheckBinaries(Submission{Thumbnail: thumb}), ErrMissingVideo)
	assert.ErrorIs(t, CheckBinaries(Submission{Video: vid}), ErrMissingThumbnail)
	assert.ErrorIs(t, CheckBinaries(Submission{Video: thumb, Thumbnail: thumb}), ErrVideoType)
	assert.NoError(t, CheckBinaries(Submission{Video: vid, Thumbnail: thumb}))
}

func TestSubmission_Metadata(t *testing.T) {
	sub := Submission{
		Title:       "  My trip ",
		Description: "desc",
		Tags:        []string{"travel", " travel", "", "sea"},
		Location:    video.NewCoordinates(45.5, 19.8),
	}
	sub.Location.Address = "Novi Sad"

	m, err := sub.Metadata()
	require.NoError(t, err)

	assert.Equal(t, "My trip", m.Title)
	assert.Equal(t, []string{"travel", "sea"}, m.Tags)
	require.NotNil(t, m.Location)

	var loc video.Location
	require.NoError(t, json.Unmarshal([]byte(*m.Location), &loc))
	assert.Equal(t, 45.5, *loc.Latitude)
	assert.Equal(t, "Novi Sad", loc.Address)
}

func TestSubmission_MetadataWithoutLocation(t *testing.T) {
	m, err := Submission{Title: "abc"}.Metadata()
	require.NoError(t, err)

	assert.Nil(t, m.Location)
	assert.Equal(t, []string{}, m.Tags)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"abc","videoDescription":"","tags":[],"location":null}`, string(b))
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	f, err := OpenFile(path, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", f.Name)
	assert.Equal(t, "video/mp4", f.ContentType)
	assert.EqualValues(t, 10, f.Size)

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))

	_, err = OpenFile(dir, "")
	assert.Error(t, err)
}

func TestOpenFile_SniffsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thumbnail")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	require.NoError(t, os.WriteFile(path, png, 0o600))

	f, err := OpenFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
}
