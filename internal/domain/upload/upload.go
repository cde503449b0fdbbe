package upload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/khoahotran/jutjub/internal/domain/video"
)

// Multipart field names expected by POST /api/video-posts/upload.
const (
	FieldMetadata  = "videoPost"
	FieldVideo     = "videoFile"
	FieldThumbnail = "thumbnailFile"
)

var AllowedVideoTypes = []string{
	"video/mp4",
	"video/webm",
	"video/ogg",
	"video/quicktime",
	"video/x-msvideo",
}

var (
	ErrMissingVideo     = errors.New("video file is required")
	ErrMissingThumbnail = errors.New("thumbnail file is required")
	ErrVideoType        = errors.New("video file type is not allowed")
)

// File is one binary of a submission. Size is -1 when unknown.
type File struct {
	Name        string
	ContentType string
	Size        int64
	open        func() (io.ReadCloser, error)
}

func NewFile(name, contentType string, size int64, open func() (io.ReadCloser, error)) *File {
	return &File{Name: name, ContentType: contentType, Size: size, open: open}
}

func NewBytesFile(name, contentType string, data []byte) *File {
	return NewFile(name, contentType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// OpenFile wraps a file on disk. contentType falls back to the extension,
// then to the sniffed content.
func OpenFile(path, contentType string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}
	if contentType == "" {
		if mt, err := mimetype.DetectFile(path); err == nil {
			contentType = mt.String()
		}
	}
	return NewFile(filepath.Base(path), contentType, info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

func (f *File) Open() (io.ReadCloser, error) {
	if f == nil || f.open == nil {
		return nil, errors.New("file has no content")
	}
	return f.open()
}

type Submission struct {
	Title       string          `validate:"required,min=3,max=100"`
	Description string          `validate:"max=1000"`
	Tags        []string
	Thumbnail   *File
	Video       *File
	Location    *video.Location
}

// Metadata is the JSON sub-part of the multipart upload.
type Metadata struct {
	Title            string   `json:"title"`
	VideoDescription string   `json:"videoDescription"`
	Tags             []string `json:"tags"`
	Location         *string  `json:"location"`
}

func (s Submission) Metadata() (Metadata, error) {
	m := Metadata{
		Title:            strings.TrimSpace(s.Title),
		VideoDescription: s.Description,
		Tags:             video.NormalizeTags(s.Tags),
	}
	if s.Location.Kind() != video.LocationAbsent {
		b, err := json.Marshal(s.Location)
		if err != nil {
			return Metadata{}, fmt.Errorf("encode location: %w", err)
		}
		loc := string(b)
		m.Location = &loc
	}
	return m, nil
}

// CheckVideoType returns the lowercased media type when it is on the allow-list.
func CheckVideoType(contentType string) (string, error) {
	clean := strings.TrimSpace(contentType)
	if clean == "" {
		return "", fmt.Errorf("%w: missing content type, allowed formats are %s", ErrVideoType, allowedList())
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a valid media type, allowed formats are %s", ErrVideoType, clean, allowedList())
	}
	mediaType = strings.ToLower(mediaType)
	for _, allowed := range AllowedVideoTypes {
		if mediaType == allowed {
			return mediaType, nil
		}
	}
	return "", fmt.Errorf("%w: %s, allowed formats are %s", ErrVideoType, mediaType, allowedList())
}

func allowedList() string {
	return strings.Join(AllowedVideoTypes, ", ")
}

// CheckBinaries enforces that both binaries are present and the video type
// is allowed. It performs no I/O.
func CheckBinaries(s Submission) error {
	if s.Video == nil {
		return ErrMissingVideo
	}
	if s.Thumbnail == nil {
		return ErrMissingThumbnail
	}
	_, err := CheckVideoType(s.Video.ContentType)
	return err
}
