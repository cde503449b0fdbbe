package api

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

type receivedUpload struct {
	contentLength int64
	meta          upload.Metadata
	videoName     string
	videoType     string
	videoBody     string
	thumbBody     string
}

func uploadBackend(got *receivedUpload, calls *atomic.Int32) func(r *gin.Engine) {
	return func(r *gin.Engine) {
		r.POST("/api/video-posts/upload", func(c *gin.Context) {
			calls.Add(1)
			got.contentLength = c.Request.ContentLength
			if err := json.Unmarshal([]byte(c.PostForm(upload.FieldMetadata)), &got.meta); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "bad metadata"})
				return
			}
			vh, err := c.FormFile(upload.FieldVideo)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "missing video"})
				return
			}
			got.videoName = vh.Filename
			got.videoType = vh.Header.Get("Content-Type")
			got.videoBody = readPart(vh)
			th, err := c.FormFile(upload.FieldThumbnail)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "missing thumbnail"})
				return
			}
			got.thumbBody = readPart(th)
			c.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": 11, "title": got.meta.Title, "tags": got.meta.Tags}})
		})
	}
}

func readPart(fh *multipart.FileHeader) string {
	f, err := fh.Open()
	if err != nil {
		return ""
	}
	defer f.Close()
	b, _ := io.ReadAll(f)
	return string(b)
}

func validSubmission() upload.Submission {
	return upload.Submission{
		Title:       "Sunset",
		Description: "orange sky",
		Tags:        []string{"sky", "sky", "sun"},
		Video:       upload.NewBytesFile("sunset.mp4", "video/mp4", []byte(strings.Repeat("v", 64<<10))),
		Thumbnail:   upload.NewBytesFile("sunset.png", "image/png", []byte("thumb-bytes")),
		Location:    video.NewCoordinates(1, 2),
	}
}

func collect(signals chan upload.Signal) []upload.Signal {
	close(signals)
	var out []upload.Signal
	for s := range signals {
		out = append(out, s)
	}
	return out
}

func TestUpload_SendsMultipartAndReportsProgress(t *testing.T) {
	var got receivedUpload
	var calls atomic.Int32
	c, _, _ := newFakeAPI(t, uploadBackend(&got, &calls))

	signals := make(chan upload.Signal, 4096)
	v, err := c.Upload(context.Background(), validSubmission(), signals)
	require.NoError(t, err)
	sigs := collect(signals)

	require.NotNil(t, v)
	assert.Equal(t, "11", v.ID)
	assert.Equal(t, "Sunset", v.Title)
	assert.EqualValues(t, 1, calls.Load())

	assert.Equal(t, "Sunset", got.meta.Title)
	assert.Equal(t, "orange sky", got.meta.VideoDescription)
	assert.Equal(t, []string{"sky", "sun"}, got.meta.Tags)
	require.NotNil(t, got.meta.Location)
	assert.JSONEq(t, `{"latitude":1,"longitude":2}`, *got.meta.Location)
	assert.Equal(t, "sunset.mp4", got.videoName)
	assert.Equal(t, "video/mp4", got.videoType)
	assert.Len(t, got.videoBody, 64<<10)
	assert.Equal(t, "thumb-bytes", got.thumbBody)

	require.NotEmpty(t, sigs)
	assert.Equal(t, upload.SignalDispatched, sigs[0].Kind)
	var last int64
	for _, s := range sigs[1:] {
		require.Equal(t, upload.SignalProgress, s.Kind)
		assert.GreaterOrEqual(t, s.Sent, last)
		assert.Equal(t, got.contentLength, s.Total)
		last = s.Sent
	}
	assert.Equal(t, got.contentLength, last)
}

func TestUpload_RejectsBeforeAnyRequest(t *testing.T) {
	var got receivedUpload
	var calls atomic.Int32
	c, _, _ := newFakeAPI(t, uploadBackend(&got, &calls))

	noVideo := validSubmission()
	noVideo.Video = nil
	wrongType := validSubmission()
	wrongType.Video = upload.NewBytesFile("x.png", "image/png", []byte("x"))

	for _, sub := range []upload.Submission{noVideo, wrongType} {
		signals := make(chan upload.Signal, 16)
		_, err := c.Upload(context.Background(), sub, signals)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		assert.Empty(t, collect(signals))
	}
	assert.EqualValues(t, 0, calls.Load())
}

func TestUpload_ServerRejection(t *testing.T) {
	c, _, _ := newFakeAPI(t, func(r *gin.Engine) {
		r.POST("/api/video-posts/upload", func(c *gin.Context) {
			_, _ = io.Copy(io.Discard, c.Request.Body)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File too large"})
		})
	})

	signals := make(chan upload.Signal, 4096)
	_, err := c.Upload(context.Background(), validSubmission(), signals)
	collect(signals)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, "File too large", apperror.UserMessage(err))
}

func TestUpload_UnreadableSuccessBody(t *testing.T) {
	c, _, _ := newFakeAPI(t, func(r *gin.Engine) {
		r.POST("/api/video-posts/upload", func(c *gin.Context) {
			_, _ = io.Copy(io.Discard, c.Request.Body)
			c.String(http.StatusOK, "ok")
		})
	})

	signals := make(chan upload.Signal, 4096)
	v, err := c.Upload(context.Background(), validSubmission(), signals)
	collect(signals)

	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestMultipartLength_UnknownSize(t *testing.T) {
	sub := validSubmission()
	sub.Video = upload.NewFile("v.mp4", "video/mp4", -1, nil)
	assert.EqualValues(t, -1, multipartLength("b", []byte("{}"), sub))
}
