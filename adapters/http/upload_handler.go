package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	uploadUC "github.com/khoahotran/jutjub/internal/application/usecase/upload"
	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
)

type UploadHandler struct {
	submitVideoUC *uploadUC.SubmitVideoUseCase
	logger        logger.Logger
}

func NewUploadHandler(submitUC *uploadUC.SubmitVideoUseCase, log logger.Logger) *UploadHandler {
	return &UploadHandler{submitVideoUC: submitUC, logger: log}
}

func formFile(c *gin.Context, field string) (*upload.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperror.NewInvalidInput("invalid multipart form", err)
	}
	return fileFromHeader(fh), nil
}

func fileFromHeader(fh *multipart.FileHeader) *upload.File {
	return upload.NewFile(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, func() (io.ReadCloser, error) {
		return fh.Open()
	})
}

// submissionFromForm reads the same multipart layout the video API accepts:
// videoPost (JSON), videoFile and thumbnailFile.
func submissionFromForm(c *gin.Context) (upload.Submission, error) {
	var meta uploadMetadata
	raw := c.PostForm(upload.FieldMetadata)
	if raw == "" {
		return upload.Submission{}, apperror.NewInvalidInput("'videoPost' is required", nil)
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return upload.Submission{}, apperror.NewInvalidInput("'videoPost' field is not valid JSON", err)
	}

	videoFile, err := formFile(c, upload.FieldVideo)
	if err != nil {
		return upload.Submission{}, err
	}
	thumbFile, err := formFile(c, upload.FieldThumbnail)
	if err != nil {
		return upload.Submission{}, err
	}

	sub := upload.Submission{
		Title:       strings.TrimSpace(meta.Title),
		Description: meta.VideoDescription,
		Tags:        meta.Tags,
		Video:       videoFile,
		Thumbnail:   thumbFile,
	}
	if meta.Location != nil {
		sub.Location = video.ParseLocation(*meta.Location)
	}
	return sub, nil
}

// UploadVideo streams progress as server-sent events when the client asks for
// text/event-stream, and otherwise answers once with the final record.
func (h *UploadHandler) UploadVideo(c *gin.Context) {
	sub, err := submissionFromForm(c)
	if err != nil {
		c.Error(err)
		return
	}

	handle, err := h.submitVideoUC.Execute(c.Request.Context(), sub)
	if err != nil {
		c.Error(err)
		return
	}
	// the multipart temp files must outlive the upload
	defer func() {
		for range handle.Progress {
		}
	}()

	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		h.stream(c, handle)
		return
	}

	last := upload.Progress{Status: upload.StatusPending}
	for p := range handle.Progress {
		last = p
	}
	v, uerr := handle.Result()
	if uerr != nil {
		c.Error(uerr)
		return
	}
	resp := gin.H{"success": true, "progress": ToProgressDTO(handle.ID, last)}
	if v != nil {
		resp["data"] = ToVideoDTO(v)
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UploadHandler) stream(c *gin.Context, handle *uploadUC.Handle) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		p, ok := <-handle.Progress
		if !ok {
			return false
		}
		c.SSEvent("progress", ToProgressDTO(handle.ID, p))
		if !p.Status.IsTerminal() {
			return true
		}
		if v, _ := handle.Result(); v != nil {
			c.SSEvent("video", ToVideoDTO(v))
		}
		return false
	})
	h.logger.Debug("Upload stream closed", zap.String("upload_id", handle.ID))
}
