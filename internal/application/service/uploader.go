package service

import (
	"context"

	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/internal/domain/video"
)

// Uploader sends one multipart upload. Transport lifecycle signals are
// delivered to signals in emission order; the channel is not closed by the
// uploader. The returned video is the server's record on success.
type Uploader interface {
	Upload(ctx context.Context, sub upload.Submission, signals chan<- upload.Signal) (*video.Video, error)
}
