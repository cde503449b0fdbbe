package preview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

const DefaultMaxBytes = 10 << 20

// ReadError reports a file that could not be read for preview.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

type Preview struct {
	Name     string
	MimeType string
	Size     int64
	// DataURL is the base64 data: URL a view can render directly.
	DataURL string
}

// ReadPreviewUseCase reads a local file fully and returns it in a form a view
// can display before the submission is sent.
type ReadPreviewUseCase struct {
	maxBytes int64
}

func NewReadPreviewUseCase(maxBytes int64) *ReadPreviewUseCase {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &ReadPreviewUseCase{maxBytes: maxBytes}
}

func (uc *ReadPreviewUseCase) Execute(ctx context.Context, f *upload.File) (*Preview, error) {
	if f == nil {
		return nil, apperror.NewInvalidInput("no file selected", nil)
	}
	if f.Size > uc.maxBytes {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("%s is too large to preview", f.Name), nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &ReadError{Name: f.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, uc.maxBytes+1))
	if err != nil {
		return nil, &ReadError{Name: f.Name, Err: err}
	}
	if int64(len(data)) > uc.maxBytes {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("%s is too large to preview", f.Name), nil)
	}

	mt := mimetype.Detect(data).String()
	if generic(mt) && f.ContentType != "" {
		mt = f.ContentType
	}

	var b bytes.Buffer
	b.WriteString("data:")
	b.WriteString(mt)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))

	return &Preview{Name: f.Name, MimeType: mt, Size: int64(len(data)), DataURL: b.String()}, nil
}

func generic(mt string) bool {
	return strings.HasPrefix(mt, "application/octet-stream") || strings.HasPrefix(mt, "text/plain")
}
