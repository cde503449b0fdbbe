package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/domain/upload"
	"github.com/khoahotran/jutjub/internal/domain/video"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

var _ service.Uploader = (*Client)(nil)

// Upload streams sub as one multipart request. It emits a dispatched signal
// right before the request goes out and a progress signal per body read.
// No signal is sent after Upload returns.
func (c *Client) Upload(ctx context.Context, sub upload.Submission, signals chan<- upload.Signal) (*video.Video, error) {
	if err := upload.CheckBinaries(sub); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	meta, err := sub.Metadata()
	if err != nil {
		return nil, apperror.NewInvalidInput("invalid upload metadata", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, apperror.NewInternal("failed to encode upload metadata", err)
	}

	boundary := multipart.NewWriter(io.Discard).Boundary()
	total := multipartLength(boundary, metaJSON, sub)

	em := &emitter{ch: signals}
	defer em.stop()

	pr, pw := io.Pipe()
	defer pr.Close()
	go func() {
		_, err := writeParts(pw, boundary, metaJSON, sub, true)
		pw.CloseWithError(err)
	}()

	body := &countingReader{r: pr, total: max(total, 0), emit: em.send}
	res, err := c.do(ctx, call{
		endpoint:    "upload_video",
		method:      http.MethodPost,
		path:        videoPostsPath + "/upload",
		body:        body,
		contentType: "multipart/form-data; boundary=" + boundary,
		hc:          c.uploadHC,
		onRequest: func(req *http.Request) {
			if total >= 0 {
				req.ContentLength = total
			}
			em.send(upload.Signal{Kind: upload.SignalDispatched})
		},
	})
	c.metrics.AddUploadBytes(body.sent())
	if err != nil {
		return nil, err
	}

	env, perr := decodeEnvelope("upload_video", res.body)
	if perr == nil {
		var v *video.Video
		if v, perr = c.norm.single("upload_video", env); perr == nil {
			return v, nil
		}
	}
	// the server accepted the upload; an unreadable body does not undo that
	c.logger.Warn("Upload succeeded but the response could not be parsed", zap.Error(perr))
	return nil, nil
}

type emitter struct {
	mu      sync.Mutex
	ch      chan<- upload.Signal
	stopped bool
}

func (e *emitter) send(sig upload.Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || e.ch == nil {
		return
	}
	e.ch <- sig
}

func (e *emitter) stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

type countingReader struct {
	r     io.ReadCloser
	total int64
	emit  func(upload.Signal)

	mu sync.Mutex
	n  int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.mu.Lock()
		c.n += int64(n)
		sent := c.n
		c.mu.Unlock()
		c.emit(upload.Signal{Kind: upload.SignalProgress, Sent: sent, Total: c.total})
	}
	return n, err
}

func (c *countingReader) Close() error {
	return c.r.Close()
}

func (c *countingReader) sent() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type countWriter struct{ n int64 }

func (w *countWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// multipartLength returns the exact body size, or -1 when a file size is unknown.
func multipartLength(boundary string, metaJSON []byte, sub upload.Submission) int64 {
	if sub.Video.Size < 0 || sub.Thumbnail.Size < 0 {
		return -1
	}
	cw := &countWriter{}
	skipped, err := writeParts(cw, boundary, metaJSON, sub, false)
	if err != nil {
		return -1
	}
	return cw.n + skipped
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeParts writes the metadata part then the video and thumbnail parts.
// With copyFiles false only part headers are written and the declared file
// sizes are returned instead.
func writeParts(w io.Writer, boundary string, metaJSON []byte, sub upload.Submission, copyFiles bool) (int64, error) {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(boundary); err != nil {
		return 0, err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, upload.FieldMetadata))
	h.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(h)
	if err != nil {
		return 0, err
	}
	if _, err := part.Write(metaJSON); err != nil {
		return 0, err
	}

	files := []struct {
		field string
		file  *upload.File
	}{
		{upload.FieldVideo, sub.Video},
		{upload.FieldThumbnail, sub.Thumbnail},
	}
	var skipped int64
	for _, f := range files {
		fh := make(textproto.MIMEHeader)
		fh.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, quoteEscaper.Replace(f.file.Name)))
		ct := f.file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		fh.Set("Content-Type", ct)
		part, err := mw.CreatePart(fh)
		if err != nil {
			return 0, err
		}
		if !copyFiles {
			skipped += f.file.Size
			continue
		}
		if err := copyFile(part, f.file); err != nil {
			return 0, fmt.Errorf("%s: %w", f.field, err)
		}
	}
	return skipped, mw.Close()
}

func copyFile(dst io.Writer, f *upload.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	n, err := io.Copy(dst, rc)
	if err != nil {
		return err
	}
	if f.Size >= 0 && n != f.Size {
		return fmt.Errorf("file %s changed size: declared %d, read %d", f.Name, f.Size, n)
	}
	return nil
}
