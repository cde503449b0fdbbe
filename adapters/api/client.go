package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/logger"
	"github.com/khoahotran/jutjub/pkg/metrics"
)

const (
	videoPostsPath = "/api/video-posts"
	authPath       = "/api/auth"

	maxBodyBytes = 32 << 20
)

var tracer = otel.Tracer("api_client")

type Options struct {
	BaseURL string
	// Timeout bounds every call except uploads, which run until the server answers.
	Timeout  time.Duration
	Sessions session.Store
	Logger   logger.Logger
	Metrics  *metrics.ClientMetrics
	// Transport overrides the default transport, mostly for tests.
	Transport http.RoundTripper
}

// Client talks to the video-posts and auth endpoints of the jutjub API.
type Client struct {
	base     string
	hc       *http.Client
	uploadHC *http.Client
	sessions session.Store
	logger   logger.Logger
	metrics  *metrics.ClientMetrics
	norm     normalizer
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			MaxIdleConns:        50,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		base:     base,
		hc:       &http.Client{Transport: transport, Timeout: opts.Timeout},
		uploadHC: &http.Client{Transport: transport},
		sessions: opts.Sessions,
		logger:   log,
		metrics:  opts.Metrics,
		norm:     normalizer{mediaBase: base + videoPostsPath},
	}, nil
}

func (c *Client) BaseURL() string {
	return c.base
}

type call struct {
	endpoint    string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	accept      string
	hc          *http.Client
	onRequest   func(*http.Request)
}

type result struct {
	status      int
	contentType string
	body        []byte
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u := c.base + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, cl.body)
	if err != nil {
		return nil, apperror.NewInternal("failed to build request", err)
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	accept := cl.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.sessions != nil {
		if s, err := c.sessions.Load(ctx); err == nil && s.Token != "" {
			req.Header.Set("Authorization", "Bearer "+s.Token)
		}
	}
	return req, nil
}

// do sends one request. Transport failures become ErrUnavailable, non-2xx
// answers become upstream errors carrying the server's message. No retries.
func (c *Client) do(ctx context.Context, cl call) (*result, error) {
	ctx, span := tracer.Start(ctx, cl.endpoint)
	defer span.End()
	span.SetAttributes(attribute.String("http.method", cl.method), attribute.String("http.path", cl.path))

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return nil, err
	}
	if cl.onRequest != nil {
		cl.onRequest(req)
	}
	hc := cl.hc
	if hc == nil {
		hc = c.hc
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(cl.endpoint, "transport_error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		c.logger.Warn("API request failed", zap.String("endpoint", cl.endpoint), zap.Error(err))
		return nil, apperror.NewUnavailable(transportMessage(err), err)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, maxBodyBytes)
	if err != nil {
		c.metrics.ObserveRequest(cl.endpoint, "transport_error", time.Since(start))
		span.RecordError(err)
		return nil, apperror.NewUnavailable("failed to read response body", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveRequest(cl.endpoint, "server_error", time.Since(start))
		appErr := apperror.NewUpstream(resp.StatusCode, serverMessage(body))
		span.SetStatus(codes.Error, appErr.Message)
		c.logger.Warn("API returned an error",
			zap.String("endpoint", cl.endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", appErr.Message),
		)
		return nil, appErr
	}
	c.metrics.ObserveRequest(cl.endpoint, "ok", time.Since(start))
	return &result{status: resp.StatusCode, contentType: resp.Header.Get("Content-Type"), body: body}, nil
}

func (c *Client) doJSON(ctx context.Context, endpoint, method, path string, query url.Values, payload any) (*result, error) {
	cl := call{endpoint: endpoint, method: method, path: path, query: query}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, apperror.NewInternal("failed to encode request", err)
		}
		cl.body = bytes.NewReader(b)
		cl.contentType = "application/json"
	}
	return c.do(ctx, cl)
}

func (c *Client) envelope(ctx context.Context, endpoint, method, path string, query url.Values, payload any) (*envelope, error) {
	res, err := c.doJSON(ctx, endpoint, method, path, query, payload)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(endpoint, res.body)
	if err != nil {
		return nil, wrapParse(err)
	}
	return env, nil
}

func wrapParse(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return apperror.NewAppError(apperror.ErrUpstream, "The video service sent an unexpected response", pe.Error(), pe)
	}
	return err
}

// serverMessage extracts message or error from a JSON error body, or uses a
// short plain-text body as is.
func serverMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '{' {
		var e struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &e); err == nil {
			if e.Message != "" {
				return e.Message
			}
			return e.Error
		}
		return ""
	}
	if len(trimmed) <= 512 && !bytes.HasPrefix(trimmed, []byte("<")) {
		return string(trimmed)
	}
	return ""
}

func transportMessage(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func videoPath(id string, rest ...string) string {
	p := videoPostsPath + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
